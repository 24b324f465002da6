package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawdev/mahtaaj/internal/auth"
	"github.com/tawdev/mahtaaj/internal/http/middleware"
	"github.com/tawdev/mahtaaj/internal/repo"
	"github.com/tawdev/mahtaaj/internal/service"
)

type stubAuthRepo struct {
	admins  map[string]repo.Admin
	clients map[string]repo.Client
	refresh map[string]repo.RefreshToken
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		admins:  map[string]repo.Admin{},
		clients: map[string]repo.Client{},
		refresh: map[string]repo.RefreshToken{},
	}
}

func (s *stubAuthRepo) GetAdminByEmail(_ context.Context, email string) (repo.Admin, error) {
	admin, ok := s.admins[email]
	if !ok {
		return repo.Admin{}, repo.ErrNotFound
	}
	return admin, nil
}

func (s *stubAuthRepo) GetAdminByID(_ context.Context, id uuid.UUID) (repo.Admin, error) {
	for _, admin := range s.admins {
		if admin.ID == id {
			return admin, nil
		}
	}
	return repo.Admin{}, repo.ErrNotFound
}

func (s *stubAuthRepo) TouchAdminLogin(_ context.Context, _ uuid.UUID) error { return nil }

func (s *stubAuthRepo) GetClientByEmail(_ context.Context, email string) (repo.Client, error) {
	client, ok := s.clients[email]
	if !ok {
		return repo.Client{}, repo.ErrNotFound
	}
	return client, nil
}

func (s *stubAuthRepo) GetClientByID(_ context.Context, id uuid.UUID) (repo.Client, error) {
	for _, client := range s.clients {
		if client.ID == id {
			return client, nil
		}
	}
	return repo.Client{}, repo.ErrNotFound
}

func (s *stubAuthRepo) InsertClient(_ context.Context, nom, email, telephone, hash string) (repo.Client, error) {
	client := repo.Client{
		ID:         uuid.New(),
		Nom:        nom,
		Email:      &email,
		Telephone:  &telephone,
		MotDePasse: &hash,
		Actif:      true,
	}
	s.clients[email] = client
	return client, nil
}

func (s *stubAuthRepo) GetRefreshTokenByHash(_ context.Context, hash string) (repo.RefreshToken, error) {
	token, ok := s.refresh[hash]
	if !ok {
		return repo.RefreshToken{}, repo.ErrNotFound
	}
	return token, nil
}

func (s *stubAuthRepo) InsertRefreshToken(_ context.Context, arg repo.InsertRefreshTokenParams) (repo.RefreshToken, error) {
	token := repo.RefreshToken{
		ID:         uuid.New(),
		Subject:    arg.Subject,
		Audience:   arg.Audience,
		TokenHash:  arg.TokenHash,
		Expiration: arg.Expiration,
	}
	s.refresh[arg.TokenHash] = token
	return token, nil
}

func (s *stubAuthRepo) InvalidateOtherRefreshTokens(_ context.Context, subject uuid.UUID, audience, keepHash string) error {
	for hash, token := range s.refresh {
		if token.Subject == subject && token.Audience == audience && hash != keepHash {
			token.Revoque = true
			s.refresh[hash] = token
		}
	}
	return nil
}

func (s *stubAuthRepo) RevokeRefreshToken(_ context.Context, hash string) error {
	if token, ok := s.refresh[hash]; ok {
		token.Revoque = true
		s.refresh[hash] = token
	}
	return nil
}

type stubRedis struct {
	values map[string]string
}

func newStubRedis() *stubRedis {
	return &stubRedis{values: map[string]string{}}
}

func (s *stubRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	s.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Get(_ context.Context, key string) *redis.StringCmd {
	val, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (s *stubRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := s.values[key]; ok {
			delete(s.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// newTestAuthRouter monte les routes d'authentification comme le
// routeur principal, sur un service adossé à des stubs.
func newTestAuthRouter(t *testing.T) (*chi.Mux, *stubAuthRepo) {
	t.Helper()
	repoStub := newStubAuthRepo()
	jwtManager := auth.NewJWTManager("clef-de-test-suffisamment-longue-0001", 15*time.Minute)
	authService := service.NewAuthService(repoStub, newStubRedis(), jwtManager, 24*time.Hour)
	handler := NewAuthHandler(authService, 24*time.Hour, false)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		r.Post("/admin/login", handler.HandleAdminLogin)
		r.Post("/refresh", handler.HandleRefresh)
		r.Post("/logout", handler.HandleLogout)
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(jwtManager))
		r.Get("/me", handler.HandleMe)
	})
	return router, repoStub
}

func seedAdmin(t *testing.T, repoStub *stubAuthRepo, role string) {
	t.Helper()
	hash, err := auth.Hash("Secret123!")
	require.NoError(t, err)
	repoStub.admins["admin@mahtaaj.sn"] = repo.Admin{
		ID:         uuid.New(),
		Nom:        "Mame Diarra",
		Email:      "admin@mahtaaj.sn",
		MotDePasse: hash,
		Role:       role,
		Actif:      true,
	}
}

func loginAdmin(t *testing.T, router *chi.Mux) (string, *http.Cookie) {
	t.Helper()
	body := `{"email":"admin@mahtaaj.sn","password":"Secret123!"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/admin/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "refresh_admin" && cookie.Value != "" {
			return envelope.Data.AccessToken, cookie
		}
	}
	t.Fatal("cookie refresh_admin absent de la réponse de login")
	return "", nil
}

func TestLogoutRevokesAdminSessionWithoutAudience(t *testing.T) {
	router, repoStub := newTestAuthRouter(t)
	seedAdmin(t, repoStub, service.RoleAdminMenage)
	_, refreshCookie := loginAdmin(t, router)

	// Déconnexion brute: pas d'audience désignée, juste le cookie admin.
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(refreshCookie)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Les deux cookies d'audience sont effacés.
	effaces := map[string]bool{}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 {
			effaces[cookie.Name] = true
		}
	}
	assert.True(t, effaces["refresh_admin"])
	assert.True(t, effaces["refresh_client"])

	// Le refresh token admin ne doit plus être utilisable.
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh?audience=admin", nil)
	req.AddCookie(refreshCookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Une seconde déconnexion reste un succès.
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(refreshCookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMeReturnsRoles(t *testing.T) {
	router, repoStub := newTestAuthRouter(t)
	seedAdmin(t, repoStub, service.RoleAdminMenage)
	accessToken, _ := loginAdmin(t, router)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Roles  []string `json:"roles"`
			Profil struct {
				Role     string   `json:"role"`
				Sections []string `json:"sections"`
			} `json:"profil"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, []string{service.RoleAdminMenage}, envelope.Data.Roles)
	assert.Equal(t, []string{service.SectionMenage, service.SectionReservations}, envelope.Data.Profil.Sections)

	// Les sections ne vivent que dans le profil, pas au premier niveau.
	var brut struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &brut))
	_, present := brut.Data["sections"]
	assert.False(t, present)
}
