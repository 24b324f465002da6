package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawdev/mahtaaj/internal/auth"
	"github.com/tawdev/mahtaaj/internal/repo"
)

type stubAuthRepo struct {
	admins  map[string]repo.Admin
	clients map[string]repo.Client
	refresh map[string]repo.RefreshToken
	revoked []string
	touched int
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

func (s *stubAuthRepo) TouchAdminLogin(_ context.Context, _ uuid.UUID) error {
	s.touched++
	return nil
}

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
	s.revoked = append(s.revoked, hash)
	if token, ok := s.refresh[hash]; ok {
		token.Revoque = true
		s.refresh[hash] = token
	}
	return nil
}

// stubRedis imite les trois commandes utilisées par le service.
type stubRedis struct {
	values map[string]string
}

func newStubRedis() *stubRedis {
	return &stubRedis{values: map[string]string{}}
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	s.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	val, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := s.values[key]; ok {
			delete(s.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func newTestAuthService(t *testing.T) (*AuthService, *stubAuthRepo, *stubRedis) {
	t.Helper()
	repoStub := newStubAuthRepo()
	redisStub := newStubRedis()
	jwtManager := auth.NewJWTManager("clef-de-test-suffisamment-longue-0001", 15*time.Minute)
	return NewAuthService(repoStub, redisStub, jwtManager, 24*time.Hour), repoStub, redisStub
}

func seedAdmin(t *testing.T, repoStub *stubAuthRepo, role string, actif bool) repo.Admin {
	t.Helper()
	hash, err := auth.Hash("Secret123!")
	require.NoError(t, err)
	admin := repo.Admin{
		ID:         uuid.New(),
		Nom:        "Mame Diarra",
		Email:      "admin@mahtaaj.sn",
		MotDePasse: hash,
		Role:       role,
		Actif:      actif,
	}
	repoStub.admins[admin.Email] = admin
	return admin
}

func TestLoginAdminSuccess(t *testing.T) {
	svc, repoStub, redisStub := newTestAuthService(t)
	seedAdmin(t, repoStub, RoleAdminMenage, true)

	result, err := svc.LoginAdmin(context.Background(), "admin@mahtaaj.sn", "Secret123!")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, SectionMenage, result.DefaultSection)
	assert.Equal(t, []string{RoleAdminMenage}, result.Roles)

	// La session refresh est marquée active côté redis.
	key := auth.RefreshRedisKey(AudienceAdmin, result.RefreshHash)
	assert.Equal(t, "active", redisStub.values[key])
}

func TestLoginAdminWrongPassword(t *testing.T) {
	svc, repoStub, _ := newTestAuthService(t)
	seedAdmin(t, repoStub, RoleAdminMenage, true)

	_, err := svc.LoginAdmin(context.Background(), "admin@mahtaaj.sn", "mauvais")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAdminDisabledAccount(t *testing.T) {
	svc, repoStub, _ := newTestAuthService(t)
	seedAdmin(t, repoStub, RoleAdminMenage, false)

	_, err := svc.LoginAdmin(context.Background(), "admin@mahtaaj.sn", "Secret123!")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginAdminUnknownRoleIsDropped(t *testing.T) {
	svc, repoStub, _ := newTestAuthService(t)
	seedAdmin(t, repoStub, "ADMIN_PISCINE", true)

	_, err := svc.LoginAdmin(context.Background(), "admin@mahtaaj.sn", "Secret123!")
	assert.ErrorIs(t, err, ErrNoEligibleRoles)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, repoStub, redisStub := newTestAuthService(t)
	seedAdmin(t, repoStub, RoleAdminTravaux, true)

	login, err := svc.LoginAdmin(context.Background(), "admin@mahtaaj.sn", "Secret123!")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), AudienceAdmin, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// L'ancien token ne passe plus.
	_, err = svc.Refresh(context.Background(), AudienceAdmin, login.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)

	// Le marqueur redis de l'ancien token a disparu.
	oldKey := auth.RefreshRedisKey(AudienceAdmin, login.RefreshHash)
	_, present := redisStub.values[oldKey]
	assert.False(t, present)
}

func TestRefreshRejectsWrongAudience(t *testing.T) {
	svc, repoStub, _ := newTestAuthService(t)
	seedAdmin(t, repoStub, RoleAdminTravaux, true)

	login, err := svc.LoginAdmin(context.Background(), "admin@mahtaaj.sn", "Secret123!")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), AudienceClient, login.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, repoStub, _ := newTestAuthService(t)
	seedAdmin(t, repoStub, RoleAdminMenage, true)

	login, err := svc.LoginAdmin(context.Background(), "admin@mahtaaj.sn", "Secret123!")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), AudienceAdmin, login.RefreshToken))
	// Répéter le logout ne produit pas d'erreur.
	require.NoError(t, svc.Logout(context.Background(), AudienceAdmin, login.RefreshToken))
	require.NoError(t, svc.Logout(context.Background(), AudienceAdmin, ""))

	// Après logout, le refresh est refusé.
	_, err = svc.Refresh(context.Background(), AudienceAdmin, login.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshInvalid)
}

func TestRegisterClientThenLogin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	result, err := svc.RegisterClient(context.Background(), "Awa Diop", "awa@exemple.sn", "+221771234567", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, AudienceClient, result.Audience)
	assert.Empty(t, result.DefaultSection)

	_, err = svc.RegisterClient(context.Background(), "Awa Diop", "awa@exemple.sn", "+221771234567", "Secret123!")
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.LoginClient(context.Background(), "awa@exemple.sn", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, []string{"CLIENT"}, login.Roles)
}
