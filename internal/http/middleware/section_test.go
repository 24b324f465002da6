package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawdev/mahtaaj/internal/auth"
	"github.com/tawdev/mahtaaj/internal/service"
)

func newGuardedRouter(t *testing.T) (*chi.Mux, *auth.JWTManager) {
	t.Helper()
	jwtManager := auth.NewJWTManager("clef-de-test-suffisamment-longue-0001", time.Minute)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Auth(jwtManager))
		r.Use(RequireAdmin)
		r.With(RequireSection(service.SectionMenage)).
			Get("/admin/menage", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		r.With(RequireSection(service.SectionCommerce)).
			Get("/admin/commerce", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
	})
	return r, jwtManager
}

func TestRequireSectionAllowsRoleInAllowlist(t *testing.T) {
	router, jwtManager := newGuardedRouter(t)

	token, _, err := jwtManager.GenerateAccessToken("sub", service.AudienceAdmin, []string{service.RoleAdminMenage})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/menage", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSectionDeniesWithRedirect(t *testing.T) {
	router, jwtManager := newGuardedRouter(t)

	token, _, err := jwtManager.GenerateAccessToken("sub", service.AudienceAdmin, []string{service.RoleAdminMenage})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/commerce", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Section  string `json:"section"`
				Redirect string `json:"redirect"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "FORBIDDEN", envelope.Error.Code)
	assert.Equal(t, service.SectionCommerce, envelope.Error.Details.Section)
	// Le refus indique la page d'atterrissage du rôle.
	assert.Equal(t, service.SectionMenage, envelope.Error.Details.Redirect)
}

func TestRequireSectionPrincipalBypass(t *testing.T) {
	router, jwtManager := newGuardedRouter(t)

	token, _, err := jwtManager.GenerateAccessToken("sub", service.AudienceAdmin, []string{service.RoleAdminPrincipal})
	require.NoError(t, err)

	for _, path := range []string{"/admin/menage", "/admin/commerce"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRequireAdminRejectsClientAudience(t *testing.T) {
	router, jwtManager := newGuardedRouter(t)

	token, _, err := jwtManager.GenerateAccessToken("sub", service.AudienceClient, []string{"CLIENT"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/menage", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router, _ := newGuardedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/menage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
