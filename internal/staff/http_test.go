package staff

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tawdev/mahtaaj/internal/auth"
	"github.com/tawdev/mahtaaj/internal/http/middleware"
)

// newAdminStaffRouter reproduit la chaîne de garde du backoffice
// devant les routes employés.
func newAdminStaffRouter(t *testing.T, repo *memRepo) (*chi.Mux, *auth.JWTManager) {
	t.Helper()
	jwtManager := auth.NewJWTManager("clef-de-test-suffisamment-longue-0001", time.Minute)

	router := chi.NewRouter()
	router.Route("/admin/employes", func(r chi.Router) {
		r.Use(middleware.Auth(jwtManager))
		r.Use(middleware.RequireAdmin)
		NewHandler(NewService(repo)).RegisterAdminRoutes(r)
	})
	return router, jwtManager
}

func adminToken(t *testing.T, jwtManager *auth.JWTManager, role string) string {
	t.Helper()
	token, _, err := jwtManager.GenerateAccessToken(uuid.New().String(), "admin", []string{role})
	require.NoError(t, err)
	return token
}

func doStaffRequest(router *chi.Mux, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAdminStaffRoutesRejectForeignLine(t *testing.T) {
	repo := newMemRepo()
	garde := &Employee{ID: uuid.New(), Nom: "Awa Gueye", Ligne: "securite", Statut: StatusActive}
	repo.employes[garde.ID] = garde

	router, jwtManager := newAdminStaffRouter(t, repo)
	token := adminToken(t, jwtManager, "ADMIN_BEBE")

	// Lecture d'une ligne hors périmètre: refus avec section de repli.
	rec := doStaffRequest(router, http.MethodGet, "/admin/employes?ligne=securite", token)
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
	assert.Equal(t, "securite", envelope.Error.Details.Section)
	assert.Equal(t, "bebe", envelope.Error.Details.Redirect)

	// Suppression d'une fiche d'une autre ligne: refusée, fiche intacte.
	rec = doStaffRequest(router, http.MethodDelete, "/admin/employes/"+garde.ID.String(), token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	_, existe := repo.employes[garde.ID]
	assert.True(t, existe, "la fiche ne doit pas être supprimée")

	// Même refus sur les transitions et le badge.
	rec = doStaffRequest(router, http.MethodPost, "/admin/employes/"+garde.ID.String()+"/valider", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doStaffRequest(router, http.MethodGet, "/admin/employes/"+garde.ID.String()+"/badge.pdf", token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminStaffListRequiresLineForLineAdmins(t *testing.T) {
	router, jwtManager := newAdminStaffRouter(t, newMemRepo())
	token := adminToken(t, jwtManager, "ADMIN_MENAGE")

	rec := doStaffRequest(router, http.MethodGet, "/admin/employes", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doStaffRequest(router, http.MethodGet, "/admin/employes?ligne=menage", token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminStaffPrincipalCoversEveryLine(t *testing.T) {
	repo := newMemRepo()
	garde := &Employee{ID: uuid.New(), Nom: "Awa Gueye", Ligne: "securite", Statut: StatusActive}
	repo.employes[garde.ID] = garde

	router, jwtManager := newAdminStaffRouter(t, repo)
	token := adminToken(t, jwtManager, "ADMIN_PRINCIPAL")

	rec := doStaffRequest(router, http.MethodGet, "/admin/employes", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doStaffRequest(router, http.MethodDelete, "/admin/employes/"+garde.ID.String(), token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, existe := repo.employes[garde.ID]
	assert.False(t, existe)
}
