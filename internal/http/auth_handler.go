package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tawdev/mahtaaj/internal/http/middleware"
	"github.com/tawdev/mahtaaj/internal/service"
	"github.com/tawdev/mahtaaj/internal/util"
)

// AuthHandler expose login, register, refresh, logout et /me.
type AuthHandler struct {
	auth         *service.AuthService
	refreshTTL   time.Duration
	secureCookie bool
}

func NewAuthHandler(authService *service.AuthService, refreshTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: authService, refreshTTL: refreshTTL, secureCookie: secureCookie}
}

func refreshCookieName(audience string) string {
	return "refresh_" + audience
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, audience, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName(audience),
		Value:    token,
		Path:     "/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter, audience string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName(audience),
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleAdminLogin authentifie un membre du backoffice et renvoie la
// section d'atterrissage correspondant à son rôle.
func (h *AuthHandler) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	result, err := h.auth.LoginAdmin(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.setRefreshCookie(w, result.Audience, result.RefreshToken)
	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token":    result.AccessToken,
		"profil":          result.Profile,
		"default_section": result.DefaultSection,
	})
}

func (h *AuthHandler) HandleClientLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	result, err := h.auth.LoginClient(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.setRefreshCookie(w, result.Audience, result.RefreshToken)
	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"profil":       result.Profile,
	})
}

type registerPayload struct {
	Nom       string `json:"nom" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Telephone string `json:"telephone"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (h *AuthHandler) HandleClientRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	result, err := h.auth.RegisterClient(r.Context(), payload.Nom, payload.Email, payload.Telephone, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			WriteError(w, http.StatusConflict, "CONFLICT", "adresse email déjà utilisée", nil)
			return
		}
		h.writeAuthError(w, err)
		return
	}

	h.setRefreshCookie(w, result.Audience, result.RefreshToken)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"access_token": result.AccessToken,
		"profil":       result.Profile,
	})
}

// HandleRefresh échange le refresh token (cookie ou corps) contre une
// nouvelle paire. L'ancien token est révoqué dans la foulée.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	audience, raw := h.extractRefresh(r)
	if raw == "" {
		WriteError(w, http.StatusUnauthorized, "AUTH", "refresh token absent", nil)
		return
	}

	result, err := h.auth.Refresh(r.Context(), audience, raw)
	if err != nil {
		// Session expirée ou révoquée: on nettoie le cookie.
		h.clearRefreshCookie(w, audience)
		h.writeAuthError(w, err)
		return
	}

	h.setRefreshCookie(w, result.Audience, result.RefreshToken)
	body := map[string]any{
		"access_token": result.AccessToken,
		"profil":       result.Profile,
	}
	if result.DefaultSection != "" {
		body["default_section"] = result.DefaultSection
	}
	WriteJSON(w, http.StatusOK, body)
}

// HandleLogout révoque la session. Idempotent: un token déjà révoqué
// ou absent répond quand même un succès. Les deux cookies d'audience
// sont traités, sans exiger de désigner l'audience dans l'appel.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	for _, audience := range []string{service.AudienceAdmin, service.AudienceClient} {
		if cookie, err := r.Cookie(refreshCookieName(audience)); err == nil && cookie.Value != "" {
			_ = h.auth.Logout(r.Context(), audience, cookie.Value)
		}
		h.clearRefreshCookie(w, audience)
	}

	var payload struct {
		RefreshToken string `json:"refresh_token"`
		Audience     string `json:"audience"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.RefreshToken != "" {
		audience := payload.Audience
		if audience != service.AudienceAdmin && audience != service.AudienceClient {
			audience = service.AudienceClient
		}
		_ = h.auth.Logout(r.Context(), audience, payload.RefreshToken)
	}

	WriteJSON(w, http.StatusOK, map[string]any{"deconnecte": true})
}

// HandleMe renvoie le profil du porteur du token d'accès.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(middleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "token invalide", nil)
		return
	}

	profile, roles, err := h.auth.GetMe(r.Context(), middleware.GetAudience(r.Context()), subject)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	body := map[string]any{"profil": profile}
	if roles != nil {
		body["roles"] = roles
	}
	WriteJSON(w, http.StatusOK, body)
}

// extractRefresh cherche le token dans le cookie de l'audience
// demandée, puis dans le corps JSON en secours.
func (h *AuthHandler) extractRefresh(r *http.Request) (string, string) {
	audience := r.URL.Query().Get("audience")
	if audience != service.AudienceAdmin && audience != service.AudienceClient {
		audience = service.AudienceClient
	}

	if cookie, err := r.Cookie(refreshCookieName(audience)); err == nil && cookie.Value != "" {
		return audience, cookie.Value
	}

	var payload struct {
		RefreshToken string `json:"refresh_token"`
		Audience     string `json:"audience"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.RefreshToken != "" {
		if payload.Audience == service.AudienceAdmin || payload.Audience == service.AudienceClient {
			audience = payload.Audience
		}
		return audience, payload.RefreshToken
	}
	return audience, ""
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", "identifiants invalides", nil)
	case errors.Is(err, service.ErrAccountDisabled):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "compte désactivé", nil)
	case errors.Is(err, service.ErrNoEligibleRoles):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "aucun rôle reconnu pour ce compte", nil)
	case errors.Is(err, service.ErrRefreshInvalid):
		WriteError(w, http.StatusUnauthorized, "AUTH", "session expirée, reconnectez-vous", nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
	}
}
