package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tawdev/mahtaaj/internal/service"
)

// RequireAdmin garantit une session backoffice.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(GetAudience(r.Context()), service.AudienceAdmin) {
			writeSectionError(w, http.StatusForbidden, "FORBIDDEN", "accès réservé au backoffice", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSection garantit l'accès à une section du backoffice selon
// l'allowlist rôle → sections. Le rôle principal passe toujours. En cas de
// refus, la section d'atterrissage du rôle est renvoyée dans les détails
// pour que le dashboard redirige l'utilisateur.
func RequireSection(section string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.EqualFold(GetAudience(r.Context()), service.AudienceAdmin) {
				writeSectionError(w, http.StatusForbidden, "FORBIDDEN", "accès réservé au backoffice", nil)
				return
			}

			roles := GetRoles(r.Context())
			if service.CanAccess(roles, section) {
				next.ServeHTTP(w, r)
				return
			}

			redirect := service.SectionDashboard
			if len(roles) > 0 {
				redirect = service.DefaultSection(roles[0])
			}
			writeSectionError(w, http.StatusForbidden, "FORBIDDEN", "section hors du périmètre du rôle", map[string]any{
				"section":  section,
				"redirect": redirect,
			})
		})
	}
}

// RequireRoles garantit au moins un des rôles demandés (principal inclus).
func RequireRoles(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if service.HasAnyRole(GetRoles(r.Context()), required...) {
				next.ServeHTTP(w, r)
				return
			}
			writeSectionError(w, http.StatusForbidden, "FORBIDDEN", "rôle insuffisant", nil)
		})
	}
}

func writeSectionError(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":  nil,
		"error": body,
	})
}
