package staff

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/http/middleware"
	"github.com/tawdev/mahtaaj/internal/service"
	"github.com/tawdev/mahtaaj/internal/util"
)

type Handler struct {
	service *StaffService
}

func NewHandler(service *StaffService) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes: fiches validées d'une ligne de service.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/lignes/{ligne}/employes", h.handleListPublic)
}

// RegisterAdminRoutes: gestion et modération des fiches.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
	r.Post("/{id}/valider", h.handleValidate)
	r.Post("/{id}/rejeter", h.handleReject)
	r.Post("/{id}/basculer", h.handleToggle)
	r.Get("/{id}/badge.pdf", h.handleBadge)
}

func (h *Handler) handleListPublic(w http.ResponseWriter, r *http.Request) {
	employes, err := h.service.ListPublic(r.Context(), chi.URLParam(r, "ligne"))
	if err != nil {
		if errors.Is(err, ErrInvalidLine) {
			writeError(w, http.StatusBadRequest, "VALIDATION", "ligne de service inconnue", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employes": employes})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ligne := q.Get("ligne")
	if ligne == "" {
		// Seul le rôle principal voit toutes les lignes d'un coup.
		if !service.HasRole(middleware.GetRoles(r.Context()), service.RoleAdminPrincipal) {
			writeError(w, http.StatusBadRequest, "VALIDATION", "paramètre ligne requis", nil)
			return
		}
	} else if !requireLine(w, r, ligne) {
		return
	}
	employes, err := h.service.List(r.Context(), EmployeeFilter{
		Ligne:  ligne,
		Statut: q.Get("statut"),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidLine) || errors.Is(err, ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employes": employes})
}

type employeePayload struct {
	Nom        string `json:"nom" validate:"required"`
	Telephone  string `json:"telephone" validate:"required"`
	Ligne      string `json:"ligne" validate:"required"`
	Poste      string `json:"poste"`
	Photo      string `json:"photo"`
	Experience int    `json:"experience" validate:"gte=0"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	if !IsValidLine(payload.Ligne) {
		writeError(w, http.StatusBadRequest, "VALIDATION", "ligne de service inconnue", nil)
		return
	}
	if !requireLine(w, r, payload.Ligne) {
		return
	}

	emp, err := h.service.Create(r.Context(), CreateEmployeeInput{
		Nom:        payload.Nom,
		Telephone:  payload.Telephone,
		Ligne:      payload.Ligne,
		Poste:      payload.Poste,
		Photo:      payload.Photo,
		Experience: payload.Experience,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidLine):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		case errors.Is(err, ErrDuplicatePhone):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"employe": emp})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.fetch(w, r)
	if !ok || !requireLine(w, r, emp.Ligne) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employe": emp})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	current, ok := h.fetch(w, r)
	if !ok || !requireLine(w, r, current.Ligne) {
		return
	}

	var payload struct {
		Nom        *string `json:"nom"`
		Telephone  *string `json:"telephone"`
		Poste      *string `json:"poste"`
		Photo      *string `json:"photo"`
		Experience *int    `json:"experience"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	emp, err := h.service.Update(r.Context(), UpdateEmployeeInput{
		ID:         current.ID,
		Nom:        payload.Nom,
		Telephone:  payload.Telephone,
		Poste:      payload.Poste,
		Photo:      payload.Photo,
		Experience: payload.Experience,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "employé introuvable", nil)
		case errors.Is(err, ErrDuplicatePhone):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employe": emp})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.fetch(w, r)
	if !ok || !requireLine(w, r, emp.Ligne) {
		return
	}
	if err := h.service.Delete(r.Context(), emp.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "employé introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Validate)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ToggleActive)
}

// handleBadge sert le badge PDF en pièce jointe.
func (h *Handler) handleBadge(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.fetch(w, r)
	if !ok || !requireLine(w, r, emp.Ligne) {
		return
	}

	data, err := BadgePDF(emp)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="badge-`+emp.ID.String()+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (*Employee, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return nil, false
	}
	emp, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "employé introuvable", nil)
			return nil, false
		}
		writeInternalError(w, err)
		return nil, false
	}
	return emp, true
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*Employee, error)) {
	current, ok := h.fetch(w, r)
	if !ok || !requireLine(w, r, current.Ligne) {
		return
	}
	emp, err := fn(r.Context(), current.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "employé introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employe": emp})
}

// requireLine vérifie que le porteur du token couvre la ligne visée.
// Chaque ligne de service correspond à la section du même nom; le refus
// porte la section de repli du rôle, comme la sonde de navigation.
func requireLine(w http.ResponseWriter, r *http.Request, ligne string) bool {
	roles := middleware.GetRoles(r.Context())
	if service.CanAccess(roles, ligne) {
		return true
	}
	redirect := service.SectionDashboard
	if len(roles) > 0 {
		redirect = service.DefaultSection(roles[0])
	}
	writeError(w, http.StatusForbidden, "FORBIDDEN", "section hors du périmètre du rôle", map[string]any{
		"section":  ligne,
		"redirect": redirect,
	})
	return false
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "error": nil})
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"code": code, "message": message}
	if details != nil {
		body["details"] = details
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"data": nil, "error": body})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("employés: erreur interne")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
}
