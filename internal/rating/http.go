package rating

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/http/middleware"
	"github.com/tawdev/mahtaaj/internal/util"
)

type Handler struct {
	service *RatingService
}

func NewHandler(service *RatingService) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes: consultation des avis d'un service.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/services/{id}/avis", h.handleListByService)
	r.Get("/services/{id}/avis/resume", h.handleSummarize)
}

// RegisterClientRoutes: dépôt d'avis, réservé aux clients connectés.
func (h *Handler) RegisterClientRoutes(r chi.Router) {
	r.Post("/avis", h.handleCreate)
	r.Get("/avis/deja-note", h.handleHasRated)
}

// RegisterAdminRoutes: modération.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/services/{id}", h.handleListByService)
	r.Delete("/{id}", h.handleDelete)
}

type createPayload struct {
	ServiceID   string `json:"service_id" validate:"required,uuid"`
	Note        int    `json:"note" validate:"required,gte=1,lte=5"`
	Commentaire string `json:"commentaire" validate:"max=2000"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "authentification requise", nil)
		return
	}

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	serviceID, err := uuid.Parse(payload.ServiceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "service_id invalide", nil)
		return
	}

	rt, err := h.service.Create(r.Context(), CreateRatingInput{
		ServiceID:   serviceID,
		ClientID:    clientID,
		Note:        payload.Note,
		Commentaire: payload.Commentaire,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateRating):
			writeError(w, http.StatusConflict, "DUPLICATE_RATING", "vous avez déjà noté ce service", nil)
		case errors.Is(err, ErrUnknownService):
			writeError(w, http.StatusBadRequest, "VALIDATION", "service inconnu", nil)
		case errors.Is(err, ErrInvalidScore):
			writeError(w, http.StatusBadRequest, "VALIDATION", "la note doit être comprise entre 1 et 5", nil)
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"avis": rt})
}

func (h *Handler) handleHasRated(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientFromContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AUTH", "authentification requise", nil)
		return
	}
	serviceID, err := uuid.Parse(r.URL.Query().Get("service_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "service_id invalide", nil)
		return
	}

	rated, err := h.service.HasRated(r.Context(), clientID, serviceID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deja_note": rated})
}

func (h *Handler) handleListByService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	avis, err := h.service.ListByService(r.Context(), serviceID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"avis": avis})
}

func (h *Handler) handleSummarize(w http.ResponseWriter, r *http.Request) {
	serviceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	summary, err := h.service.Summarize(r.Context(), serviceID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resume": summary})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "avis introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func clientFromContext(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetSubject(r.Context()))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
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
	log.Error().Err(err).Msg("avis: erreur interne")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
}
