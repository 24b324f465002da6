package reservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/http/middleware"
	"github.com/tawdev/mahtaaj/internal/util"
)

type Handler struct {
	service *ReservationService
}

func NewHandler(service *ReservationService) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes: dépôt d'une réservation sans compte.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/reservations", h.handleCreate)
}

// RegisterClientRoutes: réservations du client connecté.
func (h *Handler) RegisterClientRoutes(r chi.Router) {
	r.Get("/reservations", h.handleListMine)
	r.Post("/reservations", h.handleCreate)
}

// RegisterAdminRoutes: suivi backoffice, filtrable par ligne de service.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Patch("/{id}/statut", h.handleSetStatus)
	r.Delete("/{id}", h.handleDelete)
}

type createPayload struct {
	ServiceID string `json:"service_id" validate:"required,uuid"`
	Nom       string `json:"nom" validate:"required"`
	Telephone string `json:"telephone" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Adresse   string `json:"adresse" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Heures    int    `json:"heures" validate:"required,gte=1,lte=12"`
	Notes     string `json:"notes"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
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
	date, err := time.Parse(time.RFC3339, payload.Date)
	if err != nil {
		// Les formulaires envoient parfois la date seule.
		date, err = time.Parse("2006-01-02", payload.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "date invalide (RFC3339 ou AAAA-MM-JJ)", nil)
			return
		}
	}

	input := CreateReservationInput{
		ServiceID: serviceID,
		Nom:       payload.Nom,
		Telephone: payload.Telephone,
		Email:     payload.Email,
		Adresse:   payload.Adresse,
		Date:      date,
		Heures:    payload.Heures,
		Notes:     payload.Notes,
	}
	// Réservation authentifiée: on rattache le client connecté.
	if sub := middleware.GetSubject(r.Context()); sub != "" {
		if clientID, err := uuid.Parse(sub); err == nil {
			input.ClientID = &clientID
		}
	}

	res, err := h.service.Create(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownService):
			writeError(w, http.StatusBadRequest, "VALIDATION", "service indisponible", nil)
		case errors.Is(err, ErrInvalidHours), errors.Is(err, ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"reservation": res})
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(middleware.GetSubject(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "AUTH", "authentification requise", nil)
		return
	}

	reservations, err := h.service.ListForClient(r.Context(), clientID)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reservations, err := h.service.List(r.Context(), ReservationFilter{
		Ligne:  q.Get("ligne"),
		Statut: q.Get("statut"),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	res, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "réservation introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservation": res})
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	var payload struct {
		Statut string `json:"statut"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	res, err := h.service.SetStatus(r.Context(), id, payload.Statut)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "réservation introuvable", nil)
		case errors.Is(err, ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		case errors.Is(err, ErrInvalidTransition):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservation": res})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "réservation introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
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
	log.Error().Err(err).Msg("réservations: erreur interne")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
}
