package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/util"
)

type Handler struct {
	service *ContactService
}

func NewHandler(service *ContactService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/contact", h.handleSubmit)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/{id}/lu", h.handleMarkRead)
	r.Post("/{id}/non-lu", h.handleMarkUnread)
	r.Delete("/{id}", h.handleDelete)
}

type submitPayload struct {
	Nom       string `json:"nom" validate:"required"`
	Telephone string `json:"telephone" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Sujet     string `json:"sujet" validate:"max=200"`
	Contenu   string `json:"contenu" validate:"required,max=5000"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	msg, err := h.service.Submit(r.Context(), CreateMessageInput{
		Nom:       payload.Nom,
		Telephone: payload.Telephone,
		Email:     payload.Email,
		Sujet:     payload.Sujet,
		Contenu:   payload.Contenu,
	})
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	onlyUnread := r.URL.Query().Get("non_lus") == "true"
	messages, err := h.service.List(r.Context(), onlyUnread)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	h.setRead(w, r, h.service.MarkRead)
}

func (h *Handler) handleMarkUnread(w http.ResponseWriter, r *http.Request) {
	h.setRead(w, r, h.service.MarkUnread)
}

func (h *Handler) setRead(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*Message, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	msg, err := fn(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "message introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "message introuvable", nil)
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
	log.Error().Err(err).Msg("contact: erreur interne")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
}
