package catalog

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

// Handler orchestre les routes du catalogue.
type Handler struct {
	service *CatalogService
}

func NewHandler(service *CatalogService) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes monte les routes de consultation (visiteurs).
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/categories", h.handleListPublicCategories)
	r.Get("/categories/{id}/services", h.handleListPublicServices)
	r.Get("/services/{id}", h.handleGetPublicService)
}

// RegisterAdminRoutes monte les routes CRUD du backoffice.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.handleListCategories)
		r.Post("/", h.handleCreateCategory)
		r.Patch("/{id}", h.handleUpdateCategory)
		r.Delete("/{id}", h.handleDeleteCategory)
	})
	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.handleListServices)
		r.Post("/", h.handleCreateService)
		r.Patch("/{id}", h.handleUpdateService)
		r.Delete("/{id}", h.handleDeleteService)
		r.Post("/{id}/valider", h.handleValidateService)
		r.Post("/{id}/rejeter", h.handleRejectService)
		r.Post("/{id}/basculer", h.handleToggleService)
	})
}

func (h *Handler) handleListPublicCategories(w http.ResponseWriter, r *http.Request) {
	ligne := r.URL.Query().Get("ligne")
	categories, err := h.service.ListCategories(r.Context(), ligne, true)
	if err != nil {
		if errors.Is(err, ErrInvalidLine) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) handleListPublicServices(w http.ResponseWriter, r *http.Request) {
	catID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	// Seuls les services actifs sont visibles du public.
	services, err := h.service.ListServices(r.Context(), ServiceFilter{
		CategorieID: &catID,
		Statut:      StatusActive,
		Query:       r.URL.Query().Get("q"),
	})
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (h *Handler) handleGetPublicService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	svc, err := h.service.GetService(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "service introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	if svc.Statut != StatusActive {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "service introuvable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"service": svc})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context(), r.URL.Query().Get("ligne"), false)
	if err != nil {
		if errors.Is(err, ErrInvalidLine) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

type categoryPayload struct {
	Nom   string `json:"nom" validate:"required"`
	Ligne string `json:"ligne" validate:"required"`
	Image string `json:"image"`
	Ordre int    `json:"ordre"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	cat, err := h.service.CreateCategory(r.Context(), CreateCategoryInput{
		Nom:   payload.Nom,
		Ligne: payload.Ligne,
		Image: payload.Image,
		Ordre: payload.Ordre,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidLine) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"categorie": cat})
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	var payload struct {
		Nom   *string `json:"nom"`
		Image *string `json:"image"`
		Ordre *int    `json:"ordre"`
		Actif *bool   `json:"actif"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	cat, err := h.service.UpdateCategory(r.Context(), UpdateCategoryInput{
		ID:    id,
		Nom:   payload.Nom,
		Image: payload.Image,
		Ordre: payload.Ordre,
		Actif: payload.Actif,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "catégorie introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categorie": cat})
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "catégorie introuvable", nil)
		case errors.Is(err, ErrCategoryInUse):
			// Violation de clé étrangère: indice métier plutôt que le message SQL brut.
			writeError(w, http.StatusConflict, "CONFLICT", "supprimez d'abord les services de cette catégorie", nil)
		default:
			writeInternalError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListServices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ServiceFilter{
		Ligne:  q.Get("ligne"),
		Statut: q.Get("statut"),
		Query:  q.Get("q"),
	}
	if raw := q.Get("categorie_id"); raw != "" {
		catID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "categorie_id invalide", nil)
			return
		}
		filter.CategorieID = &catID
	}

	services, err := h.service.ListServices(r.Context(), filter)
	if err != nil {
		if errors.Is(err, ErrInvalidLine) || errors.Is(err, ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

type servicePayload struct {
	CategorieID string  `json:"categorie_id" validate:"required,uuid"`
	Nom         string  `json:"nom" validate:"required"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	PrixBase    float64 `json:"prix_base" validate:"gte=0"`
	TauxHoraire float64 `json:"taux_horaire" validate:"gte=0"`
	Ordre       int     `json:"ordre"`
}

func (h *Handler) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var payload servicePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	catID, err := uuid.Parse(payload.CategorieID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "categorie_id invalide", nil)
		return
	}

	svc, err := h.service.CreateService(r.Context(), CreateServiceInput{
		CategorieID: catID,
		Nom:         payload.Nom,
		Description: payload.Description,
		Image:       payload.Image,
		PrixBase:    payload.PrixBase,
		TauxHoraire: payload.TauxHoraire,
		Ordre:       payload.Ordre,
	})
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			writeError(w, http.StatusBadRequest, "VALIDATION", "la catégorie indiquée n'existe pas", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"service": svc})
}

func (h *Handler) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	var payload struct {
		Nom         *string  `json:"nom"`
		Description *string  `json:"description"`
		Image       *string  `json:"image"`
		PrixBase    *float64 `json:"prix_base"`
		TauxHoraire *float64 `json:"taux_horaire"`
		Ordre       *int     `json:"ordre"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}

	svc, err := h.service.UpdateService(r.Context(), UpdateServiceInput{
		ID:          id,
		Nom:         payload.Nom,
		Description: payload.Description,
		Image:       payload.Image,
		PrixBase:    payload.PrixBase,
		TauxHoraire: payload.TauxHoraire,
		Ordre:       payload.Ordre,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "service introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"service": svc})
}

func (h *Handler) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	if err := h.service.DeleteService(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "service introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleValidateService(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Validate)
}

func (h *Handler) handleRejectService(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject)
}

func (h *Handler) handleToggleService(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ToggleActive)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID) (*Service, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	svc, err := fn(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "service introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"service": svc})
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
	log.Error().Err(err).Msg("catalogue: erreur interne")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
}
