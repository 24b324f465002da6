package commerce

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/util"
)

type Handler struct {
	service *CommerceService
}

func NewHandler(service *CommerceService) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes: passage de commande et vérification de code.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/commandes", h.handleCreateOrder)
	r.Get("/promotions/{code}", h.handleCheckPromotion)
}

// RegisterAdminRoutes: suivi des commandes et gestion des promotions.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/commandes", func(r chi.Router) {
		r.Get("/", h.handleListOrders)
		r.Get("/{id}", h.handleGetOrder)
		r.Patch("/{id}/statut", h.handleSetOrderStatus)
	})
	r.Route("/promotions", func(r chi.Router) {
		r.Get("/", h.handleListPromotions)
		r.Post("/", h.handleCreatePromotion)
		r.Post("/{id}/basculer", h.handleTogglePromotion)
		r.Delete("/{id}", h.handleDeletePromotion)
	})
}

type orderPayload struct {
	Nom       string             `json:"nom" validate:"required"`
	Telephone string             `json:"telephone" validate:"required"`
	Email     string             `json:"email" validate:"omitempty,email"`
	Adresse   string             `json:"adresse" validate:"required"`
	Articles  []orderItemPayload `json:"articles" validate:"required,min=1,dive"`
	CodePromo string             `json:"code_promo"`
}

type orderItemPayload struct {
	Designation  string  `json:"designation" validate:"required"`
	Quantite     int     `json:"quantite" validate:"required,gte=1"`
	PrixUnitaire float64 `json:"prix_unitaire" validate:"gte=0"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	input := CreateOrderInput{
		Nom:       payload.Nom,
		Telephone: payload.Telephone,
		Email:     payload.Email,
		Adresse:   payload.Adresse,
		CodePromo: payload.CodePromo,
	}
	for _, it := range payload.Articles {
		input.Articles = append(input.Articles, OrderItemInput{
			Designation:  it.Designation,
			Quantite:     it.Quantite,
			PrixUnitaire: it.PrixUnitaire,
		})
	}

	order, err := h.service.CreateOrder(r.Context(), input)
	if err != nil {
		if errors.Is(err, ErrEmptyOrder) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"commande": order})
}

func (h *Handler) handleCheckPromotion(w http.ResponseWriter, r *http.Request) {
	promo, err := h.service.CheckPromotion(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, ErrPromoNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "code promotionnel inconnu ou expiré", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":   promo.Code,
		"remise": promo.Remise,
	})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), r.URL.Query().Get("statut"))
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commandes": orders})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "commande introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commande": order})
}

func (h *Handler) handleSetOrderStatus(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.service.SetOrderStatus(r.Context(), id, payload.Statut)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "commande introuvable", nil)
		case errors.Is(err, ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		case errors.Is(err, ErrInvalidTransition):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commande": order})
}

func (h *Handler) handleListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.ListPromotions(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"promotions": promos})
}

type promotionPayload struct {
	Code   string `json:"code" validate:"required,alphanum,max=32"`
	Remise int    `json:"remise" validate:"required,gte=1,lte=90"`
	Debut  string `json:"debut" validate:"required"`
	Fin    string `json:"fin" validate:"required"`
}

func (h *Handler) handleCreatePromotion(w http.ResponseWriter, r *http.Request) {
	var payload promotionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON invalide", nil)
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	debut, err := time.Parse("2006-01-02", payload.Debut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "date de début invalide (AAAA-MM-JJ)", nil)
		return
	}
	fin, err := time.Parse("2006-01-02", payload.Fin)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "date de fin invalide (AAAA-MM-JJ)", nil)
		return
	}

	promo, err := h.service.CreatePromotion(r.Context(), CreatePromotionInput{
		Code:   payload.Code,
		Remise: payload.Remise,
		Debut:  debut,
		Fin:    fin.Add(24*time.Hour - time.Second),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateCode):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		case errors.Is(err, ErrInvalidCode), errors.Is(err, ErrInvalidPercent), errors.Is(err, ErrInvalidWindow):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		default:
			writeInternalError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"promotion": promo})
}

func (h *Handler) handleTogglePromotion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}

	promo, err := h.service.TogglePromotion(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPromoNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "promotion introuvable", nil)
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"promotion": promo})
}

func (h *Handler) handleDeletePromotion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "identifiant invalide", nil)
		return
	}
	if err := h.service.DeletePromotion(r.Context(), id); err != nil {
		if errors.Is(err, ErrPromoNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "promotion introuvable", nil)
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
	log.Error().Err(err).Msg("commerce: erreur interne")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "erreur interne", nil)
}
