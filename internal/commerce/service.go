package commerce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CommerceRepository interface {
	CreateOrder(ctx context.Context, input CreateOrderInput, total float64, codePromo string) (*Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, statut string) ([]Order, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, statut string) (*Order, error)
	CreatePromotion(ctx context.Context, input CreatePromotionInput) (*Promotion, error)
	GetPromotionByCode(ctx context.Context, code string) (*Promotion, error)
	ListPromotions(ctx context.Context) ([]Promotion, error)
	TogglePromotion(ctx context.Context, id uuid.UUID) (*Promotion, error)
	DeletePromotion(ctx context.Context, id uuid.UUID) error
}

type CommerceService struct {
	repo CommerceRepository
	now  func() time.Time
}

func NewService(repo CommerceRepository) *CommerceService {
	return &CommerceService{repo: repo, now: time.Now}
}

// CreateOrder calcule le total côté serveur à partir des articles et,
// le cas échéant, de la promotion en cours de validité. Un code expiré
// ou désactivé est ignoré sans bloquer la commande.
func (s *CommerceService) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if len(input.Articles) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, it := range input.Articles {
		if it.Quantite <= 0 || it.PrixUnitaire < 0 || strings.TrimSpace(it.Designation) == "" {
			return nil, fmt.Errorf("%w: article invalide", ErrEmptyOrder)
		}
	}

	remise := 0
	codeApplique := ""
	if code := strings.TrimSpace(input.CodePromo); code != "" {
		promo, err := s.repo.GetPromotionByCode(ctx, code)
		if err != nil && !errors.Is(err, ErrPromoNotFound) {
			return nil, err
		}
		if promo != nil && promo.EstValable(s.now()) {
			remise = promo.Remise
			codeApplique = promo.Code
		}
	}

	total := ComputeTotal(input.Articles, remise)
	return s.repo.CreateOrder(ctx, input, total, codeApplique)
}

func (s *CommerceService) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *CommerceService) ListOrders(ctx context.Context, statut string) ([]Order, error) {
	if statut != "" && !IsValidOrderStatus(statut) {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListOrders(ctx, statut)
}

func (s *CommerceService) SetOrderStatus(ctx context.Context, id uuid.UUID, statut string) (*Order, error) {
	if !IsValidOrderStatus(statut) {
		return nil, ErrInvalidStatus
	}
	current, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Statut == statut {
		return current, nil
	}
	if !CanTransitionOrder(current.Statut, statut) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Statut, statut)
	}
	return s.repo.SetOrderStatus(ctx, id, statut)
}

func (s *CommerceService) CreatePromotion(ctx context.Context, input CreatePromotionInput) (*Promotion, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if input.Code == "" {
		return nil, ErrInvalidCode
	}
	if input.Remise < 1 || input.Remise > 90 {
		return nil, ErrInvalidPercent
	}
	if !input.Fin.After(input.Debut) {
		return nil, ErrInvalidWindow
	}
	return s.repo.CreatePromotion(ctx, input)
}

func (s *CommerceService) ListPromotions(ctx context.Context) ([]Promotion, error) {
	return s.repo.ListPromotions(ctx)
}

func (s *CommerceService) TogglePromotion(ctx context.Context, id uuid.UUID) (*Promotion, error) {
	return s.repo.TogglePromotion(ctx, id)
}

func (s *CommerceService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePromotion(ctx, id)
}

// CheckPromotion renvoie la remise applicable pour un code, utilisée
// par la boutique avant validation du panier.
func (s *CommerceService) CheckPromotion(ctx context.Context, code string) (*Promotion, error) {
	promo, err := s.repo.GetPromotionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !promo.EstValable(s.now()) {
		return nil, ErrPromoNotFound
	}
	return promo, nil
}
