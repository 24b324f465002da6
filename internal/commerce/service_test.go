package commerce

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	commandes  map[uuid.UUID]*Order
	promotions map[string]*Promotion
}

func newMemRepo() *memRepo {
	return &memRepo{
		commandes:  map[uuid.UUID]*Order{},
		promotions: map[string]*Promotion{},
	}
}

func (m *memRepo) CreateOrder(_ context.Context, input CreateOrderInput, total float64, codePromo string) (*Order, error) {
	order := &Order{
		ID:        uuid.New(),
		Nom:       input.Nom,
		Telephone: input.Telephone,
		Total:     total,
		Statut:    OrderPending,
		CodePromo: codePromo,
	}
	for _, it := range input.Articles {
		order.Articles = append(order.Articles, OrderItem{
			ID:           uuid.New(),
			Designation:  it.Designation,
			Quantite:     it.Quantite,
			PrixUnitaire: it.PrixUnitaire,
		})
	}
	m.commandes[order.ID] = order
	return order, nil
}

func (m *memRepo) GetOrder(_ context.Context, id uuid.UUID) (*Order, error) {
	order, ok := m.commandes[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (m *memRepo) ListOrders(_ context.Context, statut string) ([]Order, error) {
	var out []Order
	for _, order := range m.commandes {
		if statut == "" || order.Statut == statut {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memRepo) SetOrderStatus(_ context.Context, id uuid.UUID, statut string) (*Order, error) {
	order, ok := m.commandes[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	order.Statut = statut
	return order, nil
}

func (m *memRepo) CreatePromotion(_ context.Context, input CreatePromotionInput) (*Promotion, error) {
	code := strings.ToUpper(input.Code)
	if _, exists := m.promotions[code]; exists {
		return nil, ErrDuplicateCode
	}
	promo := &Promotion{
		ID:     uuid.New(),
		Code:   code,
		Remise: input.Remise,
		Debut:  input.Debut,
		Fin:    input.Fin,
		Actif:  true,
	}
	m.promotions[code] = promo
	return promo, nil
}

func (m *memRepo) GetPromotionByCode(_ context.Context, code string) (*Promotion, error) {
	promo, ok := m.promotions[strings.ToUpper(code)]
	if !ok {
		return nil, ErrPromoNotFound
	}
	return promo, nil
}

func (m *memRepo) ListPromotions(_ context.Context) ([]Promotion, error) {
	var out []Promotion
	for _, promo := range m.promotions {
		out = append(out, *promo)
	}
	return out, nil
}

func (m *memRepo) TogglePromotion(_ context.Context, id uuid.UUID) (*Promotion, error) {
	for _, promo := range m.promotions {
		if promo.ID == id {
			promo.Actif = !promo.Actif
			return promo, nil
		}
	}
	return nil, ErrPromoNotFound
}

func (m *memRepo) DeletePromotion(_ context.Context, id uuid.UUID) error {
	for code, promo := range m.promotions {
		if promo.ID == id {
			delete(m.promotions, code)
			return nil
		}
	}
	return ErrPromoNotFound
}

func TestComputeTotal(t *testing.T) {
	items := []OrderItemInput{
		{Designation: "Perceuse", Quantite: 1, PrixUnitaire: 45000},
		{Designation: "Gants", Quantite: 3, PrixUnitaire: 1500},
	}
	assert.Equal(t, 49500.0, ComputeTotal(items, 0))
	assert.Equal(t, 44550.0, ComputeTotal(items, 10))
}

func orderInput() CreateOrderInput {
	return CreateOrderInput{
		Nom:       "Cheikh Fall",
		Telephone: "+221775555555",
		Adresse:   "Thiès",
		Articles: []OrderItemInput{
			{Designation: "Ciment 50kg", Quantite: 4, PrixUnitaire: 5000},
		},
	}
}

func TestCreateOrderAppliesValidPromotion(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	now := time.Now()
	_, err := repo.CreatePromotion(context.Background(), CreatePromotionInput{
		Code: "RENTREE", Remise: 20, Debut: now.Add(-time.Hour), Fin: now.Add(time.Hour),
	})
	require.NoError(t, err)

	input := orderInput()
	input.CodePromo = "rentree"
	order, err := svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 16000.0, order.Total)
	assert.Equal(t, "RENTREE", order.CodePromo)
}

func TestCreateOrderIgnoresExpiredPromotion(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	now := time.Now()
	_, err := repo.CreatePromotion(context.Background(), CreatePromotionInput{
		Code: "VIEUX", Remise: 50, Debut: now.Add(-48 * time.Hour), Fin: now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	input := orderInput()
	input.CodePromo = "VIEUX"
	order, err := svc.CreateOrder(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 20000.0, order.Total)
	assert.Empty(t, order.CodePromo)
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	svc := NewService(newMemRepo())

	input := orderInput()
	input.Articles = nil
	_, err := svc.CreateOrder(context.Background(), input)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestSetOrderStatusEnforcesTransitions(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	order, err := svc.CreateOrder(context.Background(), orderInput())
	require.NoError(t, err)

	order, err = svc.SetOrderStatus(context.Background(), order.ID, OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, OrderConfirmed, order.Statut)

	// Une commande expédiée ne revient pas en attente.
	order, err = svc.SetOrderStatus(context.Background(), order.ID, OrderShipped)
	require.NoError(t, err)
	_, err = svc.SetOrderStatus(context.Background(), order.ID, OrderPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreatePromotionValidations(t *testing.T) {
	svc := NewService(newMemRepo())
	now := time.Now()

	_, err := svc.CreatePromotion(context.Background(), CreatePromotionInput{
		Code: "TROP", Remise: 95, Debut: now, Fin: now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidPercent)

	_, err = svc.CreatePromotion(context.Background(), CreatePromotionInput{
		Code: "FENETRE", Remise: 10, Debut: now.Add(time.Hour), Fin: now,
	})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = svc.CreatePromotion(context.Background(), CreatePromotionInput{
		Code: "OK", Remise: 10, Debut: now, Fin: now.Add(time.Hour),
	})
	assert.NoError(t, err)

	_, err = svc.CreatePromotion(context.Background(), CreatePromotionInput{
		Code: "ok", Remise: 15, Debut: now, Fin: now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrDuplicateCode)
}
