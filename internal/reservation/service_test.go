package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePrice(t *testing.T) {
	cases := []struct {
		name   string
		base   float64
		taux   float64
		heures int
		want   float64
	}{
		{"une heure au barème par défaut", 0, 0, 1, 150},
		{"quatre heures au barème par défaut", 0, 0, 4, 270},
		{"douze heures au barème par défaut", 0, 0, 12, 590},
		{"durée sous la borne, ramenée à 1h", 0, 0, 0, 150},
		{"durée négative, ramenée à 1h", 0, 0, -3, 150},
		{"durée au-delà de la borne, ramenée à 12h", 0, 0, 25, 590},
		{"tarif propre au service", 200, 50, 3, 300},
		{"taux horaire nul retombe sur le défaut", 200, 0, 2, 240},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputePrice(tc.base, tc.taux, tc.heures))
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusConfirmed))
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusInProgress))
	assert.True(t, CanTransition(StatusInProgress, StatusCompleted))

	// Pas de retour en arrière ni de saut d'étape.
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusCancelled, StatusConfirmed))
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
}

type stubRepo struct {
	pricing *ServicePricing
	created *Reservation
	stored  map[uuid.UUID]*Reservation
}

func (s *stubRepo) GetServicePricing(_ context.Context, _ uuid.UUID) (*ServicePricing, error) {
	if s.pricing == nil {
		return nil, ErrUnknownService
	}
	return s.pricing, nil
}

func (s *stubRepo) Create(_ context.Context, input CreateReservationInput, montant float64) (*Reservation, error) {
	s.created = &Reservation{
		ID:        uuid.New(),
		ServiceID: input.ServiceID,
		ClientID:  input.ClientID,
		Nom:       input.Nom,
		Telephone: input.Telephone,
		Heures:    input.Heures,
		Montant:   montant,
		Statut:    StatusPending,
	}
	return s.created, nil
}

func (s *stubRepo) Get(_ context.Context, id uuid.UUID) (*Reservation, error) {
	if res, ok := s.stored[id]; ok {
		return res, nil
	}
	return nil, ErrNotFound
}

func (s *stubRepo) List(_ context.Context, _ ReservationFilter) ([]Reservation, error) {
	return nil, nil
}

func (s *stubRepo) SetStatus(_ context.Context, id uuid.UUID, statut string) (*Reservation, error) {
	res, ok := s.stored[id]
	if !ok {
		return nil, ErrNotFound
	}
	res.Statut = statut
	return res, nil
}

func (s *stubRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func validInput() CreateReservationInput {
	return CreateReservationInput{
		ServiceID: uuid.New(),
		Nom:       "Awa Diop",
		Telephone: "+221771234567",
		Adresse:   "Dakar, Plateau",
		Date:      time.Now().Add(48 * time.Hour),
		Heures:    4,
	}
}

func TestCreateRecomputesAmountServerSide(t *testing.T) {
	repo := &stubRepo{pricing: &ServicePricing{PrixBase: 150, TauxHoraire: 40, Statut: "active"}}
	svc := NewService(repo)

	res, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 270.0, res.Montant)
	assert.Equal(t, StatusPending, res.Statut)
}

func TestCreateRejectsInactiveService(t *testing.T) {
	repo := &stubRepo{pricing: &ServicePricing{PrixBase: 150, TauxHoraire: 40, Statut: "pending"}}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestCreateRejectsOutOfRangeHours(t *testing.T) {
	repo := &stubRepo{pricing: &ServicePricing{PrixBase: 150, TauxHoraire: 40, Statut: "active"}}
	svc := NewService(repo)

	input := validInput()
	input.Heures = 13
	_, err := svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, ErrInvalidHours)
}

func TestSetStatusEnforcesTransitions(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: map[uuid.UUID]*Reservation{
		id: {ID: id, Statut: StatusPending},
	}}
	svc := NewService(repo)

	res, err := svc.SetStatus(context.Background(), id, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, res.Statut)

	_, err = svc.SetStatus(context.Background(), id, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatusIsIdempotentOnSameStatus(t *testing.T) {
	id := uuid.New()
	repo := &stubRepo{stored: map[uuid.UUID]*Reservation{
		id: {ID: id, Statut: StatusConfirmed},
	}}
	svc := NewService(repo)

	res, err := svc.SetStatus(context.Background(), id, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, res.Statut)
}
