package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/notify"
)

// ReservationRepository découple le service de l'accès Postgres; les
// tests le remplacent par un stub en mémoire.
type ReservationRepository interface {
	GetServicePricing(ctx context.Context, serviceID uuid.UUID) (*ServicePricing, error)
	Create(ctx context.Context, input CreateReservationInput, montant float64) (*Reservation, error)
	Get(ctx context.Context, id uuid.UUID) (*Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	SetStatus(ctx context.Context, id uuid.UUID, statut string) (*Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReservationService struct {
	repo     ReservationRepository
	notifier notify.Notifier
}

func NewService(repo ReservationRepository) *ReservationService {
	return &ReservationService{repo: repo}
}

// WithNotifier branche l'alerte backoffice sur les nouvelles réservations.
func (s *ReservationService) WithNotifier(n notify.Notifier) *ReservationService {
	s.notifier = n
	return s
}

// Create dépose une réservation. Le montant est toujours recalculé
// côté serveur à partir du tarif courant du service: le prix envoyé
// par le client n'est jamais pris en compte.
func (s *ReservationService) Create(ctx context.Context, input CreateReservationInput) (*Reservation, error) {
	input.Nom = strings.TrimSpace(input.Nom)
	input.Telephone = strings.TrimSpace(input.Telephone)
	input.Adresse = strings.TrimSpace(input.Adresse)
	if input.Nom == "" || input.Telephone == "" {
		return nil, fmt.Errorf("%w: nom et téléphone obligatoires", ErrInvalidInput)
	}
	if input.Heures < MinHours || input.Heures > MaxHours {
		return nil, ErrInvalidHours
	}

	pricing, err := s.repo.GetServicePricing(ctx, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if pricing.Statut != "active" {
		return nil, ErrUnknownService
	}

	montant := ComputePrice(pricing.PrixBase, pricing.TauxHoraire, input.Heures)
	res, err := s.repo.Create(ctx, input, montant)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		// Meilleur effort: l'échec d'une alerte ne bloque pas la réservation.
		go func(r Reservation) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.notifier.Notify(ctx, notify.Message{
				Titre: "Nouvelle réservation",
				Texte: fmt.Sprintf("%s — %s, %d h, %.0f", r.ServiceNom, r.Nom, r.Heures, r.Montant),
			}); err != nil {
				log.Warn().Err(err).Msg("réservations: alerte non envoyée")
			}
		}(*res)
	}
	return res, nil
}

func (s *ReservationService) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return s.repo.Get(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	if filter.Statut != "" && !IsValidStatus(filter.Statut) {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// ListForClient restreint la liste aux réservations du client connecté.
func (s *ReservationService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]Reservation, error) {
	return s.repo.List(ctx, ReservationFilter{ClientID: &clientID})
}

// SetStatus vérifie la machine à états avant d'écrire.
func (s *ReservationService) SetStatus(ctx context.Context, id uuid.UUID, statut string) (*Reservation, error) {
	if !IsValidStatus(statut) {
		return nil, ErrInvalidStatus
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Statut == statut {
		return current, nil
	}
	if !CanTransition(current.Statut, statut) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Statut, statut)
	}
	return s.repo.SetStatus(ctx, id, statut)
}

func (s *ReservationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
