package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("réservation introuvable")
	ErrInvalidStatus     = errors.New("statut de réservation invalide")
	ErrInvalidTransition = errors.New("transition de statut interdite")
	ErrUnknownService    = errors.New("service inconnu")
	ErrInvalidHours      = errors.New("durée invalide")
	ErrInvalidInput      = errors.New("données de réservation invalides")
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Tarif appliqué quand le service ne définit pas le sien.
const (
	DefaultBasePrice  = 150.0
	DefaultHourlyRate = 40.0
)

// Bornes de durée facturables, en heures.
const (
	MinHours = 1
	MaxHours = 12
)

// Reservation représente une demande de prestation, déposée par un
// client connecté ou par un visiteur (ClientID nul).
type Reservation struct {
	ID          uuid.UUID  `json:"id"`
	ServiceID   uuid.UUID  `json:"service_id"`
	ServiceNom  string     `json:"service_nom"`
	Ligne       string     `json:"ligne"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	Nom         string     `json:"nom"`
	Telephone   string     `json:"telephone"`
	Email       string     `json:"email,omitempty"`
	Adresse     string     `json:"adresse"`
	Date        time.Time  `json:"date"`
	Heures      int        `json:"heures"`
	Montant     float64    `json:"montant"`
	Statut      string     `json:"statut"`
	Notes       string     `json:"notes,omitempty"`
	CreeLe      time.Time  `json:"cree_le"`
	MisAJourLe  time.Time  `json:"mis_a_jour_le"`
}

type CreateReservationInput struct {
	ServiceID uuid.UUID
	ClientID  *uuid.UUID
	Nom       string
	Telephone string
	Email     string
	Adresse   string
	Date      time.Time
	Heures    int
	Notes     string
}

type ReservationFilter struct {
	Ligne    string
	Statut   string
	ClientID *uuid.UUID
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// transitions autorisées: le backoffice fait avancer la réservation,
// l'annulation reste possible tant qu'elle n'est pas terminée.
var allowedTransitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ClampHours ramène la durée dans les bornes facturables.
func ClampHours(hours int) int {
	if hours < MinHours {
		return MinHours
	}
	if hours > MaxHours {
		return MaxHours
	}
	return hours
}

// ComputePrice calcule le montant d'une prestation: la première heure
// est couverte par le prix de base, chaque heure supplémentaire est
// facturée au taux horaire. Un service sans tarif propre retombe sur
// le barème par défaut.
func ComputePrice(prixBase, tauxHoraire float64, heures int) float64 {
	if prixBase <= 0 {
		prixBase = DefaultBasePrice
	}
	if tauxHoraire <= 0 {
		tauxHoraire = DefaultHourlyRate
	}
	h := ClampHours(heures)
	return prixBase + float64(h-1)*tauxHoraire
}
