package rating

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("avis introuvable")
	ErrDuplicateRating = errors.New("avis déjà déposé pour ce service")
	ErrUnknownService  = errors.New("service inconnu")
	ErrInvalidScore    = errors.New("note invalide")
)

// Rating est l'avis d'un client sur un service: une note de 1 à 5 et
// un commentaire libre. Un client ne note un service qu'une seule
// fois; l'unicité est garantie par la base, pas par le client HTTP.
type Rating struct {
	ID          uuid.UUID `json:"id"`
	ServiceID   uuid.UUID `json:"service_id"`
	ClientID    uuid.UUID `json:"client_id"`
	ClientNom   string    `json:"client_nom"`
	Note        int       `json:"note"`
	Commentaire string    `json:"commentaire,omitempty"`
	CreeLe      time.Time `json:"cree_le"`
}

// Summary agrège les avis d'un service.
type Summary struct {
	ServiceID uuid.UUID `json:"service_id"`
	Moyenne   float64   `json:"moyenne"`
	Total     int       `json:"total"`
}

type CreateRatingInput struct {
	ServiceID   uuid.UUID
	ClientID    uuid.UUID
	Note        int
	Commentaire string
}
