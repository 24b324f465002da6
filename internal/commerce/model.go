package commerce

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("commande introuvable")
	ErrPromoNotFound     = errors.New("promotion introuvable")
	ErrDuplicateCode     = errors.New("code promotionnel déjà utilisé")
	ErrInvalidCode       = errors.New("code promotionnel invalide")
	ErrInvalidStatus     = errors.New("statut de commande invalide")
	ErrInvalidTransition = errors.New("transition de statut interdite")
	ErrInvalidPercent    = errors.New("pourcentage de remise invalide")
	ErrInvalidWindow     = errors.New("fenêtre de validité invalide")
	ErrEmptyOrder        = errors.New("commande sans article")
)

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderCancelled = "cancelled"
)

// Order est une commande de produits passée depuis la boutique
// (matériel de la ligne travaux). Les articles sont figés au moment
// de la commande, avec leur prix unitaire.
type Order struct {
	ID         uuid.UUID   `json:"id"`
	Nom        string      `json:"nom"`
	Telephone  string      `json:"telephone"`
	Email      string      `json:"email,omitempty"`
	Adresse    string      `json:"adresse"`
	Articles   []OrderItem `json:"articles"`
	Total      float64     `json:"total"`
	Statut     string      `json:"statut"`
	CodePromo  string      `json:"code_promo,omitempty"`
	CreeLe     time.Time   `json:"cree_le"`
	MisAJourLe time.Time   `json:"mis_a_jour_le"`
}

type OrderItem struct {
	ID           uuid.UUID `json:"id"`
	Designation  string    `json:"designation"`
	Quantite     int       `json:"quantite"`
	PrixUnitaire float64   `json:"prix_unitaire"`
}

// Promotion est une remise en pourcentage activable sur une fenêtre
// de dates. Le code est unique, insensible à la casse.
type Promotion struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Remise     int       `json:"remise"`
	Debut      time.Time `json:"debut"`
	Fin        time.Time `json:"fin"`
	Actif      bool      `json:"actif"`
	CreeLe     time.Time `json:"cree_le"`
	MisAJourLe time.Time `json:"mis_a_jour_le"`
}

// EstValable indique si la promotion s'applique à l'instant donné.
func (p *Promotion) EstValable(at time.Time) bool {
	return p.Actif && !at.Before(p.Debut) && !at.After(p.Fin)
}

type CreateOrderInput struct {
	Nom       string
	Telephone string
	Email     string
	Adresse   string
	Articles  []OrderItemInput
	CodePromo string
}

type OrderItemInput struct {
	Designation  string
	Quantite     int
	PrixUnitaire float64
}

type CreatePromotionInput struct {
	Code   string
	Remise int
	Debut  time.Time
	Fin    time.Time
}

func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderShipped, OrderCancelled:
		return true
	}
	return false
}

var orderTransitions = map[string][]string{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
}

func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ComputeTotal somme les articles puis applique la remise.
func ComputeTotal(items []OrderItemInput, remisePourcent int) float64 {
	var total float64
	for _, it := range items {
		total += float64(it.Quantite) * it.PrixUnitaire
	}
	if remisePourcent > 0 {
		total -= total * float64(remisePourcent) / 100
	}
	return total
}
