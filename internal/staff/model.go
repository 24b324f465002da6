package staff

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("employé introuvable")
	ErrInvalidLine    = errors.New("ligne de service invalide")
	ErrInvalidStatus  = errors.New("statut invalide")
	ErrDuplicatePhone = errors.New("numéro de téléphone déjà enregistré")
)

const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Employee est un intervenant rattaché à une ligne de service
// (ménage, bébé setting, jardinage, sécurité, travaux). La fiche
// passe par la modération avant d'apparaître côté public.
type Employee struct {
	ID         uuid.UUID `json:"id"`
	Nom        string    `json:"nom"`
	Telephone  string    `json:"telephone"`
	Ligne      string    `json:"ligne"`
	Poste      string    `json:"poste,omitempty"`
	Photo      string    `json:"photo,omitempty"`
	Experience int       `json:"experience"`
	Statut     string    `json:"statut"`
	CreeLe     time.Time `json:"cree_le"`
	MisAJourLe time.Time `json:"mis_a_jour_le"`
}

type CreateEmployeeInput struct {
	Nom        string
	Telephone  string
	Ligne      string
	Poste      string
	Photo      string
	Experience int
}

type UpdateEmployeeInput struct {
	ID         uuid.UUID
	Nom        *string
	Telephone  *string
	Poste      *string
	Photo      *string
	Experience *int
}

type EmployeeFilter struct {
	Ligne  string
	Statut string
}

var validLines = map[string]bool{
	"menage":    true,
	"bebe":      true,
	"jardinage": true,
	"securite":  true,
	"travaux":   true,
}

func IsValidLine(ligne string) bool { return validLines[ligne] }

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusActive, StatusRejected:
		return true
	}
	return false
}
