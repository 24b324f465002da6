package repo

import (
	"time"

	"github.com/google/uuid"
)

// Admin représente un membre du backoffice.
type Admin struct {
	ID           uuid.UUID
	Nom          string
	Email        string
	MotDePasse   string
	Role         string
	Actif        bool
	CreeLe       time.Time
	DerniereConn *time.Time
}

// Client représente un utilisateur du site public.
type Client struct {
	ID         uuid.UUID
	Nom        string
	Email      *string
	Telephone  *string
	MotDePasse *string
	Actif      bool
	CreeLe     time.Time
}

// RefreshToken modélise la table des refresh tokens.
type RefreshToken struct {
	ID         uuid.UUID
	Subject    uuid.UUID
	Audience   string
	TokenHash  string
	Expiration time.Time
	CreeLe     time.Time
	Revoque    bool
}
