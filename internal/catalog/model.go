package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("élément de catalogue introuvable")
	ErrInvalidStatus   = errors.New("statut invalide")
	ErrInvalidLine     = errors.New("ligne de service invalide")
	ErrCategoryInUse   = errors.New("catégorie encore référencée par des services")
	ErrUnknownCategory = errors.New("catégorie inconnue")

	errInvalidPrice = errors.New("prix invalide")
)

// Lignes de service du marché (les cinq métiers de la plateforme).
const (
	LineMenage    = "menage"
	LineBebe      = "bebe"
	LineJardinage = "jardinage"
	LineSecurite  = "securite"
	LineTravaux   = "travaux"
)

// Statuts de modération. Une seule colonne, une seule transition par
// écriture: pas de table "validée" séparée à maintenir en parallèle.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

var (
	validLines = map[string]struct{}{
		LineMenage:    {},
		LineBebe:      {},
		LineJardinage: {},
		LineSecurite:  {},
		LineTravaux:   {},
	}
	validStatuses = map[string]struct{}{
		StatusPending:  {},
		StatusActive:   {},
		StatusRejected: {},
	}
)

// Category représente une famille de prestations d'une ligne de service.
type Category struct {
	ID      uuid.UUID `json:"id"`
	Nom     string    `json:"nom"`
	Ligne   string    `json:"ligne"`
	Image   string    `json:"image"`
	Ordre   int       `json:"ordre"`
	Actif   bool      `json:"actif"`
	CreeLe  time.Time `json:"cree_le"`
	MisAJLe time.Time `json:"mis_a_jour_le"`
}

// Service représente une prestation réservable.
type Service struct {
	ID           uuid.UUID `json:"id"`
	CategorieID  uuid.UUID `json:"categorie_id"`
	CategorieNom string    `json:"categorie_nom,omitempty"`
	Nom          string    `json:"nom"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	PrixBase     float64   `json:"prix_base"`
	TauxHoraire  float64   `json:"taux_horaire"`
	Statut       string    `json:"statut"`
	Ordre        int       `json:"ordre"`
	CreeLe       time.Time `json:"cree_le"`
	MisAJLe      time.Time `json:"mis_a_jour_le"`
}

// CreateCategoryInput porte les champs d'une nouvelle catégorie.
type CreateCategoryInput struct {
	Nom   string
	Ligne string
	Image string
	Ordre int
}

// UpdateCategoryInput porte les champs modifiables d'une catégorie.
type UpdateCategoryInput struct {
	ID    uuid.UUID
	Nom   *string
	Image *string
	Ordre *int
	Actif *bool
}

// CreateServiceInput porte les champs d'un nouveau service.
type CreateServiceInput struct {
	CategorieID uuid.UUID
	Nom         string
	Description string
	Image       string
	PrixBase    float64
	TauxHoraire float64
	Ordre       int
}

// UpdateServiceInput porte les champs modifiables d'un service.
type UpdateServiceInput struct {
	ID          uuid.UUID
	Nom         *string
	Description *string
	Image       *string
	PrixBase    *float64
	TauxHoraire *float64
	Ordre       *int
}

// ServiceFilter restreint la liste des services.
type ServiceFilter struct {
	CategorieID *uuid.UUID
	Ligne       string
	Statut      string
	Query       string
}

// IsValidLine indique si la ligne de service est reconnue.
func IsValidLine(line string) bool {
	_, ok := validLines[strings.ToLower(strings.TrimSpace(line))]
	return ok
}

// IsValidStatus indique si le statut est accepté.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// NormalizeStatus garantit un statut en minuscules, pending par défaut.
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return StatusPending
	}
	return status
}

// MatchesQuery applique la recherche plein-texte naïve du dashboard: une
// correspondance insensible à la casse sur un ensemble fixe de champs.
// Fonction pure: même entrée, même réponse, quel que soit l'ordre d'appel.
func MatchesQuery(s Service, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{s.Nom, s.Description, s.CategorieNom} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// FilterServices réduit une liste en mémoire selon la recherche.
func FilterServices(items []Service, query string) []Service {
	if strings.TrimSpace(query) == "" {
		return items
	}
	out := make([]Service, 0, len(items))
	for _, item := range items {
		if MatchesQuery(item, query) {
			out = append(out, item)
		}
	}
	return out
}
