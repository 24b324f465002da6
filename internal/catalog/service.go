package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tawdev/mahtaaj/internal/util"
)

// CatalogRepository abstrait l'accès aux tables du catalogue.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, ligne string, publicOnly bool) ([]Category, error)
	UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	CreateService(ctx context.Context, input CreateServiceInput) (*Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	ListServices(ctx context.Context, filter ServiceFilter) ([]Service, error)
	UpdateService(ctx context.Context, input UpdateServiceInput) (*Service, error)
	SetServiceStatus(ctx context.Context, id uuid.UUID, status string) (*Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
}

// Service porte les règles métier du catalogue.
type CatalogService struct {
	repo CatalogRepository
}

// NewService crée le service catalogue.
func NewService(repo CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// CreateCategory valide puis insère une catégorie.
func (s *CatalogService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	if err := util.RequireString(input.Nom, "nom"); err != nil {
		return nil, err
	}
	if !IsValidLine(input.Ligne) {
		return nil, ErrInvalidLine
	}
	return s.repo.CreateCategory(ctx, input)
}

// ListCategories liste les catégories d'une ligne (toutes si vide).
func (s *CatalogService) ListCategories(ctx context.Context, ligne string, publicOnly bool) ([]Category, error) {
	if ligne != "" && !IsValidLine(ligne) {
		return nil, ErrInvalidLine
	}
	return s.repo.ListCategories(ctx, ligne, publicOnly)
}

// GetCategory retrouve une catégorie.
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, id)
}

// UpdateCategory applique un patch partiel.
func (s *CatalogService) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*Category, error) {
	if input.Nom != nil {
		if err := util.RequireString(*input.Nom, "nom"); err != nil {
			return nil, err
		}
	}
	return s.repo.UpdateCategory(ctx, input)
}

// DeleteCategory supprime une catégorie non référencée.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, id)
}

// CreateService valide puis insère un service (statut pending).
func (s *CatalogService) CreateService(ctx context.Context, input CreateServiceInput) (*Service, error) {
	if err := util.RequireString(input.Nom, "nom"); err != nil {
		return nil, err
	}
	if input.CategorieID == uuid.Nil {
		return nil, ErrUnknownCategory
	}
	if input.PrixBase < 0 || input.TauxHoraire < 0 {
		return nil, errInvalidPrice
	}
	return s.repo.CreateService(ctx, input)
}

// ListServices liste puis applique la recherche pure côté mémoire.
func (s *CatalogService) ListServices(ctx context.Context, filter ServiceFilter) ([]Service, error) {
	if filter.Ligne != "" && !IsValidLine(filter.Ligne) {
		return nil, ErrInvalidLine
	}
	if filter.Statut != "" && !IsValidStatus(filter.Statut) {
		return nil, ErrInvalidStatus
	}

	services, err := s.repo.ListServices(ctx, filter)
	if err != nil {
		return nil, err
	}
	return FilterServices(services, filter.Query), nil
}

// GetService retrouve un service.
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	return s.repo.GetService(ctx, id)
}

// UpdateService applique un patch partiel.
func (s *CatalogService) UpdateService(ctx context.Context, input UpdateServiceInput) (*Service, error) {
	if input.Nom != nil {
		if err := util.RequireString(*input.Nom, "nom"); err != nil {
			return nil, err
		}
	}
	if input.PrixBase != nil && *input.PrixBase < 0 {
		return nil, errInvalidPrice
	}
	if input.TauxHoraire != nil && *input.TauxHoraire < 0 {
		return nil, errInvalidPrice
	}
	return s.repo.UpdateService(ctx, input)
}

// Validate passe le service en statut active.
func (s *CatalogService) Validate(ctx context.Context, id uuid.UUID) (*Service, error) {
	return s.repo.SetServiceStatus(ctx, id, StatusActive)
}

// Reject passe le service en statut rejected.
func (s *CatalogService) Reject(ctx context.Context, id uuid.UUID) (*Service, error) {
	return s.repo.SetServiceStatus(ctx, id, StatusRejected)
}

// ToggleActive bascule pending <-> active. Un service rejeté repasse par
// pending pour re-modération.
func (s *CatalogService) ToggleActive(ctx context.Context, id uuid.UUID) (*Service, error) {
	current, err := s.repo.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	next := StatusPending
	if strings.EqualFold(current.Statut, StatusPending) {
		next = StatusActive
	}
	return s.repo.SetServiceStatus(ctx, id, next)
}

// DeleteService supprime un service.
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteService(ctx, id)
}
