package rating

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type RatingRepository interface {
	Create(ctx context.Context, input CreateRatingInput) (*Rating, error)
	Get(ctx context.Context, id uuid.UUID) (*Rating, error)
	Exists(ctx context.Context, clientID, serviceID uuid.UUID) (bool, error)
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]Rating, error)
	Summarize(ctx context.Context, serviceID uuid.UUID) (*Summary, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RatingService struct {
	repo RatingRepository
}

func NewService(repo RatingRepository) *RatingService {
	return &RatingService{repo: repo}
}

// Create dépose un avis. Pas de lecture préalable "a-t-il déjà noté?":
// l'insertion part directement et la contrainte d'unicité tranche,
// ce qui élimine la course entre deux dépôts simultanés.
func (s *RatingService) Create(ctx context.Context, input CreateRatingInput) (*Rating, error) {
	if input.Note < 1 || input.Note > 5 {
		return nil, ErrInvalidScore
	}
	input.Commentaire = strings.TrimSpace(input.Commentaire)
	return s.repo.Create(ctx, input)
}

// HasRated alimente l'affichage du formulaire côté client.
func (s *RatingService) HasRated(ctx context.Context, clientID, serviceID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, clientID, serviceID)
}

func (s *RatingService) ListByService(ctx context.Context, serviceID uuid.UUID) ([]Rating, error) {
	return s.repo.ListByService(ctx, serviceID)
}

func (s *RatingService) Summarize(ctx context.Context, serviceID uuid.UUID) (*Summary, error) {
	return s.repo.Summarize(ctx, serviceID)
}

func (s *RatingService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
