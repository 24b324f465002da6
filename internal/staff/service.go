package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type StaffRepository interface {
	Create(ctx context.Context, input CreateEmployeeInput) (*Employee, error)
	Get(ctx context.Context, id uuid.UUID) (*Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	Update(ctx context.Context, input UpdateEmployeeInput) (*Employee, error)
	SetStatus(ctx context.Context, id uuid.UUID, statut string) (*Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type StaffService struct {
	repo StaffRepository
}

func NewService(repo StaffRepository) *StaffService {
	return &StaffService{repo: repo}
}

func (s *StaffService) Create(ctx context.Context, input CreateEmployeeInput) (*Employee, error) {
	input.Nom = strings.TrimSpace(input.Nom)
	input.Telephone = strings.TrimSpace(input.Telephone)
	if !IsValidLine(input.Ligne) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLine, input.Ligne)
	}
	if input.Experience < 0 {
		input.Experience = 0
	}
	return s.repo.Create(ctx, input)
}

func (s *StaffService) Get(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return s.repo.Get(ctx, id)
}

func (s *StaffService) List(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	if filter.Ligne != "" && !IsValidLine(filter.Ligne) {
		return nil, ErrInvalidLine
	}
	if filter.Statut != "" && !IsValidStatus(filter.Statut) {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// ListPublic ne montre que les fiches validées d'une ligne.
func (s *StaffService) ListPublic(ctx context.Context, ligne string) ([]Employee, error) {
	if !IsValidLine(ligne) {
		return nil, ErrInvalidLine
	}
	return s.repo.List(ctx, EmployeeFilter{Ligne: ligne, Statut: StatusActive})
}

func (s *StaffService) Update(ctx context.Context, input UpdateEmployeeInput) (*Employee, error) {
	return s.repo.Update(ctx, input)
}

// Validate publie la fiche.
func (s *StaffService) Validate(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return s.repo.SetStatus(ctx, id, StatusActive)
}

// Reject écarte la fiche sans la supprimer.
func (s *StaffService) Reject(ctx context.Context, id uuid.UUID) (*Employee, error) {
	return s.repo.SetStatus(ctx, id, StatusRejected)
}

// ToggleActive bascule entre publié et en attente; une fiche rejetée
// repasse d'abord par l'attente.
func (s *StaffService) ToggleActive(ctx context.Context, id uuid.UUID) (*Employee, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := StatusPending
	if current.Statut == StatusPending {
		next = StatusActive
	}
	return s.repo.SetStatus(ctx, id, next)
}

func (s *StaffService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
