package staff

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	employes map[uuid.UUID]*Employee
}

func newMemRepo() *memRepo {
	return &memRepo{employes: map[uuid.UUID]*Employee{}}
}

func (m *memRepo) Create(_ context.Context, input CreateEmployeeInput) (*Employee, error) {
	emp := &Employee{
		ID:         uuid.New(),
		Nom:        input.Nom,
		Telephone:  input.Telephone,
		Ligne:      input.Ligne,
		Poste:      input.Poste,
		Experience: input.Experience,
		Statut:     StatusPending,
	}
	m.employes[emp.ID] = emp
	return emp, nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (*Employee, error) {
	emp, ok := m.employes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return emp, nil
}

func (m *memRepo) List(_ context.Context, filter EmployeeFilter) ([]Employee, error) {
	var out []Employee
	for _, emp := range m.employes {
		if filter.Ligne != "" && emp.Ligne != filter.Ligne {
			continue
		}
		if filter.Statut != "" && emp.Statut != filter.Statut {
			continue
		}
		out = append(out, *emp)
	}
	return out, nil
}

func (m *memRepo) Update(_ context.Context, input UpdateEmployeeInput) (*Employee, error) {
	emp, ok := m.employes[input.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if input.Nom != nil {
		emp.Nom = *input.Nom
	}
	return emp, nil
}

func (m *memRepo) SetStatus(_ context.Context, id uuid.UUID, statut string) (*Employee, error) {
	emp, ok := m.employes[id]
	if !ok {
		return nil, ErrNotFound
	}
	emp.Statut = statut
	return emp, nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.employes[id]; !ok {
		return ErrNotFound
	}
	delete(m.employes, id)
	return nil
}

func TestCreateRejectsUnknownLine(t *testing.T) {
	svc := NewService(newMemRepo())

	_, err := svc.Create(context.Background(), CreateEmployeeInput{
		Nom: "Moussa Ba", Telephone: "+221770000000", Ligne: "plomberie",
	})
	assert.ErrorIs(t, err, ErrInvalidLine)
}

func TestModerationLifecycle(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	emp, err := svc.Create(context.Background(), CreateEmployeeInput{
		Nom: "Fatou Sall", Telephone: "+221771111111", Ligne: "menage",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, emp.Statut)

	emp, err = svc.Validate(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, emp.Statut)

	// Bascule: publié -> en attente -> publié.
	emp, err = svc.ToggleActive(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, emp.Statut)

	emp, err = svc.ToggleActive(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, emp.Statut)

	// Une fiche rejetée repasse par l'attente.
	emp, err = svc.Reject(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, emp.Statut)

	emp, err = svc.ToggleActive(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, emp.Statut)
}

func TestListPublicOnlyShowsValidated(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	actif, err := svc.Create(context.Background(), CreateEmployeeInput{
		Nom: "Omar Ndiaye", Telephone: "+221772222222", Ligne: "jardinage",
	})
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), actif.ID)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateEmployeeInput{
		Nom: "Aliou Diallo", Telephone: "+221773333333", Ligne: "jardinage",
	})
	require.NoError(t, err)

	publics, err := svc.ListPublic(context.Background(), "jardinage")
	require.NoError(t, err)
	require.Len(t, publics, 1)
	assert.Equal(t, "Omar Ndiaye", publics[0].Nom)
}

func TestBadgePDF(t *testing.T) {
	emp := &Employee{
		ID:         uuid.New(),
		Nom:        "Awa Gueye",
		Ligne:      "securite",
		Poste:      "Agent de nuit",
		Experience: 3,
	}

	data, err := BadgePDF(emp)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "le badge doit être un document PDF")
}
