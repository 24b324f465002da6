package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id, nom, telephone, ligne, poste, photo, experience, statut, cree_le, mis_a_jour_le`

func (r *Repository) Create(ctx context.Context, input CreateEmployeeInput) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO employes (nom, telephone, ligne, poste, photo, experience, statut)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING `+employeeColumns,
		input.Nom, input.Telephone, input.Ligne, input.Poste, input.Photo, input.Experience)
	emp, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicatePhone
		}
		return nil, err
	}
	return emp, nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Employee, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employes WHERE id = $1`, id)
	return scanEmployee(row)
}

func (r *Repository) List(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employes`

	var (
		conds []string
		args  []any
	)
	if filter.Ligne != "" {
		args = append(args, filter.Ligne)
		conds = append(conds, fmt.Sprintf("ligne = $%d", len(args)))
	}
	if filter.Statut != "" {
		args = append(args, filter.Statut)
		conds = append(conds, fmt.Sprintf("statut = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY nom"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("liste employés: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, input UpdateEmployeeInput) (*Employee, error) {
	sets := []string{"mis_a_jour_le = now()"}
	args := []any{input.ID}

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if input.Nom != nil {
		add("nom", *input.Nom)
	}
	if input.Telephone != nil {
		add("telephone", *input.Telephone)
	}
	if input.Poste != nil {
		add("poste", *input.Poste)
	}
	if input.Photo != nil {
		add("photo", *input.Photo)
	}
	if input.Experience != nil {
		add("experience", *input.Experience)
	}

	query := fmt.Sprintf(`UPDATE employes SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), employeeColumns)
	emp, err := scanEmployee(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicatePhone
		}
		return nil, err
	}
	return emp, nil
}

// SetStatus applique la transition de modération en une seule écriture.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, statut string) (*Employee, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE employes SET statut = $2, mis_a_jour_le = now()
		WHERE id = $1
		RETURNING `+employeeColumns, id, statut)
	return scanEmployee(row)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM employes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("suppression employé: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*Employee, error) {
	var (
		emp   Employee
		poste *string
		photo *string
	)
	err := row.Scan(&emp.ID, &emp.Nom, &emp.Telephone, &emp.Ligne, &poste, &photo,
		&emp.Experience, &emp.Statut, &emp.CreeLe, &emp.MisAJourLe)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lecture employé: %w", err)
	}
	if poste != nil {
		emp.Poste = *poste
	}
	if photo != nil {
		emp.Photo = *photo
	}
	return &emp, nil
}
