package catalog

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

// Repository fournit l'accès aux tables categories et services.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository crée l'instance du repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const categoryColumns = "id, nom, ligne, image, ordre, actif, cree_le, mis_a_jour_le"

// CreateCategory insère une nouvelle catégorie.
func (r *Repository) CreateCategory(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	const query = `
        INSERT INTO categories (nom, ligne, image, ordre, actif)
        VALUES ($1, $2, $3, $4, true)
        RETURNING ` + categoryColumns + `
    `
	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Nom),
		strings.ToLower(strings.TrimSpace(input.Ligne)),
		strings.TrimSpace(input.Image),
		input.Ordre,
	)
	return scanCategory(row)
}

// GetCategory retrouve une catégorie.
func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	const query = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.pool.QueryRow(ctx, query, id))
}

// ListCategories liste les catégories, optionnellement par ligne de service.
// Ordre stable: champ ordre puis date de création.
func (r *Repository) ListCategories(ctx context.Context, ligne string, publicOnly bool) ([]Category, error) {
	base := `SELECT ` + categoryColumns + ` FROM categories`

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if ligne != "" {
		clauses = append(clauses, fmt.Sprintf("ligne = $%d", idx))
		args = append(args, strings.ToLower(strings.TrimSpace(ligne)))
		idx++
	}
	if publicOnly {
		clauses = append(clauses, "actif")
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY ordre ASC, cree_le ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *cat)
	}
	return categories, rows.Err()
}

// UpdateCategory applique un patch partiel.
func (r *Repository) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*Category, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Nom != nil {
		setParts = append(setParts, fmt.Sprintf("nom = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Nom))
		idx++
	}
	if input.Image != nil {
		setParts = append(setParts, fmt.Sprintf("image = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Image))
		idx++
	}
	if input.Ordre != nil {
		setParts = append(setParts, fmt.Sprintf("ordre = $%d", idx))
		args = append(args, *input.Ordre)
		idx++
	}
	if input.Actif != nil {
		setParts = append(setParts, fmt.Sprintf("actif = $%d", idx))
		args = append(args, *input.Actif)
		idx++
	}

	if len(setParts) == 0 {
		return r.GetCategory(ctx, input.ID)
	}

	setParts = append(setParts, "mis_a_jour_le = now()")
	args = append(args, input.ID)

	query := fmt.Sprintf(`
        UPDATE categories
        SET %s
        WHERE id = $%d
        RETURNING `+categoryColumns+`
    `, strings.Join(setParts, ", "), idx)

	return scanCategory(r.pool.QueryRow(ctx, query, args...))
}

// DeleteCategory supprime définitivement la catégorie.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const serviceColumns = `s.id, s.categorie_id, c.nom, s.nom, s.description, s.image,
        s.prix_base, s.taux_horaire, s.statut, s.ordre, s.cree_le, s.mis_a_jour_le`

// CreateService insère un nouveau service en statut pending.
func (r *Repository) CreateService(ctx context.Context, input CreateServiceInput) (*Service, error) {
	const query = `
        WITH inserted AS (
            INSERT INTO services (categorie_id, nom, description, image, prix_base, taux_horaire, statut, ordre)
            VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7)
            RETURNING *
        )
        SELECT s.id, s.categorie_id, c.nom, s.nom, s.description, s.image,
               s.prix_base, s.taux_horaire, s.statut, s.ordre, s.cree_le, s.mis_a_jour_le
        FROM inserted s
        JOIN categories c ON c.id = s.categorie_id
    `
	row := r.pool.QueryRow(ctx, query,
		input.CategorieID,
		strings.TrimSpace(input.Nom),
		strings.TrimSpace(input.Description),
		strings.TrimSpace(input.Image),
		input.PrixBase,
		input.TauxHoraire,
		input.Ordre,
	)
	svc, err := scanService(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrUnknownCategory
		}
		return nil, err
	}
	return svc, nil
}

// GetService retrouve un service avec le nom de sa catégorie.
func (r *Repository) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	const query = `
        SELECT ` + serviceColumns + `
        FROM services s
        JOIN categories c ON c.id = s.categorie_id
        WHERE s.id = $1
    `
	return scanService(r.pool.QueryRow(ctx, query, id))
}

// ListServices liste les services joints à leur catégorie.
// Les filtres statut/catégorie/ligne sont appliqués en SQL; la recherche
// plein-texte reste à la charge du service (fonction pure).
func (r *Repository) ListServices(ctx context.Context, filter ServiceFilter) ([]Service, error) {
	base := `
        SELECT ` + serviceColumns + `
        FROM services s
        JOIN categories c ON c.id = s.categorie_id`

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.CategorieID != nil {
		clauses = append(clauses, fmt.Sprintf("s.categorie_id = $%d", idx))
		args = append(args, *filter.CategorieID)
		idx++
	}
	if filter.Ligne != "" {
		clauses = append(clauses, fmt.Sprintf("c.ligne = $%d", idx))
		args = append(args, strings.ToLower(strings.TrimSpace(filter.Ligne)))
		idx++
	}
	if filter.Statut != "" {
		clauses = append(clauses, fmt.Sprintf("s.statut = $%d", idx))
		args = append(args, strings.ToLower(strings.TrimSpace(filter.Statut)))
		idx++
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY s.ordre ASC, s.cree_le ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *svc)
	}
	return services, rows.Err()
}

// UpdateService applique un patch partiel sur les champs éditables.
func (r *Repository) UpdateService(ctx context.Context, input UpdateServiceInput) (*Service, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Nom != nil {
		setParts = append(setParts, fmt.Sprintf("nom = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Nom))
		idx++
	}
	if input.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Description))
		idx++
	}
	if input.Image != nil {
		setParts = append(setParts, fmt.Sprintf("image = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Image))
		idx++
	}
	if input.PrixBase != nil {
		setParts = append(setParts, fmt.Sprintf("prix_base = $%d", idx))
		args = append(args, *input.PrixBase)
		idx++
	}
	if input.TauxHoraire != nil {
		setParts = append(setParts, fmt.Sprintf("taux_horaire = $%d", idx))
		args = append(args, *input.TauxHoraire)
		idx++
	}
	if input.Ordre != nil {
		setParts = append(setParts, fmt.Sprintf("ordre = $%d", idx))
		args = append(args, *input.Ordre)
		idx++
	}

	if len(setParts) == 0 {
		return r.GetService(ctx, input.ID)
	}

	setParts = append(setParts, "mis_a_jour_le = now()")
	args = append(args, input.ID)

	query := fmt.Sprintf(`
        UPDATE services
        SET %s
        WHERE id = $%d
        RETURNING id
    `, strings.Join(setParts, ", "), idx)

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetService(ctx, id)
}

// SetServiceStatus effectue la transition de modération en un seul UPDATE.
func (r *Repository) SetServiceStatus(ctx context.Context, id uuid.UUID, status string) (*Service, error) {
	const query = `
        UPDATE services
        SET statut = $2, mis_a_jour_le = now()
        WHERE id = $1
        RETURNING id
    `
	var updated uuid.UUID
	if err := r.pool.QueryRow(ctx, query, id, strings.ToLower(status)).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetService(ctx, updated)
}

// DeleteService supprime définitivement le service.
func (r *Repository) DeleteService(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Nom, &c.Ligne, &c.Image, &c.Ordre, &c.Actif, &c.CreeLe, &c.MisAJLe); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	if err := row.Scan(&s.ID, &s.CategorieID, &s.CategorieNom, &s.Nom, &s.Description, &s.Image,
		&s.PrixBase, &s.TauxHoraire, &s.Statut, &s.Ordre, &s.CreeLe, &s.MisAJLe); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
