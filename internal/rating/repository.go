package rating

import (
	"context"
	"errors"
	"fmt"

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

// Create insère l'avis. La contrainte UNIQUE (client_id, service_id)
// de la table fait foi: un doublon remonte en ErrDuplicateRating même
// si deux requêtes arrivent en même temps.
func (r *Repository) Create(ctx context.Context, input CreateRatingInput) (*Rating, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO avis (service_id, client_id, note, commentaire)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		input.ServiceID, input.ClientID, input.Note, input.Commentaire,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, ErrDuplicateRating
			case "23503":
				return nil, ErrUnknownService
			}
		}
		return nil, fmt.Errorf("insertion avis: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Rating, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT a.id, a.service_id, a.client_id, c.nom, a.note, a.commentaire, a.cree_le
		FROM avis a
		JOIN clients c ON c.id = a.client_id
		WHERE a.id = $1`, id)
	return scanRating(row)
}

// Exists indique si le client a déjà noté le service. Purement
// indicatif côté interface: la contrainte d'unicité reste l'arbitre.
func (r *Repository) Exists(ctx context.Context, clientID, serviceID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM avis WHERE client_id = $1 AND service_id = $2)`,
		clientID, serviceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("vérification avis: %w", err)
	}
	return exists, nil
}

func (r *Repository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]Rating, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.service_id, a.client_id, c.nom, a.note, a.commentaire, a.cree_le
		FROM avis a
		JOIN clients c ON c.id = a.client_id
		WHERE a.service_id = $1
		ORDER BY a.cree_le DESC`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("liste avis: %w", err)
	}
	defer rows.Close()

	var out []Rating
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}

func (r *Repository) Summarize(ctx context.Context, serviceID uuid.UUID) (*Summary, error) {
	s := Summary{ServiceID: serviceID}
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(note), 0), COUNT(*) FROM avis WHERE service_id = $1`,
		serviceID,
	).Scan(&s.Moyenne, &s.Total)
	if err != nil {
		return nil, fmt.Errorf("moyenne avis: %w", err)
	}
	return &s, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM avis WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("suppression avis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRating(row pgx.Row) (*Rating, error) {
	var (
		rt          Rating
		commentaire *string
	)
	err := row.Scan(&rt.ID, &rt.ServiceID, &rt.ClientID, &rt.ClientNom, &rt.Note, &commentaire, &rt.CreeLe)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lecture avis: %w", err)
	}
	if commentaire != nil {
		rt.Commentaire = *commentaire
	}
	return &rt, nil
}
