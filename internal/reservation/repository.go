package reservation

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

const reservationColumns = `r.id, r.service_id, s.nom, c.ligne, r.client_id, r.nom, r.telephone,
	r.email, r.adresse, r.date_prestation, r.heures, r.montant, r.statut, r.notes,
	r.cree_le, r.mis_a_jour_le`

// ServicePricing porte le tarif du service au moment de la réservation.
type ServicePricing struct {
	PrixBase    float64
	TauxHoraire float64
	Statut      string
}

// GetServicePricing lit le tarif courant d'un service actif.
func (r *Repository) GetServicePricing(ctx context.Context, serviceID uuid.UUID) (*ServicePricing, error) {
	var p ServicePricing
	err := r.pool.QueryRow(ctx,
		`SELECT prix_base, taux_horaire, statut FROM services WHERE id = $1`,
		serviceID,
	).Scan(&p.PrixBase, &p.TauxHoraire, &p.Statut)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnknownService
		}
		return nil, fmt.Errorf("lecture tarif service: %w", err)
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, input CreateReservationInput, montant float64) (*Reservation, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO reservations
			(service_id, client_id, nom, telephone, email, adresse,
			 date_prestation, heures, montant, statut, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', $10)
		RETURNING id`,
		input.ServiceID, input.ClientID, input.Nom, input.Telephone, input.Email,
		input.Adresse, input.Date, input.Heures, montant, input.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrUnknownService
		}
		return nil, fmt.Errorf("insertion réservation: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		JOIN services s ON s.id = r.service_id
		JOIN categories c ON c.id = s.categorie_id
		WHERE r.id = $1`, id)
	return scanReservation(row)
}

func (r *Repository) List(ctx context.Context, filter ReservationFilter) ([]Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		JOIN services s ON s.id = r.service_id
		JOIN categories c ON c.id = s.categorie_id`

	var (
		conds []string
		args  []any
	)
	if filter.Ligne != "" {
		args = append(args, filter.Ligne)
		conds = append(conds, fmt.Sprintf("c.ligne = $%d", len(args)))
	}
	if filter.Statut != "" {
		args = append(args, filter.Statut)
		conds = append(conds, fmt.Sprintf("r.statut = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conds = append(conds, fmt.Sprintf("r.client_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.cree_le DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("liste réservations: %w", err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// SetStatus applique la transition en une seule mise à jour.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, statut string) (*Reservation, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE reservations SET statut = $2, mis_a_jour_le = now() WHERE id = $1`,
		id, statut)
	if err != nil {
		return nil, fmt.Errorf("mise à jour statut réservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("suppression réservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var (
		res   Reservation
		email *string
		notes *string
	)
	err := row.Scan(
		&res.ID, &res.ServiceID, &res.ServiceNom, &res.Ligne, &res.ClientID,
		&res.Nom, &res.Telephone, &email, &res.Adresse, &res.Date,
		&res.Heures, &res.Montant, &res.Statut, &notes,
		&res.CreeLe, &res.MisAJourLe,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lecture réservation: %w", err)
	}
	if email != nil {
		res.Email = *email
	}
	if notes != nil {
		res.Notes = *notes
	}
	return &res, nil
}
