package commerce

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tawdev/mahtaaj/internal/db"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateOrder insère la commande et ses articles dans la même
// transaction: pas de commande orpheline si une ligne échoue.
func (r *Repository) CreateOrder(ctx context.Context, input CreateOrderInput, total float64, codePromo string) (*Order, error) {
	var orderID uuid.UUID
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO commandes (nom, telephone, email, adresse, total, statut, code_promo)
			VALUES ($1, $2, $3, $4, $5, 'pending', $6)
			RETURNING id`,
			input.Nom, input.Telephone, input.Email, input.Adresse, total, codePromo,
		).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("insertion commande: %w", err)
		}
		for _, it := range input.Articles {
			_, err := tx.Exec(ctx, `
				INSERT INTO commande_articles (commande_id, designation, quantite, prix_unitaire)
				VALUES ($1, $2, $3, $4)`,
				orderID, it.Designation, it.Quantite, it.PrixUnitaire)
			if err != nil {
				return fmt.Errorf("insertion article: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(ctx, orderID)
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, nom, telephone, email, adresse, total, statut, code_promo, cree_le, mis_a_jour_le
		FROM commandes WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *Repository) ListOrders(ctx context.Context, statut string) ([]Order, error) {
	query := `SELECT id, nom, telephone, email, adresse, total, statut, code_promo, cree_le, mis_a_jour_le
		FROM commandes`
	var args []any
	if statut != "" {
		query += ` WHERE statut = $1`
		args = append(args, statut)
	}
	query += ` ORDER BY cree_le DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("liste commandes: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repository) SetOrderStatus(ctx context.Context, id uuid.UUID, statut string) (*Order, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE commandes SET statut = $2, mis_a_jour_le = now() WHERE id = $1`,
		id, statut)
	if err != nil {
		return nil, fmt.Errorf("mise à jour commande: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetOrder(ctx, id)
}

func (r *Repository) loadItems(ctx context.Context, order *Order) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, designation, quantite, prix_unitaire
		FROM commande_articles WHERE commande_id = $1
		ORDER BY designation`, order.ID)
	if err != nil {
		return fmt.Errorf("articles commande: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.Designation, &it.Quantite, &it.PrixUnitaire); err != nil {
			return fmt.Errorf("lecture article: %w", err)
		}
		order.Articles = append(order.Articles, it)
	}
	return rows.Err()
}

func (r *Repository) CreatePromotion(ctx context.Context, input CreatePromotionInput) (*Promotion, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO promotions (code, remise, debut, fin, actif)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id, code, remise, debut, fin, actif, cree_le, mis_a_jour_le`,
		strings.ToUpper(input.Code), input.Remise, input.Debut, input.Fin)
	promo, err := scanPromotion(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}
	return promo, nil
}

func (r *Repository) GetPromotionByCode(ctx context.Context, code string) (*Promotion, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, code, remise, debut, fin, actif, cree_le, mis_a_jour_le
		FROM promotions WHERE code = $1`, strings.ToUpper(code))
	return scanPromotion(row)
}

func (r *Repository) ListPromotions(ctx context.Context) ([]Promotion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, remise, debut, fin, actif, cree_le, mis_a_jour_le
		FROM promotions ORDER BY cree_le DESC`)
	if err != nil {
		return nil, fmt.Errorf("liste promotions: %w", err)
	}
	defer rows.Close()

	var out []Promotion
	for rows.Next() {
		promo, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *promo)
	}
	return out, rows.Err()
}

// TogglePromotion inverse le drapeau actif.
func (r *Repository) TogglePromotion(ctx context.Context, id uuid.UUID) (*Promotion, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE promotions SET actif = NOT actif, mis_a_jour_le = now()
		WHERE id = $1
		RETURNING id, code, remise, debut, fin, actif, cree_le, mis_a_jour_le`, id)
	return scanPromotion(row)
}

func (r *Repository) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("suppression promotion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPromoNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		order Order
		email *string
		code  *string
	)
	err := row.Scan(&order.ID, &order.Nom, &order.Telephone, &email, &order.Adresse,
		&order.Total, &order.Statut, &code, &order.CreeLe, &order.MisAJourLe)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("lecture commande: %w", err)
	}
	if email != nil {
		order.Email = *email
	}
	if code != nil {
		order.CodePromo = *code
	}
	return &order, nil
}

func scanPromotion(row pgx.Row) (*Promotion, error) {
	var promo Promotion
	err := row.Scan(&promo.ID, &promo.Code, &promo.Remise, &promo.Debut, &promo.Fin,
		&promo.Actif, &promo.CreeLe, &promo.MisAJourLe)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("lecture promotion: %w", err)
	}
	return &promo, nil
}
