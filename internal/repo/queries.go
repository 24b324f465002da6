package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries regroupe les requêtes partagées (comptes et sessions).
type Queries struct {
	pool *pgxpool.Pool
}

// New crée l'accès aux requêtes partagées.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

// QueryRowContext expose une requête brute (utile aux services).
func (q *Queries) QueryRowContext(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.pool.QueryRow(ctx, sql, args...)
}

// GetAdminByEmail retrouve un admin par email (insensible à la casse).
func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	const query = `
        SELECT id, nom, email, mot_de_passe, role, actif, cree_le, derniere_connexion
        FROM admins
        WHERE lower(email) = lower($1)
    `
	return scanAdmin(q.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// GetAdminByID retrouve un admin par identifiant.
func (q *Queries) GetAdminByID(ctx context.Context, id uuid.UUID) (Admin, error) {
	const query = `
        SELECT id, nom, email, mot_de_passe, role, actif, cree_le, derniere_connexion
        FROM admins
        WHERE id = $1
    `
	return scanAdmin(q.pool.QueryRow(ctx, query, id))
}

// TouchAdminLogin enregistre la dernière connexion.
func (q *Queries) TouchAdminLogin(ctx context.Context, id uuid.UUID) error {
	_, err := q.pool.Exec(ctx, `UPDATE admins SET derniere_connexion = now() WHERE id = $1`, id)
	return err
}

// GetClientByEmail retrouve un client par email.
func (q *Queries) GetClientByEmail(ctx context.Context, email string) (Client, error) {
	const query = `
        SELECT id, nom, email, telephone, mot_de_passe, actif, cree_le
        FROM clients
        WHERE lower(email) = lower($1)
    `
	return scanClient(q.pool.QueryRow(ctx, query, strings.TrimSpace(email)))
}

// GetClientByID retrouve un client par identifiant.
func (q *Queries) GetClientByID(ctx context.Context, id uuid.UUID) (Client, error) {
	const query = `
        SELECT id, nom, email, telephone, mot_de_passe, actif, cree_le
        FROM clients
        WHERE id = $1
    `
	return scanClient(q.pool.QueryRow(ctx, query, id))
}

// InsertClient enregistre un nouveau client du site public.
func (q *Queries) InsertClient(ctx context.Context, nom, email, telephone, motDePasseHash string) (Client, error) {
	const query = `
        INSERT INTO clients (nom, email, telephone, mot_de_passe, actif)
        VALUES ($1, lower($2), NULLIF($3, ''), $4, true)
        RETURNING id, nom, email, telephone, mot_de_passe, actif, cree_le
    `
	return scanClient(q.pool.QueryRow(ctx, query, strings.TrimSpace(nom), strings.TrimSpace(email), strings.TrimSpace(telephone), motDePasseHash))
}

// InsertRefreshTokenParams porte les champs d'un refresh token.
type InsertRefreshTokenParams struct {
	Subject    uuid.UUID
	Audience   string
	TokenHash  string
	Expiration time.Time
}

// InsertRefreshToken persiste un refresh token hashé.
func (q *Queries) InsertRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) (RefreshToken, error) {
	const query = `
        INSERT INTO refresh_tokens (subject, audience, token_hash, expiration)
        VALUES ($1, $2, $3, $4)
        RETURNING id, subject, audience, token_hash, expiration, cree_le, revoque
    `
	var t RefreshToken
	err := q.pool.QueryRow(ctx, query, arg.Subject, arg.Audience, arg.TokenHash, arg.Expiration).
		Scan(&t.ID, &t.Subject, &t.Audience, &t.TokenHash, &t.Expiration, &t.CreeLe, &t.Revoque)
	return t, err
}

// GetRefreshTokenByHash retrouve un refresh token par hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (RefreshToken, error) {
	const query = `
        SELECT id, subject, audience, token_hash, expiration, cree_le, revoque
        FROM refresh_tokens
        WHERE token_hash = $1
    `
	var t RefreshToken
	err := q.pool.QueryRow(ctx, query, tokenHash).
		Scan(&t.ID, &t.Subject, &t.Audience, &t.TokenHash, &t.Expiration, &t.CreeLe, &t.Revoque)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshToken{}, ErrNotFound
		}
		return RefreshToken{}, err
	}
	return t, nil
}

// RevokeRefreshToken marque un refresh token comme révoqué.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := q.pool.Exec(ctx, `UPDATE refresh_tokens SET revoque = true WHERE token_hash = $1`, tokenHash)
	return err
}

// InvalidateOtherRefreshTokens révoque les autres sessions du même sujet.
func (q *Queries) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error {
	_, err := q.pool.Exec(ctx, `
        UPDATE refresh_tokens
        SET revoque = true
        WHERE subject = $1 AND audience = $2 AND token_hash <> $3 AND NOT revoque
    `, subject, audience, keepHash)
	return err
}

func scanAdmin(row pgx.Row) (Admin, error) {
	var a Admin
	err := row.Scan(&a.ID, &a.Nom, &a.Email, &a.MotDePasse, &a.Role, &a.Actif, &a.CreeLe, &a.DerniereConn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, ErrNotFound
		}
		return Admin{}, err
	}
	return a, nil
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Nom, &c.Email, &c.Telephone, &c.MotDePasse, &c.Actif, &c.CreeLe)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	return c, nil
}
