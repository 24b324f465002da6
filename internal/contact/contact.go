package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/notify"
)

var ErrNotFound = errors.New("message introuvable")

// Message est une prise de contact déposée depuis le site public.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Nom       string    `json:"nom"`
	Telephone string    `json:"telephone"`
	Email     string    `json:"email,omitempty"`
	Sujet     string    `json:"sujet,omitempty"`
	Contenu   string    `json:"contenu"`
	Lu        bool      `json:"lu"`
	CreeLe    time.Time `json:"cree_le"`
}

type CreateMessageInput struct {
	Nom       string
	Telephone string
	Email     string
	Sujet     string
	Contenu   string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, input CreateMessageInput) (*Message, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages_contact (nom, telephone, email, sujet, contenu)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, nom, telephone, email, sujet, contenu, lu, cree_le`,
		input.Nom, input.Telephone, input.Email, input.Sujet, input.Contenu)
	return scanMessage(row)
}

// List renvoie la boîte de réception, non lus d'abord.
func (r *Repository) List(ctx context.Context, onlyUnread bool) ([]Message, error) {
	query := `SELECT id, nom, telephone, email, sujet, contenu, lu, cree_le FROM messages_contact`
	if onlyUnread {
		query += ` WHERE NOT lu`
	}
	query += ` ORDER BY lu, cree_le DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("liste messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *msg)
	}
	return out, rows.Err()
}

func (r *Repository) SetRead(ctx context.Context, id uuid.UUID, lu bool) (*Message, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE messages_contact SET lu = $2 WHERE id = $1
		RETURNING id, nom, telephone, email, sujet, contenu, lu, cree_le`, id, lu)
	return scanMessage(row)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages_contact WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("suppression message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	var (
		msg   Message
		email *string
		sujet *string
	)
	err := row.Scan(&msg.ID, &msg.Nom, &msg.Telephone, &email, &sujet, &msg.Contenu, &msg.Lu, &msg.CreeLe)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lecture message: %w", err)
	}
	if email != nil {
		msg.Email = *email
	}
	if sujet != nil {
		msg.Sujet = *sujet
	}
	return &msg, nil
}

// ContactRepository permet de substituer un stub dans les tests.
type ContactRepository interface {
	Create(ctx context.Context, input CreateMessageInput) (*Message, error)
	List(ctx context.Context, onlyUnread bool) ([]Message, error)
	SetRead(ctx context.Context, id uuid.UUID, lu bool) (*Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ContactService struct {
	repo     ContactRepository
	notifier notify.Notifier
}

func NewService(repo ContactRepository) *ContactService {
	return &ContactService{repo: repo}
}

// WithNotifier branche l'alerte backoffice sur les nouveaux messages.
func (s *ContactService) WithNotifier(n notify.Notifier) *ContactService {
	s.notifier = n
	return s
}

func (s *ContactService) Submit(ctx context.Context, input CreateMessageInput) (*Message, error) {
	input.Nom = strings.TrimSpace(input.Nom)
	input.Contenu = strings.TrimSpace(input.Contenu)

	msg, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		go func(m Message) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.notifier.Notify(ctx, notify.Message{
				Titre: "Nouveau message de contact",
				Texte: m.Nom + " — " + m.Sujet,
			}); err != nil {
				log.Warn().Err(err).Msg("contact: alerte non envoyée")
			}
		}(*msg)
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, onlyUnread bool) ([]Message, error) {
	return s.repo.List(ctx, onlyUnread)
}

func (s *ContactService) MarkRead(ctx context.Context, id uuid.UUID) (*Message, error) {
	return s.repo.SetRead(ctx, id, true)
}

func (s *ContactService) MarkUnread(ctx context.Context, id uuid.UUID) (*Message, error) {
	return s.repo.SetRead(ctx, id, false)
}

func (s *ContactService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
