package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/tawdev/mahtaaj/internal/auth"
	"github.com/tawdev/mahtaaj/internal/repo"
	"github.com/tawdev/mahtaaj/internal/util"
)

var (
	// ErrInvalidCredentials indique un échec d'authentification.
	ErrInvalidCredentials = errors.New("identifiants invalides")
	// ErrAccountDisabled indique un compte désactivé.
	ErrAccountDisabled = errors.New("compte désactivé")
	// ErrRefreshInvalid indique un refresh token invalide ou expiré.
	ErrRefreshInvalid = errors.New("refresh token invalide")
	// ErrNoEligibleRoles indique l'absence de rôle autorisé.
	ErrNoEligibleRoles = errors.New("utilisateur sans rôle éligible")
	// ErrEmailTaken indique un email déjà enregistré.
	ErrEmailTaken = errors.New("email déjà utilisé")
)

// Audiences portées par les tokens.
const (
	AudienceAdmin  = "admin"
	AudienceClient = "client"
)

type authRepository interface {
	GetAdminByEmail(ctx context.Context, email string) (repo.Admin, error)
	GetAdminByID(ctx context.Context, id uuid.UUID) (repo.Admin, error)
	TouchAdminLogin(ctx context.Context, id uuid.UUID) error
	GetClientByEmail(ctx context.Context, email string) (repo.Client, error)
	GetClientByID(ctx context.Context, id uuid.UUID) (repo.Client, error)
	InsertClient(ctx context.Context, nom, email, telephone, motDePasseHash string) (repo.Client, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.RefreshToken, error)
	InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.RefreshToken, error)
	InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentre les règles d'authentification et de session.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService crée le service.
func NewAuthService(r authRepository, redisClient redisCommander, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expose le gestionnaire de JWT (utile aux middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult représente le retour standard des authentifications.
type LoginResult struct {
	Audience       string
	AccessToken    string
	RefreshToken   string
	Subject        uuid.UUID
	Roles          []string
	Profile        any
	RefreshHash    string
	RefreshExpiry  time.Time
	DefaultSection string
}

// AdminProfile décrit un membre du backoffice.
type AdminProfile struct {
	ID       string   `json:"id"`
	Nom      string   `json:"nom"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	Sections []string `json:"sections"`
}

// ClientProfile décrit un utilisateur du site public.
type ClientProfile struct {
	ID        string  `json:"id"`
	Nom       string  `json:"nom"`
	Email     *string `json:"email"`
	Telephone *string `json:"telephone,omitempty"`
}

// LoginAdmin authentifie un membre du backoffice.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.repo.GetAdminByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login admin: compte introuvable")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, admin.MotDePasse)
	if err != nil {
		log.Warn().Err(err).Msg("login admin: vérification du mot de passe en échec")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login admin: mot de passe invalide")
		return nil, ErrInvalidCredentials
	}

	return s.loginAdminFromAccount(ctx, admin)
}

func (s *AuthService) loginAdminFromAccount(ctx context.Context, admin repo.Admin) (*LoginResult, error) {
	if !admin.Actif {
		return nil, ErrAccountDisabled
	}

	// Les rôles inconnus sont abandonnés au login; sans rôle reconnu, pas de session.
	var roles []string
	if IsKnownRole(admin.Role) {
		roles = []string{strings.ToUpper(strings.TrimSpace(admin.Role))}
	}
	if len(roles) == 0 {
		return nil, ErrNoEligibleRoles
	}

	token, _, err := s.jwt.GenerateAccessToken(admin.ID.String(), AudienceAdmin, roles)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := time.Now().UTC().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, admin.ID, AudienceAdmin, refreshHash, expires); err != nil {
		return nil, err
	}

	if err := s.repo.TouchAdminLogin(ctx, admin.ID); err != nil {
		log.Warn().Err(err).Msg("login admin: horodatage de connexion en échec")
	}

	profile := &AdminProfile{
		ID:       admin.ID.String(),
		Nom:      admin.Nom,
		Email:    admin.Email,
		Role:     roles[0],
		Sections: AllowedSections(roles[0]),
	}

	return &LoginResult{
		Audience:       AudienceAdmin,
		AccessToken:    token,
		RefreshToken:   rawRefresh,
		Subject:        admin.ID,
		Roles:          roles,
		Profile:        profile,
		RefreshHash:    refreshHash,
		RefreshExpiry:  expires,
		DefaultSection: DefaultSection(roles[0]),
	}, nil
}

// LoginClient authentifie un utilisateur du site public.
func (s *AuthService) LoginClient(ctx context.Context, email, password string) (*LoginResult, error) {
	client, err := s.repo.GetClientByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login client: compte introuvable")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !client.Actif {
		return nil, ErrAccountDisabled
	}
	if client.MotDePasse == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.Verify(password, *client.MotDePasse)
	if err != nil {
		log.Warn().Err(err).Msg("login client: vérification du mot de passe en échec")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login client: mot de passe invalide")
		return nil, ErrInvalidCredentials
	}

	return s.loginClientFromAccount(ctx, client)
}

// RegisterClient crée un compte client puis ouvre la session.
func (s *AuthService) RegisterClient(ctx context.Context, nom, email, telephone, password string) (*LoginResult, error) {
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := util.RequireString(nom, "nom"); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetClientByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}

	client, err := s.repo.InsertClient(ctx, nom, email, telephone, hash)
	if err != nil {
		return nil, err
	}

	return s.loginClientFromAccount(ctx, client)
}

func (s *AuthService) loginClientFromAccount(ctx context.Context, client repo.Client) (*LoginResult, error) {
	roles := []string{"CLIENT"}
	token, _, err := s.jwt.GenerateAccessToken(client.ID.String(), AudienceClient, roles)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := time.Now().UTC().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, client.ID, AudienceClient, refreshHash, expires); err != nil {
		return nil, err
	}

	profile := &ClientProfile{
		ID:        client.ID.String(),
		Nom:       client.Nom,
		Email:     client.Email,
		Telephone: client.Telephone,
	}

	return &LoginResult{
		Audience:      AudienceClient,
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Subject:       client.ID,
		Roles:         roles,
		Profile:       profile,
		RefreshHash:   refreshHash,
		RefreshExpiry: expires,
	}, nil
}

// Refresh échange un refresh token contre de nouveaux tokens.
// Les rôles sont relus depuis la base: un changement de rôle prend effet ici.
func (s *AuthService) Refresh(ctx context.Context, audience, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revoque || time.Now().UTC().After(record.Expiration) || record.Audience != audience {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(audience, hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	var result *LoginResult
	switch audience {
	case AudienceAdmin:
		admin, err := s.repo.GetAdminByID(ctx, record.Subject)
		if err != nil {
			return nil, err
		}
		result, err = s.loginAdminFromAccount(ctx, admin)
		if err != nil {
			return nil, err
		}
	case AudienceClient:
		client, err := s.repo.GetClientByID(ctx, record.Subject)
		if err != nil {
			return nil, err
		}
		if !client.Actif {
			return nil, ErrAccountDisabled
		}
		result, err = s.loginClientFromAccount(ctx, client)
		if err != nil {
			return nil, err
		}
	default:
		return nil, ErrRefreshInvalid
	}

	// Rotation: l'ancien token est révoqué une fois le nouveau émis.
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		log.Warn().Err(err).Msg("refresh: révocation de l'ancien token en échec")
	}
	_ = s.redis.Del(ctx, redisKey)

	return result, nil
}

// Logout révoque le refresh token présenté. Idempotent: un token déjà
// révoqué ou inconnu n'est pas une erreur.
func (s *AuthService) Logout(ctx context.Context, audience, rawToken string) error {
	if rawToken == "" {
		return nil
	}

	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil {
		log.Warn().Err(err).Msg("logout: révocation en échec")
	}
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(audience, hash)).Err(); err != nil {
		log.Warn().Err(err).Msg("logout: nettoyage redis en échec")
	}
	return nil
}

// GetMe recharge le profil de l'utilisateur authentifié.
func (s *AuthService) GetMe(ctx context.Context, audience string, subject uuid.UUID) (any, []string, error) {
	switch audience {
	case AudienceAdmin:
		admin, err := s.repo.GetAdminByID(ctx, subject)
		if err != nil {
			return nil, nil, err
		}
		if !IsKnownRole(admin.Role) {
			return nil, nil, ErrNoEligibleRoles
		}
		role := strings.ToUpper(strings.TrimSpace(admin.Role))
		profile := &AdminProfile{
			ID:       admin.ID.String(),
			Nom:      admin.Nom,
			Email:    admin.Email,
			Role:     role,
			Sections: AllowedSections(role),
		}
		return profile, []string{role}, nil
	case AudienceClient:
		client, err := s.repo.GetClientByID(ctx, subject)
		if err != nil {
			return nil, nil, err
		}
		profile := &ClientProfile{
			ID:        client.ID.String(),
			Nom:       client.Nom,
			Email:     client.Email,
			Telephone: client.Telephone,
		}
		return profile, []string{"CLIENT"}, nil
	}
	return nil, nil, ErrNoEligibleRoles
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, audience, hash string, expires time.Time) error {
	if _, err := s.repo.InsertRefreshToken(ctx, repo.InsertRefreshTokenParams{
		Subject:    subject,
		Audience:   audience,
		TokenHash:  hash,
		Expiration: expires,
	}); err != nil {
		return err
	}

	ttl := time.Until(expires)
	if ttl <= 0 {
		return ErrRefreshInvalid
	}
	if err := s.redis.Set(ctx, auth.RefreshRedisKey(audience, hash), "active", ttl).Err(); err != nil {
		return err
	}

	return s.repo.InvalidateOtherRefreshTokens(ctx, subject, audience, hash)
}
