package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/switch2connect/switch2connect/internal/models"
)

var (
	ErrInvalidProviderClaims   = errors.New("invalid provider claims")
	ErrProviderEmailUnverified = errors.New("provider email not verified")
	ErrProviderIdentityExists  = errors.New("provider identity already linked")
	ErrInvalidProviderPending  = errors.New("invalid provider pending record")
)

// PendingProviderUser is a verified external identity with no local profile
// yet. The sign-in flow parks it until the player picks a username, display
// name, and friend code.
type PendingProviderUser struct {
	Provider Provider `json:"provider"`
	Subject  string   `json:"subject"`
	Email    string   `json:"email"`
}

type ProviderLinkResult struct {
	User    *models.User
	Pending *PendingProviderUser
}

type ProviderAuthService struct {
	db DB
}

func NewProviderAuthService(db DB) *ProviderAuthService {
	return &ProviderAuthService{db: db}
}

// LinkOrFindUserFromProvider resolves verified provider claims to a local
// user: an already-linked identity wins, then an existing account with the
// same verified email gets the identity linked, otherwise registration must
// be completed and a pending record is returned.
func (s *ProviderAuthService) LinkOrFindUserFromProvider(ctx context.Context, claims IdentityClaims) (*ProviderLinkResult, error) {
	provider := strings.TrimSpace(string(claims.Provider))
	subject := strings.TrimSpace(claims.Subject)
	if provider == "" || subject == "" {
		return nil, ErrInvalidProviderClaims
	}

	linkedUser, err := s.getUserByProviderSubject(ctx, claims.Provider, subject)
	if err == nil {
		return &ProviderLinkResult{User: linkedUser}, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	email := normalizeEmail(claims.Email)
	if email == "" || !claims.EmailVerified {
		return nil, ErrProviderEmailUnverified
	}

	var userID uuid.UUID
	err = s.db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&userID)
	if err == nil {
		if err := s.linkIdentity(ctx, userID, claims.Provider, subject, email); err != nil {
			if errors.Is(err, ErrProviderIdentityExists) {
				if existing, lookupErr := s.getUserByProviderSubject(ctx, claims.Provider, subject); lookupErr == nil {
					return &ProviderLinkResult{User: existing}, nil
				}
			}
			return nil, err
		}
		user, err := s.getUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ProviderLinkResult{User: user}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("looking up user by email: %w", err)
	}

	return &ProviderLinkResult{
		Pending: &PendingProviderUser{
			Provider: claims.Provider,
			Subject:  subject,
			Email:    email,
		},
	}, nil
}

// CreateUserFromProviderPending finishes provider sign-up: profile row,
// username reservation, and identity link in one transaction. The friend
// code must already be in canonical form.
func (s *ProviderAuthService) CreateUserFromProviderPending(ctx context.Context, pending PendingProviderUser, params models.CreateUserParams) (*models.User, error) {
	if strings.TrimSpace(string(pending.Provider)) == "" || strings.TrimSpace(pending.Subject) == "" {
		return nil, ErrInvalidProviderPending
	}
	email := normalizeEmail(pending.Email)
	if email == "" {
		return nil, ErrInvalidProviderPending
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // Rollback is a no-op after commit

	var exists bool
	err = tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	user := &models.User{}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, username, display_name, friend_code)
		 VALUES ($1, '', LOWER($2), $3, $4)
		 RETURNING id, email, password_hash, username, display_name, friend_code, avatar, bio, age, region, games, followers, following, created_at, last_active`,
		email, params.Username, params.DisplayName, params.FriendCode,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.DisplayName, &user.FriendCode,
		&user.Avatar, &user.Bio, &user.Age, &user.Region, &user.Games, &user.Followers, &user.Following,
		&user.CreatedAt, &user.LastActive)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO usernames (username, user_id) VALUES (LOWER($1), $2)`,
		params.Username, user.ID,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameAlreadyExists
		}
		return nil, fmt.Errorf("reserving username: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO user_identities (user_id, provider, subject, email_at_link_time)
		 VALUES ($1, $2, $3, $4)`,
		user.ID, pending.Provider, pending.Subject, email,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProviderIdentityExists
		}
		return nil, fmt.Errorf("linking user identity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return user, nil
}

func (s *ProviderAuthService) linkIdentity(ctx context.Context, userID uuid.UUID, provider Provider, subject, email string) error {
	if _, err := s.db.Exec(ctx,
		`INSERT INTO user_identities (user_id, provider, subject, email_at_link_time)
		 VALUES ($1, $2, $3, $4)`,
		userID, provider, subject, email,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrProviderIdentityExists
		}
		return fmt.Errorf("inserting user identity: %w", err)
	}
	return nil
}

func (s *ProviderAuthService) getUserByProviderSubject(ctx context.Context, provider Provider, subject string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.email, u.password_hash, u.username, u.display_name, u.friend_code, u.avatar, u.bio, u.age, u.region, u.games, u.followers, u.following, u.created_at, u.last_active
		 FROM user_identities ui
		 JOIN users u ON u.id = ui.user_id
		 WHERE ui.provider = $1 AND ui.subject = $2`,
		provider, subject,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.DisplayName, &user.FriendCode,
		&user.Avatar, &user.Bio, &user.Age, &user.Region, &user.Games, &user.Followers, &user.Following,
		&user.CreatedAt, &user.LastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by provider subject: %w", err)
	}
	return user, nil
}

func (s *ProviderAuthService) getUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, username, display_name, friend_code, avatar, bio, age, region, games, followers, following, created_at, last_active
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.DisplayName, &user.FriendCode,
		&user.Avatar, &user.Bio, &user.Age, &user.Region, &user.Games, &user.Followers, &user.Following,
		&user.CreatedAt, &user.LastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
