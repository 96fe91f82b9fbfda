package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/switch2connect/switch2connect/internal/models"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already taken")
)

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

// Create registers a profile and reserves the lowercase username in the
// usernames side table in one transaction. The side table carries the
// uniqueness constraint; nothing reads it back.
func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // Rollback is a no-op after commit

	var exists bool
	err = tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", params.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	user := &models.User{}
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, username, display_name, friend_code)
		 VALUES ($1, $2, LOWER($3), $4, $5)
		 RETURNING id, email, password_hash, username, display_name, friend_code, avatar, bio, age, region, games, followers, following, created_at, last_active`,
		params.Email, params.PasswordHash, params.Username, params.DisplayName, params.FriendCode,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.DisplayName, &user.FriendCode,
		&user.Avatar, &user.Bio, &user.Age, &user.Region, &user.Games, &user.Followers, &user.Following,
		&user.CreatedAt, &user.LastActive)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO usernames (username, user_id) VALUES (LOWER($1), $2)`,
		params.Username, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameAlreadyExists
		}
		return nil, fmt.Errorf("reserving username: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, username, display_name, friend_code, avatar, bio, age, region, games, followers, following, created_at, last_active
		 FROM users WHERE id = $1`,
		id,
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

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, username, display_name, friend_code, avatar, bio, age, region, games, followers, following, created_at, last_active
		 FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Username, &user.DisplayName, &user.FriendCode,
		&user.Avatar, &user.Bio, &user.Age, &user.Region, &user.Games, &user.Followers, &user.Following,
		&user.CreatedAt, &user.LastActive)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}

	return user, nil
}

// SearchByFriendCode returns every profile whose stored code equals the given
// canonical code, excluding the searcher's own profile. Codes are not unique,
// so multiple matches are possible.
func (s *UserService) SearchByFriendCode(ctx context.Context, code string, excludeID uuid.UUID) ([]models.UserSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, username, display_name, friend_code, avatar, bio, age, region, games
		 FROM users
		 WHERE friend_code = $1 AND id <> $2`,
		code, excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("searching by friend code: %w", err)
	}
	defer rows.Close()

	results := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.FriendCode, &u.Avatar, &u.Bio, &u.Age, &u.Region, &u.Games); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search results: %w", err)
	}
	return results, nil
}
