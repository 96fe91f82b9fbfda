package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/switch2connect/switch2connect/internal/models"
)

var ErrCommunityNotFound = errors.New("community not found")

type CommunityService struct {
	db DBConn
}

func NewCommunityService(db DBConn) *CommunityService {
	return &CommunityService{db: db}
}

type CommunityListParams struct {
	Category models.CommunityCategory // empty means all categories
}

func (s *CommunityService) List(ctx context.Context, params CommunityListParams) ([]models.Community, error) {
	query := `SELECT id, name, description, category, game, age_group, member_count, avatar, is_private, created_at
	          FROM communities`
	args := []any{}
	if params.Category != "" {
		query += ` WHERE category = $1`
		args = append(args, params.Category)
	}
	query += ` ORDER BY member_count DESC, created_at`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing communities: %w", err)
	}
	defer rows.Close()

	communities := []models.Community{}
	for rows.Next() {
		var c models.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Game, &c.AgeGroup,
			&c.MemberCount, &c.Avatar, &c.IsPrivate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning community: %w", err)
		}
		communities = append(communities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading communities: %w", err)
	}
	return communities, nil
}

func (s *CommunityService) GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error) {
	c := &models.Community{}
	err := s.db.QueryRow(ctx,
		`SELECT id, name, description, category, game, age_group, member_count, avatar, is_private, created_at
		 FROM communities WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Category, &c.Game, &c.AgeGroup,
		&c.MemberCount, &c.Avatar, &c.IsPrivate, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting community: %w", err)
	}
	return c, nil
}
