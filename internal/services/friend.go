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
	ErrCannotFriendSelf = errors.New("cannot send a friend request to yourself")
	ErrRequestNotFound  = errors.New("friend request not found")
)

// FriendService implements the friend-code relationship workflow: request
// issuance, pending-request listing, acceptance/decline, and the friends
// list derived from the user's following ids.
type FriendService struct {
	db DB
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

// SendRequest creates a pending request from one user to another. Sending
// twice creates two independent rows; the recipient sees both and resolves
// each on its own.
func (s *FriendService) SendRequest(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error) {
	if fromID == toID {
		return nil, ErrCannotFriendSelf
	}

	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", toID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking recipient: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	request := &models.FriendRequest{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO friend_requests (from_user_id, to_user_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING id, from_user_id, to_user_id, status, created_at`,
		fromID, toID,
	).Scan(&request.ID, &request.FromUserID, &request.ToUserID, &request.Status, &request.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return request, nil
}

// ListPending returns the pending requests addressed to the given user, each
// joined with its requester's directory entry, oldest first.
func (s *FriendService) ListPending(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT fr.id, fr.from_user_id, fr.to_user_id, fr.status, fr.created_at,
		        u.id, u.username, u.display_name, u.friend_code, u.avatar, u.bio, u.age, u.region, u.games
		 FROM friend_requests fr
		 JOIN users u ON u.id = fr.from_user_id
		 WHERE fr.to_user_id = $1 AND fr.status = 'pending'
		 ORDER BY fr.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friend requests: %w", err)
	}
	defer rows.Close()

	requests := []models.PendingRequest{}
	for rows.Next() {
		var req models.PendingRequest
		if err := rows.Scan(
			&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt,
			&req.Requester.ID, &req.Requester.Username, &req.Requester.DisplayName, &req.Requester.FriendCode,
			&req.Requester.Avatar, &req.Requester.Bio, &req.Requester.Age, &req.Requester.Region, &req.Requester.Games,
		); err != nil {
			return nil, fmt.Errorf("scanning friend request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading friend requests: %w", err)
	}
	return requests, nil
}

// Accept removes the request and returns the requester so the caller can be
// told who they accepted. It deliberately does not touch either party's
// following or followers list; the friends view is derived solely from
// `following`, which this flow never writes.
func (s *FriendService) Accept(ctx context.Context, userID, requestID uuid.UUID) (*models.UserSummary, error) {
	requester := &models.UserSummary{}
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.username, u.display_name, u.friend_code, u.avatar, u.bio, u.age, u.region, u.games
		 FROM friend_requests fr
		 JOIN users u ON u.id = fr.from_user_id
		 WHERE fr.id = $1 AND fr.to_user_id = $2 AND fr.status = 'pending'`,
		requestID, userID,
	).Scan(&requester.ID, &requester.Username, &requester.DisplayName, &requester.FriendCode,
		&requester.Avatar, &requester.Bio, &requester.Age, &requester.Region, &requester.Games)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading friend request: %w", err)
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM friend_requests WHERE id = $1 AND to_user_id = $2`,
		requestID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrRequestNotFound
	}

	return requester, nil
}

// Decline removes the request with no further effect.
func (s *FriendService) Decline(ctx context.Context, userID, requestID uuid.UUID) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM friend_requests WHERE id = $1 AND to_user_id = $2`,
		requestID, userID,
	)
	if err != nil {
		return fmt.Errorf("declining friend request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// Friends resolves the user's following ids into directory entries, in the
// order they appear in `following`. Resolution is a single batched query
// rather than one round trip per id.
func (s *FriendService) Friends(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	var following []uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT following FROM users WHERE id = $1`,
		userID,
	).Scan(&following)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading following list: %w", err)
	}

	if len(following) == 0 {
		return []models.UserSummary{}, nil
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, username, display_name, friend_code, avatar, bio, age, region, games
		 FROM users
		 WHERE id = ANY($1)`,
		following,
	)
	if err != nil {
		return nil, fmt.Errorf("resolving friends: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]models.UserSummary, len(following))
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.FriendCode, &u.Avatar, &u.Bio, &u.Age, &u.Region, &u.Games); err != nil {
			return nil, fmt.Errorf("scanning friend: %w", err)
		}
		byID[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading friends: %w", err)
	}

	// Ids that no longer resolve to a profile are skipped.
	friends := make([]models.UserSummary, 0, len(byID))
	for _, id := range following {
		if friend, ok := byID[id]; ok {
			friends = append(friends, friend)
		}
	}
	return friends, nil
}
