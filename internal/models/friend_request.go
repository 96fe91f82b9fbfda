package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestStatusPending FriendRequestStatus = "pending"
	// FriendRequestStatusAccepted is declared for completeness but never
	// stored: accepting a request deletes the row instead of transitioning it.
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
)

type FriendRequest struct {
	ID         uuid.UUID           `json:"id"`
	FromUserID uuid.UUID           `json:"from_user_id"`
	ToUserID   uuid.UUID           `json:"to_user_id"`
	Status     FriendRequestStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}

// PendingRequest is a request joined with its requester's directory entry,
// as shown on the recipient's requests tab.
type PendingRequest struct {
	FriendRequest
	Requester UserSummary `json:"from_user"`
}
