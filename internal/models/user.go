package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Username     string      `json:"username"`
	DisplayName  string      `json:"display_name"`
	FriendCode   string      `json:"friend_code"`
	Avatar       *string     `json:"avatar,omitempty"`
	Bio          *string     `json:"bio,omitempty"`
	Age          *int        `json:"age,omitempty"`
	Region       *string     `json:"region,omitempty"`
	Games        []string    `json:"games"`
	Followers    []uuid.UUID `json:"followers"`
	Following    []uuid.UUID `json:"following"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActive   time.Time   `json:"last_active"`
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	Username     string
	DisplayName  string
	FriendCode   string
}

// UserSummary is the directory view of a user: what other players see in
// search results, pending requests, and friends lists. No email, no follow
// lists.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	FriendCode  string    `json:"friend_code"`
	Avatar      *string   `json:"avatar,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	Age         *int      `json:"age,omitempty"`
	Region      *string   `json:"region,omitempty"`
	Games       []string  `json:"games"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		FriendCode:  u.FriendCode,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		Age:         u.Age,
		Region:      u.Region,
		Games:       u.Games,
	}
}
