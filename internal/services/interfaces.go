package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/switch2connect/switch2connect/internal/models"
)

// Interfaces consumed by handlers and middleware, satisfied by the concrete
// services above and by stubs in tests.

type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SearchByFriendCode(ctx context.Context, code string, excludeID uuid.UUID) ([]models.UserSummary, error)
}

type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	CreateSession(ctx context.Context, userID uuid.UUID) (string, error)
	GetSession(ctx context.Context, token string) (uuid.UUID, error)
	DeleteSession(ctx context.Context, token string) error
}

type FriendServiceInterface interface {
	SendRequest(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	Accept(ctx context.Context, userID, requestID uuid.UUID) (*models.UserSummary, error)
	Decline(ctx context.Context, userID, requestID uuid.UUID) error
	Friends(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error)
}

type CommunityServiceInterface interface {
	List(ctx context.Context, params CommunityListParams) ([]models.Community, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Community, error)
}

type EmailServiceInterface interface {
	SendWelcome(ctx context.Context, to, displayName, code string) error
}

type ProviderAuthServiceInterface interface {
	LinkOrFindUserFromProvider(ctx context.Context, claims IdentityClaims) (*ProviderLinkResult, error)
	CreateUserFromProviderPending(ctx context.Context, pending PendingProviderUser, params models.CreateUserParams) (*models.User, error)
}
