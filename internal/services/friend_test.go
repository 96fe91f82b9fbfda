package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// friendRequestStore simulates the friend_requests table plus the users
// reachable from it, dispatching on SQL substrings the way the service
// issues them.
type friendRequestStore struct {
	recipientExists bool
	requests        []storedRequest
	userExecs       []string
	following       []uuid.UUID
	friendRows      [][]any
}

type storedRequest struct {
	id     uuid.UUID
	fromID uuid.UUID
	toID   uuid.UUID
}

func (st *friendRequestStore) db() *fakeDB {
	return &fakeDB{
		QueryRowFunc: func(ctx context.Context, sql string, args ...any) Row {
			switch {
			case strings.Contains(sql, "SELECT EXISTS"):
				return rowFromValues(st.recipientExists)
			case strings.Contains(sql, "INSERT INTO friend_requests"):
				req := storedRequest{
					id:     uuid.New(),
					fromID: args[0].(uuid.UUID),
					toID:   args[1].(uuid.UUID),
				}
				st.requests = append(st.requests, req)
				return rowFromValues(req.id, req.fromID, req.toID, "pending", time.Now())
			case strings.Contains(sql, "FROM friend_requests fr"):
				requestID := args[0].(uuid.UUID)
				userID := args[1].(uuid.UUID)
				for _, req := range st.requests {
					if req.id == requestID && req.toID == userID {
						return rowFromValues(req.fromID, "mario", "Mario", "ABCD1234EFGH",
							nil, nil, nil, nil, []string{})
					}
				}
				return fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
			case strings.Contains(sql, "SELECT following"):
				return rowFromValues(append([]uuid.UUID(nil), st.following...))
			}
			return fakeRow{scanFunc: func(dest ...any) error {
				return errors.New("unexpected query: " + sql)
			}}
		},
		ExecFunc: func(ctx context.Context, sql string, args ...any) (CommandTag, error) {
			if strings.Contains(sql, "UPDATE users") || strings.Contains(sql, "INSERT INTO users") {
				st.userExecs = append(st.userExecs, sql)
			}
			if strings.Contains(sql, "DELETE FROM friend_requests") {
				requestID := args[0].(uuid.UUID)
				userID := args[1].(uuid.UUID)
				for i, req := range st.requests {
					if req.id == requestID && req.toID == userID {
						st.requests = append(st.requests[:i], st.requests[i+1:]...)
						return fakeCommandTag{rowsAffected: 1}, nil
					}
				}
				return fakeCommandTag{rowsAffected: 0}, nil
			}
			return fakeCommandTag{}, nil
		},
		QueryFunc: func(ctx context.Context, sql string, args ...any) (Rows, error) {
			switch {
			case strings.Contains(sql, "FROM friend_requests fr"):
				userID := args[0].(uuid.UUID)
				rows := &fakeRows{}
				for _, req := range st.requests {
					if req.toID == userID {
						rows.rows = append(rows.rows, []any{
							req.id, req.fromID, req.toID, "pending", time.Now(),
							req.fromID, "mario", "Mario", "ABCD1234EFGH",
							nil, nil, nil, nil, []string{},
						})
					}
				}
				return rows, nil
			case strings.Contains(sql, "WHERE id = ANY"):
				return &fakeRows{rows: st.friendRows}, nil
			}
			return nil, errors.New("unexpected query: " + sql)
		},
	}
}

func TestSendRequest_ToSelf(t *testing.T) {
	svc := NewFriendService(&fakeDB{})
	id := uuid.New()

	_, err := svc.SendRequest(context.Background(), id, id)
	if !errors.Is(err, ErrCannotFriendSelf) {
		t.Fatalf("expected ErrCannotFriendSelf, got %v", err)
	}
}

func TestSendRequest_RecipientMissing(t *testing.T) {
	store := &friendRequestStore{recipientExists: false}
	svc := NewFriendService(store.db())

	_, err := svc.SendRequest(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if len(store.requests) != 0 {
		t.Fatalf("expected no stored request, got %d", len(store.requests))
	}
}

func TestSendRequest_DuplicateCreatesSecondRow(t *testing.T) {
	store := &friendRequestStore{recipientExists: true}
	svc := NewFriendService(store.db())

	from, to := uuid.New(), uuid.New()
	first, err := svc.SendRequest(context.Background(), from, to)
	if err != nil {
		t.Fatalf("first send failed: %v", err)
	}
	second, err := svc.SendRequest(context.Background(), from, to)
	if err != nil {
		t.Fatalf("second send failed: %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("expected two distinct requests")
	}
	if len(store.requests) != 2 {
		t.Fatalf("expected 2 stored requests, got %d", len(store.requests))
	}
}

func TestListPending_ReturnsRequesterDetails(t *testing.T) {
	store := &friendRequestStore{recipientExists: true}
	svc := NewFriendService(store.db())

	from, to := uuid.New(), uuid.New()
	if _, err := svc.SendRequest(context.Background(), from, to); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	pending, err := svc.ListPending(context.Background(), to)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	if pending[0].FromUserID != from {
		t.Fatalf("expected from %s, got %s", from, pending[0].FromUserID)
	}
	if pending[0].Requester.Username != "mario" {
		t.Fatalf("expected requester details, got %+v", pending[0].Requester)
	}
}

func TestListPending_OnlyAddresseeSees(t *testing.T) {
	store := &friendRequestStore{recipientExists: true}
	svc := NewFriendService(store.db())

	from, to := uuid.New(), uuid.New()
	if _, err := svc.SendRequest(context.Background(), from, to); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	pending, err := svc.ListPending(context.Background(), from)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("sender should not see the request, got %d", len(pending))
	}
}

func TestAccept_RemovesRequest(t *testing.T) {
	store := &friendRequestStore{recipientExists: true}
	svc := NewFriendService(store.db())

	from, to := uuid.New(), uuid.New()
	req, err := svc.SendRequest(context.Background(), from, to)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	requester, err := svc.Accept(context.Background(), to, req.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if requester.ID != from {
		t.Fatalf("expected requester %s, got %s", from, requester.ID)
	}
	if len(store.requests) != 0 {
		t.Fatalf("expected request to be removed, %d remain", len(store.requests))
	}
}

func TestAccept_DoesNotTouchFollowLists(t *testing.T) {
	store := &friendRequestStore{recipientExists: true}
	svc := NewFriendService(store.db())

	from, to := uuid.New(), uuid.New()
	req, err := svc.SendRequest(context.Background(), from, to)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := svc.Accept(context.Background(), to, req.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// Accepting resolves the request only; neither side's followers or
	// following list changes, so the friends view stays as it was.
	if len(store.userExecs) != 0 {
		t.Fatalf("expected no writes to users, got %v", store.userExecs)
	}
}

func TestAccept_WrongRecipient(t *testing.T) {
	store := &friendRequestStore{recipientExists: true}
	svc := NewFriendService(store.db())

	from, to := uuid.New(), uuid.New()
	req, err := svc.SendRequest(context.Background(), from, to)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	_, err = svc.Accept(context.Background(), from, req.ID)
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if len(store.requests) != 1 {
		t.Fatal("request should survive a rejected accept")
	}
}

func TestDecline_RemovesRequestOnly(t *testing.T) {
	store := &friendRequestStore{recipientExists: true}
	svc := NewFriendService(store.db())

	from, to := uuid.New(), uuid.New()
	req, err := svc.SendRequest(context.Background(), from, to)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if err := svc.Decline(context.Background(), to, req.ID); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if len(store.requests) != 0 {
		t.Fatalf("expected request to be removed, %d remain", len(store.requests))
	}
	if len(store.userExecs) != 0 {
		t.Fatalf("expected no writes to users, got %v", store.userExecs)
	}

	if err := svc.Decline(context.Background(), to, req.ID); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound on second decline, got %v", err)
	}
}

func TestFriends_EmptyFollowing(t *testing.T) {
	store := &friendRequestStore{}
	svc := NewFriendService(store.db())

	friends, err := svc.Friends(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("friends failed: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("expected no friends, got %d", len(friends))
	}
}

func TestFriends_PreservesFollowingOrder(t *testing.T) {
	idA, idB := uuid.New(), uuid.New()
	store := &friendRequestStore{
		following: []uuid.UUID{idB, idA},
		// The batched query returns rows in storage order, not list order.
		friendRows: [][]any{
			{idA, "luigi", "Luigi", "AAAA1111BBBB", nil, nil, nil, nil, []string{}},
			{idB, "peach", "Peach", "CCCC2222DDDD", nil, nil, nil, nil, []string{}},
		},
	}
	svc := NewFriendService(store.db())

	friends, err := svc.Friends(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("friends failed: %v", err)
	}
	if len(friends) != 2 {
		t.Fatalf("expected 2 friends, got %d", len(friends))
	}
	if friends[0].ID != idB || friends[1].ID != idA {
		t.Fatalf("expected following order [%s %s], got [%s %s]", idB, idA, friends[0].ID, friends[1].ID)
	}
}

func TestFriends_SkipsUnresolvedIDs(t *testing.T) {
	idA := uuid.New()
	store := &friendRequestStore{
		following: []uuid.UUID{uuid.New(), idA},
		friendRows: [][]any{
			{idA, "luigi", "Luigi", "AAAA1111BBBB", nil, nil, nil, nil, []string{}},
		},
	}
	svc := NewFriendService(store.db())

	friends, err := svc.Friends(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("friends failed: %v", err)
	}
	if len(friends) != 1 || friends[0].ID != idA {
		t.Fatalf("expected only the resolvable friend, got %+v", friends)
	}
}

// TestRequestLifecycle walks the full flow between two users: u2 requests,
// u1 sees exactly the pending requests addressed to them, accepts one, and
// the accepted request disappears while the friends view stays derived from
// the untouched following list.
func TestRequestLifecycle(t *testing.T) {
	store := &friendRequestStore{recipientExists: true}
	svc := NewFriendService(store.db())

	u1, u2 := uuid.New(), uuid.New()

	req, err := svc.SendRequest(context.Background(), u2, u1)
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	pending, err := svc.ListPending(context.Background(), u1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != req.ID {
		t.Fatalf("expected the sent request, got %+v", pending)
	}

	if _, err := svc.Accept(context.Background(), u1, req.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	pending, err = svc.ListPending(context.Background(), u1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending requests after accept, got %d", len(pending))
	}

	friends, err := svc.Friends(context.Background(), u1)
	if err != nil {
		t.Fatalf("friends failed: %v", err)
	}
	if len(friends) != 0 {
		t.Fatalf("friends view must follow the following list, got %d entries", len(friends))
	}
	if len(store.userExecs) != 0 {
		t.Fatalf("expected no user writes across the lifecycle, got %v", store.userExecs)
	}
}
