package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/switch2connect/switch2connect/internal/models"
	"github.com/switch2connect/switch2connect/internal/services"
)

type stubFriendService struct {
	SendRequestFunc func(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error)
	ListPendingFunc func(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error)
	AcceptFunc      func(ctx context.Context, userID, requestID uuid.UUID) (*models.UserSummary, error)
	DeclineFunc     func(ctx context.Context, userID, requestID uuid.UUID) error
	FriendsFunc     func(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error)
}

func (s *stubFriendService) SendRequest(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error) {
	return s.SendRequestFunc(ctx, fromID, toID)
}

func (s *stubFriendService) ListPending(ctx context.Context, userID uuid.UUID) ([]models.PendingRequest, error) {
	return s.ListPendingFunc(ctx, userID)
}

func (s *stubFriendService) Accept(ctx context.Context, userID, requestID uuid.UUID) (*models.UserSummary, error) {
	return s.AcceptFunc(ctx, userID, requestID)
}

func (s *stubFriendService) Decline(ctx context.Context, userID, requestID uuid.UUID) error {
	return s.DeclineFunc(ctx, userID, requestID)
}

func (s *stubFriendService) Friends(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	return s.FriendsFunc(ctx, userID)
}

func withUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(SetUserInContext(req.Context(), user))
}

func TestFriendHandler_Search_Unauthenticated(t *testing.T) {
	handler := NewFriendHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/friends/search?code=ABCD1234EFGH", nil)
	rr := httptest.NewRecorder()

	handler.Search(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestFriendHandler_Search_EmptyQuery(t *testing.T) {
	handler := NewFriendHandler(nil, nil)

	user := &models.User{ID: uuid.New()}
	req := withUser(httptest.NewRequest(http.MethodGet, "/api/friends/search?code=", nil), user)
	rr := httptest.NewRecorder()

	handler.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}

	var response UserSearchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(response.Users) != 0 {
		t.Errorf("expected empty users list, got %d users", len(response.Users))
	}
}

func TestFriendHandler_Search_NormalizesAndExcludesSelf(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	var gotCode string
	var gotExclude uuid.UUID

	userService := &stubUserService{
		SearchByFriendCodeFunc: func(ctx context.Context, code string, excludeID uuid.UUID) ([]models.UserSummary, error) {
			gotCode = code
			gotExclude = excludeID
			return []models.UserSummary{{ID: uuid.New(), Username: "yoshi"}}, nil
		},
	}
	handler := NewFriendHandler(nil, userService)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/friends/search?code=SW-ABCD-1234-EFGH", nil), user)
	rr := httptest.NewRecorder()

	handler.Search(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if gotCode != "ABCD1234EFGH" {
		t.Errorf("expected normalized code, got %q", gotCode)
	}
	if gotExclude != user.ID {
		t.Errorf("expected searcher id passed for exclusion, got %s", gotExclude)
	}
}

func TestFriendHandler_SendRequest_Unauthenticated(t *testing.T) {
	handler := NewFriendHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/friends/requests", nil)
	rr := httptest.NewRecorder()

	handler.SendRequest(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestFriendHandler_SendRequest_InvalidBody(t *testing.T) {
	handler := NewFriendHandler(nil, nil)

	user := &models.User{ID: uuid.New()}
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/friends/requests", bytes.NewBufferString("invalid")), user)
	rr := httptest.NewRecorder()

	handler.SendRequest(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestFriendHandler_SendRequest_InvalidUserID(t *testing.T) {
	handler := NewFriendHandler(nil, nil)

	user := &models.User{ID: uuid.New()}
	body, _ := json.Marshal(SendRequestRequest{ToUserID: "invalid-uuid"})
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/friends/requests", bytes.NewBuffer(body)), user)
	rr := httptest.NewRecorder()

	handler.SendRequest(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}

	var response ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Error != "Invalid user ID" {
		t.Errorf("expected 'Invalid user ID', got %q", response.Error)
	}
}

func TestFriendHandler_SendRequest_Self(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friendService := &stubFriendService{
		SendRequestFunc: func(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error) {
			return nil, services.ErrCannotFriendSelf
		},
	}
	handler := NewFriendHandler(friendService, nil)

	body, _ := json.Marshal(SendRequestRequest{ToUserID: user.ID.String()})
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/friends/requests", bytes.NewBuffer(body)), user)
	rr := httptest.NewRecorder()

	handler.SendRequest(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestFriendHandler_SendRequest_RecipientMissing(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friendService := &stubFriendService{
		SendRequestFunc: func(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error) {
			return nil, services.ErrUserNotFound
		},
	}
	handler := NewFriendHandler(friendService, nil)

	body, _ := json.Marshal(SendRequestRequest{ToUserID: uuid.New().String()})
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/friends/requests", bytes.NewBuffer(body)), user)
	rr := httptest.NewRecorder()

	handler.SendRequest(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestFriendHandler_SendRequest_Success(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	target := uuid.New()
	friendService := &stubFriendService{
		SendRequestFunc: func(ctx context.Context, fromID, toID uuid.UUID) (*models.FriendRequest, error) {
			if fromID != user.ID || toID != target {
				t.Fatalf("unexpected ids: from=%s to=%s", fromID, toID)
			}
			return &models.FriendRequest{ID: uuid.New(), FromUserID: fromID, ToUserID: toID, Status: models.FriendRequestStatusPending}, nil
		},
	}
	handler := NewFriendHandler(friendService, nil)

	body, _ := json.Marshal(SendRequestRequest{ToUserID: target.String()})
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/friends/requests", bytes.NewBuffer(body)), user)
	rr := httptest.NewRecorder()

	handler.SendRequest(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	var response SendRequestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Message != "Friend request sent!" {
		t.Errorf("unexpected message %q", response.Message)
	}
}

func TestFriendHandler_AcceptRequest_InvalidID(t *testing.T) {
	handler := NewFriendHandler(nil, nil)

	user := &models.User{ID: uuid.New()}
	req := withUser(httptest.NewRequest(http.MethodPut, "/api/friends/requests/invalid-uuid/accept", nil), user)
	req.SetPathValue("id", "invalid-uuid")
	rr := httptest.NewRecorder()

	handler.AcceptRequest(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestFriendHandler_AcceptRequest_NotFound(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friendService := &stubFriendService{
		AcceptFunc: func(ctx context.Context, userID, requestID uuid.UUID) (*models.UserSummary, error) {
			return nil, services.ErrRequestNotFound
		},
	}
	handler := NewFriendHandler(friendService, nil)

	requestID := uuid.New()
	req := withUser(httptest.NewRequest(http.MethodPut, "/api/friends/requests/"+requestID.String()+"/accept", nil), user)
	req.SetPathValue("id", requestID.String())
	rr := httptest.NewRecorder()

	handler.AcceptRequest(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestFriendHandler_AcceptRequest_Success(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friendService := &stubFriendService{
		AcceptFunc: func(ctx context.Context, userID, requestID uuid.UUID) (*models.UserSummary, error) {
			return &models.UserSummary{ID: uuid.New(), DisplayName: "Mario"}, nil
		},
	}
	handler := NewFriendHandler(friendService, nil)

	requestID := uuid.New()
	req := withUser(httptest.NewRequest(http.MethodPut, "/api/friends/requests/"+requestID.String()+"/accept", nil), user)
	req.SetPathValue("id", requestID.String())
	rr := httptest.NewRecorder()

	handler.AcceptRequest(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var response MessageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if response.Message != "You are now friends with Mario!" {
		t.Errorf("unexpected message %q", response.Message)
	}
}

func TestFriendHandler_DeclineRequest_Success(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	var declined uuid.UUID
	friendService := &stubFriendService{
		DeclineFunc: func(ctx context.Context, userID, requestID uuid.UUID) error {
			declined = requestID
			return nil
		},
	}
	handler := NewFriendHandler(friendService, nil)

	requestID := uuid.New()
	req := withUser(httptest.NewRequest(http.MethodPut, "/api/friends/requests/"+requestID.String()+"/decline", nil), user)
	req.SetPathValue("id", requestID.String())
	rr := httptest.NewRecorder()

	handler.DeclineRequest(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if declined != requestID {
		t.Errorf("expected decline of %s, got %s", requestID, declined)
	}
}

func TestFriendHandler_List_Unauthenticated(t *testing.T) {
	handler := NewFriendHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/friends", nil)
	rr := httptest.NewRecorder()

	handler.List(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestFriendHandler_List_Success(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	friendService := &stubFriendService{
		FriendsFunc: func(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
			return []models.UserSummary{{ID: uuid.New(), Username: "luigi"}}, nil
		},
	}
	handler := NewFriendHandler(friendService, nil)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/friends", nil), user)
	rr := httptest.NewRecorder()

	handler.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var response FriendsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(response.Friends) != 1 || response.Friends[0].Username != "luigi" {
		t.Errorf("unexpected friends list: %+v", response.Friends)
	}
}
