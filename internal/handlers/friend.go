package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/switch2connect/switch2connect/internal/friendcode"
	"github.com/switch2connect/switch2connect/internal/models"
	"github.com/switch2connect/switch2connect/internal/services"
)

type FriendHandler struct {
	friendService services.FriendServiceInterface
	userService   services.UserServiceInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface, userService services.UserServiceInterface) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		userService:   userService,
	}
}

type UserSearchResponse struct {
	Users []models.UserSummary `json:"users"`
}

type SendRequestRequest struct {
	ToUserID string `json:"to_user_id"`
}

type SendRequestResponse struct {
	Request *models.FriendRequest `json:"request"`
	Message string                `json:"message"`
}

type PendingRequestsResponse struct {
	Requests []models.PendingRequest `json:"requests"`
}

type FriendsResponse struct {
	Friends []models.UserSummary `json:"friends"`
}

// Search looks up profiles by friend code. Blank input is a no-op returning
// an empty list; the caller's own profile is never included even when their
// own code matches.
func (h *FriendHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	query := r.URL.Query().Get("code")
	if strings.TrimSpace(query) == "" {
		writeJSON(w, http.StatusOK, UserSearchResponse{Users: []models.UserSummary{}})
		return
	}

	code := friendcode.Normalize(query)
	results, err := h.userService.SearchByFriendCode(r.Context(), code, user.ID)
	if err != nil {
		log.Printf("Error searching by friend code: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, UserSearchResponse{Users: results})
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	toUserID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), user.ID, toUserID)
	if errors.Is(err, services.ErrCannotFriendSelf) {
		writeError(w, http.StatusBadRequest, "Cannot send a friend request to yourself")
		return
	}
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		log.Printf("Error sending friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to send friend request")
		return
	}

	writeJSON(w, http.StatusCreated, SendRequestResponse{
		Request: request,
		Message: "Friend request sent!",
	})
}

func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.friendService.ListPending(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing friend requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, PendingRequestsResponse{Requests: requests})
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	requester, err := h.friendService.Accept(r.Context(), user.ID, requestID)
	if errors.Is(err, services.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}
	if err != nil {
		log.Printf("Error accepting friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to accept friend request")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("You are now friends with %s!", requester.DisplayName),
	})
}

func (h *FriendHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	err = h.friendService.Decline(r.Context(), user.ID, requestID)
	if errors.Is(err, services.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, "Friend request not found")
		return
	}
	if err != nil {
		log.Printf("Error declining friend request: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to decline friend request")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Friend request declined"})
}

func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friends, err := h.friendService.Friends(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error loading friends: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, FriendsResponse{Friends: friends})
}
