package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/switch2connect/switch2connect/internal/friendcode"
	"github.com/switch2connect/switch2connect/internal/services"
)

// ShareCardHandler renders a friend code as a shareable PNG so players can
// post their code on social media or link previews.
type ShareCardHandler struct{}

func NewShareCardHandler() *ShareCardHandler {
	return &ShareCardHandler{}
}

func (h *ShareCardHandler) FriendCode(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(r.PathValue("code"), ".png")
	code := friendcode.Normalize(raw)
	if err := friendcode.Validate(code); err != nil {
		http.NotFound(w, r)
		return
	}

	pngBytes, err := services.RenderFriendCodePNG(code)
	if err != nil {
		log.Printf("Error rendering friend code image: %v", err)
		http.Error(w, "Failed to render image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pngBytes)
}
