// internal/handlers/seat.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/auth"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// EnsureSeatIdentity resolves the caller's seat identity from the auth_token cookie,
// minting a fresh guest identity (and setting the cookie) when none is present or the
// token fails verification. The core never stores credentials; the token is the whole
// identity.
func EnsureSeatIdentity(w http.ResponseWriter, r *http.Request) (models.SeatIdentity, error) {
	cookieHeader := r.Header.Get("Cookie")
	if strings.Contains(cookieHeader, "auth_token=") {
		token := extractCookieToken(cookieHeader, "auth_token")
		seat, err := auth.AuthenticateSeatToken(token)
		if err == nil {
			return seat, nil
		}
		// fall through and mint a replacement
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Guest"
	}
	seat := models.SeatIdentity{ID: uuid.New(), Name: name}
	token, err := auth.CreateSeatToken(seat)
	if err != nil {
		return models.SeatIdentity{}, fmt.Errorf("failed to create seat token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return seat, nil
}
