// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/models"
	"github.com/kozyri-game/kozyri-server/internal/room"
)

// createRoomRequest is the POST /rooms body. Zero rules fall back to defaults.
type createRoomRequest struct {
	Name     string           `json:"name"`
	Private  bool             `json:"private"`
	Password string           `json:"password"`
	Rules    models.RoomRules `json:"rules"`
}

// CreateRoomHandler creates an in-memory room with the caller as host. No DB writes;
// rooms are ephemeral.
func CreateRoomHandler(cs *CoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seat, err := EnsureSeatIdentity(w, r)
		if err != nil {
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			http.Error(w, "bad room request payload", http.StatusBadRequest)
			return
		}

		rm, err := cs.Registry.CreateRoom(seat, room.CreateConfig{
			Name:     req.Name,
			Rules:    req.Rules,
			Private:  req.Private,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rm)
	}
}

// ListRoomsHandler returns summaries of all public rooms.
func ListRoomsHandler(cs *CoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cs.Registry.ListPublic())
	}
}

// GetRoomHandler resolves one room by id or code from the path suffix.
func GetRoomHandler(cs *CoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimPrefix(r.URL.Path, "/rooms/")
		if ref == "" {
			http.Error(w, "missing room reference", http.StatusBadRequest)
			return
		}

		var rm *room.Room
		var ok bool
		if id, err := uuid.Parse(ref); err == nil {
			rm, ok = cs.Registry.GetRoom(id)
		}
		if !ok {
			rm, ok = cs.Registry.GetRoomByCode(ref)
		}
		if !ok {
			writeError(w, room.ErrRoomNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rm)
	}
}

// StatsHandler returns aggregate registry counts.
func StatsHandler(cs *CoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, cs.Registry.StatsSnapshot())
	}
}
