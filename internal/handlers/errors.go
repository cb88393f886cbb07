// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/room"
)

// errCode maps the typed registry and session errors onto stable wire codes. Clients
// branch on the code; the message is for humans.
func errCode(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, room.ErrRoomFull):
		return "room_full"
	case errors.Is(err, room.ErrWrongPassword):
		return "wrong_password"
	case errors.Is(err, room.ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, room.ErrSeatNotInRoom):
		return "seat_not_in_room"
	case errors.Is(err, room.ErrNotHost):
		return "not_host"
	case errors.Is(err, room.ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, room.ErrNotAllReady):
		return "not_all_ready"
	case errors.Is(err, room.ErrRoomNotJoinable):
		return "room_not_joinable"
	case errors.Is(err, room.ErrCodeInUse):
		return "code_in_use"
	case errors.Is(err, room.ErrDuplicateRoomID):
		return "duplicate_room_id"
	case errors.Is(err, room.ErrInvalidRules):
		return "invalid_rules"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrCardNotHeld):
		return "card_not_held"
	case errors.Is(err, game.ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, game.ErrGameAlreadyInProgress):
		return "game_already_in_progress"
	case errors.Is(err, game.ErrGameNotInProgress):
		return "game_not_in_progress"
	case errors.Is(err, game.ErrSeatNotInGame):
		return "seat_not_in_game"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "not_enough_players"
	default:
		return "internal"
	}
}

// httpStatus maps the same errors onto HTTP statuses for the REST surface.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, room.ErrSeatNotInRoom):
		return http.StatusNotFound
	case errors.Is(err, room.ErrWrongPassword), errors.Is(err, room.ErrNotHost):
		return http.StatusForbidden
	case errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrAlreadyMember),
		errors.Is(err, room.ErrRoomNotJoinable),
		errors.Is(err, room.ErrCodeInUse),
		errors.Is(err, room.ErrDuplicateRoomID),
		errors.Is(err, room.ErrNotAllReady),
		errors.Is(err, game.ErrGameAlreadyInProgress):
		return http.StatusConflict
	case errors.Is(err, room.ErrNotEnoughPlayers),
		errors.Is(err, room.ErrInvalidRules),
		errors.Is(err, game.ErrNotEnoughPlayers):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError emits a JSON error body with the mapped status and code.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), map[string]string{
		"code":  errCode(err),
		"error": err.Error(),
	})
}
