// internal/game/errors.go
package game

import "errors"

// Protocol errors. Every rejected move returns one of these and leaves the session
// untouched; moves are all-or-nothing.
var (
	ErrNotYourTurn           = errors.New("not your turn")
	ErrIllegalMove           = errors.New("illegal move")
	ErrCardNotHeld           = errors.New("card not in hand")
	ErrGameAlreadyInProgress = errors.New("game already in progress")
	ErrGameNotInProgress     = errors.New("game not in progress")
	ErrSeatNotInGame         = errors.New("seat not in game")
	ErrNotEnoughPlayers      = errors.New("not enough players")
)
