// internal/bot/brain.go
package bot

import (
	"errors"

	"github.com/kozyri-game/kozyri-server/internal/game"
)

// ErrNoLegalAction is returned when the engine finds nothing legal to propose. Callers
// treat it as fatal for the hand and fall back to the safe default themselves; the
// engine never guesses.
var ErrNoLegalAction = errors.New("no legal action for seat")

// Action is one proposed move plus the engine's confidence in it.
type Action struct {
	Move       game.Move
	Confidence float64
}

// Brain is the decision engine for one bot seat. Decide reads a seat view and proposes
// exactly one action out of the view's legal move set; it never mutates game state.
type Brain interface {
	Decide(view game.View) (Action, error)
}

// moveOfKind finds a legal move entry by kind.
func moveOfKind(view game.View, kind game.MoveKind) (game.LegalMove, bool) {
	for _, m := range view.YourMoves {
		if m.Kind == kind {
			return m, true
		}
	}
	return game.LegalMove{}, false
}
