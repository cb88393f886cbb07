// internal/game/apply.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// Move is the uniform intent shape the transport layer and the bot engine both submit.
// Card codes are parsed into typed cards before any rule logic runs.
type Move struct {
	Seat   uuid.UUID `json:"seat"`
	Kind   MoveKind  `json:"kind"`
	Target uuid.UUID `json:"target,omitempty"` // place
	Card   string    `json:"card,omitempty"`   // attack, defend, pile_on
}

// Apply routes a move to the matching session operation. Rejections carry a Protocol
// error and leave the state untouched.
func (s *Session) Apply(m Move) error {
	switch m.Kind {
	case MovePlace:
		return s.PlaceOnSeat(m.Seat, m.Target)
	case MovePlaceSelf:
		return s.PlaceOnSelf(m.Seat)
	case MoveDiscard:
		return s.DiscardRevealed(m.Seat)
	case MoveAttack, MoveDefend, MovePileOn:
		card, err := models.ParseCard(m.Card)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIllegalMove, err)
		}
		switch m.Kind {
		case MoveAttack:
			return s.Attack(m.Seat, card)
		case MoveDefend:
			return s.Defend(m.Seat, card)
		default:
			return s.PileOn(m.Seat, card)
		}
	case MoveTake:
		return s.TakeTable(m.Seat)
	case MoveEndAttack:
		return s.EndAttack(m.Seat)
	case MoveDeclare:
		return s.DeclareLastCard(m.Seat)
	case MoveForfeit:
		return s.Forfeit(m.Seat)
	default:
		return fmt.Errorf("%w: unknown move kind %q", ErrIllegalMove, m.Kind)
	}
}

// NextActor returns the seat expected to act, and false outside of play. The room
// worker uses this to schedule bot turns.
func (s *Session) NextActor() (*models.Player, bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.stage.InPlay() {
		return nil, false
	}
	return s.seats[s.currentIdx], true
}

// Seats returns the seats in join order. The slice is a copy; the players are shared.
func (s *Session) Seats() []*models.Player {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	out := make([]*models.Player, len(s.seats))
	copy(out, s.seats)
	return out
}
