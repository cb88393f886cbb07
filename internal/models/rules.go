// internal/models/rules.go
package models

import "fmt"

// DeclarePolicy decides what happens when a seat plays its final card without having
// declared "last card" first.
type DeclarePolicy string

const (
	// DeclareIgnore records the violation in the session counters but changes nothing.
	DeclareIgnore DeclarePolicy = "ignore"
	// DeclarePenaltyDraw makes the violator draw one penalty card (from the deck if any
	// cards remain, otherwise from the discard pile).
	DeclarePenaltyDraw DeclarePolicy = "penalty_draw"
)

// RoomRules captures the game-time configuration a host can set before starting.
type RoomRules struct {
	// MaxPlayers is the seat capacity of the room. Minimum 4, practical cap 9.
	MaxPlayers int `json:"maxPlayers"`

	// CardsPerSeat is how many cards each seat is dealt, the last one face-up.
	CardsPerSeat int `json:"cardsPerSeat"`

	// EndgameSeats is the active-seat count at which combat switches to the
	// accelerated endgame cadence. Valid values are 2 or 3.
	EndgameSeats int `json:"endgameSeats"`

	// DeclarePolicy handles undeclared last cards. See DeclarePolicy.
	DeclarePolicy DeclarePolicy `json:"declarePolicy"`
}

const (
	MinPlayers     = 4
	MaxPlayersCap  = 9
	defaultDealt   = 3
	defaultEndgame = 3
)

// DefaultRules returns the standard rule set.
func DefaultRules() RoomRules {
	return RoomRules{
		MaxPlayers:    MinPlayers,
		CardsPerSeat:  defaultDealt,
		EndgameSeats:  defaultEndgame,
		DeclarePolicy: DeclareIgnore,
	}
}

// Validate checks the rule set for out-of-range values.
func (r RoomRules) Validate() error {
	if r.MaxPlayers < MinPlayers || r.MaxPlayers > MaxPlayersCap {
		return fmt.Errorf("maxPlayers must be between %d and %d, got %d", MinPlayers, MaxPlayersCap, r.MaxPlayers)
	}
	if r.CardsPerSeat < 2 || r.CardsPerSeat*r.MaxPlayers > DeckSize {
		return fmt.Errorf("cardsPerSeat %d does not fit a %d-card deck with %d seats", r.CardsPerSeat, DeckSize, r.MaxPlayers)
	}
	if r.EndgameSeats != 2 && r.EndgameSeats != 3 {
		return fmt.Errorf("endgameSeats must be 2 or 3, got %d", r.EndgameSeats)
	}
	switch r.DeclarePolicy {
	case DeclareIgnore, DeclarePenaltyDraw:
	default:
		return fmt.Errorf("unknown declare policy %q", r.DeclarePolicy)
	}
	return nil
}
