// internal/models/player.go
package models

import (
	"github.com/google/uuid"
)

// Difficulty selects a bot tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d names a known bot tier.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Player is one seat in a room, human or bot. Connections are not stored here;
// the transport layer tracks them per room.
type Player struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	IsBot      bool       `json:"isBot"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	IsHost     bool       `json:"isHost"`
	Ready      bool       `json:"ready"`
	Connected  bool       `json:"connected"`

	Hand []Card `json:"-"`
}

// NewPlayer creates a human seat with a fresh id.
func NewPlayer(name string) *Player {
	return &Player{
		ID:        uuid.New(),
		Name:      name,
		Connected: true,
		Hand:      []Card{},
	}
}

// NewBot creates a bot seat at the given difficulty. Bots are always ready.
func NewBot(name string, tier Difficulty) *Player {
	return &Player{
		ID:         uuid.New(),
		Name:       name,
		IsBot:      true,
		Difficulty: tier,
		Ready:      true,
		Connected:  true,
		Hand:       []Card{},
	}
}

// TopCard returns the player's top (last) card, if any.
func (p *Player) TopCard() (Card, bool) {
	if len(p.Hand) == 0 {
		return Card{}, false
	}
	return p.Hand[len(p.Hand)-1], true
}

// RemoveCard removes the first card matching rank+suit from the hand.
// It returns false if the card is not held.
func (p *Player) RemoveCard(c Card) bool {
	for i, h := range p.Hand {
		if h.Same(c) {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// HoldsCard reports whether the hand contains the given rank+suit.
func (p *Player) HoldsCard(c Card) bool {
	for _, h := range p.Hand {
		if h.Same(c) {
			return true
		}
	}
	return false
}
