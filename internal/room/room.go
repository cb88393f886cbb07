// internal/room/room.go
package room

import (
	"time"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// Status is the lifecycle state of a room.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Room is an ephemeral grouping of seats around at most one game session. All fields
// are guarded by the owning Registry's lock; the Session carries its own.
type Room struct {
	ID     uuid.UUID `json:"id"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
	HostID uuid.UUID `json:"hostId"`
	Status Status    `json:"status"`

	// Seats in join order. Host migration picks the earliest-joined remaining seat.
	Seats []*models.Player `json:"seats"`

	Rules   models.RoomRules `json:"rules"`
	Private bool             `json:"private"`

	passwordHash string

	Session *game.Session `json:"-"`
	worker  *Worker

	LastActivity time.Time `json:"lastActivity"`
}

// seatIndex returns the index of the seat, or -1.
func (r *Room) seatIndex(seatID uuid.UUID) int {
	for i, p := range r.Seats {
		if p.ID == seatID {
			return i
		}
	}
	return -1
}

// humanCount counts non-bot seats.
func (r *Room) humanCount() int {
	n := 0
	for _, p := range r.Seats {
		if !p.IsBot {
			n++
		}
	}
	return n
}

// allReady reports whether every seat is marked ready. Bots always are.
func (r *Room) allReady() bool {
	for _, p := range r.Seats {
		if !p.Ready {
			return false
		}
	}
	return true
}

// Worker returns the room's move worker while a game is running, or nil.
func (r *Room) Worker() *Worker {
	return r.worker
}

// Summary is the public listing shape for a room.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	SeatCount   int       `json:"seatCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	HasPassword bool      `json:"hasPassword"`
}

func (r *Room) summary() Summary {
	return Summary{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		Status:      r.Status,
		SeatCount:   len(r.Seats),
		MaxPlayers:  r.Rules.MaxPlayers,
		HasPassword: r.passwordHash != "",
	}
}
