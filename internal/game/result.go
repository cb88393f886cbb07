// internal/game/result.go
package game

import (
	"time"

	"github.com/google/uuid"
)

// Result is the finalized record emitted once when a session reaches Finished.
// Position 1 is the first seat to empty its hand. The core emits this exactly once and
// does not retry delivery; at-least-once is the consumer's concern.
type Result struct {
	SessionID   uuid.UUID             `json:"sessionId"`
	RoomID      uuid.UUID             `json:"roomId"`
	FinishOrder []uuid.UUID           `json:"finishOrder"`
	Stats       map[string]*SeatStats `json:"stats"` // keyed by seat id string
	Trump       string                `json:"trump"`
	StartedAt   time.Time             `json:"startedAt"`
	FinishedAt  time.Time             `json:"finishedAt"`
}

// buildResult assembles the record. The caller holds the mutex and has already
// appended the final seat to the finish order.
func (s *Session) buildResult() Result {
	res := Result{
		SessionID:   s.ID,
		RoomID:      s.RoomID,
		FinishOrder: append([]uuid.UUID(nil), s.finishOrder...),
		Stats:       make(map[string]*SeatStats, len(s.seats)),
		Trump:       string(s.trump),
		StartedAt:   s.startedAt,
		FinishedAt:  time.Now(),
	}
	for _, p := range s.seats {
		st := *s.stats[p.ID]
		res.Stats[p.ID.String()] = &st
	}
	return res
}

// ResultIfFinished returns the finish record when the session is over.
func (s *Session) ResultIfFinished() (Result, bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.stage != StageFinished {
		return Result{}, false
	}
	return s.buildResult(), true
}
