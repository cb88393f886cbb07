// internal/room/lifecycle.go
package room

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// SetReady marks a seat's ready flag.
func (reg *Registry) SetReady(roomID, seatID uuid.UUID, ready bool) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if rm.Status != StatusWaiting {
		return ErrRoomNotJoinable
	}
	idx := rm.seatIndex(seatID)
	if idx < 0 {
		return ErrSeatNotInRoom
	}
	rm.Seats[idx].Ready = ready
	rm.LastActivity = reg.clock()
	return nil
}

// AddBot seats a bot at the given difficulty. Host only, waiting rooms only.
func (reg *Registry) AddBot(roomID, requester uuid.UUID, name string, tier models.Difficulty) (*models.Player, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("invalid bot difficulty %q", tier)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if rm.HostID != requester {
		return nil, ErrNotHost
	}
	if rm.Status != StatusWaiting {
		return nil, ErrRoomNotJoinable
	}
	if len(rm.Seats) >= rm.Rules.MaxPlayers {
		return nil, ErrRoomFull
	}
	if name == "" {
		name = fmt.Sprintf("Bot %d", len(rm.Seats)+1)
	}
	b := models.NewBot(name, tier)
	rm.Seats = append(rm.Seats, b)
	rm.LastActivity = reg.clock()
	return b, nil
}

// RemoveBot unseats a bot. Host only, waiting rooms only.
func (reg *Registry) RemoveBot(roomID, requester, botID uuid.UUID) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if rm.HostID != requester {
		return ErrNotHost
	}
	if rm.Status != StatusWaiting {
		return ErrRoomNotJoinable
	}
	idx := rm.seatIndex(botID)
	if idx < 0 || !rm.Seats[idx].IsBot {
		return ErrSeatNotInRoom
	}
	rm.Seats = append(rm.Seats[:idx], rm.Seats[idx+1:]...)
	rm.LastActivity = reg.clock()
	return nil
}

// StartGame transitions a waiting room to playing: it requires the host, the minimum
// seat count, and every seat ready; then it deals the session and starts the room's
// move worker. The returned worker is the serialized entry point for every move.
func (reg *Registry) StartGame(roomID, requester uuid.UUID) (*Worker, error) {
	reg.mu.Lock()

	rm, ok := reg.rooms[roomID]
	if !ok {
		reg.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	if rm.HostID != requester {
		reg.mu.Unlock()
		return nil, ErrNotHost
	}
	if rm.Status != StatusWaiting {
		reg.mu.Unlock()
		return nil, game.ErrGameAlreadyInProgress
	}
	if len(rm.Seats) < models.MinPlayers {
		reg.mu.Unlock()
		return nil, ErrNotEnoughPlayers
	}
	if !rm.allReady() {
		reg.mu.Unlock()
		return nil, ErrNotAllReady
	}

	// Each session gets a private random source so concurrent rooms never share one.
	sessionRng := rand.New(rand.NewSource(reg.rng.Int63()))
	session := game.NewSession(rm.ID, rm.Seats, rm.Rules, sessionRng)
	session.OnFinish = func(res game.Result) { reg.handleFinish(roomID, res) }

	w := NewWorker(session, rand.New(rand.NewSource(reg.rng.Int63())))
	w.OnMove = func() { reg.touch(roomID) }
	rm.Session = session
	rm.worker = w
	rm.Status = StatusPlaying
	rm.LastActivity = reg.clock()
	reg.mu.Unlock()

	if err := session.Begin(); err != nil {
		reg.mu.Lock()
		rm.Session = nil
		rm.worker = nil
		rm.Status = StatusWaiting
		reg.mu.Unlock()
		return nil, err
	}
	w.Start()
	log.Printf("registry: room %s started game %s", roomID, session.ID)
	return w, nil
}

// WorkerFor returns the room's running move worker, or nil when no game is on.
func (reg *Registry) WorkerFor(roomID uuid.UUID) *Worker {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if rm, ok := reg.rooms[roomID]; ok {
		return rm.worker
	}
	return nil
}

// handleFinish runs once per session, when it reaches Finished: the room flips to
// finished, a cancellable removal is scheduled, and the result record is handed to the
// consumer.
func (reg *Registry) handleFinish(roomID uuid.UUID, res game.Result) {
	reg.mu.Lock()
	rm, ok := reg.rooms[roomID]
	if ok {
		rm.Status = StatusFinished
		rm.LastActivity = reg.clock()
		if rm.worker != nil {
			rm.worker.Stop()
			rm.worker = nil
		}
		reg.scheduleRemovalLocked(roomID, reg.finishedTTL)
	}
	reg.mu.Unlock()

	if reg.OnResult != nil {
		reg.OnResult(res)
	}
}
