// internal/room/registry.go
package room

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/auth"
	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// Registry is the single source of truth for which rooms exist, who sits in them, and
// who hosts them. One coarse lock protects the membership maps; contention is
// human-scale, correctness wins over throughput. The clock and the random source are
// injected so lifecycle tests are deterministic.
type Registry struct {
	mu       sync.Mutex
	rooms    map[uuid.UUID]*Room
	byCode   map[string]uuid.UUID
	removals map[uuid.UUID]*time.Timer

	clock func() time.Time
	rng   *rand.Rand

	// finishedTTL is how long a finished room lingers before its scheduled removal.
	finishedTTL time.Duration

	// OnResult receives each session's finish record. Delivery is fire-and-forget;
	// at-least-once is the consumer's concern.
	OnResult func(res game.Result)
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock injects the time source used for activity stamps and cleanup.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithRand injects the random source used for codes, shuffles and trump draws.
func WithRand(rng *rand.Rand) Option {
	return func(r *Registry) { r.rng = rng }
}

// WithFinishedTTL overrides how long finished rooms linger before removal.
func WithFinishedTTL(d time.Duration) Option {
	return func(r *Registry) { r.finishedTTL = d }
}

// NewRegistry builds an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:       make(map[uuid.UUID]*Room),
		byCode:      make(map[string]uuid.UUID),
		removals:    make(map[uuid.UUID]*time.Timer),
		clock:       time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		finishedTTL: time.Minute,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// CreateConfig carries the host's room settings.
type CreateConfig struct {
	// ID lets a caller pin the room id; zero means generate one.
	ID       uuid.UUID
	Name     string
	Rules    models.RoomRules
	Private  bool
	Password string
}

// CreateRoom builds a new waiting room with the host as sole member and a unique code.
// A caller-supplied id that already exists fails with ErrDuplicateRoomID.
func (reg *Registry) CreateRoom(host models.SeatIdentity, cfg CreateConfig) (*Room, error) {
	if cfg.Rules == (models.RoomRules{}) {
		cfg.Rules = models.DefaultRules()
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	var passwordHash string
	if cfg.Password != "" {
		h, err := auth.HashRoomPassword(cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		passwordHash = h
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	id := cfg.ID
	if id == uuid.Nil {
		id = uuid.New()
	} else if _, exists := reg.rooms[id]; exists {
		return nil, ErrDuplicateRoomID
	}

	code := newCode(reg.rng)
	for _, taken := reg.byCode[code]; taken; _, taken = reg.byCode[code] {
		code = newCode(reg.rng)
	}

	seat := &models.Player{
		ID:        host.ID,
		Name:      host.Name,
		IsHost:    true,
		Connected: true,
		Hand:      []models.Card{},
	}
	rm := &Room{
		ID:           id,
		Code:         code,
		Name:         cfg.Name,
		HostID:       host.ID,
		Status:       StatusWaiting,
		Seats:        []*models.Player{seat},
		Rules:        cfg.Rules,
		Private:      cfg.Private,
		passwordHash: passwordHash,
		LastActivity: reg.clock(),
	}
	reg.rooms[id] = rm
	reg.byCode[code] = id
	log.Printf("registry: room %s created, code %s, host %s", id, code, host.ID)
	return rm, nil
}

// resolve finds a room by id string or code. Caller holds the lock.
func (reg *Registry) resolve(ref string) (*Room, bool) {
	if id, err := uuid.Parse(ref); err == nil {
		if rm, ok := reg.rooms[id]; ok {
			return rm, true
		}
	}
	if id, ok := reg.byCode[normalizeCode(ref)]; ok {
		return reg.rooms[id], true
	}
	return nil, false
}

// JoinRoom seats the identity in the room addressed by id or code, appending at the
// first free position and refreshing the activity stamp.
func (reg *Registry) JoinRoom(ref string, who models.SeatIdentity, password string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.resolve(ref)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if rm.Status != StatusWaiting {
		return nil, ErrRoomNotJoinable
	}
	if rm.seatIndex(who.ID) >= 0 {
		return nil, ErrAlreadyMember
	}
	if len(rm.Seats) >= rm.Rules.MaxPlayers {
		return nil, ErrRoomFull
	}
	if rm.passwordHash != "" {
		match, err := auth.CompareRoomPassword(password, rm.passwordHash)
		if err != nil || !match {
			return nil, ErrWrongPassword
		}
	}

	rm.Seats = append(rm.Seats, &models.Player{
		ID:        who.ID,
		Name:      who.Name,
		Connected: true,
		Hand:      []models.Card{},
	})
	rm.LastActivity = reg.clock()
	reg.cancelRemovalLocked(rm.ID)
	return rm, nil
}

// LeaveRoom removes a seat. The host role migrates to the earliest-joined remaining
// seat; an emptied room is deleted. Returns whether the room was deleted. Removing a
// seat that is not a member returns ErrSeatNotInRoom and changes nothing.
func (reg *Registry) LeaveRoom(roomID, seatID uuid.UUID) (bool, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[roomID]
	if !ok {
		return false, ErrRoomNotFound
	}
	idx := rm.seatIndex(seatID)
	if idx < 0 {
		return false, ErrSeatNotInRoom
	}

	wasHost := rm.Seats[idx].IsHost

	// A mid-game departure plays out as a forfeit before the seat drops off the
	// roster; the session survives. The worker gets nudged because the forfeit
	// bypasses its move queue and the turn may now sit with a bot.
	if rm.Session != nil && rm.Status == StatusPlaying {
		if err := rm.Session.Forfeit(seatID); err != nil {
			log.Printf("registry: forfeit on leave for seat %s in room %s: %v", seatID, roomID, err)
		}
		if rm.worker != nil {
			rm.worker.Nudge()
		}
	}

	rm.Seats = append(rm.Seats[:idx], rm.Seats[idx+1:]...)
	rm.LastActivity = reg.clock()

	if rm.humanCount() == 0 {
		reg.deleteRoomLocked(rm)
		return true, nil
	}
	// Host migration stays inside this critical section so no observer ever sees a
	// hostless room.
	if wasHost {
		for _, p := range rm.Seats {
			if !p.IsBot {
				p.IsHost = true
				rm.HostID = p.ID
				break
			}
		}
	}
	return false, nil
}

// deleteRoomLocked drops the room and all its indexes. Caller holds the lock.
func (reg *Registry) deleteRoomLocked(rm *Room) {
	if rm.worker != nil {
		rm.worker.Stop()
		rm.worker = nil
	}
	reg.cancelRemovalLocked(rm.ID)
	delete(reg.byCode, rm.Code)
	delete(reg.rooms, rm.ID)
	log.Printf("registry: room %s deleted", rm.ID)
}

// SetRoomCode replaces a room's code. Codes are upper-cased and must be unique among
// live rooms; a taken code fails with ErrCodeInUse.
func (reg *Registry) SetRoomCode(roomID uuid.UUID, code string) error {
	code = normalizeCode(code)
	if code == "" {
		return ErrCodeInUse
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	rm, ok := reg.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if holder, taken := reg.byCode[code]; taken && holder != roomID {
		return ErrCodeInUse
	}
	delete(reg.byCode, rm.Code)
	rm.Code = code
	reg.byCode[code] = roomID
	rm.LastActivity = reg.clock()
	return nil
}

// GetRoom looks a room up by id.
func (reg *Registry) GetRoom(id uuid.UUID) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rm, ok := reg.rooms[id]
	return rm, ok
}

// GetRoomByCode looks a room up by its case-insensitive code.
func (reg *Registry) GetRoomByCode(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	id, ok := reg.byCode[normalizeCode(code)]
	if !ok {
		return nil, false
	}
	return reg.rooms[id], true
}

// ListPublic returns summaries of every non-private room.
func (reg *Registry) ListPublic() []Summary {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]Summary, 0, len(reg.rooms))
	for _, rm := range reg.rooms {
		if rm.Private {
			continue
		}
		out = append(out, rm.summary())
	}
	return out
}

// Stats are the side-effect-free aggregate counts for observability.
type Stats struct {
	Rooms       int `json:"rooms"`
	Members     int `json:"members"`
	ActiveGames int `json:"activeGames"`
}

// StatsSnapshot returns current aggregate counts.
func (reg *Registry) StatsSnapshot() Stats {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	st := Stats{Rooms: len(reg.rooms)}
	for _, rm := range reg.rooms {
		st.Members += len(rm.Seats)
		if rm.Status == StatusPlaying {
			st.ActiveGames++
		}
	}
	return st
}

// Cleanup sweeps rooms with zero members or waiting rooms idle past the threshold.
// Rooms in playing state are never removed on idle time alone. Returns how many rooms
// were removed. Run this off a periodic scheduler owned by the caller.
func (reg *Registry) Cleanup(idleThreshold time.Duration) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	now := reg.clock()
	removed := 0
	for _, rm := range reg.rooms {
		idle := now.Sub(rm.LastActivity) > idleThreshold
		switch {
		case len(rm.Seats) == 0 || rm.humanCount() == 0:
			reg.deleteRoomLocked(rm)
			removed++
		case rm.Status == StatusWaiting && idle:
			reg.deleteRoomLocked(rm)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("registry: cleanup removed %d idle room(s)", removed)
	}
	return removed
}

// scheduleRemovalLocked arms a cancellable removal timer keyed by room id, replacing
// any previous one. Caller holds the lock.
func (reg *Registry) scheduleRemovalLocked(roomID uuid.UUID, after time.Duration) {
	if t, ok := reg.removals[roomID]; ok {
		t.Stop()
	}
	reg.removals[roomID] = time.AfterFunc(after, func() {
		reg.mu.Lock()
		defer reg.mu.Unlock()
		delete(reg.removals, roomID)
		if rm, ok := reg.rooms[roomID]; ok && rm.Status == StatusFinished {
			reg.deleteRoomLocked(rm)
		}
	})
}

// cancelRemovalLocked disarms a pending removal, used when a room is reused.
func (reg *Registry) cancelRemovalLocked(roomID uuid.UUID) {
	if t, ok := reg.removals[roomID]; ok {
		t.Stop()
		delete(reg.removals, roomID)
	}
}

// touch refreshes a room's activity stamp.
func (reg *Registry) touch(roomID uuid.UUID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if rm, ok := reg.rooms[roomID]; ok {
		rm.LastActivity = reg.clock()
	}
}
