// internal/game/session.go
package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// OnFinishFunc receives the finalized result exactly once, when the session reaches
// Finished. Durable delivery is the caller's responsibility.
type OnFinishFunc func(res Result)

// Session holds the entire state of one running game. All mutating entry points take
// the mutex, validate, and either apply the move fully or return a Protocol error with
// the state unchanged. A room's worker serializes calls on top of this; the mutex keeps
// direct use (tests, bot snapshots) safe as well.
type Session struct {
	ID     uuid.UUID
	RoomID uuid.UUID

	Rules models.RoomRules

	Mu sync.Mutex

	stage Stage
	seats []*models.Player

	deck     *models.Deck
	pile     []models.Card // dead cards
	revealed *models.Card  // gather: card awaiting placement
	trump    models.Suit   // set entering combat

	currentIdx  int
	attackerIdx int
	defenderIdx int
	attacks     []models.Card
	defenses    []models.Card

	declared  map[uuid.UUID]bool
	finished  map[uuid.UUID]bool
	forfeited map[uuid.UUID]bool

	finishOrder   []uuid.UUID
	stats         map[uuid.UUID]*SeatStats
	lastViolation *Violation

	startedAt time.Time
	rng       *rand.Rand

	// BroadcastFn, if set, is invoked with a fresh snapshot after every applied move.
	BroadcastFn func(snap Snapshot)

	// OnFinish is invoked once when the session reaches Finished.
	OnFinish OnFinishFunc
}

// SeatStats are the per-seat summary counters carried into the finish record.
type SeatStats struct {
	CardsPlayed  int `json:"cardsPlayed"`
	PenaltyTaken int `json:"penaltyTaken"`
	Declarations int `json:"declarations"`
	TurnsTaken   int `json:"turnsTaken"`
	Violations   int `json:"violations"`
}

// Violation records a rule breach that is surfaced to callers but, depending on the
// declare policy, may not change state.
type Violation struct {
	SeatID uuid.UUID `json:"seatId"`
	Kind   string    `json:"kind"`
}

// NewSession builds a session in Init for the given seats, in join order. A nil rng
// gets a time-seeded source; tests inject a fixed one.
func NewSession(roomID uuid.UUID, seats []*models.Player, rules models.RoomRules, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	// Copy the slice: the caller keeps mutating its own roster (seats leaving),
	// and the session's seat order must stay stable for the whole game.
	s := &Session{
		ID:        uuid.New(),
		RoomID:    roomID,
		Rules:     rules,
		stage:     StageInit,
		seats:     append([]*models.Player(nil), seats...),
		declared:  make(map[uuid.UUID]bool),
		finished:  make(map[uuid.UUID]bool),
		forfeited: make(map[uuid.UUID]bool),
		stats:     make(map[uuid.UUID]*SeatStats),
		rng:       rng,
	}
	for _, p := range seats {
		s.stats[p.ID] = &SeatStats{}
	}
	return s
}

// Begin shuffles a fresh deck, deals every seat its cards (last one face-up), picks the
// first mover, and enters the gather stage. It fails if the session already started or
// the table is short of the minimum seat count.
func (s *Session) Begin() error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.stage != StageInit {
		return ErrGameAlreadyInProgress
	}
	if len(s.seats) < models.MinPlayers {
		return ErrNotEnoughPlayers
	}

	s.stage = StageDealing
	s.startedAt = time.Now()

	s.deck = models.NewDeck()
	s.deck.Shuffle(s.rng)

	for _, p := range s.seats {
		p.Hand = make([]models.Card, 0, s.Rules.CardsPerSeat)
		for i := 0; i < s.Rules.CardsPerSeat; i++ {
			c, ok := s.deck.Draw()
			if !ok {
				// Rules.Validate guarantees the deal fits; reaching here is a bug.
				log.Printf("game %s: deck exhausted during deal", s.ID)
				break
			}
			if i == s.Rules.CardsPerSeat-1 {
				c = c.FacedUp()
			}
			p.Hand = append(p.Hand, c)
		}
	}

	// First to move holds the highest face-up card; ties go to the lowest seat index.
	best := -1
	var bestRank models.Rank
	for i, p := range s.seats {
		top, ok := p.TopCard()
		if !ok {
			continue
		}
		if best == -1 || top.Rank > bestRank {
			best = i
			bestRank = top.Rank
		}
	}
	s.currentIdx = best

	s.stage = StageGather
	s.revealNext()
	s.broadcast()
	return nil
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.stage
}

// Trump returns the trump suit, empty until combat begins.
func (s *Session) Trump() models.Suit {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.trump
}

// CurrentSeat returns the id of the seat expected to act, and false outside of play.
func (s *Session) CurrentSeat() (uuid.UUID, bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if !s.stage.InPlay() {
		return uuid.Nil, false
	}
	return s.seats[s.currentIdx].ID, true
}

// seatIndex resolves a seat id to its index, or -1.
func (s *Session) seatIndex(id uuid.UUID) int {
	for i, p := range s.seats {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// active reports whether the seat at index i still holds cards and has not forfeited.
func (s *Session) active(i int) bool {
	p := s.seats[i]
	return !s.finished[p.ID] && !s.forfeited[p.ID]
}

// activeCount counts seats still in the hand.
func (s *Session) activeCount() int {
	n := 0
	for i := range s.seats {
		if s.active(i) {
			n++
		}
	}
	return n
}

// nextActive returns the next active seat index clockwise after i. Returns i itself if
// it is the only active seat left.
func (s *Session) nextActive(i int) int {
	for step := 1; step <= len(s.seats); step++ {
		j := (i + step) % len(s.seats)
		if s.active(j) {
			return j
		}
	}
	return i
}

// markFinished records that a seat emptied its hand, in finishing order.
func (s *Session) markFinished(idx int) {
	p := s.seats[idx]
	if s.finished[p.ID] || s.forfeited[p.ID] {
		return
	}
	s.finished[p.ID] = true
	s.finishOrder = append(s.finishOrder, p.ID)
}

// checkTransitions applies the combat->endgame and ->finished transitions after any
// move that can change the active seat count.
func (s *Session) checkTransitions() {
	if s.activeCount() <= 1 {
		// Last seat holding cards ranks behind every finisher.
		for i := range s.seats {
			if s.active(i) {
				s.finishOrder = append(s.finishOrder, s.seats[i].ID)
			}
		}
		s.finish()
		return
	}
	if s.stage == StageCombat && s.activeCount() <= s.Rules.EndgameSeats {
		s.stage = StageEndgame
	}
}

// finish moves the session to Finished and emits the result record once.
func (s *Session) finish() {
	if s.stage == StageFinished {
		return
	}
	s.stage = StageFinished
	res := s.buildResult()
	if s.OnFinish != nil {
		// Deliver outside the lock; the callback may call back into snapshots.
		go s.OnFinish(res)
	}
}

// checkDeclaration is called after a seat plays a card. Playing the final card without
// a prior "last card" declaration is a violation; what it costs depends on the policy.
func (s *Session) checkDeclaration(idx int) {
	p := s.seats[idx]
	if len(p.Hand) != 0 || s.declared[p.ID] {
		if len(p.Hand) == 0 {
			delete(s.declared, p.ID)
		}
		return
	}
	s.lastViolation = &Violation{SeatID: p.ID, Kind: "undeclared_last_card"}
	s.stats[p.ID].Violations++
	if s.Rules.DeclarePolicy == models.DeclarePenaltyDraw {
		if c, ok := s.deck.Draw(); ok {
			p.Hand = append(p.Hand, c.FacedDown())
			s.stats[p.ID].PenaltyTaken++
		} else if n := len(s.pile); n > 0 {
			c := s.pile[n-1]
			s.pile = s.pile[:n-1]
			p.Hand = append(p.Hand, c.FacedDown())
			s.stats[p.ID].PenaltyTaken++
		}
	}
}

// DeclareLastCard flags the seat as having announced its final card. Legal whenever the
// seat holds exactly one card; it does not consume the turn.
func (s *Session) DeclareLastCard(seatID uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if !s.stage.InPlay() {
		return ErrGameNotInProgress
	}
	idx := s.seatIndex(seatID)
	if idx < 0 {
		return ErrSeatNotInGame
	}
	p := s.seats[idx]
	if len(p.Hand) != 1 {
		return ErrIllegalMove
	}
	if s.declared[p.ID] {
		return nil
	}
	s.declared[p.ID] = true
	s.stats[p.ID].Declarations++
	s.broadcast()
	return nil
}

// Forfeit removes a seat from the running hand. Its cards go to the pile and it ranks
// behind every seat that already finished. The session ends when one active seat is left.
func (s *Session) Forfeit(seatID uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if !s.stage.InPlay() {
		return ErrGameNotInProgress
	}
	idx := s.seatIndex(seatID)
	if idx < 0 {
		return ErrSeatNotInGame
	}
	if !s.active(idx) {
		return ErrIllegalMove
	}

	p := s.seats[idx]
	for _, c := range p.Hand {
		s.pile = append(s.pile, c.FacedUp())
	}
	p.Hand = nil
	s.forfeited[p.ID] = true
	s.finishOrder = append(s.finishOrder, p.ID)
	delete(s.declared, p.ID)

	if s.stage.IsCombat() {
		s.resolveDeparture(idx)
	} else if s.currentIdx == idx {
		// Departing gather actor loses the revealed card to the pile.
		s.discardRevealed()
		s.advanceGather()
	}
	s.checkTransitions()
	s.broadcast()
	return nil
}

// resolveDeparture repairs combat roles after a seat leaves mid-exchange.
func (s *Session) resolveDeparture(idx int) {
	if len(s.attacks) > 0 && (idx == s.defenderIdx || idx == s.attackerIdx) {
		// The open exchange dies with its participant.
		s.sweepExchange()
	}
	if s.attackerIdx == idx || !s.active(s.attackerIdx) {
		s.attackerIdx = s.nextActive(idx)
	}
	s.defenderIdx = s.nextActive(s.attackerIdx)
	s.currentIdx = s.attackerIdx
}

// sweepExchange moves every card of the open exchange to the dead pile.
func (s *Session) sweepExchange() {
	s.pile = append(s.pile, s.attacks...)
	s.pile = append(s.pile, s.defenses...)
	s.attacks = nil
	s.defenses = nil
}

// broadcast publishes a snapshot if a sink is attached. Callers hold the mutex.
func (s *Session) broadcast() {
	if s.BroadcastFn == nil {
		return
	}
	s.BroadcastFn(s.snapshotLocked())
}

// cardTotal counts every card the session tracks; tests assert it is always 52.
func (s *Session) cardTotal() int {
	n := s.deck.Len() + len(s.pile) + len(s.attacks) + len(s.defenses)
	if s.revealed != nil {
		n++
	}
	for _, p := range s.seats {
		n += len(p.Hand)
	}
	return n
}

// CardTotal is the exported, locked form of cardTotal.
func (s *Session) CardTotal() int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.cardTotal()
}
