// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// MoveKind names every intent a seat can submit against a session.
type MoveKind string

const (
	MovePlace     MoveKind = "place"
	MovePlaceSelf MoveKind = "place_self"
	MoveDiscard   MoveKind = "discard"
	MoveAttack    MoveKind = "attack"
	MoveDefend    MoveKind = "defend"
	MovePileOn    MoveKind = "pile_on"
	MoveTake      MoveKind = "take"
	MoveEndAttack MoveKind = "end_attack"
	MoveDeclare   MoveKind = "declare"
	MoveForfeit   MoveKind = "forfeit"
)

// LegalMove describes one currently legal intent: its kind plus the seats or cards it
// may be played with.
type LegalMove struct {
	Kind    MoveKind    `json:"kind"`
	Targets []uuid.UUID `json:"targets,omitempty"`
	Cards   []string    `json:"cards,omitempty"`
}

// SeatView is the public view of one seat: hand size, the visible top card, flags.
type SeatView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsBot     bool      `json:"isBot"`
	HandSize  int       `json:"handSize"`
	TopCard   string    `json:"topCard,omitempty"` // face-up top card, gather stage
	Declared  bool      `json:"declared"`
	Finished  bool      `json:"finished"`
	Forfeited bool      `json:"forfeited"`
}

// Snapshot is the serializable state published to the transport layer after every
// applied move. The field set is stable; clients key off Stage.
type Snapshot struct {
	SessionID uuid.UUID `json:"sessionId"`
	RoomID    uuid.UUID `json:"roomId"`
	Stage     string    `json:"stage"`

	CurrentSeat uuid.UUID `json:"currentSeat,omitempty"`
	Attacker    uuid.UUID `json:"attacker,omitempty"`
	Defender    uuid.UUID `json:"defender,omitempty"`

	Trump    string   `json:"trump,omitempty"`
	Revealed string   `json:"revealed,omitempty"`
	DeckSize int      `json:"deckSize"`
	PileSize int      `json:"pileSize"`
	Attacks  []string `json:"attacks,omitempty"`
	Defenses []string `json:"defenses,omitempty"`

	Seats      []SeatView  `json:"seats"`
	LegalMoves []LegalMove `json:"legalMoves,omitempty"`

	FinishOrder []uuid.UUID `json:"finishOrder,omitempty"`
	Violation   *Violation  `json:"violation,omitempty"`
}

// View is a single seat's decision surface: the public snapshot plus that seat's own
// hand and the moves it may submit right now. Bots decide on exactly this.
type View struct {
	Snapshot
	SeatID    uuid.UUID   `json:"seatId"`
	Hand      []string    `json:"hand"`
	YourMoves []LegalMove `json:"yourMoves,omitempty"`
}

// Snapshot returns the public state.
func (s *Session) Snapshot() Snapshot {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.snapshotLocked()
}

// ViewFor returns the decision surface for one seat.
func (s *Session) ViewFor(seatID uuid.UUID) (View, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx := s.seatIndex(seatID)
	if idx < 0 {
		return View{}, ErrSeatNotInGame
	}
	v := View{
		Snapshot: s.snapshotLocked(),
		SeatID:   seatID,
		Hand:     cardCodes(s.seats[idx].Hand),
	}
	if s.stage.InPlay() {
		v.YourMoves = s.legalMovesFor(idx)
	}
	return v, nil
}

func cardCodes(cards []models.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Code()
	}
	return out
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: s.ID,
		RoomID:    s.RoomID,
		Stage:     s.stage.String(),
		PileSize:  len(s.pile),
		Trump:     string(s.trump),
		Violation: s.lastViolation,
	}
	if s.deck != nil {
		snap.DeckSize = s.deck.Len()
	}
	if s.revealed != nil {
		snap.Revealed = s.revealed.Code()
	}
	if s.stage.InPlay() {
		snap.CurrentSeat = s.seats[s.currentIdx].ID
		snap.LegalMoves = s.legalMovesFor(s.currentIdx)
	}
	if s.stage.IsCombat() {
		snap.Attacker = s.seats[s.attackerIdx].ID
		snap.Defender = s.seats[s.defenderIdx].ID
		snap.Attacks = cardCodes(s.attacks)
		snap.Defenses = cardCodes(s.defenses)
	}
	if s.stage == StageFinished {
		snap.FinishOrder = append([]uuid.UUID(nil), s.finishOrder...)
	}

	snap.Seats = make([]SeatView, len(s.seats))
	for i, p := range s.seats {
		sv := SeatView{
			ID:        p.ID,
			Name:      p.Name,
			IsBot:     p.IsBot,
			HandSize:  len(p.Hand),
			Declared:  s.declared[p.ID],
			Finished:  s.finished[p.ID],
			Forfeited: s.forfeited[p.ID],
		}
		if top, ok := p.TopCard(); ok && top.FaceUp {
			sv.TopCard = top.Code()
		}
		snap.Seats[i] = sv
	}
	return snap
}

// legalMovesFor computes every intent seat idx could submit against the state just
// produced. Recomputed after each mutation so legality is never stale.
func (s *Session) legalMovesFor(idx int) []LegalMove {
	var moves []LegalMove
	if !s.active(idx) {
		return nil
	}
	p := s.seats[idx]

	switch {
	case s.stage == StageGather && idx == s.currentIdx && s.revealed != nil:
		var targets []uuid.UUID
		self := false
		for _, t := range s.gatherTargets() {
			if t == idx {
				self = true
				continue
			}
			targets = append(targets, s.seats[t].ID)
		}
		if len(targets) > 0 {
			moves = append(moves, LegalMove{Kind: MovePlace, Targets: targets})
		}
		if self {
			moves = append(moves, LegalMove{Kind: MovePlaceSelf})
		}
		moves = append(moves, LegalMove{Kind: MoveDiscard})

	case s.stage.IsCombat():
		if idx == s.attackerIdx && idx == s.currentIdx {
			if len(s.attacks) == 0 {
				moves = append(moves, LegalMove{Kind: MoveAttack, Cards: cardCodes(p.Hand)})
			} else if s.undefended() == 0 {
				moves = append(moves, LegalMove{Kind: MoveEndAttack})
			}
		}
		if idx == s.defenderIdx && idx == s.currentIdx && s.undefended() > 0 {
			if beating := s.beatingCards(p); len(beating) > 0 {
				moves = append(moves, LegalMove{Kind: MoveDefend, Cards: beating})
			}
			moves = append(moves, LegalMove{Kind: MoveTake})
		}
		if pileOn := s.pileOnCards(idx); len(pileOn) > 0 {
			moves = append(moves, LegalMove{Kind: MovePileOn, Cards: pileOn})
		}
	}

	if s.stage.InPlay() {
		if len(p.Hand) == 1 && !s.declared[p.ID] {
			moves = append(moves, LegalMove{Kind: MoveDeclare})
		}
		moves = append(moves, LegalMove{Kind: MoveForfeit})
	}
	return moves
}

// beatingCards lists the codes in hand that beat the oldest standing attack.
func (s *Session) beatingCards(p *models.Player) []string {
	if s.undefended() == 0 {
		return nil
	}
	attack := s.attacks[len(s.defenses)]
	var out []string
	for _, c := range p.Hand {
		if Beats(attack, c, s.trump) {
			out = append(out, c.Code())
		}
	}
	return out
}

// pileOnCards lists the codes seat idx could legally pile on right now.
func (s *Session) pileOnCards(idx int) []string {
	if s.stage != StageCombat || idx == s.defenderIdx || s.currentIdx != s.attackerIdx {
		return nil
	}
	if len(s.attacks) == 0 || len(s.defenses) == 0 || s.undefended() != 0 {
		return nil
	}
	if len(s.seats[s.defenderIdx].Hand) == 0 {
		return nil
	}
	var out []string
	for _, c := range s.seats[idx].Hand {
		if s.tableHasRank(c.Rank) {
			out = append(out, c.Code())
		}
	}
	return out
}
