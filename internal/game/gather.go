// internal/game/gather.go
package game

import (
	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// The gather stage: on each turn one card is revealed off the deck and the acting seat
// places it onto a seat whose visible top card is strictly lower, covering that card.
// The covered pair is swept to the pile, so hands shrink from the dealt count toward
// two. Once every active hand holds exactly two cards (or the deck runs dry) combat
// begins and a trump suit is drawn.

// minGatherHand is the floor a hand can be knocked down to; a seat at the floor is no
// longer a legal target.
const minGatherHand = 2

// revealNext turns over the next deck card for the current gather turn. An exhausted
// deck advances the stage regardless of per-seat card counts.
func (s *Session) revealNext() {
	c, ok := s.deck.Draw()
	if !ok {
		s.enterCombat()
		return
	}
	c = c.FacedUp()
	s.revealed = &c
}

// discardRevealed drops the revealed card onto the pile, if one is up.
func (s *Session) discardRevealed() {
	if s.revealed == nil {
		return
	}
	s.pile = append(s.pile, *s.revealed)
	s.revealed = nil
}

// gatherTargets lists the seat indices that may legally receive the revealed card:
// active seats above the hand floor whose visible top card has strictly lower rank.
func (s *Session) gatherTargets() []int {
	if s.revealed == nil {
		return nil
	}
	var out []int
	for i, p := range s.seats {
		if !s.active(i) || len(p.Hand) <= minGatherHand {
			continue
		}
		top, ok := p.TopCard()
		if !ok || !top.FaceUp {
			continue
		}
		if top.Rank < s.revealed.Rank {
			out = append(out, i)
		}
	}
	return out
}

// isGatherTarget reports whether seat idx is currently a legal target.
func (s *Session) isGatherTarget(idx int) bool {
	for _, t := range s.gatherTargets() {
		if t == idx {
			return true
		}
	}
	return false
}

// validateGatherActor checks stage and turn, returning the actor's index.
func (s *Session) validateGatherActor(seatID uuid.UUID) (int, error) {
	if s.stage != StageGather {
		return 0, ErrGameNotInProgress
	}
	idx := s.seatIndex(seatID)
	if idx < 0 {
		return 0, ErrSeatNotInGame
	}
	if idx != s.currentIdx {
		return 0, ErrNotYourTurn
	}
	if s.revealed == nil {
		return 0, ErrIllegalMove
	}
	return idx, nil
}

// PlaceOnSeat puts the revealed card onto the target seat, covering its lower-ranked
// top card; both cards are swept to the pile. Targeting the actor's own seat goes
// through PlaceOnSelf instead, so the two intents stay distinct on the wire.
func (s *Session) PlaceOnSeat(seatID, targetID uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx, err := s.validateGatherActor(seatID)
	if err != nil {
		return err
	}
	tIdx := s.seatIndex(targetID)
	if tIdx < 0 {
		return ErrSeatNotInGame
	}
	if tIdx == idx || !s.isGatherTarget(tIdx) {
		return ErrIllegalMove
	}
	s.placeOn(idx, tIdx)
	return nil
}

// PlaceOnSelf is the distinct "keep it" action: the seat covers its own top card with
// the revealed card and passes the turn.
func (s *Session) PlaceOnSelf(seatID uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx, err := s.validateGatherActor(seatID)
	if err != nil {
		return err
	}
	if !s.isGatherTarget(idx) {
		return ErrIllegalMove
	}
	s.placeOn(idx, idx)
	return nil
}

// DiscardRevealed passes the turn, sending the revealed card to the pile alone. Always
// legal on the actor's turn; it is the forced fallback when no seat is a legal target.
func (s *Session) DiscardRevealed(seatID uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx, err := s.validateGatherActor(seatID)
	if err != nil {
		return err
	}
	s.discardRevealed()
	s.stats[s.seats[idx].ID].TurnsTaken++
	s.advanceGather()
	s.broadcast()
	return nil
}

// placeOn applies a validated placement: the target's top card and the revealed card go
// to the pile together, then the turn advances.
func (s *Session) placeOn(actorIdx, targetIdx int) {
	target := s.seats[targetIdx]
	top := target.Hand[len(target.Hand)-1]
	target.Hand = target.Hand[:len(target.Hand)-1]
	s.pile = append(s.pile, top.FacedUp(), *s.revealed)
	s.revealed = nil

	// The card underneath is now visible.
	if n := len(target.Hand); n > 0 {
		target.Hand[n-1] = target.Hand[n-1].FacedUp()
	}

	actor := s.seats[actorIdx]
	s.stats[actor.ID].CardsPlayed++
	s.stats[actor.ID].TurnsTaken++
	s.advanceGather()
	s.broadcast()
}

// advanceGather moves to the next turn, or into combat once every active hand is down
// to the floor.
func (s *Session) advanceGather() {
	done := true
	for i, p := range s.seats {
		if s.active(i) && len(p.Hand) != minGatherHand {
			done = false
			break
		}
	}
	if done {
		s.enterCombat()
		return
	}
	s.currentIdx = s.nextActive(s.currentIdx)
	s.revealNext()
}

// enterCombat assigns the trump suit by a uniform draw and switches to attack/defend
// play. Any still-revealed card is discarded first so the 52-card ledger stays intact.
func (s *Session) enterCombat() {
	s.discardRevealed()
	s.trump = models.Suits[s.rng.Intn(len(models.Suits))]
	s.stage = StageCombat

	if !s.active(s.currentIdx) {
		s.currentIdx = s.nextActive(s.currentIdx)
	}
	s.attackerIdx = s.currentIdx
	s.defenderIdx = s.nextActive(s.attackerIdx)
	s.attacks = nil
	s.defenses = nil

	// A short table can go straight to the endgame cadence.
	if s.activeCount() <= s.Rules.EndgameSeats {
		s.stage = StageEndgame
	}
}
