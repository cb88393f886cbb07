// internal/game/combat.go
package game

import (
	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// Combat: the attacker opens an exchange by playing a card to the table; the defender
// must beat each table attack with a higher card of the same suit or a trump, or take
// the whole exchange into hand. While every attack stands beaten, other active seats
// may pile on cards matching a rank already on the table, capped by the defender's hand.
// The endgame stage uses identical legality but skips the pile-on phase.

// Beats reports whether defense beats attack under the given trump suit. A trump attack
// can only be beaten by a higher trump; the same-suit rule covers that case.
func Beats(attack, defense models.Card, trump models.Suit) bool {
	if defense.Suit == attack.Suit {
		return defense.Rank > attack.Rank
	}
	return defense.Suit == trump && attack.Suit != trump
}

// undefended is the number of table attacks not yet beaten.
func (s *Session) undefended() int {
	return len(s.attacks) - len(s.defenses)
}

// validateCombatActor checks stage and membership, returning the actor's index.
func (s *Session) validateCombatActor(seatID uuid.UUID) (int, error) {
	if !s.stage.IsCombat() {
		return 0, ErrGameNotInProgress
	}
	idx := s.seatIndex(seatID)
	if idx < 0 {
		return 0, ErrSeatNotInGame
	}
	if !s.active(idx) {
		return 0, ErrIllegalMove
	}
	return idx, nil
}

// playFromHand removes the card from the seat's hand face-up, updating counters and the
// declaration check. The caller has already validated legality.
func (s *Session) playFromHand(idx int, c models.Card) models.Card {
	p := s.seats[idx]
	p.RemoveCard(c)
	s.stats[p.ID].CardsPlayed++
	s.checkDeclaration(idx)
	if len(p.Hand) == 0 {
		s.markFinished(idx)
	}
	return c.FacedUp()
}

// Attack opens an exchange. Only the attacker may act, only with an empty table, and
// any held card is a legal opener.
func (s *Session) Attack(seatID uuid.UUID, card models.Card) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx, err := s.validateCombatActor(seatID)
	if err != nil {
		return err
	}
	if idx != s.attackerIdx || idx != s.currentIdx {
		return ErrNotYourTurn
	}
	if len(s.attacks) > 0 {
		return ErrIllegalMove
	}
	if !s.seats[idx].HoldsCard(card) {
		return ErrCardNotHeld
	}

	s.attacks = append(s.attacks, s.playFromHand(idx, card))
	s.stats[s.seats[idx].ID].TurnsTaken++
	s.currentIdx = s.defenderIdx

	s.maybeAutoResolve()
	s.checkTransitions()
	s.broadcast()
	return nil
}

// Defend beats the oldest standing attack. If that was the last one, the turn returns
// to the attacker, who may pile on or close the exchange.
func (s *Session) Defend(seatID uuid.UUID, card models.Card) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx, err := s.validateCombatActor(seatID)
	if err != nil {
		return err
	}
	if idx != s.defenderIdx || idx != s.currentIdx {
		return ErrNotYourTurn
	}
	if s.undefended() == 0 {
		return ErrIllegalMove
	}
	if !s.seats[idx].HoldsCard(card) {
		return ErrCardNotHeld
	}
	if !Beats(s.attacks[len(s.defenses)], card, s.trump) {
		return ErrIllegalMove
	}

	s.defenses = append(s.defenses, s.playFromHand(idx, card))
	s.stats[s.seats[idx].ID].TurnsTaken++
	if s.undefended() == 0 {
		s.currentIdx = s.attackerIdx
	}

	s.maybeAutoResolve()
	s.checkTransitions()
	s.broadcast()
	return nil
}

// PileOn throws an extra attack onto a defended table. Any active seat except the
// defender may do it while the attacker holds the turn, the card's rank must already be
// on the table, and the defender must still hold enough cards to answer. The endgame
// cadence drops this move entirely.
func (s *Session) PileOn(seatID uuid.UUID, card models.Card) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx, err := s.validateCombatActor(seatID)
	if err != nil {
		return err
	}
	if s.stage == StageEndgame {
		return ErrIllegalMove
	}
	if idx == s.defenderIdx || s.currentIdx != s.attackerIdx {
		return ErrNotYourTurn
	}
	if len(s.attacks) == 0 || len(s.defenses) == 0 {
		return ErrIllegalMove
	}
	if s.undefended() >= len(s.seats[s.defenderIdx].Hand) {
		return ErrIllegalMove
	}
	if !s.tableHasRank(card.Rank) {
		return ErrIllegalMove
	}
	if !s.seats[idx].HoldsCard(card) {
		return ErrCardNotHeld
	}

	s.attacks = append(s.attacks, s.playFromHand(idx, card))
	s.currentIdx = s.defenderIdx

	s.maybeAutoResolve()
	s.checkTransitions()
	s.broadcast()
	return nil
}

// tableHasRank reports whether any exchange card carries the rank.
func (s *Session) tableHasRank(r models.Rank) bool {
	for _, c := range s.attacks {
		if c.Rank == r {
			return true
		}
	}
	for _, c := range s.defenses {
		if c.Rank == r {
			return true
		}
	}
	return false
}

// TakeTable is the failed defense: the defender draws every card on the table into its
// hand and the attack passes over it.
func (s *Session) TakeTable(seatID uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx, err := s.validateCombatActor(seatID)
	if err != nil {
		return err
	}
	if idx != s.defenderIdx || idx != s.currentIdx {
		return ErrNotYourTurn
	}
	if len(s.attacks) == 0 {
		return ErrIllegalMove
	}

	p := s.seats[idx]
	taken := len(s.attacks) + len(s.defenses)
	for _, c := range s.attacks {
		p.Hand = append(p.Hand, c.FacedDown())
	}
	for _, c := range s.defenses {
		p.Hand = append(p.Hand, c.FacedDown())
	}
	s.attacks = nil
	s.defenses = nil
	s.stats[p.ID].PenaltyTaken += taken
	s.stats[p.ID].TurnsTaken++
	delete(s.declared, p.ID)

	// A failed defender is skipped: the next attacker sits past it.
	s.attackerIdx = s.nextActive(idx)
	s.defenderIdx = s.nextActive(s.attackerIdx)
	s.currentIdx = s.attackerIdx

	s.checkTransitions()
	s.broadcast()
	return nil
}

// EndAttack closes a fully beaten exchange: the table goes to the dead pile and the
// successful defender attacks next.
func (s *Session) EndAttack(seatID uuid.UUID) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	idx, err := s.validateCombatActor(seatID)
	if err != nil {
		return err
	}
	if idx != s.attackerIdx || idx != s.currentIdx {
		return ErrNotYourTurn
	}
	if len(s.attacks) == 0 || s.undefended() != 0 {
		return ErrIllegalMove
	}

	s.stats[s.seats[idx].ID].TurnsTaken++
	s.resolveBeaten()
	s.checkTransitions()
	s.broadcast()
	return nil
}

// resolveBeaten sweeps a beaten exchange and rotates the roles clockwise.
func (s *Session) resolveBeaten() {
	defender := s.defenderIdx
	s.sweepExchange()
	if s.active(defender) {
		s.attackerIdx = defender
	} else {
		s.attackerIdx = s.nextActive(defender)
	}
	s.defenderIdx = s.nextActive(s.attackerIdx)
	s.currentIdx = s.attackerIdx
}

// maybeAutoResolve closes exchanges no seat can act on: a beaten table whose attacker
// or defender has emptied its hand resolves immediately rather than waiting on a seat
// with no legal continuation.
func (s *Session) maybeAutoResolve() {
	if len(s.attacks) == 0 || s.undefended() != 0 {
		return
	}
	attackerOut := !s.active(s.attackerIdx) || len(s.seats[s.attackerIdx].Hand) == 0
	defenderOut := len(s.seats[s.defenderIdx].Hand) == 0
	if attackerOut || defenderOut {
		s.resolveBeaten()
	}
}
