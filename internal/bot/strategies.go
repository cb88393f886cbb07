// internal/bot/strategies.go
package bot

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// Gather-stage rank classes.
const (
	weakRank   = 6  // revealed cards at or below this are dumped on opponents
	strongRank = 10 // revealed cards at or above this are worth keeping
)

// EasyBrain picks uniformly at random among the legal gather targets.
type EasyBrain struct {
	rng *rand.Rand
}

func (b *EasyBrain) Decide(view game.View) (Action, error) {
	if a, ok := sharedAction(view); ok {
		return a, nil
	}
	place, hasPlace := moveOfKind(view, game.MovePlace)
	_, hasSelf := moveOfKind(view, game.MovePlaceSelf)

	// Pool every legal landing spot, own seat included, and roll.
	pool := append([]uuid.UUID(nil), place.Targets...)
	if hasSelf {
		pool = append(pool, view.SeatID)
	}
	if hasPlace || hasSelf {
		pick := pool[b.rng.Intn(len(pool))]
		if pick == view.SeatID {
			return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MovePlaceSelf}, Confidence: 0.3}, nil
		}
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MovePlace, Target: pick}, Confidence: 0.3}, nil
	}
	return discardFallback(view)
}

// MediumBrain classifies the revealed card by rank: weak cards go to a random opponent,
// strong cards are kept on the bot's own seat when legal, anything else is discarded.
type MediumBrain struct {
	rng *rand.Rand
}

func (b *MediumBrain) Decide(view game.View) (Action, error) {
	if a, ok := sharedAction(view); ok {
		return a, nil
	}
	revealed, err := models.ParseCard(view.Revealed)
	if err != nil {
		return discardFallback(view)
	}
	place, hasPlace := moveOfKind(view, game.MovePlace)
	_, hasSelf := moveOfKind(view, game.MovePlaceSelf)

	if revealed.Rank >= strongRank && hasSelf {
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MovePlaceSelf}, Confidence: 0.7}, nil
	}
	if hasPlace {
		target := place.Targets[b.rng.Intn(len(place.Targets))]
		conf := 0.5
		if revealed.Rank <= weakRank {
			conf = 0.7
		}
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MovePlace, Target: target}, Confidence: conf}, nil
	}
	if hasSelf {
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MovePlaceSelf}, Confidence: 0.4}, nil
	}
	return discardFallback(view)
}

// HardBrain ranks opponents by threat (the summed ranks of their visible face-up cards)
// and routes weak revealed cards to the most threatening one. Ties break on seat index.
type HardBrain struct {
	rng *rand.Rand
}

func (b *HardBrain) Decide(view game.View) (Action, error) {
	if a, ok := sharedAction(view); ok {
		return a, nil
	}
	revealed, err := models.ParseCard(view.Revealed)
	if err != nil {
		return discardFallback(view)
	}
	place, hasPlace := moveOfKind(view, game.MovePlace)
	_, hasSelf := moveOfKind(view, game.MovePlaceSelf)

	if revealed.Rank >= strongRank && hasSelf {
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MovePlaceSelf}, Confidence: 0.8}, nil
	}
	if hasPlace {
		target := b.mostThreatening(view, place.Targets)
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MovePlace, Target: target}, Confidence: 0.8}, nil
	}
	if hasSelf {
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MovePlaceSelf}, Confidence: 0.5}, nil
	}
	return discardFallback(view)
}

// mostThreatening scores each candidate by the ranks of its visible face-up cards and
// returns the highest scorer, first seat index winning ties.
func (b *HardBrain) mostThreatening(view game.View, candidates []uuid.UUID) uuid.UUID {
	allowed := make(map[uuid.UUID]bool, len(candidates))
	for _, id := range candidates {
		allowed[id] = true
	}
	best := candidates[0]
	bestScore := -1
	for _, seat := range view.Seats { // seat order = seat index order
		if !allowed[seat.ID] || seat.TopCard == "" {
			continue
		}
		score := 0
		if c, err := models.ParseCard(seat.TopCard); err == nil {
			score = int(c.Rank)
		}
		if score > bestScore {
			best, bestScore = seat.ID, score
		}
	}
	return best
}

// sharedAction handles the moves every tier plays identically: declaring the last card
// as soon as it is legal, and the whole combat policy.
func sharedAction(view game.View) (Action, bool) {
	if _, found := moveOfKind(view, game.MoveDeclare); found {
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MoveDeclare}, Confidence: 1.0}, true
	}
	return combatAction(view)
}

// discardFallback proposes the turn-passing discard, or ErrNoLegalAction when even that
// is unavailable.
func discardFallback(view game.View) (Action, error) {
	if _, found := moveOfKind(view, game.MoveDiscard); found {
		return Action{Move: game.Move{Seat: view.SeatID, Kind: game.MoveDiscard}, Confidence: 0.2}, nil
	}
	return Action{}, ErrNoLegalAction
}
