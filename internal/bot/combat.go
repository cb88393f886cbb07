// internal/bot/combat.go
package bot

import (
	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// Combat policy, shared by every tier:
//   - attacking: lowest-ranked non-trump card; trump only when the hand holds nothing else
//   - defending: lowest same-suit card that beats the attack, else the lowest trump
//     (never against a trump attack), else take the table
//   - a beaten table is piled on with the lowest matching non-trump card, else closed

// combatAction handles every combat-stage view. ok is false when the view holds no
// combat move for this seat.
func combatAction(view game.View) (Action, bool) {
	trump := models.Suit(view.Trump)

	if m, found := moveOfKind(view, game.MoveAttack); found {
		card := lowestPreferringNonTrump(m.Cards, trump)
		return Action{
			Move:       game.Move{Seat: view.SeatID, Kind: game.MoveAttack, Card: card},
			Confidence: 0.8,
		}, true
	}

	if m, found := moveOfKind(view, game.MoveDefend); found {
		if card, ok := defenseCard(view, m.Cards, trump); ok {
			return Action{
				Move:       game.Move{Seat: view.SeatID, Kind: game.MoveDefend, Card: card},
				Confidence: 0.9,
			}, true
		}
	}
	if _, found := moveOfKind(view, game.MoveTake); found {
		// Cannot beat the attack; drawing the table is the forced answer.
		return Action{
			Move:       game.Move{Seat: view.SeatID, Kind: game.MoveTake},
			Confidence: 1.0,
		}, true
	}

	if m, found := moveOfKind(view, game.MovePileOn); found {
		if card, ok := lowestBelow(m.Cards, models.RankTen, trump); ok {
			return Action{
				Move:       game.Move{Seat: view.SeatID, Kind: game.MovePileOn, Card: card},
				Confidence: 0.6,
			}, true
		}
	}
	if _, found := moveOfKind(view, game.MoveEndAttack); found {
		return Action{
			Move:       game.Move{Seat: view.SeatID, Kind: game.MoveEndAttack},
			Confidence: 0.8,
		}, true
	}
	return Action{}, false
}

// defenseCard picks from the precomputed beating set: lowest same-suit beater first,
// lowest trump second. The set is empty when neither exists.
func defenseCard(view game.View, beating []string, trump models.Suit) (string, bool) {
	if len(view.Attacks) == 0 {
		return "", false
	}
	attack, err := models.ParseCard(view.Attacks[len(view.Defenses)])
	if err != nil {
		return "", false
	}

	var bestSame, bestTrump string
	var bestSameRank, bestTrumpRank models.Rank
	for _, code := range beating {
		c, err := models.ParseCard(code)
		if err != nil {
			continue
		}
		switch {
		case c.Suit == attack.Suit:
			if bestSame == "" || c.Rank < bestSameRank {
				bestSame, bestSameRank = code, c.Rank
			}
		case c.Suit == trump:
			if bestTrump == "" || c.Rank < bestTrumpRank {
				bestTrump, bestTrumpRank = code, c.Rank
			}
		}
	}
	if bestSame != "" {
		return bestSame, true
	}
	if bestTrump != "" {
		return bestTrump, true
	}
	return "", false
}

// lowestPreferringNonTrump returns the lowest non-trump code, falling back to the
// lowest trump when the set holds nothing else.
func lowestPreferringNonTrump(codes []string, trump models.Suit) string {
	var best, bestTrump string
	var bestRank, bestTrumpRank models.Rank
	for _, code := range codes {
		c, err := models.ParseCard(code)
		if err != nil {
			continue
		}
		if c.Suit == trump {
			if bestTrump == "" || c.Rank < bestTrumpRank {
				bestTrump, bestTrumpRank = code, c.Rank
			}
			continue
		}
		if best == "" || c.Rank < bestRank {
			best, bestRank = code, c.Rank
		}
	}
	if best != "" {
		return best
	}
	return bestTrump
}

// lowestBelow returns the lowest non-trump code under the limit rank.
func lowestBelow(codes []string, limit models.Rank, trump models.Suit) (string, bool) {
	var best string
	var bestRank models.Rank
	for _, code := range codes {
		c, err := models.ParseCard(code)
		if err != nil || c.Suit == trump || c.Rank >= limit {
			continue
		}
		if best == "" || c.Rank < bestRank {
			best, bestRank = code, c.Rank
		}
	}
	return best, best != ""
}
