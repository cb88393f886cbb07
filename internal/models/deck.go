// internal/models/deck.go
package models

import "math/rand"

// DeckSize is the number of cards in a full deck. Every running game must account for
// exactly this many cards across deck, hands and piles.
const DeckSize = 52

// Deck is an ordered pile of cards consumed from the front.
type Deck struct {
	cards []Card
}

// NewDeck builds the full 52-card deck in suit-major order, all cards face-down.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for r := RankTwo; r <= RankAce; r++ {
			cards = append(cards, Card{Rank: r, Suit: suit})
		}
	}
	return &Deck{cards: cards}
}

// Shuffle permutes the deck uniformly using the provided source. The source is injected
// so tests can fix the permutation.
func (d *Deck) Shuffle(r *rand.Rand) {
	r.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the front card. ok is false once the deck is exhausted.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	c := d.cards[0]
	d.cards = d.cards[1:]
	return c, true
}

// Len returns the number of cards remaining.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, front first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
