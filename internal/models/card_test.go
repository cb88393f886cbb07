// internal/models/card_test.go
package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCard(t *testing.T) {
	c, err := ParseCard("7S")
	require.NoError(t, err)
	assert.Equal(t, Rank(7), c.Rank)
	assert.Equal(t, Spades, c.Suit)
	assert.False(t, c.FaceUp)

	c, err = ParseCard("th")
	require.NoError(t, err)
	assert.Equal(t, RankTen, c.Rank)
	assert.Equal(t, Hearts, c.Suit)
	assert.Equal(t, "TH", c.Code())

	c, err = ParseCard("AD")
	require.NoError(t, err)
	assert.Equal(t, RankAce, c.Rank)

	for _, bad := range []string{"", "7", "1S", "XS", "7X", "10S"} {
		_, err := ParseCard(bad)
		assert.Error(t, err, "code %q should not parse", bad)
	}
}

func TestCardCodeRoundTrip(t *testing.T) {
	for _, c := range NewDeck().Cards() {
		parsed, err := ParseCard(c.Code())
		require.NoError(t, err)
		assert.True(t, parsed.Same(c))
	}
}

func TestNewDeckComplete(t *testing.T) {
	d := NewDeck()
	require.Equal(t, DeckSize, d.Len())

	seen := map[string]bool{}
	for {
		c, ok := d.Draw()
		if !ok {
			break
		}
		assert.False(t, seen[c.Code()], "duplicate card %s", c.Code())
		seen[c.Code()] = true
	}
	assert.Len(t, seen, DeckSize)
	assert.Equal(t, 0, d.Len())
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	a := NewDeck()
	b := NewDeck()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))
	assert.Equal(t, a.Cards(), b.Cards())

	c := NewDeck()
	c.Shuffle(rand.New(rand.NewSource(8)))
	assert.NotEqual(t, a.Cards(), c.Cards())
}

func TestPlayerHandOps(t *testing.T) {
	p := NewPlayer("alice")
	_, ok := p.TopCard()
	assert.False(t, ok)

	seven := Card{Rank: 7, Suit: Spades}
	nine := Card{Rank: 9, Suit: Hearts}
	p.Hand = []Card{seven, nine}

	top, ok := p.TopCard()
	require.True(t, ok)
	assert.True(t, top.Same(nine))

	assert.True(t, p.HoldsCard(seven.FacedUp()), "orientation must not affect identity")
	assert.True(t, p.RemoveCard(seven))
	assert.False(t, p.HoldsCard(seven))
	assert.False(t, p.RemoveCard(seven))
	assert.Len(t, p.Hand, 1)
}

func TestRulesValidate(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())

	r := DefaultRules()
	r.MaxPlayers = 3
	assert.Error(t, r.Validate())

	r = DefaultRules()
	r.MaxPlayers = 9
	r.CardsPerSeat = 6
	assert.Error(t, r.Validate(), "54 cards do not fit a 52-card deck")

	r = DefaultRules()
	r.EndgameSeats = 4
	assert.Error(t, r.Validate())

	r = DefaultRules()
	r.DeclarePolicy = "strict"
	assert.Error(t, r.Validate())
}
