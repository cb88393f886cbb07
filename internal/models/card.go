// internal/models/card.go
package models

import (
	"fmt"
	"strings"
)

// Suit is one of the four french suits, encoded as a single letter.
type Suit string

const (
	Hearts   Suit = "H"
	Diamonds Suit = "D"
	Clubs    Suit = "C"
	Spades   Suit = "S"
)

// Suits lists every suit in deck order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Rank is the ordinal strength of a card: 2..10, then J=11, Q=12, K=13, A=14.
type Rank int

const (
	RankTwo   Rank = 2
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
	RankAce   Rank = 14
)

var rankLetters = map[Rank]string{
	RankTen: "T", RankJack: "J", RankQueen: "Q", RankKing: "K", RankAce: "A",
}

var letterRanks = map[string]Rank{
	"T": RankTen, "J": RankJack, "Q": RankQueen, "K": RankKing, "A": RankAce,
}

// String renders the rank as it appears in a card code ("2".."9", "T", "J", "Q", "K", "A").
func (r Rank) String() string {
	if s, ok := rankLetters[r]; ok {
		return s
	}
	return fmt.Sprintf("%d", int(r))
}

// Card is an immutable rank+suit pair plus a face-up flag. Identity is value based:
// two cards with the same rank and suit are the same physical card.
type Card struct {
	Rank   Rank `json:"rank"`
	Suit   Suit `json:"suit"`
	FaceUp bool `json:"faceUp"`
}

// Code returns the two-character wire code for the card, e.g. "7S", "TH", "AD".
func (c Card) Code() string {
	return c.Rank.String() + string(c.Suit)
}

// Same reports whether two cards are the same physical card, ignoring orientation.
func (c Card) Same(o Card) bool {
	return c.Rank == o.Rank && c.Suit == o.Suit
}

// ParseCard converts a wire code like "7S" or "TH" back into a typed Card.
// All downstream rules operate on the parsed Rank/Suit ordinals, never on the raw string.
func ParseCard(code string) (Card, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return Card{}, fmt.Errorf("malformed card code %q", code)
	}
	var rank Rank
	rs := code[:1]
	if r, ok := letterRanks[rs]; ok {
		rank = r
	} else if rs >= "2" && rs <= "9" {
		rank = Rank(rs[0] - '0')
	} else {
		return Card{}, fmt.Errorf("unknown rank %q in card code %q", rs, code)
	}
	suit := Suit(code[1:])
	switch suit {
	case Hearts, Diamonds, Clubs, Spades:
	default:
		return Card{}, fmt.Errorf("unknown suit %q in card code %q", code[1:], code)
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// FacedUp returns a copy of the card turned face-up.
func (c Card) FacedUp() Card {
	c.FaceUp = true
	return c
}

// FacedDown returns a copy of the card turned face-down.
func (c Card) FacedDown() Card {
	c.FaceUp = false
	return c
}
