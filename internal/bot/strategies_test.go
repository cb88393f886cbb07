// internal/bot/strategies_test.go
package bot

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

// gatherView builds a gather-stage decision surface with the given revealed card,
// opponent targets, and whether keeping the card is legal.
func gatherView(revealed string, targets []uuid.UUID, self bool) game.View {
	v := game.View{SeatID: uuid.New()}
	v.Stage = "gather"
	v.Revealed = revealed
	if len(targets) > 0 {
		v.YourMoves = append(v.YourMoves, game.LegalMove{Kind: game.MovePlace, Targets: targets})
	}
	if self {
		v.YourMoves = append(v.YourMoves, game.LegalMove{Kind: game.MovePlaceSelf})
	}
	v.YourMoves = append(v.YourMoves, game.LegalMove{Kind: game.MoveDiscard})
	return v
}

func TestFactoryTiers(t *testing.T) {
	for _, tier := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		b, err := New(tier, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		require.NotNil(t, b)
	}
	_, err := New("brutal", nil)
	assert.Error(t, err)
}

func TestThinkDelayBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		d := ThinkDelay(models.DifficultyEasy, rng)
		assert.GreaterOrEqual(t, d, 300*time.Millisecond)
		assert.Less(t, d, 700*time.Millisecond)
	}
	easy := ThinkDelay(models.DifficultyEasy, nil)
	hard := ThinkDelay(models.DifficultyHard, nil)
	assert.Greater(t, hard, easy, "harder tiers think longer")
}

func TestEasyBrainPicksAmongLegalTargets(t *testing.T) {
	b, err := New(models.DifficultyEasy, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	targets := []uuid.UUID{uuid.New(), uuid.New()}
	pool := map[uuid.UUID]bool{targets[0]: true, targets[1]: true}
	view := gatherView("5H", targets, true)
	pool[view.SeatID] = true

	sawSelf, sawOpponent := false, false
	for i := 0; i < 100; i++ {
		a, err := b.Decide(view)
		require.NoError(t, err)
		switch a.Move.Kind {
		case game.MovePlaceSelf:
			sawSelf = true
		case game.MovePlace:
			require.True(t, pool[a.Move.Target], "easy must not invent targets")
			sawOpponent = true
		default:
			t.Fatalf("unexpected move kind %s", a.Move.Kind)
		}
	}
	assert.True(t, sawSelf, "uniform pick must eventually keep the card")
	assert.True(t, sawOpponent, "uniform pick must eventually hit an opponent")
}

func TestMediumBrainRoutesByRank(t *testing.T) {
	b, err := New(models.DifficultyMedium, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	// Strong card with a legal self-placement: keep it.
	view := gatherView("KH", []uuid.UUID{uuid.New()}, true)
	a, err := b.Decide(view)
	require.NoError(t, err)
	assert.Equal(t, game.MovePlaceSelf, a.Move.Kind)

	// Weak card: dump it on an opponent.
	target := uuid.New()
	view = gatherView("3C", []uuid.UUID{target}, true)
	a, err = b.Decide(view)
	require.NoError(t, err)
	assert.Equal(t, game.MovePlace, a.Move.Kind)
	assert.Equal(t, target, a.Move.Target)

	// Nothing placeable: pass the turn.
	view = gatherView("3C", nil, false)
	a, err = b.Decide(view)
	require.NoError(t, err)
	assert.Equal(t, game.MoveDiscard, a.Move.Kind)
}

func TestHardBrainTargetsMostThreatening(t *testing.T) {
	b, err := New(models.DifficultyHard, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	weak, strong := uuid.New(), uuid.New()
	view := gatherView("4D", []uuid.UUID{weak, strong}, false)
	view.Seats = []game.SeatView{
		{ID: weak, TopCard: "3C"},
		{ID: strong, TopCard: "QD"},
	}

	a, err := b.Decide(view)
	require.NoError(t, err)
	require.Equal(t, game.MovePlace, a.Move.Kind)
	assert.Equal(t, strong, a.Move.Target, "weak cards go to the biggest visible threat")
}

func TestHardBrainThreatTieBreaksOnSeatOrder(t *testing.T) {
	b, err := New(models.DifficultyHard, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	first, second := uuid.New(), uuid.New()
	view := gatherView("4D", []uuid.UUID{first, second}, false)
	view.Seats = []game.SeatView{
		{ID: first, TopCard: "9C"},
		{ID: second, TopCard: "9D"},
	}

	a, err := b.Decide(view)
	require.NoError(t, err)
	assert.Equal(t, first, a.Move.Target)
}

func TestCombatPolicySharedByAllTiers(t *testing.T) {
	for _, tier := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		b, err := New(tier, rand.New(rand.NewSource(5)))
		require.NoError(t, err)

		// Attack: lowest non-trump opener.
		view := game.View{SeatID: uuid.New(), Hand: []string{"KS", "4D", "3H"}}
		view.Trump = "H"
		view.YourMoves = []game.LegalMove{{Kind: game.MoveAttack, Cards: []string{"KS", "4D", "3H"}}}
		a, err := b.Decide(view)
		require.NoError(t, err)
		assert.Equal(t, game.MoveAttack, a.Move.Kind)
		assert.Equal(t, "4D", a.Move.Card, "tier %s keeps its trump back", tier)

		// Defense: lowest same-suit beater over a trump.
		view = game.View{SeatID: uuid.New()}
		view.Trump = "H"
		view.Attacks = []string{"7S"}
		view.YourMoves = []game.LegalMove{
			{Kind: game.MoveDefend, Cards: []string{"KS", "9S", "3H"}},
			{Kind: game.MoveTake},
		}
		a, err = b.Decide(view)
		require.NoError(t, err)
		assert.Equal(t, game.MoveDefend, a.Move.Kind)
		assert.Equal(t, "9S", a.Move.Card)

		// Only trump beats: spend the lowest trump.
		view.YourMoves[0].Cards = []string{"5H", "3H"}
		a, err = b.Decide(view)
		require.NoError(t, err)
		assert.Equal(t, "3H", a.Move.Card)

		// Nothing beats: taking the table is forced.
		view.YourMoves = []game.LegalMove{{Kind: game.MoveTake}}
		a, err = b.Decide(view)
		require.NoError(t, err)
		assert.Equal(t, game.MoveTake, a.Move.Kind)
		assert.Equal(t, 1.0, a.Confidence)
	}
}

func TestDeclareBeforeAnythingElse(t *testing.T) {
	b, err := New(models.DifficultyEasy, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	view := game.View{SeatID: uuid.New()}
	view.YourMoves = []game.LegalMove{
		{Kind: game.MoveAttack, Cards: []string{"7S"}},
		{Kind: game.MoveDeclare},
	}
	a, err := b.Decide(view)
	require.NoError(t, err)
	assert.Equal(t, game.MoveDeclare, a.Move.Kind)
}

func TestNoLegalActionSurfaces(t *testing.T) {
	b, err := New(models.DifficultyMedium, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	view := game.View{SeatID: uuid.New()} // no legal moves at all
	_, err = b.Decide(view)
	assert.ErrorIs(t, err, ErrNoLegalAction)
}
