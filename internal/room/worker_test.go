// internal/room/worker_test.go
package room

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/models"
)

func newHumanSession(t *testing.T) *game.Session {
	t.Helper()
	seats := make([]*models.Player, 4)
	for i := range seats {
		seats[i] = models.NewPlayer(fmt.Sprintf("seat%d", i))
	}
	s := game.NewSession(uuid.New(), seats, models.DefaultRules(), rand.New(rand.NewSource(21)))
	return s
}

func TestWorkerSubmitVerdicts(t *testing.T) {
	s := newHumanSession(t)
	w := NewWorker(s, rand.New(rand.NewSource(1)))
	require.NoError(t, s.Begin())
	w.Start()
	defer w.Stop()

	cur, ok := s.CurrentSeat()
	require.True(t, ok)
	var other uuid.UUID
	for _, p := range s.Seats() {
		if p.ID != cur {
			other = p.ID
			break
		}
	}

	err := w.Submit(game.Move{Seat: other, Kind: game.MoveDiscard})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)

	err = w.Submit(game.Move{Seat: cur, Kind: game.MoveDiscard})
	assert.NoError(t, err)

	select {
	case snap := <-w.Snapshots():
		assert.Equal(t, s.ID, snap.SessionID)
	case <-time.After(time.Second):
		t.Fatal("applied move produced no snapshot")
	}
}

func TestWorkerSerializesConcurrentSubmits(t *testing.T) {
	s := newHumanSession(t)
	w := NewWorker(s, rand.New(rand.NewSource(1)))
	require.NoError(t, s.Begin())
	w.Start()
	defer w.Stop()

	// Hammer the queue from many goroutines. Exactly the moves whose seat held the
	// turn at application time succeed; every caller gets a verdict.
	var wg sync.WaitGroup
	verdicts := make(chan error, 40)
	for _, p := range s.Seats() {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(seatID uuid.UUID) {
				defer wg.Done()
				verdicts <- w.Submit(game.Move{Seat: seatID, Kind: game.MoveDiscard})
			}(p.ID)
		}
	}
	wg.Wait()
	close(verdicts)

	count := 0
	for range verdicts {
		count++
	}
	assert.Equal(t, 40, count, "every submit gets exactly one verdict")
	assert.Equal(t, 52, s.CardTotal())
}

func TestWorkerStopRejectsSubmits(t *testing.T) {
	s := newHumanSession(t)
	w := NewWorker(s, rand.New(rand.NewSource(1)))
	require.NoError(t, s.Begin())
	w.Start()
	w.Stop()

	cur, ok := s.CurrentSeat()
	require.True(t, ok)
	err := w.Submit(game.Move{Seat: cur, Kind: game.MoveDiscard})
	assert.ErrorIs(t, err, game.ErrGameNotInProgress)
}

func TestWorkerSchedulesBotMoves(t *testing.T) {
	seats := make([]*models.Player, 4)
	for i := range seats {
		seats[i] = models.NewBot(fmt.Sprintf("bot%d", i), models.DifficultyEasy)
	}
	s := game.NewSession(uuid.New(), seats, models.DefaultRules(), rand.New(rand.NewSource(33)))
	w := NewWorker(s, rand.New(rand.NewSource(2)))
	require.NoError(t, s.Begin())
	w.Start()
	defer w.Stop()

	// The first frame is the deal itself; the next one can only come from a bot's
	// deferred move, since no human ever acts here.
	select {
	case <-w.Snapshots():
	case <-time.After(time.Second):
		t.Fatal("deal snapshot missing")
	}
	select {
	case snap := <-w.Snapshots():
		assert.NotEmpty(t, snap.Stage)
	case <-time.After(5 * time.Second):
		t.Fatal("no bot move arrived")
	}
	assert.Equal(t, 52, s.CardTotal())
}

func TestForfeitOfActingSeatKeepsBotsMoving(t *testing.T) {
	human := models.NewPlayer("human")
	seats := []*models.Player{human}
	for i := 0; i < 3; i++ {
		seats = append(seats, models.NewBot(fmt.Sprintf("bot%d", i), models.DifficultyEasy))
	}
	s := game.NewSession(uuid.New(), seats, models.DefaultRules(), rand.New(rand.NewSource(7)))
	w := NewWorker(s, rand.New(rand.NewSource(7)))
	require.NoError(t, s.Begin())
	w.Start()
	defer w.Stop()

	// The bots act on their own; the human never does. Within a few rotations the
	// turn parks on the human and the room goes quiet.
	deadline := time.Now().Add(10 * time.Second)
	for {
		if cur, ok := s.CurrentSeat(); ok && cur == human.ID {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("turn never reached the human seat")
		}
		time.Sleep(25 * time.Millisecond)
	}

	// A leave mid-game forfeits the seat outside the move queue; the nudge re-arms
	// bot scheduling for the seat the turn advanced to.
	require.NoError(t, s.Forfeit(human.ID))
	w.Nudge()

	before := s.Snapshot()
	deadline = time.Now().Add(5 * time.Second)
	for {
		cur := s.Snapshot()
		if cur.DeckSize != before.DeckSize || cur.PileSize != before.PileSize ||
			cur.CurrentSeat != before.CurrentSeat || cur.Stage != before.Stage ||
			len(cur.FinishOrder) != len(before.FinishOrder) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no bot acted after the acting seat forfeited")
		}
		time.Sleep(50 * time.Millisecond)
	}
	assert.Equal(t, 52, s.CardTotal())
}
