// internal/room/worker.go
package room

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/bot"
	"github.com/kozyri-game/kozyri-server/internal/game"
)

// Worker serializes every move against one room's session: a single goroutine reads
// intents off the inbound queue and publishes resulting snapshots on the outbound
// channel, so no two moves for the same room ever interleave.
//
// Bot turns are scheduled as deferred re-submissions through the same queue. The
// thinking delay runs on a timer, never as a sleep inside the validation path, so
// human players in the room are never blocked by a thinking bot.
type Worker struct {
	session *game.Session

	intents   chan intent
	nudges    chan struct{}
	snapshots chan game.Snapshot
	quit      chan struct{}
	stopOnce  sync.Once

	rng    *rand.Rand
	brains map[uuid.UUID]bot.Brain

	// scheduledFor tracks the bot seat a deferred move is already pending for.
	// Touched only from the loop goroutine.
	scheduledFor uuid.UUID

	// OnMove, if set, runs after every accepted intent (activity stamping).
	OnMove func()
}

type intent struct {
	move  game.Move
	reply chan error
}

// NewWorker wires a worker to a dealt-or-dealing session and builds one brain per bot
// seat, each with its own random source.
func NewWorker(session *game.Session, rng *rand.Rand) *Worker {
	w := &Worker{
		session:   session,
		intents:   make(chan intent, 64),
		nudges:    make(chan struct{}, 1),
		snapshots: make(chan game.Snapshot, 64),
		quit:      make(chan struct{}),
		rng:       rng,
		brains:    make(map[uuid.UUID]bot.Brain),
	}
	for _, p := range session.Seats() {
		if !p.IsBot {
			continue
		}
		brain, err := bot.New(p.Difficulty, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			log.Printf("worker %s: brain for seat %s: %v", session.ID, p.ID, err)
			continue
		}
		w.brains[p.ID] = brain
	}
	session.BroadcastFn = w.publish
	return w
}

// Snapshots is the outbound channel of room state. Slow consumers lose frames rather
// than stalling the room.
func (w *Worker) Snapshots() <-chan game.Snapshot {
	return w.snapshots
}

// Done is closed when the worker stops. Snapshot consumers select on it.
func (w *Worker) Done() <-chan struct{} {
	return w.quit
}

// publish pushes a snapshot without ever blocking the move loop.
func (w *Worker) publish(snap game.Snapshot) {
	select {
	case <-w.quit:
	case w.snapshots <- snap:
	default:
		log.Printf("worker %s: snapshot dropped, outbound channel full", w.session.ID)
	}
}

// Start launches the move loop.
func (w *Worker) Start() {
	go w.loop()
}

// Stop shuts the loop down. Pending Submit calls return ErrGameNotInProgress.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}

// Nudge asks the loop to re-check whose turn it is and arm a bot move if one is
// due. Callers that mutate the session outside the move queue (a seat leaving
// mid-game) use it to keep bot scheduling alive. It never blocks; a pending nudge
// already covers the re-check.
func (w *Worker) Nudge() {
	select {
	case w.nudges <- struct{}{}:
	default:
	}
}

// Submit queues one move and waits for its synchronous verdict. Rejections are the
// session's typed Protocol errors; the state is untouched on rejection.
func (w *Worker) Submit(m game.Move) error {
	it := intent{move: m, reply: make(chan error, 1)}
	select {
	case w.intents <- it:
	case <-w.quit:
		return game.ErrGameNotInProgress
	}
	select {
	case err := <-it.reply:
		return err
	case <-w.quit:
		return game.ErrGameNotInProgress
	}
}

func (w *Worker) loop() {
	w.scheduleBot()
	for {
		select {
		case <-w.quit:
			return
		case <-w.nudges:
			w.scheduleBot()
		case it := <-w.intents:
			if it.move.Seat == w.scheduledFor {
				w.scheduledFor = uuid.Nil
			}
			err := w.session.Apply(it.move)
			it.reply <- err
			if err == nil && w.OnMove != nil {
				w.OnMove()
			}
			w.scheduleBot()
		}
	}
}

// scheduleBot arms a deferred move for the next actor if it is a bot without one
// already pending.
func (w *Worker) scheduleBot() {
	actor, ok := w.session.NextActor()
	if !ok || !actor.IsBot || actor.ID == w.scheduledFor {
		return
	}
	brain, ok := w.brains[actor.ID]
	if !ok {
		return
	}
	w.scheduledFor = actor.ID
	seatID := actor.ID
	delay := bot.ThinkDelay(actor.Difficulty, w.rng)
	time.AfterFunc(delay, func() {
		w.submitBotMove(seatID, brain)
	})
}

// submitBotMove computes the bot's decision against a fresh view and feeds it through
// the same validated path as a human move. A brain with no legal action escalates to
// the forced safe default: discard when available, forfeit otherwise.
func (w *Worker) submitBotMove(seatID uuid.UUID, brain bot.Brain) {
	view, err := w.session.ViewFor(seatID)
	if err != nil {
		return
	}
	action, err := brain.Decide(view)
	if err != nil {
		log.Printf("worker %s: bot %s: %v, falling back to safe default", w.session.ID, seatID, err)
		action = safeDefault(view)
	}
	if err := w.Submit(action.Move); err != nil {
		// Stale by the time it was applied; the loop reschedules if still our turn.
		log.Printf("worker %s: bot move %s rejected: %v", w.session.ID, action.Move.Kind, err)
	}
}

// safeDefault is the escalation path for a brain logic gap.
func safeDefault(view game.View) bot.Action {
	for _, m := range view.YourMoves {
		if m.Kind == game.MoveDiscard {
			return bot.Action{Move: game.Move{Seat: view.SeatID, Kind: game.MoveDiscard}}
		}
		if m.Kind == game.MoveTake {
			return bot.Action{Move: game.Move{Seat: view.SeatID, Kind: game.MoveTake}}
		}
	}
	return bot.Action{Move: game.Move{Seat: view.SeatID, Kind: game.MoveForfeit}}
}
