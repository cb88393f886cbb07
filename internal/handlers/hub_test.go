// internal/handlers/hub_test.go
package handlers

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newConn(seatID uuid.UUID) *seatConn {
	return &seatConn{SeatID: seatID, Out: make(chan map[string]interface{}, 4)}
}

func TestBroadcastSurvivesReconnectChurn(t *testing.T) {
	cs := newTestServer()
	roomID := uuid.New()
	seatID := uuid.New()
	cs.attach(roomID, newConn(seatID))

	// One goroutine keeps replacing the seat's connection, the other keeps fanning
	// frames out. Broadcast sends outside the hub lock, so a reconnect must never
	// close a channel a send can still reach.
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				cs.attach(roomID, newConn(seatID))
			}
		}
	}()
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				cs.broadcast(roomID, map[string]interface{}{"type": "snapshot"})
			}
		}
	}()

	time.Sleep(300 * time.Millisecond)
	close(done)
	wg.Wait()
}

func TestSeatConnShutIsIdempotent(t *testing.T) {
	c := newConn(uuid.New())
	c.send(map[string]interface{}{"type": "chat"})
	c.shut()
	c.shut()
	c.send(map[string]interface{}{"type": "chat"})

	// The queued frame survives, then the channel reads closed for the write pump.
	msg, ok := <-c.Out
	assert.True(t, ok)
	assert.Equal(t, "chat", msg["type"])
	_, ok = <-c.Out
	assert.False(t, ok)
}

func TestDetachLeavesNewerConnAlone(t *testing.T) {
	cs := newTestServer()
	roomID := uuid.New()
	seatID := uuid.New()

	old := newConn(seatID)
	cs.attach(roomID, old)
	fresh := newConn(seatID)
	cs.attach(roomID, fresh)

	// The stale pump detaching on exit must not tear down the replacement.
	cs.detach(roomID, old)
	cs.broadcast(roomID, map[string]interface{}{"type": "snapshot"})

	select {
	case msg := <-fresh.Out:
		assert.Equal(t, "snapshot", msg["type"])
	default:
		t.Fatal("replacement connection missed the broadcast")
	}
}
