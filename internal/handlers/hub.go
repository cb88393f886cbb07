// internal/handlers/hub.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/room"
	"github.com/sirupsen/logrus"
)

// seatConn is one seat's outbound pipe. The write pump drains Out; a full channel
// drops the frame rather than stalling the hub.
type seatConn struct {
	SeatID uuid.UUID
	Out    chan map[string]interface{}

	// mu orders send against shut: broadcast runs outside the hub lock, so the
	// channel must never close while a send is in flight.
	mu     sync.Mutex
	closed bool
}

// send queues a frame for this connection, best effort. A closed connection
// swallows the frame.
func (c *seatConn) send(msg map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Out <- msg:
	default:
	}
}

// shut closes the outbound channel exactly once so the write pump exits.
func (c *seatConn) shut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Out)
}

// WriteError sends a typed error frame to this connection only. Rejections never
// fan out to the rest of the room.
func (c *seatConn) WriteError(code, message string) {
	c.send(map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": message,
	})
}

// roomHub is the connection set for one room. Guarded by the CoreServer mutex.
type roomHub struct {
	conns   map[uuid.UUID]*seatConn
	pumping bool
}

// attach registers a connection with the room's hub, creating it on first use.
// A reconnecting seat replaces its previous connection; the stale one is shut so
// its write pump exits.
func (cs *CoreServer) attach(roomID uuid.UUID, conn *seatConn) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	h, ok := cs.hubs[roomID]
	if !ok {
		h = &roomHub{conns: make(map[uuid.UUID]*seatConn)}
		cs.hubs[roomID] = h
	}
	if prev, ok := h.conns[conn.SeatID]; ok {
		prev.shut()
	}
	h.conns[conn.SeatID] = conn
}

// detach drops a connection, removing the hub when it empties. A newer connection
// for the same seat is left alone.
func (cs *CoreServer) detach(roomID uuid.UUID, conn *seatConn) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	h, ok := cs.hubs[roomID]
	if !ok {
		return
	}
	if cur, ok := h.conns[conn.SeatID]; ok && cur == conn {
		delete(h.conns, conn.SeatID)
		conn.shut()
	}
	if len(h.conns) == 0 && !h.pumping {
		delete(cs.hubs, roomID)
	}
}

// broadcast fans a frame out to every connection in the room.
func (cs *CoreServer) broadcast(roomID uuid.UUID, msg map[string]interface{}) {
	cs.mu.Lock()
	h, ok := cs.hubs[roomID]
	if !ok {
		cs.mu.Unlock()
		return
	}
	conns := make([]*seatConn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	cs.mu.Unlock()

	for _, c := range conns {
		c.send(msg)
	}
}

// startSnapshotPump drains the worker's snapshot channel into the room hub for the
// lifetime of one game. At most one pump runs per room.
func (cs *CoreServer) startSnapshotPump(logger *logrus.Logger, roomID uuid.UUID, w *room.Worker) {
	cs.mu.Lock()
	h, ok := cs.hubs[roomID]
	if !ok {
		h = &roomHub{conns: make(map[uuid.UUID]*seatConn)}
		cs.hubs[roomID] = h
	}
	if h.pumping {
		cs.mu.Unlock()
		return
	}
	h.pumping = true
	cs.mu.Unlock()

	go func() {
		defer func() {
			cs.mu.Lock()
			if h, ok := cs.hubs[roomID]; ok {
				h.pumping = false
				if len(h.conns) == 0 {
					delete(cs.hubs, roomID)
				}
			}
			cs.mu.Unlock()
		}()
		for {
			select {
			case <-w.Done():
				logger.Infof("room %s: snapshot pump stopped", roomID)
				return
			case snap := <-w.Snapshots():
				cs.broadcast(roomID, map[string]interface{}{
					"type":     "snapshot",
					"snapshot": snap,
				})
			}
		}
	}()
}
