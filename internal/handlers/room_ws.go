// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/game"
	"github.com/kozyri-game/kozyri-server/internal/middleware"
	"github.com/kozyri-game/kozyri-server/internal/models"
	"github.com/kozyri-game/kozyri-server/internal/room"
	"github.com/sirupsen/logrus"
)

// RoomWSHandler is the ephemeral in-memory WS flow: one socket per seat per room.
// Moves submitted here run through the room's serialized worker; rejections go back
// to the sender only, accepted moves fan out as snapshots.
func RoomWSHandler(logger *logrus.Logger, cs *CoreServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		ref := strings.TrimPrefix(r.URL.Path, "/rooms/ws/")
		if idx := strings.Index(ref, "/"); idx != -1 {
			ref = ref[:idx]
		}
		if ref == "" {
			http.Error(w, "missing room reference", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"kozyri"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "kozyri" {
			c.Close(BadSubprotocolError, "client must speak the kozyri subprotocol")
			return
		}

		seat, err := EnsureSeatIdentity(w, r)
		if err != nil {
			logger.Warnf("seat authentication failed for room %s: %v", ref, err)
			c.Close(InvalidAuthTokenError, "authentication failed")
			return
		}

		rm, err := cs.Registry.JoinRoom(ref, seat, r.URL.Query().Get("password"))
		if errors.Is(err, room.ErrAlreadyMember) {
			// Reconnect: the seat is still in the room, just re-resolve it.
			rm, err = lookupRoom(cs, ref)
		}
		if err != nil {
			if errors.Is(err, room.ErrRoomNotFound) {
				c.Close(InvalidRoomRefError, "room does not exist")
			} else {
				c.Close(RoomJoinRefusedError, errCode(err))
			}
			return
		}

		conn := &seatConn{
			SeatID: seat.ID,
			Out:    make(chan map[string]interface{}, 32),
		}
		cs.attach(rm.ID, conn)
		middleware.LogWebSocketConnect(logger, remoteAddr, r.URL.Path)
		logger.Infof("seat %v connected to room %v", seat.ID, rm.ID)

		cs.broadcast(rm.ID, map[string]interface{}{
			"type": "seat_joined",
			"seat": map[string]interface{}{"id": seat.ID.String(), "name": seat.Name},
			"room": rm,
		})

		// A game may already be running on reconnect; make sure its frames reach us.
		if w := cs.Registry.WorkerFor(rm.ID); w != nil {
			cs.startSnapshotPump(logger, rm.ID, w)
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go roomWritePump(ctx, c, conn, logger)
		roomReadPump(ctx, c, cs, rm.ID, seat, conn, logger)

		cs.detach(rm.ID, conn)
		cs.broadcast(rm.ID, map[string]interface{}{
			"type":   "seat_disconnected",
			"seatId": seat.ID.String(),
		})
		middleware.LogWebSocketDisconnect(logger, remoteAddr, r.URL.Path, nil)
	}
}

// lookupRoom resolves a room by id or code.
func lookupRoom(cs *CoreServer, ref string) (*room.Room, error) {
	if id, err := uuid.Parse(ref); err == nil {
		if rm, ok := cs.Registry.GetRoom(id); ok {
			return rm, nil
		}
	}
	if rm, ok := cs.Registry.GetRoomByCode(ref); ok {
		return rm, nil
	}
	return nil, room.ErrRoomNotFound
}

// roomReadPump handles incoming frames until the socket closes or the seat leaves.
func roomReadPump(ctx context.Context, c *websocket.Conn, cs *CoreServer, roomID uuid.UUID, seat models.SeatIdentity, conn *seatConn, logger *logrus.Logger) {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus != websocket.StatusNormalClosure && closeStatus != websocket.StatusGoingAway &&
				!strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("room %s: read error for seat %v: %v", roomID, seat.ID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var packet map[string]interface{}
		if err := json.Unmarshal(msg, &packet); err != nil {
			conn.WriteError("bad_json", "invalid JSON frame")
			continue
		}
		if leave := handleRoomFrame(packet, cs, roomID, seat, conn, logger); leave {
			return
		}
	}
}

// handleRoomFrame interprets the "type" field. Returns true when the seat left the
// room and the pump should exit.
func handleRoomFrame(packet map[string]interface{}, cs *CoreServer, roomID uuid.UUID, seat models.SeatIdentity, conn *seatConn, logger *logrus.Logger) bool {
	action, _ := packet["type"].(string)
	switch action {
	case "ready", "unready":
		if err := cs.Registry.SetReady(roomID, seat.ID, action == "ready"); err != nil {
			conn.WriteError(errCode(err), err.Error())
			return false
		}
		cs.broadcastRoomState(roomID)

	case "add_bot":
		name, _ := packet["name"].(string)
		tier, _ := packet["difficulty"].(string)
		if _, err := cs.Registry.AddBot(roomID, seat.ID, name, models.Difficulty(tier)); err != nil {
			conn.WriteError(errCode(err), err.Error())
			return false
		}
		cs.broadcastRoomState(roomID)

	case "remove_bot":
		botIDStr, _ := packet["botId"].(string)
		botID, err := uuid.Parse(botIDStr)
		if err != nil {
			conn.WriteError("bad_request", "invalid botId")
			return false
		}
		if err := cs.Registry.RemoveBot(roomID, seat.ID, botID); err != nil {
			conn.WriteError(errCode(err), err.Error())
			return false
		}
		cs.broadcastRoomState(roomID)

	case "start_game":
		w, err := cs.Registry.StartGame(roomID, seat.ID)
		if err != nil {
			conn.WriteError(errCode(err), err.Error())
			return false
		}
		cs.startSnapshotPump(logger, roomID, w)
		cs.broadcast(roomID, map[string]interface{}{"type": "game_start"})

	case "move":
		w := cs.Registry.WorkerFor(roomID)
		if w == nil {
			conn.WriteError("game_not_in_progress", "no game is running in this room")
			return false
		}
		mv := game.Move{Seat: seat.ID}
		kind, _ := packet["kind"].(string)
		mv.Kind = game.MoveKind(kind)
		if targetStr, ok := packet["target"].(string); ok && targetStr != "" {
			target, err := uuid.Parse(targetStr)
			if err != nil {
				conn.WriteError("bad_request", "invalid target seat id")
				return false
			}
			mv.Target = target
		}
		mv.Card, _ = packet["card"].(string)
		if err := w.Submit(mv); err != nil {
			conn.WriteError(errCode(err), err.Error())
		}

	case "chat":
		// Relayed only, never stored.
		msg, _ := packet["msg"].(string)
		if msg != "" {
			cs.broadcast(roomID, map[string]interface{}{
				"type": "chat",
				"from": seat.ID.String(),
				"name": seat.Name,
				"msg":  msg,
			})
		}

	case "leave_room":
		if _, err := cs.Registry.LeaveRoom(roomID, seat.ID); err != nil {
			conn.WriteError(errCode(err), err.Error())
			return false
		}
		cs.broadcastRoomState(roomID)
		return true

	default:
		conn.WriteError("unknown_type", "unknown frame type: "+action)
	}
	return false
}

// broadcastRoomState pushes the full room document to everyone in it.
func (cs *CoreServer) broadcastRoomState(roomID uuid.UUID) {
	rm, ok := cs.Registry.GetRoom(roomID)
	if !ok {
		return
	}
	cs.broadcast(roomID, map[string]interface{}{
		"type": "room_update",
		"room": rm,
	})
}

// roomWritePump drains the seat's outbound channel onto the socket and keeps the
// connection alive with periodic pings.
func roomWritePump(ctx context.Context, c *websocket.Conn, conn *seatConn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.Out:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing frame for seat %v: %v", conn.SeatID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for seat %v: %v", conn.SeatID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("failed to ping seat %v: %v, assuming disconnect", conn.SeatID, err)
				return
			}
		}
	}
}
