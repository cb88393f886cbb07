// internal/handlers/core_server.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/kozyri-game/kozyri-server/internal/room"
)

// CoreServer is the high-level struct the HTTP and WebSocket handlers hang off: the
// room registry plus the per-room connection hubs used for fan-out.
type CoreServer struct {
	Registry *room.Registry

	mu   sync.Mutex
	hubs map[uuid.UUID]*roomHub
}

func NewCoreServer(reg *room.Registry) *CoreServer {
	return &CoreServer{
		Registry: reg,
		hubs:     make(map[uuid.UUID]*roomHub),
	}
}
