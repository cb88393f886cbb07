// internal/models/identity.go
package models

import "github.com/google/uuid"

// SeatIdentity is the verified identity the auth layer hands to registry operations:
// an opaque id plus a display name. The core never inspects credentials.
type SeatIdentity struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
