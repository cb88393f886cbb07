// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used within the room handlers. These provide more
// specific reasons for closure than standard codes.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Provided auth token was invalid or expired.
	InvalidRoomRefError   = 3002 // Target room id or code in the WS URL does not resolve.
	RoomJoinRefusedError  = 3003 // Room exists but refused the seat (full, wrong password, in game).
)
