// internal/room/errors.go
package room

import "errors"

// Registry errors, grouped by class. All are local and recoverable: they are returned
// synchronously to the caller that issued the offending intent and affect nothing else.
var (
	// Capacity
	ErrRoomFull         = errors.New("room is full")
	ErrNotEnoughPlayers = errors.New("not enough players to start")

	// Identity
	ErrRoomNotFound  = errors.New("room not found")
	ErrSeatNotInRoom = errors.New("seat not in room")
	ErrAlreadyMember = errors.New("seat already in room")

	// Authorization
	ErrWrongPassword   = errors.New("wrong room password")
	ErrCodeInUse       = errors.New("room code already in use")
	ErrDuplicateRoomID = errors.New("room id already exists")
	ErrNotHost         = errors.New("seat is not the room host")

	// Protocol
	ErrRoomNotJoinable = errors.New("room is not joinable")
	ErrNotAllReady     = errors.New("not every seat is ready")
	ErrInvalidRules    = errors.New("invalid room rules")
)
