// internal/room/registry_test.go
package room

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozyri-game/kozyri-server/internal/models"
)

// fakeClock is an injectable, manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func seatNamed(name string) models.SeatIdentity {
	return models.SeatIdentity{ID: uuid.New(), Name: name}
}

func newTestRegistry(clock *fakeClock) *Registry {
	return NewRegistry(
		WithClock(clock.Now),
		WithRand(rand.New(rand.NewSource(11))),
	)
}

func TestCreateRoomAssignsUniqueCodes(t *testing.T) {
	reg := newTestRegistry(newFakeClock())

	codes := map[string]bool{}
	for i := 0; i < 50; i++ {
		rm, err := reg.CreateRoom(seatNamed(fmt.Sprintf("host%d", i)), CreateConfig{Name: "table"})
		require.NoError(t, err)
		require.Len(t, rm.Code, 6)
		for _, ch := range rm.Code {
			assert.Contains(t, codeAlphabet, string(ch))
		}
		assert.False(t, codes[rm.Code], "duplicate code %s", rm.Code)
		codes[rm.Code] = true

		assert.Equal(t, StatusWaiting, rm.Status)
		require.Len(t, rm.Seats, 1)
		assert.True(t, rm.Seats[0].IsHost)
	}
}

func TestCreateRoomWithPinnedID(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	id := uuid.New()

	_, err := reg.CreateRoom(seatNamed("a"), CreateConfig{ID: id})
	require.NoError(t, err)
	_, err = reg.CreateRoom(seatNamed("b"), CreateConfig{ID: id})
	assert.ErrorIs(t, err, ErrDuplicateRoomID)
}

func TestJoinRoomByCodeCaseInsensitive(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	rm, err := reg.CreateRoom(seatNamed("host"), CreateConfig{})
	require.NoError(t, err)

	joined, err := reg.JoinRoom(rm.Code, seatNamed("guest"), "")
	require.NoError(t, err)
	assert.Equal(t, rm.ID, joined.ID)

	lower, err := reg.JoinRoom(strings.ToLower(rm.Code), seatNamed("other"), "")
	require.NoError(t, err)
	assert.Equal(t, rm.ID, lower.ID)
	assert.Len(t, rm.Seats, 3)
}

func TestJoinRoomErrors(t *testing.T) {
	reg := newTestRegistry(newFakeClock())

	_, err := reg.JoinRoom("ZZZZZZ", seatNamed("x"), "")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	rm, err := reg.CreateRoom(seatNamed("host"), CreateConfig{Password: "sekret"})
	require.NoError(t, err)

	_, err = reg.JoinRoom(rm.ID.String(), seatNamed("x"), "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Len(t, rm.Seats, 1, "failed join must not seat anyone")

	guest := seatNamed("guest")
	_, err = reg.JoinRoom(rm.ID.String(), guest, "sekret")
	require.NoError(t, err)
	_, err = reg.JoinRoom(rm.ID.String(), guest, "sekret")
	assert.ErrorIs(t, err, ErrAlreadyMember)

	// Default capacity is four seats.
	for i := 0; i < 2; i++ {
		_, err = reg.JoinRoom(rm.ID.String(), seatNamed(fmt.Sprintf("g%d", i)), "sekret")
		require.NoError(t, err)
	}
	_, err = reg.JoinRoom(rm.ID.String(), seatNamed("late"), "sekret")
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Len(t, rm.Seats, 4, "rejected join must not change membership")
}

func TestLeaveRoomHostMigration(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	host := seatNamed("host")
	rm, err := reg.CreateRoom(host, CreateConfig{})
	require.NoError(t, err)

	second := seatNamed("second")
	third := seatNamed("third")
	_, err = reg.JoinRoom(rm.ID.String(), second, "")
	require.NoError(t, err)
	_, err = reg.JoinRoom(rm.ID.String(), third, "")
	require.NoError(t, err)

	deleted, err := reg.LeaveRoom(rm.ID, host.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Host moves to the earliest-joined remaining seat, deterministically.
	assert.Equal(t, second.ID, rm.HostID)
	assert.True(t, rm.Seats[0].IsHost)
}

func TestLeaveRoomLastSeatDeletes(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	host := seatNamed("host")
	rm, err := reg.CreateRoom(host, CreateConfig{})
	require.NoError(t, err)

	deleted, err := reg.LeaveRoom(rm.ID, host.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, ok := reg.GetRoom(rm.ID)
	assert.False(t, ok)
	_, ok = reg.GetRoomByCode(rm.Code)
	assert.False(t, ok, "deleted room must release its code")
}

func TestLeaveRoomNotMember(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	rm, err := reg.CreateRoom(seatNamed("host"), CreateConfig{})
	require.NoError(t, err)

	_, err = reg.LeaveRoom(rm.ID, uuid.New())
	assert.ErrorIs(t, err, ErrSeatNotInRoom)
	assert.Len(t, rm.Seats, 1)
}

func TestBotsDoNotHoldARoomOpen(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	host := seatNamed("host")
	rm, err := reg.CreateRoom(host, CreateConfig{})
	require.NoError(t, err)

	_, err = reg.AddBot(rm.ID, host.ID, "", models.DifficultyEasy)
	require.NoError(t, err)

	deleted, err := reg.LeaveRoom(rm.ID, host.ID)
	require.NoError(t, err)
	assert.True(t, deleted, "a room of only bots is empty")
}

func TestSetRoomCode(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	a, err := reg.CreateRoom(seatNamed("a"), CreateConfig{})
	require.NoError(t, err)
	b, err := reg.CreateRoom(seatNamed("b"), CreateConfig{})
	require.NoError(t, err)

	require.NoError(t, reg.SetRoomCode(a.ID, "games1"))
	assert.Equal(t, "GAMES1", a.Code)

	got, ok := reg.GetRoomByCode("GAMES1")
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID)

	assert.ErrorIs(t, reg.SetRoomCode(b.ID, "games1"), ErrCodeInUse)
	assert.NoError(t, reg.SetRoomCode(a.ID, "games1"), "a room may keep its own code")
}

func TestListPublicSkipsPrivate(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	_, err := reg.CreateRoom(seatNamed("a"), CreateConfig{Name: "open"})
	require.NoError(t, err)
	_, err = reg.CreateRoom(seatNamed("b"), CreateConfig{Name: "hidden", Private: true})
	require.NoError(t, err)

	list := reg.ListPublic()
	require.Len(t, list, 1)
	assert.Equal(t, "open", list[0].Name)
}

func TestCleanupIdleWaitingRooms(t *testing.T) {
	clock := newFakeClock()
	reg := newTestRegistry(clock)

	idleRoom, err := reg.CreateRoom(seatNamed("idle"), CreateConfig{})
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	freshRoom, err := reg.CreateRoom(seatNamed("fresh"), CreateConfig{})
	require.NoError(t, err)

	clock.Advance(6 * time.Minute) // idleRoom at 16m, freshRoom at 6m
	removed := reg.Cleanup(15 * time.Minute)
	assert.Equal(t, 1, removed)

	_, ok := reg.GetRoom(idleRoom.ID)
	assert.False(t, ok)
	_, ok = reg.GetRoom(freshRoom.ID)
	assert.True(t, ok)
}

func TestCleanupSparesPlayingRooms(t *testing.T) {
	clock := newFakeClock()
	reg := newTestRegistry(clock)

	rm := startedRoom(t, reg)

	clock.Advance(24 * time.Hour)
	removed := reg.Cleanup(15 * time.Minute)
	assert.Equal(t, 0, removed, "idle time alone never removes a playing room")

	_, ok := reg.GetRoom(rm.ID)
	assert.True(t, ok)
}

// startedRoom creates a room with a human host and three bots and starts its game.
func startedRoom(t *testing.T, reg *Registry) *Room {
	t.Helper()
	host := seatNamed("host")
	rm, err := reg.CreateRoom(host, CreateConfig{})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = reg.AddBot(rm.ID, host.ID, "", models.DifficultyEasy)
		require.NoError(t, err)
	}
	require.NoError(t, reg.SetReady(rm.ID, host.ID, true))
	w, err := reg.StartGame(rm.ID, host.ID)
	require.NoError(t, err)
	require.NotNil(t, w)
	t.Cleanup(w.Stop)
	assert.Equal(t, StatusPlaying, rm.Status)
	return rm
}

func TestStartGameRequirements(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	host := seatNamed("host")
	rm, err := reg.CreateRoom(host, CreateConfig{})
	require.NoError(t, err)

	_, err = reg.StartGame(rm.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotHost)

	_, err = reg.StartGame(rm.ID, host.ID)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	for i := 0; i < 3; i++ {
		_, err = reg.AddBot(rm.ID, host.ID, "", models.DifficultyMedium)
		require.NoError(t, err)
	}

	// Bots are born ready; the human host is not.
	_, err = reg.StartGame(rm.ID, host.ID)
	assert.ErrorIs(t, err, ErrNotAllReady)

	require.NoError(t, reg.SetReady(rm.ID, host.ID, true))
	w, err := reg.StartGame(rm.ID, host.ID)
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	assert.Equal(t, StatusPlaying, rm.Status)
	assert.Equal(t, 52, rm.Session.CardTotal())
}

func TestAddBotGuards(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	host := seatNamed("host")
	rm, err := reg.CreateRoom(host, CreateConfig{})
	require.NoError(t, err)

	guest := seatNamed("guest")
	_, err = reg.JoinRoom(rm.ID.String(), guest, "")
	require.NoError(t, err)

	_, err = reg.AddBot(rm.ID, guest.ID, "", models.DifficultyEasy)
	assert.ErrorIs(t, err, ErrNotHost)

	_, err = reg.AddBot(rm.ID, host.ID, "", "brutal")
	assert.Error(t, err)

	b, err := reg.AddBot(rm.ID, host.ID, "", models.DifficultyHard)
	require.NoError(t, err)
	assert.True(t, b.Ready, "bots are always ready")

	require.NoError(t, reg.RemoveBot(rm.ID, host.ID, b.ID))
	assert.ErrorIs(t, reg.RemoveBot(rm.ID, host.ID, guest.ID), ErrSeatNotInRoom,
		"only bot seats can be removed this way")
}

func TestLeaveRoomDuringGameForfeitsSeat(t *testing.T) {
	reg := newTestRegistry(newFakeClock())
	host := seatNamed("host")
	rm, err := reg.CreateRoom(host, CreateConfig{})
	require.NoError(t, err)
	guest := seatNamed("guest")
	_, err = reg.JoinRoom(rm.Code, guest, "")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = reg.AddBot(rm.ID, host.ID, "", models.DifficultyEasy)
		require.NoError(t, err)
	}
	require.NoError(t, reg.SetReady(rm.ID, host.ID, true))
	require.NoError(t, reg.SetReady(rm.ID, guest.ID, true))
	w, err := reg.StartGame(rm.ID, host.ID)
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	deleted, err := reg.LeaveRoom(rm.ID, guest.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "one human remains")

	// The roster shrinks, but the session keeps its full seat list: the departed
	// seat stays, marked forfeited, and no seat appears twice.
	assert.Len(t, rm.Seats, 3)
	snap := rm.Session.Snapshot()
	require.Len(t, snap.Seats, 4)
	seen := map[uuid.UUID]bool{}
	for _, sv := range snap.Seats {
		assert.False(t, seen[sv.ID], "seat %s listed twice", sv.ID)
		seen[sv.ID] = true
		if sv.ID == guest.ID {
			assert.True(t, sv.Forfeited, "departed seat was not forfeited")
		}
	}
	assert.True(t, seen[guest.ID], "departed seat vanished from the session")
	assert.Equal(t, 52, rm.Session.CardTotal())
}
