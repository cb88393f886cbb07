// internal/room/codes.go
package room

import (
	"math/rand"
	"strings"
)

// Room codes are short, human-shareable, case-insensitive, and unique across all live
// rooms. The alphabet drops 0/O/1/I so codes survive being read out loud.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// newCode generates one candidate code. Collision checks happen in the registry, which
// regenerates until the code is free among live rooms.
func newCode(rng *rand.Rand) string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[rng.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// normalizeCode upper-cases a caller-supplied code for lookup and storage.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
