// internal/bot/factory.go
package bot

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kozyri-game/kozyri-server/internal/models"
)

// New creates a brain for the given tier. A nil rng gets a time-seeded source.
func New(tier models.Difficulty, rng *rand.Rand) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch tier {
	case models.DifficultyEasy:
		return &EasyBrain{rng: rng}, nil
	case models.DifficultyMedium:
		return &MediumBrain{rng: rng}, nil
	case models.DifficultyHard:
		return &HardBrain{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown bot difficulty %q", tier)
	}
}

// Thinking delay bounds per tier; presentation pacing only, never part of legality.
var thinkBounds = map[models.Difficulty][2]time.Duration{
	models.DifficultyEasy:   {300 * time.Millisecond, 700 * time.Millisecond},
	models.DifficultyMedium: {600 * time.Millisecond, 1300 * time.Millisecond},
	models.DifficultyHard:   {900 * time.Millisecond, 1900 * time.Millisecond},
}

// ThinkDelay returns a bounded artificial delay scaled by difficulty. Callers schedule
// the decided move after this duration; the engine itself never sleeps.
func ThinkDelay(tier models.Difficulty, rng *rand.Rand) time.Duration {
	b, ok := thinkBounds[tier]
	if !ok {
		b = thinkBounds[models.DifficultyEasy]
	}
	if rng == nil {
		return b[0]
	}
	return b[0] + time.Duration(rng.Int63n(int64(b[1]-b[0])))
}
