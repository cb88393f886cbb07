// internal/game/stage.go
package game

// Stage is the closed set of states a session moves through. Transitions only ever go
// forward; Finished is terminal.
type Stage int

const (
	StageInit Stage = iota
	StageDealing
	StageGather  // reveal-and-place accumulation
	StageCombat  // attack/defend trick-taking
	StageEndgame // combat with the accelerated cadence, no pile-on
	StageFinished
)

var stageNames = map[Stage]string{
	StageInit:     "init",
	StageDealing:  "dealing",
	StageGather:   "gather",
	StageCombat:   "combat",
	StageEndgame:  "endgame",
	StageFinished: "finished",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "unknown"
}

// InPlay reports whether the stage has exactly one current seat.
func (s Stage) InPlay() bool {
	return s == StageGather || s == StageCombat || s == StageEndgame
}

// IsCombat reports whether attack/defend legality rules apply.
func (s Stage) IsCombat() bool {
	return s == StageCombat || s == StageEndgame
}
