package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain presenter commands
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: resource production
	PhasePostUpdate              // 3: orbits, level-ups, achievements
	PhaseOutput                  // 4: refresh presenter views
	PhasePersist                 // 5: autosave
	PhaseCleanup                 // 6: destroy queued entities
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
