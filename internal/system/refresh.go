package system

import (
	"time"

	coresys "github.com/honeyhive/server/internal/core/system"
)

// RefreshSystem pushes the resource bar and card views once per tick.
// Phase 4 (Output).
type RefreshSystem struct {
	refresh func()
}

func NewRefreshSystem(refresh func()) *RefreshSystem {
	return &RefreshSystem{refresh: refresh}
}

func (s *RefreshSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RefreshSystem) Update(_ time.Duration) {
	s.refresh()
}
