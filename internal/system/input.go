package system

import (
	"time"

	coresys "github.com/honeyhive/server/internal/core/system"
	"github.com/honeyhive/server/internal/present"
)

// InputSystem drains queued player commands and hands them to the session.
// Phase 0 (Input).
type InputSystem struct {
	source     present.CommandSource
	handle     func(present.Command)
	maxPerTick int
}

func NewInputSystem(source present.CommandSource, handle func(present.Command), maxPerTick int) *InputSystem {
	if maxPerTick < 1 {
		maxPerTick = 1
	}
	return &InputSystem{source: source, handle: handle, maxPerTick: maxPerTick}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	for _, cmd := range s.source.Drain(s.maxPerTick) {
		s.handle(cmd)
	}
}
