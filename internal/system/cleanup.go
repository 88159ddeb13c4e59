package system

import (
	"time"

	"github.com/honeyhive/server/internal/core/ecs"
	coresys "github.com/honeyhive/server/internal/core/system"
)

// CleanupSystem removes creatures queued for destruction (new game, reload)
// once every other phase has run. Phase 6 (Cleanup).
type CleanupSystem struct {
	world   *ecs.World
	removed int
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.world.Pending(); n > 0 {
		s.removed += n
		s.world.FlushDestroyQueue()
	}
}

// Removed is the number of entities destroyed so far.
func (s *CleanupSystem) Removed() int { return s.removed }
