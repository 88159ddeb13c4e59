package system

import (
	"time"

	"github.com/honeyhive/server/internal/core/event"
	coresys "github.com/honeyhive/server/internal/core/system"
	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/present"
	"github.com/honeyhive/server/internal/progression"
	"go.uber.org/zap"
)

// LevelSystem raises the user level from lifetime pollen and fires one cue per
// level gained. Phase 3 (PostUpdate), after motion.
type LevelSystem struct {
	level     *progression.Controller
	model     *economy.Model
	presenter present.Presenter
	bus       *event.Bus
	log       *zap.Logger
	onLevel   func(gained int) // reveal and lock refresh
}

func NewLevelSystem(level *progression.Controller, model *economy.Model, p present.Presenter, bus *event.Bus, log *zap.Logger, onLevel func(int)) *LevelSystem {
	return &LevelSystem{level: level, model: model, presenter: p, bus: bus, log: log, onLevel: onLevel}
}

func (s *LevelSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LevelSystem) Update(_ time.Duration) {
	from := s.level.Level()
	lifetime := s.model.PollenLifetime()
	gained := s.level.CheckLevelUp(lifetime)
	if gained == 0 {
		return
	}
	for l := from + 1; l <= from+gained; l++ {
		s.presenter.LevelUp(l)
		event.Emit(s.bus, event.LevelReached{Level: l, PollenLifetime: lifetime})
	}
	s.log.Info("level up",
		zap.Int("level", s.level.Level()),
		zap.Int("gained", gained),
		zap.Float64("pollen_lifetime", lifetime),
	)
	if s.onLevel != nil {
		s.onLevel(gained)
	}
}
