package system

import (
	"time"

	coresys "github.com/honeyhive/server/internal/core/system"
	"github.com/honeyhive/server/internal/present"
	"github.com/honeyhive/server/internal/world"
)

// MotionSystem advances creature orbits on the simulation clock and pushes
// positions to the presenter whenever they moved. Phase 3 (PostUpdate).
type MotionSystem struct {
	hive      *world.Hive
	speed     func() float64
	presenter present.Presenter
}

func NewMotionSystem(hive *world.Hive, speed func() float64, p present.Presenter) *MotionSystem {
	return &MotionSystem{hive: hive, speed: speed, presenter: p}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MotionSystem) Update(dt time.Duration) {
	if s.hive.Advance(dt, s.speed()) == 0 || s.hive.Len() == 0 {
		return
	}
	placements := s.hive.Placements()
	views := make([]present.EntityView, 0, len(placements))
	for _, p := range placements {
		views = append(views, present.EntityView{
			Handle: present.Handle(p.Handle),
			Kind:   p.Kind,
			X:      p.X,
			Y:      p.Y,
			Z:      p.Z,
		})
	}
	s.presenter.MoveEntities(views)
}
