package system

import (
	"time"

	coresys "github.com/honeyhive/server/internal/core/system"
	"github.com/honeyhive/server/internal/economy"
)

// ProductionSystem credits resources for the elapsed simulated time.
// Phase 2 (Update).
type ProductionSystem struct {
	model *economy.Model
	last  economy.Yield
}

func NewProductionSystem(model *economy.Model) *ProductionSystem {
	return &ProductionSystem{model: model}
}

func (s *ProductionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ProductionSystem) Update(dt time.Duration) {
	s.last = s.model.ApplyProduction(dt.Seconds())
}

// LastYield is what the most recent tick produced.
func (s *ProductionSystem) LastYield() economy.Yield { return s.last }
