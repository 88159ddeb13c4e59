package game

import (
	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/present"
	"github.com/honeyhive/server/internal/world"
)

// herd spawns creatures in the roster and mirrors them on the presenter.
type herd struct {
	hive      *world.Hive
	presenter present.Presenter
}

func (h *herd) Spawn(k economy.Kind) {
	id := h.hive.Spawn(k)
	if id.IsZero() {
		return
	}
	handle := h.presenter.Spawn(k)
	h.hive.Attach(id, uint64(handle))
}

func (h *herd) ScaleSpeeds(factor float64) {
	h.hive.ScaleSpeeds(factor)
}
