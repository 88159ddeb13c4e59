// Package purchase validates and applies upgrade purchases. Every kind goes
// through the same path; behaviour differences come from the catalog entry.
package purchase

import (
	"github.com/honeyhive/server/internal/core/event"
	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/economy"
	"go.uber.org/zap"
)

// Outcome is the result of a Buy call.
type Outcome int

const (
	Purchased Outcome = iota
	InsufficientFunds
	Locked
	UnknownKind
)

// OK reports whether the purchase went through.
func (o Outcome) OK() bool { return o == Purchased }

func (o Outcome) String() string {
	switch o {
	case Purchased:
		return "purchased"
	case InsufficientFunds:
		return "insufficient_funds"
	case Locked:
		return "locked"
	case UnknownKind:
		return "unknown_kind"
	}
	return "invalid"
}

// Gate reports whether a kind is locked at the current level.
type Gate interface {
	IsLocked(k economy.Kind) bool
}

// Herd owns the mobile creatures a purchase may add or speed up.
type Herd interface {
	Spawn(k economy.Kind)
	ScaleSpeeds(factor float64)
}

// SpeedSink receives the hive speed multiplier after a hive purchase.
type SpeedSink interface {
	SetSpeedMultiplier(fn func() float64)
}

// Deps holds the collaborators of the purchase engine.
type Deps struct {
	Catalog *data.UpgradeTable
	Model   *economy.Model
	Gate    Gate
	Herd    Herd
	Speed   SpeedSink
	Bus     *event.Bus
	Log     *zap.Logger
	Refresh func() // full view refresh after a purchase
}

// Engine applies purchases. Accessed only from the game loop goroutine.
type Engine struct {
	deps Deps
}

func NewEngine(deps Deps) *Engine {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Engine{deps: deps}
}

// Buy attempts to purchase one unit of k. Nothing is mutated unless the
// outcome is Purchased.
func (e *Engine) Buy(k economy.Kind) Outcome {
	d := &e.deps
	u := d.Catalog.Get(k)
	if u == nil {
		d.Log.Warn("purchase of unknown upgrade kind", zap.String("kind", string(k)))
		return UnknownKind
	}
	if d.Gate != nil && d.Gate.IsLocked(k) {
		return Locked
	}
	if _, ok := d.Model.Cost(k); !ok {
		d.Log.Warn("upgrade kind has no cost curve", zap.String("kind", string(k)))
		return UnknownKind
	}
	if !d.Model.CanAfford(k) {
		d.Log.Debug("purchase rejected: insufficient funds", zap.String("kind", string(k)))
		return InsufficientFunds
	}
	cost, ok := d.Model.Purchase(k)
	if !ok {
		return InsufficientFunds
	}

	if k.Mobile() && d.Herd != nil {
		d.Herd.Spawn(k)
	}
	if k == economy.Hive {
		if d.Herd != nil {
			d.Herd.ScaleSpeeds(d.Model.Rates().HiveOrbitFactor)
		}
		if d.Speed != nil {
			d.Speed.SetSpeedMultiplier(d.Model.HiveSpeedMultiplier)
		}
	}

	if d.Bus != nil {
		event.Emit(d.Bus, event.PurchaseCompleted{
			Kind:     k,
			Resource: u.Resource,
			Cost:     cost,
			Owned:    d.Model.Owned(k),
		})
	}
	d.Log.Debug("upgrade purchased",
		zap.String("kind", string(k)),
		zap.Float64("cost", cost),
		zap.Int("owned", d.Model.Owned(k)),
	)
	if d.Refresh != nil {
		d.Refresh()
	}
	return Purchased
}
