package purchase

import (
	"testing"

	"github.com/honeyhive/server/internal/core/event"
	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/progression"
	"github.com/honeyhive/server/internal/present"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHerd struct {
	spawned []economy.Kind
	scales  []float64
}

func (h *fakeHerd) Spawn(k economy.Kind)       { h.spawned = append(h.spawned, k) }
func (h *fakeHerd) ScaleSpeeds(factor float64) { h.scales = append(h.scales, factor) }

type fixture struct {
	engine    *Engine
	model     *economy.Model
	level     *progression.Controller
	herd      *fakeHerd
	rec       *present.Recorder
	bus       *event.Bus
	refreshes int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := data.LoadUpgradeTable("../../data/yaml/upgrade_list.yaml")
	require.NoError(t, err)
	f := &fixture{
		model: economy.NewModel(economy.DefaultRates(), cat.Curves()),
		level: progression.New(progression.DefaultCurve(), cat),
		herd:  &fakeHerd{},
		rec:   present.NewRecorder(),
		bus:   event.NewBus(),
	}
	f.engine = NewEngine(Deps{
		Catalog: cat,
		Model:   f.model,
		Gate:    f.level,
		Herd:    f.herd,
		Speed:   f.rec,
		Bus:     f.bus,
		Refresh: func() { f.refreshes++ },
	})
	return f
}

func TestBuy_FirstBeeIsFree(t *testing.T) {
	f := newFixture(t)
	cost, _ := f.model.Cost(economy.Bee)
	assert.Equal(t, 0.0, cost)

	assert.Equal(t, Purchased, f.engine.Buy(economy.Bee))

	assert.Equal(t, 1, f.model.Owned(economy.Bee))
	cost, _ = f.model.Cost(economy.Bee)
	assert.Equal(t, 20.0, cost)
	assert.Equal(t, []economy.Kind{economy.Bee}, f.herd.spawned)
	assert.Equal(t, 1, f.refreshes)
}

func TestBuy_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	f.model.Restore(economy.State{Pollen: 10, Owned: map[economy.Kind]int{economy.Bee: 1}})

	out := f.engine.Buy(economy.Bee)

	assert.Equal(t, InsufficientFunds, out)
	assert.False(t, out.OK())
	assert.Equal(t, 10.0, f.model.Pollen())
	assert.Equal(t, 1, f.model.Owned(economy.Bee))
	assert.Empty(t, f.herd.spawned)
	assert.Zero(t, f.refreshes)
	assert.Zero(t, f.bus.Pending())
}

func TestBuy_LockedIsSilentAndFree(t *testing.T) {
	f := newFixture(t)
	f.model.Restore(economy.State{Pollen: 1e6, Nectar: 1e6})

	assert.Equal(t, Locked, f.engine.Buy(economy.Wasp))
	assert.Equal(t, 1e6, f.model.Pollen())
	assert.Zero(t, f.model.Owned(economy.Wasp))

	f.level.Restore(2, 0)
	assert.Equal(t, Purchased, f.engine.Buy(economy.Wasp))
	assert.Equal(t, 1e6-100, f.model.Pollen())
}

func TestBuy_UnknownKind(t *testing.T) {
	f := newFixture(t)
	f.model.Restore(economy.State{Pollen: 1e6})

	assert.Equal(t, UnknownKind, f.engine.Buy(economy.Kind("bear")))
	assert.Equal(t, 1e6, f.model.Pollen())
	assert.Zero(t, f.refreshes)
}

func TestBuy_LevelKindsDoNotSpawn(t *testing.T) {
	f := newFixture(t)
	f.level.Restore(5, 0)
	f.model.Restore(economy.State{Nectar: 100})

	assert.Equal(t, Purchased, f.engine.Buy(economy.Production))

	assert.Equal(t, 1, f.model.ProdLevel())
	assert.Equal(t, 0.0, f.model.Nectar())
	assert.Empty(t, f.herd.spawned)
	assert.Empty(t, f.herd.scales)
}

func TestBuy_HiveScalesOrbitsAndSpeed(t *testing.T) {
	f := newFixture(t)
	f.level.Restore(7, 0)
	f.model.Restore(economy.State{Nectar: 5000})

	assert.Equal(t, Purchased, f.engine.Buy(economy.Hive))

	assert.Equal(t, []float64{1.05}, f.herd.scales)
	assert.Equal(t, 1, f.rec.SpeedSets)
	assert.InDelta(t, 1.05, f.rec.Speed(), 1e-12)

	require.Equal(t, Purchased, f.engine.Buy(economy.Hive))
	assert.InDelta(t, 1.10, f.rec.Speed(), 1e-12, "installed multiplier follows the hive level")
}

func TestBuy_EmitsPurchaseCompleted(t *testing.T) {
	f := newFixture(t)
	var got []event.PurchaseCompleted
	event.Subscribe(f.bus, func(e event.PurchaseCompleted) { got = append(got, e) })

	f.engine.Buy(economy.Bee)
	f.bus.SwapBuffers()
	f.bus.DispatchAll()

	require.Len(t, got, 1)
	assert.Equal(t, event.PurchaseCompleted{Kind: economy.Bee, Resource: economy.Pollen, Cost: 0, Owned: 1}, got[0])
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "purchased", Purchased.String())
	assert.Equal(t, "locked", Locked.String())
	assert.True(t, Purchased.OK())
	assert.False(t, UnknownKind.OK())
}
