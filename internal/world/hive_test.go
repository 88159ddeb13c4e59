package world

import (
	"math"
	"testing"
	"time"

	"github.com/honeyhive/server/internal/core/ecs"
	"github.com/honeyhive/server/internal/economy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawn_OnlyMobileKinds(t *testing.T) {
	h := NewHive(ecs.NewWorld(), 1)

	assert.False(t, h.Spawn(economy.Bee).IsZero())
	assert.False(t, h.Spawn(economy.Rabbit).IsZero())
	assert.True(t, h.Spawn(economy.Hive).IsZero())
	assert.True(t, h.Spawn(economy.Production).IsZero())

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 1, h.Count(economy.Bee))
	assert.Equal(t, 0, h.Count(economy.Hive))
}

func TestScaleSpeeds(t *testing.T) {
	h := NewHive(ecs.NewWorld(), 7)
	a := h.Spawn(economy.Bee)
	b := h.Spawn(economy.Duck)
	oa, _ := h.Orbit(a)
	ob, _ := h.Orbit(b)
	sa, sb := oa.Speed, ob.Speed

	h.ScaleSpeeds(1.05)

	assert.InDelta(t, sa*1.05, oa.Speed, 1e-12)
	assert.InDelta(t, sb*1.05, ob.Speed, 1e-12)
}

func TestAdvance_UsesFixedSteps(t *testing.T) {
	h := NewHive(ecs.NewWorld(), 3)
	id := h.Spawn(economy.Bee)
	o, ok := h.Orbit(id)
	require.True(t, ok)
	start := o.Angle

	assert.Equal(t, 0, h.Advance(30*time.Millisecond, 1))
	assert.Equal(t, start, o.Angle, "partial step stays in the accumulator")

	assert.Equal(t, 1, h.Advance(30*time.Millisecond, 1))
	want := math.Mod(start+o.Speed*MotionStep.Seconds(), 2*math.Pi)
	assert.InDelta(t, want, o.Angle, 1e-12)

	assert.Equal(t, 20, h.Advance(time.Second, 2))
	assert.Equal(t, uint64(21), h.Steps())
	assert.Equal(t, 0, h.Advance(-time.Second, 1))
}

func TestAdvance_LargeDeltaIsOnePass(t *testing.T) {
	h := NewHive(ecs.NewWorld(), 5)
	for i := 0; i < 500; i++ {
		h.Spawn(economy.Bee)
	}
	id := h.Spawn(economy.Duck)
	o, _ := h.Orbit(id)
	start, speed := o.Angle, o.Speed

	began := time.Now()
	n := h.Advance(8*time.Hour+20*time.Millisecond, 1)
	elapsed := time.Since(began)

	assert.Equal(t, 576000, n)
	assert.Equal(t, uint64(576000), h.Steps())
	assert.Less(t, elapsed, time.Second)
	want := math.Mod(start+speed*(8*time.Hour).Seconds(), 2*math.Pi)
	assert.InDelta(t, want, o.Angle, 1e-6)
	assert.GreaterOrEqual(t, o.Angle, 0.0)
	assert.Less(t, o.Angle, 2*math.Pi)

	assert.Equal(t, 1, h.Advance(30*time.Millisecond, 1), "remainder stays in the accumulator")
}

func TestAdvance_SameSeedSameOrbits(t *testing.T) {
	run := func() []Placement {
		h := NewHive(ecs.NewWorld(), 42)
		for i := 0; i < 5; i++ {
			h.Spawn(economy.Bee)
		}
		h.Spawn(economy.Wasp)
		h.Advance(3*time.Second, 1.1)
		return h.Placements()
	}
	assert.Equal(t, run(), run())
}

func TestClear(t *testing.T) {
	w := ecs.NewWorld()
	h := NewHive(w, 1)
	id := h.Spawn(economy.Bee)
	h.Attach(id, 9)
	require.Equal(t, uint64(9), h.Placements()[0].Handle)

	h.Clear()
	assert.Equal(t, 0, h.Count(economy.Bee))
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Placements(), "cleared creatures are hidden before the flush")
	assert.Equal(t, 1, w.Pending())
	h.Clear()
	assert.Equal(t, 1, w.Pending(), "already cleared creatures are not queued twice")

	w.FlushDestroyQueue()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Placements())
}
