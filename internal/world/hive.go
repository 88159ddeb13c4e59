package world

import (
	"math"
	"math/rand"
	"time"

	"github.com/honeyhive/server/internal/core/ecs"
	"github.com/honeyhive/server/internal/economy"
)

// MotionStep is the fixed simulation step orbits advance by. Leftover time is
// kept in the accumulator for the next Advance call.
const MotionStep = 50 * time.Millisecond

// Creature is a mobile hive entity. Handle is the presenter's reference for it.
type Creature struct {
	Kind   economy.Kind
	Handle uint64
	Gone   bool // cleared, waiting for the cleanup flush
}

// Orbit places a creature on a circle around the hive.
type Orbit struct {
	Radius float64
	Height float64
	Angle  float64 // radians
	Speed  float64 // radians per second before the hive multiplier
}

// Position returns the cartesian position for the current angle.
func (o *Orbit) Position() (x, y, z float64) {
	return o.Radius * math.Cos(o.Angle), o.Height, o.Radius * math.Sin(o.Angle)
}

type orbitRange struct {
	radiusMin, radiusMax float64
	heightMin, heightMax float64
	speedMin, speedMax   float64
}

var orbitRanges = map[economy.Kind]orbitRange{
	economy.Bee:    {2, 4, 1, 3, 0.6, 1.4},
	economy.Wasp:   {3, 5, 2, 4, 1.0, 2.0},
	economy.Duck:   {6, 8, 0, 0.2, 0.3, 0.6},
	economy.Rabbit: {5, 9, 0, 0, 0.2, 0.5},
}

// Placement is one creature's position after an Advance.
type Placement struct {
	ID      ecs.EntityID
	Kind    economy.Kind
	Handle  uint64
	X, Y, Z float64
}

// Hive holds the mobile creature roster.
// Accessed only from the game loop goroutine.
type Hive struct {
	ecs       *ecs.World
	creatures *ecs.Store[Creature]
	orbits    *ecs.Store[Orbit]
	counts    map[economy.Kind]int
	rng       *rand.Rand
	acc       time.Duration
	steps     uint64
}

// NewHive creates an empty roster. The seed drives orbit placement.
func NewHive(w *ecs.World, seed int64) *Hive {
	h := &Hive{
		ecs:       w,
		creatures: ecs.NewStore[Creature](),
		orbits:    ecs.NewStore[Orbit](),
		counts:    make(map[economy.Kind]int, 4),
		rng:       rand.New(rand.NewSource(seed)),
	}
	w.Register(h.creatures)
	w.Register(h.orbits)
	return h
}

// Spawn adds one creature of a mobile kind on a random orbit. Returns the zero id
// for kinds that do not move.
func (h *Hive) Spawn(kind economy.Kind) ecs.EntityID {
	r, ok := orbitRanges[kind]
	if !ok {
		return 0
	}
	id := h.ecs.CreateEntity()
	h.creatures.Set(id, &Creature{Kind: kind})
	h.orbits.Set(id, &Orbit{
		Radius: between(h.rng, r.radiusMin, r.radiusMax),
		Height: between(h.rng, r.heightMin, r.heightMax),
		Angle:  h.rng.Float64() * 2 * math.Pi,
		Speed:  between(h.rng, r.speedMin, r.speedMax),
	})
	h.counts[kind]++
	return id
}

// Attach records the presenter handle for a spawned creature.
func (h *Hive) Attach(id ecs.EntityID, handle uint64) {
	if c, ok := h.creatures.Get(id); ok {
		c.Handle = handle
	}
}

// ScaleSpeeds multiplies every creature's base orbit speed by factor.
func (h *Hive) ScaleSpeeds(factor float64) {
	ecs.Each2(h.creatures, h.orbits, func(_ ecs.EntityID, c *Creature, o *Orbit) {
		if !c.Gone {
			o.Speed *= factor
		}
	})
}

// Advance feeds dt into the accumulator and moves every orbit by the whole
// steps it holds, with the angular speed scaled by multiplier. Each orbit is
// updated once per call however large dt is. Returns the steps taken.
func (h *Hive) Advance(dt time.Duration, multiplier float64) int {
	if dt <= 0 {
		return 0
	}
	h.acc += dt
	n := h.acc / MotionStep
	if n == 0 {
		return 0
	}
	h.acc %= MotionStep
	span := MotionStep.Seconds() * float64(n)
	h.orbits.Each(func(_ ecs.EntityID, o *Orbit) {
		o.Angle = math.Mod(o.Angle+o.Speed*multiplier*span, 2*math.Pi)
		if o.Angle < 0 {
			o.Angle += 2 * math.Pi
		}
	})
	h.steps += uint64(n)
	return int(n)
}

// Steps is the number of motion steps taken since creation.
func (h *Hive) Steps() uint64 { return h.steps }

// Count returns how many creatures of kind are in the roster.
func (h *Hive) Count(kind economy.Kind) int { return h.counts[kind] }

// Len returns the number of live creatures.
func (h *Hive) Len() int {
	n := 0
	for _, c := range h.counts {
		n += c
	}
	return n
}

// Orbit returns the orbit of a creature.
func (h *Hive) Orbit(id ecs.EntityID) (*Orbit, bool) {
	return h.orbits.Get(id)
}

// Placements lists every creature's position in spawn order.
func (h *Hive) Placements() []Placement {
	out := make([]Placement, 0, h.creatures.Len())
	ecs.Each2(h.creatures, h.orbits, func(id ecs.EntityID, c *Creature, o *Orbit) {
		if c.Gone {
			return
		}
		x, y, z := o.Position()
		out = append(out, Placement{ID: id, Kind: c.Kind, Handle: c.Handle, X: x, Y: y, Z: z})
	})
	return out
}

// Clear queues every creature for destruction and resets counts. Cleared
// creatures are hidden at once and leave the stores when the cleanup system
// flushes the queue.
func (h *Hive) Clear() {
	h.creatures.Each(func(id ecs.EntityID, c *Creature) {
		if !c.Gone {
			c.Gone = true
			h.ecs.MarkForDestruction(id)
		}
	})
	h.counts = make(map[economy.Kind]int, 4)
	h.acc = 0
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
