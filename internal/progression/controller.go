package progression

import (
	"math"

	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/economy"
)

// maxLevelUpsPerCheck bounds a single CheckLevelUp call. Progress beyond it is
// picked up by the next check.
const maxLevelUpsPerCheck = 10_000

// Curve returns the lifetime pollen needed to leave a level.
type Curve interface {
	Requirement(level int) float64
}

// PowerCurve is floor(Base * level^Exponent).
type PowerCurve struct {
	Base     float64
	Exponent float64
}

// DefaultCurve is floor(3000 * level^1.25).
func DefaultCurve() PowerCurve {
	return PowerCurve{Base: 3000, Exponent: 1.25}
}

func (c PowerCurve) Requirement(level int) float64 {
	if level < 1 {
		level = 1
	}
	return math.Floor(c.Base * math.Pow(float64(level), c.Exponent))
}

// Controller tracks the user level and gates upgrades by it.
// Accessed only from the game loop goroutine.
type Controller struct {
	level       int
	levelStart  float64
	revealed    int
	carryExcess bool
	curve       Curve
	catalog     *data.UpgradeTable
}

// Option configures a Controller.
type Option func(*Controller)

// WithCarryExcess keeps progress beyond the requirement when leveling up: the
// level floor advances by the requirement instead of jumping to the current
// lifetime total, so one large gain can clear several levels.
func WithCarryExcess(on bool) Option {
	return func(c *Controller) { c.carryExcess = on }
}

// New creates a controller at level 1 with the first card revealed.
func New(curve Curve, catalog *data.UpgradeTable, opts ...Option) *Controller {
	c := &Controller{curve: curve, catalog: catalog}
	for _, opt := range opts {
		opt(c)
	}
	c.Restore(1, 0)
	return c
}

func (c *Controller) Level() int          { return c.level }
func (c *Controller) LevelStart() float64 { return c.levelStart }

// Requirement is the lifetime pollen needed to leave the current level.
func (c *Controller) Requirement() float64 {
	return c.curve.Requirement(c.level)
}

// RequirementFor exposes the curve for arbitrary levels.
func (c *Controller) RequirementFor(level int) float64 {
	return c.curve.Requirement(level)
}

// Progress is the lifetime pollen gathered since the current level was reached.
func (c *Controller) Progress(lifetime float64) float64 {
	return lifetime - c.levelStart
}

// CheckLevelUp raises the level while progress clears the requirement and
// returns how many levels were gained.
func (c *Controller) CheckLevelUp(lifetime float64) int {
	gained := 0
	for gained < maxLevelUpsPerCheck {
		progress := lifetime - c.levelStart
		if math.IsNaN(progress) || math.IsInf(progress, 0) {
			break
		}
		req := c.curve.Requirement(c.level)
		if !(req > 0) || progress < req {
			break
		}
		if c.carryExcess {
			c.levelStart += req
		} else {
			c.levelStart = lifetime
		}
		c.level++
		gained++
	}
	return gained
}

// IsLocked reports whether k cannot be bought at the current level. Kinds missing
// from the catalog are always locked.
func (c *Controller) IsLocked(k economy.Kind) bool {
	u := c.catalog.Get(k)
	if u == nil {
		return true
	}
	return c.level < u.LevelReq
}

// LockReason returns the hint for a locked card, or "" when unlocked.
func (c *Controller) LockReason(k economy.Kind) string {
	if !c.IsLocked(k) {
		return ""
	}
	if u := c.catalog.Get(k); u != nil {
		return u.LockedText()
	}
	return "Unavailable"
}

// Restore sets level state from a snapshot and recomputes the reveal mark.
func (c *Controller) Restore(level int, levelStart float64) {
	if level < 1 {
		level = 1
	}
	if levelStart < 0 || math.IsNaN(levelStart) || math.IsInf(levelStart, 0) {
		levelStart = 0
	}
	c.level = level
	c.levelStart = levelStart
	c.revealed = 0
	c.Reveal()
}
