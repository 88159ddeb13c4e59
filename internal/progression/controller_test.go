package progression

import (
	"math"
	"testing"

	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/economy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCatalog(t *testing.T) *data.UpgradeTable {
	t.Helper()
	tbl, err := data.LoadUpgradeTable("../../data/yaml/upgrade_list.yaml")
	require.NoError(t, err)
	return tbl
}

func kindsOf(us []*data.Upgrade) []economy.Kind {
	out := make([]economy.Kind, 0, len(us))
	for _, u := range us {
		out = append(out, u.Kind)
	}
	return out
}

func TestPowerCurve(t *testing.T) {
	c := DefaultCurve()
	assert.Equal(t, 3000.0, c.Requirement(1))
	assert.Equal(t, math.Floor(3000*math.Pow(2, 1.25)), c.Requirement(2))
	assert.Equal(t, 3000.0, c.Requirement(0), "levels below 1 clamp to 1")

	prev := 0.0
	for l := 1; l < 200; l++ {
		r := c.Requirement(l)
		assert.Greater(t, r, prev)
		prev = r
	}
}

func TestCheckLevelUp_ExactThreshold(t *testing.T) {
	c := New(DefaultCurve(), loadCatalog(t))

	gained := c.CheckLevelUp(3000)

	assert.Equal(t, 1, gained)
	assert.Equal(t, 2, c.Level())
	assert.Equal(t, 3000.0, c.LevelStart())
	assert.Equal(t, 0.0, c.Progress(3000))
}

func TestCheckLevelUp_BelowThreshold(t *testing.T) {
	c := New(DefaultCurve(), loadCatalog(t))

	assert.Equal(t, 0, c.CheckLevelUp(2999.99))
	assert.Equal(t, 1, c.Level())
	assert.Equal(t, 0.0, c.LevelStart())
}

func TestCheckLevelUp_FloorJumpsToLifetime(t *testing.T) {
	c := New(DefaultCurve(), loadCatalog(t))

	gained := c.CheckLevelUp(50_000)

	assert.Equal(t, 1, gained, "excess progress is dropped when the floor moves to the lifetime total")
	assert.Equal(t, 2, c.Level())
	assert.Equal(t, 50_000.0, c.LevelStart())
}

func TestCheckLevelUp_CarryExcessClearsSeveralLevels(t *testing.T) {
	c := New(DefaultCurve(), loadCatalog(t), WithCarryExcess(true))
	curve := DefaultCurve()
	lifetime := curve.Requirement(1) + curve.Requirement(2) + curve.Requirement(3) + 1

	gained := c.CheckLevelUp(lifetime)

	assert.Equal(t, 3, gained)
	assert.Equal(t, 4, c.Level())
	assert.Equal(t, lifetime-1, c.LevelStart())
}

type flatCurve float64

func (f flatCurve) Requirement(int) float64 { return float64(f) }

func TestCheckLevelUp_Guards(t *testing.T) {
	cat := loadCatalog(t)

	c := New(flatCurve(0), cat)
	assert.Equal(t, 0, c.CheckLevelUp(1e9), "non-positive requirement never levels")

	c = New(DefaultCurve(), cat)
	assert.Equal(t, 0, c.CheckLevelUp(math.Inf(1)))
	assert.Equal(t, 0, c.CheckLevelUp(math.NaN()))

	c = New(flatCurve(1), cat, WithCarryExcess(true))
	assert.Equal(t, maxLevelUpsPerCheck, c.CheckLevelUp(1e9))
	assert.Equal(t, maxLevelUpsPerCheck, c.CheckLevelUp(1e9), "remaining progress carries to the next check")
}

func TestIsLocked(t *testing.T) {
	c := New(DefaultCurve(), loadCatalog(t))

	assert.False(t, c.IsLocked(economy.Bee))
	assert.True(t, c.IsLocked(economy.Wasp))
	assert.Equal(t, "Reach Level 2", c.LockReason(economy.Wasp))
	assert.Empty(t, c.LockReason(economy.Bee))

	c.Restore(7, 0)
	assert.False(t, c.IsLocked(economy.Wasp))
	assert.False(t, c.IsLocked(economy.Production))
	assert.False(t, c.IsLocked(economy.Hive))
	assert.True(t, c.IsLocked(economy.Duck))
}

func TestIsLocked_UnknownKind(t *testing.T) {
	cat, err := data.ParseUpgradeTable([]byte(`
upgrades:
  - {kind: bee, order: 0, cost_resource: pollen, base_cost: 20, cost_rate: 1.15}
`))
	require.NoError(t, err)
	c := New(DefaultCurve(), cat)
	c.Restore(99, 0)

	assert.True(t, c.IsLocked(economy.Rabbit))
	assert.Equal(t, "Unavailable", c.LockReason(economy.Rabbit))
}

func TestReveal_StagedSequence(t *testing.T) {
	c := New(DefaultCurve(), loadCatalog(t))

	assert.Equal(t, []economy.Kind{economy.Bee, economy.Wasp}, kindsOf(c.Visible()),
		"first card plus the next locked one")
	assert.Nil(t, c.Reveal())

	c.level = 2
	assert.Equal(t, []economy.Kind{economy.Production}, kindsOf(c.Reveal()))

	c.level = 4
	assert.Nil(t, c.Reveal(), "production still locked, nothing new")

	c.level = 10
	assert.Equal(t, []economy.Kind{economy.Hive, economy.Duck, economy.Rabbit}, kindsOf(c.Reveal()))

	c.level = 20
	assert.Nil(t, c.Reveal())
	assert.Len(t, c.Visible(), 6)
}

func TestRestore(t *testing.T) {
	c := New(DefaultCurve(), loadCatalog(t))

	c.Restore(0, -10)
	assert.Equal(t, 1, c.Level())
	assert.Equal(t, 0.0, c.LevelStart())

	c.Restore(5, 1234)
	assert.Equal(t, 5, c.Level())
	assert.Equal(t, 1234.0, c.LevelStart())
	assert.Equal(t, []economy.Kind{economy.Bee, economy.Wasp, economy.Production, economy.Hive},
		kindsOf(c.Visible()))
}
