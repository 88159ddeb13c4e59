package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/honeyhive/server/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLevelRequirement_MatchesGoCurve(t *testing.T) {
	e, err := NewEngine("../../data/scripts", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	goCurve := progression.DefaultCurve()
	for level := 0; level <= 60; level++ {
		v, ok := e.LevelRequirement(level)
		require.True(t, ok)
		assert.Equal(t, goCurve.Requirement(level), v, "level %d", level)
	}
}

func TestLevelRequirement_UsesConfiguredCurve(t *testing.T) {
	curve := progression.PowerCurve{Base: 100, Exponent: 2}
	e, err := NewEngine("../../data/scripts", zap.NewNop(), WithLevelCurve(curve))
	require.NoError(t, err)
	defer e.Close()

	for level := 1; level <= 20; level++ {
		v, ok := e.LevelRequirement(level)
		require.True(t, ok)
		assert.Equal(t, curve.Requirement(level), v, "level %d", level)
	}
	v, _ := e.LevelRequirement(3)
	assert.Equal(t, 900.0, v)
}

func writeScript(t *testing.T, dir, sub, body string) {
	t.Helper()
	p := filepath.Join(dir, sub)
	require.NoError(t, os.MkdirAll(p, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p, "curve.lua"), []byte(body), 0o644))
}

func TestLevelCurve_BalanceOverride(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "core", `function level_requirement(level) return 100 * level end`)
	writeScript(t, dir, "balance", `function level_requirement(level) return 7 end`)

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	c := NewLevelCurve(e, progression.DefaultCurve())
	assert.Equal(t, 7.0, c.Requirement(3), "balance scripts load after core")
}

func TestLevelCurve_FallsBack(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "core", `function level_requirement(level) return "lots" end`)

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	c := NewLevelCurve(e, progression.DefaultCurve())
	assert.Equal(t, 3000.0, c.Requirement(1))

	empty, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer empty.Close()
	assert.Equal(t, progression.DefaultCurve(), NewLevelCurve(empty, progression.DefaultCurve()))
	assert.Equal(t, progression.DefaultCurve(), NewLevelCurve(nil, progression.DefaultCurve()))
}

func TestNewEngine_BadScript(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "core", `function (`)

	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}
