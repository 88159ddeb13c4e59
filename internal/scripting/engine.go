package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/honeyhive/server/internal/progression"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for balance formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// Option sets up the VM before any script is loaded.
type Option func(vm *lua.LState)

// WithLevelCurve exposes the configured curve to scripts as LEVEL_BASE and
// LEVEL_EXPONENT.
func WithLevelCurve(c progression.PowerCurve) Option {
	return func(vm *lua.LState) {
		vm.SetGlobal("LEVEL_BASE", lua.LNumber(c.Base))
		vm.SetGlobal("LEVEL_EXPONENT", lua.LNumber(c.Exponent))
	}
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger, opts ...Option) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	for _, opt := range opts {
		opt(vm)
	}

	e := &Engine{vm: vm, log: log}

	// Load core scripts first, then optional balance overrides
	for _, sub := range []string{"core", "balance"} {
		if err := e.loadDir(filepath.Join(scriptsDir, sub)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a global Lua function is defined.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// LevelRequirement calls Lua level_requirement(level). ok is false when the
// function is missing, fails, or returns a non-finite number.
func (e *Engine) LevelRequirement(level int) (float64, bool) {
	v, ok := e.callNumberFunc("level_requirement", float64(level))
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (e *Engine) callNumberFunc(name string, args ...float64) (float64, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned a non-number", zap.String("func", name), zap.String("type", result.Type().String()))
		return 0, false
	}
	return float64(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// LevelCurve takes level requirements from Lua and falls back to a Go curve
// when the script is missing or misbehaves.
type LevelCurve struct {
	engine   *Engine
	fallback progression.Curve
}

// NewLevelCurve returns a curve backed by level_requirement. With a nil engine
// or no such function the fallback is used directly.
func NewLevelCurve(e *Engine, fallback progression.Curve) progression.Curve {
	if e == nil || !e.Has("level_requirement") {
		return fallback
	}
	return &LevelCurve{engine: e, fallback: fallback}
}

func (c *LevelCurve) Requirement(level int) float64 {
	if v, ok := c.engine.LevelRequirement(level); ok {
		return v
	}
	return c.fallback.Requirement(level)
}
