package game

import (
	"fmt"

	"github.com/honeyhive/server/internal/config"
	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/progression"
)

// Tables are the static data a session is built from.
type Tables struct {
	Upgrades     *data.UpgradeTable
	Achievements *data.AchievementTable
}

// LoadTables reads the upgrade and achievement lists named in cfg.
func LoadTables(cfg config.GameConfig) (*Tables, error) {
	upgrades, err := data.LoadUpgradeTable(cfg.UpgradeTable)
	if err != nil {
		return nil, fmt.Errorf("load upgrade table: %w", err)
	}
	achievements, err := data.LoadAchievementTable(cfg.AchievementTable)
	if err != nil {
		return nil, fmt.Errorf("load achievement table: %w", err)
	}
	return &Tables{Upgrades: upgrades, Achievements: achievements}, nil
}

// OptionsFrom maps configuration onto session options. curve overrides the
// configured power curve when non-nil, e.g. a scripted one.
func OptionsFrom(cfg *config.Config, curve progression.Curve) Options {
	opts := DefaultOptions()
	opts.Rates = cfg.Economy.Rates()
	opts.Curve = progression.PowerCurve{Base: cfg.Progression.LevelBase, Exponent: cfg.Progression.LevelExponent}
	if curve != nil {
		opts.Curve = curve
	}
	opts.CarryExcess = cfg.Progression.CarryExcess
	opts.SaveInterval = cfg.Game.SaveInterval
	opts.MaxCommandsPerTick = cfg.Network.MaxCommandsPerTick
	opts.Seed = cfg.Server.StartTime
	return opts
}
