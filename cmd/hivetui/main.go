package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/honeyhive/server/internal/config"
	"github.com/honeyhive/server/internal/game"
	"github.com/honeyhive/server/internal/persist"
	"github.com/honeyhive/server/internal/progression"
	"github.com/honeyhive/server/internal/scripting"
	"github.com/honeyhive/server/internal/tui"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := config.DefaultPath
	if p := os.Getenv(config.EnvConfig); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal belongs to bubbletea, so logs go to a file.
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.OutputPaths = []string{"hivetui.log"}
	zapCfg.ErrorOutputPaths = []string{"hivetui.log"}
	log, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := persist.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer backend.Close()

	tables, err := game.LoadTables(cfg.Game)
	if err != nil {
		return err
	}

	curve := game.OptionsFrom(cfg, nil).Curve
	if cfg.Progression.UseScript {
		lua, err := scripting.NewEngine(cfg.Game.ScriptsDir, log,
			scripting.WithLevelCurve(progression.PowerCurve{Base: cfg.Progression.LevelBase, Exponent: cfg.Progression.LevelExponent}))
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer lua.Close()
		curve = scripting.NewLevelCurve(lua, curve)
	}

	board := tui.NewBoard()
	session, err := game.New(game.Deps{
		Catalog:      tables.Upgrades,
		Achievements: tables.Achievements,
		Presenter:    board,
		Store:        backend.Store,
		Log:          log,
	}, game.OptionsFrom(cfg, curve))
	if err != nil {
		return fmt.Errorf("game session: %w", err)
	}
	if cfg.Game.AutoContinue {
		if err := session.Continue(ctx); err != nil {
			log.Error("could not load save, starting a new game", zap.Error(err))
		}
	}

	m := tui.New(session, board, cfg.Network.TickRate, log)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
