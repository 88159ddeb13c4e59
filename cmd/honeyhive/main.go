package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/honeyhive/server/internal/config"
	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/format"
	"github.com/honeyhive/server/internal/game"
	"github.com/honeyhive/server/internal/persist"
	"github.com/honeyhive/server/internal/progression"
	"github.com/honeyhive/server/internal/present"
	"github.com/honeyhive/server/internal/scripting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

var (
	frame   = color.New(color.FgCyan, color.Bold)
	heading = color.New(color.FgYellow)
	dim     = color.New(color.FgHiBlack)
	good    = color.New(color.FgGreen)

	grouper = format.NewGrouper(language.English)
)

func printBanner(serverName string) {
	fmt.Println()
	frame.Println("  ┌───────────────────────────────────────────┐")
	frame.Print("  │")
	fmt.Print("             HoneyHive  v0.1.0             ")
	frame.Println("│")
	frame.Println("  └───────────────────────────────────────────┘")
	fmt.Println()
	fmt.Printf("  %s %s\n\n", color.New(color.Bold).Sprint("server:"), serverName)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	heading.Printf("  ── %s %s\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s %s %s\n", label, dim.Sprint(strings.Repeat("·", dotsLen)), good.Sprint(numStr))
}

func printOK(msg string) {
	fmt.Printf("  %s %s\n", good.Sprint("✓"), msg)
}

func printReady(msg string) {
	fmt.Printf("  %s %s\n", good.Sprint("▶"), msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := config.DefaultPath
	if p := os.Getenv(config.EnvConfig); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name)

	// 3. Open the save backend
	printSection("storage")

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelBoot()

	backend, err := persist.Open(bootCtx, cfg, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer backend.Close()
	printOK(backend.Name)
	if backend.Version > 0 {
		printStat("schema version", int(backend.Version))
	}
	if backend.Ledger != nil {
		printOK("purchase ledger enabled")
	}
	fmt.Println()

	// 4. Load data tables and scripts
	printSection("data")

	tables, err := game.LoadTables(cfg.Game)
	if err != nil {
		return err
	}
	printStat("upgrades", tables.Upgrades.Count())
	printStat("achievements", tables.Achievements.Count())

	curve := game.OptionsFrom(cfg, nil).Curve
	if cfg.Progression.UseScript {
		lua, err := scripting.NewEngine(cfg.Game.ScriptsDir, log,
			scripting.WithLevelCurve(progression.PowerCurve{Base: cfg.Progression.LevelBase, Exponent: cfg.Progression.LevelExponent}))
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer lua.Close()
		curve = scripting.NewLevelCurve(lua, curve)
		printOK("Lua scripts loaded")
	}
	fmt.Println()

	// 5. Build the presenter bridge and the session
	hub := present.NewHub(present.HubConfig{
		OutQueueSize:      cfg.Network.OutQueueSize,
		CommandQueueSize:  cfg.Network.CommandQueueSize,
		WriteTimeout:      cfg.Network.WriteTimeout,
		ReadTimeout:       cfg.Network.ReadTimeout,
		RateLimited:       cfg.RateLimit.Enabled,
		CommandsPerSecond: cfg.RateLimit.CommandsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, log)
	saver := persist.NewSaver(backend.Store, backend.Ledger, log)

	session, err := game.New(game.Deps{
		Catalog:      tables.Upgrades,
		Achievements: tables.Achievements,
		Presenter:    hub,
		Store:        backend.Store,
		Sink:         saver,
		Commands:     hub,
		Log:          log,
	}, game.OptionsFrom(cfg, curve))
	if err != nil {
		return fmt.Errorf("game session: %w", err)
	}
	if cfg.Game.AutoContinue {
		if err := session.Continue(bootCtx); err != nil {
			log.Error("could not load save, starting a new game", zap.Error(err))
		}
		printStat("user level", session.Level().Level())
	}

	// 6. Listen
	ln, err := net.Listen("tcp", cfg.Network.BindAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Network.BindAddress, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	// 7. Start game loop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	printSection("ready")
	printReady(fmt.Sprintf("listening on ws://%s/ws", ln.Addr()))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return saver.Run(ctx) })
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Network.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				session.Tick(cfg.Network.TickRate)
			case <-ctx.Done():
				log.Info("shutting down", zap.Uint64("ticks", session.Ticks()))
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
	}

	// The loop has exited, so the session is safe to read here.
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	session.Settle()
	snap := session.Snapshot()
	if err := saver.Flush(flushCtx, snap, session.TakeLedger()); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	log.Info("server stopped",
		zap.Int("user_level", snap.UserLevel),
		zap.Int64("saves", saver.Saves()),
		zap.Int64("save_failures", saver.Failures()))

	spent, err := backend.SpendReport(flushCtx)
	if err != nil {
		log.Error("purchase ledger report failed", zap.Error(err))
	}
	if len(spent) > 0 {
		printSection("spent")
		for _, k := range economy.AllKinds() {
			if v, ok := spent[string(k)]; ok {
				fmt.Printf("  %-12s %s\n", k, grouper.Int(v))
			}
		}
		fmt.Println()
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
