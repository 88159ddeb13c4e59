// Package game owns one instance of every game component and drives them
// through the phase-ordered tick.
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/honeyhive/server/internal/core/ecs"
	"github.com/honeyhive/server/internal/core/event"
	coresys "github.com/honeyhive/server/internal/core/system"
	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/persist"
	"github.com/honeyhive/server/internal/present"
	"github.com/honeyhive/server/internal/progression"
	"github.com/honeyhive/server/internal/purchase"
	"github.com/honeyhive/server/internal/system"
	"github.com/honeyhive/server/internal/world"
	"go.uber.org/zap"
)

// Options are the tunables of a session.
type Options struct {
	Rates              economy.Rates
	Curve              progression.Curve
	CarryExcess        bool
	SaveInterval       time.Duration // simulated time between autosaves; 0 disables
	MaxCommandsPerTick int
	Seed               int64 // orbit placement
	LoadTimeout        time.Duration
}

// DefaultOptions returns the stock balance with a 30s autosave.
func DefaultOptions() Options {
	return Options{
		Rates:              economy.DefaultRates(),
		Curve:              progression.DefaultCurve(),
		SaveInterval:       30 * time.Second,
		MaxCommandsPerTick: 16,
		Seed:               1,
		LoadTimeout:        5 * time.Second,
	}
}

// Deps are the collaborators a session is built from.
type Deps struct {
	Catalog      *data.UpgradeTable
	Achievements *data.AchievementTable // optional
	Presenter    present.Presenter      // optional, defaults to present.Nop
	Store        persist.Store          // optional; Continue starts fresh without one
	Sink         system.SaveSink        // optional; autosaves go to Store synchronously without one
	Commands     present.CommandSource  // optional
	Log          *zap.Logger
}

// Session is one running game. Every method must be called from the goroutine
// that drives Tick.
type Session struct {
	opts      Options
	catalog   *data.UpgradeTable
	presenter present.Presenter
	store     persist.Store
	log       *zap.Logger

	model        *economy.Model
	level        *progression.Controller
	ecs          *ecs.World
	hive         *world.Hive
	bus          *event.Bus
	runner       *coresys.Runner
	purchases    *purchase.Engine
	achievements *system.AchievementTracker
	persistence  *system.PersistenceSystem

	id     uuid.UUID
	ledger []persist.LedgerEntry
}

// New wires a session and starts it as a new game.
func New(deps Deps, opts Options) (*Session, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("game session: upgrade catalog is required")
	}
	if opts.Curve == nil {
		opts.Curve = progression.DefaultCurve()
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 5 * time.Second
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Presenter == nil {
		deps.Presenter = &present.Nop{}
	}
	achievements := deps.Achievements
	if achievements == nil {
		achievements, _ = data.ParseAchievementTable([]byte("achievements: []"))
	}

	s := &Session{
		opts:      opts,
		catalog:   deps.Catalog,
		presenter: deps.Presenter,
		store:     deps.Store,
		log:       deps.Log,
		model:     economy.NewModel(opts.Rates, deps.Catalog.Curves()),
		level:     progression.New(opts.Curve, deps.Catalog, progression.WithCarryExcess(opts.CarryExcess)),
		ecs:       ecs.NewWorld(),
		bus:       event.NewBus(),
		runner:    coresys.NewRunner(),
		id:        uuid.New(),
	}
	s.hive = world.NewHive(s.ecs, opts.Seed)
	s.achievements = system.NewAchievementTracker(achievements)
	s.purchases = purchase.NewEngine(purchase.Deps{
		Catalog: s.catalog,
		Model:   s.model,
		Gate:    s.level,
		Herd:    &herd{hive: s.hive, presenter: s.presenter},
		Speed:   s.presenter,
		Bus:     s.bus,
		Log:     s.log,
		Refresh: s.Refresh,
	})

	event.Subscribe(s.bus, s.recordPurchase)
	event.Subscribe(s.bus, func(e event.GameStarted) {
		s.log.Info("game started", zap.Bool("continued", e.Continued), zap.String("session", s.id.String()))
	})

	sink := deps.Sink
	if sink == nil {
		sink = &storeSink{store: s.store, log: s.log, timeout: opts.LoadTimeout}
	}
	s.persistence = system.NewPersistenceSystem(s, sink, opts.SaveInterval)

	if deps.Commands != nil {
		s.runner.Register(system.NewInputSystem(deps.Commands, s.Handle, opts.MaxCommandsPerTick))
	}
	s.runner.Register(system.NewEventDispatchSystem(s.bus))
	s.runner.Register(system.NewProductionSystem(s.model))
	s.runner.Register(system.NewMotionSystem(s.hive, s.model.HiveSpeedMultiplier, s.presenter))
	s.runner.Register(system.NewLevelSystem(s.level, s.model, s.presenter, s.bus, s.log, s.onLevel))
	s.runner.Register(system.NewAchievementSystem(s.achievements, s.stat, s.presenter, s.bus, s.log))
	s.runner.Register(system.NewRefreshSystem(s.Refresh))
	s.runner.Register(s.persistence)
	s.runner.Register(system.NewCleanupSystem(s.ecs))

	s.start(persist.NewSnapshot(), false)
	return s, nil
}

// Tick advances the simulation by dt.
func (s *Session) Tick(dt time.Duration) {
	s.runner.Tick(dt)
}

// Buy attempts one purchase of k.
func (s *Session) Buy(k economy.Kind) purchase.Outcome {
	return s.purchases.Buy(k)
}

// BuyTag parses a kind tag such as "bee" and buys it.
func (s *Session) BuyTag(tag string) purchase.Outcome {
	k, err := economy.ParseKind(tag)
	if err != nil {
		s.log.Warn("purchase of unknown upgrade kind", zap.String("kind", tag))
		return purchase.UnknownKind
	}
	return s.Buy(k)
}

// NewGame discards the current state and starts fresh without loading.
func (s *Session) NewGame() {
	s.start(persist.NewSnapshot(), false)
}

// Continue loads the saved game, or starts a new one when there is no save.
// A failed load leaves the current game untouched.
func (s *Session) Continue(ctx context.Context) error {
	if s.store == nil {
		s.NewGame()
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.LoadTimeout)
	defer cancel()
	snap, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("continue: %w", err)
	}
	if snap == nil {
		s.log.Info("no saved game, starting fresh")
		s.NewGame()
		return nil
	}
	s.Apply(*snap)
	return nil
}

// Apply replaces the game state with a snapshot and re-spawns its creatures.
func (s *Session) Apply(snap persist.Snapshot) {
	snap.Normalize()
	s.start(snap, true)
}

func (s *Session) start(snap persist.Snapshot, continued bool) {
	s.hive.Clear()
	s.presenter.Reset()

	s.model.Restore(economy.State{
		Pollen:         snap.Pollen,
		Nectar:         snap.Nectar,
		PollenLifetime: snap.PollenLifetime,
		Owned: map[economy.Kind]int{
			economy.Bee:        snap.Bees,
			economy.Wasp:       snap.Wasps,
			economy.Duck:       snap.Ducks,
			economy.Rabbit:     snap.Rabbits,
			economy.Production: snap.ProdLevel,
			economy.Hive:       snap.HiveLevel,
		},
	})
	s.level.Restore(snap.UserLevel, snap.LevelStartPollen)
	s.achievements.Restore(snap.Achievements)
	s.ledger = nil
	s.persistence.ResetInterval()

	spawner := &herd{hive: s.hive, presenter: s.presenter}
	for _, k := range economy.MobileKinds() {
		for i := 0; i < s.model.Owned(k); i++ {
			spawner.Spawn(k)
		}
	}
	s.presenter.SetSpeedMultiplier(s.model.HiveSpeedMultiplier)
	for _, u := range s.level.Visible() {
		s.presenter.RevealCard(s.card(u))
	}
	s.Refresh()
	event.Emit(s.bus, event.GameStarted{Continued: continued})
}

// Handle applies one player command. Called by the input phase.
func (s *Session) Handle(cmd present.Command) {
	switch cmd.Type {
	case present.CommandBuy:
		s.BuyTag(cmd.Kind)
	case present.CommandContinue:
		if err := s.Continue(context.Background()); err != nil {
			s.log.Error("continue failed", zap.String("client", cmd.Client), zap.Error(err))
		}
	case present.CommandNewGame:
		s.NewGame()
	default:
		s.log.Warn("unknown command", zap.String("type", string(cmd.Type)))
	}
}

// Snapshot captures the persisted state.
func (s *Session) Snapshot() persist.Snapshot {
	return persist.Snapshot{
		Pollen:           s.model.Pollen(),
		Nectar:           s.model.Nectar(),
		PollenLifetime:   s.model.PollenLifetime(),
		LevelStartPollen: s.level.LevelStart(),
		ProdLevel:        s.model.ProdLevel(),
		HiveLevel:        s.model.HiveLevel(),
		UserLevel:        s.level.Level(),
		Bees:             s.model.Owned(economy.Bee),
		Wasps:            s.model.Owned(economy.Wasp),
		Ducks:            s.model.Owned(economy.Duck),
		Rabbits:          s.model.Owned(economy.Rabbit),
		Achievements:     s.achievements.Unlocked(),
	}
}

// Settle delivers events still queued from the last tick, so purchases made
// since then reach the ledger. Used before a final save.
func (s *Session) Settle() {
	s.runner.TickPhase(coresys.PhasePreUpdate, 0)
}

// SaveNow hands a snapshot to the save sink immediately.
func (s *Session) SaveNow() { s.persistence.SaveNow() }

// TakeLedger returns and clears the purchases recorded since the last save.
func (s *Session) TakeLedger() []persist.LedgerEntry {
	out := s.ledger
	s.ledger = nil
	return out
}

func (s *Session) recordPurchase(e event.PurchaseCompleted) {
	s.ledger = append(s.ledger, persist.LedgerEntry{
		SessionID: s.id,
		Kind:      string(e.Kind),
		Resource:  string(e.Resource),
		Cost:      e.Cost,
		Owned:     e.Owned,
		UserLevel: s.level.Level(),
	})
}

func (s *Session) onLevel(int) {
	for _, u := range s.level.Reveal() {
		s.presenter.RevealCard(s.card(u))
	}
	for _, u := range s.level.Visible() {
		s.presenter.SetCardLocked(s.lock(u))
	}
}

func (s *Session) stat(st data.AchievementStat) float64 {
	switch st {
	case data.StatBees:
		return float64(s.model.Owned(economy.Bee))
	case data.StatWasps:
		return float64(s.model.Owned(economy.Wasp))
	case data.StatDucks:
		return float64(s.model.Owned(economy.Duck))
	case data.StatRabbits:
		return float64(s.model.Owned(economy.Rabbit))
	case data.StatUserLevel:
		return float64(s.level.Level())
	case data.StatProdLevel:
		return float64(s.model.ProdLevel())
	case data.StatHiveLevel:
		return float64(s.model.HiveLevel())
	case data.StatPollenLifetime:
		return s.model.PollenLifetime()
	case data.StatPollen:
		return s.model.Pollen()
	case data.StatNectar:
		return s.model.Nectar()
	}
	return 0
}

func (s *Session) Model() *economy.Model                  { return s.model }
func (s *Session) Level() *progression.Controller         { return s.level }
func (s *Session) Hive() *world.Hive                      { return s.hive }
func (s *Session) Catalog() *data.UpgradeTable            { return s.catalog }
func (s *Session) ID() uuid.UUID                          { return s.id }
func (s *Session) Ticks() uint64                          { return s.runner.Ticks() }
func (s *Session) Achievements() []string                 { return s.achievements.Unlocked() }
func (s *Session) Presenter() present.Presenter           { return s.presenter }
func (s *Session) Persistence() *system.PersistenceSystem { return s.persistence }

// storeSink saves synchronously when no background saver is configured.
type storeSink struct {
	store   persist.Store
	log     *zap.Logger
	timeout time.Duration
}

func (k *storeSink) Submit(snap persist.Snapshot, _ []persist.LedgerEntry) {
	if k.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()
	if err := k.store.Save(ctx, snap); err != nil {
		k.log.Error("autosave failed", zap.Error(err))
	}
}
