package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/honeyhive/server/internal/config"
	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/format"
	"github.com/honeyhive/server/internal/game"
	"github.com/honeyhive/server/internal/progression"
	"github.com/honeyhive/server/internal/scripting"
	"github.com/honeyhive/server/internal/sim"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var (
	configFile string
	duration   time.Duration
	step       time.Duration
	maxBuys    int
	skipKinds  []string
	quiet      bool
	showBuys   bool
	useScript  bool

	grouper = format.NewGrouper(language.English)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hivesim",
		Short: "HoneyHive balance simulator",
		Long: `Plays a headless game with a greedy buyer that always takes the
cheapest affordable upgrade, and prints when each level was reached.`,
		RunE: runSim,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to server.toml (built-in defaults when empty)")
	rootCmd.Flags().DurationVarP(&duration, "duration", "d", 2*time.Hour, "Simulated play time")
	rootCmd.Flags().DurationVar(&step, "step", time.Second, "Tick length")
	rootCmd.Flags().IntVar(&maxBuys, "max-buys", 0, "Purchases allowed per tick (0 = unlimited)")
	rootCmd.Flags().StringSliceVar(&skipKinds, "skip", nil, "Upgrade kinds the buyer ignores, e.g. wasp,duck")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the summary")
	rootCmd.Flags().BoolVarP(&showBuys, "purchases", "p", false, "Also print every purchase")
	rootCmd.Flags().BoolVar(&useScript, "script", false, "Take the level curve from the Lua scripts")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSim(cmd *cobra.Command, args []string) error {
	titleColor := color.New(color.FgCyan, color.Bold)
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgYellow)

	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return err
		}
	}

	if !quiet {
		titleColor.Println("\n╭───────────────────────────╮")
		titleColor.Println("│  HoneyHive                │")
		titleColor.Println("│  Balance Simulator        │")
		titleColor.Println("╰───────────────────────────╯")
		fmt.Println()
	}

	tables, err := game.LoadTables(cfg.Game)
	if err != nil {
		return err
	}

	curve := game.OptionsFrom(cfg, nil).Curve
	if useScript {
		lua, err := scripting.NewEngine(cfg.Game.ScriptsDir, zap.NewNop(),
			scripting.WithLevelCurve(progression.PowerCurve{Base: cfg.Progression.LevelBase, Exponent: cfg.Progression.LevelExponent}))
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer lua.Close()
		curve = scripting.NewLevelCurve(lua, curve)
	}

	var skip []economy.Kind
	for _, tag := range skipKinds {
		k, err := economy.ParseKind(tag)
		if err != nil {
			return err
		}
		skip = append(skip, k)
	}

	opts := game.OptionsFrom(cfg, curve)
	opts.SaveInterval = 0
	session, err := game.New(game.Deps{
		Catalog:      tables.Upgrades,
		Achievements: tables.Achievements,
		Log:          zap.NewNop(),
	}, opts)
	if err != nil {
		return err
	}

	if !quiet {
		infoColor.Printf("Simulating %s in %s ticks...\n\n", duration, step)
	}
	rep := sim.Run(session, sim.Config{
		Duration:       duration,
		Step:           step,
		MaxBuysPerStep: maxBuys,
		Skip:           skip,
	})

	if !quiet {
		printLevels(rep)
		if showBuys {
			printPurchases(rep)
		}
	}
	printSummary(rep)
	successColor.Printf("\n✓ Reached level %d after %s with %d purchases\n",
		rep.Final.UserLevel, formatTime(rep.Elapsed), len(rep.Purchases))
	return nil
}

func printLevels(rep *sim.Report) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Level", "Reached", "Since Previous", "Requirement", "Lifetime Pollen"}),
	)
	var prev time.Duration
	for _, l := range rep.Levels {
		_ = table.Append([]string{
			fmt.Sprintf("%d", l.Level),
			formatTime(l.At),
			formatTime(l.At - prev),
			grouper.Int(l.Requirement),
			grouper.Int(l.Lifetime),
		})
		prev = l.At
	}
	_ = table.Render()
	fmt.Println()
}

func printPurchases(rep *sim.Report) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Time", "Upgrade", "Owned", "Cost"}),
	)
	for i, p := range rep.Purchases {
		_ = table.Append([]string{
			fmt.Sprintf("%d", i+1),
			formatTime(p.At),
			string(p.Kind),
			fmt.Sprintf("%d", p.Owned),
			format.Short(p.Cost) + " " + string(p.Resource),
		})
	}
	_ = table.Render()
	fmt.Println()
}

func printSummary(rep *sim.Report) {
	infoColor := color.New(color.FgYellow)
	infoColor.Println("Final state:")

	f := rep.Final
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Stat", "Value"}),
	)
	rows := [][]string{
		{"Pollen", grouper.Int(f.Pollen)},
		{"Nectar", grouper.Int(f.Nectar)},
		{"Lifetime pollen", grouper.Int(f.PollenLifetime)},
		{"User level", fmt.Sprintf("%d", f.UserLevel)},
		{"Bees", fmt.Sprintf("%d", f.Bees)},
		{"Wasps", fmt.Sprintf("%d", f.Wasps)},
		{"Ducks", fmt.Sprintf("%d", f.Ducks)},
		{"Rabbits", fmt.Sprintf("%d", f.Rabbits)},
		{"Production level", fmt.Sprintf("%d", f.ProdLevel)},
		{"Hive level", fmt.Sprintf("%d", f.HiveLevel)},
		{"Achievements", fmt.Sprintf("%d", len(f.Achievements))},
	}
	for _, r := range rows {
		_ = table.Append(r)
	}
	_ = table.Render()
}

func formatTime(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
