// Package sim plays a session with a greedy buyer over simulated time. It is
// used to check the balance curves without a client.
package sim

import (
	"time"

	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/game"
	"github.com/honeyhive/server/internal/persist"
)

// Config bounds a run.
type Config struct {
	Duration time.Duration // simulated time
	Step     time.Duration // tick length
	// MaxBuysPerStep caps purchases between two ticks; 0 means no cap.
	MaxBuysPerStep int
	// Skip lists kinds the buyer never picks.
	Skip []economy.Kind
}

// Purchase is one buy made by the greedy player.
type Purchase struct {
	At       time.Duration
	Kind     economy.Kind
	Resource economy.Resource
	Cost     float64
	Owned    int
}

// LevelMark records when a level was reached.
type LevelMark struct {
	Level       int
	At          time.Duration
	Lifetime    float64
	Requirement float64 // lifetime pollen the previous level asked for
}

// Report is the outcome of a run.
type Report struct {
	Elapsed   time.Duration
	Ticks     int
	Purchases []Purchase
	Levels    []LevelMark
	Final     persist.Snapshot
}

// Bought counts purchases of k.
func (r *Report) Bought(k economy.Kind) int {
	n := 0
	for _, p := range r.Purchases {
		if p.Kind == k {
			n++
		}
	}
	return n
}

// Run drives s until cfg.Duration of simulated time has passed. Before every
// tick it keeps buying the cheapest affordable unlocked card.
func Run(s *game.Session, cfg Config) *Report {
	if cfg.Step <= 0 {
		cfg.Step = 100 * time.Millisecond
	}
	skip := make(map[economy.Kind]bool, len(cfg.Skip))
	for _, k := range cfg.Skip {
		skip[k] = true
	}

	rep := &Report{}
	level := s.Level().Level()
	for rep.Elapsed < cfg.Duration {
		for n := 0; cfg.MaxBuysPerStep == 0 || n < cfg.MaxBuysPerStep; n++ {
			p, ok := buyCheapest(s, skip)
			if !ok {
				break
			}
			p.At = rep.Elapsed
			rep.Purchases = append(rep.Purchases, p)
		}

		s.Tick(cfg.Step)
		rep.Elapsed += cfg.Step
		rep.Ticks++

		for l := s.Level().Level(); level < l; {
			level++
			rep.Levels = append(rep.Levels, LevelMark{
				Level:       level,
				At:          rep.Elapsed,
				Lifetime:    s.Model().PollenLifetime(),
				Requirement: s.Level().RequirementFor(level - 1),
			})
		}
	}
	rep.Final = s.Snapshot()
	return rep
}

func buyCheapest(s *game.Session, skip map[economy.Kind]bool) (Purchase, bool) {
	var best Purchase
	found := false
	for _, card := range s.Cards() {
		if skip[card.Kind] || !card.Affordable {
			continue
		}
		if !found || card.Cost < best.Cost {
			best = Purchase{Kind: card.Kind, Resource: card.Resource, Cost: card.Cost}
			found = true
		}
	}
	if !found || !s.Buy(best.Kind).OK() {
		return Purchase{}, false
	}
	best.Owned = s.Model().Owned(best.Kind)
	return best, true
}
