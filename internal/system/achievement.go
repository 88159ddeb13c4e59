package system

import (
	"time"

	"github.com/honeyhive/server/internal/core/event"
	coresys "github.com/honeyhive/server/internal/core/system"
	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/present"
	"go.uber.org/zap"
)

// StatFunc reads the current value of a game statistic.
type StatFunc func(data.AchievementStat) float64

// AchievementTracker remembers which achievements are unlocked.
// Accessed only from the game loop goroutine.
type AchievementTracker struct {
	table    *data.AchievementTable
	unlocked map[string]bool
	order    []string
}

func NewAchievementTracker(table *data.AchievementTable) *AchievementTracker {
	return &AchievementTracker{table: table, unlocked: make(map[string]bool)}
}

// Check unlocks every achievement whose stat reached its value and returns
// the newly unlocked ones in table order.
func (t *AchievementTracker) Check(stat StatFunc) []*data.Achievement {
	var fresh []*data.Achievement
	for _, a := range t.table.All() {
		if t.unlocked[a.ID] {
			continue
		}
		if stat(a.Stat) >= a.Value {
			t.unlocked[a.ID] = true
			t.order = append(t.order, a.ID)
			fresh = append(fresh, a)
		}
	}
	return fresh
}

// Unlocked returns unlocked ids in unlock order.
func (t *AchievementTracker) Unlocked() []string {
	return append([]string(nil), t.order...)
}

func (t *AchievementTracker) IsUnlocked(id string) bool { return t.unlocked[id] }

// Restore replaces the unlocked set. Ids missing from the table are dropped.
func (t *AchievementTracker) Restore(ids []string) {
	t.unlocked = make(map[string]bool, len(ids))
	t.order = t.order[:0]
	for _, id := range ids {
		if t.table.Get(id) == nil || t.unlocked[id] {
			continue
		}
		t.unlocked[id] = true
		t.order = append(t.order, id)
	}
}

// AchievementSystem announces achievements as their thresholds are met.
// Phase 3 (PostUpdate), after leveling.
type AchievementSystem struct {
	tracker   *AchievementTracker
	stat      StatFunc
	presenter present.Presenter
	bus       *event.Bus
	log       *zap.Logger
}

func NewAchievementSystem(tracker *AchievementTracker, stat StatFunc, p present.Presenter, bus *event.Bus, log *zap.Logger) *AchievementSystem {
	return &AchievementSystem{tracker: tracker, stat: stat, presenter: p, bus: bus, log: log}
}

func (s *AchievementSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *AchievementSystem) Update(_ time.Duration) {
	for _, a := range s.tracker.Check(s.stat) {
		s.presenter.AchievementUnlocked(a.ID, a.Title)
		event.Emit(s.bus, event.AchievementUnlocked{ID: a.ID, Title: a.Title})
		s.log.Info("achievement unlocked", zap.String("id", a.ID), zap.String("title", a.Title))
	}
}
