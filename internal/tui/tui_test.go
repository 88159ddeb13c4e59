package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/game"
	"github.com/honeyhive/server/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newModel(t *testing.T, store persist.Store) (Model, *game.Session, *Board) {
	t.Helper()
	cat, err := data.LoadUpgradeTable("../../data/yaml/upgrade_list.yaml")
	require.NoError(t, err)
	ach, err := data.LoadAchievementTable("../../data/yaml/achievement_list.yaml")
	require.NoError(t, err)
	board := NewBoard()
	s, err := game.New(game.Deps{
		Catalog:      cat,
		Achievements: ach,
		Presenter:    board,
		Store:        store,
	}, game.DefaultOptions())
	require.NoError(t, err)
	return New(s, board, 100*time.Millisecond, zap.NewNop()), s, board
}

func press(m Model, key string) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next.(Model), cmd
}

func TestBoard_RevealOrderAndReset(t *testing.T) {
	_, _, board := newModel(t, nil)

	cards := board.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, economy.Bee, cards[0].Kind)
	assert.Equal(t, economy.Wasp, cards[1].Kind)
	assert.True(t, board.Lock(economy.Wasp).Locked)

	board.Reset()
	assert.Empty(t, board.Cards())
}

func TestBoard_FeedIsBounded(t *testing.T) {
	b := NewBoard()
	for i := 0; i < maxFeed+3; i++ {
		b.LevelUp(i + 2)
	}
	assert.Len(t, b.Feed(), maxFeed)
	assert.Equal(t, "Level up! Reached level 10", b.Feed()[maxFeed-1])
}

func TestModel_BuyByNumber(t *testing.T) {
	m, s, board := newModel(t, nil)

	m, _ = press(m, "1")

	assert.Equal(t, 1, s.Model().Owned(economy.Bee))
	assert.Equal(t, 1, board.Creatures(economy.Bee))
	assert.Contains(t, m.status, "purchased")

	m, _ = press(m, "2")
	assert.Contains(t, m.status, "locked")
	m, _ = press(m, "9")
	assert.Zero(t, s.Model().Owned(economy.Wasp))
}

func TestModel_TickAdvancesSession(t *testing.T) {
	m, s, _ := newModel(t, nil)
	m, _ = press(m, "1")

	_, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)

	assert.Equal(t, uint64(1), s.Ticks())
	assert.Positive(t, s.Model().Pollen())
}

func TestModel_SaveAndContinue(t *testing.T) {
	store := &persist.MemStore{}
	m, s, _ := newModel(t, store)
	m, _ = press(m, "1")
	m, _ = press(m, "s")
	assert.Equal(t, 1, store.Saves())

	m, _ = press(m, "n")
	assert.Zero(t, s.Model().Owned(economy.Bee))

	m, _ = press(m, "c")
	assert.Equal(t, "Save loaded", m.status)
	assert.Equal(t, 1, s.Model().Owned(economy.Bee))

	_, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, 2, store.Saves())
}

func TestModel_View(t *testing.T) {
	m, _, _ := newModel(t, nil)
	m, _ = press(m, "1")

	out := m.View()

	assert.Contains(t, out, "HoneyHive")
	assert.Contains(t, out, "Hire Bee")
	assert.Contains(t, out, "Reach Level 2")
	assert.Contains(t, out, "Lifetime pollen 0")
}
