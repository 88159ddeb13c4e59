// Package tui renders a session in the terminal with bubbletea.
package tui

import (
	"fmt"

	"github.com/honeyhive/server/internal/economy"
	"github.com/honeyhive/server/internal/present"
)

const maxFeed = 6

// Board is a Presenter that keeps the latest view of everything for View to
// render. It is only touched from the bubbletea update goroutine.
type Board struct {
	resources present.ResourceView
	cards     map[economy.Kind]present.CardView
	locks     map[economy.Kind]present.LockView
	order     []economy.Kind // revealed cards, in reveal order
	creatures map[economy.Kind]int
	feed      []string
	moves     int
	next      present.Handle
	speed     func() float64
}

func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

func (b *Board) Spawn(kind economy.Kind) present.Handle {
	b.creatures[kind]++
	b.next++
	return b.next
}

func (b *Board) SetSpeedMultiplier(fn func() float64) { b.speed = fn }

func (b *Board) RefreshResources(v present.ResourceView) { b.resources = v }

func (b *Board) RefreshCard(v present.CardView) { b.cards[v.Kind] = v }

func (b *Board) SetCardLocked(v present.LockView) { b.locks[v.Kind] = v }

func (b *Board) RevealCard(v present.CardView) {
	if _, seen := b.cards[v.Kind]; !seen {
		b.order = append(b.order, v.Kind)
	}
	b.cards[v.Kind] = v
}

func (b *Board) LevelUp(level int) {
	b.note("Level up! Reached level %d", level)
}

func (b *Board) MoveEntities(vs []present.EntityView) { b.moves++ }

func (b *Board) AchievementUnlocked(_, title string) {
	b.note("Achievement unlocked: %s", title)
}

func (b *Board) Reset() {
	b.resources = present.ResourceView{}
	b.cards = make(map[economy.Kind]present.CardView)
	b.locks = make(map[economy.Kind]present.LockView)
	b.order = nil
	b.creatures = make(map[economy.Kind]int)
	b.moves = 0
}

// Speed evaluates the installed multiplier, or 1 when none is set.
func (b *Board) Speed() float64 {
	if b.speed == nil {
		return 1
	}
	return b.speed()
}

// Cards returns the revealed cards in reveal order.
func (b *Board) Cards() []present.CardView {
	out := make([]present.CardView, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.cards[k])
	}
	return out
}

// Lock returns the lock state of k.
func (b *Board) Lock(k economy.Kind) present.LockView { return b.locks[k] }

// Creatures returns how many creatures of k are on screen.
func (b *Board) Creatures(k economy.Kind) int { return b.creatures[k] }

// Feed returns recent notices, oldest first.
func (b *Board) Feed() []string { return b.feed }

func (b *Board) note(msg string, args ...any) {
	b.feed = append(b.feed, fmt.Sprintf(msg, args...))
	if len(b.feed) > maxFeed {
		b.feed = b.feed[len(b.feed)-maxFeed:]
	}
}
