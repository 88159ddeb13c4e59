// Package present carries read-only game views out of the core and player
// commands back in. Rendering, audio and layout live behind these interfaces.
package present

import "github.com/honeyhive/server/internal/economy"

// Handle is the presenter's reference to a spawned entity.
type Handle uint64

// ResourceView feeds the resource bar.
type ResourceView struct {
	Pollen           float64 `json:"pollen"`
	Nectar           float64 `json:"nectar"`
	SpeedPercent     float64 `json:"speedPercent"`
	UserLevel        int     `json:"userLevel"`
	LevelRequirement float64 `json:"levelRequirement"`
	LevelProgress    float64 `json:"levelProgress"`
	PollenText       string  `json:"pollenText"`
	NectarText       string  `json:"nectarText"`
	LifetimeText     string  `json:"lifetimeText"` // full lifetime pollen, digit grouped
}

// CardView feeds one upgrade card. Value is the owned count for creature cards
// and the bonus percent for level cards.
type CardView struct {
	Kind        economy.Kind     `json:"kind"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	CostIcon    string           `json:"costIcon"`
	Resource    economy.Resource `json:"resource"`
	Cost        float64          `json:"cost"`
	CostText    string           `json:"costText"`
	Value       float64          `json:"value"`
	ValueText   string           `json:"valueText"`
	ShowAmount  bool             `json:"showAmount"`
	Affordable  bool             `json:"affordable"`
}

// LockView is the lock state of a card.
type LockView struct {
	Kind   economy.Kind `json:"kind"`
	Locked bool         `json:"locked"`
	Reason string       `json:"reason,omitempty"`
}

// EntityView is one creature's position.
type EntityView struct {
	Handle Handle       `json:"handle"`
	Kind   economy.Kind `json:"kind"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Z      float64      `json:"z"`
}

// Presenter receives every outbound call from the core. All methods are called
// from the game loop goroutine.
type Presenter interface {
	Spawn(kind economy.Kind) Handle
	SetSpeedMultiplier(fn func() float64)
	RefreshResources(v ResourceView)
	RefreshCard(v CardView)
	SetCardLocked(v LockView)
	RevealCard(v CardView)
	LevelUp(level int)
	MoveEntities(vs []EntityView)
	AchievementUnlocked(id, title string)
	Reset()
}

// Nop discards every call. Spawn still hands out distinct handles.
type Nop struct {
	next Handle
}

func (n *Nop) Spawn(economy.Kind) Handle {
	n.next++
	return n.next
}

func (*Nop) SetSpeedMultiplier(func() float64)  {}
func (*Nop) RefreshResources(ResourceView)      {}
func (*Nop) RefreshCard(CardView)               {}
func (*Nop) SetCardLocked(LockView)             {}
func (*Nop) RevealCard(CardView)                {}
func (*Nop) LevelUp(int)                        {}
func (*Nop) MoveEntities([]EntityView)          {}
func (*Nop) AchievementUnlocked(string, string) {}
func (*Nop) Reset()                             {}

// Multi fans every call out to several presenters. Spawn returns the handle of
// the first one.
type Multi []Presenter

func (m Multi) Spawn(kind economy.Kind) Handle {
	var h Handle
	for i, p := range m {
		got := p.Spawn(kind)
		if i == 0 {
			h = got
		}
	}
	return h
}

func (m Multi) SetSpeedMultiplier(fn func() float64) {
	for _, p := range m {
		p.SetSpeedMultiplier(fn)
	}
}

func (m Multi) RefreshResources(v ResourceView) {
	for _, p := range m {
		p.RefreshResources(v)
	}
}

func (m Multi) RefreshCard(v CardView) {
	for _, p := range m {
		p.RefreshCard(v)
	}
}

func (m Multi) SetCardLocked(v LockView) {
	for _, p := range m {
		p.SetCardLocked(v)
	}
}

func (m Multi) RevealCard(v CardView) {
	for _, p := range m {
		p.RevealCard(v)
	}
}

func (m Multi) LevelUp(level int) {
	for _, p := range m {
		p.LevelUp(level)
	}
}

func (m Multi) MoveEntities(vs []EntityView) {
	for _, p := range m {
		p.MoveEntities(vs)
	}
}

func (m Multi) AchievementUnlocked(id, title string) {
	for _, p := range m {
		p.AchievementUnlocked(id, title)
	}
}

func (m Multi) Reset() {
	for _, p := range m {
		p.Reset()
	}
}
