package event

import "github.com/honeyhive/server/internal/economy"

// PurchaseCompleted is emitted after a successful purchase.
type PurchaseCompleted struct {
	Kind     economy.Kind
	Resource economy.Resource
	Cost     float64
	Owned    int // count or level after the purchase
}

// LevelReached is emitted once per level gained.
type LevelReached struct {
	Level          int
	PollenLifetime float64
}

// AchievementUnlocked is emitted the first time an achievement's threshold is met.
type AchievementUnlocked struct {
	ID    string
	Title string
}

// GameStarted is emitted after a new game or a continued game is applied.
type GameStarted struct {
	Continued bool
}
