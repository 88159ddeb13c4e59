package present

import "github.com/honeyhive/server/internal/economy"

// Recorder keeps every presenter call for inspection in tests and tools.
type Recorder struct {
	Spawns       []economy.Kind
	Resources    []ResourceView
	Cards        []CardView
	Locks        []LockView
	Reveals      []CardView
	LevelUps     []int
	Moves        [][]EntityView
	Achievements []string
	Resets       int
	SpeedSets    int

	speed func() float64
	next  Handle
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Spawn(kind economy.Kind) Handle {
	r.Spawns = append(r.Spawns, kind)
	r.next++
	return r.next
}

func (r *Recorder) SetSpeedMultiplier(fn func() float64) {
	r.speed = fn
	r.SpeedSets++
}

// Speed evaluates the installed speed multiplier, or 1 when none is set.
func (r *Recorder) Speed() float64 {
	if r.speed == nil {
		return 1
	}
	return r.speed()
}

func (r *Recorder) RefreshResources(v ResourceView) { r.Resources = append(r.Resources, v) }
func (r *Recorder) RefreshCard(v CardView)          { r.Cards = append(r.Cards, v) }
func (r *Recorder) SetCardLocked(v LockView)        { r.Locks = append(r.Locks, v) }
func (r *Recorder) RevealCard(v CardView)           { r.Reveals = append(r.Reveals, v) }
func (r *Recorder) LevelUp(level int)               { r.LevelUps = append(r.LevelUps, level) }
func (r *Recorder) MoveEntities(vs []EntityView)    { r.Moves = append(r.Moves, vs) }

func (r *Recorder) AchievementUnlocked(id, _ string) {
	r.Achievements = append(r.Achievements, id)
}

func (r *Recorder) Reset() { r.Resets++ }

// LastResources returns the latest resource view.
func (r *Recorder) LastResources() (ResourceView, bool) {
	if len(r.Resources) == 0 {
		return ResourceView{}, false
	}
	return r.Resources[len(r.Resources)-1], true
}

// LastCard returns the latest view pushed for kind.
func (r *Recorder) LastCard(kind economy.Kind) (CardView, bool) {
	for i := len(r.Cards) - 1; i >= 0; i-- {
		if r.Cards[i].Kind == kind {
			return r.Cards[i], true
		}
	}
	return CardView{}, false
}

// LastLock returns the latest lock state pushed for kind.
func (r *Recorder) LastLock(kind economy.Kind) (LockView, bool) {
	for i := len(r.Locks) - 1; i >= 0; i-- {
		if r.Locks[i].Kind == kind {
			return r.Locks[i], true
		}
	}
	return LockView{}, false
}

// RevealedKinds lists revealed cards in reveal order.
func (r *Recorder) RevealedKinds() []economy.Kind {
	out := make([]economy.Kind, 0, len(r.Reveals))
	for _, v := range r.Reveals {
		out = append(out, v.Kind)
	}
	return out
}
