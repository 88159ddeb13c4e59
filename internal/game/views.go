package game

import (
	"github.com/honeyhive/server/internal/data"
	"github.com/honeyhive/server/internal/format"
	"github.com/honeyhive/server/internal/present"
	"golang.org/x/text/language"
)

var grouper = format.NewGrouper(language.English)

// Refresh pushes the resource bar and every visible card to the presenter.
func (s *Session) Refresh() {
	s.presenter.RefreshResources(s.Resources())
	for _, u := range s.level.Visible() {
		s.presenter.RefreshCard(s.card(u))
		s.presenter.SetCardLocked(s.lock(u))
	}
}

// Resources builds the resource bar view.
func (s *Session) Resources() present.ResourceView {
	lifetime := s.model.PollenLifetime()
	return present.ResourceView{
		Pollen:           s.model.Pollen(),
		Nectar:           s.model.Nectar(),
		SpeedPercent:     s.model.HiveSpeedMultiplier() * 100,
		UserLevel:        s.level.Level(),
		LevelRequirement: s.level.Requirement(),
		LevelProgress:    s.level.Progress(lifetime),
		PollenText:       format.Short(s.model.Pollen()),
		NectarText:       format.Short(s.model.Nectar()),
		LifetimeText:     grouper.Int(lifetime),
	}
}

// Cards returns the views of every visible card in catalog order.
func (s *Session) Cards() []present.CardView {
	visible := s.level.Visible()
	out := make([]present.CardView, 0, len(visible))
	for _, u := range visible {
		out = append(out, s.card(u))
	}
	return out
}

// Locks returns the lock state of every visible card in catalog order.
func (s *Session) Locks() []present.LockView {
	visible := s.level.Visible()
	out := make([]present.LockView, 0, len(visible))
	for _, u := range visible {
		out = append(out, s.lock(u))
	}
	return out
}

// card builds a card view. Creature cards show the owned count; level cards
// show the bonus percent, level times value_per_level.
func (s *Session) card(u *data.Upgrade) present.CardView {
	cost, _ := s.model.Cost(u.Kind)
	owned := s.model.Owned(u.Kind)
	v := present.CardView{
		Kind:        u.Kind,
		Name:        u.Name,
		Description: u.Description,
		Icon:        u.Icon,
		CostIcon:    u.CostIcon,
		Resource:    u.Resource,
		Cost:        cost,
		CostText:    format.Short(cost),
		ShowAmount:  u.ShowAmount,
		Affordable:  s.model.CanAfford(u.Kind) && !s.level.IsLocked(u.Kind),
	}
	if u.Kind.Mobile() {
		v.Value = float64(owned)
		v.ValueText = format.Short(v.Value)
	} else {
		v.Value = float64(owned) * u.ValuePerLevel
		v.ValueText = format.Percent(v.Value)
	}
	return v
}

func (s *Session) lock(u *data.Upgrade) present.LockView {
	return present.LockView{
		Kind:   u.Kind,
		Locked: s.level.IsLocked(u.Kind),
		Reason: s.level.LockReason(u.Kind),
	}
}
