package economy

import "math"

// Curve prices the next unit of a kind. The first Free units cost nothing and the
// exponent is offset by that allotment.
type Curve struct {
	Resource Resource
	Base     float64
	Rate     float64
	Free     int
}

// CostAt returns the price of the next unit when owned units are already held.
func (c Curve) CostAt(owned int) float64 {
	if owned < c.Free {
		return 0
	}
	return math.Ceil(c.Base * math.Pow(c.Rate, float64(owned-c.Free)))
}

// Rates holds the production tunables. Accessed only from the game loop.
type Rates struct {
	InitialFreeBees    int
	PollenPerBee       float64
	NectarPerBee       float64
	PollenRatio        float64 // derived pollen per unit of nectar produced
	WaspPollenPerSec   float64
	DuckPollenPerSec   float64
	RabbitNectarPerSec float64
	ProdBonusPerLevel  float64
	HiveBonusPerLevel  float64
	HiveOrbitFactor    float64 // orbit speed factor applied to owned creatures per hive level bought
}

// DefaultRates returns the stock game balance.
func DefaultRates() Rates {
	return Rates{
		InitialFreeBees:    1,
		PollenPerBee:       1,
		NectarPerBee:       1,
		PollenRatio:        0.2,
		WaspPollenPerSec:   0.5,
		DuckPollenPerSec:   2,
		RabbitNectarPerSec: 1,
		ProdBonusPerLevel:  0.1,
		HiveBonusPerLevel:  0.05,
		HiveOrbitFactor:    1.05,
	}
}

// State is a plain copy of the model's mutable fields, used for snapshots and
// test setup.
type State struct {
	Pollen         float64
	Nectar         float64
	PollenLifetime float64
	Owned          map[Kind]int
}

// Model holds balances and owned counts. All mutation goes through methods that
// keep balances non-negative and lifetime pollen non-decreasing.
type Model struct {
	pollen   float64
	nectar   float64
	lifetime float64
	owned    map[Kind]int
	rates    Rates
	curves   map[Kind]Curve
}

// NewModel creates a zeroed model. curves maps every purchasable kind to its
// price curve; the bee curve receives the free allotment from rates.
func NewModel(rates Rates, curves map[Kind]Curve) *Model {
	m := &Model{
		owned:  make(map[Kind]int, len(allKinds)),
		rates:  rates,
		curves: make(map[Kind]Curve, len(curves)),
	}
	for k, c := range curves {
		if k == Bee {
			c.Free = rates.InitialFreeBees
		} else {
			c.Free = 0
		}
		m.curves[k] = c
	}
	return m
}

func (m *Model) Pollen() float64         { return m.pollen }
func (m *Model) Nectar() float64         { return m.nectar }
func (m *Model) PollenLifetime() float64 { return m.lifetime }
func (m *Model) Rates() Rates            { return m.rates }

// Owned returns the count held for k (creatures or levels).
func (m *Model) Owned(k Kind) int { return m.owned[k] }

func (m *Model) ProdLevel() int { return m.owned[Production] }
func (m *Model) HiveLevel() int { return m.owned[Hive] }

// Balance returns the current amount of r.
func (m *Model) Balance(r Resource) float64 {
	switch r {
	case Pollen:
		return m.pollen
	case Nectar:
		return m.nectar
	}
	return 0
}

// Curve returns the price curve for k.
func (m *Model) Curve(k Kind) (Curve, bool) {
	c, ok := m.curves[k]
	return c, ok
}

// Cost returns the price of the next unit of k.
func (m *Model) Cost(k Kind) (float64, bool) {
	c, ok := m.curves[k]
	if !ok {
		return 0, false
	}
	return c.CostAt(m.owned[k]), true
}

// CanAfford compares the balance of k's resource against its next cost.
func (m *Model) CanAfford(k Kind) bool {
	c, ok := m.curves[k]
	if !ok {
		return false
	}
	return m.Balance(c.Resource) >= c.CostAt(m.owned[k])
}

// Spend deducts amount from r. It returns false and leaves the balance untouched
// when funds are insufficient.
func (m *Model) Spend(r Resource, amount float64) bool {
	if amount < 0 || math.IsNaN(amount) {
		return false
	}
	switch r {
	case Pollen:
		if m.pollen < amount {
			return false
		}
		m.pollen -= amount
	case Nectar:
		if m.nectar < amount {
			return false
		}
		m.nectar -= amount
	default:
		return false
	}
	return true
}

// Purchase pays for one unit of k and increments its count.
func (m *Model) Purchase(k Kind) (float64, bool) {
	c, ok := m.curves[k]
	if !ok {
		return 0, false
	}
	cost := c.CostAt(m.owned[k])
	if !m.Spend(c.Resource, cost) {
		return cost, false
	}
	m.owned[k]++
	return cost, true
}

// HiveSpeedMultiplier is the production and orbit bonus for the current hive level.
func (m *Model) HiveSpeedMultiplier() float64 {
	return 1 + float64(m.owned[Hive])*m.rates.HiveBonusPerLevel
}

// NectarPerBee is the per-bee nectar rate for the current production level.
func (m *Model) NectarPerBee() float64 {
	return m.rates.NectarPerBee * (1 + float64(m.owned[Production])*m.rates.ProdBonusPerLevel)
}

// State returns a copy of the mutable fields.
func (m *Model) State() State {
	owned := make(map[Kind]int, len(m.owned))
	for k, n := range m.owned {
		if n > 0 {
			owned[k] = n
		}
	}
	return State{
		Pollen:         m.pollen,
		Nectar:         m.nectar,
		PollenLifetime: m.lifetime,
		Owned:          owned,
	}
}

// Restore replaces the mutable fields. Negative or non-finite values are zeroed.
func (m *Model) Restore(s State) {
	m.pollen = nonNegative(s.Pollen)
	m.nectar = nonNegative(s.Nectar)
	m.lifetime = nonNegative(s.PollenLifetime)
	m.owned = make(map[Kind]int, len(allKinds))
	for k, n := range s.Owned {
		if n > 0 && k.Valid() {
			m.owned[k] = n
		}
	}
}

// Reset zeroes the model for a new game.
func (m *Model) Reset() {
	m.Restore(State{})
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
