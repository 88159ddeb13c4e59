package economy

import "math"

// Yield is what one production step added.
type Yield struct {
	Pollen float64
	Nectar float64
}

// Rate returns the per-second production for the current holdings.
func (m *Model) Rate() Yield {
	bees := float64(m.owned[Bee])

	pollen := bees * m.rates.PollenPerBee

	nectarRate := bees * m.NectarPerBee() * m.HiveSpeedMultiplier()
	nectar := nectarRate
	pollen += nectarRate * m.rates.PollenRatio

	rabbitNectar := float64(m.owned[Rabbit]) * m.rates.RabbitNectarPerSec
	nectar += rabbitNectar
	pollen += rabbitNectar * m.rates.PollenRatio

	pollen += float64(m.owned[Wasp]) * m.rates.WaspPollenPerSec
	pollen += float64(m.owned[Duck]) * m.rates.DuckPollenPerSec

	return Yield{Pollen: pollen, Nectar: nectar}
}

// ApplyProduction advances production by dt seconds. Non-positive or NaN dt
// produces nothing.
func (m *Model) ApplyProduction(dt float64) Yield {
	if !(dt > 0) {
		return Yield{}
	}
	r := m.Rate()
	y := Yield{Pollen: r.Pollen * dt, Nectar: r.Nectar * dt}

	m.pollen += y.Pollen
	m.nectar += y.Nectar
	if y.Pollen > 0 && !math.IsNaN(y.Pollen) {
		m.lifetime += y.Pollen
	}
	return y
}
