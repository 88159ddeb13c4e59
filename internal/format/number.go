// Package format renders numbers for resource bars and cards.
package format

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Short renders v with a K or M suffix and two decimals once it reaches a
// thousand. Smaller values are floored to whole units.
func Short(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return strconv.FormatFloat(v/1e6, 'f', 2, 64) + "M"
	case abs >= 1e3:
		return strconv.FormatFloat(v/1e3, 'f', 2, 64) + "K"
	}
	return strconv.FormatFloat(math.Floor(v), 'f', 0, 64)
}

// Percent renders a whole-number percentage such as "105%".
func Percent(v float64) string {
	return Short(math.Round(v)) + "%"
}

// Grouper renders full numbers with locale digit grouping.
type Grouper struct {
	p *message.Printer
}

// NewGrouper creates a grouper for tag, e.g. language.English gives "12,345".
func NewGrouper(tag language.Tag) *Grouper {
	return &Grouper{p: message.NewPrinter(tag)}
}

// Int renders v floored and grouped.
func (g *Grouper) Int(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return g.p.Sprintf("%d", int64(math.Floor(v)))
}
