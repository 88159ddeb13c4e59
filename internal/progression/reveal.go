package progression

import "github.com/honeyhive/server/internal/data"

// Reveal advances the card reveal mark and returns the cards that became visible.
// Cards are shown in catalog order up to and including the first locked one, so
// unlocking the last visible card reveals exactly the next card. The mark never
// moves back.
func (c *Controller) Reveal() []*data.Upgrade {
	ordered := c.catalog.Ordered()
	target := len(ordered)
	for i, u := range ordered {
		if c.level < u.LevelReq {
			target = i + 1
			break
		}
	}
	if target <= c.revealed {
		return nil
	}
	fresh := ordered[c.revealed:target]
	c.revealed = target
	return fresh
}

// Visible returns the cards revealed so far, in catalog order.
func (c *Controller) Visible() []*data.Upgrade {
	return c.catalog.Ordered()[:c.revealed]
}
