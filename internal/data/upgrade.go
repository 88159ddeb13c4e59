package data

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/honeyhive/server/internal/economy"
	"gopkg.in/yaml.v3"
)

// ErrUnknownKind is returned for catalog lookups of kinds that were never loaded.
var ErrUnknownKind = errors.New("unknown upgrade kind")

// Upgrade is one purchasable card. Immutable after load.
type Upgrade struct {
	Kind          economy.Kind
	Order         int
	Name          string
	Description   string
	Icon          string
	CostIcon      string
	Resource      economy.Resource
	BaseCost      float64
	CostRate      float64
	ShowAmount    bool
	LevelReq      int     // 0 = always unlocked
	ValuePerLevel float64 // percent shown per level on cards without an owned count
}

// Curve returns the price curve of the upgrade.
func (u *Upgrade) Curve() economy.Curve {
	return economy.Curve{Resource: u.Resource, Base: u.BaseCost, Rate: u.CostRate}
}

// LockedText is the hint shown on a locked card.
func (u *Upgrade) LockedText() string {
	if u.LevelReq <= 0 {
		return ""
	}
	return fmt.Sprintf("Reach Level %d", u.LevelReq)
}

// UpgradeTable holds the catalog ordered by display order and indexed by kind.
type UpgradeTable struct {
	ordered []*Upgrade
	byKind  map[economy.Kind]*Upgrade
}

// Get returns an upgrade by kind, or nil if not found.
func (t *UpgradeTable) Get(k economy.Kind) *Upgrade {
	return t.byKind[k]
}

// Lookup is Get with an error for unknown kinds.
func (t *UpgradeTable) Lookup(k economy.Kind) (*Upgrade, error) {
	u := t.byKind[k]
	if u == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return u, nil
}

// Ordered returns the upgrades in display order.
func (t *UpgradeTable) Ordered() []*Upgrade {
	return t.ordered
}

// Count returns the number of upgrades loaded.
func (t *UpgradeTable) Count() int {
	return len(t.ordered)
}

// Curves returns the price curve of every upgrade, keyed by kind.
func (t *UpgradeTable) Curves() map[economy.Kind]economy.Curve {
	out := make(map[economy.Kind]economy.Curve, len(t.ordered))
	for _, u := range t.ordered {
		out[u.Kind] = u.Curve()
	}
	return out
}

type upgradeYAMLEntry struct {
	Kind          string  `yaml:"kind"`
	Order         int     `yaml:"order"`
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Icon          string  `yaml:"icon"`
	CostIcon      string  `yaml:"cost_icon"`
	CostResource  string  `yaml:"cost_resource"`
	BaseCost      float64 `yaml:"base_cost"`
	CostRate      float64 `yaml:"cost_rate"`
	ShowAmount    bool    `yaml:"show_amount"`
	LevelReq      *int    `yaml:"level_req"`
	ValuePerLevel float64 `yaml:"value_per_level"`
}

type upgradeListFile struct {
	Upgrades []upgradeYAMLEntry `yaml:"upgrades"`
}

// LoadUpgradeTable loads the upgrade catalog from a YAML file.
func LoadUpgradeTable(path string) (*UpgradeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upgrade_list: %w", err)
	}
	return ParseUpgradeTable(raw)
}

// ParseUpgradeTable builds the catalog from YAML bytes and validates every entry.
func ParseUpgradeTable(raw []byte) (*UpgradeTable, error) {
	var f upgradeListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse upgrade_list: %w", err)
	}
	if len(f.Upgrades) == 0 {
		return nil, errors.New("upgrade_list: no upgrades defined")
	}

	t := &UpgradeTable{byKind: make(map[economy.Kind]*Upgrade, len(f.Upgrades))}
	orders := make(map[int]economy.Kind, len(f.Upgrades))
	for i := range f.Upgrades {
		e := &f.Upgrades[i]
		kind, err := economy.ParseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("upgrade_list entry %d: %w", i, err)
		}
		if _, dup := t.byKind[kind]; dup {
			return nil, fmt.Errorf("upgrade_list: duplicate kind %q", kind)
		}
		if prev, dup := orders[e.Order]; dup {
			return nil, fmt.Errorf("upgrade_list: %q and %q share order %d", prev, kind, e.Order)
		}
		res := economy.Resource(e.CostResource)
		if !res.Valid() {
			return nil, fmt.Errorf("upgrade_list %q: unknown cost_resource %q", kind, e.CostResource)
		}
		if e.BaseCost <= 0 {
			return nil, fmt.Errorf("upgrade_list %q: base_cost must be positive", kind)
		}
		if e.CostRate < 1 {
			return nil, fmt.Errorf("upgrade_list %q: cost_rate must be >= 1", kind)
		}
		u := &Upgrade{
			Kind:          kind,
			Order:         e.Order,
			Name:          e.Name,
			Description:   e.Description,
			Icon:          e.Icon,
			CostIcon:      e.CostIcon,
			Resource:      res,
			BaseCost:      e.BaseCost,
			CostRate:      e.CostRate,
			ShowAmount:    e.ShowAmount,
			ValuePerLevel: e.ValuePerLevel,
		}
		if e.LevelReq != nil && *e.LevelReq > 0 {
			u.LevelReq = *e.LevelReq
		}
		orders[e.Order] = kind
		t.byKind[kind] = u
		t.ordered = append(t.ordered, u)
	}
	sort.Slice(t.ordered, func(i, j int) bool {
		return t.ordered[i].Order < t.ordered[j].Order
	})
	return t, nil
}
