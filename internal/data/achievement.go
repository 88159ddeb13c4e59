package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AchievementStat names the game statistic an achievement watches.
type AchievementStat string

const (
	StatBees           AchievementStat = "bees"
	StatWasps          AchievementStat = "wasps"
	StatDucks          AchievementStat = "ducks"
	StatRabbits        AchievementStat = "rabbits"
	StatUserLevel      AchievementStat = "userLevel"
	StatProdLevel      AchievementStat = "prodLevel"
	StatHiveLevel      AchievementStat = "hiveLevel"
	StatPollenLifetime AchievementStat = "pollenLifetime"
	StatPollen         AchievementStat = "pollen"
	StatNectar         AchievementStat = "nectar"
)

func (s AchievementStat) valid() bool {
	switch s {
	case StatBees, StatWasps, StatDucks, StatRabbits, StatUserLevel, StatProdLevel,
		StatHiveLevel, StatPollenLifetime, StatPollen, StatNectar:
		return true
	}
	return false
}

// Achievement unlocks once its stat reaches Value.
type Achievement struct {
	ID          string
	Title       string
	Description string
	Stat        AchievementStat
	Value       float64
}

// AchievementTable holds achievements in file order.
type AchievementTable struct {
	list []*Achievement
	byID map[string]*Achievement
}

// Get returns an achievement by id, or nil if not found.
func (t *AchievementTable) Get(id string) *Achievement {
	return t.byID[id]
}

// All returns the achievements in file order.
func (t *AchievementTable) All() []*Achievement {
	return t.list
}

// Count returns the number of achievements loaded.
func (t *AchievementTable) Count() int {
	return len(t.list)
}

type achievementYAMLEntry struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Type        string  `yaml:"type"`
	Value       float64 `yaml:"value"`
}

type achievementListFile struct {
	Achievements []achievementYAMLEntry `yaml:"achievements"`
}

// LoadAchievementTable loads achievements from a YAML file.
func LoadAchievementTable(path string) (*AchievementTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read achievement_list: %w", err)
	}
	return ParseAchievementTable(raw)
}

// ParseAchievementTable builds the table from YAML bytes.
func ParseAchievementTable(raw []byte) (*AchievementTable, error) {
	var f achievementListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse achievement_list: %w", err)
	}
	t := &AchievementTable{byID: make(map[string]*Achievement, len(f.Achievements))}
	for i, e := range f.Achievements {
		if e.ID == "" {
			return nil, fmt.Errorf("achievement_list entry %d: missing id", i)
		}
		if _, dup := t.byID[e.ID]; dup {
			return nil, fmt.Errorf("achievement_list: duplicate id %q", e.ID)
		}
		stat := AchievementStat(e.Type)
		if !stat.valid() {
			return nil, fmt.Errorf("achievement_list %q: unknown type %q", e.ID, e.Type)
		}
		a := &Achievement{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Stat:        stat,
			Value:       e.Value,
		}
		t.byID[a.ID] = a
		t.list = append(t.list, a)
	}
	return t, nil
}
