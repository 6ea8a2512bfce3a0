package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
)

//go:embed data/*.json
var embedded embed.FS

// File names inside a dataset directory.
const (
	MovesFile     = "moves.json"
	SpeciesFile   = "species.json"
	WildPoolFile  = "wild_pool.json"
	OpponentsFile = "opponents.json"
)

// EffectRecord is the JSON shape of a move effect.
type EffectRecord struct {
	Kind      string `json:"kind"`
	Target    string `json:"target,omitempty"`
	Stat      string `json:"stat,omitempty"`
	Stages    int    `json:"stages,omitempty"`
	Condition string `json:"condition,omitempty"`
	Chance    *int   `json:"chance,omitempty"`
	Amount    int    `json:"amount,omitempty"`
}

// MoveRecord is the JSON shape of a move.
type MoveRecord struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Power    int           `json:"power"`
	Accuracy int           `json:"accuracy"`
	Category string        `json:"category"`
	Effect   *EffectRecord `json:"effect,omitempty"`
}

// StatsRecord is the JSON shape of base stats.
type StatsRecord struct {
	HP        int `json:"hp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`
}

// LearnRecord is one learnset entry.
type LearnRecord struct {
	Move  string `json:"move"`
	Level int    `json:"level"`
}

// SpeciesRecord is the JSON shape of a species.
type SpeciesRecord struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Types     []string      `json:"types"`
	BaseStats StatsRecord   `json:"base_stats"`
	CatchRate int           `json:"catch_rate"`
	Learnset  []LearnRecord `json:"learnset"`
}

// PoolRecord is one wild pool entry.
type PoolRecord struct {
	SpeciesID int `json:"species_id"`
	Weight    int `json:"weight"`
}

// TeamRecord is one opponent team member.
type TeamRecord struct {
	SpeciesID int `json:"species_id"`
	Level     int `json:"level"`
}

// OpponentRecord is the JSON shape of a trainer or gym leader.
type OpponentRecord struct {
	ID   string       `json:"id"`
	Kind string       `json:"kind"`
	Name string       `json:"name"`
	Team []TeamRecord `json:"team"`
}

// Move converts the record.
func (r MoveRecord) Move() (creature.Move, error) {
	t, err := creature.ParseType(r.Type)
	if err != nil {
		return creature.Move{}, fmt.Errorf("move %s: %w", r.ID, err)
	}
	category, err := creature.ParseCategory(r.Category)
	if err != nil {
		return creature.Move{}, fmt.Errorf("move %s: %w", r.ID, err)
	}
	if r.Accuracy < 0 || r.Accuracy > 100 {
		return creature.Move{}, fmt.Errorf("move %s: accuracy %d out of range", r.ID, r.Accuracy)
	}
	m := creature.Move{
		ID:       r.ID,
		Name:     r.Name,
		Type:     t,
		Power:    r.Power,
		Accuracy: r.Accuracy,
		Category: category,
	}
	if r.Effect != nil {
		effect, err := r.Effect.Effect()
		if err != nil {
			return creature.Move{}, fmt.Errorf("move %s: %w", r.ID, err)
		}
		m.Effect = &effect
	}
	return m, nil
}

// Effect converts the record.
func (r EffectRecord) Effect() (creature.Effect, error) {
	kind, err := creature.ParseEffectKind(r.Kind)
	if err != nil {
		return creature.Effect{}, err
	}
	target, err := creature.ParseTarget(r.Target)
	if err != nil {
		return creature.Effect{}, err
	}
	e := creature.Effect{Kind: kind, Target: target, Stages: r.Stages, Amount: r.Amount}
	if r.Chance != nil {
		e.Chance, e.HasChance = *r.Chance, true
	}
	switch kind {
	case creature.EffectStatChange:
		if e.Stat, err = creature.ParseStat(r.Stat); err != nil {
			return creature.Effect{}, err
		}
	case creature.EffectStatusCondition:
		if e.Condition, err = creature.ParseCondition(r.Condition); err != nil {
			return creature.Effect{}, err
		}
	}
	return e, nil
}

// RecordOf converts a move back into its JSON shape.
func RecordOf(m creature.Move) MoveRecord {
	r := MoveRecord{
		ID:       m.ID,
		Name:     m.Name,
		Type:     m.Type.String(),
		Power:    m.Power,
		Accuracy: m.Accuracy,
		Category: m.Category.String(),
	}
	if e := m.Effect; e != nil {
		r.Effect = &EffectRecord{
			Kind:   e.Kind.String(),
			Target: e.Target.String(),
			Stages: e.Stages,
			Amount: e.Amount,
		}
		if e.HasChance {
			chance := e.Chance
			r.Effect.Chance = &chance
		}
		switch e.Kind {
		case creature.EffectStatChange:
			r.Effect.Stat = e.Stat.String()
		case creature.EffectStatusCondition:
			r.Effect.Condition = e.Condition.String()
		}
	}
	return r
}

// Definition converts the record.
func (r SpeciesRecord) Definition() (CreatureDefinition, error) {
	if len(r.Types) < 1 || len(r.Types) > 2 {
		return CreatureDefinition{}, fmt.Errorf("species %d: %w", r.ID, creature.ErrInvalidTypes)
	}
	types := make([]creature.Type, len(r.Types))
	for i, name := range r.Types {
		t, err := creature.ParseType(name)
		if err != nil {
			return CreatureDefinition{}, fmt.Errorf("species %d: %w", r.ID, err)
		}
		types[i] = t
	}
	learnset := make([]LearnableMove, len(r.Learnset))
	for i, l := range r.Learnset {
		learnset[i] = LearnableMove{MoveID: l.Move, Level: l.Level}
	}
	s := r.BaseStats
	return CreatureDefinition{
		ID:        r.ID,
		Name:      r.Name,
		Types:     types,
		BaseStats: creature.Stats{HP: s.HP, Attack: s.Attack, Defense: s.Defense, SpAttack: s.SpAttack, SpDefense: s.SpDefense, Speed: s.Speed},
		CatchRate: r.CatchRate,
		Learnset:  learnset,
	}, nil
}

// Dataset is a complete catalog loaded into memory.
type Dataset struct {
	Species   map[int]CreatureDefinition
	Moves     map[string]creature.Move
	WildPool  encounter.Pool
	Opponents []OpponentDefinition
}

// DefaultDataset returns the catalog compiled into the binary.
func DefaultDataset() (Dataset, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return Dataset{}, err
	}
	return LoadDataset(sub)
}

// LoadDataset reads the four dataset files from fsys and checks that every
// learnset, pool and team reference resolves.
func LoadDataset(fsys fs.FS) (Dataset, error) {
	var (
		moveRecords     []MoveRecord
		speciesRecords  []SpeciesRecord
		poolRecords     []PoolRecord
		opponentRecords []OpponentRecord
	)
	for name, target := range map[string]any{
		MovesFile:     &moveRecords,
		SpeciesFile:   &speciesRecords,
		WildPoolFile:  &poolRecords,
		OpponentsFile: &opponentRecords,
	} {
		if err := readJSON(fsys, name, target); err != nil {
			return Dataset{}, err
		}
	}

	ds := Dataset{
		Species: make(map[int]CreatureDefinition, len(speciesRecords)),
		Moves:   make(map[string]creature.Move, len(moveRecords)),
	}
	for _, r := range moveRecords {
		m, err := r.Move()
		if err != nil {
			return Dataset{}, err
		}
		if _, dup := ds.Moves[m.ID]; dup {
			return Dataset{}, fmt.Errorf("duplicate move %q", m.ID)
		}
		ds.Moves[m.ID] = m
	}
	for _, r := range speciesRecords {
		def, err := r.Definition()
		if err != nil {
			return Dataset{}, err
		}
		if _, dup := ds.Species[def.ID]; dup {
			return Dataset{}, fmt.Errorf("duplicate species %d", def.ID)
		}
		for _, l := range def.Learnset {
			if _, ok := ds.Moves[l.MoveID]; !ok {
				return Dataset{}, fmt.Errorf("species %d learns unknown move %q", def.ID, l.MoveID)
			}
		}
		ds.Species[def.ID] = def
	}
	for _, r := range poolRecords {
		def, ok := ds.Species[r.SpeciesID]
		if !ok {
			return Dataset{}, fmt.Errorf("wild pool references unknown species %d", r.SpeciesID)
		}
		ds.WildPool = append(ds.WildPool, encounter.PoolEntry{SpeciesID: def.ID, Name: DisplayName(def.Name), Weight: r.Weight})
	}
	for _, r := range opponentRecords {
		kind, err := encounter.ParseKind(r.Kind)
		if err != nil {
			return Dataset{}, fmt.Errorf("opponent %s: %w", r.ID, err)
		}
		opp := OpponentDefinition{ID: r.ID, Kind: kind, Name: r.Name}
		for _, m := range r.Team {
			if _, ok := ds.Species[m.SpeciesID]; !ok {
				return Dataset{}, fmt.Errorf("opponent %s references unknown species %d", r.ID, m.SpeciesID)
			}
			opp.Team = append(opp.Team, TeamEntry{SpeciesID: m.SpeciesID, Level: m.Level})
		}
		ds.Opponents = append(ds.Opponents, opp)
	}
	return ds, nil
}

// Opponent returns the opponent with id.
func (d Dataset) Opponent(id string) (OpponentDefinition, bool) {
	for _, o := range d.Opponents {
		if o.ID == id {
			return o, true
		}
	}
	return OpponentDefinition{}, false
}

// SpeciesIDs returns the species ids in ascending order.
func (d Dataset) SpeciesIDs() []int {
	ids := make([]int, 0, len(d.Species))
	for id := range d.Species {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TypesOf returns the types of a species, nil when unknown.
func (d Dataset) TypesOf(speciesID int) []creature.Type {
	return d.Species[speciesID].Types
}

func readJSON(fsys fs.FS, name string, target any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
