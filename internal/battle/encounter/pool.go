package encounter

import (
	"errors"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	"github.com/louisbranch/creaturebattle/internal/battle/scaling"
)

// ErrEmptyPool indicates a pool with no positive weights.
var ErrEmptyPool = errors.New("wild pool has no entries")

// PoolEntry is one species that can appear in the wild.
type PoolEntry struct {
	SpeciesID int
	Name      string
	Weight    int
}

// Pool is a weighted list of wild species.
type Pool []PoolEntry

// TotalWeight sums the positive weights.
func (p Pool) TotalWeight() int {
	total := 0
	for _, e := range p {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	return total
}

// Pick selects an entry with probability proportional to its weight using
// one draw from src.
func (p Pool) Pick(src rng.Source) (PoolEntry, error) {
	total := p.TotalWeight()
	if total == 0 {
		return PoolEntry{}, ErrEmptyPool
	}
	roll := src.Next() * float64(total)
	var last PoolEntry
	for _, e := range p {
		if e.Weight <= 0 {
			continue
		}
		last = e
		roll -= float64(e.Weight)
		if roll <= 0 {
			return e, nil
		}
	}
	return last, nil
}

// WithType filters entries whose species has t, given a type lookup.
func (p Pool) WithType(t creature.Type, typesOf func(speciesID int) []creature.Type) Pool {
	var out Pool
	for _, e := range p {
		for _, own := range typesOf(e.SpeciesID) {
			if own == t {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// WildLevel scales a wild encounter to the player's team.
func WildLevel(team []*creature.Creature) (int, *scaling.Warning) {
	levels := make([]int, 0, len(team))
	for _, c := range team {
		levels = append(levels, c.Level)
	}
	avg, warn := scaling.TeamAverageLevel(levels)
	level, clampWarn := scaling.WildLevel(avg)
	if clampWarn != nil {
		warn = clampWarn
	}
	return level, warn
}

// PlayerLevel scales the player's team to the strongest opposing creature.
func PlayerLevel(opponents []*creature.Creature) (int, *scaling.Warning) {
	highest := 0
	for _, c := range opponents {
		highest = max(highest, c.Level)
	}
	return scaling.PlayerLevel(highest)
}
