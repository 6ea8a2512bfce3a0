// Package scaling derives battle levels from the opposing side and
// recomputes stats for a level.
//
// Invalid level inputs never fail. They are clamped to the documented minimum
// and the caller receives a Warning to log.
package scaling

import (
	"fmt"
	"math"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
)

const (
	// MinPlayerLevel is the floor for a scaled player level.
	MinPlayerLevel = 1
	// MinWildLevel is the floor for a scaled wild level.
	MinWildLevel = 3
	// LevelOffset is subtracted from the reference level.
	LevelOffset = 2
	// EmptyTeamAverage is used when a team has no levels to average.
	EmptyTeamAverage = MinWildLevel + LevelOffset
)

// Warning reports an input that was clamped.
type Warning struct {
	Field string
	Input int
	Used  int
}

func (w *Warning) String() string {
	return fmt.Sprintf("%s %d is invalid, using %d", w.Field, w.Input, w.Used)
}

// PlayerLevel scales the player's level to the strongest opponent:
// max(1, opponentMax-2).
func PlayerLevel(opponentMax int) (int, *Warning) {
	if opponentMax < 1 {
		return MinPlayerLevel, &Warning{Field: "opponent level", Input: opponentMax, Used: MinPlayerLevel}
	}
	return max(MinPlayerLevel, opponentMax-LevelOffset), nil
}

// WildLevel scales a wild encounter to the team average: max(3, avg-2).
func WildLevel(teamAverage int) (int, *Warning) {
	if teamAverage < 1 {
		return MinWildLevel, &Warning{Field: "team average level", Input: teamAverage, Used: MinWildLevel}
	}
	return max(MinWildLevel, teamAverage-LevelOffset), nil
}

// TeamAverageLevel is the rounded mean level. Levels below 1 count as 1.
func TeamAverageLevel(levels []int) (int, *Warning) {
	if len(levels) == 0 {
		return EmptyTeamAverage, &Warning{Field: "team size", Input: 0, Used: EmptyTeamAverage}
	}
	var warn *Warning
	sum := 0
	for _, level := range levels {
		if level < 1 {
			warn = &Warning{Field: "team member level", Input: level, Used: 1}
			level = 1
		}
		sum += level
	}
	return int(math.Round(float64(sum) / float64(len(levels)))), warn
}

// Stats recomputes stats for level from base species stats with zero IVs
// and EVs.
func Stats(base creature.Stats, level int) (creature.Stats, *Warning) {
	var warn *Warning
	if level < 1 {
		warn = &Warning{Field: "level", Input: level, Used: 1}
		level = 1
	}
	return creature.Stats{
		HP:        hpStat(base.HP, level),
		Attack:    otherStat(base.Attack, level),
		Defense:   otherStat(base.Defense, level),
		SpAttack:  otherStat(base.SpAttack, level),
		SpDefense: otherStat(base.SpDefense, level),
		Speed:     otherStat(base.Speed, level),
	}, warn
}

func hpStat(base, level int) int {
	return curve(base, level) + level + 10
}

func otherStat(base, level int) int {
	return curve(base, level) + 5
}

// curve is floor((2*base + iv + floor(ev/4)) * level / 100) with iv=ev=0.
func curve(base, level int) int {
	return (2 * base * level) / 100
}

// Rescale returns a copy of c at level with stats recomputed from base and
// current HP kept at the same ratio of max HP.
func Rescale(c *creature.Creature, base creature.Stats, level int) (*creature.Creature, *Warning) {
	stats, warn := Stats(base, level)
	if warn != nil {
		level = warn.Used
	}
	out := c.Snapshot()
	ratio := c.HPRatio()
	out.Level = level
	out.Stats = stats
	out.CurrentHP = int(math.Round(ratio * float64(stats.HP)))
	if ratio > 0 && out.CurrentHP == 0 {
		out.CurrentHP = 1
	}
	return &out, warn
}
