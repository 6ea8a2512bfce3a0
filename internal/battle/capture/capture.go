// Package capture computes capture probability and shake counts for wild
// creatures. Everything here is a pure function of its inputs and the draws
// taken from the supplied source.
package capture

import (
	"fmt"
	"strings"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
)

const (
	// GuaranteedModifier is the ball modifier at which capture always succeeds.
	GuaranteedModifier = 255
	// Trials is the number of checks a capture must pass.
	Trials = 4
	// MaxDisplayShakes caps the shake count shown for a failed capture.
	MaxDisplayShakes = 3
	// GuaranteedShakes is reported for a guaranteed capture.
	GuaranteedShakes = 4

	minCatchValue = 1
	maxCatchValue = 255
)

// Ball is a capture device.
type Ball string

const (
	PokeBall   Ball = "poke-ball"
	GreatBall  Ball = "great-ball"
	UltraBall  Ball = "ultra-ball"
	MasterBall Ball = "master-ball"
)

var ballModifiers = map[Ball]float64{
	PokeBall:   1,
	GreatBall:  1.5,
	UltraBall:  2,
	MasterBall: GuaranteedModifier,
}

var ballAliases = map[string]Ball{
	"poke":       PokeBall,
	"pokeball":   PokeBall,
	"great":      GreatBall,
	"greatball":  GreatBall,
	"super":      GreatBall,
	"superball":  GreatBall,
	"ultra":      UltraBall,
	"ultraball":  UltraBall,
	"master":     MasterBall,
	"masterball": MasterBall,
}

// ParseBall resolves a ball name or alias.
func ParseBall(name string) (Ball, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := ballModifiers[Ball(key)]; ok {
		return Ball(key), nil
	}
	if b, ok := ballAliases[key]; ok {
		return b, nil
	}
	return "", fmt.Errorf("unknown ball %q", name)
}

// Modifier returns the ball's catch modifier, 1 for unknown balls.
func (b Ball) Modifier() float64 {
	if m, ok := ballModifiers[b]; ok {
		return m
	}
	return 1
}

// StatusMultiplier boosts capture for afflicted creatures.
func StatusMultiplier(c creature.Condition) float64 {
	switch c {
	case creature.ConditionSleep, creature.ConditionFreeze:
		return 2.5
	case creature.ConditionParalysis, creature.ConditionPoison, creature.ConditionBadlyPoisoned, creature.ConditionBurn:
		return 1.5
	default:
		return 1
	}
}

// Snapshot is the state of the wild creature at throw time.
type Snapshot struct {
	MaxHP     int
	CurrentHP int
	CatchRate int
	Condition creature.Condition
}

// SnapshotOf captures the relevant fields of c.
func SnapshotOf(c *creature.Creature) Snapshot {
	return Snapshot{
		MaxHP:     c.Stats.HP,
		CurrentHP: c.CurrentHP,
		CatchRate: c.CatchRate,
		Condition: c.Status.Condition,
	}
}

// Result is the outcome of a capture attempt.
type Result struct {
	Success     bool
	Shakes      int
	Probability float64
	Guaranteed  bool
}

// Probability computes a/255 where
// a = clamp(1, 255, (3max - 2cur) * rate * ball * status / (3max)).
func Probability(s Snapshot, ballModifier float64) float64 {
	maxHP := max(1, s.MaxHP)
	cur := max(0, min(s.CurrentHP, maxHP))
	rate := max(1, min(maxCatchValue, s.CatchRate))

	a := float64(3*maxHP-2*cur) * float64(rate) * ballModifier * StatusMultiplier(s.Condition) / float64(3*maxHP)
	a = max(minCatchValue, min(maxCatchValue, a))
	return a / maxCatchValue
}

// Attempt throws a ball with ballModifier at the snapshot. Guaranteed balls
// never draw. Otherwise up to four independent trials are drawn, stopping at
// the first failure; the capture succeeds only when all four pass.
func Attempt(s Snapshot, ballModifier float64, src rng.Source) Result {
	if ballModifier >= GuaranteedModifier {
		return Result{Success: true, Shakes: GuaranteedShakes, Probability: 1, Guaranteed: true}
	}
	p := Probability(s, ballModifier)
	passed := 0
	for passed < Trials && src.Next() < p {
		passed++
	}
	return Result{
		Success:     passed == Trials,
		Shakes:      min(passed, MaxDisplayShakes),
		Probability: p,
	}
}

// Throw is Attempt with a named ball.
func Throw(s Snapshot, ball Ball, src rng.Source) Result {
	return Attempt(s, ball.Modifier(), src)
}
