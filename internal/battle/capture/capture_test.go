package capture

import (
	"math"
	"testing"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
)

func TestMasterBallAlwaysSucceeds(t *testing.T) {
	t.Parallel()

	snapshots := []Snapshot{
		{MaxHP: 100, CurrentHP: 100, CatchRate: 3},
		{MaxHP: 300, CurrentHP: 1, CatchRate: 45, Condition: creature.ConditionSleep},
		{MaxHP: 20, CurrentHP: 20, CatchRate: 255, Condition: creature.ConditionBurn},
	}
	for _, s := range snapshots {
		src := rng.NewSequence(0.99, 0.99, 0.99, 0.99)
		res := Throw(s, MasterBall, src)
		if !res.Success || !res.Guaranteed || res.Shakes != GuaranteedShakes {
			t.Fatalf("Throw(%+v) = %+v, want guaranteed success", s, res)
		}
		if src.Drawn() != 0 {
			t.Fatalf("drawn = %d, want 0", src.Drawn())
		}
	}
}

func TestProbability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    Snapshot
		ball float64
		want float64
	}{
		// (300-200)*45*1*1/300 = 15
		{name: "full hp", s: Snapshot{MaxHP: 100, CurrentHP: 100, CatchRate: 45}, ball: 1, want: 15.0 / 255},
		// (300-2)*45/300 = 44.7
		{name: "one hp", s: Snapshot{MaxHP: 100, CurrentHP: 1, CatchRate: 45}, ball: 1, want: 44.7 / 255},
		{name: "sleep", s: Snapshot{MaxHP: 100, CurrentHP: 100, CatchRate: 45, Condition: creature.ConditionSleep}, ball: 1, want: 37.5 / 255},
		{name: "ultra paralysis", s: Snapshot{MaxHP: 100, CurrentHP: 100, CatchRate: 45, Condition: creature.ConditionParalysis}, ball: 2, want: 45.0 / 255},
		{name: "clamped high", s: Snapshot{MaxHP: 100, CurrentHP: 1, CatchRate: 255}, ball: 2, want: 1},
		{name: "clamped low", s: Snapshot{MaxHP: 100, CurrentHP: 100, CatchRate: 1}, ball: 1, want: 1.0 / 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Probability(tt.s, tt.ball)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Probability() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbabilityMonotonicInHP(t *testing.T) {
	t.Parallel()

	for _, ball := range []Ball{PokeBall, GreatBall, UltraBall} {
		prev := -1.0
		for hp := 200; hp >= 0; hp-- {
			p := Probability(Snapshot{MaxHP: 200, CurrentHP: hp, CatchRate: 45}, ball.Modifier())
			if p < prev {
				t.Fatalf("%s: probability dropped from %v to %v at hp %d", ball, prev, p, hp)
			}
			prev = p
		}
	}
}

func TestAttemptStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	s := Snapshot{MaxHP: 100, CurrentHP: 50, CatchRate: 100}
	p := Probability(s, 1)

	tests := []struct {
		name      string
		draws     []float64
		success   bool
		shakes    int
		wantDrawn int
	}{
		{name: "all pass", draws: []float64{0, 0, 0, 0}, success: true, shakes: 3, wantDrawn: 4},
		{name: "fails fourth", draws: []float64{0, 0, 0, 0.99}, shakes: 3, wantDrawn: 4},
		{name: "fails second", draws: []float64{0, 0.99, 0, 0}, shakes: 1, wantDrawn: 2},
		{name: "fails first", draws: []float64{0.99}, shakes: 0, wantDrawn: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := rng.NewSequence(tt.draws...)
			res := Attempt(s, 1, src)
			if res.Success != tt.success || res.Shakes != tt.shakes {
				t.Fatalf("Attempt() = %+v, want success %v shakes %d", res, tt.success, tt.shakes)
			}
			if res.Probability != p {
				t.Fatalf("probability = %v, want %v", res.Probability, p)
			}
			if src.Drawn() != tt.wantDrawn {
				t.Fatalf("drawn = %d, want %d", src.Drawn(), tt.wantDrawn)
			}
		})
	}
}

func TestParseBall(t *testing.T) {
	t.Parallel()

	tests := map[string]Ball{
		"poke-ball": PokeBall,
		"Great":     GreatBall,
		"superball": GreatBall,
		"ultra":     UltraBall,
		"master":    MasterBall,
	}
	for name, want := range tests {
		got, err := ParseBall(name)
		if err != nil || got != want {
			t.Fatalf("ParseBall(%q) = %v, %v, want %v", name, got, err, want)
		}
	}
	if _, err := ParseBall("net"); err == nil {
		t.Fatal("expected unknown ball error")
	}
}
