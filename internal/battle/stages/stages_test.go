package stages

import (
	"testing"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
)

func TestApplySaturates(t *testing.T) {
	t.Parallel()

	c := &creature.Creature{Stats: creature.Stats{Attack: 100}}
	for i := 1; i <= 20; i++ {
		change := ApplyTo(c, creature.StatAttack, 1)
		if i <= 6 && !change.Applied {
			t.Fatalf("attempt %d failed, want success", i)
		}
		if i > 6 && (change.Applied || !change.Capped) {
			t.Fatalf("attempt %d = %+v, want capped failure", i, change)
		}
	}
	if c.Stages.Attack != Max {
		t.Fatalf("stage = %d, want %d", c.Stages.Attack, Max)
	}
}

func TestApplyPartialSaturation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current, delta int
		want           int
		ok             bool
	}{
		{current: 5, delta: 2, want: 6, ok: true},
		{current: -5, delta: -3, want: -6, ok: true},
		{current: -6, delta: -1, want: -6, ok: false},
		{current: -6, delta: 2, want: -4, ok: true},
		{current: 0, delta: 0, want: 0, ok: false},
	}
	for _, tt := range tests {
		got, ok := Apply(tt.current, tt.delta)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("Apply(%d, %d) = %d, %v, want %d, %v", tt.current, tt.delta, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMultiplierTable(t *testing.T) {
	t.Parallel()

	stat := map[int]float64{
		-6: 2.0 / 8, -5: 2.0 / 7, -4: 2.0 / 6, -3: 2.0 / 5, -2: 2.0 / 4, -1: 2.0 / 3,
		0: 1, 1: 1.5, 2: 2, 3: 2.5, 4: 3, 5: 3.5, 6: 4,
	}
	acc := map[int]float64{
		-6: 3.0 / 9, -5: 3.0 / 8, -4: 3.0 / 7, -3: 3.0 / 6, -2: 3.0 / 5, -1: 3.0 / 4,
		0: 1, 1: 4.0 / 3, 2: 5.0 / 3, 3: 2, 4: 7.0 / 3, 5: 8.0 / 3, 6: 3,
	}
	for stage := Min; stage <= Max; stage++ {
		if got := Multiplier(stage, false); got != stat[stage] {
			t.Fatalf("Multiplier(%d, false) = %v, want %v", stage, got, stat[stage])
		}
		if got := Multiplier(stage, true); got != acc[stage] {
			t.Fatalf("Multiplier(%d, true) = %v, want %v", stage, got, acc[stage])
		}
	}
}

func TestEffective(t *testing.T) {
	t.Parallel()

	c := &creature.Creature{Stats: creature.Stats{Attack: 55, Speed: 91}}
	c.Stages.Attack = 1
	c.Stages.Speed = -1
	c.Stages.Accuracy = -1

	if got := Effective(c, creature.StatAttack); got != 82 {
		t.Fatalf("attack = %d, want 82", got)
	}
	if got := Effective(c, creature.StatSpeed); got != 60 {
		t.Fatalf("speed = %d, want 60", got)
	}
	if got := Effective(c, creature.StatAccuracy); got != 75 {
		t.Fatalf("accuracy = %d, want 75", got)
	}

	Reset(c)
	if c.Stages != (creature.StatStages{}) {
		t.Fatalf("stages after reset = %+v", c.Stages)
	}
}

func TestAccuracyMultiplier(t *testing.T) {
	t.Parallel()

	atk := &creature.Creature{}
	def := &creature.Creature{}
	def.Stages.Evasion = 1
	if got := AccuracyMultiplier(atk, def); got != 0.75 {
		t.Fatalf("AccuracyMultiplier = %v, want 0.75", got)
	}
}
