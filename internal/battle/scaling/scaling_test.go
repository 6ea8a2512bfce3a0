package scaling

import (
	"testing"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
)

func TestPlayerLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    int
		want     int
		wantWarn bool
	}{
		{input: 3, want: 1},
		{input: 20, want: 18},
		{input: 1, want: 1},
		{input: -5, want: 1, wantWarn: true},
		{input: 0, want: 1, wantWarn: true},
	}
	for _, tt := range tests {
		got, warn := PlayerLevel(tt.input)
		if got != tt.want {
			t.Fatalf("PlayerLevel(%d) = %d, want %d", tt.input, got, tt.want)
		}
		if (warn != nil) != tt.wantWarn {
			t.Fatalf("PlayerLevel(%d) warning = %v, want %v", tt.input, warn, tt.wantWarn)
		}
	}
}

func TestWildLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    int
		want     int
		wantWarn bool
	}{
		{input: 4, want: 3},
		{input: 12, want: 10},
		{input: -1, want: 3, wantWarn: true},
	}
	for _, tt := range tests {
		got, warn := WildLevel(tt.input)
		if got != tt.want {
			t.Fatalf("WildLevel(%d) = %d, want %d", tt.input, got, tt.want)
		}
		if (warn != nil) != tt.wantWarn {
			t.Fatalf("WildLevel(%d) warning = %v, want %v", tt.input, warn, tt.wantWarn)
		}
	}
}

func TestTeamAverageLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		levels   []int
		want     int
		wantWarn bool
	}{
		{name: "empty", levels: nil, want: 5, wantWarn: true},
		{name: "rounds to nearest", levels: []int{10, 11, 11}, want: 11},
		{name: "rounds half up", levels: []int{10, 11}, want: 11},
		{name: "single", levels: []int{7}, want: 7},
		{name: "invalid member", levels: []int{-4, 9}, want: 5, wantWarn: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warn := TeamAverageLevel(tt.levels)
			if got != tt.want {
				t.Fatalf("TeamAverageLevel() = %d, want %d", got, tt.want)
			}
			if (warn != nil) != tt.wantWarn {
				t.Fatalf("warning = %v, want %v", warn, tt.wantWarn)
			}
		})
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	base := creature.Stats{HP: 45, Attack: 49, Defense: 49, SpAttack: 65, SpDefense: 65, Speed: 45}
	got, warn := Stats(base, 50)
	if warn != nil {
		t.Fatalf("unexpected warning %v", warn)
	}
	want := creature.Stats{HP: 105, Attack: 54, Defense: 54, SpAttack: 70, SpDefense: 70, Speed: 50}
	if got != want {
		t.Fatalf("Stats() = %+v, want %+v", got, want)
	}

	got, warn = Stats(base, 0)
	if warn == nil || warn.Used != 1 {
		t.Fatalf("warning = %v, want clamp to 1", warn)
	}
	if got.HP != 11 {
		t.Fatalf("HP at clamped level = %d, want 11", got.HP)
	}
}

func TestRescaleKeepsHPRatio(t *testing.T) {
	t.Parallel()

	base := creature.Stats{HP: 45, Attack: 49, Defense: 49, SpAttack: 65, SpDefense: 65, Speed: 45}
	stats, _ := Stats(base, 10)
	c := &creature.Creature{Name: "Bulbasaur", Level: 10, Stats: stats, CurrentHP: stats.HP / 2}
	out, warn := Rescale(c, base, 50)
	if warn != nil {
		t.Fatalf("unexpected warning %v", warn)
	}
	if out.Level != 50 || out.Stats.HP != 105 {
		t.Fatalf("rescaled = level %d hp %d", out.Level, out.Stats.HP)
	}
	if out.CurrentHP < 50 || out.CurrentHP > 55 {
		t.Fatalf("current hp = %d, want about half of 105", out.CurrentHP)
	}
	if c.Level != 10 {
		t.Fatal("input creature mutated")
	}
}
