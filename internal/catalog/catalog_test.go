package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

func defaultMemory(t *testing.T) *Memory {
	t.Helper()
	ds, err := DefaultDataset()
	if err != nil {
		t.Fatalf("load default dataset: %v", err)
	}
	return NewMemory(ds)
}

func TestDefaultDataset(t *testing.T) {
	t.Parallel()

	ds, err := DefaultDataset()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	bulbasaur, ok := ds.Species[1]
	if !ok {
		t.Fatal("expected species 1")
	}
	if len(bulbasaur.Types) != 2 || bulbasaur.Types[0] != creature.Grass || bulbasaur.Types[1] != creature.Poison {
		t.Fatalf("bulbasaur types = %v, want [grass poison]", bulbasaur.Types)
	}
	ember, ok := ds.Moves["ember"]
	if !ok {
		t.Fatal("expected move ember")
	}
	if ember.Effect == nil || ember.Effect.Condition != creature.ConditionBurn || !ember.Effect.HasChance || ember.Effect.Chance != 10 {
		t.Fatalf("ember effect = %+v, want 10%% burn", ember.Effect)
	}
	if ds.WildPool.TotalWeight() <= 0 {
		t.Fatal("expected a weighted wild pool")
	}
	brock, ok := ds.Opponent("brock")
	if !ok || brock.Kind != encounter.KindGymLeader || len(brock.Team) == 0 {
		t.Fatalf("brock = %+v, want gym leader with a team", brock)
	}
	ids := ds.SpeciesIDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("species ids not sorted: %v", ids)
		}
	}
}

func TestLoadDatasetRejectsDanglingReferences(t *testing.T) {
	t.Parallel()

	base := func() fstest.MapFS {
		return fstest.MapFS{
			MovesFile:     {Data: []byte(`[{"id":"tackle","name":"Tackle","type":"normal","power":40,"accuracy":100,"category":"physical"}]`)},
			SpeciesFile:   {Data: []byte(`[{"id":1,"name":"eevee","types":["normal"],"base_stats":{"hp":55,"attack":55,"defense":50,"sp_attack":45,"sp_defense":65,"speed":55},"catch_rate":45,"learnset":[{"move":"tackle","level":1}]}]`)},
			WildPoolFile:  {Data: []byte(`[{"species_id":1,"weight":1}]`)},
			OpponentsFile: {Data: []byte(`[]`)},
		}
	}

	if _, err := LoadDataset(base()); err != nil {
		t.Fatalf("valid dataset: %v", err)
	}

	tests := []struct {
		name string
		file string
		data string
	}{
		{name: "unknown learnset move", file: SpeciesFile, data: `[{"id":1,"name":"eevee","types":["normal"],"base_stats":{"hp":1,"attack":1,"defense":1,"sp_attack":1,"sp_defense":1,"speed":1},"learnset":[{"move":"nope","level":1}]}]`},
		{name: "unknown pool species", file: WildPoolFile, data: `[{"species_id":99,"weight":1}]`},
		{name: "unknown team species", file: OpponentsFile, data: `[{"id":"x","kind":"trainer","name":"X","team":[{"species_id":99,"level":5}]}]`},
		{name: "bad type", file: MovesFile, data: `[{"id":"tackle","name":"Tackle","type":"plasma","power":40,"accuracy":100,"category":"physical"}]`},
		{name: "bad accuracy", file: MovesFile, data: `[{"id":"tackle","name":"Tackle","type":"normal","power":40,"accuracy":101,"category":"physical"}]`},
		{name: "three types", file: SpeciesFile, data: `[{"id":1,"name":"eevee","types":["normal","fire","water"],"base_stats":{"hp":1,"attack":1,"defense":1,"sp_attack":1,"sp_defense":1,"speed":1}}]`},
		{name: "malformed json", file: OpponentsFile, data: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fsys := base()
			fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.data)}
			if _, err := LoadDataset(fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRecordOfRoundTripsEffects(t *testing.T) {
	t.Parallel()

	mem := defaultMemory(t)
	for _, id := range []string{"ember", "growl", "rapid-spin", "recover", "tackle"} {
		mv, err := mem.Move(context.Background(), id)
		if err != nil {
			t.Fatalf("move %s: %v", id, err)
		}
		back, err := RecordOf(mv).Move()
		if err != nil {
			t.Fatalf("convert %s: %v", id, err)
		}
		if (back.Effect == nil) != (mv.Effect == nil) || (back.Effect != nil && *back.Effect != *mv.Effect) {
			t.Fatalf("%s effect = %+v, want %+v", id, back.Effect, mv.Effect)
		}
	}
}

func TestMemoryLookups(t *testing.T) {
	t.Parallel()
	mem := defaultMemory(t)
	ctx := context.Background()

	def, err := mem.Creature(ctx, 25)
	if err != nil {
		t.Fatalf("creature: %v", err)
	}
	if def.Name != "pikachu" {
		t.Fatalf("name = %q, want pikachu", def.Name)
	}
	def.Types[0] = creature.Water
	again, _ := mem.Creature(ctx, 25)
	if again.Types[0] != creature.Electric {
		t.Fatal("expected definitions to be copied")
	}

	if _, err := mem.Creature(ctx, 9999); !apperrors.HasCode(err, apperrors.CodeCatalogNotFound) {
		t.Fatalf("missing creature err = %v, want %v", err, apperrors.CodeCatalogNotFound)
	}
	if _, err := mem.Move(ctx, "hyper-beam"); !apperrors.HasCode(err, apperrors.CodeCatalogNotFound) {
		t.Fatalf("missing move err = %v, want %v", err, apperrors.CodeCatalogNotFound)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := mem.Move(cancelled, "ember"); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled err = %v, want context.Canceled", err)
	}
}

func TestMemoryMovesFilter(t *testing.T) {
	t.Parallel()
	mem := defaultMemory(t)

	moves, err := mem.Moves(context.Background(), `type = "FIRE" AND power >= 60`)
	if err != nil {
		t.Fatalf("moves: %v", err)
	}
	var ids []string
	for _, m := range moves {
		ids = append(ids, m.ID)
	}
	want := []string{"fire-fang", "flamethrower"}
	if len(ids) != len(want) || ids[0] != want[0] || ids[1] != want[1] {
		t.Fatalf("ids = %v, want %v", ids, want)
	}

	if _, err := mem.Moves(context.Background(), `speed > 3`); !apperrors.HasCode(err, apperrors.CodeCatalogInvalidFilter) {
		t.Fatalf("bad filter err = %v, want %v", err, apperrors.CodeCatalogInvalidFilter)
	}
}

type countingProvider struct {
	Provider
	creatureCalls atomic.Int32
	moveCalls     atomic.Int32
	gate          chan struct{}
}

func (p *countingProvider) Creature(ctx context.Context, id int) (CreatureDefinition, error) {
	p.creatureCalls.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	return p.Provider.Creature(ctx, id)
}

func (p *countingProvider) Move(ctx context.Context, id string) (creature.Move, error) {
	p.moveCalls.Add(1)
	return p.Provider.Move(ctx, id)
}

func TestCacheDeduplicatesConcurrentMisses(t *testing.T) {
	t.Parallel()

	upstream := &countingProvider{Provider: defaultMemory(t), gate: make(chan struct{})}
	cache := NewCache(upstream, nil)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Creature(context.Background(), 4)
			errs <- err
		}()
	}
	for upstream.creatureCalls.Load() == 0 {
		runtime.Gosched()
	}
	close(upstream.gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("creature: %v", err)
		}
	}
	if got := upstream.creatureCalls.Load(); got > callers {
		t.Fatalf("upstream calls = %d, want at most %d", got, callers)
	}

	before := upstream.creatureCalls.Load()
	if _, err := cache.Creature(context.Background(), 4); err != nil {
		t.Fatalf("cached creature: %v", err)
	}
	if got := upstream.creatureCalls.Load(); got != before {
		t.Fatalf("upstream calls after hit = %d, want %d", got, before)
	}
}

func TestCacheMoves(t *testing.T) {
	t.Parallel()

	upstream := &countingProvider{Provider: defaultMemory(t)}
	cache := NewCache(upstream, nil)
	ctx := context.Background()

	for range 3 {
		if _, err := cache.Move(ctx, "ember"); err != nil {
			t.Fatalf("move: %v", err)
		}
	}
	if got := upstream.moveCalls.Load(); got != 1 {
		t.Fatalf("upstream move calls = %d, want 1", got)
	}

	if _, err := cache.Move(ctx, "nope"); !apperrors.HasCode(err, apperrors.CodeCatalogNotFound) {
		t.Fatalf("missing move err = %v", err)
	}
	if _, err := cache.Move(ctx, "nope"); err == nil {
		t.Fatal("expected errors not to be cached as hits")
	}

	if _, err := cache.Moves(ctx, `category = "special"`); err != nil {
		t.Fatalf("moves: %v", err)
	}
	if _, moves := cache.Len(); moves < 2 {
		t.Fatalf("cached moves = %d, want filtered moves remembered", moves)
	}
}

func TestHydrate(t *testing.T) {
	t.Parallel()
	h := NewHydrator(defaultMemory(t), nil)
	ctx := context.Background()

	c, err := h.Hydrate(ctx, TeamEntry{SpeciesID: 25, Level: 30}, rng.FromString("hydrate"))
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if c.Name != "Pikachu" {
		t.Fatalf("name = %q, want Pikachu", c.Name)
	}
	if c.Level != 30 || c.CurrentHP != c.Stats.HP {
		t.Fatalf("level = %d hp = %d/%d, want level 30 at full hp", c.Level, c.CurrentHP, c.Stats.HP)
	}
	// hp = floor(2*35*30/100) + 30 + 10
	if c.Stats.HP != 61 {
		t.Fatalf("hp = %d, want 61", c.Stats.HP)
	}
	if len(c.Moves) != creature.MaxMoves {
		t.Fatalf("moves = %d, want %d", len(c.Moves), creature.MaxMoves)
	}
	for _, m := range c.Moves {
		if !m.Damaging() {
			t.Fatalf("move %s is not damaging", m.ID)
		}
		if m.ID == "thunder" {
			t.Fatal("thunder is learned at 44")
		}
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestEffectRecordKeepsExplicitZeroChance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		hasChance bool
		want      int
	}{
		{name: "absent", raw: `{"kind": "status-condition", "condition": "burn"}`, want: 100},
		{name: "zero", raw: `{"kind": "status-condition", "condition": "burn", "chance": 0}`, hasChance: true, want: 0},
		{name: "ten", raw: `{"kind": "status-condition", "condition": "burn", "chance": 10}`, hasChance: true, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var rec EffectRecord
			if err := json.Unmarshal([]byte(tt.raw), &rec); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			e, err := rec.Effect()
			if err != nil {
				t.Fatalf("effect: %v", err)
			}
			if e.HasChance != tt.hasChance || e.EffectiveChance() != tt.want {
				t.Fatalf("effect = %+v, want has chance %v at %d", e, tt.hasChance, tt.want)
			}

			back := RecordOf(creature.Move{ID: "ember", Name: "Ember", Type: creature.Fire, Category: creature.CategorySpecial, Effect: &e}).Effect
			if (back.Chance != nil) != tt.hasChance {
				t.Fatalf("record chance = %v, want set %v", back.Chance, tt.hasChance)
			}
		})
	}
}

func TestHydrateTeamNamesSlots(t *testing.T) {
	t.Parallel()
	h := NewHydrator(defaultMemory(t), nil)

	team, err := h.HydrateTeam(context.Background(),
		[]TeamEntry{{SpeciesID: 25, Level: 10}, {SpeciesID: 25, Level: 10}, {SpeciesID: 4, Level: 12}},
		rng.FromString("slots"))
	if err != nil {
		t.Fatalf("hydrate team: %v", err)
	}
	want := []string{"creature-25-1", "creature-25-2", "creature-4-3"}
	for i, c := range team {
		if c.ID != want[i] {
			t.Fatalf("team[%d].ID = %q, want %q", i, c.ID, want[i])
		}
	}

	again, err := h.HydrateTeam(context.Background(),
		[]TeamEntry{{SpeciesID: 25, Level: 10}, {SpeciesID: 25, Level: 10}, {SpeciesID: 4, Level: 12}},
		rng.FromString("slots"))
	if err != nil {
		t.Fatalf("hydrate team: %v", err)
	}
	if !reflect.DeepEqual(team, again) {
		t.Fatalf("teams differ for the same seed:\n%+v\n%+v", team, again)
	}
}

func TestHydrateIsDeterministicForASeed(t *testing.T) {
	t.Parallel()
	h := NewHydrator(defaultMemory(t), nil)

	ids := func(seed string) []string {
		c, err := h.Hydrate(context.Background(), TeamEntry{SpeciesID: 4, Level: 40}, rng.FromString(seed))
		if err != nil {
			t.Fatalf("hydrate: %v", err)
		}
		var out []string
		for _, m := range c.Moves {
			out = append(out, m.ID)
		}
		return out
	}
	a, b := ids("same"), ids("same")
	if len(a) != len(b) {
		t.Fatalf("moves differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("moves differ: %v vs %v", a, b)
		}
	}
}

func TestHydrateFallsBackToTackle(t *testing.T) {
	t.Parallel()
	h := NewHydrator(defaultMemory(t), nil)

	// Magikarp only knows Splash before level 15.
	c, err := h.Hydrate(context.Background(), TeamEntry{SpeciesID: 129, Level: 5}, nil)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if len(c.Moves) != 1 || c.Moves[0].ID != "tackle" {
		t.Fatalf("moves = %+v, want tackle", c.Moves)
	}
}

func TestHydrateErrors(t *testing.T) {
	t.Parallel()
	h := NewHydrator(defaultMemory(t), nil)

	if _, err := h.Hydrate(context.Background(), TeamEntry{SpeciesID: 25, Level: 0}, nil); !apperrors.HasCode(err, apperrors.CodeBattleInvalidLevel) {
		t.Fatalf("level 0 err = %v, want %v", err, apperrors.CodeBattleInvalidLevel)
	}
	if _, err := h.HydrateTeam(context.Background(), []TeamEntry{{SpeciesID: 25, Level: 5}, {SpeciesID: 404, Level: 5}}, nil); !apperrors.HasCode(err, apperrors.CodeCatalogNotFound) {
		t.Fatalf("unknown species err = %v, want %v", err, apperrors.CodeCatalogNotFound)
	}
}

func TestLearnCandidates(t *testing.T) {
	t.Parallel()
	h := NewHydrator(defaultMemory(t), nil)
	ctx := context.Background()

	c, err := h.Hydrate(ctx, TeamEntry{SpeciesID: 25, Level: 25}, nil)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	got, err := h.LearnCandidates(ctx, c, 25, 26)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 1 || got[0].ID != "thunderbolt" {
		t.Fatalf("candidates = %+v, want thunderbolt", got)
	}

	// Thunder Wave at 8 is a status move.
	got, err = h.LearnCandidates(ctx, c, 7, 8)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("candidates = %+v, want none", got)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"pikachu":      "Pikachu",
		"mr-mime":      "Mr Mime",
		" water-gun ":  "Water Gun",
		"thunder-wave": "Thunder Wave",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMemoryEncounters(t *testing.T) {
	t.Parallel()
	mem := defaultMemory(t)
	ctx := context.Background()

	pool, err := mem.WildPool(ctx)
	if err != nil {
		t.Fatalf("wild pool: %v", err)
	}
	if len(pool) == 0 {
		t.Fatal("expected wild pool entries")
	}
	misty, err := mem.Opponent(ctx, "misty")
	if err != nil {
		t.Fatalf("opponent: %v", err)
	}
	if misty.Name != "Misty" || misty.Kind != encounter.KindGymLeader {
		t.Fatalf("misty = %+v", misty)
	}
	if _, err := mem.Opponent(ctx, "giovanni"); !apperrors.HasCode(err, apperrors.CodeCatalogNotFound) {
		t.Fatalf("missing opponent err = %v, want %v", err, apperrors.CodeCatalogNotFound)
	}
}
