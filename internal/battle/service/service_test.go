package service

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/louisbranch/creaturebattle/internal/battle/ai"
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/engine"
	"github.com/louisbranch/creaturebattle/internal/catalog"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

var (
	slam = creature.Move{ID: "slam", Name: "Slam", Type: creature.Normal, Power: 80, Accuracy: 100, Category: creature.CategoryPhysical}
	peck = creature.Move{ID: "peck", Name: "Peck", Type: creature.Flying, Power: 10, Accuracy: 100, Category: creature.CategoryPhysical}
)

func fighter(name string, hp, atk, speed int, move creature.Move) *creature.Creature {
	return &creature.Creature{
		ID:        name,
		Name:      name,
		Types:     []creature.Type{creature.Normal},
		Level:     20,
		Stats:     creature.Stats{HP: hp, Attack: atk, Defense: 50, SpAttack: atk, SpDefense: 50, Speed: speed},
		CurrentHP: hp,
		Moves:     []creature.Move{move},
		CatchRate: 45,
	}
}

func newService(t *testing.T) (*Service, catalog.Dataset) {
	t.Helper()
	ds, err := catalog.DefaultDataset()
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	var (
		mu   sync.Mutex
		next int
	)
	svc := New(catalog.NewMemory(ds), Options{NewID: func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("battle-%d", next), nil
	}})
	return svc, ds
}

func mustStart(t *testing.T, svc *Service, req StartRequest) Started {
	t.Helper()
	started, err := svc.Start(context.Background(), req)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return started
}

func TestStartTrainerFromCatalog(t *testing.T) {
	t.Parallel()
	svc, ds := newService(t)

	started := mustStart(t, svc, StartRequest{
		Player:     []catalog.TeamEntry{{SpeciesID: 7, Level: 14}, {SpeciesID: 1, Level: 14}},
		Kind:       encounter.KindGymLeader,
		OpponentID: "brock",
		Seed:       int64(7),
		Strategy:   ai.KindHeuristic,
	})
	if started.ID != "battle-1" {
		t.Fatalf("id = %q, want battle-1", started.ID)
	}
	brock, _ := ds.Opponent("brock")
	if len(started.State.NPCTeam) != len(brock.Team) {
		t.Fatalf("npc team = %d, want %d", len(started.State.NPCTeam), len(brock.Team))
	}
	if len(started.State.PlayerTeam) != 2 || started.State.Player().Name != "Squirtle" {
		t.Fatalf("player lead = %q, want Squirtle", started.State.Player().Name)
	}
	if len(started.Events) == 0 || started.Events[0].Kind != engine.EventBattleStarted {
		t.Fatalf("events = %+v, want battle_started first", started.Events)
	}
	if svc.Len() != 1 {
		t.Fatalf("len = %d, want 1", svc.Len())
	}
}

func TestStartScalesPlayerToOpponent(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	started := mustStart(t, svc, StartRequest{
		Player:      []catalog.TeamEntry{{SpeciesID: 25, Level: 5}},
		OpponentID:  "misty",
		ScalePlayer: true,
		Seed:        "scaled",
	})
	highest := 0
	for _, c := range started.State.NPCTeam {
		highest = max(highest, c.Level)
	}
	npc := make([]*creature.Creature, len(started.State.NPCTeam))
	for i := range started.State.NPCTeam {
		npc[i] = &started.State.NPCTeam[i]
	}
	want, _ := encounter.PlayerLevel(npc)
	if got := started.State.Player().Level; got != want {
		t.Fatalf("player level = %d, want %d (opponent max %d)", got, want, highest)
	}
}

func TestWildStartIsReproducible(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	req := StartRequest{
		Player: []catalog.TeamEntry{{SpeciesID: 4, Level: 12}},
		Kind:   encounter.KindWild,
		Seed:   "tall-grass",
	}

	a := mustStart(t, svc, req)
	b := mustStart(t, svc, req)
	if !reflect.DeepEqual(a.State, b.State) {
		t.Fatalf("start states differ:\n%+v\n%+v", a.State, b.State)
	}
	if got, want := a.State.Player().ID, catalog.InstanceID(4, 0); got != want {
		t.Fatalf("player id = %q, want %q", got, want)
	}
	want, _ := encounter.WildLevel([]*creature.Creature{{Level: 12}})
	if a.State.NPC().Level != want {
		t.Fatalf("wild level = %d, want %d", a.State.NPC().Level, want)
	}

	for turn := 0; turn < 3; turn++ {
		moveID := a.State.Player().Moves[0].ID
		ra, errA := svc.SelectMove(context.Background(), a.ID, moveID)
		rb, errB := svc.SelectMove(context.Background(), b.ID, moveID)
		if (errA == nil) != (errB == nil) {
			t.Fatalf("turn %d errors differ: %v vs %v", turn, errA, errB)
		}
		if errA != nil {
			break
		}
		if len(ra.Events) != len(rb.Events) {
			t.Fatalf("turn %d events differ", turn)
		}
		for i := range ra.Events {
			if ra.Events[i].Text != rb.Events[i].Text {
				t.Fatalf("turn %d event %d = %q, want %q", turn, i, rb.Events[i].Text, ra.Events[i].Text)
			}
		}
		if !reflect.DeepEqual(ra.State, rb.State) {
			t.Fatalf("turn %d states differ:\n%+v\n%+v", turn, ra.State, rb.State)
		}
		a.State = ra.State
	}
}

func TestStartErrors(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	tests := []struct {
		name string
		req  StartRequest
		want apperrors.Code
	}{
		{name: "empty player", req: StartRequest{OpponentID: "brock"}, want: apperrors.CodeBattleEmptyRoster},
		{name: "unknown opponent", req: StartRequest{Player: []catalog.TeamEntry{{SpeciesID: 25, Level: 5}}, OpponentID: "giovanni"}, want: apperrors.CodeCatalogNotFound},
		{name: "unknown species", req: StartRequest{Player: []catalog.TeamEntry{{SpeciesID: 9000, Level: 5}}, OpponentID: "brock"}, want: apperrors.CodeCatalogNotFound},
		{name: "bad level", req: StartRequest{Player: []catalog.TeamEntry{{SpeciesID: 25, Level: 0}}, OpponentID: "brock"}, want: apperrors.CodeBattleInvalidLevel},
		{name: "bad seed", req: StartRequest{Player: []catalog.TeamEntry{{SpeciesID: 25, Level: 5}}, OpponentID: "brock", Seed: true}, want: apperrors.CodeBattleInvalidSeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Start(context.Background(), tt.req)
			if !apperrors.HasCode(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if svc.Len() != 0 {
		t.Fatalf("len = %d, want 0", svc.Len())
	}
}

func TestUnknownBattle(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	checks := map[string]func() error{
		"state":   func() error { _, err := svc.State(ctx, "nope"); return err },
		"move":    func() error { _, err := svc.SelectMove(ctx, "nope", "tackle"); return err },
		"switch":  func() error { _, err := svc.SelectSwitch(ctx, "nope", 1); return err },
		"confirm": func() error { _, err := svc.ConfirmSwitch(ctx, "nope", 1); return err },
		"capture": func() error { _, err := svc.AttemptCapture(ctx, "nope", "poke-ball"); return err },
		"abandon": func() error { _, err := svc.Abandon(ctx, "nope"); return err },
		"end":     func() error { _, err := svc.End(ctx, "nope"); return err },
	}
	for name, check := range checks {
		if err := check(); !apperrors.HasCode(err, apperrors.CodeBattleNotFound) {
			t.Fatalf("%s err = %v, want %v", name, err, apperrors.CodeBattleNotFound)
		}
	}
}

func TestPlayerFaintNeedsConfirmation(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	started := mustStart(t, svc, StartRequest{
		PlayerCreatures: []*creature.Creature{fighter("Pebble", 1, 10, 1, peck), fighter("Backup", 300, 500, 1, slam)},
		NPCCreatures:    []*creature.Creature{fighter("Bruiser", 300, 500, 100, slam)},
		OpponentName:    "Blue",
		Seed:            int64(3),
		Strategy:        ai.KindNaive,
	})

	res, err := svc.SelectMove(ctx, started.ID, "peck")
	if err != nil {
		t.Fatalf("select move: %v", err)
	}
	if res.State.Pending == nil {
		t.Fatal("expected a pending switch")
	}
	if _, err := svc.SelectMove(ctx, started.ID, "slam"); !apperrors.HasCode(err, apperrors.CodeBattleWrongPhase) {
		t.Fatalf("move while pending err = %v, want %v", err, apperrors.CodeBattleWrongPhase)
	}

	res, err = svc.ConfirmSwitch(ctx, started.ID, 1)
	if err != nil {
		t.Fatalf("confirm switch: %v", err)
	}
	if res.State.Phase != engine.PhaseSelect || res.State.Player().Name != "Backup" {
		t.Fatalf("after confirm phase = %s lead = %s", res.State.Phase, res.State.Player().Name)
	}
}

func TestCaptureThroughService(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	started := mustStart(t, svc, StartRequest{
		PlayerCreatures: []*creature.Creature{fighter("Hero", 100, 50, 50, slam)},
		Kind:            encounter.KindWild,
		Seed:            "net",
	})
	res, err := svc.AttemptCapture(ctx, started.ID, "master")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !res.Capture.Success {
		t.Fatalf("capture = %+v, want success", res.Capture)
	}
	if res.State.Outcome == nil || res.State.Outcome.Result != encounter.ResultCaptured {
		t.Fatalf("outcome = %+v, want captured", res.State.Outcome)
	}
	if res.State.Captured == nil || res.State.Captured.Name != started.State.NPC().Name {
		t.Fatalf("captured = %+v, want %s", res.State.Captured, started.State.NPC().Name)
	}
}

func TestEndAbandonsAndRemoves(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	started := mustStart(t, svc, StartRequest{
		Player:     []catalog.TeamEntry{{SpeciesID: 25, Level: 10}},
		OpponentID: "gary",
		Seed:       int64(11),
	})
	state, err := svc.End(ctx, started.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if state.Outcome == nil || state.Outcome.Result != encounter.ResultForfeit {
		t.Fatalf("outcome = %+v, want forfeit", state.Outcome)
	}
	if svc.Len() != 0 {
		t.Fatalf("len = %d, want 0", svc.Len())
	}
	if _, err := svc.State(ctx, started.ID); !apperrors.HasCode(err, apperrors.CodeBattleNotFound) {
		t.Fatalf("state after end err = %v, want %v", err, apperrors.CodeBattleNotFound)
	}
}

func TestBattlesRunConcurrently(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		ids[i] = mustStart(t, svc, StartRequest{
			PlayerCreatures: []*creature.Creature{fighter("Hero", 300, 500, 100, slam)},
			NPCCreatures:    []*creature.Creature{fighter("Foe", 300, 10, 1, peck), fighter("Foe II", 300, 10, 1, peck)},
			Seed:            int64(i),
		}).ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				res, err := svc.SelectMove(ctx, id, "slam")
				if err != nil {
					errs <- err
					return
				}
				if res.State.Phase == engine.PhaseEnded {
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("select move: %v", err)
	}

	for _, id := range ids {
		state, err := svc.State(ctx, id)
		if err != nil {
			t.Fatalf("state: %v", err)
		}
		if state.Winner != engine.SidePlayer {
			t.Fatalf("winner = %v, want player", state.Winner)
		}
	}
}

func TestMoveLearningAfterVictory(t *testing.T) {
	t.Parallel()
	svc, ds := newService(t)
	ctx := context.Background()

	h := catalog.NewHydrator(catalog.NewMemory(ds), nil)
	pikachu, err := h.Hydrate(ctx, catalog.TeamEntry{SpeciesID: 25, Level: 25}, nil)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	pikachu.Stats.Attack, pikachu.Stats.SpAttack, pikachu.Stats.Speed = 999, 999, 999

	started := mustStart(t, svc, StartRequest{
		PlayerCreatures: []*creature.Creature{pikachu},
		NPCCreatures:    []*creature.Creature{fighter("Pidgey", 1, 10, 1, peck)},
		Seed:            int64(5),
	})

	if learners, err := svc.MoveLearners(ctx, started.ID); err != nil || len(learners) != 0 {
		t.Fatalf("learners before victory = %v, %v; want none", learners, err)
	}
	if _, _, err := svc.LearnMove(ctx, started.ID, 0, "thunderbolt", 0); !apperrors.HasCode(err, apperrors.CodeBattleWrongPhase) {
		t.Fatalf("learn before victory err = %v, want %v", err, apperrors.CodeBattleWrongPhase)
	}

	res, err := svc.SelectMove(ctx, started.ID, pikachu.Moves[0].ID)
	if err != nil {
		t.Fatalf("select move: %v", err)
	}
	if res.State.Outcome == nil || res.State.Outcome.Result != encounter.ResultVictory {
		t.Fatalf("outcome = %+v, want victory", res.State.Outcome)
	}

	learners, err := svc.MoveLearners(ctx, started.ID)
	if err != nil {
		t.Fatalf("learners: %v", err)
	}
	if len(learners) != 1 || learners[0].Move.ID != "thunderbolt" || learners[0].Index != 0 {
		t.Fatalf("learners = %+v, want pikachu learning thunderbolt", learners)
	}

	moves, result, err := svc.LearnMove(ctx, started.ID, 0, "thunderbolt", 0)
	if err != nil {
		t.Fatalf("learn: %v", err)
	}
	if !result.Learned || moves[len(moves)-1].ID != "thunderbolt" {
		t.Fatalf("result = %+v moves = %v", result, moves)
	}
	if _, _, err := svc.LearnMove(ctx, started.ID, 0, "thunderbolt", 0); !apperrors.HasCode(err, apperrors.CodeBattleUnknownMove) {
		t.Fatalf("relearn err = %v, want %v", err, apperrors.CodeBattleUnknownMove)
	}
	if learners, _ := svc.MoveLearners(ctx, started.ID); len(learners) != 0 {
		t.Fatalf("learners after learning = %+v, want none", learners)
	}
}

func TestAutoplayFinishesBattle(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	run := func() ([]string, engine.State) {
		started := mustStart(t, svc, StartRequest{
			Player:     []catalog.TeamEntry{{SpeciesID: 7, Level: 16}, {SpeciesID: 25, Level: 16}},
			OpponentID: "brock",
			Kind:       encounter.KindGymLeader,
			Seed:       "autoplay",
		})
		events, state, err := svc.Autoplay(ctx, started.ID, 200)
		if err != nil {
			t.Fatalf("autoplay: %v", err)
		}
		var lines []string
		for _, ev := range events {
			lines = append(lines, ev.Text)
		}
		return lines, state
	}

	first, state := run()
	if state.Phase != engine.PhaseEnded || state.Outcome == nil {
		t.Fatalf("phase = %s outcome = %+v, want ended", state.Phase, state.Outcome)
	}
	second, _ := run()
	if len(first) != len(second) {
		t.Fatalf("log lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("line %d = %q, want %q", i, second[i], first[i])
		}
	}
}
