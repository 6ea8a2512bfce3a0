package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/creaturebattle/internal/battle/ai"
	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/battle/engine"
	"github.com/louisbranch/creaturebattle/internal/battle/rng"
	"github.com/louisbranch/creaturebattle/internal/battle/service"
	"github.com/louisbranch/creaturebattle/internal/catalog"
	apperrors "github.com/louisbranch/creaturebattle/internal/platform/errors"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "seed":
		state.seed = step.Args["value"]
		return nil
	case "ai":
		kind, err := ai.ParseKind(argString(step.Args, "name"))
		if err != nil {
			return err
		}
		state.strategy = kind
		return nil
	case "locale":
		state.locale = argString(step.Args, "name")
		return nil
	case "keep_status_moves":
		state.keepStatus = argBool(step.Args, "value")
		return nil
	case "opponent":
		return r.runOpponent(state, step.Args)
	case "wild":
		state.kind = encounter.KindWild
		if len(step.Args) > 0 {
			state.npc = append(state.npc, step.Args)
		}
		return nil
	case "player":
		state.player = append(state.player, step.Args)
		return nil
	case "npc":
		state.npc = append(state.npc, step.Args)
		return nil
	case "start":
		return r.runStart(ctx, state, step.Args)
	case "move", "switch", "confirm_switch", "capture", "abandon", "auto":
		return r.runAction(ctx, state, step)
	case "expect":
		return r.runExpect(state, step.Args)
	case "expect_event":
		return r.runExpectEvent(state, step.Args)
	case "expect_log":
		return r.runExpectLog(state, argString(step.Args, "text"))
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runOpponent(state *scenarioState, args map[string]any) error {
	state.opponentID = argString(args, "id")
	state.opponentName = argString(args, "name")
	if kind := argString(args, "kind"); kind != "" {
		parsed, err := encounter.ParseKind(kind)
		if err != nil {
			return err
		}
		state.kind = parsed
	}
	return nil
}

func (r *Runner) runStart(ctx context.Context, state *scenarioState, args map[string]any) error {
	if state.battleID != "" {
		return fmt.Errorf("battle already started")
	}
	req := service.StartRequest{
		Kind:            state.kind,
		OpponentID:      state.opponentID,
		OpponentName:    state.opponentName,
		ScalePlayer:     argBool(args, "scale_player"),
		Seed:            state.seed,
		Strategy:        state.strategy,
		Locale:          state.locale,
		KeepStatusMoves: state.keepStatus,
	}
	var err error
	if req.PlayerCreatures, err = r.buildRoster(ctx, state, state.player); err != nil {
		return fmt.Errorf("player roster: %w", err)
	}
	if req.NPCCreatures, err = r.buildRoster(ctx, state, state.npc); err != nil {
		return fmt.Errorf("npc roster: %w", err)
	}

	started, err := r.battles.Start(ctx, req)
	if err == nil {
		state.battleID = started.ID
		state.lastEvents = started.Events
		state.lastState = started.State
	}
	if want := argString(args, "error"); want != "" {
		return r.expectCode(err, want)
	}
	if err != nil {
		return r.assertions.Failf("start failed: %v", err)
	}
	return nil
}

func (r *Runner) runAction(ctx context.Context, state *scenarioState, step Step) error {
	if state.battleID == "" {
		return fmt.Errorf("%s before start", step.Kind)
	}

	var (
		res service.TurnResult
		err error
	)
	switch step.Kind {
	case "move":
		res, err = r.battles.SelectMove(ctx, state.battleID, argString(step.Args, "move"))
	case "switch":
		res, err = r.battles.SelectSwitch(ctx, state.battleID, argInt(step.Args, "index"))
	case "confirm_switch":
		res, err = r.battles.ConfirmSwitch(ctx, state.battleID, argInt(step.Args, "index"))
	case "capture":
		var captured service.CaptureResult
		captured, err = r.battles.AttemptCapture(ctx, state.battleID, argString(step.Args, "ball"))
		res = captured.TurnResult
	case "abandon":
		res, err = r.battles.Abandon(ctx, state.battleID)
	case "auto":
		var events []engine.Event
		events, res.State, err = r.battles.Autoplay(ctx, state.battleID, max(1, argInt(step.Args, "turns")))
		res.Events = events
	}

	if err == nil {
		state.lastEvents = res.Events
		state.lastState = res.State
	}
	if want := argString(step.Args, "error"); want != "" {
		return r.expectCode(err, want)
	}
	if err != nil {
		return r.assertions.Failf("%s rejected: %v", step.Kind, err)
	}
	return nil
}

func (r *Runner) expectCode(err error, want string) error {
	if err == nil {
		return r.assertions.Failf("expected error %s, got none", want)
	}
	if got := apperrors.GetCode(err); string(got) != want {
		return r.assertions.Failf("error code = %s, want %s (%v)", got, want, err)
	}
	return nil
}

func (r *Runner) runExpect(state *scenarioState, args map[string]any) error {
	if state.battleID == "" {
		return fmt.Errorf("expect before start")
	}
	s := state.lastState
	var failures []string
	check := func(key, got string) {
		if want, ok := args[key]; ok && fmt.Sprint(want) != got {
			failures = append(failures, fmt.Sprintf("%s = %s, want %v", key, got, want))
		}
	}

	check("phase", string(s.Phase))
	check("turn", fmt.Sprint(s.Turn))
	check("winner", s.Winner.String())
	result, message := "", ""
	if s.Outcome != nil {
		result, message = string(s.Outcome.Result), s.Outcome.Message
	}
	check("result", result)
	check("message", message)
	check("player", s.Player().Name)
	check("npc", s.NPC().Name)
	check("player_hp", fmt.Sprint(s.Player().CurrentHP))
	check("npc_hp", fmt.Sprint(s.NPC().CurrentHP))
	check("player_status", s.Player().Status.Condition.String())
	check("npc_status", s.NPC().Status.Condition.String())
	check("pending", fmt.Sprint(s.Pending != nil))
	captured := ""
	if s.Captured != nil {
		captured = s.Captured.Name
	}
	check("captured", captured)

	if len(failures) == 0 {
		return nil
	}
	return r.assertions.Failf("%s", strings.Join(failures, "; "))
}

// runExpectEvent looks for an event from the last action matching every
// given field. count, when set, is the exact number of matches.
func (r *Runner) runExpectEvent(state *scenarioState, args map[string]any) error {
	matches := 0
	for _, ev := range state.lastEvents {
		if eventMatches(ev, args) {
			matches++
		}
	}
	if want, ok := args["count"]; ok {
		if fmt.Sprint(want) != fmt.Sprint(matches) {
			return r.assertions.Failf("event %v matched %d times, want %v", describeEvent(args), matches, want)
		}
		return nil
	}
	if matches == 0 {
		return r.assertions.Failf("no event matching %v among %d events", describeEvent(args), len(state.lastEvents))
	}
	return nil
}

func eventMatches(ev engine.Event, args map[string]any) bool {
	fields := map[string]string{
		"kind":     string(ev.Kind),
		"side":     ev.Side.String(),
		"creature": ev.Creature,
		"target":   ev.Target,
		"move":     ev.Move,
		"amount":   fmt.Sprint(ev.Amount),
		"stages":   fmt.Sprint(ev.Stages),
		"text":     ev.Text,
	}
	for key, want := range args {
		if key == "count" {
			continue
		}
		got, ok := fields[key]
		if !ok || got != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func describeEvent(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if k != "count" {
			out[k] = v
		}
	}
	return out
}

func (r *Runner) runExpectLog(state *scenarioState, text string) error {
	for _, line := range state.lastState.Log {
		if strings.Contains(line, text) {
			return nil
		}
	}
	return r.assertions.Failf("log has no line containing %q", text)
}

// rosterSource seeds hydration from the scenario seed, apart from the
// battle stream.
func rosterSource(seed any) (rng.Source, error) {
	if seed == nil {
		return nil, nil
	}
	src, err := rng.Derive(seed, rng.StreamRoster)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBattleInvalidSeed, "invalid seed", err)
	}
	return src, nil
}

// buildCreature hydrates a catalog species when fields name one, or builds
// a creature from explicit stats. Either way explicit fields override.
func (r *Runner) buildCreature(ctx context.Context, fields map[string]any, src rng.Source) (*creature.Creature, error) {
	level := argIntDefault(fields, "level", 50)

	var c *creature.Creature
	if species := argInt(fields, "species"); species > 0 {
		hydrated, err := r.hydrator.Hydrate(ctx, catalog.TeamEntry{SpeciesID: species, Level: level}, src)
		if err != nil {
			return nil, err
		}
		c = hydrated
	} else {
		name := argString(fields, "name")
		if name == "" {
			return nil, fmt.Errorf("creature needs a species or a name")
		}
		c = &creature.Creature{
			ID:        strings.ToLower(name),
			Name:      name,
			Types:     []creature.Type{creature.Normal},
			Level:     level,
			CatchRate: 45,
			Stats: creature.Stats{
				HP: 100, Attack: 100, Defense: 100, SpAttack: 100, SpDefense: 100, Speed: 100,
			},
			Moves: []creature.Move{creature.Tackle()},
		}
	}

	if name := argString(fields, "name"); name != "" {
		c.Name = name
	}
	if types := argStrings(fields, "types"); len(types) > 0 {
		c.Types = c.Types[:0]
		for _, name := range types {
			t, err := creature.ParseType(name)
			if err != nil {
				return nil, err
			}
			c.Types = append(c.Types, t)
		}
	}
	for key, stat := range map[string]*int{
		"hp":         &c.Stats.HP,
		"attack":     &c.Stats.Attack,
		"defense":    &c.Stats.Defense,
		"sp_attack":  &c.Stats.SpAttack,
		"sp_defense": &c.Stats.SpDefense,
		"speed":      &c.Stats.Speed,
		"catch_rate": &c.CatchRate,
	} {
		if v, ok := fields[key]; ok {
			*stat = toInt(v)
		}
	}
	c.CurrentHP = argIntDefault(fields, "current_hp", c.Stats.HP)

	if ids := argStrings(fields, "moves"); len(ids) > 0 {
		c.Moves = c.Moves[:0]
		for _, id := range ids {
			mv, err := r.catalog.Move(ctx, id)
			if err != nil {
				return nil, err
			}
			c.Moves = append(c.Moves, mv)
		}
	}
	return c, nil
}

func argString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func argInt(args map[string]any, key string) int {
	return argIntDefault(args, key, 0)
}

func argIntDefault(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok || v == nil {
		return fallback
	}
	return toInt(v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argStrings(args map[string]any, key string) []string {
	list, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, fmt.Sprint(v))
	}
	return out
}
