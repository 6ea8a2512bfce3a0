package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a loaded script: an ordered list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one DSL call with its arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs the Lua script at path and returns the
// Scenario it builds.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runChunk(state, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// LoadScenario runs a Lua script from source.
func LoadScenario(name, source string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	return runChunk(state, name)
}

func runChunk(state *lua.State, fallbackName string) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = fallbackName
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "seed", Function: scenarioSeed},
	{Name: "ai", Function: stringStep("ai", "name")},
	{Name: "locale", Function: stringStep("locale", "name")},
	{Name: "keep_status_moves", Function: scenarioKeepStatusMoves},
	{Name: "opponent", Function: scenarioOpponent},
	{Name: "wild", Function: tableStep("wild")},
	{Name: "player", Function: tableStep("player")},
	{Name: "npc", Function: tableStep("npc")},
	{Name: "start", Function: tableStep("start")},
	{Name: "move", Function: actionStep("move", "move")},
	{Name: "switch", Function: intActionStep("switch")},
	{Name: "confirm_switch", Function: intActionStep("confirm_switch")},
	{Name: "capture", Function: actionStep("capture", "ball")},
	{Name: "abandon", Function: tableStep("abandon")},
	{Name: "auto", Function: scenarioAuto},
	{Name: "expect", Function: tableStep("expect")},
	{Name: "expect_event", Function: tableStep("expect_event")},
	{Name: "expect_log", Function: stringStep("expect_log", "text")},
}

func scenarioSeed(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "seed", map[string]any{"value": luaToGo(state, 2)})
	return 0
}

func scenarioKeepStatusMoves(state *lua.State) int {
	scenario := checkScenario(state)
	keep := true
	if !state.IsNoneOrNil(2) {
		keep = state.ToBoolean(2)
	}
	appendStep(scenario, "keep_status_moves", map[string]any{"value": keep})
	return 0
}

// scenarioOpponent takes a catalog opponent id, or a table describing an
// opponent whose roster comes from npc steps.
func scenarioOpponent(state *lua.State) int {
	scenario := checkScenario(state)
	if state.TypeOf(2) == lua.TypeTable {
		appendStep(scenario, "opponent", tableToMap(state, 2))
		return 0
	}
	appendStep(scenario, "opponent", map[string]any{"id": lua.CheckString(state, 2)})
	return 0
}

func scenarioAuto(state *lua.State) int {
	scenario := checkScenario(state)
	turns := lua.OptInteger(state, 2, 1)
	appendStep(scenario, "auto", map[string]any{"turns": turns})
	return 0
}

func stringStep(kind, key string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		appendStep(scenario, kind, map[string]any{key: lua.CheckString(state, 2)})
		return 0
	}
}

func tableStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		appendStep(scenario, kind, optionalTable(state, 2))
		return 0
	}
}

// actionStep records an action taking one string and an optional options
// table, e.g. scene:move("ember", {error = "BATTLE_UNKNOWN_MOVE"}).
func actionStep(kind, key string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		data := optionalTable(state, 3)
		data[key] = lua.CheckString(state, 2)
		appendStep(scenario, kind, data)
		return 0
	}
}

func intActionStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		data := optionalTable(state, 3)
		data["index"] = lua.CheckInteger(state, 2)
		appendStep(scenario, kind, data)
		return 0
	}
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) {
	if scenario == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				maxIndex = max(maxIndex, idx)
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
