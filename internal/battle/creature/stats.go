package creature

import (
	"fmt"
	"strings"
)

// Stats are the computed stats of a creature at its level.
type Stats struct {
	HP        int
	Attack    int
	Defense   int
	SpAttack  int
	SpDefense int
	Speed     int
}

// Stat names a stage-able battle stat.
type Stat uint8

const (
	StatUnspecified Stat = iota
	StatAttack
	StatDefense
	StatSpAttack
	StatSpDefense
	StatSpeed
	StatAccuracy
	StatEvasion
)

var statNames = map[Stat]string{
	StatAttack:    "attack",
	StatDefense:   "defense",
	StatSpAttack:  "special-attack",
	StatSpDefense: "special-defense",
	StatSpeed:     "speed",
	StatAccuracy:  "accuracy",
	StatEvasion:   "evasion",
}

func (s Stat) String() string {
	if name, ok := statNames[s]; ok {
		return name
	}
	return "unspecified"
}

// AccuracyOrEvasion reports whether the stat uses the accuracy stage curve.
func (s Stat) AccuracyOrEvasion() bool {
	return s == StatAccuracy || s == StatEvasion
}

// ParseStat resolves a stat name. Common abbreviations are accepted.
func ParseStat(name string) (Stat, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "atk":
		return StatAttack, nil
	case "def":
		return StatDefense, nil
	case "spatk", "sp-atk", "special_attack":
		return StatSpAttack, nil
	case "spdef", "sp-def", "special_defense":
		return StatSpDefense, nil
	case "spe", "spd":
		return StatSpeed, nil
	case "acc":
		return StatAccuracy, nil
	case "eva":
		return StatEvasion, nil
	}
	for stat, statName := range statNames {
		if statName == key {
			return stat, nil
		}
	}
	return StatUnspecified, fmt.Errorf("unknown stat %q", name)
}

// StatStages holds the -6..+6 battle modifiers.
type StatStages struct {
	Attack    int
	Defense   int
	SpAttack  int
	SpDefense int
	Speed     int
	Accuracy  int
	Evasion   int
}

// Get returns the stage for stat.
func (s StatStages) Get(stat Stat) int {
	switch stat {
	case StatAttack:
		return s.Attack
	case StatDefense:
		return s.Defense
	case StatSpAttack:
		return s.SpAttack
	case StatSpDefense:
		return s.SpDefense
	case StatSpeed:
		return s.Speed
	case StatAccuracy:
		return s.Accuracy
	case StatEvasion:
		return s.Evasion
	default:
		return 0
	}
}

// Set stores value for stat. Unknown stats are ignored.
func (s *StatStages) Set(stat Stat, value int) {
	switch stat {
	case StatAttack:
		s.Attack = value
	case StatDefense:
		s.Defense = value
	case StatSpAttack:
		s.SpAttack = value
	case StatSpDefense:
		s.SpDefense = value
	case StatSpeed:
		s.Speed = value
	case StatAccuracy:
		s.Accuracy = value
	case StatEvasion:
		s.Evasion = value
	}
}
