// Package errors provides structured error handling for battle and catalog operations.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Battle setup errors
	CodeBattleEmptyRoster       Code = "BATTLE_EMPTY_ROSTER"
	CodeBattleNoMoves           Code = "BATTLE_NO_MOVES"
	CodeBattleInvalidSeed       Code = "BATTLE_INVALID_SEED"
	CodeBattleInvalidLevel      Code = "BATTLE_INVALID_LEVEL"
	CodeBattleNoHealthyCreature Code = "BATTLE_NO_HEALTHY_CREATURE"
	CodeBattleInvalidConfig     Code = "BATTLE_INVALID_CONFIG"

	// Battle in-play errors
	CodeBattleUnknownMove      Code = "BATTLE_UNKNOWN_MOVE"
	CodeBattleInvalidSwitch    Code = "BATTLE_INVALID_SWITCH"
	CodeBattleWrongPhase       Code = "BATTLE_WRONG_PHASE"
	CodeBattleActionNotAllowed Code = "BATTLE_ACTION_NOT_ALLOWED"
	CodeBattleNotFound         Code = "BATTLE_NOT_FOUND"

	// Catalog errors
	CodeCatalogNotFound      Code = "CATALOG_NOT_FOUND"
	CodeCatalogInvalidFilter Code = "CATALOG_INVALID_FILTER"
)

// IsSetup reports whether the code belongs to a battle setup failure.
func (c Code) IsSetup() bool {
	switch c {
	case CodeBattleEmptyRoster, CodeBattleNoMoves, CodeBattleInvalidSeed,
		CodeBattleInvalidLevel, CodeBattleNoHealthyCreature, CodeBattleInvalidConfig:
		return true
	default:
		return false
	}
}
