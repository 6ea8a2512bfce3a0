package typechart

import "github.com/louisbranch/creaturebattle/internal/battle/creature"

// Default is the standard 18-type chart.
var Default = Chart{
	creature.Normal:   {creature.Rock: 0.5, creature.Ghost: 0, creature.Steel: 0.5},
	creature.Fire:     {creature.Fire: 0.5, creature.Water: 0.5, creature.Grass: 2, creature.Ice: 2, creature.Bug: 2, creature.Rock: 0.5, creature.Dragon: 0.5, creature.Steel: 2},
	creature.Water:    {creature.Fire: 2, creature.Water: 0.5, creature.Grass: 0.5, creature.Ground: 2, creature.Rock: 2, creature.Dragon: 0.5},
	creature.Electric: {creature.Water: 2, creature.Electric: 0.5, creature.Grass: 0.5, creature.Ground: 0, creature.Flying: 2, creature.Dragon: 0.5},
	creature.Grass:    {creature.Fire: 0.5, creature.Water: 2, creature.Grass: 0.5, creature.Poison: 0.5, creature.Ground: 2, creature.Flying: 0.5, creature.Bug: 0.5, creature.Rock: 2, creature.Dragon: 0.5, creature.Steel: 0.5},
	creature.Ice:      {creature.Fire: 0.5, creature.Water: 0.5, creature.Grass: 2, creature.Ice: 0.5, creature.Ground: 2, creature.Flying: 2, creature.Dragon: 2, creature.Steel: 0.5},
	creature.Fighting: {creature.Normal: 2, creature.Ice: 2, creature.Poison: 0.5, creature.Flying: 0.5, creature.Psychic: 0.5, creature.Bug: 0.5, creature.Rock: 2, creature.Ghost: 0, creature.Dark: 2, creature.Steel: 2, creature.Fairy: 0.5},
	creature.Poison:   {creature.Grass: 2, creature.Poison: 0.5, creature.Ground: 0.5, creature.Rock: 0.5, creature.Ghost: 0.5, creature.Steel: 0, creature.Fairy: 2},
	creature.Ground:   {creature.Fire: 2, creature.Electric: 2, creature.Grass: 0.5, creature.Poison: 2, creature.Flying: 0, creature.Bug: 0.5, creature.Rock: 2, creature.Steel: 2},
	creature.Flying:   {creature.Electric: 0.5, creature.Grass: 2, creature.Fighting: 2, creature.Bug: 2, creature.Rock: 0.5, creature.Steel: 0.5},
	creature.Psychic:  {creature.Fighting: 2, creature.Poison: 2, creature.Psychic: 0.5, creature.Dark: 0, creature.Steel: 0.5},
	creature.Bug:      {creature.Fire: 0.5, creature.Grass: 2, creature.Fighting: 0.5, creature.Poison: 0.5, creature.Flying: 0.5, creature.Psychic: 2, creature.Ghost: 0.5, creature.Dark: 2, creature.Steel: 0.5, creature.Fairy: 0.5},
	creature.Rock:     {creature.Fire: 2, creature.Ice: 2, creature.Fighting: 0.5, creature.Ground: 0.5, creature.Flying: 2, creature.Bug: 2, creature.Steel: 0.5},
	creature.Ghost:    {creature.Normal: 0, creature.Psychic: 2, creature.Ghost: 2, creature.Dark: 0.5},
	creature.Dragon:   {creature.Dragon: 2, creature.Steel: 0.5, creature.Fairy: 0},
	creature.Dark:     {creature.Fighting: 0.5, creature.Psychic: 2, creature.Ghost: 2, creature.Dark: 0.5, creature.Fairy: 0.5},
	creature.Steel:    {creature.Fire: 0.5, creature.Water: 0.5, creature.Electric: 0.5, creature.Ice: 2, creature.Rock: 2, creature.Steel: 0.5, creature.Fairy: 2},
	creature.Fairy:    {creature.Fire: 0.5, creature.Fighting: 2, creature.Poison: 0.5, creature.Dragon: 2, creature.Dark: 2, creature.Steel: 0.5},
}
