package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/catalog"
)

// ImportSummary counts the rows written by Import.
type ImportSummary struct {
	Moves     int
	Species   int
	Learnset  int
	WildPool  int
	Opponents int
}

// Import replaces the stored catalog with ds in a single transaction.
func (s *Store) Import(ctx context.Context, ds catalog.Dataset) (ImportSummary, error) {
	if err := s.ready(ctx); err != nil {
		return ImportSummary{}, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("begin import: %w", err)
	}
	summary, err := importDataset(ctx, tx, ds)
	if err != nil {
		_ = tx.Rollback()
		return ImportSummary{}, err
	}
	if err := tx.Commit(); err != nil {
		return ImportSummary{}, fmt.Errorf("commit import: %w", err)
	}
	return summary, nil
}

func importDataset(ctx context.Context, tx *sql.Tx, ds catalog.Dataset) (ImportSummary, error) {
	var summary ImportSummary
	for _, table := range []string{"opponent_team", "opponents", "wild_pool", "learnset", "species", "moves"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return summary, fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, id := range sortedMoveIDs(ds.Moves) {
		rec := catalog.RecordOf(ds.Moves[id])
		var effect any
		if rec.Effect != nil {
			data, err := json.Marshal(rec.Effect)
			if err != nil {
				return summary, fmt.Errorf("encode effect for %s: %w", id, err)
			}
			effect = string(data)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO moves (`+moveColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Name, rec.Type, rec.Power, rec.Accuracy, rec.Category, effect,
		); err != nil {
			return summary, fmt.Errorf("insert move %s: %w", id, err)
		}
		summary.Moves++
	}

	for _, id := range ds.SpeciesIDs() {
		def := ds.Species[id]
		st := def.BaseStats
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO species (id, name, types, hp, attack, defense, sp_attack, sp_defense, speed, catch_rate)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			def.ID, def.Name, encodeTypes(def.Types), st.HP, st.Attack, st.Defense, st.SpAttack, st.SpDefense, st.Speed, def.CatchRate,
		); err != nil {
			return summary, fmt.Errorf("insert species %d: %w", id, err)
		}
		summary.Species++
		for pos, l := range def.Learnset {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO learnset (species_id, position, move_id, level) VALUES (?, ?, ?, ?)`,
				def.ID, pos, l.MoveID, l.Level,
			); err != nil {
				return summary, fmt.Errorf("insert learnset %d/%s: %w", id, l.MoveID, err)
			}
			summary.Learnset++
		}
	}

	for pos, e := range ds.WildPool {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wild_pool (position, species_id, weight) VALUES (?, ?, ?)`,
			pos, e.SpeciesID, e.Weight,
		); err != nil {
			return summary, fmt.Errorf("insert wild pool species %d: %w", e.SpeciesID, err)
		}
		summary.WildPool++
	}

	for _, opp := range ds.Opponents {
		if err := insertOpponent(ctx, tx, opp); err != nil {
			return summary, err
		}
		summary.Opponents++
	}
	return summary, nil
}

func insertOpponent(ctx context.Context, tx *sql.Tx, opp catalog.OpponentDefinition) error {
	kind := opp.Kind
	if kind == "" {
		kind = encounter.KindTrainer
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO opponents (id, kind, name) VALUES (?, ?, ?)`,
		opp.ID, string(kind), opp.Name,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("duplicate opponent %q", opp.ID)
		}
		return fmt.Errorf("insert opponent %s: %w", opp.ID, err)
	}
	for pos, e := range opp.Team {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO opponent_team (opponent_id, position, species_id, level) VALUES (?, ?, ?, ?)`,
			opp.ID, pos, e.SpeciesID, e.Level,
		); err != nil {
			return fmt.Errorf("insert opponent %s team: %w", opp.ID, err)
		}
	}
	return nil
}
