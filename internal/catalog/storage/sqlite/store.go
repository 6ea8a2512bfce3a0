// Package sqlite provides a SQLite-backed catalog provider.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/louisbranch/creaturebattle/internal/battle/creature"
	"github.com/louisbranch/creaturebattle/internal/battle/encounter"
	"github.com/louisbranch/creaturebattle/internal/catalog"
	"github.com/louisbranch/creaturebattle/internal/catalog/filter"
	"github.com/louisbranch/creaturebattle/internal/catalog/storage/sqlite/migrations"
	sqlitemigrate "github.com/louisbranch/creaturebattle/internal/platform/storage/sqlitemigrate"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists the catalog in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite catalog store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Creature returns the species with id and its learnset in import order.
func (s *Store) Creature(ctx context.Context, id int) (catalog.CreatureDefinition, error) {
	if err := s.ready(ctx); err != nil {
		return catalog.CreatureDefinition{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, types, hp, attack, defense, sp_attack, sp_defense, speed, catch_rate
		   FROM species
		  WHERE id = ?`,
		id,
	)
	var (
		def   catalog.CreatureDefinition
		types string
		st    = &def.BaseStats
	)
	err := row.Scan(&def.ID, &def.Name, &types, &st.HP, &st.Attack, &st.Defense, &st.SpAttack, &st.SpDefense, &st.Speed, &def.CatchRate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.CreatureDefinition{}, catalog.NotFound("creature", fmt.Sprint(id))
		}
		return catalog.CreatureDefinition{}, fmt.Errorf("get species: %w", err)
	}
	if def.Types, err = decodeTypes(types); err != nil {
		return catalog.CreatureDefinition{}, fmt.Errorf("species %d: %w", id, err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT move_id, level FROM learnset WHERE species_id = ? ORDER BY position`,
		id,
	)
	if err != nil {
		return catalog.CreatureDefinition{}, fmt.Errorf("list learnset: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l catalog.LearnableMove
		if err := rows.Scan(&l.MoveID, &l.Level); err != nil {
			return catalog.CreatureDefinition{}, fmt.Errorf("scan learnset: %w", err)
		}
		def.Learnset = append(def.Learnset, l)
	}
	if err := rows.Err(); err != nil {
		return catalog.CreatureDefinition{}, fmt.Errorf("iterate learnset: %w", err)
	}
	return def, nil
}

const moveColumns = `id, name, type, power, accuracy, category, effect`

// Move returns the move with id.
func (s *Store) Move(ctx context.Context, id string) (creature.Move, error) {
	if err := s.ready(ctx); err != nil {
		return creature.Move{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+moveColumns+` FROM moves WHERE id = ?`, id)
	mv, err := scanMove(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return creature.Move{}, catalog.NotFound("move", id)
		}
		return creature.Move{}, fmt.Errorf("get move: %w", err)
	}
	return mv, nil
}

// Moves returns the moves matching filterStr, ordered by id.
func (s *Store) Moves(ctx context.Context, filterStr string) ([]creature.Move, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	f, err := filter.Parse(filterStr)
	if err != nil {
		return nil, catalog.InvalidFilter(filterStr, err)
	}
	cond, err := f.SQL()
	if err != nil {
		return nil, catalog.InvalidFilter(filterStr, err)
	}

	query := `SELECT ` + moveColumns + ` FROM moves`
	if cond.Clause != "" {
		query += ` WHERE ` + cond.Clause
	}
	query += ` ORDER BY id`

	rows, err := s.sqlDB.QueryContext(ctx, query, cond.Params...)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	var out []creature.Move
	for rows.Next() {
		mv, err := scanMove(rows)
		if err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		out = append(out, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return out, nil
}

// WildPool returns the wild pool in import order.
func (s *Store) WildPool(ctx context.Context) (encounter.Pool, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT w.species_id, s.name, w.weight
		   FROM wild_pool w
		   JOIN species s ON s.id = w.species_id
		  ORDER BY w.position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list wild pool: %w", err)
	}
	defer rows.Close()

	var pool encounter.Pool
	for rows.Next() {
		var e encounter.PoolEntry
		if err := rows.Scan(&e.SpeciesID, &e.Name, &e.Weight); err != nil {
			return nil, fmt.Errorf("scan wild pool: %w", err)
		}
		e.Name = catalog.DisplayName(e.Name)
		pool = append(pool, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wild pool: %w", err)
	}
	return pool, nil
}

// Opponent returns the trainer or gym leader with id and its team.
func (s *Store) Opponent(ctx context.Context, id string) (catalog.OpponentDefinition, error) {
	if err := s.ready(ctx); err != nil {
		return catalog.OpponentDefinition{}, err
	}
	var (
		opp  catalog.OpponentDefinition
		kind string
	)
	err := s.sqlDB.QueryRowContext(ctx, `SELECT id, kind, name FROM opponents WHERE id = ?`, id).
		Scan(&opp.ID, &kind, &opp.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.OpponentDefinition{}, catalog.NotFound("opponent", id)
		}
		return catalog.OpponentDefinition{}, fmt.Errorf("get opponent: %w", err)
	}
	if opp.Kind, err = encounter.ParseKind(kind); err != nil {
		return catalog.OpponentDefinition{}, fmt.Errorf("opponent %s: %w", id, err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT species_id, level FROM opponent_team WHERE opponent_id = ? ORDER BY position`,
		id,
	)
	if err != nil {
		return catalog.OpponentDefinition{}, fmt.Errorf("list opponent team: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e catalog.TeamEntry
		if err := rows.Scan(&e.SpeciesID, &e.Level); err != nil {
			return catalog.OpponentDefinition{}, fmt.Errorf("scan opponent team: %w", err)
		}
		opp.Team = append(opp.Team, e)
	}
	if err := rows.Err(); err != nil {
		return catalog.OpponentDefinition{}, fmt.Errorf("iterate opponent team: %w", err)
	}
	return opp, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMove(row scanner) (creature.Move, error) {
	var (
		rec    catalog.MoveRecord
		effect sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Type, &rec.Power, &rec.Accuracy, &rec.Category, &effect); err != nil {
		return creature.Move{}, err
	}
	if effect.Valid && effect.String != "" {
		rec.Effect = &catalog.EffectRecord{}
		if err := json.Unmarshal([]byte(effect.String), rec.Effect); err != nil {
			return creature.Move{}, fmt.Errorf("decode effect for %s: %w", rec.ID, err)
		}
	}
	return rec.Move()
}

func encodeTypes(types []creature.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ",")
}

func decodeTypes(value string) ([]creature.Type, error) {
	var types []creature.Type
	for _, name := range strings.Split(value, ",") {
		t, err := creature.ParseType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func sortedMoveIDs(moves map[string]creature.Move) []string {
	ids := make([]string, 0, len(moves))
	for id := range moves {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
