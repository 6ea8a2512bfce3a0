package filter

import (
	"reflect"
	"testing"
)

func TestParseBlank(t *testing.T) {
	t.Parallel()

	f, err := Parse("   ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !f.Empty() {
		t.Fatal("expected empty filter")
	}
	cond, err := f.SQL()
	if err != nil {
		t.Fatalf("sql: %v", err)
	}
	if cond.Clause != "" || len(cond.Params) != 0 {
		t.Fatalf("condition = %+v, want empty", cond)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []string{
		`speed > 10`,
		`power = "forty"`,
		`type = `,
	}
	for _, input := range tests {
		if _, err := Parse(input); err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter string
		clause string
		params []any
	}{
		{name: "equals", filter: `type = "FIRE"`, clause: "type = ?", params: []any{"fire"}},
		{name: "int compare", filter: `power >= 40`, clause: "power >= ?", params: []any{int64(40)}},
		{
			name:   "and",
			filter: `category = "special" AND accuracy < 100`,
			clause: "(category = ? AND accuracy < ?)",
			params: []any{"special", int64(100)},
		},
		{
			name:   "or",
			filter: `id = "ember" OR name = "Tackle"`,
			clause: "(id = ? OR name = ?)",
			params: []any{"ember", "Tackle"},
		},
		{name: "not", filter: `NOT type = "normal"`, clause: "(NOT type = ?)", params: []any{"normal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := Parse(tt.filter)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			cond, err := f.SQL()
			if err != nil {
				t.Fatalf("sql: %v", err)
			}
			if cond.Clause != tt.clause {
				t.Fatalf("clause = %q, want %q", cond.Clause, tt.clause)
			}
			if !reflect.DeepEqual(cond.Params, tt.params) {
				t.Fatalf("params = %#v, want %#v", cond.Params, tt.params)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()

	ember := Fields{ID: "ember", Name: "Ember", Type: "fire", Category: "special", Power: 40, Accuracy: 100}
	thunder := Fields{ID: "thunder", Name: "Thunder", Type: "electric", Category: "special", Power: 110, Accuracy: 70}

	tests := []struct {
		name   string
		filter string
		fields Fields
		want   bool
	}{
		{name: "blank", filter: "", fields: ember, want: true},
		{name: "type folded", filter: `type = "Fire"`, fields: ember, want: true},
		{name: "type mismatch", filter: `type = "fire"`, fields: thunder, want: false},
		{name: "power and accuracy", filter: `power > 100 AND accuracy <= 70`, fields: thunder, want: true},
		{name: "power and accuracy fails", filter: `power > 100 AND accuracy <= 70`, fields: ember, want: false},
		{name: "or", filter: `id = "nope" OR category = "special"`, fields: ember, want: true},
		{name: "not", filter: `NOT power < 50`, fields: ember, want: false},
		{name: "not equals", filter: `name != "Ember"`, fields: thunder, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := Parse(tt.filter)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got, err := f.Matches(tt.fields)
			if err != nil {
				t.Fatalf("matches: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
