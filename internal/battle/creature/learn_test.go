package creature

import (
	"errors"
	"testing"
)

func moveNamed(id string) Move {
	return Move{ID: id, Name: id, Type: Normal, Power: 40, Accuracy: 100, Category: CategoryPhysical}
}

func TestApplyMoveLearning(t *testing.T) {
	t.Parallel()

	full := []Move{moveNamed("a"), moveNamed("b"), moveNamed("c"), moveNamed("d")}

	tests := []struct {
		name      string
		moves     []Move
		slot      int
		wantIDs   []string
		learned   bool
		forgotten string
		wantErr   error
	}{
		{name: "append", moves: full[:2], slot: 0, wantIDs: []string{"a", "b", "new"}, learned: true},
		{name: "skip", moves: full[:2], slot: SkipLearning, wantIDs: []string{"a", "b"}},
		{name: "replace", moves: full, slot: 2, wantIDs: []string{"a", "b", "new", "d"}, learned: true, forgotten: "c"},
		{name: "bad slot", moves: full, slot: 4, wantIDs: []string{"a", "b", "c", "d"}, wantErr: ErrInvalidSlot},
		{name: "known", moves: append([]Move{moveNamed("new")}, full[:1]...), slot: 0, wantIDs: []string{"new", "a"}, wantErr: ErrAlreadyKnown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, res, err := ApplyMoveLearning(tt.moves, moveNamed("new"), tt.slot)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ApplyMoveLearning: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("moves = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Fatalf("moves[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
			if res.Learned != tt.learned {
				t.Fatalf("learned = %v, want %v", res.Learned, tt.learned)
			}
			if tt.forgotten != "" && (res.Forgotten == nil || res.Forgotten.ID != tt.forgotten) {
				t.Fatalf("forgotten = %+v, want %s", res.Forgotten, tt.forgotten)
			}
		})
	}
	if full[2].ID != "c" {
		t.Fatal("input slice was mutated")
	}
}
