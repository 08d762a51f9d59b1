package characters

import (
	"context"
	"testing"
)

func TestMemorySource(t *testing.T) {
	source := NewMemorySource()
	ctx := context.Background()

	source.AddCharacter(&Character{
		ID:        "C1",
		Name:      "Dr. Halloway",
		Clearance: 4,
		LinkedUID: "U1",
	})

	t.Run("load existing character", func(t *testing.T) {
		char, err := source.LoadCharacter(ctx, "C1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if char.Name != "Dr. Halloway" {
			t.Errorf("expected name 'Dr. Halloway', got %q", char.Name)
		}
		if char.LinkedUID != "U1" {
			t.Errorf("expected linked uid 'U1', got %q", char.LinkedUID)
		}
	})

	t.Run("non-existent character", func(t *testing.T) {
		_, err := source.LoadCharacter(ctx, "nope")
		if err != ErrCharacterNotFound {
			t.Errorf("expected ErrCharacterNotFound, got %v", err)
		}
	})

	t.Run("remove character", func(t *testing.T) {
		source.RemoveCharacter("C1")
		if _, err := source.LoadCharacter(ctx, "C1"); err != ErrCharacterNotFound {
			t.Errorf("expected ErrCharacterNotFound after removal, got %v", err)
		}
	})
}

func TestClearanceLevel(t *testing.T) {
	tests := []struct {
		name      string
		clearance interface{}
		want      int
		ok        bool
	}{
		{"number", 5, 5, true},
		{"decorated string", "Level 3", 3, true},
		{"absent", nil, 0, false},
		{"garbage", "none", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			char := &Character{ID: "C1", Clearance: tc.clearance}
			lvl, ok := char.ClearanceLevel()
			if ok != tc.ok {
				t.Fatalf("ClearanceLevel() ok = %v, want %v", ok, tc.ok)
			}
			if ok && int(lvl) != tc.want {
				t.Errorf("ClearanceLevel() = %d, want %d", lvl, tc.want)
			}
		})
	}
}
