package session

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantID       string
		hasSelection bool
	}{
		{"full blob", `{"id":"C1","name":"Dr. Halloway","clearance":5}`, "C1", true},
		{"string clearance", `{"id":"C2","clearance":"Level 3"}`, "C2", true},
		{"empty blob", "", "", false},
		{"garbage", "{not json", "", false},
		{"missing id", `{"name":"Nobody"}`, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.raw)
			if got.SelectedID != tc.wantID {
				t.Errorf("SelectedID = %q, want %q", got.SelectedID, tc.wantID)
			}
			if got.HasSelection() != tc.hasSelection {
				t.Errorf("HasSelection() = %v, want %v", got.HasSelection(), tc.hasSelection)
			}
		})
	}
}

func TestParseKeepsCachedClearance(t *testing.T) {
	ctx := Parse(`{"id":"C1","clearance":4}`)
	if ctx.CachedClearance == nil {
		t.Fatal("expected cached clearance to be kept")
	}
	if n, ok := ctx.CachedClearance.(float64); !ok || n != 4 {
		t.Errorf("CachedClearance = %v, want 4", ctx.CachedClearance)
	}
}
