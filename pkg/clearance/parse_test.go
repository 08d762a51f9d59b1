package clearance

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  Level
		ok    bool
	}{
		{"plain number", 5, 5, true},
		{"zero", 0, Public, true},
		{"negative number", -1, 0, false},
		{"int64", int64(3), 3, true},
		{"float from json", float64(4), 4, true},
		{"negative float", float64(-2), 0, false},
		{"level value", TopSecret, TopSecret, true},
		{"numeric string", "5", 5, true},
		{"decorated string", "Level 5 Restricted", 5, true},
		{"digits at end", "Clearance 3", 3, true},
		{"first run wins", "level 3/4", 3, true},
		{"no digits", "classified", 0, false},
		{"empty string", "", 0, false},
		{"nil", nil, 0, false},
		{"overflow digits", "99999999999999999999", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLevel(tc.value)
			if ok != tc.ok {
				t.Fatalf("ParseLevel(%v) ok = %v, want %v", tc.value, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("ParseLevel(%v) = %d, want %d", tc.value, got, tc.want)
			}
		})
	}
}

func TestSatisfies(t *testing.T) {
	if !TopSecret.Satisfies(Confidential) {
		t.Error("higher level should satisfy lower requirement")
	}
	if !Secret.Satisfies(Secret) {
		t.Error("equal level should satisfy requirement")
	}
	if Intern.Satisfies(Secret) {
		t.Error("lower level should not satisfy higher requirement")
	}
}
