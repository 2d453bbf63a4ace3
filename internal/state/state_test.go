package state

import "testing"

func TestWorst(t *testing.T) {
	tests := []struct {
		name   string
		states []State
		want   State
	}{
		{"empty", nil, OK},
		{"all ok", []State{OK, OK}, OK},
		{"warn over ok", []State{OK, WARN}, WARN},
		{"unknown over warn", []State{WARN, UNKNOWN}, UNKNOWN},
		{"crit over unknown", []State{UNKNOWN, CRIT, WARN}, CRIT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Worst(tt.states...); got != tt.want {
				t.Errorf("Worst(%v) = %v, want %v", tt.states, got, tt.want)
			}
		})
	}
}

func TestWorstOf(t *testing.T) {
	results := []Result{
		{State: OK, Summary: "a"},
		{State: WARN, Summary: "b"},
	}
	if got := WorstOf(results); got != WARN {
		t.Fatalf("WorstOf = %v, want WARN", got)
	}
}

func TestStateString(t *testing.T) {
	if CRIT.String() != "CRIT" {
		t.Errorf("CRIT.String() = %q", CRIT.String())
	}
	if State(9).String() != "State(9)" {
		t.Errorf("State(9).String() = %q", State(9).String())
	}
}
