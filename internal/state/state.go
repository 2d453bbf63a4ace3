package state

import "fmt"

// State is the severity of a single check result. The numeric values match
// the Nagios plugin exit codes so a State can be returned from the process
// as-is.
type State int

const (
	OK      State = 0
	WARN    State = 1
	CRIT    State = 2
	UNKNOWN State = 3
)

func (s State) String() string {
	switch s {
	case OK:
		return "OK"
	case WARN:
		return "WARN"
	case CRIT:
		return "CRIT"
	case UNKNOWN:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// severity orders states for Worst: CRIT beats UNKNOWN beats WARN beats OK.
func (s State) severity() int {
	switch s {
	case OK:
		return 0
	case WARN:
		return 1
	case UNKNOWN:
		return 2
	case CRIT:
		return 3
	default:
		return 2
	}
}

// Worst returns the most severe of the given states, OK for none.
func Worst(states ...State) State {
	worst := OK
	for _, s := range states {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	return worst
}

// Metric is a single performance value attached to a Result.
type Metric struct {
	Name  string   `json:"name"`
	Value float64  `json:"value"`
	Warn  *float64 `json:"warn,omitempty"`
	Crit  *float64 `json:"crit,omitempty"`
}

// Result is one (state, text) line produced by a check.
type Result struct {
	State   State   `json:"state"`
	Summary string  `json:"summary"`
	Metric  *Metric `json:"metric,omitempty"`
}

// WorstOf returns the most severe state among results.
func WorstOf(results []Result) State {
	worst := OK
	for _, r := range results {
		worst = Worst(worst, r.State)
	}
	return worst
}
