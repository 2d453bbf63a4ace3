package domain

import (
	"testing"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/check"
	"github.com/jkaberg/vertiv-boss/internal/state"
)

func report(ts time.Time, temp float64, summary string, st state.State) *check.Report {
	return &check.Report{
		DeviceID:  "boss1",
		Timestamp: ts,
		State:     st,
		Services: []check.ServiceReport{
			{
				Service: check.Service{Item: "Unit Status"},
				State:   st,
				Results: []state.Result{{State: st, Summary: summary}},
			},
			{
				Service: check.Service{Item: "Return Temperature"},
				Value:   &temp,
				Results: []state.Result{{
					State:   state.OK,
					Summary: "Temperature",
					Metric:  &state.Metric{Name: "temp", Value: temp},
				}},
			},
		},
	}
}

func TestChanged(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	base := report(t0, 21.0, "UNIT ON", state.OK)

	tests := []struct {
		name string
		prev *check.Report
		cur  *check.Report
		want bool
	}{
		{"both nil", nil, nil, false},
		{"first report", nil, base, true},
		{"only timestamp", base, report(t0.Add(time.Minute), 21.0, "UNIT ON", state.OK), false},
		{"jitter", base, report(t0, 21.01, "UNIT ON", state.OK), false},
		{"temperature", base, report(t0, 21.5, "UNIT ON", state.OK), true},
		{"status text", base, report(t0, 21.0, "STAND-BY", state.OK), true},
		{"state", base, report(t0, 21.0, "ALARM ON", state.CRIT), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Changed(tt.prev, tt.cur); got != tt.want {
				t.Errorf("Changed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func withTempSummary(r *check.Report, summary string) *check.Report {
	r.Services[1].Results[0].Summary = summary
	return r
}

func TestChanged_RoundedSummary(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	prev := withTempSummary(report(t0, 22.54, "UNIT ON", state.OK), "Temperature: 22.5 °C")

	cur := withTempSummary(report(t0, 22.56, "UNIT ON", state.OK), "Temperature: 22.6 °C")
	if Changed(prev, cur) {
		t.Errorf("rounding across 0.1 °C within jitter counted as a change")
	}

	cur = withTempSummary(report(t0, 22.56, "UNIT ON", state.OK), "Temperature: 22.6 °C (warn/crit at 22.0 °C/30.0 °C)")
	if !Changed(prev, cur) {
		t.Errorf("crossed level not counted as a change")
	}

	status := report(t0, 22.54, "UNIT ON", state.OK)
	status.Services[0].Results[0].Summary = "code 11"
	other := report(t0, 22.54, "UNIT ON", state.OK)
	other.Services[0].Results[0].Summary = "code 12"
	if !Changed(status, other) {
		t.Errorf("numbers in status summaries must still count")
	}
}

func TestStale(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := report(t0, 20, "UNIT ON", state.OK)

	if Stale(r, t0.Add(time.Minute), 5*time.Minute) {
		t.Errorf("fresh report reported stale")
	}
	if !Stale(r, t0.Add(10*time.Minute), 5*time.Minute) {
		t.Errorf("old report not stale")
	}
	if !Stale(nil, t0, time.Minute) {
		t.Errorf("nil report should be stale")
	}
}
