package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jkaberg/vertiv-boss/internal/check"
	"github.com/jkaberg/vertiv-boss/internal/sensors"
	"github.com/jkaberg/vertiv-boss/internal/state"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func sampleReport() *check.Report {
	return &check.Report{
		DeviceID:  "boss1",
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		State:     state.WARN,
		Services: []check.ServiceReport{
			{
				Service: check.Service{Item: "Unit Status"},
				Kind:    sensors.KindStatus,
				State:   state.WARN,
				Results: []state.Result{{State: state.WARN, Summary: "WARNING ON"}},
			},
			{
				Service: check.Service{Item: "Return Temperature"},
				Kind:    sensors.KindTemperature,
				State:   state.OK,
				Results: []state.Result{{State: state.OK, Summary: "Temperature: 23.4 °C"}},
			},
		},
	}
}

func TestLines(t *testing.T) {
	lines := Lines(sampleReport())
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	want := []string{
		"WARN   BOSS Unit Status         WARNING ON",
		"OK     BOSS Return Temperature  Temperature: 23.4 °C",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestLines_Nil(t *testing.T) {
	if lines := Lines(nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, sampleReport()); err != nil {
		t.Fatalf("Print() err=%v", err)
	}
	out := buf.String()
	for _, want := range []string{"boss1", "2024-03-01 12:00:00", "WARN", "BOSS Return Temperature"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
