package sensors

import (
	"errors"
	"testing"

	"github.com/jkaberg/vertiv-boss/internal/state"
)

func TestLookupUnitStatus(t *testing.T) {
	tests := []struct {
		code  int
		state state.State
		text  string
	}{
		{0, state.OK, "DISPLAY OFF"},
		{7, state.OK, "STAND-BY"},
		{11, state.OK, "UNIT ON"},
		{12, state.WARN, "WARNING ON"},
		{13, state.CRIT, "ALARM ON"},
		{15, state.CRIT, "POWER FAIL"},
		{17, state.OK, "RESTART DELAY"},
	}

	for _, tt := range tests {
		st, err := LookupUnitStatus(tt.code)
		if err != nil {
			t.Fatalf("LookupUnitStatus(%d) err=%v", tt.code, err)
		}
		if st.State != tt.state || st.Text != tt.text || st.Code != tt.code {
			t.Errorf("LookupUnitStatus(%d) = %+v, want %v %q", tt.code, st, tt.state, tt.text)
		}
	}
}

func TestLookupUnitStatus_Unknown(t *testing.T) {
	for _, code := range []int{-1, 18, 99} {
		if _, err := LookupUnitStatus(code); !errors.Is(err, ErrUnknownStatus) {
			t.Errorf("LookupUnitStatus(%d) err=%v, want ErrUnknownStatus", code, err)
		}
	}
}

func TestUnitStatuses_Closed(t *testing.T) {
	if len(UnitStatuses) != 18 {
		t.Fatalf("expected 18 status codes, got %d", len(UnitStatuses))
	}
	for code, st := range UnitStatuses {
		if st.Code != code {
			t.Errorf("code %d carries Code %d", code, st.Code)
		}
	}
}

func TestSensorTable(t *testing.T) {
	wantLabels := []string{"Unit Status", "Return Temperature", "Supply Temperature"}
	if len(AllSensors) != len(wantLabels) {
		t.Fatalf("expected %d sensors, got %d", len(wantLabels), len(AllSensors))
	}
	for i, label := range wantLabels {
		idx, ok := IndexByLabel(label)
		if !ok || idx != i {
			t.Errorf("IndexByLabel(%q) = %d,%v, want %d", label, idx, ok, i)
		}
	}
	if _, ok := IndexByLabel("Humidity"); ok {
		t.Errorf("IndexByLabel(Humidity) should not resolve")
	}

	oids := ColumnOIDs()
	if oids[0] != ".1.3.6.1.4.1.476.1.42.4.3.32.384" {
		t.Errorf("first column oid = %s", oids[0])
	}
	if d := GetSensorByIdent("temp_sup"); d == nil || d.Label != "Supply Temperature" {
		t.Errorf("GetSensorByIdent(temp_sup) = %+v", d)
	}
	if d := GetSensorByLabel("Return Temperature"); d == nil || d.Kind != KindTemperature {
		t.Errorf("GetSensorByLabel(Return Temperature) = %+v", d)
	}
}
