package sensors

import (
	"errors"
	"fmt"

	"github.com/jkaberg/vertiv-boss/internal/state"
)

// ErrUnknownStatus is returned for a unit status code outside UnitStatuses.
var ErrUnknownStatus = errors.New("unknown unit status code")

// UnitStatus is a decoded BOSS unit status code.
type UnitStatus struct {
	Code  int
	State state.State
	Text  string
}

// UnitStatuses maps every documented BOSS unit status code to its severity
// and display text. The set is closed.
var UnitStatuses = map[int]UnitStatus{
	0:  {Code: 0, State: state.OK, Text: "DISPLAY OFF"},
	1:  {Code: 1, State: state.OK, Text: "REMOTE OFF"},
	2:  {Code: 2, State: state.OK, Text: "3POS OFF"},
	3:  {Code: 3, State: state.OK, Text: "MONIT OFF"},
	4:  {Code: 4, State: state.OK, Text: "TIMER OFF"},
	5:  {Code: 5, State: state.OK, Text: "ALARM OFF"},
	6:  {Code: 6, State: state.OK, Text: "SHUTDOWN DEL"},
	7:  {Code: 7, State: state.OK, Text: "STAND-BY"},
	8:  {Code: 8, State: state.OK, Text: "TR STBY"},
	9:  {Code: 9, State: state.OK, Text: "ALARM STBY"},
	10: {Code: 10, State: state.OK, Text: "FANBACK"},
	11: {Code: 11, State: state.OK, Text: "UNIT ON"},
	12: {Code: 12, State: state.WARN, Text: "WARNING ON"},
	13: {Code: 13, State: state.CRIT, Text: "ALARM ON"},
	14: {Code: 14, State: state.OK, Text: "DAMPER OPEN"},
	15: {Code: 15, State: state.CRIT, Text: "POWER FAIL"},
	16: {Code: 16, State: state.OK, Text: "MANUAL"},
	17: {Code: 17, State: state.OK, Text: "RESTART DELAY"},
}

// LookupUnitStatus returns the mapping for code, or ErrUnknownStatus.
func LookupUnitStatus(code int) (UnitStatus, error) {
	st, ok := UnitStatuses[code]
	if !ok {
		return UnitStatus{}, fmt.Errorf("%w: %d", ErrUnknownStatus, code)
	}
	return st, nil
}
