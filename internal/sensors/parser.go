package sensors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrRowLength is returned when a fetched row does not carry exactly one
// value per entry in AllSensors.
var ErrRowLength = errors.New("row length does not match sensor table")

// StringTable is the raw fetch result: one row per SNMP instance, one column
// per entry in AllSensors.
type StringTable [][]string

// Parse decodes the first row of table into a Section. An empty table yields
// a nil Section and no error, meaning there is nothing to discover. Any
// decode failure aborts the whole cycle.
func Parse(table StringTable) (Section, error) {
	if len(table) == 0 {
		return nil, nil
	}

	row := table[0]
	if len(row) != len(AllSensors) {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrRowLength, len(row), len(AllSensors))
	}

	section := make(Section, 0, len(row))
	for i, raw := range row {
		v, err := AllSensors[i].Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sensor values: %w", err)
		}
		section = append(section, v)
	}
	return section, nil
}

// ValidateSection performs plausibility checks on decoded temperatures. It
// never rejects data; the returned warnings are meant for logging.
func ValidateSection(section Section) []string {
	var warnings []string
	for i, v := range section {
		if v.Kind != KindTemperature || i >= len(AllSensors) {
			continue
		}
		if v.Temperature < -40 || v.Temperature > 100 {
			warnings = append(warnings, fmt.Sprintf("%s out of reasonable range: %.1f°C", AllSensors[i].Label, v.Temperature))
		}
	}
	return warnings
}

// CompareRawVsParsed logs every raw column next to its decoded value. It is
// used by the debug mode to verify the sensor table against a live device.
func CompareRawVsParsed(table StringTable, section Section, logger *logrus.Logger) {
	if len(table) == 0 {
		logger.Warn("No rows returned by device")
		return
	}
	for i, s := range AllSensors {
		raw := "<missing>"
		if i < len(table[0]) {
			raw = table[0][i]
		}
		parsed := "<none>"
		if i < len(section) {
			parsed = section[i].String()
		}
		logger.WithFields(logrus.Fields{
			"oid":    s.FullOID(),
			"ident":  s.Ident,
			"kind":   s.Kind.String(),
			"raw":    raw,
			"parsed": parsed,
		}).Info(s.Label)
	}
	if len(table) > 1 {
		logger.WithField("extra_rows", len(table)-1).Warn("Device returned more than one instance; only the first is used")
	}
}

// ToSnakeCase turns a sensor label into an identifier usable as an MQTT
// entity id, e.g. "Return Temperature" -> "return_temperature".
func ToSnakeCase(s string) string {
	var b strings.Builder
	prevUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		default:
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
