package sensors

import (
	"fmt"
	"strconv"
	"strings"
)

// BaseOID is the CAREL/Vertiv BOSS subtree every sensor column lives under.
const BaseOID = ".1.3.6.1.4.1.476.1.42.4.3.32"

// Kind tags how a sensor's raw value is decoded and evaluated.
type Kind int

const (
	// KindStatus values are unit status codes mapped through UnitStatuses.
	KindStatus Kind = iota
	// KindTemperature values are plain numeric readings in degrees Celsius.
	KindTemperature
)

func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindTemperature:
		return "temperature"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// SensorDefinition describes one polled column of the BOSS table.
type SensorDefinition struct {
	OID   string // suffix below BaseOID
	Ident string // stable identifier, also used as value store key
	Label string // human readable name, becomes the service item
	Kind  Kind

	decode func(raw string) (Value, error)
}

// FullOID returns the absolute column OID.
func (d SensorDefinition) FullOID() string {
	return BaseOID + "." + d.OID
}

// Decode converts a raw SNMP string into a typed Value.
func (d SensorDefinition) Decode(raw string) (Value, error) {
	v, err := d.decode(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", d.Ident, err)
	}
	return v, nil
}

// AllSensors is the positional sensor table. The order defines both the SNMP
// fetch columns and the layout of a parsed Section.
var AllSensors = []SensorDefinition{
	{OID: "384", Ident: "unit_status", Label: "Unit Status", Kind: KindStatus, decode: decodeStatus},
	{OID: "544", Ident: "temp_ret", Label: "Return Temperature", Kind: KindTemperature, decode: decodeTemperature},
	{OID: "551", Ident: "temp_sup", Label: "Supply Temperature", Kind: KindTemperature, decode: decodeTemperature},
}

// Value is one decoded sensor reading. Exactly one of Status or Temperature
// is meaningful, as selected by Kind.
type Value struct {
	Kind        Kind
	Status      UnitStatus
	Temperature float64
}

func (v Value) String() string {
	if v.Kind == KindStatus {
		return fmt.Sprintf("%d (%s)", v.Status.Code, v.Status.Text)
	}
	return strconv.FormatFloat(v.Temperature, 'f', -1, 64)
}

// Section is the decoded result of one polling cycle, one Value per entry in
// AllSensors.
type Section []Value

func decodeStatus(raw string) (Value, error) {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Value{}, fmt.Errorf("invalid status code %q: %w", raw, err)
	}
	st, err := LookupUnitStatus(code)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindStatus, Status: st}, nil
}

func decodeTemperature(raw string) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid temperature %q: %w", raw, err)
	}
	return Value{Kind: KindTemperature, Temperature: f}, nil
}
