package temperature

import "fmt"

// Unit is a temperature unit as written in the config file.
type Unit string

const (
	Celsius    Unit = "c"
	Fahrenheit Unit = "f"
	Kelvin     Unit = "k"
)

// Symbol returns the display suffix for u.
func (u Unit) Symbol() string {
	switch u {
	case Fahrenheit:
		return "°F"
	case Kelvin:
		return "K"
	default:
		return "°C"
	}
}

func (u Unit) valid() bool {
	switch u {
	case "", Celsius, Fahrenheit, Kelvin:
		return true
	}
	return false
}

// Levels is a warn/crit pair.
type Levels struct {
	Warn float64 `yaml:"warn" json:"warn"`
	Crit float64 `yaml:"crit" json:"crit"`
}

// Params are the user supplied thresholds shared by every temperature item.
// Levels are expressed in OutputUnit; device readings in InputUnit.
type Params struct {
	Levels      *Levels      `yaml:"levels,omitempty"`
	LevelsLower *Levels      `yaml:"levels_lower,omitempty"`
	OutputUnit  Unit         `yaml:"output_unit,omitempty"`
	InputUnit   Unit         `yaml:"input_unit,omitempty"`
	Trend       *TrendParams `yaml:"trend,omitempty"`
}

// TrendParams enables trend computation. Levels are the tolerated change per
// Period, upwards (Levels) and downwards (LevelsLower).
type TrendParams struct {
	Period      int     `yaml:"period"` // minutes
	Levels      *Levels `yaml:"levels,omitempty"`
	LevelsLower *Levels `yaml:"levels_lower,omitempty"`
}

// DefaultTrendPeriod is used when TrendParams.Period is unset.
const DefaultTrendPeriod = 30

// Validate reports inconsistent parameters.
func (p Params) Validate() error {
	if !p.OutputUnit.valid() {
		return fmt.Errorf("unsupported output_unit %q (supported: c, f, k)", p.OutputUnit)
	}
	if !p.InputUnit.valid() {
		return fmt.Errorf("unsupported input_unit %q (supported: c, f, k)", p.InputUnit)
	}
	if p.Levels != nil && p.Levels.Warn > p.Levels.Crit {
		return fmt.Errorf("levels: warn %.1f above crit %.1f", p.Levels.Warn, p.Levels.Crit)
	}
	if p.LevelsLower != nil && p.LevelsLower.Warn < p.LevelsLower.Crit {
		return fmt.Errorf("levels_lower: warn %.1f below crit %.1f", p.LevelsLower.Warn, p.LevelsLower.Crit)
	}
	if p.Trend != nil && p.Trend.Period < 0 {
		return fmt.Errorf("trend: period must be >= 0")
	}
	return nil
}

func (p Params) outputUnit() Unit {
	if p.OutputUnit == "" {
		return Celsius
	}
	return p.OutputUnit
}

func (t TrendParams) period() int {
	if t.Period <= 0 {
		return DefaultTrendPeriod
	}
	return t.Period
}

// ToCelsius converts v from unit u to degrees Celsius.
func ToCelsius(v float64, u Unit) float64 {
	switch u {
	case Fahrenheit:
		return (v - 32) * 5 / 9
	case Kelvin:
		return v - 273.15
	default:
		return v
	}
}

func fromCelsius(v float64, u Unit) float64 {
	switch u {
	case Fahrenheit:
		return v*9/5 + 32
	case Kelvin:
		return v + 273.15
	default:
		return v
	}
}

// deltaFromCelsius converts a temperature difference.
func deltaFromCelsius(d float64, u Unit) float64 {
	if u == Fahrenheit {
		return d * 9 / 5
	}
	return d
}
