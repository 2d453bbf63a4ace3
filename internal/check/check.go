package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/sensors"
	"github.com/jkaberg/vertiv-boss/internal/state"
	"github.com/jkaberg/vertiv-boss/internal/temperature"
	"github.com/jkaberg/vertiv-boss/internal/valuestore"
)

var (
	// ErrUnknownItem is returned for an item that names no sensor.
	ErrUnknownItem = errors.New("unknown item")
	// ErrItemMissing is returned when the section has no value for the item.
	ErrItemMissing = errors.New("item missing from section")
)

// TemperatureFunc evaluates a temperature reading. temperature.Check is the
// production implementation.
type TemperatureFunc func(
	ctx context.Context,
	value float64,
	params temperature.Params,
	uniqueName string,
	store valuestore.Store,
	now time.Time,
) ([]state.Result, error)

// Checker evaluates BOSS items. The zero value is not usable; use NewChecker.
type Checker struct {
	Temperature TemperatureFunc
	Store       valuestore.Store
	Now         func() time.Time
}

// NewChecker returns a Checker that uses temperature.Check and the wall clock.
func NewChecker(store valuestore.Store) *Checker {
	return &Checker{
		Temperature: temperature.Check,
		Store:       store,
		Now:         time.Now,
	}
}

// Check evaluates item against section. Temperature items are delegated to
// the temperature evaluator together with params; status items map straight
// to the decoded severity and text.
func (c *Checker) Check(ctx context.Context, item string, params temperature.Params, section sensors.Section) ([]state.Result, error) {
	idx, ok := sensors.IndexByLabel(item)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, item)
	}
	if idx >= len(section) {
		return nil, fmt.Errorf("%w: %q", ErrItemMissing, item)
	}

	def := sensors.AllSensors[idx]
	value := section[idx]

	switch def.Kind {
	case sensors.KindTemperature:
		return c.Temperature(ctx, value.Temperature, params, def.Ident, c.Store, c.Now())
	case sensors.KindStatus:
		return []state.Result{{State: value.Status.State, Summary: value.Status.Text}}, nil
	default:
		return nil, fmt.Errorf("item %q: unsupported sensor kind %s", item, def.Kind)
	}
}
