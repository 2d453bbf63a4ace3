// Package temperature evaluates a temperature reading against warn/crit
// levels and, optionally, against the rate of change over time.
package temperature

import (
	"context"
	"fmt"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/state"
	"github.com/jkaberg/vertiv-boss/internal/valuestore"
)

// Check evaluates value (in params.InputUnit) and returns the temperature
// result followed by a trend result when trend computation is configured and
// enough history exists. uniqueName keys the trend state in store.
func Check(
	ctx context.Context,
	value float64,
	params Params,
	uniqueName string,
	store valuestore.Store,
	now time.Time,
) ([]state.Result, error) {
	unit := params.outputUnit()
	celsius := ToCelsius(value, params.InputUnit)
	shown := fromCelsius(celsius, unit)

	st := state.OK
	summary := fmt.Sprintf("Temperature: %s", formatTemp(shown, unit))

	if l := params.Levels; l != nil {
		switch {
		case shown >= l.Crit:
			st = state.CRIT
		case shown >= l.Warn:
			st = state.WARN
		}
		if st != state.OK {
			summary += fmt.Sprintf(" (warn/crit at %s/%s)", formatTemp(l.Warn, unit), formatTemp(l.Crit, unit))
		}
	}
	if l := params.LevelsLower; l != nil && st == state.OK {
		switch {
		case shown < l.Crit:
			st = state.CRIT
		case shown < l.Warn:
			st = state.WARN
		}
		if st != state.OK {
			summary += fmt.Sprintf(" (warn/crit below %s/%s)", formatTemp(l.Warn, unit), formatTemp(l.Crit, unit))
		}
	}

	metric := &state.Metric{Name: "temp", Value: celsius}
	if l := params.Levels; l != nil {
		w, c := ToCelsius(l.Warn, unit), ToCelsius(l.Crit, unit)
		metric.Warn, metric.Crit = &w, &c
	}

	results := []state.Result{{State: st, Summary: summary, Metric: metric}}

	if params.Trend == nil {
		return results, nil
	}
	if store == nil {
		return nil, fmt.Errorf("trend computation for %s requires a value store", uniqueName)
	}

	trend, ok, err := computeTrend(ctx, store, uniqueName, celsius, *params.Trend, now)
	if err != nil {
		return nil, err
	}
	if ok {
		results = append(results, trendResult(trend, *params.Trend, unit))
	}
	return results, nil
}

func trendResult(perPeriodC float64, tp TrendParams, unit Unit) state.Result {
	delta := deltaFromCelsius(perPeriodC, unit)
	period := tp.period()

	st := state.OK
	summary := fmt.Sprintf("Temperature trend: %s per %d min", formatDelta(delta, unit), period)

	if l := tp.Levels; l != nil && delta > 0 {
		switch {
		case delta >= l.Crit:
			st = state.CRIT
		case delta >= l.Warn:
			st = state.WARN
		}
		if st != state.OK {
			summary += fmt.Sprintf(" (warn/crit at %s/%s per %d min)",
				formatDelta(l.Warn, unit), formatDelta(l.Crit, unit), period)
		}
	}
	if l := tp.LevelsLower; l != nil && delta < 0 {
		fall := -delta
		switch {
		case fall >= l.Crit:
			st = state.CRIT
		case fall >= l.Warn:
			st = state.WARN
		}
		if st != state.OK {
			summary += fmt.Sprintf(" (warn/crit below %s/%s per %d min)",
				formatDelta(-l.Warn, unit), formatDelta(-l.Crit, unit), period)
		}
	}

	return state.Result{State: st, Summary: summary}
}

func formatTemp(v float64, u Unit) string {
	return fmt.Sprintf("%.1f %s", v, u.Symbol())
}

func formatDelta(v float64, u Unit) string {
	return fmt.Sprintf("%+.1f %s", v, u.Symbol())
}
