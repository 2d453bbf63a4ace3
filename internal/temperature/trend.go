package temperature

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/valuestore"
)

// trendState is persisted in the value store between cycles.
type trendState struct {
	Time    time.Time `json:"time"`
	Value   float64   `json:"value"` // °C
	Rate    float64   `json:"rate"`  // averaged °C per minute
	HasRate bool      `json:"has_rate"`
}

// computeTrend updates the averaged rate for key and returns the change per
// trend period in °C. ok is false while there is no usable history: on the
// first sample and after the clock moved backwards.
func computeTrend(
	ctx context.Context,
	store valuestore.Store,
	key string,
	celsius float64,
	tp TrendParams,
	now time.Time,
) (perPeriod float64, ok bool, err error) {
	storeKey := key + ".trend"

	var prev trendState
	raw, found, err := store.Get(ctx, storeKey)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load trend state for %s: %w", key, err)
	}
	if found {
		if err := json.Unmarshal(raw, &prev); err != nil {
			// Corrupt state is discarded and rebuilt from this sample.
			found = false
		}
	}

	next := trendState{Time: now, Value: celsius}
	elapsed := now.Sub(prev.Time).Minutes()

	if found && elapsed > 0 {
		rate := (celsius - prev.Value) / elapsed
		period := float64(tp.period())

		next.HasRate = true
		next.Rate = rate
		if prev.HasRate {
			weight := elapsed / period
			if weight > 1 {
				weight = 1
			}
			next.Rate = prev.Rate + (rate-prev.Rate)*weight
		}
		perPeriod = next.Rate * period
		ok = true
	}

	data, err := json.Marshal(next)
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode trend state for %s: %w", key, err)
	}
	if err := store.Set(ctx, storeKey, data); err != nil {
		return 0, false, fmt.Errorf("failed to save trend state for %s: %w", key, err)
	}
	return perPeriod, ok, nil
}
