package domain

import (
	"math"
	"reflect"
	"regexp"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/check"
)

// TemperatureJitter is the smallest temperature change, in °C, that counts
// as a change on its own.
const TemperatureJitter = 0.05

// Changed returns true if *cur* differs from *prev* beyond tolerated jitter.
// It ignores the report Timestamp and tiny temperature noise so that an
// otherwise identical cycle doesn't trigger a transmit.
func Changed(prev, cur *check.Report) bool {
	if prev == nil && cur == nil {
		return false
	}
	if prev == nil || cur == nil {
		return true
	}

	if prev.DeviceID != cur.DeviceID || prev.State != cur.State ||
		len(prev.Services) != len(cur.Services) {
		return true
	}

	for i := range prev.Services {
		p, c := prev.Services[i], cur.Services[i]
		if p.Service != c.Service || p.State != c.State {
			return true
		}
		if valueChanged(p.Value, c.Value) {
			return true
		}
		if !sameSummaries(p, c) {
			return true
		}
	}
	return false
}

func valueChanged(a, b *float64) bool {
	if a == nil || b == nil {
		return a != b
	}
	return math.Abs(*a-*b) >= TemperatureJitter
}

// numberPattern matches the rendered numbers inside a result summary.
var numberPattern = regexp.MustCompile(`[-+]?\d+(\.\d+)?`)

// sameSummaries compares results with metric values dropped and, for
// temperature services, with the numbers masked out of the summary text. The
// values are covered by valueChanged with jitter tolerance; comparing the
// rounded text would defeat it.
func sameSummaries(a, b check.ServiceReport) bool {
	if len(a.Results) != len(b.Results) {
		return false
	}
	masked := a.Value != nil && b.Value != nil
	for i := range a.Results {
		ra, rb := a.Results[i], b.Results[i]
		ra.Metric, rb.Metric = nil, nil
		if masked {
			ra.Summary = numberPattern.ReplaceAllString(ra.Summary, "#")
			rb.Summary = numberPattern.ReplaceAllString(rb.Summary, "#")
		}
		if !reflect.DeepEqual(ra, rb) {
			return false
		}
	}
	return true
}

// Stale reports whether a report is older than maxAge at now.
func Stale(r *check.Report, now time.Time, maxAge time.Duration) bool {
	if r == nil {
		return true
	}
	return now.Sub(r.Timestamp) > maxAge
}
