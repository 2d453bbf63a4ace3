package check

import (
	"context"
	"strings"
	"time"

	"github.com/jkaberg/vertiv-boss/internal/sensors"
	"github.com/jkaberg/vertiv-boss/internal/state"
	"github.com/jkaberg/vertiv-boss/internal/temperature"
)

// AgentItem names the pseudo service that carries fetch/parse failures.
const AgentItem = "Agent"

// ServiceReport is the outcome of checking one service.
type ServiceReport struct {
	Service Service        `json:"service"`
	Kind    sensors.Kind   `json:"kind"`
	Value   *float64       `json:"value,omitempty"` // temperature items only, in °C
	State   state.State    `json:"state"`
	Results []state.Result `json:"results"`
}

// Summary joins the result texts the way they are shown to users.
func (r ServiceReport) Summary() string {
	parts := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		parts = append(parts, res.Summary)
	}
	return strings.Join(parts, ", ")
}

// Report is the full outcome of one polling cycle for one device.
type Report struct {
	DeviceID  string          `json:"device_id"`
	Timestamp time.Time       `json:"timestamp"`
	State     state.State     `json:"state"`
	Services  []ServiceReport `json:"services"`
}

// Run discovers services in section and checks every one of them. A failing
// item becomes an UNKNOWN result instead of aborting the report.
func (c *Checker) Run(ctx context.Context, deviceID string, params temperature.Params, section sensors.Section) *Report {
	report := &Report{DeviceID: deviceID, Timestamp: c.Now()}

	for _, svc := range Discover(section) {
		sr := ServiceReport{Service: svc}
		if idx, ok := sensors.IndexByLabel(svc.Item); ok {
			sr.Kind = sensors.AllSensors[idx].Kind
			if sr.Kind == sensors.KindTemperature && idx < len(section) {
				v := temperature.ToCelsius(section[idx].Temperature, params.InputUnit)
				sr.Value = &v
			}
		}

		results, err := c.Check(ctx, svc.Item, params, section)
		if err != nil {
			results = []state.Result{{State: state.UNKNOWN, Summary: err.Error()}}
		}
		sr.Results = results
		sr.State = state.WorstOf(results)
		report.Services = append(report.Services, sr)
	}

	report.State = report.worst()
	return report
}

// FailedReport builds a report for a cycle whose fetch or parse failed.
func FailedReport(deviceID string, at time.Time, err error) *Report {
	return &Report{
		DeviceID:  deviceID,
		Timestamp: at,
		State:     state.UNKNOWN,
		Services: []ServiceReport{{
			Service: Service{Item: AgentItem},
			State:   state.UNKNOWN,
			Results: []state.Result{{State: state.UNKNOWN, Summary: err.Error()}},
		}},
	}
}

func (r *Report) worst() state.State {
	worst := state.OK
	for _, s := range r.Services {
		worst = state.Worst(worst, s.State)
	}
	return worst
}
