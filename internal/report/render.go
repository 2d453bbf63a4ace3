// Package report renders check reports for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jkaberg/vertiv-boss/internal/check"
	"github.com/jkaberg/vertiv-boss/internal/state"
)

var (
	stateColors = map[state.State]lipgloss.Color{
		state.OK:      lipgloss.Color("42"),
		state.WARN:    lipgloss.Color("214"),
		state.CRIT:    lipgloss.Color("196"),
		state.UNKNOWN: lipgloss.Color("245"),
	}
	serviceStyle = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// stateLabelWidth fits the longest state name.
const stateLabelWidth = 7

func stateStyle(s state.State) lipgloss.Style {
	color, ok := stateColors[s]
	if !ok {
		color = stateColors[state.UNKNOWN]
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Width(stateLabelWidth)
}

// Lines renders one line per service: "STATE  BOSS <item>  <summary>".
func Lines(r *check.Report) []string {
	if r == nil {
		return nil
	}

	nameWidth := 0
	for _, sr := range r.Services {
		if w := lipgloss.Width(sr.Service.Name()); w > nameWidth {
			nameWidth = w
		}
	}

	lines := make([]string, 0, len(r.Services))
	for _, sr := range r.Services {
		name := serviceStyle.Width(nameWidth).Render(sr.Service.Name())
		lines = append(lines, stateStyle(sr.State).Render(sr.State.String())+name+"  "+sr.Summary())
	}
	return lines
}

// Render returns the report with a header naming the device and the overall
// state.
func Render(r *check.Report) string {
	if r == nil {
		return ""
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %s", r.DeviceID, r.Timestamp.Format("2006-01-02 15:04:05")))
	overall := stateStyle(r.State).UnsetWidth().Render(r.State.String())

	return lipgloss.JoinVertical(lipgloss.Left,
		header+"  "+overall,
		strings.Join(Lines(r), "\n"),
	)
}

// Print writes the rendered report to w.
func Print(w io.Writer, r *check.Report) error {
	_, err := fmt.Fprintln(w, Render(r))
	return err
}
