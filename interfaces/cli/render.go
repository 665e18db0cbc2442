package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/felixgeelhaar/goap/domain/planning"
)

// Renderer writes a plan.
type Renderer interface {
	Render(w io.Writer, plan *planning.Plan) error
}

// JSONRenderer writes the plan document as indented JSON.
type JSONRenderer struct{}

// Render implements Renderer.
func (JSONRenderer) Render(w io.Writer, plan *planning.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(planning.NewDocument(plan))
}

// TextRenderer writes a table with one row for the initial state and one
// per step. Each property cell shows the value and, when it changed, the
// signed delta applied by the step.
type TextRenderer struct {
	// Color enables terminal styling.
	Color bool
}

// NewTextRenderer styles output when w is a terminal and color is allowed.
func NewTextRenderer(w io.Writer, noColor bool) TextRenderer {
	return TextRenderer{Color: !noColor && isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render implements Renderer.
func (r TextRenderer) Render(w io.Writer, plan *planning.Plan) error {
	header, title, row, muted := identity, identity, identity, identity
	if r.Color {
		lg := lipgloss.NewRenderer(w)
		header = lg.NewStyle().Bold(true).Underline(true).Render
		title = lg.NewStyle().Bold(true).Foreground(lipgloss.Color("#20B9B4")).Render
		row = lg.NewStyle().Foreground(lipgloss.Color("#2CD7C7")).Render
		muted = lg.NewStyle().Foreground(lipgloss.Color("#5C7A84")).Render
	}

	status := "complete"
	if !plan.Complete {
		status = "partial"
	}
	fmt.Fprintln(w, title(fmt.Sprintf("%s/%s plan: %d steps, discontentment %s, time %s (%s)",
		plan.Algorithm, plan.Mode, plan.Len(),
		formatNumber(plan.Discontentment()), formatNumber(plan.Duration()), status)))

	properties := planProperties(plan)

	var table bytes.Buffer
	tw := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(slices.Concat([]string{"step"}, properties, []string{"action", "discontentment", "time"}), "\t"))

	cells := make([]string, 0, len(properties)+4)
	cells = append(cells, "init")
	for _, p := range properties {
		cells = append(cells, formatNumber(plan.Initial.Get(p)))
	}
	cells = append(cells, "-", formatNumber(plan.InitialDiscontentment), "0")
	fmt.Fprintln(tw, strings.Join(cells, "\t"))

	prev := plan.Initial
	for i, step := range plan.Steps {
		cells = cells[:0]
		cells = append(cells, strconv.Itoa(i+1))
		for _, p := range properties {
			cells = append(cells, formatCell(step.State.Get(p), step.State.Get(p)-prev.Get(p)))
		}
		cells = append(cells, step.Action, formatNumber(step.Discontentment), formatNumber(step.Duration))
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
		prev = step.State
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	lines := strings.Split(strings.TrimRight(table.String(), "\n"), "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			line = header(line)
		case i == 1:
			line = muted(line)
		default:
			line = row(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func identity(s ...string) string { return strings.Join(s, " ") }

// planProperties returns every property named in the plan, sorted.
func planProperties(plan *planning.Plan) []string {
	set := make(map[string]struct{})
	for _, k := range plan.Initial.Keys() {
		set[k] = struct{}{}
	}
	for _, s := range plan.Steps {
		for _, k := range s.State.Keys() {
			set[k] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// formatCell rounds delta to hide float subtraction noise.
func formatCell(value, delta float64) string {
	delta = math.Round(delta*1e9) / 1e9
	if delta == 0 {
		return formatNumber(value)
	}
	return fmt.Sprintf("%s (%+g)", formatNumber(value), delta)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
