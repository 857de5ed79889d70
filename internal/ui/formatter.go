package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"conform/internal/config"
	"conform/internal/domain"
)

// maxStackLines bounds the stack frames printed under an errored example.
const maxStackLines = 3

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer

	header *color.Color
	pass   *color.Color
	fail   *color.Color
	errd   *color.Color
	faint  *color.Color
	file   *color.Color
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{
		config: cfg,
		out:    out,
		header: color.New(color.FgCyan, color.Bold),
		pass:   color.New(color.FgGreen),
		fail:   color.New(color.FgRed),
		errd:   color.New(color.FgMagenta),
		faint:  color.New(color.FgHiBlack),
		file:   color.New(color.FgYellow),
	}
}

// PrintReport writes the text report: groups indented by depth, one line
// per example, failure details under it and a summary line last.
func (f *Formatter) PrintReport(report *domain.Report) {
	if report.Root != nil {
		f.printGroupChildren(report.Root, 0)
	}
	fmt.Fprintln(f.out)
	f.printSummary(report)
}

func (f *Formatter) printGroupChildren(g *domain.GroupReport, depth int) {
	for _, child := range g.Children {
		switch {
		case child.Group != nil:
			f.printGroup(child.Group, depth)
		case child.Result != nil:
			f.printResult(child.Result, depth)
		}
	}
}

func (f *Formatter) printGroup(g *domain.GroupReport, depth int) {
	indent := strings.Repeat("  ", depth)
	f.header.Fprintf(f.out, "%s%s\n", indent, g.Name)
	if len(g.Children) == 0 {
		f.faint.Fprintf(f.out, "%s  (no examples)\n", indent)
		return
	}
	f.printGroupChildren(g, depth+1)
}

func (f *Formatter) printResult(r *domain.Result, depth int) {
	indent := strings.Repeat("  ", depth)
	switch r.Outcome {
	case domain.OutcomePassed:
		f.pass.Fprintf(f.out, "%s✓ ", indent)
		fmt.Fprintln(f.out, r.Name)
		return
	case domain.OutcomeFailed:
		f.fail.Fprintf(f.out, "%s✗ %s\n", indent, r.Name)
	default:
		f.errd.Fprintf(f.out, "%s! %s\n", indent, r.Name)
	}

	detail := indent + "    "
	for _, line := range strings.Split(r.Message, "\n") {
		fmt.Fprintf(f.out, "%s%s\n", detail, line)
	}
	if r.Expected != "" || r.Actual != "" {
		f.pass.Fprintf(f.out, "%sexpected: %s\n", detail, r.Expected)
		f.fail.Fprintf(f.out, "%sactual:   %s\n", detail, r.Actual)
	}
	for i, frame := range r.Stack {
		if i == maxStackLines {
			f.faint.Fprintf(f.out, "%s... %d more\n", detail, len(r.Stack)-maxStackLines)
			break
		}
		f.faint.Fprintf(f.out, "%s%s\n", detail, frame)
	}
}

func (f *Formatter) printSummary(report *domain.Report) {
	c := report.Counts
	line := fmt.Sprintf("%d examples: %d passed, %d failed, %d errored (%s)",
		c.Total(), c.Passed, c.Failed, c.Errored, FormatElapsed(report.Elapsed))
	if report.Bailed {
		line += " [bailed]"
	}
	if report.Aborted {
		line += " [aborted]"
	}
	if report.OK() {
		f.pass.Fprintln(f.out, line)
	} else {
		f.fail.Fprintln(f.out, line)
	}
}

// FormatElapsed rounds d for display.
func FormatElapsed(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(time.Microsecond).String()
	}
}

// jsonLine is one record of the JSON-lines output.
type jsonLine struct {
	Path       []string       `json:"path"`
	Name       string         `json:"name"`
	Outcome    domain.Outcome `json:"outcome"`
	Message    string         `json:"message,omitempty"`
	Expected   string         `json:"expected,omitempty"`
	Actual     string         `json:"actual,omitempty"`
	DurationMS float64        `json:"duration_ms"`
}

// PrintJSONLines writes one JSON object per executed example.
func (f *Formatter) PrintJSONLines(report *domain.Report) error {
	enc := json.NewEncoder(f.out)
	enc.SetEscapeHTML(false)
	for _, r := range report.Results {
		path := r.Path
		if path == nil {
			path = []string{}
		}
		line := jsonLine{
			Path:       path,
			Name:       r.Name,
			Outcome:    r.Outcome,
			Message:    r.Message,
			Expected:   r.Expected,
			Actual:     r.Actual,
			DurationMS: float64(r.Duration.Microseconds()) / 1000,
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	return nil
}

// PrintMetaStats displays the summary of a stored run.
func (f *Formatter) PrintMetaStats(record *domain.RunRecord) {
	meta := record.Meta

	// Print header
	fmt.Fprint(f.out, "\n")
	f.header.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	f.header.Fprintln(f.out, "║                   Conformance Run Statistics                  ║")
	f.header.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Run", meta.RunID, nil},
		{"Examples", fmt.Sprint(meta.Total), nil},
		{"Passed", fmt.Sprint(meta.Passed), f.pass},
		{"Failed", fmt.Sprint(meta.Failed), f.fail},
		{"Errored", fmt.Sprint(meta.Errored), f.errd},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), nil},
		{"Timestamp", meta.Timestamp, nil},
	}

	// Print table
	fmt.Fprintln(f.out, "┌─────────────────┬─────────────────────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-15s │ ", row.label)
		cell := fmt.Sprintf("%-43s │\n", row.value)
		if row.c != nil {
			row.c.Fprint(f.out, cell)
		} else {
			fmt.Fprint(f.out, cell)
		}
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────┼─────────────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────┴─────────────────────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(f.out)
	notPassed := meta.Failed + meta.Errored
	switch {
	case notPassed == 0:
		f.pass.Fprintln(f.out, "✓ All examples passed!")
	default:
		f.fail.Fprintf(f.out, "✗ %d example(s) did not pass\n", notPassed)
	}
	if meta.Bailed {
		f.faint.Fprintln(f.out, "  (run stopped after the first failure)")
	}
	if meta.Aborted {
		f.faint.Fprintln(f.out, "  (run was interrupted)")
	}
}

// PrintTree prints the registered group tree. failed is optional; examples
// whose key is in it are marked with [F] (from the last run).
func (f *Formatter) PrintTree(root *domain.Group, sources int, failed map[string]struct{}) {
	f.pass.Fprintf(f.out, "Found %d example(s) in %d source(s):\n", root.CountExamples(), sources)
	f.printTreeNode(root, nil, "", failed)
}

func (f *Formatter) printTreeNode(g *domain.Group, path []string, prefix string, failed map[string]struct{}) {
	for i, child := range g.Children {
		isLast := i == len(g.Children)-1

		connector, childPrefix := "├── ", prefix+"│   "
		if isLast {
			connector, childPrefix = "└── ", prefix+"    "
		}

		if child.Group != nil {
			f.header.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Group.Name)
			if len(child.Group.Children) == 0 {
				f.faint.Fprintf(f.out, "%s└── (no examples)\n", childPrefix)
				continue
			}
			next := make([]string, 0, len(path)+1)
			next = append(next, path...)
			f.printTreeNode(child.Group, append(next, child.Group.Name), childPrefix, failed)
			continue
		}

		failMarker := ""
		if len(failed) > 0 {
			key := strings.Join(append(append([]string{}, path...), child.Example.Name), domain.PathSeparator)
			if _, ok := failed[key]; ok {
				failMarker = " " + f.fail.Sprint("[F]")
			}
		}
		fmt.Fprintf(f.out, "%s%s%s%s\n", prefix, connector, f.file.Sprint(child.Example.Name), failMarker)
	}
}
