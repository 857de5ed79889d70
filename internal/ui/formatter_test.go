package ui

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conform/internal/config"
	"conform/internal/domain"
)

func init() {
	color.NoColor = true
}

func sampleReport() *domain.Report {
	path := []string{"Grammar", "Numbers"}
	pass := &domain.Result{Path: path, Name: "division by zero is Infinity", Outcome: domain.OutcomePassed, Duration: 1500 * time.Microsecond}
	fail := &domain.Result{
		Path:     path,
		Name:     "bad",
		Outcome:  domain.OutcomeFailed,
		Message:  "expected 2 to equal 1",
		Expected: "1",
		Actual:   "2",
		Duration: 2 * time.Millisecond,
	}
	errd := &domain.Result{
		Path:    path,
		Name:    "throws",
		Outcome: domain.OutcomeErrored,
		Message: "TypeError: f is not a function",
		Stack: []string{
			"at a (x.js:1:1(3))",
			"at b (x.js:2:1(3))",
			"at c (x.js:3:1(3))",
			"at d (x.js:4:1(3))",
			"at e (x.js:5:1(3))",
		},
	}

	numbers := &domain.GroupReport{
		Name:     "Numbers",
		Path:     path,
		Declared: 3,
		Children: []domain.ReportNode{{Result: pass}, {Result: fail}, {Result: errd}},
	}
	grammar := &domain.GroupReport{
		Name:     "Grammar",
		Path:     []string{"Grammar"},
		Declared: 3,
		Children: []domain.ReportNode{
			{Group: numbers},
			{Group: &domain.GroupReport{Name: "Empty", Path: []string{"Grammar", "Empty"}}},
		},
	}
	return &domain.Report{
		Root:    &domain.GroupReport{Children: []domain.ReportNode{{Group: grammar}}},
		Results: []*domain.Result{pass, fail, errd},
		Counts:  domain.Counts{Passed: 1, Failed: 1, Errored: 1},
		Elapsed: 12 * time.Millisecond,
		Bailed:  true,
	}
}

func TestPrintReport_Golden(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(config.New(), &buf).PrintReport(sampleReport())

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report", buf.Bytes())
}

func TestPrintReport_EmptySelection(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(config.New(), &buf).PrintReport(&domain.Report{Root: &domain.GroupReport{}})

	assert.Equal(t, "\n0 examples: 0 passed, 0 failed, 0 errored (0s)\n", buf.String())
}

func TestPrintJSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(config.New(), &buf).PrintJSONLines(sampleReport()))

	var lines []map[string]interface{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		lines = append(lines, m)
	}
	require.Len(t, lines, 3)

	assert.Equal(t, "division by zero is Infinity", lines[0]["name"])
	assert.Equal(t, "passed", lines[0]["outcome"])
	assert.Equal(t, 1.5, lines[0]["duration_ms"])
	assert.NotContains(t, lines[0], "message")
	assert.Equal(t, []interface{}{"Grammar", "Numbers"}, lines[0]["path"])

	assert.Equal(t, "failed", lines[1]["outcome"])
	assert.Equal(t, "1", lines[1]["expected"])
	assert.Equal(t, "2", lines[1]["actual"])

	assert.Equal(t, "errored", lines[2]["outcome"])
	assert.Equal(t, "TypeError: f is not a function", lines[2]["message"])
}

func TestPrintTree(t *testing.T) {
	root := &domain.Group{}
	a := root.AddGroup("A")
	a.AddExample(&domain.Example{Name: "a1"})
	a.AddGroup("B").AddExample(&domain.Example{Name: "b1"})
	a.AddGroup("C")

	var buf bytes.Buffer
	failed := map[string]struct{}{"A › B › b1": {}}
	NewFormatter(config.New(), &buf).PrintTree(root, 1, failed)

	want := strings.Join([]string{
		"Found 2 example(s) in 1 source(s):",
		"└── A",
		"    ├── a1",
		"    ├── B",
		"    │   └── b1 [F]",
		"    └── C",
		"        └── (no examples)",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestPrintMetaStats(t *testing.T) {
	record := &domain.RunRecord{Meta: domain.RunMeta{
		RunID:           "run-1",
		Total:           3,
		Passed:          1,
		Failed:          1,
		Errored:         1,
		Aborted:         true,
		DurationSeconds: 0.25,
		Timestamp:       "2026-01-02T03:04:05.000000000Z",
	}}

	var buf bytes.Buffer
	NewFormatter(config.New(), &buf).PrintMetaStats(record)
	out := buf.String()

	assert.Contains(t, out, "│ Run             │ run-1")
	assert.Contains(t, out, "│ Duration        │ 0.25s")
	assert.Contains(t, out, "✗ 2 example(s) did not pass")
	assert.Contains(t, out, "(run was interrupted)")
	assert.NotContains(t, out, "first failure")
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{1234567 * time.Nanosecond, "1ms"},
		{1500 * time.Nanosecond, "2µs"},
		{1234 * time.Millisecond, "1.23s"},
		{0, "0s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatElapsed(tt.in), tt.in.String())
	}
}
