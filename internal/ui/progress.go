package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"conform/internal/domain"
)

// ProgressBar shows run progress on a terminal. It implements the
// execution observer interface.
type ProgressBar struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

// NewProgressBar creates a progress bar drawing to out
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out}
}

// ProgressWanted reports whether the bar should be drawn: it was requested
// and stderr is a terminal.
func ProgressWanted(requested bool) bool {
	return requested && term.IsTerminal(int(os.Stderr.Fd()))
}

// Start creates the bar for total examples
func (p *ProgressBar) Start(total int) {
	out := p.out
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(describe(domain.Counts{})),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Done updates the bar with the running counts
func (p *ProgressBar) Done(_ *domain.Result, counts domain.Counts) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Set(counts.Total())
	p.bar.Describe(describe(counts))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

func describe(c domain.Counts) string {
	return color.CyanString("Running examples: ") +
		color.GreenString("[passed: %d", c.Passed) +
		" | " +
		color.RedString("failed: %d", c.Failed) +
		" | " +
		color.MagentaString("errored: %d]", c.Errored)
}
