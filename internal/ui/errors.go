package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"conform/internal/config"
	"conform/internal/domain"
	"conform/internal/storage"
)

// maxViewerStack bounds the stack frames shown in the details pane.
const maxViewerStack = 10

// ErrorViewer displays stored failures in an interactive TUI
type ErrorViewer struct {
	config  *config.Config
	storage storage.Storage
	out     io.Writer
}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer(cfg *config.Config, st storage.Storage, out io.Writer) *ErrorViewer {
	return &ErrorViewer{
		config:  cfg,
		storage: st,
		out:     out,
	}
}

// View displays failures in an interactive TUI. Toggling "reviewed" with r
// is saved back to storage straight away.
func (ev *ErrorViewer) View(record *domain.RunRecord) error {
	if len(record.Details) == 0 {
		color.New(color.FgGreen).Fprintln(ev.out, "✓ No failures in the last run!")
		return nil
	}
	details := record.Details

	// Create the application
	app := tview.NewApplication()

	// Create list for failures (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i := range details {
		list.AddItem(listItemText(details[i], i), "", 0, nil)
	}

	// Set list colors for better visibility
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Create stats header view (shows path and outcome)
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	// Create text view for failure details (right side)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	// Create a container with right padding for the details view
	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	// Create right side layout: stats on top, details below
	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// list on left (1/3), details on right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	saveErr := ""
	updateHeader := func() {
		headerView.SetText(headerText(details, saveErr))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(details) {
			statsView.SetText(formatFailureStats(details[index]))
			detailsView.SetText(formatFailureDetails(details[index]))
		}
	}

	// Set up keyboard handlers for list
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'r', 'R':
				index := list.GetCurrentItem()
				if index >= 0 && index < len(details) {
					details[index].Reviewed = !details[index].Reviewed
					list.SetItemText(index, listItemText(details[index], index), "")
					saveErr = ""
					if err := ev.storage.Update(context.Background(), record); err != nil {
						saveErr = err.Error()
					}
					updateHeader()
					updateDetails()
				}
				return nil
			case 'q':
				app.Stop()
				return nil
			}
		}
		return event
	})

	// Set up keyboard handlers for details view
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func headerText(details []domain.ExampleFailure, saveErr string) string {
	open := 0
	for _, d := range details {
		if !d.Reviewed {
			open++
		}
	}
	text := fmt.Sprintf(" Failures (%d total, %d not reviewed) | ↑↓ navigate, [yellow]R[white] mark reviewed, → details, ← back, q to exit ", len(details), open)
	if saveErr != "" {
		text += "| [red]save failed: " + tview.Escape(saveErr) + "[white]"
	}
	return text
}

// listItemText formats one entry of the failures list.
func listItemText(failure domain.ExampleFailure, index int) string {
	name := failure.Name
	if name == "" {
		name = fmt.Sprintf("Example %d", index+1)
	}
	name = tview.Escape(name)
	mark := "[red]✗"
	if failure.Outcome == domain.OutcomeErrored {
		mark = "[fuchsia]!"
	}
	if failure.Reviewed {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", index+1, name)
	}
	return fmt.Sprintf("%s [yellow]%d.[white] %s", mark, index+1, name)
}

// formatFailureDetails formats a failure for display using tview color tags ([red], [cyan], etc.)
func formatFailureDetails(failure domain.ExampleFailure) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "[red]%s %s[white]\n\n", outcomeMark(failure.Outcome), tview.Escape(failure.Name))

	if failure.Source != "" {
		fmt.Fprintf(w, "[cyan]Source:\t%s[white]\n\n", tview.Escape(failure.Source))
	}

	if failure.Message != "" {
		fmt.Fprintf(w, "[yellow]Message:[white]\n%s\n\n", tview.Escape(failure.Message))
	}

	if failure.Expected != "" || failure.Actual != "" {
		fmt.Fprintf(w, "[green]expected:\t%s[white]\n", tview.Escape(failure.Expected))
		fmt.Fprintf(w, "[red]actual:\t%s[white]\n\n", tview.Escape(failure.Actual))
	}

	if len(failure.Stack) > 0 {
		fmt.Fprintf(w, "[yellow]Stack Trace:[white]\n")
		for i, frame := range failure.Stack {
			if i < maxViewerStack {
				fmt.Fprintf(w, "  %s\n", tview.Escape(frame))
			}
		}
		if len(failure.Stack) > maxViewerStack {
			fmt.Fprintf(w, "  [gray]... and %d more lines[white]\n", len(failure.Stack)-maxViewerStack)
		}
	}

	w.Flush()
	return builder.String()
}

// formatFailureStats formats the stats header for a failure
func formatFailureStats(failure domain.ExampleFailure) string {
	path := strings.Join(failure.Path, domain.PathSeparator)
	if path == "" {
		path = "(top level)"
	}
	status := string(failure.Outcome)
	if failure.Reviewed {
		status += ", reviewed"
	}
	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white] | [cyan]outcome:[white] %s\n", tview.Escape(path), status)
}

func outcomeMark(o domain.Outcome) string {
	if o == domain.OutcomeErrored {
		return "!"
	}
	return "✗"
}
