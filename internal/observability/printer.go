// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/communitydesk/sheetpress/internal/notify"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDraftPreview shows what a row would publish: the segmented title and
// the opening of the body.
func (p *Printer) PrintDraftPreview(rowNumber int, title, body string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", title))

	excerpt := body
	if len([]rune(excerpt)) > 120 {
		excerpt = string([]rune(excerpt)[:117]) + "..."
	}
	if excerpt == "" {
		excerpt = "(empty body)"
	}
	sb.WriteString(fmt.Sprintf("Body:  %s", excerpt))

	p.printBox(fmt.Sprintf("ROW %d DRAFT PREVIEW", rowNumber), sb.String())
}

// PrintRowResult shows the outcome of one processed row.
func (p *Printer) PrintRowResult(rowNumber, postID int, status, note string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status:  %s\n", status))
	if postID > 0 {
		sb.WriteString(fmt.Sprintf("Post ID: %d\n", postID))
	}
	sb.WriteString(fmt.Sprintf("Note:    %s", note))
	p.printBox(fmt.Sprintf("ROW %d RESULT", rowNumber), sb.String())
}

// PrintSummary shows the end-of-run counters.
func (p *Printer) PrintSummary(summary notify.Summary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Created:      %d\n", summary.Created))
	sb.WriteString(fmt.Sprintf("Updated:      %d\n", summary.Updated))
	sb.WriteString(fmt.Sprintf("Skipped:      %d\n", summary.Skipped))
	sb.WriteString(fmt.Sprintf("Errored:      %d\n", summary.Errored))
	sb.WriteString(fmt.Sprintf("FB posted:    %d", summary.FBPosted))
	p.printBox("RUN SUMMARY", sb.String())
}
