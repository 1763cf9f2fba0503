// Package observability provides formatted output for CLI commands.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jonathan/services-gateway/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxErrorsToShow is the number of errors listed per document
	maxErrorsToShow = 5
)

// Printer handles formatted output for CLI commands
type Printer struct {
	out  io.Writer
	ok   *color.Color
	fail *color.Color
	warn *color.Color
}

// NewPrinter creates a new Printer that writes to the given writer. Colors
// follow the color package's terminal detection.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:  out,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
	}
}

// NoColor disables colored output regardless of the terminal.
func (p *Printer) NoColor() *Printer {
	p.ok.DisableColor()
	p.fail.DisableColor()
	p.warn.DisableColor()
	return p
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintValidationReport outputs a summary box followed by one line per
// document that did not pass. With verbose set, passing documents are listed
// as well.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidationReport(report *validation.Report, verbose bool) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Store:      %s\n", report.Store))
	if report.Schema != "" {
		sb.WriteString(fmt.Sprintf("Schema:     %s\n", report.Schema))
	}
	sb.WriteString(fmt.Sprintf("Documents:  %d\n", len(report.Results)))
	sb.WriteString(fmt.Sprintf("OK:         %d\n", report.Count(validation.StatusOK)))
	sb.WriteString(fmt.Sprintf("Malformed:  %d\n", report.Count(validation.StatusMalformed)))
	if report.Schema != "" {
		sb.WriteString(fmt.Sprintf("Violations: %d\n", report.Count(validation.StatusSchemaViolation)))
	}
	p.printBox("STORE VALIDATION", strings.TrimSuffix(sb.String(), "\n"))

	for _, result := range report.Results {
		if result.Status == validation.StatusOK {
			if verbose {
				fmt.Fprintf(p.out, "%s %s\n", p.ok.Sprint("✓"), result.Path)
			}
			continue
		}

		mark := p.fail.Sprint("✗")
		if result.Status == validation.StatusSchemaViolation {
			mark = p.warn.Sprint("!")
		}
		fmt.Fprintf(p.out, "%s %s (%s)\n", mark, result.Path, result.Status)

		count := min(len(result.Errors), maxErrorsToShow)
		for _, msg := range result.Errors[:count] {
			fmt.Fprintf(p.out, "    %s\n", msg)
		}
		if len(result.Errors) > maxErrorsToShow {
			fmt.Fprintf(p.out, "    ... and %d more\n", len(result.Errors)-maxErrorsToShow)
		}
	}

	if report.OK() {
		fmt.Fprintln(p.out, p.ok.Sprint("All documents valid"))
	} else {
		fmt.Fprintln(p.out, p.fail.Sprintf("%d of %d documents failed", report.Failed(), len(report.Results)))
	}
}
