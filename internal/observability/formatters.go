// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jonathan/resume-screener/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
	// notAvailable stands in for absent fields
	notAvailable = "N/A"
)

// Printer handles formatted CLI output
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

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes at most maxItemsToShow items, or placeholder when there are none.
func writeList(sb *strings.Builder, items []string, placeholder string) {
	if len(items) == 0 {
		sb.WriteString("  " + placeholder + "\n")
		return
	}
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintParsedDocument outputs the candidate profile extracted from a resume.
func (p *Printer) PrintParsedDocument(source string, doc *types.ParsedDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:       %s\n", doc.Name))
	sb.WriteString(fmt.Sprintf("Email:      %s\n", types.StringOr(doc.Email, notAvailable)))
	sb.WriteString(fmt.Sprintf("Phone:      %s\n", types.StringOr(doc.Phone, notAvailable)))
	if doc.ExperienceYears > 0 {
		sb.WriteString(fmt.Sprintf("Experience: %s years detected\n", formatYears(doc.ExperienceYears)))
	} else {
		sb.WriteString("Experience: not detected\n")
	}
	sb.WriteString("\n")

	sb.WriteString("Online Presence:\n")
	links := linkLines(doc.Links)
	writeList(&sb, links, "None found")
	sb.WriteString("\n")

	sb.WriteString("Education:\n")
	writeList(&sb, doc.Education, "None found")

	if doc.IsEmpty() {
		sb.WriteString("\n(no text could be extracted)\n")
	}

	title := "CANDIDATE PROFILE"
	if source != "" {
		title += ": " + source
	}
	p.printBox(title, sb.String())
}

// PrintMatchResult outputs a match score with its matched and missing skills.
func (p *Printer) PrintMatchResult(result *types.MatchResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match Score: %.2f%% (%s)\n", result.Score, result.Band()))
	sb.WriteString("\n")

	sb.WriteString("Matched Skills:\n")
	writeList(&sb, result.MatchedSkills, "No specific skills matched.")
	sb.WriteString("\n")

	sb.WriteString("Missing Skills:\n")
	writeList(&sb, result.MissingSkills, "No critical skills missing.")

	p.printBox("MATCH RESULT", sb.String())
}

// BatchRow is one line of a batch summary table.
type BatchRow struct {
	Source string
	Parsed *types.ParsedDocument
	Result *types.MatchResult // nil when no job description was given
}

// PrintBatch outputs a table with one row per parsed resume.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintBatch(rows []BatchRow) {
	tw := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	withScores := false
	for _, r := range rows {
		if r.Result != nil {
			withScores = true
			break
		}
	}

	header := "FILE\tNAME\tEMAIL\tYEARS"
	if withScores {
		header += "\tSCORE\tMATCHED\tMISSING"
	}
	fmt.Fprintln(tw, header)

	for _, r := range rows {
		doc := r.Parsed
		if doc == nil {
			doc = &types.ParsedDocument{Name: types.UnknownName}
		}
		years := "-"
		if doc.ExperienceYears > 0 {
			years = formatYears(doc.ExperienceYears)
		}
		line := fmt.Sprintf("%s\t%s\t%s\t%s", r.Source, doc.Name, types.StringOr(doc.Email, notAvailable), years)
		if withScores {
			if r.Result != nil {
				line += fmt.Sprintf("\t%.2f\t%d\t%d", r.Result.Score, len(r.Result.MatchedSkills), len(r.Result.MissingSkills))
			} else {
				line += "\t-\t-\t-"
			}
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
}

func linkLines(l types.Links) []string {
	var lines []string
	if l.LinkedIn != nil {
		lines = append(lines, "LinkedIn: "+*l.LinkedIn)
	}
	if l.GitHub != nil {
		lines = append(lines, "GitHub: "+*l.GitHub)
	}
	for _, u := range l.Portfolio {
		lines = append(lines, "Portfolio: "+u)
	}
	return lines
}

func formatYears(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
