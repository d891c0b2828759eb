// Package observability provides logger construction and formatted output
// utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-match/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
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

// PrintVacancy outputs a human-readable summary of the vacancy being ranked.
func (p *Printer) PrintVacancy(v *types.Vacancy) {
	if v == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", v.Title))
	sb.WriteString(fmt.Sprintf("Location: %s\n", v.Location))
	sb.WriteString(fmt.Sprintf("Industry: %s\n", v.Industry))

	if len(v.RequiredSkills) > 0 {
		sb.WriteString("\nRequired Skills:\n")
		count := min(len(v.RequiredSkills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", v.RequiredSkills[i]))
		}
		if len(v.RequiredSkills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(v.RequiredSkills)-maxItemsToShow))
		}
	}

	p.printBox("Vacancy", sb.String())
}

// PrintFunnel outputs the candidate counts surviving each pipeline stage.
func (p *Printer) PrintFunnel(filtered, preScored, neuralRanked, final int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pre-filter:   %d candidates\n", filtered))
	sb.WriteString(fmt.Sprintf("Pre-score:    %d candidates\n", preScored))
	sb.WriteString(fmt.Sprintf("Neural rank:  %d candidates\n", neuralRanked))
	sb.WriteString(fmt.Sprintf("Final:        %d candidates\n", final))
	p.printBox("Funnel", sb.String())
}

// PrintRanking outputs the final scored candidates in order.
func (p *Printer) PrintRanking(results []types.FinalScoredCandidate) {
	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%2d. %s  final=%.3f\n", i+1, shortID(r.CandidateID.String()), r.FinalScore))
		sb.WriteString(fmt.Sprintf("    pre=%.3f neural=%.3f llm=%.3f\n", r.PreScore, r.NeuralRankScore, r.LLMScore))
		if r.Explanation != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", r.Explanation))
		}
	}
	if len(results) == 0 {
		sb.WriteString("No eligible candidates.\n")
	}
	p.printBox("Ranking", sb.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
