package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// RenderExtractSummary renders one line per table and a footer with the
// totals and elapsed time, framed in a box.
func RenderExtractSummary(report *pg2duck.ExtractReport) string {
	footer := fmt.Sprintf("%d extracted, %d skipped in %s",
		pg2duck.CountStatus(report.Tables, pg2duck.TableDone),
		pg2duck.CountStatus(report.Tables, pg2duck.TableSkipped),
		report.Duration.Round(time.Millisecond))
	return renderSummary("Extraction", report.Tables, footer)
}

// RenderLoadSummary renders one line per table and the totals.
func RenderLoadSummary(report *pg2duck.LoadReport) string {
	footer := fmt.Sprintf("%d loaded, %d skipped",
		pg2duck.CountStatus(report.Tables, pg2duck.TableDone),
		pg2duck.CountStatus(report.Tables, pg2duck.TableSkipped))
	return renderSummary("Load", report.Tables, footer)
}

func renderSummary(title string, outcomes []pg2duck.TableOutcome, footer string) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	for _, o := range outcomes {
		b.WriteString(outcomeLine(o))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render(footer))
	return BoxStyle.Render(b.String())
}

func outcomeLine(o pg2duck.TableOutcome) string {
	if o.Status == pg2duck.TableDone {
		line := SymbolCheck + " " + o.Table.String()
		if o.Columns > 0 {
			line += fmt.Sprintf(" (%d columns)", o.Columns)
		}
		return SuccessStyle.Render(line)
	}
	line := SymbolCross + " " + o.Table.String() + " skipped"
	if o.Err != nil {
		line += ": " + firstLine(o.Err.Error())
	}
	return WarningStyle.Render(line)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
