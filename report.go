package fxpricer

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RenderSummary prints the portfolio totals of a run and how many rows or trades were dropped.
func RenderSummary(w io.Writer, report Report) {
	p := message.NewPrinter(language.English)
	s := report.Batch.Summary

	fmt.Fprintf(w, "Run %s\n", report.Batch.RunID)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Trades", "Total PV", "Total Delta", "Total Vega", "Skipped"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.Append([]string{
		p.Sprintf("%d", s.NumOfTrades),
		p.Sprintf("%.2f", s.TotalPV),
		p.Sprintf("%.2f", s.TotalDelta),
		p.Sprintf("%.2f", s.TotalVega),
		p.Sprintf("%d", len(report.Rejected)+len(report.Failed)),
	})
	table.Render()
}
