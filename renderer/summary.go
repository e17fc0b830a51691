package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/holdings"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the summary of a consolidated table.
func SummaryMarkdown(s holdings.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio Summary")
	if s.TotalPositions == 0 {
		doc.PlainText("The portfolio is empty.")
		return doc.String()
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Value"), md.Bold(Money(s.TotalValue))},
		Rows: [][]string{
			{"Positions", fmt.Sprint(s.TotalPositions)},
			{"Invested", Money(s.TotalInvested)},
			{"Profit / Loss", SignedMoney(s.TotalProfitLoss)},
			{"Profit / Loss %", Percent(s.TotalProfitLossPct)},
		},
	})
	doc.PlainText(fmt.Sprintf("Sources: %s", strings.Join(s.Sources, ", ")))

	if len(s.TopHoldings) > 0 {
		doc.H2("Top Holdings")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
			Header:    []string{"Ticker", "Value", "P/L %", "Source"},
		}
		for _, h := range s.TopHoldings {
			table.Rows = append(table.Rows, []string{h.Ticker, Money(h.TotalValue), Percent(h.ProfitLossPct), h.Source})
		}
		doc.Table(table)
	}
	return doc.String()
}
