package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/holdings/dedup"
	md "github.com/nao1215/markdown"
)

// DuplicatesMarkdown renders the assets reported by more than one source.
func DuplicatesMarkdown(dups []dedup.Duplicate) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Duplicate Assets")
	if len(dups) == 0 {
		doc.PlainText("No asset is reported more than once.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Ticker", "Normalized", "Count", "Total Value", "By Source"},
	}
	for _, d := range dups {
		var by []string
		for _, sv := range d.BySource {
			by = append(by, fmt.Sprintf("%s %s", sv.Source, Money(sv.TotalValue)))
		}
		table.Rows = append(table.Rows, []string{
			d.Ticker,
			d.Normalized,
			fmt.Sprint(d.Count),
			Money(d.TotalValue),
			strings.Join(by, "; "),
		})
	}
	doc.Table(table)
	return doc.String()
}
