package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/holdings/version"
	md "github.com/nao1215/markdown"
)

// VersionsMarkdown renders the list of saved consolidations.
func VersionsMarkdown(versions []version.Version) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Saved Versions")
	if len(versions) == 0 {
		doc.PlainText("No consolidation has been saved yet.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Date", "Assets", "Total Value", "Strategy"},
	}
	for _, v := range versions {
		strategy, _ := v.Metadata["deduplication_strategy"].(string)
		table.Rows = append(table.Rows, []string{
			v.Date.String(),
			fmt.Sprint(v.TotalAssets),
			Money(v.TotalValue),
			strategy,
		})
	}
	doc.Table(table)
	return doc.String()
}
