package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/holdings/consolidate"
)

// LoadMarkdown renders the outcome of loading the configured provider files:
// what was loaded, and which sources were skipped and why.
func LoadMarkdown(outcomes []consolidate.Outcome) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Sources\n\n")
	fmt.Fprintln(&b, "| Source | File | Holdings |")
	fmt.Fprintln(&b, "|:---|:---|---:|")
	loaded := 0
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		loaded++
		fmt.Fprintf(&b, "| %s | %s | %d |\n", o.Provider, o.File, o.Rows)
	}
	fmt.Fprintf(&b, "| **Total** | %d of %d | |\n", loaded, len(outcomes))

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "\n## Skipped Sources\n\n")
		skipped := false
		for _, o := range outcomes {
			if o.Err != nil {
				skipped = true
				fmt.Fprintf(w, "* %s: %v\n", o.Provider, o.Err)
			}
		}
		return skipped
	})
	return b.String()
}
