package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/consolidate"
	"github.com/etnz/holdings/date"
	"github.com/etnz/holdings/dedup"
	"github.com/etnz/holdings/source"
	"github.com/etnz/holdings/version"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// contains checks that every line of want is in got.
func contains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("missing %q in:\n%s", w, got)
		}
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Money(d("1234.56")), "R$1.234,56"},
		{SignedMoney(d("50")), "+R$50,00"},
		{SignedMoney(d("0")), "R$0,00"},
		{Percent(d("25")), "+25.00%"},
		{Percent(d("-3.456")), "-3.46%"},
		{Percent(d("0.001")), "0.00%"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestRenderComparison(t *testing.T) {
	c := &version.Comparison{
		From:          "2025-06-01",
		To:            "latest",
		TotalValueOld: d("300"),
		TotalValueNew: d("300"),
		NewAssets:     []string{"Z"},
		RemovedAssets: []string{"X"},
		ValueChanges:  []version.ValueChange{{Ticker: "Y", OldValue: d("200"), NewValue: d("250"), Change: d("50"), ChangePct: d("25")}},
	}
	got := RenderComparison(c)
	if strings.HasPrefix(got, "error") {
		t.Fatalf("RenderComparison() = %s", got)
	}
	contains(t, got,
		"# Changes from 2025-06-01 to latest",
		"| Total value on 2025-06-01 | R$300,00 |",
		"## New Assets\n\n* Z\n",
		"## Removed Assets\n\n* X\n",
		"| Y | R$200,00 | R$250,00 | +R$50,00 | +25.00% |",
	)

	got = RenderComparison(&version.Comparison{From: "2025-06-01", To: "2025-07-01"})
	contains(t, got, "No value change.")
	if strings.Contains(got, "New Assets") {
		t.Errorf("RenderComparison() lists new assets for an empty comparison:\n%s", got)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	s := holdings.NewSummary(holdings.Derive([]holdings.Holding{
		{Ticker: "PETR4", Quantity: d("100"), AvgPrice: d("30"), CurrentPrice: d("33"), TotalValue: d("3300"), Source: "B3, MyProfit"},
		{Ticker: "ITSA4", Quantity: d("10"), AvgPrice: d("10"), CurrentPrice: d("9"), TotalValue: d("90"), Source: "XP"},
	}), holdings.DefaultTopHoldings)
	got := SummaryMarkdown(s)
	contains(t, got, "Portfolio Summary", "R$3.390,00", "Top Holdings", "PETR4", "+10.00%", "Sources: B3, MyProfit, XP")

	contains(t, SummaryMarkdown(holdings.Summary{}), "The portfolio is empty.")
}

func TestDuplicatesMarkdown(t *testing.T) {
	got := DuplicatesMarkdown([]dedup.Duplicate{{
		Ticker:     "Tesouro Selic 2029",
		Normalized: "TESOURO SELIC 2029",
		Sources:    []string{"Kinvo", "XP"},
		Count:      2,
		TotalValue: d("221"),
		BySource:   []dedup.SourceValue{{Source: "Kinvo", TotalValue: d("110")}, {Source: "XP", TotalValue: d("111")}},
	}})
	contains(t, got, "Tesouro Selic 2029", "TESOURO SELIC 2029", "R$221,00", "Kinvo R$110,00; XP R$111,00")
	contains(t, DuplicatesMarkdown(nil), "No asset is reported more than once.")
}

func TestVersionsMarkdown(t *testing.T) {
	got := VersionsMarkdown([]version.Version{
		{Date: date.MustParse("2025-06-01"), TotalAssets: 3, TotalValue: d("1000"), Metadata: map[string]any{"deduplication_strategy": "aggregate"}},
		{Date: date.MustParse("2025-07-01"), TotalAssets: 2, TotalValue: d("1500")},
	})
	contains(t, got, "2025-06-01", "aggregate", "R$1.000,00", "2025-07-01", "R$1.500,00")
	contains(t, VersionsMarkdown(nil), "No consolidation has been saved yet.")
}

func TestLoadMarkdown(t *testing.T) {
	outcomes := []consolidate.Outcome{
		{Provider: source.B3, File: "planilhas/b3.xlsx", Rows: 12},
		{Provider: source.XP, File: "planilhas/xp.xlsx", Err: errors.New("file not found")},
	}
	got := LoadMarkdown(outcomes)
	contains(t, got, "| B3 | planilhas/b3.xlsx | 12 |", "| **Total** | 1 of 2 | |", "## Skipped Sources", "* XP: file not found")

	got = LoadMarkdown(outcomes[:1])
	if strings.Contains(got, "Skipped") {
		t.Errorf("LoadMarkdown() has a skipped section without failure:\n%s", got)
	}
}
