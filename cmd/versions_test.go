package cmd

import (
	"io"
	"log/slog"
	"testing"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/date"
	"github.com/etnz/holdings/version"
	"github.com/shopspring/decimal"
)

func TestCompareDefaults(t *testing.T) {
	s, err := version.Open(t.TempDir(), version.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatal(err)
	}
	save := func(on string) {
		t.Helper()
		p := holdings.NewPosition(holdings.Holding{
			Ticker:       "PETR4",
			Quantity:     decimal.NewFromInt(1),
			AvgPrice:     decimal.NewFromInt(10),
			CurrentPrice: decimal.NewFromInt(10),
			TotalValue:   decimal.NewFromInt(10),
			Source:       "B3",
		})
		if _, err := s.SaveConsolidation([]holdings.Position{p}, date.MustParse(on), nil); err != nil {
			t.Fatal(err)
		}
	}

	save("2025-01-10")
	c := &compareCmd{}
	if err := c.defaults(s); err == nil {
		t.Errorf("defaults() with a single version: want an error")
	}

	save("2025-03-10")
	save("2025-02-10")
	c = &compareCmd{}
	if err := c.defaults(s); err != nil {
		t.Fatalf("defaults() error = %v", err)
	}
	if c.from != "2025-02-10" || c.to != "2025-03-10" {
		t.Errorf("defaults() = %s..%s, want 2025-02-10..2025-03-10", c.from, c.to)
	}

	c = &compareCmd{from: "2025-01-10"}
	if err := c.defaults(s); err != nil {
		t.Fatalf("defaults() error = %v", err)
	}
	if c.from != "2025-01-10" || c.to != "" {
		t.Errorf("defaults() = %s..%s, want explicit from kept and to left to latest", c.from, c.to)
	}
}
