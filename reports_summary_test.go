package holdings

import (
	"encoding/json"
	"testing"
)

func TestNewSummary(t *testing.T) {
	positions := Derive([]Holding{
		{Ticker: "A", Quantity: d("10"), AvgPrice: d("10"), CurrentPrice: d("12"), TotalValue: d("120"), Source: "B3, MyProfit"},
		{Ticker: "B", Quantity: d("1"), AvgPrice: d("100"), CurrentPrice: d("80"), TotalValue: d("80"), Source: "XP"},
		{Ticker: "C", Quantity: d("1"), CurrentPrice: d("5"), TotalValue: d("5"), Source: "Kinvo"},
	})

	s := NewSummary(positions, 2)
	if s.TotalPositions != 3 {
		t.Errorf("TotalPositions = %d, want 3", s.TotalPositions)
	}
	if !s.TotalValue.Equal(d("205")) {
		t.Errorf("TotalValue = %v, want 205", s.TotalValue)
	}
	if !s.TotalInvested.Equal(d("200")) {
		t.Errorf("TotalInvested = %v, want 200", s.TotalInvested)
	}
	// 20 - 20 + 5
	if !s.TotalProfitLoss.Equal(d("5")) {
		t.Errorf("TotalProfitLoss = %v, want 5", s.TotalProfitLoss)
	}
	if !s.TotalProfitLossPct.Equal(d("2.5")) {
		t.Errorf("TotalProfitLossPct = %v, want 2.5", s.TotalProfitLossPct)
	}
	wantSources := []string{"B3", "Kinvo", "MyProfit", "XP"}
	if len(s.Sources) != len(wantSources) {
		t.Fatalf("Sources = %v, want %v", s.Sources, wantSources)
	}
	for i := range wantSources {
		if s.Sources[i] != wantSources[i] {
			t.Errorf("Sources[%d] = %s, want %s", i, s.Sources[i], wantSources[i])
		}
	}
	if len(s.TopHoldings) != 2 || s.TopHoldings[0].Ticker != "A" || s.TopHoldings[1].Ticker != "B" {
		t.Errorf("TopHoldings = %+v, want A then B", s.TopHoldings)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded["total_value"] != 205.0 {
		t.Errorf("total_value = %v, want 205", decoded["total_value"])
	}
}

func TestNewSummary_Empty(t *testing.T) {
	s := NewSummary(nil, DefaultTopHoldings)
	if s.TotalPositions != 0 || len(s.TopHoldings) != 0 {
		t.Errorf("NewSummary(nil) = %+v, want zero", s)
	}
}

func TestNewSummary_NonPositiveTop(t *testing.T) {
	positions := Derive([]Holding{
		{Ticker: "A", Quantity: d("1"), AvgPrice: d("10"), CurrentPrice: d("10"), TotalValue: d("10"), Source: "B3"},
	})
	for _, top := range []int{0, -1} {
		s := NewSummary(positions, top)
		if s.TotalPositions != 1 {
			t.Errorf("NewSummary(top=%d).TotalPositions = %d, want 1", top, s.TotalPositions)
		}
		if len(s.TopHoldings) != 0 {
			t.Errorf("NewSummary(top=%d).TopHoldings = %+v, want none", top, s.TopHoldings)
		}
	}
}

func TestJoinSources(t *testing.T) {
	if got, want := JoinSources([]string{"XP", "B3", "XP"}), "B3, XP"; got != want {
		t.Errorf("JoinSources() = %q, want %q", got, want)
	}
	got := SplitSources("B3, XP,MyProfit")
	if len(got) != 3 || got[2] != "MyProfit" {
		t.Errorf("SplitSources() = %v", got)
	}
}
