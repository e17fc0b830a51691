package holdings

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeDecodePositions(t *testing.T) {
	rows := []Holding{
		{Ticker: "PETR4", Quantity: d("100"), AvgPrice: d("30.123456789"), CurrentPrice: d("32"), TotalValue: d("3200"), Source: "B3, MyProfit"},
		{Ticker: "Tesouro Selic 2029", Quantity: d("1"), AvgPrice: d("1000"), CurrentPrice: d("1100.5"), TotalValue: d("1100.5"), Source: "XP"},
	}
	if err := rows[1].Set(Category, "Renda Fixa"); err != nil {
		t.Fatal(err)
	}
	positions := Derive(rows)

	var buf bytes.Buffer
	if err := EncodePositions(&buf, positions); err != nil {
		t.Fatalf("EncodePositions() error = %v", err)
	}
	header, _, _ := strings.Cut(buf.String(), "\n")
	if want := "ticker,quantity,avg_price,current_price,total_value,source,category,profit_loss,profit_loss_pct"; header != want {
		t.Errorf("header = %q, want %q", header, want)
	}

	got, err := DecodePositions(&buf)
	if err != nil {
		t.Fatalf("DecodePositions() error = %v", err)
	}
	if len(got) != len(positions) {
		t.Fatalf("len(DecodePositions()) = %d, want %d", len(got), len(positions))
	}
	for i := range positions {
		if !got[i].Equal(positions[i]) {
			t.Errorf("DecodePositions()[%d] = %+v, want %+v", i, got[i], positions[i])
		}
	}
}

func TestDecodePositions_MissingColumns(t *testing.T) {
	_, err := DecodePositions(strings.NewReader("ticker,total_value\nA,1\n"))
	if err == nil {
		t.Fatal("DecodePositions() error = nil, want missing columns")
	}
	if want := "missing required columns: {quantity, avg_price, current_price, source}"; err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
}

func TestDecodePositions_WithoutDerivedColumns(t *testing.T) {
	in := "source,ticker,quantity,avg_price,current_price,total_value,comment\nB3,VALE3,2,50,60,120,ignored\n"
	got, err := DecodePositions(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodePositions() error = %v", err)
	}
	if len(got) != 1 || got[0].Ticker != "VALE3" || !got[0].TotalValue.Equal(d("120")) || !got[0].ProfitLoss.IsZero() {
		t.Errorf("DecodePositions() = %+v", got)
	}
}
