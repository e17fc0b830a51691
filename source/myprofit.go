package source

import (
	"strings"

	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// myProfitReader reads the investment tracker export, usually an HTML table
// saved with a legacy spreadsheet extension.
//
// Short positions report a negative quantity, only its magnitude is kept.
type myProfitReader struct{ base }

func (r *myProfitReader) Read() ([]holdings.Holding, error) {
	f, err := r.frame()
	if err != nil {
		return nil, err
	}
	idx, err := f.bind(map[string]string{
		holdings.FieldTicker:       "Ativo",
		holdings.FieldQuantity:     "Qtd",
		holdings.FieldAvgPrice:     "Preço médio",
		holdings.FieldCurrentPrice: "Preço atual",
		holdings.FieldTotalValue:   "Total atual",
	}, holdings.FieldSource)
	if err != nil {
		return nil, err
	}

	rows := make([]holdings.Holding, 0, len(f.rows))
	for _, line := range f.rows {
		h := holdings.Holding{
			Ticker:       line.cell(idx[holdings.FieldTicker]),
			Quantity:     quantity(line.cell(idx[holdings.FieldQuantity])).Abs(),
			AvgPrice:     holdings.ParseMoney(line.cell(idx[holdings.FieldAvgPrice])),
			CurrentPrice: holdings.ParseMoney(line.cell(idx[holdings.FieldCurrentPrice])),
			TotalValue:   holdings.ParseMoney(line.cell(idx[holdings.FieldTotalValue])),
			Source:       string(MyProfit),
		}
		if !h.TotalValue.IsPositive() {
			r.skip("non positive total value", "ticker", h.Ticker)
			continue
		}
		rows = append(rows, h)
	}
	return r.finalize(rows), nil
}

// quantity parses a quantity cell, plain numbers first, then localized ones
// ("1.234,5").
func quantity(s string) decimal.Decimal {
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}
	if strings.Contains(s, ",") {
		return holdings.ParseMoney(s)
	}
	return decimal.Zero
}
