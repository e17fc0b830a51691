package source

import (
	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// kinvoReader reads the aggregator platform export.
//
// Amounts are localized strings, and the quantity is not supplied: every product
// counts as one unit worth its gross balance.
type kinvoReader struct{ base }

func (r *kinvoReader) Read() ([]holdings.Holding, error) {
	f, err := r.frame()
	if err != nil {
		return nil, err
	}
	idx, err := f.bind(map[string]string{
		holdings.FieldTicker:       "Produto",
		holdings.FieldAvgPrice:     "Valor aplicado",
		holdings.FieldCurrentPrice: "Saldo bruto",
		holdings.FieldTotalValue:   "Saldo bruto",
	}, holdings.FieldQuantity, holdings.FieldSource)
	if err != nil {
		return nil, err
	}
	assetClass, institution := f.index("Classe do Ativo"), f.index("Instituição financeira")

	rows := make([]holdings.Holding, 0, len(f.rows))
	for _, line := range f.rows {
		h := holdings.Holding{
			Ticker:       line.cell(idx[holdings.FieldTicker]),
			Quantity:     decimal.NewFromInt(1),
			AvgPrice:     holdings.ParseMoney(line.cell(idx[holdings.FieldAvgPrice])),
			CurrentPrice: holdings.ParseMoney(line.cell(idx[holdings.FieldCurrentPrice])),
			TotalValue:   holdings.ParseMoney(line.cell(idx[holdings.FieldTotalValue])),
			Source:       string(Kinvo),
		}
		if !h.TotalValue.IsPositive() {
			r.skip("zero total value", "ticker", h.Ticker)
			continue
		}
		_ = h.Set(holdings.AssetClass, line.cell(assetClass))
		_ = h.Set(holdings.Institution, line.cell(institution))
		rows = append(rows, h)
	}
	return r.finalize(rows), nil
}
