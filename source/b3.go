package source

import (
	"github.com/etnz/holdings"
)

// b3Reader reads the exchange official position export.
//
// Values are numeric cells. The export has no average price: it is back-computed
// as total value over quantity.
type b3Reader struct{ base }

func (r *b3Reader) Read() ([]holdings.Holding, error) {
	f, err := r.frame()
	if err != nil {
		return nil, err
	}
	idx, err := f.bind(map[string]string{
		holdings.FieldTicker:       "Código de Negociação",
		holdings.FieldQuantity:     "Quantidade",
		holdings.FieldCurrentPrice: "Preço de Fechamento",
		holdings.FieldTotalValue:   "Valor Atualizado",
	}, holdings.FieldAvgPrice, holdings.FieldSource)
	if err != nil {
		return nil, err
	}
	institution, assetType := f.index("Instituição"), f.index("Tipo")

	rows := make([]holdings.Holding, 0, len(f.rows))
	for _, line := range f.rows {
		h := holdings.Holding{
			Ticker:       line.cell(idx[holdings.FieldTicker]),
			Quantity:     number(line.cell(idx[holdings.FieldQuantity])),
			CurrentPrice: number(line.cell(idx[holdings.FieldCurrentPrice])),
			TotalValue:   number(line.cell(idx[holdings.FieldTotalValue])),
			Source:       string(B3),
		}
		if h.Quantity.IsPositive() {
			h.AvgPrice = h.TotalValue.Div(h.Quantity)
		}
		_ = h.Set(holdings.Institution, line.cell(institution))
		_ = h.Set(holdings.AssetType, line.cell(assetType))
		rows = append(rows, h)
	}
	return r.finalize(rows), nil
}
