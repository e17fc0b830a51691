package holdings

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Core fields every canonical table carries, in column order.
const (
	FieldTicker       = "ticker"
	FieldQuantity     = "quantity"
	FieldAvgPrice     = "avg_price"
	FieldCurrentPrice = "current_price"
	FieldTotalValue   = "total_value"
	FieldSource       = "source"
)

// Optional fields providers may supply, carried through when present.
const (
	Institution = "institution"
	AssetType   = "asset_type"
	AssetClass  = "asset_class"
	Category    = "category"
)

// Derived fields of a consolidated table.
const (
	FieldProfitLoss    = "profit_loss"
	FieldProfitLossPct = "profit_loss_pct"
)

// RequiredFields lists the six core fields in canonical column order.
var RequiredFields = []string{FieldTicker, FieldQuantity, FieldAvgPrice, FieldCurrentPrice, FieldTotalValue, FieldSource}

// OptionalFields is the allow-list of metadata fields, in canonical column order.
var OptionalFields = []string{Institution, AssetType, AssetClass, Category}

// IsOptionalField reports whether name belongs to the optional fields allow-list.
func IsOptionalField(name string) bool { return slices.Contains(OptionalFields, name) }

// Holding is the canonical record every provider is mapped into.
//
// Ticker is the provider raw form (trimmed), matching across providers is done on
// the normalized ticker by the dedup package.
type Holding struct {
	Ticker       string
	Quantity     decimal.Decimal
	AvgPrice     decimal.Decimal
	CurrentPrice decimal.Decimal
	TotalValue   decimal.Decimal
	Source       string

	// Extra holds the optional metadata fields, keyed by their allow-listed name.
	Extra map[string]string
}

// Set stores an optional field value. Empty values are not stored.
func (h *Holding) Set(field, value string) error {
	if !IsOptionalField(field) {
		return fmt.Errorf("unknown optional field %q", field)
	}
	if value == "" {
		return nil
	}
	if h.Extra == nil {
		h.Extra = make(map[string]string)
	}
	h.Extra[field] = value
	return nil
}

// Get returns an optional field value, or "" if absent.
func (h Holding) Get(field string) string { return h.Extra[field] }

// Invested returns the acquisition cost of the position (avg_price × quantity).
func (h Holding) Invested() decimal.Decimal { return h.AvgPrice.Mul(h.Quantity) }

// Clone returns a deep copy of h.
func (h Holding) Clone() Holding {
	if h.Extra != nil {
		extra := make(map[string]string, len(h.Extra))
		for k, v := range h.Extra {
			extra[k] = v
		}
		h.Extra = extra
	}
	return h
}

// Equal reports whether h and x hold the same values.
func (h Holding) Equal(x Holding) bool {
	if h.Ticker != x.Ticker || h.Source != x.Source {
		return false
	}
	if !h.Quantity.Equal(x.Quantity) || !h.AvgPrice.Equal(x.AvgPrice) ||
		!h.CurrentPrice.Equal(x.CurrentPrice) || !h.TotalValue.Equal(x.TotalValue) {
		return false
	}
	if len(h.Extra) != len(x.Extra) {
		return false
	}
	for k, v := range h.Extra {
		if x.Extra[k] != v {
			return false
		}
	}
	return true
}

// Columns returns the columns of a canonical table: the six core fields followed by
// every optional field at least one row supplies.
func Columns(rows []Holding) []string {
	cols := slices.Clone(RequiredFields)
	for _, f := range OptionalFields {
		for _, r := range rows {
			if r.Get(f) != "" {
				cols = append(cols, f)
				break
			}
		}
	}
	return cols
}

// TotalValue sums the total value of rows.
func TotalValue(rows []Holding) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.TotalValue)
	}
	return total
}
