package dedup

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		ticker string
		want   string
	}{
		{" petr4 ", "PETR4"},
		{"BOVA11", "BOVA11"},
		{"Tesouro Selic 2029", "TESOURO SELIC 2029"},
		{"TESOURO SELIC 2029 (LFT)", "TESOURO SELIC 2029"},
		{"Tesouro IPCA+ 2029", "TESOURO IPCA 2029"},
		{"TESOURO IPCA+ COM JUROS SEMESTRAIS 2029", "TESOURO IPCA 2029"},
		{"tesouro selic", "TESOURO SELIC"},
		{"Tesouro Prefixado 2027", "TESOURO PREFIXADO 2027"},
		{"IPCA 2029", "IPCA 2029"},
	}
	for _, tt := range tests {
		if got := NormalizeTicker(tt.ticker); got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.ticker, got, tt.want)
		}
	}
}
