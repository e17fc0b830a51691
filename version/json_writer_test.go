package version

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestJsonObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w jsonObjectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("simple object", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("b", 1).Append("a", "hello")
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"b":1,"a":"hello"}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("decimal and merge", func(t *testing.T) {
		var w jsonObjectWriter
		w.Decimal("total_value", decimal.RequireFromString("1234.5600"))
		w.Merge(map[string]any{"z": true, "total_value": 0, "b": "x"}, "total_value")
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"total_value":1234.56,"b":"x","z":true}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("error", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("f", func() {}).Append("a", 1)
		if _, err := w.MarshalJSON(); err == nil {
			t.Errorf("MarshalJSON() succeeded with an unmarshalable value")
		}
	})
}
