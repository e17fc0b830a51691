package version

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/date"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var clock = time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(),
		WithClock(func() time.Time { return clock }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func pos(ticker, total string) holdings.Position {
	return holdings.NewPosition(holdings.Holding{
		Ticker:       ticker,
		Quantity:     d("1"),
		AvgPrice:     d(total),
		CurrentPrice: d(total),
		TotalValue:   d(total),
		Source:       "B3",
	})
}

func save(t *testing.T, s *Store, on string, positions ...holdings.Position) {
	t.Helper()
	if _, err := s.SaveConsolidation(positions, date.MustParse(on), nil); err != nil {
		t.Fatalf("SaveConsolidation(%s) error = %v", on, err)
	}
}

func TestOpen_CreatesLayout(t *testing.T) {
	s := newStore(t)
	for _, dir := range []string{"data/raw", "output/consolidated", "output/reports"} {
		info, err := os.Stat(filepath.Join(s.Base(), dir))
		if err != nil || !info.IsDir() {
			t.Errorf("Open() did not create %s: %v", dir, err)
		}
	}
}

func TestOpen_Fails(t *testing.T) {
	base := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(base, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(base); err == nil {
		t.Errorf("Open() on a file succeeded, want an error")
	}
}

func TestSaveConsolidation_Latest(t *testing.T) {
	s := newStore(t)
	in := []holdings.Position{
		holdings.NewPosition(holdings.Holding{
			Ticker: "PETR4", Quantity: d("150"), AvgPrice: d("29"), CurrentPrice: d("32"),
			TotalValue: d("4800"), Source: "B3, MyProfit", Extra: map[string]string{holdings.AssetType: "Ações"},
		}),
		holdings.NewPosition(holdings.Holding{
			Ticker: "Tesouro Selic 2029", Quantity: d("1"), AvgPrice: d("10000"), CurrentPrice: d("10523.45"),
			TotalValue: d("10523.45"), Source: "Kinvo", Extra: map[string]string{holdings.Institution: "Tesouro, Direto"},
		}),
	}
	file, err := s.SaveConsolidation(in, date.Date{}, nil)
	if err != nil {
		t.Fatalf("SaveConsolidation() error = %v", err)
	}
	if want := filepath.Join(s.ConsolidatedDir(), "portfolio_2025-07-01.csv"); file != want {
		t.Errorf("SaveConsolidation() = %q, want %q", file, want)
	}

	for _, load := range []func() ([]holdings.Position, error){
		s.Latest,
		func() ([]holdings.Position, error) { return s.Load("2025-7-1") },
	} {
		got, err := load()
		if err != nil {
			t.Fatalf("load error = %v", err)
		}
		if len(got) != len(in) {
			t.Fatalf("len(load()) = %d, want %d", len(got), len(in))
		}
		for i := range in {
			if !got[i].Equal(in[i]) {
				t.Errorf("load()[%d] = %+v, want %+v", i, got[i], in[i])
			}
		}
	}
	if _, err := os.Stat(s.metaFile(date.MustParse("2025-07-01"))); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("metadata written without metadata: %v", err)
	}
}

func TestSaveConsolidation_Metadata(t *testing.T) {
	s := newStore(t)
	_, err := s.SaveConsolidation(
		[]holdings.Position{pos("X", "100"), pos("Y", "200.5")},
		date.MustParse("2025-06-30"),
		map[string]any{"deduplication_strategy": "aggregate", "total_assets": 99, "sources": []string{"B3", "XP"}},
	)
	if err != nil {
		t.Fatalf("SaveConsolidation() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(s.ConsolidatedDir(), "portfolio_2025-06-30_meta.json"))
	if err != nil {
		t.Fatal(err)
	}
	var compact map[string]any
	if err := json.Unmarshal(data, &compact); err != nil {
		t.Fatalf("invalid metadata %s: %v", data, err)
	}
	want := map[string]any{
		"date":                   "2025-06-30",
		"timestamp":              "2025-07-01T10:30:00Z",
		"total_assets":           float64(2),
		"total_value":            300.5,
		"deduplication_strategy": "aggregate",
		"sources":                []any{"B3", "XP"},
	}
	gotJSON, _ := json.Marshal(compact)
	wantJSON, _ := json.Marshal(want)
	if string(gotJSON) != string(wantJSON) {
		t.Errorf("metadata = %s, want %s", gotJSON, wantJSON)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := newStore(t)
	if _, err := s.Latest(); !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("Latest() error = %v, want ErrVersionNotFound", err)
	}
	if _, err := s.Load("2025-01-01"); !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("Load() error = %v, want ErrVersionNotFound", err)
	}
	if _, err := s.Load("yesterday"); err == nil || errors.Is(err, ErrVersionNotFound) {
		t.Errorf("Load(yesterday) error = %v, want an invalid version error", err)
	}
}

func TestCreateSnapshot(t *testing.T) {
	s := newStore(t)
	in := t.TempDir()
	b3 := filepath.Join(in, "b3_carteira.xlsx")
	if err := os.WriteFile(b3, []byte("b3 content"), 0644); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{"B3": b3, "XP": filepath.Join(in, "xp_carteira.xlsx")}

	dir, err := s.CreateSnapshot(files, date.MustParse("2025-6-15"))
	if err != nil {
		t.Fatalf("CreateSnapshot() error = %v", err)
	}
	if want := filepath.Join(s.RawDir(), "2025-06-15"); dir != want {
		t.Errorf("CreateSnapshot() = %q, want %q", dir, want)
	}
	got, err := os.ReadFile(filepath.Join(dir, "b3_carteira.xlsx"))
	if err != nil || string(got) != "b3 content" {
		t.Errorf("snapshot copy = %q, %v, want %q", got, err, "b3 content")
	}
	if _, err := os.Stat(filepath.Join(dir, "xp_carteira.xlsx")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file was copied: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "date": "2025-06-15",
  "timestamp": "2025-07-01T10:30:00Z",
  "sources": {
    "B3": "b3_carteira.xlsx",
    "XP": "xp_carteira.xlsx"
  }
}
`
	if string(data) != want {
		t.Errorf("metadata.json = %s, want %s", data, want)
	}

	sources, err := s.SnapshotSources(date.MustParse("2025-06-15"))
	if err != nil {
		t.Fatalf("SnapshotSources() error = %v", err)
	}
	if sources["B3"] != "b3_carteira.xlsx" || len(sources) != 2 {
		t.Errorf("SnapshotSources() = %v", sources)
	}

	// same day overwrites
	if err := os.WriteFile(b3, []byte("new content"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateSnapshot(files, date.MustParse("2025-06-15")); err != nil {
		t.Fatalf("CreateSnapshot() error = %v", err)
	}
	if got, _ := os.ReadFile(filepath.Join(dir, "b3_carteira.xlsx")); string(got) != "new content" {
		t.Errorf("snapshot copy = %q, want the new content", got)
	}
}

func TestListVersions(t *testing.T) {
	s := newStore(t)
	save(t, s, "2025-07-01", pos("X", "100"), pos("Y", "200"))
	if _, err := s.SaveConsolidation([]holdings.Position{pos("X", "50")}, date.MustParse("2025-06-01"), map[string]any{"run_id": "r1"}); err != nil {
		t.Fatal(err)
	}
	save(t, s, "2025-06-15", pos("Z", "1.5"))

	versions, err := s.ListVersions()
	if err != nil {
		t.Fatalf("ListVersions() error = %v", err)
	}
	want := []struct {
		on     string
		assets int
		value  string
		meta   bool
	}{
		{"2025-06-01", 1, "50", true},
		{"2025-06-15", 1, "1.5", false},
		{"2025-07-01", 2, "300", false},
	}
	if len(versions) != len(want) {
		t.Fatalf("len(ListVersions()) = %d, want %d", len(versions), len(want))
	}
	for i, w := range want {
		v := versions[i]
		if v.Date.String() != w.on || v.TotalAssets != w.assets || !v.TotalValue.Equal(d(w.value)) || (v.Metadata != nil) != w.meta {
			t.Errorf("ListVersions()[%d] = %v %d %v meta=%v, want %v", i, v.Date, v.TotalAssets, v.TotalValue, v.Metadata, w)
		}
	}
	if versions[0].Metadata["run_id"] != "r1" {
		t.Errorf("Metadata[run_id] = %v, want r1", versions[0].Metadata["run_id"])
	}
}
