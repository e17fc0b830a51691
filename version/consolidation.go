package version

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/date"
	"github.com/shopspring/decimal"
)

// Metadata fields computed by SaveConsolidation, they take precedence over the
// caller fields.
var computedFields = []string{"date", "timestamp", "total_assets", "total_value"}

// SaveConsolidation writes the consolidated table of the date on (today if zero)
// and overwrites the latest alias with it. It returns the dated file.
//
// When meta is not empty, a metadata record is written too: the date, a
// timestamp, the row count and the total value, followed by the meta fields.
func (s *Store) SaveConsolidation(positions []holdings.Position, on date.Date, meta map[string]any) (string, error) {
	on = s.day(on)
	var buf bytes.Buffer
	if err := holdings.EncodePositions(&buf, positions); err != nil {
		return "", fmt.Errorf("cannot encode consolidation: %w", err)
	}
	file := s.versionFile(on)
	if err := os.WriteFile(file, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("cannot write consolidation: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.ConsolidatedDir(), latestFile), buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("cannot update %s: %w", Latest, err)
	}

	if len(meta) > 0 {
		var w jsonObjectWriter
		w.Append("date", on.String())
		w.Append("timestamp", s.timestamp())
		w.Append("total_assets", len(positions))
		w.Decimal("total_value", holdings.TotalValue(holdings.HoldingsOf(positions)))
		w.Merge(meta, computedFields...)
		data, err := indent(&w)
		if err != nil {
			return "", fmt.Errorf("cannot encode consolidation metadata: %w", err)
		}
		if err := os.WriteFile(s.metaFile(on), data, 0644); err != nil {
			return "", fmt.Errorf("cannot write consolidation metadata: %w", err)
		}
	}
	s.log.Info("consolidation saved", "date", on.String(), "file", file, "positions", len(positions))
	return file, nil
}

// Version describes a saved consolidation.
type Version struct {
	Date        date.Date
	File        string
	TotalAssets int
	TotalValue  decimal.Decimal
	// Metadata is the metadata record of the version, nil if it has none.
	Metadata map[string]any
}

// ListVersions returns the saved consolidations, oldest first. The latest alias
// is not a version.
//
// Versions without a metadata record have their asset count and total value
// computed from the table.
func (s *Store) ListVersions() ([]Version, error) {
	files, err := filepath.Glob(filepath.Join(s.ConsolidatedDir(), versionPrefix+"*.csv"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)

	var versions []Version
	for _, file := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), versionPrefix), ".csv")
		on, err := date.Parse(name)
		if err != nil {
			s.log.Debug("ignoring consolidation file", "file", file, "error", err)
			continue
		}
		v := Version{Date: on, File: file}
		meta, err := readMetadata(s.metaFile(on))
		switch {
		case err == nil:
			v.Metadata = meta
			v.TotalAssets = intField(meta["total_assets"])
			v.TotalValue = decimalField(meta["total_value"])
		case errors.Is(err, fs.ErrNotExist):
			positions, err := read(on.String(), file)
			if err != nil {
				return nil, err
			}
			v.TotalAssets = len(positions)
			v.TotalValue = holdings.TotalValue(holdings.HoldingsOf(positions))
		default:
			return nil, fmt.Errorf("cannot read metadata of %s: %w", on, err)
		}
		versions = append(versions, v)
	}
	slices.SortStableFunc(versions, func(a, b Version) int { return a.Date.Compare(b.Date) })
	return versions, nil
}

func readMetadata(file string) (map[string]any, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var meta map[string]any
	if err := jsonUnmarshal(data, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// jsonUnmarshal decodes data keeping numbers as json.Number.
func jsonUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func intField(v any) int {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}

func decimalField(v any) decimal.Decimal {
	if n, ok := v.(json.Number); ok {
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}
