// Package version manages the dated snapshots of a consolidation.
//
// A Store owns a directory tree:
//
//	data/raw/<date>/                           copies of the provider files, and metadata.json
//	output/consolidated/portfolio_<date>.csv   the consolidated table of a date
//	output/consolidated/portfolio_<date>_meta.json
//	output/consolidated/latest.csv             the last saved consolidated table
//	output/reports/changes_<d1>_to_<d2>.json   saved comparisons
//
// Saving twice on the same date overwrites the first save. Writes are not
// transactional, a crash can leave a partial file for a date without affecting
// the other dates.
package version

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/date"
)

// Latest is the name of the alias mirroring the last saved consolidation.
const Latest = "latest"

const (
	rawDir          = "data/raw"
	consolidatedDir = "output/consolidated"
	reportsDir      = "output/reports"

	snapshotMetadata = "metadata.json"
	latestFile       = Latest + ".csv"
	versionPrefix    = "portfolio_"
)

// ErrVersionNotFound is returned when a consolidation is not in the store.
var ErrVersionNotFound = fmt.Errorf("version not found: %w", fs.ErrNotExist)

// Store is the on-disk snapshot store rooted at a base directory.
type Store struct {
	base string
	now  func() time.Time
	log  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger of the Store.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the clock used for timestamps and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open returns the Store rooted at base, creating its directories.
func Open(base string, opts ...Option) (*Store, error) {
	s := &Store{base: base, now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	for _, dir := range []string{s.RawDir(), s.ConsolidatedDir(), s.ReportsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create store directory: %w", err)
		}
	}
	return s, nil
}

// Base returns the directory the store is rooted at.
func (s *Store) Base() string { return s.base }

// RawDir returns the directory holding the raw snapshots.
func (s *Store) RawDir() string { return filepath.Join(s.base, filepath.FromSlash(rawDir)) }

// ConsolidatedDir returns the directory holding the consolidated tables.
func (s *Store) ConsolidatedDir() string {
	return filepath.Join(s.base, filepath.FromSlash(consolidatedDir))
}

// ReportsDir returns the directory holding the change reports.
func (s *Store) ReportsDir() string { return filepath.Join(s.base, filepath.FromSlash(reportsDir)) }

// day returns on, or today when on is the zero Date.
func (s *Store) day(on date.Date) date.Date {
	if on.IsZero() {
		return date.Of(s.now())
	}
	return on
}

func (s *Store) timestamp() string { return s.now().Format(time.RFC3339) }

// versionFile returns the consolidated table of a date.
func (s *Store) versionFile(on date.Date) string {
	return filepath.Join(s.ConsolidatedDir(), versionPrefix+on.String()+".csv")
}

// metaFile returns the metadata record of a date.
func (s *Store) metaFile(on date.Date) string {
	return filepath.Join(s.ConsolidatedDir(), versionPrefix+on.String()+"_meta.json")
}

// resolve maps a version reference to its canonical name and file. The empty
// reference and "latest" designate the alias, anything else must be a date.
func (s *Store) resolve(ref string) (name, file string, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, Latest) {
		return Latest, filepath.Join(s.ConsolidatedDir(), latestFile), nil
	}
	on, err := date.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid version %q: %w", ref, err)
	}
	return on.String(), s.versionFile(on), nil
}

// read decodes the consolidated table in file, version names it in errors.
func read(version, file string) ([]holdings.Position, error) {
	f, err := os.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("portfolio for %s: %w", version, ErrVersionNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	positions, err := holdings.DecodePositions(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read portfolio for %s: %w", version, err)
	}
	return positions, nil
}

// Load reads the consolidated table saved for a version reference (a date or
// "latest"). It fails with ErrVersionNotFound if there is none.
func (s *Store) Load(ref string) ([]holdings.Position, error) {
	name, file, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return read(name, file)
}

// Latest reads the last saved consolidated table.
func (s *Store) Latest() ([]holdings.Position, error) { return s.Load(Latest) }
