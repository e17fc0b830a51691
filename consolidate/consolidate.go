// Package consolidate runs the consolidation pipeline: provider files are read
// into canonical holdings, merged by a dedup.Deduplicator into the consolidated
// table, and optionally saved as a dated version.Store snapshot.
package consolidate

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/date"
	"github.com/etnz/holdings/dedup"
	"github.com/etnz/holdings/source"
	"github.com/etnz/holdings/version"
	"github.com/google/uuid"
)

// table is a loaded provider file.
type table struct {
	provider source.Provider
	file     string
	rows     []holdings.Holding
}

// Consolidator accumulates provider tables and consolidates them.
type Consolidator struct {
	dedup  *dedup.Deduplicator
	store  *version.Store
	log    *slog.Logger
	newID  func() string
	tables []table // in load order
}

// Option configures a Consolidator.
type Option func(*Consolidator)

// WithStore enables versioning: consolidations asked to be saved go to s.
func WithStore(s *version.Store) Option {
	return func(c *Consolidator) { c.store = s }
}

// WithLogger sets the logger of the Consolidator and of the readers it opens.
func WithLogger(l *slog.Logger) Option {
	return func(c *Consolidator) { c.log = l }
}

// New returns an empty Consolidator merging with d.
func New(d *dedup.Deduplicator, opts ...Option) *Consolidator {
	c := &Consolidator{
		dedup: d,
		log:   slog.Default(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the file of provider p and adds its holdings. Loading a provider
// again replaces its previous table. It returns the number of holdings read.
func (c *Consolidator) Load(p source.Provider, path string) (int, error) {
	rows, err := source.Read(p, path, source.WithLogger(c.log))
	if err != nil {
		return 0, fmt.Errorf("cannot load %s: %w", p, err)
	}
	t := table{provider: p, file: path, rows: rows}
	replaced := false
	for i := range c.tables {
		if c.tables[i].provider == p {
			c.tables[i], replaced = t, true
		}
	}
	if !replaced {
		c.tables = append(c.tables, t)
	}
	c.log.Info("source loaded", "provider", string(p), "file", path, "rows", len(rows))
	return len(rows), nil
}

// Outcome reports the load of one configured provider file.
type Outcome struct {
	Provider source.Provider
	File     string
	Rows     int
	Err      error // nil when loaded
}

// LoadAll loads the provider files of files, relative to dir unless absolute, in
// provider order. A file that fails to load is skipped: the outcomes tell which
// ones and why, and the other providers are still loaded.
func (c *Consolidator) LoadAll(dir string, files map[source.Provider]string) []Outcome {
	var outcomes []Outcome
	for _, p := range source.Providers() {
		name, ok := files[p]
		if !ok || name == "" {
			continue
		}
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, name)
		}
		n, err := c.Load(p, path)
		if err != nil {
			c.log.Warn("source skipped", "provider", string(p), "file", path, "error", err)
		}
		outcomes = append(outcomes, Outcome{Provider: p, File: path, Rows: n, Err: err})
	}
	return outcomes
}

// Loaded returns the loaded providers, in load order.
func (c *Consolidator) Loaded() []source.Provider {
	providers := make([]source.Provider, 0, len(c.tables))
	for _, t := range c.tables {
		providers = append(providers, t.provider)
	}
	return providers
}

// Combined returns the combined table: every loaded holding, in load order.
func (c *Consolidator) Combined() []holdings.Holding {
	var rows []holdings.Holding
	for _, t := range c.tables {
		rows = append(rows, t.rows...)
	}
	return rows
}

// Consolidate deduplicates the combined table into the consolidated table,
// sorted by descending value. Nothing loaded gives an empty table.
//
// When save is true and a store is configured, the raw files are snapshotted and
// the table saved for the date on (today if zero).
func (c *Consolidator) Consolidate(save bool, on date.Date) ([]holdings.Position, error) {
	rows := c.Combined()
	if len(c.tables) == 0 {
		c.log.Warn("nothing to consolidate, no source loaded")
		return nil, nil
	}
	positions := holdings.Derive(c.dedup.Deduplicate(rows))
	c.log.Info("consolidated", "sources", len(c.tables), "rows", len(rows), "positions", len(positions))

	if !save || c.store == nil {
		return positions, nil
	}
	files := make(map[string]string, len(c.tables))
	sources := make([]string, 0, len(c.tables))
	for _, t := range c.tables {
		files[string(t.provider)] = t.file
		sources = append(sources, string(t.provider))
	}
	if _, err := c.store.CreateSnapshot(files, on); err != nil {
		return nil, fmt.Errorf("cannot snapshot sources: %w", err)
	}
	meta := map[string]any{
		"run_id":                 c.newID(),
		"sources":                sources,
		"deduplication_strategy": string(c.dedup.Strategy()),
		"total_sources":          len(c.tables),
	}
	if _, err := c.store.SaveConsolidation(positions, on, meta); err != nil {
		return nil, fmt.Errorf("cannot save consolidation: %w", err)
	}
	return positions, nil
}

// FindDuplicates reports the assets found more than once in the combined table.
func (c *Consolidator) FindDuplicates() []dedup.Duplicate {
	return dedup.FindDuplicates(c.Combined())
}

// Summary summarizes positions, listing its top largest positions. With nil
// positions, the loaded sources are consolidated without saving.
func (c *Consolidator) Summary(positions []holdings.Position, top int) (holdings.Summary, error) {
	if positions == nil {
		var err error
		if positions, err = c.Consolidate(false, date.Date{}); err != nil {
			return holdings.Summary{}, err
		}
	}
	return holdings.NewSummary(positions, top), nil
}
