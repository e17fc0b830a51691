// Package dedup merges the observations different providers make of the same
// asset into a single row.
//
// Rows are grouped by their normalized ticker (see NormalizeTicker), then each
// group is reduced to one row according to a Strategy. Every group is always
// represented exactly once in the output.
package dedup

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/source"
	"github.com/shopspring/decimal"
)

// Strategy is the policy used to merge the rows of a group.
type Strategy string

const (
	// Aggregate sums quantities and values, and averages prices.
	Aggregate Strategy = "aggregate"
	// Prioritize keeps the row of the highest priority source.
	Prioritize Strategy = "prioritize"
	// Latest keeps the most recent row. Rows carry no timestamp so it ranks
	// them like Prioritize.
	Latest Strategy = "latest"
)

// ErrUnknownStrategy is returned for a strategy name with no implementation.
var ErrUnknownStrategy = errors.New("unknown deduplication strategy")

// Strategies returns the supported strategies, the default one first.
func Strategies() []Strategy { return []Strategy{Aggregate, Prioritize, Latest} }

// ParseStrategy returns the strategy named s, ignoring case. The empty name is the
// default strategy.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Aggregate, nil
	}
	for _, st := range Strategies() {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

// Priority ranks sources by name, the higher the better. Unknown sources rank 0.
type Priority map[string]int

// DefaultPriority ranks the tracker first, then the exchange, the brokerage and
// finally the aggregator.
func DefaultPriority() Priority {
	return Priority{
		string(source.MyProfit): 4,
		string(source.B3):       3,
		string(source.XP):       2,
		string(source.Kinvo):    1,
	}
}

// Of returns the priority of a source field. An aggregated field ("B3, XP") ranks as
// its best source.
func (p Priority) Of(src string) int {
	best := 0
	for _, name := range holdings.SplitSources(src) {
		best = max(best, p[name])
	}
	return best
}

// Config is the deduplication policy.
type Config struct {
	Strategy Strategy
	Priority Priority // nil means DefaultPriority
}

// Deduplicator merges a combined table into one row per normalized ticker.
type Deduplicator struct {
	strategy Strategy
	priority Priority
	log      *slog.Logger
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithLogger sets the logger of the Deduplicator.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deduplicator) { d.log = l }
}

// New returns a Deduplicator applying cfg. It fails with ErrUnknownStrategy if the
// strategy is not supported.
func New(cfg Config, opts ...Option) (*Deduplicator, error) {
	strategy, err := ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, err
	}
	d := &Deduplicator{strategy: strategy, priority: cfg.Priority, log: slog.Default()}
	if d.priority == nil {
		d.priority = DefaultPriority()
	}
	for _, opt := range opts {
		opt(d)
	}
	if strategy == Latest {
		d.log.Info("latest strategy ranks rows by source priority, rows carry no timestamp")
	}
	return d, nil
}

// Strategy returns the strategy applied by d.
func (d *Deduplicator) Strategy() Strategy { return d.strategy }

// Priority returns the priority of a source field.
func (d *Deduplicator) Priority(src string) int { return d.priority.Of(src) }

// group is the set of rows sharing a normalized ticker, in input order.
type group struct {
	key  string
	rows []holdings.Holding
}

// partition groups rows by normalized ticker, in ascending key order.
func partition(rows []holdings.Holding) []group {
	index := make(map[string]int)
	var groups []group
	for _, r := range rows {
		key := NormalizeTicker(r.Ticker)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	slices.SortFunc(groups, func(a, b group) int { return strings.Compare(a.key, b.key) })
	return groups
}

// Deduplicate returns one row per normalized ticker of rows, in ascending
// normalized ticker order. rows is not modified.
func (d *Deduplicator) Deduplicate(rows []holdings.Holding) []holdings.Holding {
	if len(rows) == 0 {
		return nil
	}
	groups := partition(rows)
	merged := make([]holdings.Holding, 0, len(groups))
	for _, g := range groups {
		switch d.strategy {
		case Aggregate:
			merged = append(merged, d.aggregate(g.rows))
		default:
			merged = append(merged, g.rows[d.best(g.rows)].Clone())
		}
	}
	d.log.Info("deduplicated holdings", "strategy", string(d.strategy), "rows_in", len(rows), "rows_out", len(merged))
	return merged
}

// best returns the index of the highest priority row, the first one on ties.
func (d *Deduplicator) best(rows []holdings.Holding) int {
	best, rank := 0, -1
	for i, r := range rows {
		if p := d.priority.Of(r.Source); p > rank {
			best, rank = i, p
		}
	}
	return best
}

// aggregate merges the rows of a group.
//
// Quantities and values are summed. The average price is weighted by quantity
// and the current price is the value per unit. Without any quantity, both
// prices are plain means. Ticker and metadata come from the best source.
func (d *Deduplicator) aggregate(rows []holdings.Holding) holdings.Holding {
	if len(rows) == 1 {
		return rows[0].Clone()
	}
	var quantity, value, cost, avgSum, curSum decimal.Decimal
	var names []string
	for _, r := range rows {
		quantity = quantity.Add(r.Quantity)
		value = value.Add(r.TotalValue)
		cost = cost.Add(r.AvgPrice.Mul(r.Quantity))
		avgSum = avgSum.Add(r.AvgPrice)
		curSum = curSum.Add(r.CurrentPrice)
		names = append(names, holdings.SplitSources(r.Source)...)
	}

	best := rows[d.best(rows)].Clone()
	merged := holdings.Holding{
		Ticker:     best.Ticker,
		Quantity:   quantity,
		TotalValue: value,
		Source:     holdings.JoinSources(names),
		Extra:      best.Extra,
	}
	if quantity.IsPositive() {
		merged.AvgPrice = cost.Div(quantity)
		merged.CurrentPrice = value.Div(quantity)
	} else {
		n := decimal.NewFromInt(int64(len(rows)))
		merged.AvgPrice = avgSum.Div(n)
		merged.CurrentPrice = curSum.Div(n)
	}
	return merged
}
