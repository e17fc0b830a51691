// Package source reads the spreadsheet exports of the supported data providers
// and maps them into canonical holdings.
//
// Each provider has its own reader, obtained through Open:
//   - B3, the exchange official export: one row per asset, numeric cells.
//   - Kinvo, an aggregator platform: localized currency strings, no quantity.
//   - MyProfit, an investment tracker: often an HTML table saved as .xls.
//   - XP, a brokerage report: category sections, repeated headers and subtotals.
//
// The file format is always sniffed from the content, never trusted from the
// extension.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/etnz/holdings"
)

// Provider names a supported data provider. It is also the source name carried by
// the holdings it produces.
type Provider string

// The supported providers.
const (
	B3       Provider = "B3"
	Kinvo    Provider = "Kinvo"
	MyProfit Provider = "MyProfit"
	XP       Provider = "XP"
)

var (
	// ErrFileNotFound is returned by Open when the input file does not exist.
	ErrFileNotFound = fmt.Errorf("file not found: %w", fs.ErrNotExist)

	// ErrParse is the class of errors returned when a file cannot be mapped into
	// canonical holdings.
	ErrParse = errors.New("parse error")

	// ErrUnknownProvider is returned for a provider with no reader.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Reader reads one provider file into canonical holdings.
type Reader interface {
	// Provider returns the provider the reader parses.
	Provider() Provider
	// Path returns the file the reader parses.
	Path() string
	// Read parses the file.
	Read() ([]holdings.Holding, error)
}

// Providers returns the supported providers.
func Providers() []Provider { return []Provider{B3, Kinvo, MyProfit, XP} }

// ParseProvider returns the provider named s, ignoring case.
func ParseProvider(s string) (Provider, error) {
	for _, p := range Providers() {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Option configures a Reader.
type Option func(*base)

// WithLogger sets the logger used to report skipped rows.
func WithLogger(l *slog.Logger) Option {
	return func(b *base) { b.log = l }
}

// Open returns the reader for provider p on the file at path.
//
// It fails with ErrFileNotFound if path does not exist.
func Open(p Provider, path string, opts ...Option) (Reader, error) {
	b := base{provider: p, path: path, log: slog.Default()}
	for _, opt := range opts {
		opt(&b)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("cannot access %q: %w", path, err)
	}

	switch p {
	case B3:
		return &b3Reader{b}, nil
	case Kinvo:
		return &kinvoReader{b}, nil
	case MyProfit:
		return &myProfitReader{b}, nil
	case XP:
		return &xpReader{b}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
}

// Read is a shortcut to open and read a provider file.
func Read(p Provider, path string, opts ...Option) ([]holdings.Holding, error) {
	r, err := Open(p, path, opts...)
	if err != nil {
		return nil, err
	}
	return r.Read()
}

// base holds what every reader shares.
type base struct {
	provider Provider
	path     string
	log      *slog.Logger
}

func (b base) Provider() Provider { return b.provider }
func (b base) Path() string       { return b.path }

// frame loads the file as a table whose first row is the header.
func (b base) frame() (*frame, error) {
	grid, err := readGrid(b.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, b.path, err)
	}
	return newFrame(grid), nil
}

// skip reports a row that does not make it into the canonical table.
func (b base) skip(reason string, args ...any) {
	b.log.Debug("skipping row", append([]any{"provider", string(b.provider), "reason", reason}, args...)...)
}
