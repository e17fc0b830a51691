package version

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/etnz/holdings/date"
)

// CreateSnapshot copies the raw provider files (keyed by source name) into the
// snapshot directory of the date on (today if zero), and records which file came
// from which source. It returns the snapshot directory.
//
// Files that do not exist are not copied but still recorded. A second snapshot on
// the same date overwrites the first one.
func (s *Store) CreateSnapshot(files map[string]string, on date.Date) (string, error) {
	on = s.day(on)
	dir := filepath.Join(s.RawDir(), on.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create snapshot directory: %w", err)
	}

	sources := make(map[string]string, len(files))
	for _, name := range slices.Sorted(maps.Keys(files)) {
		src := files[name]
		sources[name] = filepath.Base(src)
		err := copyFile(src, filepath.Join(dir, filepath.Base(src)))
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("source file missing from snapshot", "source", name, "file", src)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("cannot snapshot %s file: %w", name, err)
		}
	}

	var w jsonObjectWriter
	w.Append("date", on.String())
	w.Append("timestamp", s.timestamp())
	w.Append("sources", sources)
	data, err := indent(&w)
	if err != nil {
		return "", fmt.Errorf("cannot encode snapshot metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, snapshotMetadata), data, 0644); err != nil {
		return "", fmt.Errorf("cannot write snapshot metadata: %w", err)
	}
	s.log.Info("snapshot created", "date", on.String(), "dir", dir, "sources", len(files))
	return dir, nil
}

// copyFile copies src to dst, keeping the modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// SnapshotSources returns the source to file name map recorded in the snapshot of
// the date on.
func (s *Store) SnapshotSources(on date.Date) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(s.RawDir(), on.String(), snapshotMetadata))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("snapshot for %s: %w", on, ErrVersionNotFound)
	}
	if err != nil {
		return nil, err
	}
	var meta struct {
		Sources map[string]string `json:"sources"`
	}
	if err := jsonUnmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("invalid snapshot metadata for %s: %w", on, err)
	}
	return meta.Sources, nil
}
