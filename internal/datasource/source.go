// Package datasource discovers and selects where the location tree comes
// from: the live backend or a SQLite snapshot written by `stk export`.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/stockpile/pkg/config"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeAPI is the live backend
	SourceTypeAPI SourceType = "api"
	// SourceTypeSnapshot is a SQLite file written by the exporter
	SourceTypeSnapshot SourceType = "snapshot"
)

// SnapshotExt is the file extension used for snapshots.
const SnapshotExt = ".sqlite3"

// DataSource represents a potential source of inventory data
type DataSource struct {
	Type SourceType `json:"type"`
	// Path is the snapshot file, or the base URL for the API
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
	// Valid indicates whether the source passed validation
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	// NodeCount is the number of tree nodes (set during validation)
	NodeCount int `json:"node_count"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	if s.Type == SourceTypeAPI {
		return fmt.Sprintf("%s (%s)", s.Path, s.Type)
	}
	return fmt.Sprintf("%s (%s, mod=%s, nodes=%d, %s)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.NodeCount, status)
}

// SnapshotDir is where `stk export` writes snapshots by default.
func SnapshotDir() string {
	return filepath.Join(config.StateDir(), "snapshots")
}

// SnapshotPath returns a timestamped snapshot file name inside dir.
func SnapshotPath(dir string, at time.Time) string {
	return filepath.Join(dir, "inventory-"+at.UTC().Format("20060102-150405")+SnapshotExt)
}

// DiscoveryOptions configures snapshot discovery
type DiscoveryOptions struct {
	// Dir is searched for snapshot files (defaults to SnapshotDir)
	Dir string
	// ValidateAfterDiscovery opens each snapshot and checks its schema
	ValidateAfterDiscovery bool
	// IncludeInvalid keeps sources that failed validation
	IncludeInvalid bool
	// Logger receives progress messages when set
	Logger func(msg string)
}

// DiscoverSnapshots lists snapshot files in opts.Dir, newest first.
// A missing directory yields no sources and no error.
func DiscoverSnapshots(opts DiscoveryOptions) ([]DataSource, error) {
	logf := func(format string, args ...any) {
		if opts.Logger != nil {
			opts.Logger(fmt.Sprintf(format, args...))
		}
	}
	dir := opts.Dir
	if dir == "" {
		dir = SnapshotDir()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), SnapshotExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		src := DataSource{
			Type:    SourceTypeSnapshot,
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		}
		if opts.ValidateAfterDiscovery {
			if err := ValidateSource(&src); err != nil {
				logf("skipping %s: %v", src.Path, err)
				if !opts.IncludeInvalid {
					continue
				}
			}
		}
		logf("found snapshot %s", src.Path)
		sources = append(sources, src)
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Path > sources[j].Path
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
	return sources, nil
}

// SelectBestSource returns the newest valid snapshot.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	return DataSource{}, fmt.Errorf("no valid snapshot found")
}

// ValidateSource opens a snapshot and checks that it has the expected
// tables. It sets Valid, ValidationError, and NodeCount.
func ValidateSource(s *DataSource) error {
	if s.Type != SourceTypeSnapshot {
		s.Valid = true
		return nil
	}
	fail := func(err error) error {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return fail(fmt.Errorf("stat snapshot: %w", err))
	}
	if info.Size() == 0 {
		return fail(fmt.Errorf("snapshot is empty"))
	}
	s.Size = info.Size()
	s.ModTime = info.ModTime()

	r, err := NewSQLiteReader(*s)
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	n, err := r.CountNodes()
	if err != nil {
		return fail(err)
	}
	s.NodeCount = n
	s.Valid = true
	s.ValidationError = ""
	return nil
}

// SnapshotSource builds an unvalidated DataSource for path.
func SnapshotSource(path string) DataSource {
	return DataSource{Type: SourceTypeSnapshot, Path: path}
}
