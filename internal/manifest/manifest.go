package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Origonlabs/Api-Icons/pkg/models"
)

// New snapshots records into a manifest stamped with now (UTC, second
// precision).
func New(records []models.IconRecord, now time.Time) models.Manifest {
	if records == nil {
		records = []models.IconRecord{}
	}
	return models.Manifest{
		GeneratedAt: now.UTC().Truncate(time.Second),
		Count:       len(records),
		Icons:       records,
	}
}

// Write replaces path with m in a single step: the JSON goes to a temp file
// in the same directory which is then renamed over the target, so readers
// see either the previous manifest or the new one.
func Write(path string, m models.Manifest) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp: %w", err)
	}
	// CreateTemp uses 0600
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

// Load reads a manifest written by Write and checks that count matches the
// number of icons.
func Load(path string) (models.Manifest, error) {
	var m models.Manifest

	b, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if m.Count != len(m.Icons) {
		return m, fmt.Errorf("manifest %s: count %d does not match %d icons", path, m.Count, len(m.Icons))
	}
	return m, nil
}
