package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// defaultLookback bounds the first update when no watermark exists yet.
const defaultLookback = 30 * 24 * time.Hour

// readWatermark returns the persisted update timestamp, or now minus the
// default lookback when the file is missing or unreadable.
func readWatermark(path string, now time.Time) time.Time {
	data, err := os.ReadFile(path)
	if err != nil {
		return now.Add(-defaultLookback)
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return now.Add(-defaultLookback)
	}
	return ts
}

// writeWatermark persists the timestamp atomically via rename.
func writeWatermark(path string, ts time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create watermark dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(ts.Format(time.RFC3339)), 0o644); err != nil {
		return fmt.Errorf("failed to write watermark: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace watermark: %w", err)
	}
	return nil
}
