package overlay

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Writer persists provider snapshots into the data directory:
// <provider>_current.json with the full records, <provider>_overlay.txt with
// the display lines, and combined_overlay.txt across all providers.
type Writer struct {
	dataDir string
	stale   time.Duration
}

// NewWriter creates the data directory if needed and clears *_current.json
// snapshots older than the staleness window, so a restarted service never
// serves leftover data from a previous run.
func NewWriter(dataDir string, stale time.Duration) (*Writer, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	w := &Writer{dataDir: dataDir, stale: stale}
	w.cleanupStale()
	return w, nil
}

func (w *Writer) cleanupStale() {
	matches, err := filepath.Glob(filepath.Join(w.dataDir, "*_current.json"))
	if err != nil {
		return
	}
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var snapshot struct {
			UpdatedAt time.Time `json:"updated_at"`
		}
		age := w.stale + time.Second
		if err := json.Unmarshal(raw, &snapshot); err == nil && !snapshot.UpdatedAt.IsZero() {
			age = time.Since(snapshot.UpdatedAt)
		}
		if age > w.stale {
			log.Printf("clearing stale snapshot %s (age %s)", filepath.Base(path), age.Round(time.Second))
			w.writeEmpty(path)
		}
	}
}

func (w *Writer) writeEmpty(path string) {
	empty := Data{
		UpdatedAt: time.Now().UTC(),
		Count:     0,
		Items:     []Item{},
	}
	buf, err := json.MarshalIndent(empty, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, buf, 0o644)
}

// WriteProviderData writes one provider's JSON snapshot and overlay text.
func (w *Writer) WriteProviderData(data Data) error {
	if data.Items == nil {
		data.Items = []Item{}
	}
	buf, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s snapshot: %w", data.Provider, err)
	}
	jsonPath := filepath.Join(w.dataDir, data.Provider+"_current.json")
	if err := os.WriteFile(jsonPath, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}

	textPath := filepath.Join(w.dataDir, data.Provider+"_overlay.txt")
	if err := os.WriteFile(textPath, []byte(strings.Join(data.Lines(), "\n")), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", textPath, err)
	}

	log.Printf("wrote %d %s items to %s", data.Count, data.Provider, filepath.Base(jsonPath))
	return nil
}

// WriteCombinedOverlay concatenates all providers' overlay lines into
// combined_overlay.txt. With no lines at all it writes "No data".
func (w *Writer) WriteCombinedOverlay(all []Data) error {
	var lines []string
	for _, data := range all {
		lines = append(lines, data.Lines()...)
	}
	text := "No data"
	if len(lines) > 0 {
		text = strings.Join(lines, "\n")
	}
	path := filepath.Join(w.dataDir, "combined_overlay.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write combined overlay: %w", err)
	}
	return nil
}

// DataDir returns the directory snapshots are written to.
func (w *Writer) DataDir() string { return w.dataDir }
