package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/scanpattern/internal/fsutil"
)

// maxRecordSize bounds Load; the largest valid pattern is well under this.
const maxRecordSize = 256 << 20

// Write stores rec as <dir>/<name>.json with four-space indentation and
// returns the path written. A partially written file is removed on error.
func Write(fsys fsutil.FileSystem, dir string, rec *Record) (path string, err error) {
	if rec == nil || rec.Name == "" {
		return "", errors.New("record has no name")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path = filepath.Join(dir, rec.Name+".json")
	w, err := fsys.Create(path)
	if err != nil {
		opsf("create %s: %v", path, err)
		return "", fmt.Errorf("failed to create record file: %w", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close record file: %w", cerr)
		}
		if err != nil {
			opsf("write %s: %v", path, err)
			_ = fsys.Remove(path)
			path = ""
		}
	}()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(rec); err != nil {
		return path, fmt.Errorf("failed to encode record: %w", err)
	}
	diagf("wrote %s (%d emitters)", path, rec.Profile.NumberOfEmitters)
	return path, nil
}

// Load reads a record previously written by Write.
func Load(fsys fsutil.FileSystem, path string) (*Record, error) {
	if ext := filepath.Ext(path); ext != ".json" {
		return nil, fmt.Errorf("record file must have .json extension, got %q", ext)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	if len(data) > maxRecordSize {
		return nil, fmt.Errorf("record file too large: %d bytes (max %d)", len(data), maxRecordSize)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record JSON: %w", err)
	}
	return &rec, nil
}
