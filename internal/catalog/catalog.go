// Package catalog records every generated scan pattern in a SQLite database
// so a profile on disk can be traced back to the parameters and frame
// geometry that produced it.
package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/scanpattern/internal/scanpattern"
	"github.com/banshee-data/scanpattern/internal/timeutil"
)

// ErrNotFound is returned by Get when no entry has the requested ID.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is one generated pattern.
type Entry struct {
	PatternID     string                     `json:"pattern_id"`
	Name          string                     `json:"name"`
	Params        scanpattern.ScanParameters `json:"params"`
	FrameRateHz   float64                    `json:"frame_rate_hz"`
	FramePeriodNs int64                      `json:"frame_period_ns"`
	PointsPerLine int                        `json:"points_per_line"`
	NumScanlines  int                        `json:"num_scanlines"`
	TotalPoints   int                        `json:"total_points"`
	Summary       *scanpattern.Summary       `json:"summary,omitempty"`
	OutputPath    string                     `json:"output_path,omitempty"`
	CreatedAtNs   int64                      `json:"created_at_ns"`
}

// EntryFromPattern describes pat as written to outputPath.
func EntryFromPattern(pat *scanpattern.Pattern, outputPath string) *Entry {
	p := pat.Params()
	summary := pat.Summary()
	return &Entry{
		Name:          p.Name(),
		Params:        p,
		FrameRateHz:   pat.FrameRateHz(),
		FramePeriodNs: pat.FramePeriodNs(),
		PointsPerLine: pat.PointsPerLine(),
		NumScanlines:  pat.NumScanlines(),
		TotalPoints:   pat.TotalPoints(),
		Summary:       &summary,
		OutputPath:    outputPath,
	}
}

// Catalog provides persistence for generated scan patterns.
type Catalog struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the catalog at path and brings its schema
// up to date.
func Open(path string) (*Catalog, error) {
	return OpenWithClock(path, timeutil.RealClock{})
}

// OpenWithClock is Open with an explicit clock for entry timestamps.
func OpenWithClock(path string, clock timeutil.Clock) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c := &Catalog{db: db, clock: clock}
	if err := c.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	diagf("opened catalog %s", path)
	return c, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record inserts e. If e.PatternID is empty a new UUID is assigned; if
// e.CreatedAtNs is zero the catalog clock supplies it.
func (c *Catalog) Record(e *Entry) error {
	if e.PatternID == "" {
		e.PatternID = uuid.New().String()
	}
	if e.CreatedAtNs == 0 {
		e.CreatedAtNs = c.clock.Now().UnixNano()
	}

	var summaryJSON sql.NullString
	if e.Summary != nil {
		b, err := json.Marshal(e.Summary)
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		summaryJSON = sql.NullString{String: string(b), Valid: true}
	}

	query := `
		INSERT INTO scan_patterns (
			pattern_id, name, freq_hz, hor_meas_fov_deg, ver_meas_fov_deg,
			hor_ang_res_ddeg, num_scan_up, num_scan_down,
			frame_rate_hz, frame_period_ns, points_per_line, num_scanlines,
			total_points, output_path, summary_json, created_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.Exec(query,
		e.PatternID,
		e.Name,
		e.Params.MirrorFrequencyHz,
		e.Params.HorizontalFOVDeg,
		e.Params.VerticalFOVDeg,
		e.Params.HorizontalResDeciDeg,
		e.Params.ScanlinesUp,
		e.Params.ScanlinesDown,
		e.FrameRateHz,
		e.FramePeriodNs,
		e.PointsPerLine,
		e.NumScanlines,
		e.TotalPoints,
		nullString(e.OutputPath),
		summaryJSON,
		e.CreatedAtNs,
	)
	if err != nil {
		opsf("insert %s: %v", e.Name, err)
		return fmt.Errorf("insert scan pattern: %w", err)
	}
	diagf("recorded %s as %s", e.Name, e.PatternID)
	return nil
}

const selectColumns = `
	SELECT pattern_id, name, freq_hz, hor_meas_fov_deg, ver_meas_fov_deg,
	       hor_ang_res_ddeg, num_scan_up, num_scan_down,
	       frame_rate_hz, frame_period_ns, points_per_line, num_scanlines,
	       total_points, output_path, summary_json, created_at_ns
	FROM scan_patterns`

// Get retrieves an entry by ID.
func (c *Catalog) Get(patternID string) (*Entry, error) {
	row := c.db.QueryRow(selectColumns+` WHERE pattern_id = ?`, patternID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, patternID)
	}
	if err != nil {
		return nil, fmt.Errorf("get scan pattern: %w", err)
	}
	return e, nil
}

// List returns every entry, newest first.
func (c *Catalog) List() ([]Entry, error) {
	return c.query(selectColumns + ` ORDER BY created_at_ns DESC, pattern_id`)
}

// FindByName returns the entries generated under name, newest first.
func (c *Catalog) FindByName(name string) ([]Entry, error) {
	return c.query(selectColumns+` WHERE name = ? ORDER BY created_at_ns DESC, pattern_id`, name)
}

func (c *Catalog) query(q string, args ...interface{}) ([]Entry, error) {
	tracef("query %q %v", q, args)
	rows, err := c.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan patterns: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scan pattern: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(r rowScanner) (*Entry, error) {
	var e Entry
	var outputPath, summaryJSON sql.NullString
	err := r.Scan(
		&e.PatternID,
		&e.Name,
		&e.Params.MirrorFrequencyHz,
		&e.Params.HorizontalFOVDeg,
		&e.Params.VerticalFOVDeg,
		&e.Params.HorizontalResDeciDeg,
		&e.Params.ScanlinesUp,
		&e.Params.ScanlinesDown,
		&e.FrameRateHz,
		&e.FramePeriodNs,
		&e.PointsPerLine,
		&e.NumScanlines,
		&e.TotalPoints,
		&outputPath,
		&summaryJSON,
		&e.CreatedAtNs,
	)
	if err != nil {
		return nil, err
	}
	e.OutputPath = outputPath.String
	if summaryJSON.Valid {
		var s scanpattern.Summary
		if err := json.Unmarshal([]byte(summaryJSON.String), &s); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
		e.Summary = &s
	}
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
