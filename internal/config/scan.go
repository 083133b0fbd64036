package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/scanpattern/internal/scanpattern"
)

// DefaultConfigPath is the path to the canonical scan defaults file.
const DefaultConfigPath = "config/scan.defaults.json"

// ScanConfig is the file form of a generator run. Every field is optional;
// unset fields fall back to the Cube1 factory values through the Get*
// accessors, so partial configs are safe.
type ScanConfig struct {
	// Scan params
	Freq        *int `json:"freq,omitempty" yaml:"freq,omitempty"`
	HorMeasFOV  *int `json:"hor_meas_fov,omitempty" yaml:"hor_meas_fov,omitempty"`
	VerMeasFOV  *int `json:"ver_meas_fov,omitempty" yaml:"ver_meas_fov,omitempty"`
	HorAngRes   *int `json:"hor_ang_res,omitempty" yaml:"hor_ang_res,omitempty"` // deci-degrees
	NumScanUp   *int `json:"num_scan_up,omitempty" yaml:"num_scan_up,omitempty"`
	NumScanDown *int `json:"num_scan_down,omitempty" yaml:"num_scan_down,omitempty"`

	// Output params
	OutputDir *string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Plot      *bool   `json:"plot,omitempty" yaml:"plot,omitempty"`
	HTML      *bool   `json:"html,omitempty" yaml:"html,omitempty"`
	Catalog   *string `json:"catalog,omitempty" yaml:"catalog,omitempty"` // sqlite path; empty disables
}

// Helper functions to create pointers
func ptrInt(v int) *int          { return &v }
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }

// EmptyScanConfig returns a ScanConfig with all fields set to nil.
func EmptyScanConfig() *ScanConfig {
	return &ScanConfig{}
}

// DefaultScanConfig returns a ScanConfig with every field populated from
// the built-in defaults.
func DefaultScanConfig() *ScanConfig {
	d := scanpattern.DefaultScanParameters()
	return &ScanConfig{
		Freq:        ptrInt(d.MirrorFrequencyHz),
		HorMeasFOV:  ptrInt(d.HorizontalFOVDeg),
		VerMeasFOV:  ptrInt(d.VerticalFOVDeg),
		HorAngRes:   ptrInt(d.HorizontalResDeciDeg),
		NumScanUp:   ptrInt(d.ScanlinesUp),
		NumScanDown: ptrInt(d.ScanlinesDown),
		OutputDir:   ptrString("."),
		Plot:        ptrBool(false),
		HTML:        ptrBool(false),
		Catalog:     ptrString(""),
	}
}

// LoadScanConfig loads a ScanConfig from a .json, .yaml or .yml file no
// larger than 1MB, then validates it.
func LoadScanConfig(path string) (*ScanConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyScanConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *ScanConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/
		"../../" + DefaultConfigPath,    // from internal/config/, cmd/bf1-pattern/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadScanConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the scan parameters that resolve from this config.
func (c *ScanConfig) Validate() error {
	if c.OutputDir != nil && *c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return c.Params().Validate()
}

// Merge returns a copy of c with every field that is set in override
// replacing the value in c.
func (c *ScanConfig) Merge(override *ScanConfig) *ScanConfig {
	out := *c
	if override == nil {
		return &out
	}
	if override.Freq != nil {
		out.Freq = override.Freq
	}
	if override.HorMeasFOV != nil {
		out.HorMeasFOV = override.HorMeasFOV
	}
	if override.VerMeasFOV != nil {
		out.VerMeasFOV = override.VerMeasFOV
	}
	if override.HorAngRes != nil {
		out.HorAngRes = override.HorAngRes
	}
	if override.NumScanUp != nil {
		out.NumScanUp = override.NumScanUp
	}
	if override.NumScanDown != nil {
		out.NumScanDown = override.NumScanDown
	}
	if override.OutputDir != nil {
		out.OutputDir = override.OutputDir
	}
	if override.Plot != nil {
		out.Plot = override.Plot
	}
	if override.HTML != nil {
		out.HTML = override.HTML
	}
	if override.Catalog != nil {
		out.Catalog = override.Catalog
	}
	return &out
}

// Params resolves the scan parameters, filling unset fields with defaults.
func (c *ScanConfig) Params() scanpattern.ScanParameters {
	return scanpattern.ScanParameters{
		MirrorFrequencyHz:    c.GetFreq(),
		HorizontalFOVDeg:     c.GetHorMeasFOV(),
		VerticalFOVDeg:       c.GetVerMeasFOV(),
		HorizontalResDeciDeg: c.GetHorAngRes(),
		ScanlinesUp:          c.GetNumScanUp(),
		ScanlinesDown:        c.GetNumScanDown(),
	}
}

// GetFreq returns the freq value or the default.
func (c *ScanConfig) GetFreq() int {
	if c.Freq == nil {
		return scanpattern.DefaultMirrorFrequencyHz
	}
	return *c.Freq
}

// GetHorMeasFOV returns the hor_meas_fov value or the default.
func (c *ScanConfig) GetHorMeasFOV() int {
	if c.HorMeasFOV == nil {
		return 72
	}
	return *c.HorMeasFOV
}

// GetVerMeasFOV returns the ver_meas_fov value or the default.
func (c *ScanConfig) GetVerMeasFOV() int {
	if c.VerMeasFOV == nil {
		return 30
	}
	return *c.VerMeasFOV
}

// GetHorAngRes returns the hor_ang_res value or the default.
func (c *ScanConfig) GetHorAngRes() int {
	if c.HorAngRes == nil {
		return 4
	}
	return *c.HorAngRes
}

// GetNumScanUp returns the num_scan_up value or the default.
func (c *ScanConfig) GetNumScanUp() int {
	if c.NumScanUp == nil {
		return 200
	}
	return *c.NumScanUp
}

// GetNumScanDown returns the num_scan_down value or the default.
func (c *ScanConfig) GetNumScanDown() int {
	if c.NumScanDown == nil {
		return 200
	}
	return *c.NumScanDown
}

// GetOutputDir returns the output_dir value or the current directory.
func (c *ScanConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return "."
	}
	return *c.OutputDir
}

// GetPlot returns the plot value or the default.
func (c *ScanConfig) GetPlot() bool {
	if c.Plot == nil {
		return false // default: no PNG diagnostics
	}
	return *c.Plot
}

// GetHTML returns the html value or the default.
func (c *ScanConfig) GetHTML() bool {
	if c.HTML == nil {
		return false
	}
	return *c.HTML
}

// GetCatalog returns the catalog path, or "" when cataloguing is disabled.
func (c *ScanConfig) GetCatalog() string {
	if c.Catalog == nil {
		return ""
	}
	return *c.Catalog
}
