package export

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

var (
	ErrMissingProject   = errors.New("a project label is required")
	ErrMissingOutputDir = errors.New("an output directory is required")
)

// Config holds one export run's settings.
type Config struct {
	// Project is the Flywheel project label to tabulate.
	Project string

	// OutputDir is the directory the CSV is written into.
	OutputDir string

	// MinDate, when set, keeps only acquisitions created on or after it.
	MinDate time.Time

	// TabConfigPath optionally points at a YAML tabulation config.
	TabConfigPath string

	// RPS caps API request rate; zero uses the client default.
	RPS float64
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	if c.Project == "" {
		return ErrMissingProject
	}
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	return nil
}

// TabConfig controls which files are tabulated and which file-info fields
// become extra CSV columns.
type TabConfig struct {
	FileTypes []string `yaml:"file_types"`
	InfoKeys  []string `yaml:"info_keys"`
}

// DefaultTabConfig tabulates nifti files with no extra columns.
func DefaultTabConfig() TabConfig {
	return TabConfig{FileTypes: []string{"nifti"}}
}

// LoadTabConfig reads a YAML tabulation config. Omitted file_types fall back
// to the default nifti filter.
func LoadTabConfig(path string) (TabConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TabConfig{}, fmt.Errorf("read tabulation config: %w", err)
	}

	var tc TabConfig
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return TabConfig{}, fmt.Errorf("parse tabulation config %s: %w", path, err)
	}

	if len(tc.FileTypes) == 0 {
		tc.FileTypes = DefaultTabConfig().FileTypes
	}
	return tc, nil
}
