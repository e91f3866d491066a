package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the input and output locations.
type Paths struct {
	OutputDir  string `toml:"output_dir"`
	CoversDir  string `toml:"covers_dir"`
	PatchesDir string `toml:"patches_dir"`
	Database   string `toml:"database"`
	ReportDir  string `toml:"report_dir"`
}

// Process contains the optional steps of game processing.
type Process struct {
	ApplyPatches  bool `toml:"apply_patches"`
	CopyCovers    bool `toml:"copy_covers"`
	MultiDiscList bool `toml:"multidisc_list"`
	MaxNameLength int  `toml:"max_name_length"`
	KeepCue       bool `toml:"keep_cue"`
}

// Logging contains configuration for log output.
type Logging struct {
	Verbose bool `toml:"verbose"`
}

// Config encapsulates all configuration values for psiotools.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Process Process `toml:"process"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the path it was resolved to and whether that file exists. A missing
// file yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.covers_dir", &c.Paths.CoversDir},
		{"paths.patches_dir", &c.Paths.PatchesDir},
		{"paths.database", &c.Paths.Database},
		{"paths.report_dir", &c.Paths.ReportDir},
	}
	for _, f := range fields {
		expanded, err := expandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.value = expanded
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.Database == "" {
		return errors.New("paths.database must be set")
	}
	if c.Process.ApplyPatches && c.Paths.PatchesDir == "" {
		return errors.New("paths.patches_dir must be set when process.apply_patches is enabled")
	}
	if c.Process.CopyCovers && c.Paths.CoversDir == "" {
		return errors.New("paths.covers_dir must be set when process.copy_covers is enabled")
	}
	if c.Process.MaxNameLength < 1 || c.Process.MaxNameLength > maxNameLengthLimit {
		return fmt.Errorf("process.max_name_length must be between 1 and %d", maxNameLengthLimit)
	}
	return nil
}

// EnsureDirectories creates the output and report directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.ReportDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is left alone.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
