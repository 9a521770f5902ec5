package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// PathsConfig contains file system locations. Relative directories are
// resolved against BaseDir, which defaults to the executable's directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
}

// Paths contains resolved absolute application paths
type Paths struct {
	BaseDir      string
	DataDir      string
	LogsDir      string
	ExportsDir   string
	WorkbookFile string
	TaxonomyFile string
	LogFile      string
}

// ResolvePaths resolves every configured location to an absolute path.
func (c *Config) ResolvePaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	p := &Paths{
		BaseDir:    base,
		DataDir:    under(base, c.Paths.DataDir),
		LogsDir:    under(base, c.Paths.LogsDir),
		ExportsDir: under(base, c.Paths.ExportsDir),
		LogFile:    under(base, c.Logging.FilePath),
	}
	p.WorkbookFile = under(p.DataDir, c.Data.WorkbookFile)
	if c.Data.TaxonomyFile != "" {
		p.TaxonomyFile = under(base, c.Data.TaxonomyFile)
	}
	return p, nil
}

// EnsureDirectories creates the writable directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.LogsDir, p.ExportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExportPath returns the location for a generated report file.
func (p *Paths) ExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filepath.Base(filename))
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func under(base, p string) string {
	if p == "" {
		return base
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}
