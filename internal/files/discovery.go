package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"findash/internal/config"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	// View and Format are set for files named <view>_comparison.<format>.
	View   string `json:"view,omitempty"`
	Format string `json:"format,omitempty"`
}

// Discovery provides file discovery operations
type Discovery struct {
	paths *config.Paths
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(paths *config.Paths) *Discovery {
	return &Discovery{paths: paths}
}

// Workbooks finds the Excel files in the data directory, newest first.
// A missing directory yields no files.
func (d *Discovery) Workbooks() ([]FileInfo, error) {
	files, err := listFiles(d.paths.DataDir, func(name string) bool {
		ext := strings.ToLower(filepath.Ext(name))
		return (ext == ".xlsx" || ext == ".xls") && !strings.HasPrefix(name, "~$")
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(files)
	return files, nil
}

// Exports finds the reports in the exports directory, newest first.
func (d *Discovery) Exports() ([]FileInfo, error) {
	files, err := listFiles(d.paths.ExportsDir, func(name string) bool {
		switch strings.ToLower(filepath.Ext(name)) {
		case ".html", ".csv", ".pdf":
			return true
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].View, files[i].Format = parseExportName(files[i].Name)
	}
	sortNewestFirst(files)
	return files, nil
}

// FindFilesByPattern finds files in dir matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.paths.BaseDir, dir)
	}

	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

// Names returns the base names of files.
func Names(files []FileInfo) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func listFiles(dir string, keep func(name string) bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !keep(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

func parseExportName(name string) (view, format string) {
	ext := filepath.Ext(name)
	stem, ok := strings.CutSuffix(strings.TrimSuffix(name, ext), "_comparison")
	if !ok || stem == "" {
		return "", ""
	}
	return stem, strings.ToLower(strings.TrimPrefix(ext, "."))
}

func sortNewestFirst(files []FileInfo) {
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
}
