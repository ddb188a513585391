package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultOutputDirectory is used when the reporting config names none
	DefaultOutputDirectory = "results"

	labPrefixLength = 8
	timestampLayout = "20060102_150405"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// ReportFileName returns wfo_analysis_<lab prefix>_<timestamp>.<ext>
func (p *DefaultPathManager) ReportFileName(labID string, at time.Time, ext string) string {
	prefix := strings.TrimSpace(labID)
	if runes := []rune(prefix); len(runes) > labPrefixLength {
		prefix = string(runes[:labPrefixLength])
	}
	prefix = strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(prefix)
	if prefix == "" {
		prefix = "unknown"
	}

	return fmt.Sprintf("wfo_analysis_%s_%s.%s", prefix, at.Format(timestampLayout), strings.TrimPrefix(ext, "."))
}

// EnsureDirectoryExists creates the parent directory of path if it doesn't exist
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// ReportFileName is a convenience function using the default path manager
func ReportFileName(labID string, at time.Time, ext string) string {
	return NewDefaultPathManager().ReportFileName(labID, at, ext)
}
