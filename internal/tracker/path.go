package tracker

import (
	"path/filepath"
	"strings"
)

// DefaultDataFileName is used when no file name is configured.
const DefaultDataFileName = ".timetracker"

// NormalizeSubpath trims whitespace and strips leading and trailing path
// separators. An empty result means no subpath.
func NormalizeSubpath(subpath string) string {
	s := strings.TrimSpace(subpath)
	return strings.Trim(s, `/\`)
}

func normalizeDataFileName(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultDataFileName
	}
	return name
}

func trackingFilePath(root, subpath, fileName string) string {
	if subpath != "" {
		return filepath.Join(root, subpath, fileName)
	}
	return filepath.Join(root, fileName)
}
