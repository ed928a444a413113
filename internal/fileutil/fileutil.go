// Package fileutil provides file and path utility functions.
package fileutil

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsURL returns true if s parses as an absolute URL. Single-letter schemes
// are Windows drive letters ("C:\doc.html"), not URLs.
//
// Examples:
//   - "https://example.com/a.html" -> true
//   - "file:///srv/doc.html" -> true
//   - "about:blank" -> true
//   - "docs/index.html" -> false
//   - "C:\docs\index.html" -> false
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return len(u.Scheme) > 1
}

// FileURL returns the file:// URL of path, made absolute against the
// working directory.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed // Windows drive paths
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String(), nil
}

// DirURL returns the file:// URL of the directory holding path, with a
// trailing slash so it can serve as a base for relative references.
func DirURL(path string) (string, error) {
	u, err := FileURL(filepath.Dir(path))
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u, nil
}

// FirstExisting returns the first candidate that is a regular file.
func FirstExisting(candidates []string) (string, bool) {
	for _, c := range candidates {
		if c != "" && FileExists(c) {
			return c, true
		}
	}
	return "", false
}
