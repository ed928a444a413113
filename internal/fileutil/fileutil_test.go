package fileutil_test

// Notes:
// - FileURL/DirURL: expectations are built from filepath.Abs so the tests
//   hold on any working directory. Windows drive paths are not covered here.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestFileExists - Regular file detection
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	testDir := filepath.Join(tempDir, "testdir")
	if err := os.Mkdir(testDir, 0755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{
			name: "existing file returns true",
			path: testFile,
			want: true,
		},
		{
			name: "directory returns false",
			path: testDir,
			want: false,
		},
		{
			name: "nonexistent path returns false",
			path: filepath.Join(tempDir, "nonexistent"),
			want: false,
		},
		{
			name: "empty path returns false",
			path: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fileutil.FileExists(tt.path)
			if got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsURL - URL vs path classification
// ---------------------------------------------------------------------------

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/report.html", true},
		{"http://localhost:8080", true},
		{"file:///srv/docs/index.html", true},
		{"about:blank", true},
		{"data:text/html,hello", true},
		{"docs/index.html", false},
		{"./index.html", false},
		{"/abs/path/index.html", false},
		{`C:\docs\index.html`, false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsURL(tt.input); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileURL - file:// URL construction
// ---------------------------------------------------------------------------

func TestFileURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
	}{
		{name: "absolute path", path: "/srv/docs/index.html"},
		{name: "relative path", path: "docs/index.html"},
		{name: "space in name", path: "/srv/my docs/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fileutil.FileURL(tt.path)
			if err != nil {
				t.Fatalf("FileURL(%q) error: %v", tt.path, err)
			}

			u, err := url.Parse(got)
			if err != nil {
				t.Fatalf("FileURL(%q) = %q does not parse: %v", tt.path, got, err)
			}
			if u.Scheme != "file" {
				t.Errorf("scheme = %q, want file", u.Scheme)
			}
			abs, _ := filepath.Abs(tt.path)
			if u.Path != filepath.ToSlash(abs) {
				t.Errorf("path = %q, want %q", u.Path, filepath.ToSlash(abs))
			}
		})
	}
}

func TestFileURL_EscapesSpaces(t *testing.T) {
	t.Parallel()

	got, err := fileutil.FileURL("/srv/my docs/a.html")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, " ") {
		t.Errorf("FileURL() = %q, want spaces escaped", got)
	}
}

func TestDirURL(t *testing.T) {
	t.Parallel()

	got, err := fileutil.DirURL("/srv/docs/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if got != "file:///srv/docs/" {
		t.Errorf("DirURL() = %q, want %q", got, "file:///srv/docs/")
	}
}

// ---------------------------------------------------------------------------
// TestFirstExisting - Candidate search
// ---------------------------------------------------------------------------

func TestFirstExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	second := filepath.Join(dir, "second.js")
	third := filepath.Join(dir, "third.js")
	for _, p := range []string{second, third} {
		if err := os.WriteFile(p, []byte("//"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	got, ok := fileutil.FirstExisting([]string{"", filepath.Join(dir, "missing.js"), second, third})
	if !ok || got != second {
		t.Errorf("FirstExisting() = (%q, %v), want (%q, true)", got, ok, second)
	}

	if _, ok := fileutil.FirstExisting([]string{filepath.Join(dir, "nope.js")}); ok {
		t.Error("FirstExisting() found a missing file")
	}
}
