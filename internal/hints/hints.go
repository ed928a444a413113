// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-html2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the render timeout.
func ForTimeout() string {
	return format("for long documents, raise WithTimeout or HTML2PDF_TIMEOUT")
}

// ForPolyfillNotFound lists where the Paged.js polyfill was looked for.
func ForPolyfillNotFound(searched []string) string {
	hint := "run `npm install pagedjs` or set PAGEDJS_POLYFILL"
	if len(searched) > 0 {
		hint += " (searched " + strings.Join(searched, ", ") + ")"
	}
	return format(hint)
}

// ForNavigation returns hints for documents that failed to load.
func ForNavigation(isFile bool) string {
	if isFile {
		return format("check the path exists; local resources also need WithAllowLocalFiles")
	}
	return format("check the URL is reachable; WithLenientNavigation renders whatever loaded")
}

// ForAccessDenied names the options that admit a refused document.
func ForAccessDenied(isFile bool) string {
	if isFile {
		return format("enable WithAllowLocalFiles and list the directory in WithAllowedPaths")
	}
	return format("enable WithAllowRemoteFiles and list the host in WithAllowedDomains")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests a file path or creating a config in ~/.config/go-html2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use WithConfigFile(\"/path/to/file.yaml\")"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-html2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
