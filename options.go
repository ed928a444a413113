package html2pdf

import (
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-html2pdf/internal/config"
)

// Option configures a Printer.
type Option func(*settings)

// settings collects options before the printer is built. Config
// overrides run after the config file and environment are applied, so
// explicit options always win.
type settings struct {
	configFile string
	overrides  []func(*config.Config)
	logger     *slog.Logger
	observer   Observer
	getenv     func(string) string
	renderer   renderer // set by tests
}

func newSettings(opts []Option) *settings {
	s := &settings{getenv: os.Getenv}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func override(fn func(*config.Config)) Option {
	return func(s *settings) { s.overrides = append(s.overrides, fn) }
}

// WithTimeout bounds each render, from page creation to the end of
// pagination.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("html2pdf: WithTimeout duration must be positive")
	}
	return override(func(c *config.Config) { c.Render.Timeout = d.String() })
}

// WithHeadless toggles headless mode. Headless is the default.
func WithHeadless(on bool) Option {
	return override(func(c *config.Config) { c.Browser.Headless = on })
}

// WithAllowLocalFiles lets the document load file:// resources.
func WithAllowLocalFiles(on bool) Option {
	return override(func(c *config.Config) { c.Security.AllowLocalFiles = on })
}

// WithAllowRemoteFiles lets the document load resources from remote hosts.
func WithAllowRemoteFiles(on bool) Option {
	return override(func(c *config.Config) { c.Security.AllowRemoteFiles = on })
}

// WithAllowedPaths restricts local resources to descendants of paths.
func WithAllowedPaths(paths ...string) Option {
	return override(func(c *config.Config) {
		c.Security.AllowedPaths = append([]string(nil), paths...)
	})
}

// WithAllowedDomains restricts remote resources to the given hosts.
func WithAllowedDomains(domains ...string) Option {
	return override(func(c *config.Config) {
		c.Security.AllowedDomains = append([]string(nil), domains...)
	})
}

// WithAdditionalScripts injects script files after the polyfill, in order.
func WithAdditionalScripts(paths ...string) Option {
	return override(func(c *config.Config) {
		c.Scripts.Additional = append([]string(nil), paths...)
	})
}

// WithPolyfill sets the path of paged.polyfill.js.
func WithPolyfill(path string) Option {
	return override(func(c *config.Config) { c.Scripts.Polyfill = path })
}

// WithBrowserBin uses a specific Chrome or Chromium binary.
func WithBrowserBin(path string) Option {
	return override(func(c *config.Config) { c.Browser.Bin = path })
}

// WithBrowserEndpoint attaches to a running browser instead of launching
// one. url is its DevTools endpoint.
func WithBrowserEndpoint(url string) Option {
	return override(func(c *config.Config) { c.Browser.Endpoint = url })
}

// WithNoSandbox disables the Chrome sandbox, as needed in most containers.
func WithNoSandbox(on bool) Option {
	return override(func(c *config.Config) { c.Browser.NoSandbox = on })
}

// WithIgnoreHTTPSErrors accepts invalid certificates. Enabled by default.
func WithIgnoreHTTPSErrors(on bool) Option {
	return override(func(c *config.Config) { c.Browser.IgnoreHTTPSErrors = on })
}

// WithLenientNavigation renders whatever loaded when navigation fails,
// instead of returning ErrNavigation.
func WithLenientNavigation(on bool) Option {
	return override(func(c *config.Config) { c.Render.LenientNavigation = on })
}

// WithCropToTrim also sets each page's CropBox to its trim rectangle, so
// viewers hide the bleed area.
func WithCropToTrim(on bool) Option {
	return override(func(c *config.Config) { c.Render.CropToTrim = on })
}

// WithOutlineTags sets the default bookmark tags for PDF output.
func WithOutlineTags(tags ...string) Option {
	return override(func(c *config.Config) {
		c.Render.OutlineTags = append([]string(nil), tags...)
	})
}

// WithConfigFile loads a YAML config by path or by name. Names are looked
// up as <name>.yaml in the working directory, then in the user config
// directory under go-html2pdf/.
func WithConfigFile(nameOrPath string) Option {
	return func(s *settings) { s.configFile = nameOrPath }
}

// WithLogger sets the structured logger. Logging is discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithObserver receives pagination events as they happen.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.observer = o }
}
