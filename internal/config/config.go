package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidTimeout  = errors.New("invalid timeout")
	ErrInvalidField    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxURLLength    = 2048 // Browser limit
	MaxDomainLength = 253  // RFC 1035
	MaxTagLength    = 32   // Outline tag selector
)

// DefaultTimeout bounds one render when nothing else is configured.
const DefaultTimeout = 60 * time.Second

// Environment variables read by ApplyEnv.
const (
	EnvBrowserBin = "ROD_BROWSER_BIN"
	EnvNoSandbox  = "ROD_NO_SANDBOX"
	EnvPolyfill   = "PAGEDJS_POLYFILL"
	EnvTimeout    = "HTML2PDF_TIMEOUT"
)

// Config holds all configuration for a printer.
type Config struct {
	Browser  BrowserConfig  `yaml:"browser"`
	Security SecurityConfig `yaml:"security"`
	Scripts  ScriptsConfig  `yaml:"scripts"`
	Render   RenderConfig   `yaml:"render"`
}

// BrowserConfig selects and launches the browser.
type BrowserConfig struct {
	Headless          bool   `yaml:"headless"`
	Bin               string `yaml:"bin"`      // Empty = rod managed Chromium
	Endpoint          string `yaml:"endpoint"` // DevTools URL of a running browser
	NoSandbox         bool   `yaml:"noSandbox"`
	IgnoreHTTPSErrors bool   `yaml:"ignoreHTTPSErrors"`
}

// SecurityConfig is the request allow-list.
type SecurityConfig struct {
	AllowLocalFiles  bool     `yaml:"allowLocalFiles"`
	AllowRemoteFiles bool     `yaml:"allowRemoteFiles"`
	AllowedPaths     []string `yaml:"allowedPaths"`
	AllowedDomains   []string `yaml:"allowedDomains"`
}

// ScriptsConfig locates the scripts injected before pagination.
type ScriptsConfig struct {
	Polyfill   string   `yaml:"polyfill"` // Empty = search default locations
	Additional []string `yaml:"additional"`
}

// RenderConfig tunes one render.
type RenderConfig struct {
	Timeout           string   `yaml:"timeout"` // Go duration, e.g. "90s"
	LenientNavigation bool     `yaml:"lenientNavigation"`
	CropToTrim        bool     `yaml:"cropToTrim"`
	OutlineTags       []string `yaml:"outlineTags"`
}

// DefaultConfig returns the configuration used when no file is loaded.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:          true,
			IgnoreHTTPSErrors: true,
		},
		Render: RenderConfig{Timeout: DefaultTimeout.String()},
	}
}

// Validate checks every field and cleans path lists in place.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}

	if err := validateFieldLength("browser.bin", c.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.endpoint", c.Browser.Endpoint, MaxURLLength); err != nil {
		return err
	}
	if c.Browser.Endpoint != "" && !isDevToolsURL(c.Browser.Endpoint) {
		return fmt.Errorf("%w: browser.endpoint: %q is not a ws(s) or http(s) URL", ErrInvalidField, c.Browser.Endpoint)
	}

	for i, p := range c.Security.AllowedPaths {
		field := fmt.Sprintf("security.allowedPaths[%d]", i)
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: %s: empty path", ErrInvalidField, field)
		}
		if err := validateFieldLength(field, p, MaxPathLength); err != nil {
			return err
		}
		c.Security.AllowedPaths[i] = filepath.Clean(p)
	}
	for i, d := range c.Security.AllowedDomains {
		field := fmt.Sprintf("security.allowedDomains[%d]", i)
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			return fmt.Errorf("%w: %s: empty domain", ErrInvalidField, field)
		}
		if err := validateFieldLength(field, d, MaxDomainLength); err != nil {
			return err
		}
		c.Security.AllowedDomains[i] = d
	}

	if c.Scripts.Polyfill != "" {
		if err := validateFieldLength("scripts.polyfill", c.Scripts.Polyfill, MaxPathLength); err != nil {
			return err
		}
	}
	for i, s := range c.Scripts.Additional {
		field := fmt.Sprintf("scripts.additional[%d]", i)
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s: empty path", ErrInvalidField, field)
		}
		if err := validateFieldLength(field, s, MaxPathLength); err != nil {
			return err
		}
	}

	for i, tag := range c.Render.OutlineTags {
		field := fmt.Sprintf("render.outlineTags[%d]", i)
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: %s: empty tag", ErrInvalidField, field)
		}
		if err := validateFieldLength(field, tag, MaxTagLength); err != nil {
			return err
		}
	}

	return nil
}

// Timeout parses Render.Timeout. Empty means DefaultTimeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Render.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Render.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: render.timeout: %v", ErrInvalidTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: render.timeout: must be positive, got %s", ErrInvalidTimeout, d)
	}
	return d, nil
}

// ApplyEnv overlays environment variables on c. getenv is os.Getenv in
// production.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if bin := getenv(EnvBrowserBin); bin != "" {
		c.Browser.Bin = bin
	}
	if v := getenv(EnvNoSandbox); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Browser.NoSandbox = on
		}
	}
	// Pre-installed browsers in CI images generally run without a sandbox.
	if getenv("CI") == "true" && c.Browser.Bin != "" {
		c.Browser.NoSandbox = true
	}
	if p := getenv(EnvPolyfill); p != "" {
		c.Scripts.Polyfill = p
	}
	if t := getenv(EnvTimeout); t != "" {
		c.Render.Timeout = t
	}
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func isDevToolsURL(s string) bool {
	for _, prefix := range []string{"ws://", "wss://", "http://", "https://"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys missing from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := unmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-html2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-html2pdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
