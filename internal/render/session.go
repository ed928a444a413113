// Package render drives headless Chrome through go-rod to paginate a
// document with the Paged.js polyfill.
//
// A Session owns one browser. Each Render call opens a Tab: a page with
// request interception, the polyfill and a small bridge script that
// reports every laid out page back to Go. The Tab stays open so the
// caller can read headings, the final markup or print it to PDF.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-html2pdf/internal/gate"
	"github.com/alnah/go-html2pdf/internal/process"
)

// Connection retry defaults. Chrome occasionally fails its first start
// in cold containers.
const (
	defaultConnectAttempts = 3
	defaultConnectDelay    = 500 * time.Millisecond
)

// Config configures a Session.
type Config struct {
	Headless          bool
	BrowserBin        string // empty uses rod's managed Chromium
	Endpoint          string // DevTools URL of a running browser; skips launch
	NoSandbox         bool
	IgnoreHTTPSErrors bool

	Policy            gate.Policy
	Polyfill          Script
	Scripts           []Script
	LenientNavigation bool

	ConnectAttempts uint
	ConnectDelay    time.Duration

	Observer Observer
	Logger   *slog.Logger
}

// Session is an explicitly owned browser connection. It connects lazily
// on the first Render and is safe for concurrent use.
type Session struct {
	cfg Config

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   bool
}

// NewSession returns a session that has not connected yet.
func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = defaultConnectAttempts
	}
	if cfg.ConnectDelay == 0 {
		cfg.ConnectDelay = defaultConnectDelay
	}
	return &Session{cfg: cfg}
}

// ensureBrowser lazily connects to the browser, retrying launch and
// connect together.
func (s *Session) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.browser != nil {
		return s.browser, nil
	}

	err := retry.Do(
		func() error { return s.connect() },
		retry.Context(ctx),
		retry.Attempts(s.cfg.ConnectAttempts),
		retry.Delay(s.cfg.ConnectDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.cfg.Logger.Warn("browser connect failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return s.browser, nil
}

// connect performs one launch and connect attempt. Caller holds s.mu.
func (s *Session) connect() error {
	controlURL := s.cfg.Endpoint

	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().
			Headless(s.cfg.Headless).
			Set("disable-dev-shm-usage")
		if s.cfg.BrowserBin != "" {
			l = l.Bin(s.cfg.BrowserBin)
		}
		if s.cfg.NoSandbox {
			l = l.NoSandbox(true)
		}
		if s.cfg.Policy.AllowLocal {
			l = l.Set("allow-file-access-from-files")
		}

		u, err := l.Launch()
		if err != nil {
			l.Kill()
			return fmt.Errorf("launching browser: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			process.KillProcessGroup(l.PID())
			l.Kill()
		}
		return fmt.Errorf("connecting to %s: %w", controlURL, err)
	}

	if s.cfg.IgnoreHTTPSErrors {
		if err := b.IgnoreCertErrors(true); err != nil {
			s.cfg.Logger.Warn("could not ignore certificate errors", "error", err)
		}
	}

	s.browser = b
	s.launcher = l
	s.cfg.Logger.Debug("browser connected", "url", controlURL, "launched", l != nil)
	return nil
}

// Close releases the browser. A launched browser is closed and its
// process group killed; a browser reached through Endpoint is left
// running. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.browser == nil {
		return nil
	}

	var err error
	if s.launcher != nil {
		err = s.browser.Close()
		process.KillProcessGroup(s.launcher.PID())
		s.launcher.Kill()
	}
	s.browser = nil
	s.launcher = nil
	return err
}
