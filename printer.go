package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/gate"
	"github.com/alnah/go-html2pdf/internal/geometry"
	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/outline"
	"github.com/alnah/go-html2pdf/internal/render"
)

// renderer abstracts the browser session to allow testing without Chrome.
type renderer interface {
	Render(ctx context.Context, src render.Source) (tab, error)
	Close() error
}

// tab abstracts one paginated document held open in the browser.
type tab interface {
	Pages() []geometry.Page
	Size() *render.SizeEvent
	Rendered() *render.RenderedEvent
	Blocked() int64
	HTML(ctx context.Context) (string, error)
	Headings(ctx context.Context, tags []string) ([]outline.Heading, error)
	PrintPDF(ctx context.Context, opts render.PrintOptions) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var (
	_ renderer = (*sessionRenderer)(nil)
	_ tab      = (*render.Tab)(nil)
)

// sessionRenderer adapts *render.Session to renderer.
type sessionRenderer struct {
	*render.Session
}

func (r sessionRenderer) Render(ctx context.Context, src render.Source) (tab, error) {
	t, err := r.Session.Render(ctx, src)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// polyfillRelPath is where npm installs the Paged.js polyfill.
var polyfillRelPath = filepath.Join("node_modules", "pagedjs", "dist", "paged.polyfill.js")

// Printer renders HTML documents with Paged.js and turns them into PDFs.
// It owns one browser, started on first use. A Printer is safe for
// concurrent use; each render gets its own tab. Close it when done.
type Printer struct {
	renderer    renderer
	timeout     time.Duration
	outlineTags []string
	cropToTrim  bool
	logger      *slog.Logger
}

// NewPrinter builds a printer from defaults, an optional config file, the
// environment and opts, in that order of precedence. The browser is not
// started until the first render.
func NewPrinter(opts ...Option) (*Printer, error) {
	s := newSettings(opts)

	cfg, err := s.config()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	p := &Printer{
		renderer:    s.renderer,
		timeout:     timeout,
		outlineTags: cfg.Render.OutlineTags,
		cropToTrim:  cfg.Render.CropToTrim,
		logger:      s.logger,
	}

	if p.renderer == nil {
		sess, err := newSession(cfg, s)
		if err != nil {
			return nil, err
		}
		p.renderer = sessionRenderer{sess}
	}
	return p, nil
}

// config resolves the effective configuration.
func (s *settings) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.configFile != "" {
		loaded, err := config.LoadConfig(s.configFile)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(nil))
			}
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(s.getenv)
	for _, fn := range s.overrides {
		fn(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSession loads the scripts and prepares a browser session.
func newSession(cfg *config.Config, s *settings) (*render.Session, error) {
	polyfill, err := loadPolyfill(cfg.Scripts.Polyfill)
	if err != nil {
		return nil, err
	}

	scripts := make([]render.Script, 0, len(cfg.Scripts.Additional))
	for _, path := range cfg.Scripts.Additional {
		sc, err := loadScript(path)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, sc)
	}

	return render.NewSession(render.Config{
		Headless:          cfg.Browser.Headless,
		BrowserBin:        cfg.Browser.Bin,
		Endpoint:          cfg.Browser.Endpoint,
		NoSandbox:         cfg.Browser.NoSandbox,
		IgnoreHTTPSErrors: cfg.Browser.IgnoreHTTPSErrors,
		Policy: gate.Policy{
			AllowLocal:     cfg.Security.AllowLocalFiles,
			AllowRemote:    cfg.Security.AllowRemoteFiles,
			AllowedPaths:   cfg.Security.AllowedPaths,
			AllowedDomains: cfg.Security.AllowedDomains,
		},
		Polyfill:          polyfill,
		Scripts:           scripts,
		LenientNavigation: cfg.Render.LenientNavigation,
		Observer:          s.observer,
		Logger:            s.logger,
	}), nil
}

// loadPolyfill reads the polyfill from path, or when path is empty from
// the nearest node_modules between the working directory and the root.
func loadPolyfill(path string) (render.Script, error) {
	candidates := []string{path}
	if path == "" {
		candidates = polyfillCandidates()
	}

	found, ok := fileutil.FirstExisting(candidates)
	if !ok {
		return render.Script{}, fmt.Errorf("%w%s", ErrPolyfillNotFound, hints.ForPolyfillNotFound(candidates))
	}
	return loadScript(found)
}

func polyfillCandidates() []string {
	dir, err := os.Getwd()
	if err != nil {
		return []string{polyfillRelPath}
	}
	var out []string
	for {
		out = append(out, filepath.Join(dir, polyfillRelPath))
		parent := filepath.Dir(dir)
		if parent == dir {
			return out
		}
		dir = parent
	}
}

func loadScript(path string) (render.Script, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- script path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return render.Script{}, fmt.Errorf("%w: %s", ErrScriptNotFound, path)
		}
		return render.Script{}, fmt.Errorf("reading script %q: %w", path, err)
	}
	return render.Script{Name: filepath.Base(path), Content: string(content)}, nil
}

// Render paginates in and returns the open document. The caller must
// Close it. The printer timeout bounds pagination only; later calls on
// the Document follow their own context.
func (p *Printer) Render(ctx context.Context, in Input) (*Document, error) {
	src, err := in.source()
	if err != nil {
		return nil, err
	}
	src.ID = uuid.New().String()
	logger := p.logger.With("render", src.ID)

	target := src.URL
	if target == "" {
		target = "inline"
	}
	logger.Debug("render started", "url", target)

	rctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	t, err := p.renderer.Render(rctx, src)
	if err != nil {
		logger.Error("render failed", "url", target, "error", err)
		return nil, withHint(err, strings.HasPrefix(src.URL, "file:"))
	}

	return &Document{
		tab:         t,
		id:          src.ID,
		outlineTags: p.outlineTags,
		cropToTrim:  p.cropToTrim,
		logger:      logger,
	}, nil
}

// PDF renders in and returns the post-processed PDF.
func (p *Printer) PDF(ctx context.Context, in Input, opts *PDFOptions) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	doc, err := p.Render(ctx, in)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.PDF(ctx, opts)
}

// HTML renders in and returns the paginated markup.
func (p *Printer) HTML(ctx context.Context, in Input) (string, error) {
	doc, err := p.Render(ctx, in)
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return doc.HTML(ctx)
}

// Close releases the browser.
func (p *Printer) Close() error {
	if p.renderer != nil {
		return p.renderer.Close()
	}
	return nil
}

// withHint appends an actionable hint to known renderer failures.
func withHint(err error, isFile bool) error {
	switch {
	case errors.Is(err, ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, ErrRenderTimeout):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	case errors.Is(err, ErrAccessDenied):
		return fmt.Errorf("%w%s", err, hints.ForAccessDenied(isFile))
	case errors.Is(err, ErrNavigation):
		return fmt.Errorf("%w%s", err, hints.ForNavigation(isFile))
	default:
		return err
	}
}
