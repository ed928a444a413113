package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/alnah/go-html2pdf/internal/gate"
	"github.com/alnah/go-html2pdf/internal/geometry"
	"github.com/alnah/go-html2pdf/internal/outline"
	"github.com/alnah/go-html2pdf/internal/units"
)

// Source is the document to render. Exactly one of URL and HTML is set.
// BaseURL resolves relative references of inline HTML.
type Source struct {
	ID      string // correlates log lines of one render
	URL     string
	HTML    string
	BaseURL string
}

// PrintOptions control Chrome's print step. Lengths are in points; zero
// means the CSS @page size wins.
type PrintOptions struct {
	Width     float64
	Height    float64
	Landscape bool
}

// Tab is one paginated document open in the browser. Close it when done.
type Tab struct {
	page   *rod.Page
	router *rod.HijackRouter
	stops  []func() error
	events *collector
	logger *slog.Logger

	blocked   atomic.Int64
	closeOnce sync.Once
	closeErr  error
}

// Render opens src in a new page and paginates it. It returns once the
// paginator reports completion and the page container exists. Any
// failure closes the page before returning.
func (s *Session) Render(ctx context.Context, src Source) (tab *Tab, err error) {
	if (src.URL == "") == (src.HTML == "") {
		return nil, fmt.Errorf("%w: exactly one of URL and HTML must be set", ErrNavigation)
	}
	if src.URL != "" {
		if err := admit(&s.cfg.Policy, src.URL); err != nil {
			return nil, err
		}
	}

	browser, err := s.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	logger := s.cfg.Logger
	if src.ID != "" {
		logger = logger.With("render", src.ID)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	t := &Tab{page: page, logger: logger}
	defer func() {
		if err != nil {
			_ = t.Close()
		}
	}()

	if err := t.intercept(s.cfg.Policy); err != nil {
		return nil, err
	}

	p := page.Context(ctx)
	if err := t.load(p, src, s.cfg.LenientNavigation); err != nil {
		return nil, err
	}
	if err := t.inject(p, s.cfg.Polyfill, s.cfg.Scripts); err != nil {
		return nil, err
	}

	t.events = newCollector(s.cfg.Observer, logger)
	if err := t.bind(p); err != nil {
		return nil, err
	}

	if _, err := p.Eval(bridgeJS); err != nil {
		return nil, fmt.Errorf("%w: starting pagination: %v", ErrScriptInject, err)
	}

	if err := t.events.wait(ctx); err != nil {
		return nil, err
	}
	if _, err := p.Element(".pagedjs_pages"); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: waiting for page container", ErrRenderTimeout)
		}
		return nil, fmt.Errorf("%w: page container: %v", ErrPaginate, err)
	}

	pages, _, rendered := t.events.snapshot()
	attrs := []any{"pages", len(pages), "blocked", t.blocked.Load()}
	if rendered != nil {
		attrs = append(attrs, "ms", rendered.Performance)
	}
	logger.Info("document paginated", attrs...)
	return t, nil
}

// admit checks the document URL against policy before anything is
// launched. A refused document fails with ErrNavigation and ErrAccessDenied.
func admit(policy *gate.Policy, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	if d := policy.Allow(u); !d.Allowed {
		return fmt.Errorf("%w: %w: %s: %s", ErrNavigation, ErrAccessDenied, raw, d.Reason)
	}
	return nil
}

// intercept routes every request of the page through policy, the
// document request included.
func (t *Tab) intercept(policy gate.Policy) error {
	router := t.page.HijackRequests()
	err := router.Add("*", "", func(h *rod.Hijack) {
		u := h.Request.URL()
		d := policy.Allow(u)
		if !d.Allowed {
			t.blocked.Add(1)
			t.logger.Debug("request blocked", "url", u.String(), "reason", d.Reason)
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return fmt.Errorf("%w: request interception: %v", ErrPageCreate, err)
	}
	go router.Run()
	t.router = router
	return nil
}

// load puts the document into the page. With lenient set a navigation
// error is logged and rendering continues with whatever loaded.
func (t *Tab) load(p *rod.Page, src Source, lenient bool) error {
	var err error
	if src.HTML != "" {
		err = p.SetDocumentContent(src.HTML)
		if err == nil && src.BaseURL != "" {
			_, err = p.Eval(baseJS, src.BaseURL)
		}
	} else {
		err = p.Navigate(src.URL)
		if err == nil {
			err = p.WaitLoad()
		}
	}
	if err == nil {
		return nil
	}
	if lenient {
		t.logger.Warn("navigation failed, continuing", "url", src.URL, "error", err)
		return nil
	}
	return fmt.Errorf("%w: %v", ErrNavigation, err)
}

// inject disables auto start, then adds the polyfill and extra scripts in
// order.
func (t *Tab) inject(p *rod.Page, polyfill Script, scripts []Script) error {
	if polyfill.Content == "" {
		return fmt.Errorf("%w: polyfill is empty", ErrScriptInject)
	}
	if _, err := p.Eval(disableAutoJS); err != nil {
		return fmt.Errorf("%w: PagedConfig: %v", ErrScriptInject, err)
	}
	for _, sc := range append([]Script{polyfill}, scripts...) {
		if err := p.AddScriptTag("", sc.Content); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrScriptInject, sc.Name, err)
		}
	}
	return nil
}

// eventBinding is the page function the bridge script reports through.
const eventBinding = "onEvent"

// bind exposes the single callback the bridge script reports to. One
// binding is served by one goroutine, so events keep their page order.
func (t *Tab) bind(p *rod.Page) error {
	stop, err := p.Expose(eventBinding, func(payload gson.JSON) (interface{}, error) {
		kind, data, err := decodeEnvelope([]byte(payload.JSON("", "")))
		if err != nil {
			msg, _ := json.Marshal(failurePayload{Message: err.Error()})
			return nil, t.events.push(eventFailed, msg)
		}
		return nil, t.events.push(kind, data)
	})
	if err != nil {
		return fmt.Errorf("%w: binding %s: %v", ErrScriptInject, eventBinding, err)
	}
	t.stops = append(t.stops, stop)
	return nil
}

// Pages returns the geometry of every page in emission order.
func (t *Tab) Pages() []geometry.Page {
	pages, _, _ := t.events.snapshot()
	return pages
}

// Size returns the resolved @page size, or nil if none was reported.
func (t *Tab) Size() *SizeEvent {
	_, size, _ := t.events.snapshot()
	return size
}

// Rendered returns the terminal render event.
func (t *Tab) Rendered() *RenderedEvent {
	_, _, r := t.events.snapshot()
	return r
}

// Blocked returns how many requests the policy refused.
func (t *Tab) Blocked() int64 {
	return t.blocked.Load()
}

// HTML returns the serialized paginated document.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	html, err := t.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return html, nil
}

type headingPayload struct {
	Tag  string  `json:"tag"`
	Text string  `json:"text"`
	ID   string  `json:"id"`
	Page int     `json:"page"`
	Top  float64 `json:"top"`
}

// Headings returns the elements matching tags in document order, ranked by
// their position in tags. Headings outside any page have no anchor.
func (t *Tab) Headings(ctx context.Context, tags []string) ([]outline.Heading, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	res, err := t.page.Context(ctx).Eval(headingsJS, tags)
	if err != nil {
		return nil, fmt.Errorf("reading headings: %w", err)
	}

	var raw []headingPayload
	if err := json.Unmarshal([]byte(res.Value.JSON("", "")), &raw); err != nil {
		return nil, fmt.Errorf("decoding headings: %w", err)
	}

	headings := make([]outline.Heading, 0, len(raw))
	for i, h := range raw {
		heading := outline.Heading{
			Tag:   h.Tag,
			Rank:  outline.Rank(tags, h.Tag),
			Text:  strings.TrimSpace(h.Text),
			ID:    h.ID,
			Order: i,
		}
		if h.Page >= 0 {
			heading.Anchor = &outline.Anchor{Page: h.Page, Top: units.ToPoints(h.Top)}
		}
		headings = append(headings, heading)
	}
	return headings, nil
}

// PrintPDF prints the paginated document with zero margins and
// backgrounds on.
func (t *Tab) PrintPDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	req := printRequest(opts)
	reader, err := t.page.Context(ctx).PDF(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrPDFGeneration)
	}
	return pdf, nil
}

func printRequest(opts PrintOptions) *proto.PagePrintToPDF {
	req := &proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: opts.Width == 0,
		Landscape:         opts.Landscape,
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
	}
	if opts.Width > 0 {
		req.PaperWidth = floatPtr(units.PointsToInches(opts.Width))
	}
	if opts.Height > 0 {
		req.PaperHeight = floatPtr(units.PointsToInches(opts.Height))
	}
	return req
}

// Close stops interception and closes the page. It is idempotent.
func (t *Tab) Close() error {
	t.closeOnce.Do(func() {
		for _, stop := range t.stops {
			_ = stop()
		}
		if t.router != nil {
			_ = t.router.Stop()
		}
		if t.events != nil {
			t.events.close()
		}
		t.closeErr = t.page.Close()
	})
	return t.closeErr
}

func floatPtr(v float64) *float64 {
	return &v
}
