package html2pdf

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/alnah/go-html2pdf/internal/geometry"
	"github.com/alnah/go-html2pdf/internal/outline"
	"github.com/alnah/go-html2pdf/internal/postprocess"
	"github.com/alnah/go-html2pdf/internal/render"
)

// ---------------------------------------------------------------------------
// Test options
// ---------------------------------------------------------------------------

func withRenderer(r renderer) Option {
	return func(s *settings) { s.renderer = r }
}

// withEnv replaces the process environment with env.
func withEnv(env map[string]string) Option {
	return func(s *settings) {
		s.getenv = func(k string) string { return env[k] }
	}
}

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// mockRenderer implements renderer for testing.
type mockRenderer struct {
	mu       sync.Mutex
	tab      *mockTab
	err      error
	calls    int
	sources  []render.Source
	deadline bool
	closed   int
}

func (m *mockRenderer) Render(ctx context.Context, src render.Source) (tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.sources = append(m.sources, src)
	_, m.deadline = ctx.Deadline()
	if m.err != nil {
		return nil, m.err
	}
	return m.tab, nil
}

func (m *mockRenderer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// mockTab implements tab for testing.
type mockTab struct {
	pages    []geometry.Page
	size     *render.SizeEvent
	rendered *render.RenderedEvent
	blocked  int64
	html     string
	headings []outline.Heading
	pdf      []byte

	htmlErr  error
	printErr error

	mu         sync.Mutex
	printOpts  []render.PrintOptions
	headingReq [][]string
	closed     int
}

func (m *mockTab) Pages() []geometry.Page          { return m.pages }
func (m *mockTab) Size() *render.SizeEvent         { return m.size }
func (m *mockTab) Rendered() *render.RenderedEvent { return m.rendered }
func (m *mockTab) Blocked() int64                  { return m.blocked }

func (m *mockTab) HTML(context.Context) (string, error) {
	return m.html, m.htmlErr
}

func (m *mockTab) Headings(_ context.Context, tags []string) ([]outline.Heading, error) {
	m.mu.Lock()
	m.headingReq = append(m.headingReq, tags)
	m.mu.Unlock()

	out := make([]outline.Heading, len(m.headings))
	for i, h := range m.headings {
		h.Rank = outline.Rank(tags, h.Tag)
		out[i] = h
	}
	return out, nil
}

func (m *mockTab) PrintPDF(_ context.Context, opts render.PrintOptions) ([]byte, error) {
	m.mu.Lock()
	m.printOpts = append(m.printOpts, opts)
	m.mu.Unlock()
	if m.printErr != nil {
		return nil, m.printErr
	}
	return m.pdf, nil
}

func (m *mockTab) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const sampleHTML = `<!DOCTYPE html><html><head>
<title>Field Guide</title>
<meta name="author" content="Ana Silva">
<meta name="description" content="Birds of the coast">
</head><body><div class="pagedjs_pages"></div></body></html>`

// letterPages returns n US Letter pages with a 0.5in content inset.
func letterPages(n int) []geometry.Page {
	pages := make([]geometry.Page, n)
	for i := range pages {
		media, crop := geometry.Boxes(
			geometry.Rect{Y: float64(i) * 1056, Width: 816, Height: 1056},
			geometry.Rect{X: 48, Y: float64(i)*1056 + 48, Width: 720, Height: 960},
		)
		pages[i] = geometry.Page{ID: fmt.Sprintf("page-%d", i+1), Position: i, MediaBox: media, CropBox: crop}
	}
	return pages
}

// sampleHeadings is h1, h1, h2 across three pages.
func sampleHeadings() []outline.Heading {
	return []outline.Heading{
		{Tag: "h1", Text: "Shorebirds", ID: "shorebirds", Order: 0, Anchor: &outline.Anchor{Page: 0, Top: 36}},
		{Tag: "h1", Text: "Seabirds", ID: "seabirds", Order: 1, Anchor: &outline.Anchor{Page: 1, Top: 36}},
		{Tag: "h2", Text: "Gulls", ID: "gulls", Order: 2, Anchor: &outline.Anchor{Page: 2, Top: 36}},
	}
}

// newMockTab returns a three page document that prints to a matching PDF.
func newMockTab(t *testing.T) *mockTab {
	t.Helper()
	return &mockTab{
		pages:    letterPages(3),
		rendered: &render.RenderedEvent{Total: 3, Performance: 120, Width: 816, Height: 1056, Orientation: "portrait"},
		html:     sampleHTML,
		headings: sampleHeadings(),
		pdf:      blankPDF(t, 3, 612, 792),
	}
}

// blankPDF returns a valid PDF with n empty pages of w x h points.
func blankPDF(t *testing.T, n int, w, h float64) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	var kids bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&kids, "%d 0 R ", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), n))
	for i := 0; i < n; i++ {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << >> >>", w, h))
	}

	xref := buf.Len()
	size := len(offsets) + 1
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", size)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, xref)
	return buf.Bytes()
}

// readPDF parses and validates output. Info runs first so pdfcpu's config
// directory is already disabled when the default configuration is built.
func readPDF(t *testing.T, pdf []byte) *model.Context {
	t.Helper()
	if _, err := postprocess.Info(pdf); err != nil {
		t.Fatalf("reading output: %v", err)
	}
	ctx, err := api.ReadContext(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		t.Fatalf("validating output: %v", err)
	}
	return ctx
}

// inspectPDF reports how many pages carry a TrimBox and whether the
// catalog has an outline.
func inspectPDF(t *testing.T, pdf []byte) (trimBoxes int, outlined bool) {
	t.Helper()
	ctx := readPDF(t, pdf)
	for i := 1; i <= ctx.PageCount; i++ {
		if trimBox(t, ctx, i) != nil {
			trimBoxes++
		}
	}
	root, err := ctx.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	_, outlined = root["Outlines"]
	return trimBoxes, outlined
}

// trimBox returns a page's TrimBox as [llx lly urx ury], nil if unset.
func trimBox(t *testing.T, ctx *model.Context, pageNr int) []float64 {
	t.Helper()
	d, _, _, err := ctx.PageDict(pageNr, false)
	if err != nil {
		t.Fatalf("PageDict(%d): %v", pageNr, err)
	}
	o, ok := d["TrimBox"]
	if !ok {
		return nil
	}
	arr, err := ctx.DereferenceArray(o)
	if err != nil {
		t.Fatalf("page %d TrimBox: %v", pageNr, err)
	}
	out := make([]float64, len(arr))
	for i, v := range arr {
		if out[i], err = ctx.DereferenceNumber(v); err != nil {
			t.Fatalf("page %d TrimBox[%d]: %v", pageNr, i, err)
		}
	}
	return out
}

// bookmarkNode is an outline item read back from output.
type bookmarkNode struct {
	title    string
	children []bookmarkNode
}

// readBookmarks walks the document outline from the catalog.
func readBookmarks(t *testing.T, ctx *model.Context) []bookmarkNode {
	t.Helper()
	root, err := ctx.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	outlines, err := ctx.DereferenceDict(root["Outlines"])
	if err != nil {
		t.Fatalf("Outlines: %v", err)
	}
	if outlines == nil {
		return nil
	}
	return readBookmarkSiblings(t, ctx, outlines["First"])
}

func readBookmarkSiblings(t *testing.T, ctx *model.Context, first types.Object) []bookmarkNode {
	t.Helper()
	var nodes []bookmarkNode
	for o := first; o != nil; {
		d, err := ctx.DereferenceDict(o)
		if err != nil {
			t.Fatalf("outline item: %v", err)
		}
		title, err := ctx.DereferenceText(d["Title"])
		if err != nil {
			t.Fatalf("outline title: %v", err)
		}
		nodes = append(nodes, bookmarkNode{
			title:    title,
			children: readBookmarkSiblings(t, ctx, d["First"]),
		})
		o = d["Next"]
	}
	return nodes
}

// newTestPrinter builds a printer over r with an empty environment.
func newTestPrinter(t *testing.T, r renderer, opts ...Option) *Printer {
	t.Helper()
	opts = append([]Option{withRenderer(r), withEnv(nil)}, opts...)
	p, err := NewPrinter(opts...)
	if err != nil {
		t.Fatalf("NewPrinter() error: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}
