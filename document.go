package html2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alnah/go-html2pdf/internal/dom"
	"github.com/alnah/go-html2pdf/internal/outline"
	"github.com/alnah/go-html2pdf/internal/postprocess"
)

// Document is a paginated document still open in the browser. Read its
// pages, markup or outline, print it, then Close it. Methods may be
// called from one goroutine at a time.
type Document struct {
	tab         tab
	id          string
	outlineTags []string
	cropToTrim  bool
	logger      *slog.Logger

	mu     sync.Mutex
	closed bool
}

// ID identifies the render in log records.
func (d *Document) ID() string {
	return d.id
}

// Pages returns the geometry of every page in document order.
func (d *Document) Pages() []Page {
	return d.tab.Pages()
}

// Size returns the @page size the paginator resolved, or nil.
func (d *Document) Size() *SizeEvent {
	return d.tab.Size()
}

// Summary reports the outcome of pagination.
func (d *Document) Summary() Summary {
	s := Summary{
		Pages:   len(d.tab.Pages()),
		Blocked: d.tab.Blocked(),
	}
	if r := d.tab.Rendered(); r != nil {
		s.Message = r.Message()
		s.Width = r.Width
		s.Height = r.Height
		s.Orientation = r.Orientation
	}
	return s
}

// HTML returns the paginated markup.
func (d *Document) HTML(ctx context.Context) (string, error) {
	if err := d.check(); err != nil {
		return "", err
	}
	return d.tab.HTML(ctx)
}

// Metadata returns the document title and named meta tags.
func (d *Document) Metadata(ctx context.Context) (map[string]string, error) {
	html, err := d.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return dom.Metadata(html)
}

// Outline returns the heading tree for tags, ranked in the order given.
// Nil tags use h1..h6.
func (d *Document) Outline(ctx context.Context, tags []string) ([]OutlineEntry, error) {
	entries, _, err := d.outline(ctx, tags)
	return entries, err
}

func (d *Document) outline(ctx context.Context, tags []string) ([]outline.Entry, map[string]outline.Anchor, error) {
	if err := d.check(); err != nil {
		return nil, nil, err
	}
	if tags == nil {
		tags = DefaultOutlineTags
	}
	headings, err := d.tab.Headings(ctx, tags)
	if err != nil {
		return nil, nil, err
	}
	return outline.Build(headings), outline.Anchors(headings), nil
}

// PDF prints the document and post-processes the result: Info metadata
// from the head, one TrimBox per page from the paginator's geometry and,
// when outline tags are set, collapsed bookmarks.
func (d *Document) PDF(ctx context.Context, opts *PDFOptions) ([]byte, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	printOpts, err := opts.printOptions()
	if err != nil {
		return nil, err
	}

	meta, err := d.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	tags := d.outlineTags
	if opts != nil && opts.OutlineTags != nil {
		tags = opts.OutlineTags
	}
	var (
		entries []outline.Entry
		anchors map[string]outline.Anchor
	)
	if len(tags) > 0 {
		if entries, anchors, err = d.outline(ctx, tags); err != nil {
			return nil, err
		}
	}

	raw, err := d.tab.PrintPDF(ctx, printOpts)
	if err != nil {
		return nil, err
	}

	var ppOpts []postprocess.Option
	if d.cropToTrim {
		ppOpts = append(ppOpts, postprocess.WithCropToTrim())
	}
	proc, err := postprocess.New(raw, ppOpts...)
	if err != nil {
		return nil, err
	}
	if err := proc.SetMetadata(meta); err != nil {
		return nil, fmt.Errorf("writing metadata: %w", err)
	}
	if err := proc.SetBoxes(d.tab.Pages()); err != nil {
		return nil, err
	}
	if err := proc.AddOutline(entries, anchors); err != nil {
		return nil, fmt.Errorf("writing outline: %w", err)
	}

	pdf, err := proc.Save()
	if err != nil {
		return nil, err
	}
	d.logger.Info("pdf generated", "pages", proc.PageCount(), "bookmarks", outline.Count(entries), "bytes", len(pdf))
	return pdf, nil
}

// Close closes the browser tab. It is idempotent.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.tab.Close()
}

func (d *Document) check() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDocumentClosed
	}
	return nil
}
