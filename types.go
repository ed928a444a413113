package html2pdf

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/go-html2pdf/internal/fileutil"
	"github.com/alnah/go-html2pdf/internal/geometry"
	"github.com/alnah/go-html2pdf/internal/outline"
	"github.com/alnah/go-html2pdf/internal/render"
	"github.com/alnah/go-html2pdf/internal/units"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// DefaultOutlineTags are the heading tags used by WithOutline.
var DefaultOutlineTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// Geometry and event types shared with the renderer.
type (
	Page          = geometry.Page
	Box           = geometry.Box
	OutlineEntry  = outline.Entry
	Observer      = render.Observer
	PageEvent     = render.PageEvent
	SizeEvent     = render.SizeEvent
	RenderedEvent = render.RenderedEvent
	Length        = render.Length
)

// Input is the document to render. Set exactly one of URL, Path and HTML.
type Input struct {
	URL     string // http(s) or file URL
	Path    string // local file, relative to the working directory
	HTML    string // inline markup
	BaseURL string // resolves relative references of HTML (optional)
}

// ParseInput classifies s the way a command line would: anything that
// parses as an absolute URL is a URL, everything else a file path.
func ParseInput(s string) Input {
	if fileutil.IsURL(s) {
		return Input{URL: s}
	}
	return Input{Path: s}
}

// Validate checks that exactly one source is set.
func (in Input) Validate() error {
	set := 0
	for _, v := range []string{in.URL, in.Path, in.HTML} {
		if v != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return fmt.Errorf("%w: one of URL, Path or HTML is required", ErrInvalidInput)
	case set > 1:
		return fmt.Errorf("%w: URL, Path and HTML are mutually exclusive", ErrInvalidInput)
	}
	if in.URL != "" && !fileutil.IsURL(in.URL) {
		return fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidInput, in.URL)
	}
	if in.BaseURL != "" && in.HTML == "" {
		return fmt.Errorf("%w: BaseURL only applies to HTML input", ErrInvalidInput)
	}
	return nil
}

// source resolves in to what the renderer loads. Paths become file URLs.
func (in Input) source() (render.Source, error) {
	if err := in.Validate(); err != nil {
		return render.Source{}, err
	}
	switch {
	case in.HTML != "":
		return render.Source{HTML: in.HTML, BaseURL: in.BaseURL}, nil
	case in.Path != "":
		u, err := fileutil.FileURL(in.Path)
		if err != nil {
			return render.Source{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return render.Source{URL: u}, nil
	default:
		return render.Source{URL: in.URL}, nil
	}
}

// PDFOptions configures PDF output. A nil *PDFOptions uses the CSS @page
// size and the printer's default outline tags.
type PDFOptions struct {
	Width       string   // CSS length, e.g. "8.5in" or "210mm"; empty = @page size
	Height      string   // CSS length
	Orientation string   // "portrait" or "landscape"
	OutlineTags []string // heading tags in rank order; nil = printer default
}

// WithOutline returns a copy of o whose bookmarks follow h1..h6.
func (o *PDFOptions) WithOutline() *PDFOptions {
	var c PDFOptions
	if o != nil {
		c = *o
	}
	c.OutlineTags = slices.Clone(DefaultOutlineTags)
	return &c
}

// Validate checks lengths and orientation.
// Returns nil if o is nil (nil means use defaults).
func (o *PDFOptions) Validate() error {
	_, err := o.printOptions()
	return err
}

func (o *PDFOptions) printOptions() (render.PrintOptions, error) {
	var p render.PrintOptions
	if o == nil {
		return p, nil
	}

	var err error
	if o.Width != "" {
		if p.Width, err = units.ParseLength(o.Width); err != nil {
			return p, fmt.Errorf("width: %w", err)
		}
	}
	if o.Height != "" {
		if p.Height, err = units.ParseLength(o.Height); err != nil {
			return p, fmt.Errorf("height: %w", err)
		}
	}

	switch strings.ToLower(o.Orientation) {
	case "", OrientationPortrait:
	case OrientationLandscape:
		p.Landscape = true
	default:
		return p, fmt.Errorf("%w: %q (must be portrait or landscape)", ErrInvalidOrientation, o.Orientation)
	}

	for _, tag := range o.OutlineTags {
		if strings.TrimSpace(tag) == "" {
			return p, fmt.Errorf("%w: empty outline tag", ErrInvalidInput)
		}
	}
	return p, nil
}

// Summary describes a finished render.
type Summary struct {
	Pages       int
	Message     string // e.g. "Rendering 3 pages took 120 milliseconds."
	Width       float64
	Height      float64
	Orientation string
	Blocked     int64 // requests refused by the access policy
}
