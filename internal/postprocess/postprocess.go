// Package postprocess rewrites a printed PDF with the structure the
// browser cannot express: page boxes measured by the paginator, document
// metadata, and a bookmark outline.
//
// A Processor owns one parsed document (a pdfcpu context) from New to
// Save. It is not safe for concurrent use; create one per document.
package postprocess

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/alnah/go-html2pdf/internal/geometry"
)

// Sentinel errors for post-processing.
var (
	ErrEmptyPDF         = errors.New("PDF content is empty")
	ErrReadPDF          = errors.New("failed to read PDF")
	ErrWritePDF         = errors.New("failed to write PDF")
	ErrPageTree         = errors.New("invalid PDF page tree")
	ErrGeometryMismatch = errors.New("rendered page count does not match PDF page count")
)

// Option configures a Processor.
type Option func(*Processor)

// WithCropToTrim also sets each page's CropBox to its TrimBox, hiding
// bleed and printer marks in viewers.
func WithCropToTrim() Option {
	return func(p *Processor) {
		p.cropToTrim = true
	}
}

// Processor mutates the object graph of one PDF document.
type Processor struct {
	ctx        *model.Context
	cropToTrim bool
	heights    map[int]float64 // media box height per 1-based page, from SetBoxes
}

var configDirOnce sync.Once

// configuration returns a relaxed pdfcpu configuration that never touches
// the user's config directory.
func configuration() *model.Configuration {
	configDirOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// New parses pdf and prepares it for mutation.
func New(pdf []byte, opts ...Option) (*Processor, error) {
	ctx, err := read(pdf)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		ctx:     ctx,
		heights: make(map[int]float64),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func read(pdf []byte) (*model.Context, error) {
	if len(pdf) == 0 {
		return nil, ErrEmptyPDF
	}
	ctx, err := api.ReadContext(bytes.NewReader(pdf), configuration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadPDF, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadPDF, err)
	}
	return ctx, nil
}

// PageCount returns the number of pages in the document's page tree.
func (p *Processor) PageCount() int {
	return p.ctx.PageCount
}

// SetBoxes writes a MediaBox and TrimBox to every page. pages must hold
// exactly one entry per PDF page, in page order.
func (p *Processor) SetBoxes(pages []geometry.Page) error {
	if len(pages) != p.ctx.PageCount {
		return fmt.Errorf("%w: %d rendered, %d in PDF", ErrGeometryMismatch, len(pages), p.ctx.PageCount)
	}

	for i, page := range pages {
		pageNr := i + 1
		d, _, _, err := p.ctx.PageDict(pageNr, false)
		if err != nil {
			return fmt.Errorf("%w: page %d: %v", ErrPageTree, pageNr, err)
		}
		if d == nil {
			return fmt.Errorf("%w: page %d missing", ErrPageTree, pageNr)
		}

		media := page.MediaBox
		d["MediaBox"] = rect(0, 0, media.Width, media.Height)

		llx, lly, urx, ury := geometry.Trim(page)
		d["TrimBox"] = rect(llx, lly, urx, ury)
		if p.cropToTrim {
			d["CropBox"] = rect(llx, lly, urx, ury)
		}

		p.heights[pageNr] = media.Height
	}
	return nil
}

// Save serializes the mutated document.
func (p *Processor) Save() ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(p.ctx, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return buf.Bytes(), nil
}

// mediaHeight returns the page height in points. Boxes written by SetBoxes
// win; otherwise the MediaBox is looked up through the inherited page tree.
func (p *Processor) mediaHeight(pageNr int, d types.Dict) float64 {
	if h, ok := p.heights[pageNr]; ok {
		return h
	}
	for depth := 0; d != nil && depth < maxTreeDepth; depth++ {
		if o, ok := d["MediaBox"]; ok {
			arr, err := p.ctx.DereferenceArray(o)
			if err == nil && len(arr) == 4 {
				return number(arr[3]) - number(arr[1])
			}
		}
		parent, ok := d["Parent"]
		if !ok {
			break
		}
		next, err := p.ctx.DereferenceDict(parent)
		if err != nil {
			break
		}
		d = next
	}
	return 0
}

// maxTreeDepth bounds the walk up a page tree with a bad Parent cycle.
const maxTreeDepth = 32

func rect(llx, lly, urx, ury float64) types.Array {
	return types.Array{
		types.Float(llx),
		types.Float(lly),
		types.Float(urx),
		types.Float(ury),
	}
}

// number reads a PDF numeric object.
func number(o types.Object) float64 {
	switch v := o.(type) {
	case types.Float:
		return float64(v)
	case types.Integer:
		return float64(v)
	}
	return 0
}
