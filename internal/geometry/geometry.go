// Package geometry derives PDF page boxes from the rectangles the paginator
// measures for each rendered page.
package geometry

import "github.com/alnah/go-html2pdf/internal/units"

// Rect is a bounding rectangle in CSS pixels, as reported by
// getBoundingClientRect in the document viewport.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Box is a page box in points. For a crop box, X and Y are offsets from
// the owning media box origin (top-left), never document coordinates.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Page is the geometry of one paginated page, in emission order.
type Page struct {
	ID          string  `json:"id"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StartToken  string  `json:"startToken,omitempty"`
	EndToken    string  `json:"endToken,omitempty"`
	BreakAfter  string  `json:"breakAfter,omitempty"`
	BreakBefore string  `json:"breakBefore,omitempty"`
	Position    int     `json:"position"`
	MediaBox    Box     `json:"mediaBox"`
	CropBox     Box     `json:"cropBox"`
}

// Boxes converts the page and content rectangles of one page to a media
// box at the origin and a crop box offset relative to it.
func Boxes(media, crop Rect) (mediaBox, cropBox Box) {
	mediaBox = Box{
		Width:  units.ToPoints(media.Width),
		Height: units.ToPoints(media.Height),
	}
	cropBox = Box{
		Width:  units.ToPoints(crop.Width),
		Height: units.ToPoints(crop.Height),
		X:      units.ToPoints(crop.X - media.X),
		Y:      units.ToPoints(crop.Y - media.Y),
	}
	return mediaBox, cropBox
}

// Trim returns the crop box of p as a PDF rectangle (llx, lly, urx, ury).
// PDF space has a bottom-left origin, so the top-left offset is flipped.
func Trim(p Page) (llx, lly, urx, ury float64) {
	c := p.CropBox
	llx = c.X
	lly = p.MediaBox.Height - c.Y - c.Height
	return llx, lly, llx + c.Width, lly + c.Height
}
