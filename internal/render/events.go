package render

import (
	"encoding/json"
	"fmt"

	"github.com/alnah/go-html2pdf/internal/geometry"
)

// PageEvent reports one paginated page, already converted to points.
type PageEvent = geometry.Page

// Length is a CSS length as reported by the paginator.
type Length struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// SizeEvent reports the @page size the paginator resolved.
type SizeEvent struct {
	Width       Length `json:"width"`
	Height      Length `json:"height"`
	Format      string `json:"format,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

// RenderedEvent is the terminal signal of a successful pagination.
type RenderedEvent struct {
	Total       int     `json:"total"`
	Performance float64 `json:"performance"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Orientation string  `json:"orientation,omitempty"`
}

// Message is the human readable summary of the render.
func (e RenderedEvent) Message() string {
	return fmt.Sprintf("Rendering %d pages took %g milliseconds.", e.Total, e.Performance)
}

// Observer receives pagination events in the order the paginator emits
// them. Methods are called from a single goroutine and must not block.
type Observer interface {
	OnPage(PageEvent)
	OnSize(SizeEvent)
	OnRendered(RenderedEvent)
}

// pagePayload is the wire form of a page event: raw rectangles in CSS pixels.
type pagePayload struct {
	ID          string        `json:"id"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	StartToken  string        `json:"startToken"`
	EndToken    string        `json:"endToken"`
	BreakAfter  string        `json:"breakAfter"`
	BreakBefore string        `json:"breakBefore"`
	Position    int           `json:"position"`
	Media       geometry.Rect `json:"media"`
	Crop        geometry.Rect `json:"crop"`
}

func (p pagePayload) page() geometry.Page {
	media, crop := geometry.Boxes(p.Media, p.Crop)
	return geometry.Page{
		ID:          p.ID,
		Width:       p.Width,
		Height:      p.Height,
		StartToken:  p.StartToken,
		EndToken:    p.EndToken,
		BreakAfter:  p.BreakAfter,
		BreakBefore: p.BreakBefore,
		Position:    p.Position,
		MediaBox:    media,
		CropBox:     crop,
	}
}

type failurePayload struct {
	Message string `json:"message"`
}

// envelope is the wire form of every bridge event. All events share one
// binding so the consumer sees them in the order the page emitted them.
type envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

var eventKinds = map[string]eventKind{
	"page":     eventPage,
	"size":     eventSize,
	"rendered": eventRendered,
	"failed":   eventFailed,
}

// decodeEnvelope splits a bridge event into its kind and payload.
func decodeEnvelope(raw []byte) (eventKind, []byte, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, nil, fmt.Errorf("decoding bridge event: %w", err)
	}
	kind, ok := eventKinds[env.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown bridge event %q", env.Kind)
	}
	return kind, env.Data, nil
}
