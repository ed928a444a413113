package postprocess

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/alnah/go-html2pdf/internal/outline"
)

// AddOutline replaces the document outline with entries. Each bookmark
// points at the anchor recorded for its ID; bookmarks with children start
// collapsed. An empty tree leaves the document untouched.
func (p *Processor) AddOutline(entries []outline.Entry, anchors map[string]outline.Anchor) error {
	if len(entries) == 0 {
		return nil
	}

	root, err := p.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("%w: catalog: %v", ErrPageTree, err)
	}

	outlines := types.Dict{"Type": types.Name("Outlines")}
	outlinesRef, err := p.ctx.IndRefForNewObject(outlines)
	if err != nil {
		return fmt.Errorf("%w: outline root: %v", ErrWritePDF, err)
	}

	first, last, err := p.addItems(entries, *outlinesRef, anchors)
	if err != nil {
		return err
	}
	outlines["First"] = first
	outlines["Last"] = last
	// Every item is closed, so only the top level is visible.
	outlines["Count"] = types.Integer(len(entries))

	root["Outlines"] = *outlinesRef
	root["PageMode"] = types.Name("UseOutlines")
	return nil
}

// addItems writes one sibling level under parent and recurses into
// children. Object numbers are reserved up front so Prev/Next can be wired
// before the siblings are filled in.
func (p *Processor) addItems(entries []outline.Entry, parent types.IndirectRef, anchors map[string]outline.Anchor) (first, last types.IndirectRef, err error) {
	dicts := make([]types.Dict, len(entries))
	refs := make([]types.IndirectRef, len(entries))
	for i := range entries {
		dicts[i] = types.Dict{}
		ir, err := p.ctx.IndRefForNewObject(dicts[i])
		if err != nil {
			return first, last, fmt.Errorf("%w: outline item: %v", ErrWritePDF, err)
		}
		refs[i] = *ir
	}

	for i, e := range entries {
		d := dicts[i]
		d["Title"] = encodeText(e.Title)
		d["Parent"] = parent
		if i > 0 {
			d["Prev"] = refs[i-1]
		}
		if i < len(refs)-1 {
			d["Next"] = refs[i+1]
		}

		dest, err := p.destination(anchors, e.ID)
		if err != nil {
			return first, last, err
		}
		if dest != nil {
			d["Dest"] = dest
		}

		if len(e.Children) > 0 {
			childFirst, childLast, err := p.addItems(e.Children, refs[i], anchors)
			if err != nil {
				return first, last, err
			}
			d["First"] = childFirst
			d["Last"] = childLast
			d["Count"] = types.Integer(-len(e.Children))
		}
	}

	return refs[0], refs[len(refs)-1], nil
}

// destination builds [page /XYZ left top zoom] for the anchor of id.
// A zoom of 0 keeps the viewer's zoom. Unknown anchors yield nil.
func (p *Processor) destination(anchors map[string]outline.Anchor, id string) (types.Array, error) {
	a, ok := anchors[id]
	if id == "" || !ok {
		return nil, nil
	}
	pageNr := a.Page + 1
	if pageNr < 1 || pageNr > p.ctx.PageCount {
		return nil, nil
	}

	d, pageRef, _, err := p.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrPageTree, pageNr, err)
	}
	if pageRef == nil {
		return nil, nil
	}

	top := p.mediaHeight(pageNr, d) - a.Top
	if top < 0 {
		top = 0
	}
	return types.Array{
		*pageRef,
		types.Name("XYZ"),
		types.Integer(0),
		types.Float(top),
		types.Integer(0),
	}, nil
}
