package postprocess

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// standardKeys maps metadata names to Info dictionary entries. Aliases are
// applied first so an explicit "subject" or "creator" overrides them.
var standardKeys = map[string]string{
	"title":    "Title",
	"author":   "Author",
	"subject":  "Subject",
	"keywords": "Keywords",
	"creator":  "Creator",
}

var aliasKeys = map[string]string{
	"description": "Subject",
	"generator":   "Creator",
}

// reservedKeys are Info entries a metadata name may not overwrite. pdfcpu
// stamps Producer, CreationDate and ModDate on every write.
var reservedKeys = map[string]bool{
	"Producer":     true,
	"CreationDate": true,
	"ModDate":      true,
	"Trapped":      true,
}

// SetMetadata writes meta into the document Info dictionary. Standard
// names map to their Info entries; any other name becomes a custom entry,
// so a lower-case "producer" is kept as the custom entry "producer". Names
// that land on a reserved entry are skipped, since Save sets Producer,
// CreationDate and ModDate itself.
func (p *Processor) SetMetadata(meta map[string]string) error {
	if len(meta) == 0 {
		return nil
	}

	info, err := p.infoDict()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		_, ai := aliasKeys[strings.ToLower(keys[i])]
		_, aj := aliasKeys[strings.ToLower(keys[j])]
		if ai != aj {
			return ai
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		name := infoKey(k)
		if name == "" || reservedKeys[name] {
			continue
		}
		info[name] = encodeText(meta[k])
	}
	return nil
}

// infoDict returns the document Info dictionary, creating it if absent.
func (p *Processor) infoDict() (types.Dict, error) {
	if p.ctx.Info != nil {
		d, err := p.ctx.DereferenceDict(*p.ctx.Info)
		if err != nil {
			return nil, fmt.Errorf("%w: info dictionary: %v", ErrReadPDF, err)
		}
		if d != nil {
			return d, nil
		}
	}

	d := types.Dict{}
	ir, err := p.ctx.IndRefForNewObject(d)
	if err != nil {
		return nil, fmt.Errorf("%w: creating info dictionary: %v", ErrWritePDF, err)
	}
	p.ctx.Info = ir
	return d, nil
}

// infoKey maps a metadata name to an Info dictionary key. Custom names keep
// letters, digits, '-', '_' and '.'; other bytes become '_'.
func infoKey(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if k, ok := aliasKeys[lower]; ok {
		return k
	}
	if k, ok := standardKeys[lower]; ok {
		return k
	}

	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Info returns the string entries of a PDF's Info dictionary.
func Info(pdf []byte) (map[string]string, error) {
	ctx, err := read(pdf)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	if ctx.Info == nil {
		return out, nil
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil {
		return nil, fmt.Errorf("%w: info dictionary: %v", ErrReadPDF, err)
	}
	for k, o := range d {
		obj, err := ctx.Dereference(o)
		if err != nil {
			continue
		}
		if s, ok := decodeText(obj); ok {
			out[k] = s
		}
	}
	return out, nil
}
