package postprocess

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// encodeText returns s as a PDF text string: UTF-16BE with a byte order
// mark, hex encoded so no escaping is needed.
func encodeText(s string) types.HexLiteral {
	return types.NewHexLiteral([]byte(types.EncodeUTF16String(s)))
}

// decodeText reads a PDF text string written as a literal or hex string.
// ok is false for any other object or a malformed string.
func decodeText(o types.Object) (s string, ok bool) {
	p, err := types.StringOrHexLiteral(o)
	if err != nil {
		return "", false
	}
	return *p, true
}
