package html2pdf

import (
	"errors"

	"github.com/alnah/go-html2pdf/internal/postprocess"
	"github.com/alnah/go-html2pdf/internal/render"
	"github.com/alnah/go-html2pdf/internal/units"
)

// Sentinel errors for library operations. Failures are wrapped, so test
// them with errors.Is.
var (
	// Renderer errors.
	ErrBrowserConnect = render.ErrBrowserConnect
	ErrPageCreate     = render.ErrPageCreate
	ErrNavigation     = render.ErrNavigation
	ErrAccessDenied   = render.ErrAccessDenied
	ErrScriptInject   = render.ErrScriptInject
	ErrPaginate       = render.ErrPaginate
	ErrRenderTimeout  = render.ErrRenderTimeout
	ErrPDFGeneration  = render.ErrPDFGeneration
	ErrPrinterClosed  = render.ErrSessionClosed

	// Post-processing errors.
	ErrEmptyPDF         = postprocess.ErrEmptyPDF
	ErrReadPDF          = postprocess.ErrReadPDF
	ErrWritePDF         = postprocess.ErrWritePDF
	ErrGeometryMismatch = postprocess.ErrGeometryMismatch

	// Setup errors.
	ErrPolyfillNotFound = errors.New("Paged.js polyfill not found")
	ErrScriptNotFound   = errors.New("script not found")

	// Input validation errors.
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidLength      = units.ErrInvalidLength
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrDocumentClosed     = errors.New("document closed")
)
