package render

import "errors"

// Sentinel errors for renderer failures.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrNavigation     = errors.New("failed to load document")
	ErrAccessDenied   = errors.New("refused by access policy")
	ErrScriptInject   = errors.New("failed to inject script")
	ErrPaginate       = errors.New("pagination failed")
	ErrRenderTimeout  = errors.New("timed out waiting for pagination")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrSessionClosed  = errors.New("renderer session closed")
)
