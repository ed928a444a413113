// Package html2pdf renders HTML and CSS to paginated PDF using headless
// Chrome and the Paged.js polyfill.
//
// # Quick Start
//
// Create a printer, render a document, and close when done:
//
//	p, err := html2pdf.NewPrinter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	pdf, err := p.PDF(ctx, html2pdf.ParseInput("report.html"), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("report.pdf", pdf, 0644)
//
// Use Printer.HTML to get the paginated markup instead, or Printer.Render
// to keep the document open and read its pages and outline.
//
// # Rendering Pipeline
//
// A render follows these stages:
//
//  1. Load the document in a new tab, with every sub-resource request
//     checked against the access policy
//  2. Inject the polyfill and additional scripts, then paginate
//  3. Collect each page's geometry as Paged.js lays it out
//  4. Print to PDF with Chrome, margins zero and backgrounds on
//  5. Rewrite the PDF with pdfcpu: Info metadata from <title> and <meta>,
//     a TrimBox per page, and collapsed bookmarks for the outline tags
//
// # Configuration
//
// Use functional options to customize the printer:
//
//	p, err := html2pdf.NewPrinter(
//	    html2pdf.WithTimeout(2 * time.Minute),
//	    html2pdf.WithAllowLocalFiles(true),
//	    html2pdf.WithAllowedPaths("/srv/docs"),
//	    html2pdf.WithOutlineTags("h1", "h2"),
//	)
//
// Options override a YAML file loaded with WithConfigFile, which in turn
// is overridden by the environment:
//
//	browser:
//	  noSandbox: true
//	security:
//	  allowRemoteFiles: true
//	  allowedDomains: [fonts.example.com]
//	render:
//	  timeout: 90s
//	  outlineTags: [h1, h2, h3]
//
// Per-document options are passed via PDFOptions:
//
//	pdf, err := p.PDF(ctx, in, &html2pdf.PDFOptions{
//	    Width:       "210mm",
//	    Height:      "297mm",
//	    OutlineTags: []string{"h1", "h2"},
//	})
//
// # Access Policy
//
// Every fetch is refused unless enabled, the document itself included:
// file:// URLs need WithAllowLocalFiles and, when WithAllowedPaths is set,
// a path below one of the allowed directories. URLs with a host need
// WithAllowRemoteFiles and, when WithAllowedDomains is set, a listed host.
// A refused document fails with ErrNavigation and ErrAccessDenied before a
// browser starts; a refused sub-resource fails that resource only.
//
// # Parallel Processing
//
// For batch rendering, use PrinterPool to manage multiple browsers:
//
//	pool := html2pdf.NewPrinterPool(4)
//	defer pool.Close()
//
//	p, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(p)
//	pdf, err := p.PDF(ctx, in, nil)
//
// # Browser Requirements
//
// Rendering requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
// The polyfill is looked up in node_modules/pagedjs/dist/ from the working
// directory upward; set PAGEDJS_POLYFILL or WithPolyfill to point elsewhere.
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package html2pdf
