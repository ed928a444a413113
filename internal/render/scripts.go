package render

import _ "embed"

// Functions evaluated in the page. Each file holds one arrow function
// suitable for rod's Page.Eval.
var (
	//go:embed scripts/bridge.js
	bridgeJS string

	//go:embed scripts/headings.js
	headingsJS string

	//go:embed scripts/base.js
	baseJS string
)

// disableAutoJS stops the polyfill from paginating as soon as it loads,
// so listeners can be attached before the first page is laid out.
const disableAutoJS = `() => {
  window.PagedConfig = window.PagedConfig || {};
  window.PagedConfig.auto = false;
}`

// Script is a piece of JavaScript added to the document before
// pagination starts.
type Script struct {
	Name    string // shown in errors and logs
	Content string
}
