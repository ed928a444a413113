// Package dom reads document metadata from rendered markup.
package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Metadata collects the document title and every named meta tag.
// The <title> text is stored under "title"; each <meta name content>
// under its name. A later meta tag with the same name wins, and a meta
// tag named "title" overrides the <title> element.
func Metadata(markup string) (map[string]string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	meta := make(map[string]string)
	titleSeen := false
	var named [][2]string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if !titleSeen && !inSVG(n) {
					titleSeen = true
					meta["title"] = strings.TrimSpace(textContent(n))
				}
			case atom.Meta:
				if name := attr(n, "name"); name != "" {
					named = append(named, [2]string{name, attr(n, "content")})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, kv := range named {
		meta[kv[0]] = kv[1]
	}
	return meta, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// inSVG reports whether n is an SVG <title>, which names a graphic,
// not the document.
func inSVG(n *html.Node) bool {
	return n.Namespace == "svg"
}
