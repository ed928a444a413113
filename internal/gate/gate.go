// Package gate decides which resources the browser may fetch while a
// document renders.
//
// A request is checked against two switches (local files, remote hosts)
// and two allow-lists (path prefixes, host names). Empty allow-lists allow
// everything the switches allow. A refused request aborts that one
// sub-resource; it never fails the render.
package gate

import (
	"net/url"
	"path/filepath"
	"slices"
	"strings"
)

// Policy is the request allow-list for one renderer session.
type Policy struct {
	AllowLocal     bool
	AllowRemote    bool
	AllowedPaths   []string
	AllowedDomains []string
}

// Decision is the outcome of Allow. Reason is empty when allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

// Reasons reported for refused requests.
const (
	ReasonPathNotAllowed   = "path outside allowed paths"
	ReasonLocalDisabled    = "local file access disabled"
	ReasonDomainNotAllowed = "domain not allowed"
	ReasonRemoteDisabled   = "remote access disabled"
)

// IsPathAllowed reports whether path is a descendant of an allowed path.
// A path equal to an allowed prefix, or one that escapes it through "..",
// is refused.
func (p *Policy) IsPathAllowed(path string) bool {
	if len(p.AllowedPaths) == 0 {
		return true
	}
	for _, parent := range p.AllowedPaths {
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			continue
		}
		if rel == "." || rel == ".." || filepath.IsAbs(rel) {
			continue
		}
		if strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return true
	}
	return false
}

// IsDomainAllowed reports whether host is in the allowed domains.
func (p *Policy) IsDomainAllowed(host string) bool {
	if len(p.AllowedDomains) == 0 {
		return true
	}
	return slices.Contains(p.AllowedDomains, host)
}

// Allow applies the full rule to a request URL. File URLs need local
// access and an allowed path; URLs with a host need remote access and an
// allowed domain. Anything else (data:, blob:, about:) passes.
func (p *Policy) Allow(u *url.URL) Decision {
	if u == nil {
		return Decision{Allowed: true}
	}

	if u.Scheme == "file" {
		path := filepath.FromSlash(u.Path)
		if !p.IsPathAllowed(path) {
			return Decision{Reason: ReasonPathNotAllowed}
		}
		if !p.AllowLocal {
			return Decision{Reason: ReasonLocalDisabled}
		}
	}

	if u.Host != "" {
		if !p.IsDomainAllowed(u.Host) {
			return Decision{Reason: ReasonDomainNotAllowed}
		}
		if !p.AllowRemote {
			return Decision{Reason: ReasonRemoteDisabled}
		}
	}

	return Decision{Allowed: true}
}
