// Package urlutil provides URL helpers for media references.
package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// NormalizeBaseURL adds an http:// scheme when none is present and strips
// trailing slashes.
//
//	"www.mysite.com"      -> "http://www.mysite.com"
//	"https://mysite.com/" -> "https://mysite.com"
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// JoinPath joins a base URL with a path, ensuring single slashes.
func JoinPath(baseURL, p string) string {
	if baseURL == "" {
		return p
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(p, "/")
}

// IsRemoteURL reports whether u is an http(s) or protocol-relative URL.
func IsRemoteURL(u string) bool {
	return strings.HasPrefix(u, "http://") ||
		strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "//")
}

// FileName returns the unescaped last path segment of u, ignoring query and
// fragment. It returns "" when u has no usable segment.
func FileName(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	switch base {
	case ".", "/", "":
		return ""
	}
	return base
}
