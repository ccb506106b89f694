package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

var ErrEmptyDomain = errors.New("domain is empty")

// HashKey creates a SHA256 hash of a string.
// This is useful for creating consistent, safe keys for Redis.
func HashKey(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeDomain reduces user input such as "https://www.Example.com/blog" to "example.com".
// Scheme, credentials, port, path, a leading "www." and a trailing dot are removed.
func NormalizeDomain(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrEmptyDomain
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}

	host := strings.TrimSuffix(u.Hostname(), ".")
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", ErrEmptyDomain
	}
	return host, nil
}

// TargetKey derives the grouping key of a backlink target: its URL path, "/" for an empty path.
// An unparseable target is its own key.
func TargetKey(targetURL string) string {
	u, err := url.Parse(targetURL)
	if err != nil {
		return targetURL
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// ResolveTargetURL returns stored unchanged when it is already absolute, otherwise
// https://{domain}/{path} with exactly one separating slash.
func ResolveTargetURL(stored, domain string) string {
	if u, err := url.Parse(stored); err == nil && u.IsAbs() && u.Host != "" {
		return stored
	}
	return "https://" + domain + "/" + strings.TrimLeft(stored, "/")
}

// HostOf returns the lowercased hostname of rawURL, or "" when it has none.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
