// internal/ssrf/ssrf.go
package ssrf

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// Sentinel errors let the handler distinguish a bad request from a forbidden
// target.
var (
	ErrURLTooLong      = errors.New("url exceeds maximum length")
	ErrInvalidURL      = errors.New("url is not parsable")
	ErrSchemeNotHTTP   = errors.New("url scheme must be http or https")
	ErrForbiddenTarget = errors.New("target host is not allowed")
)

// allowedHosts are the Amazon storefront domains the image proxy may reach.
// A hostname passes when it equals an entry or is a subdomain of one.
var allowedHosts = []string{
	"amazon.com",
	"amazon.ca",
	"amazon.co.uk",
	"amazon.de",
	"amazon.fr",
	"amazon.it",
	"amazon.es",
	"amazon.co.jp",
	"amazon.in",
	"amazon.com.mx",
	"amazon.com.br",
	"amazon.com.au",
	"amazon.nl",
	"media-amazon.com",
	"ssl-images-amazon.com",
}

// blockedHostNames never pass regardless of the allow-list.
var blockedHostNames = []string{
	"localhost",
	"metadata.google.internal",
}

// privateBlocks are CIDR ranges a proxied fetch must never reach.
var privateBlocks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets = append(nets, block)
	}
	return nets
}

// IsPrivateIP reports whether the IP falls inside a private, loopback, or
// link-local range.
func IsPrivateIP(ip net.IP) bool {
	for _, block := range privateBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// IsAllowedTarget is the pure allow-list predicate: the hostname must not be
// an IP literal, must not be a blocked name, and must equal or be a
// subdomain of an allowed Amazon domain.
func IsAllowedTarget(u *url.URL) bool {
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return false
	}

	for _, blocked := range blockedHostNames {
		if host == blocked {
			return false
		}
	}

	// Bare IP hostnames (dotted-quad or IPv6) are rejected outright, private
	// range or not.
	if ip := net.ParseIP(host); ip != nil {
		return false
	}

	for _, allowed := range allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// ValidateTarget parses and validates a raw proxy target URL. maxLen bounds
// the accepted URL length; zero disables the bound.
func ValidateTarget(raw string, maxLen int) (*url.URL, error) {
	if maxLen > 0 && len(raw) > maxLen {
		return nil, ErrURLTooLong
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidURL
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrSchemeNotHTTP
	}

	if !IsAllowedTarget(u) {
		return nil, ErrForbiddenTarget
	}

	return u, nil
}
