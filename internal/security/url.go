package security

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// CheckURL decides whether a web request may be issued.
//
// Only http and https URLs pass. Loopback and private-range hosts are
// rejected by a literal prefix check on the hostname string; this is an
// advisory guard, not a CIDR match, and does not resolve DNS.
func (p *Policy) CheckURL(rawURL string) Decision {
	if !p.safeMode {
		p.logger.Warn("safe mode disabled, allowing URL", zap.String("url", rawURL))
		return Allow()
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return Deny("URL must start with http:// or https://")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Deny(fmt.Sprintf("Error parsing URL: %v", err))
	}

	hostname := strings.ToLower(parsed.Hostname())

	if hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1" {
		p.logger.Warn("blocked access to localhost URL", zap.String("url", rawURL))
		return Deny("Access to localhost URLs is restricted")
	}

	for _, prefix := range privateHostPrefixes {
		if strings.HasPrefix(hostname, prefix) {
			p.logger.Warn("blocked access to private IP URL", zap.String("url", rawURL))
			return Deny("Access to private IP URLs is restricted")
		}
	}

	if blockedSchemes[parsed.Scheme] {
		p.logger.Warn("blocked access to restricted protocol", zap.String("scheme", parsed.Scheme))
		return Deny(fmt.Sprintf("The %s protocol is restricted", parsed.Scheme))
	}

	return Allow()
}
