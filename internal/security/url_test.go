package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Cyclone1070/lmcode/internal/config"
)

func TestCheckURL_AllowsPublicHTTP(t *testing.T) {
	p := testPolicy(t, nil)

	for _, u := range []string{
		"https://example.com/page",
		"http://go.dev/doc",
		"https://api.github.com/repos?page=2",
	} {
		d := p.CheckURL(u)
		assert.True(t, d.Allowed, "expected %q to be allowed: %s", u, d.Reason)
	}
}

func TestCheckURL_RejectsNonHTTPSchemes(t *testing.T) {
	p := testPolicy(t, nil)

	for _, u := range []string{
		"ftp://example.com/file",
		"file:///etc/passwd",
		"telnet://host",
		"example.com/no-scheme",
	} {
		d := p.CheckURL(u)
		assert.False(t, d.Allowed, "expected %q to be denied", u)
		assert.Contains(t, d.Reason, "http")
	}
}

func TestCheckURL_RejectsLoopback(t *testing.T) {
	p := testPolicy(t, nil)

	for _, u := range []string{
		"http://localhost:8080/admin",
		"http://127.0.0.1/metrics",
		"https://LOCALHOST/x",
	} {
		d := p.CheckURL(u)
		assert.False(t, d.Allowed, "expected %q to be denied", u)
		assert.Contains(t, d.Reason, "localhost")
	}
}

func TestCheckURL_RejectsPrivateRanges(t *testing.T) {
	p := testPolicy(t, nil)

	for _, u := range []string{
		"http://192.168.1.1/router",
		"http://10.0.0.5/internal",
		"http://172.16.0.1/",
		"http://172.31.255.1/",
		"http://172.20.0.1/", // covered by the coarse 172.2 prefix
	} {
		d := p.CheckURL(u)
		assert.False(t, d.Allowed, "expected %q to be denied", u)
		assert.Contains(t, d.Reason, "private IP")
	}
}

func TestCheckURL_PrefixCheckIsLiteral(t *testing.T) {
	// Hostname prefix matching is a string heuristic: a public name that
	// happens to start with a private prefix is also rejected.
	p := testPolicy(t, nil)
	d := p.CheckURL("http://10.example.com/")
	assert.False(t, d.Allowed)
}

func TestCheckURL_UnsafeModeAllowsEverything(t *testing.T) {
	p := testPolicy(t, func(c *config.SecurityConfig) { c.SafeMode = false })
	d := p.CheckURL("http://127.0.0.1/anything")
	assert.True(t, d.Allowed)
}
