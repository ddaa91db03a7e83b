package crawler

import (
	"net/url"
	"strings"
)

// Location is the slice of window.location the skip policy needs.
type Location struct {
	Hostname string
	Port     string
	Scheme   string
}

// LocationFromURL parses a raw page URL into a Location.
func LocationFromURL(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	return Location{
		Hostname: u.Hostname(),
		Port:     u.Port(),
		Scheme:   u.Scheme,
	}, nil
}

// ShouldSkip reports whether the current page is the product's own frontend,
// in which case crawling is disabled for the whole page load. An empty
// expected port means "any port". The policy fails open: anything malformed
// means "do not skip", crawling is the default behavior.
func ShouldSkip(frontendHost, frontendPort string, loc Location) bool {
	host := strings.ToLower(strings.TrimSpace(frontendHost))
	if host == "" {
		return false
	}
	if !strings.EqualFold(loc.Hostname, host) {
		return false
	}
	port := strings.TrimSpace(frontendPort)
	if port == "" {
		return true
	}
	current := loc.Port
	if current == "" {
		if strings.EqualFold(loc.Scheme, "https") {
			current = "443"
		} else {
			current = "80"
		}
	}
	return port == current
}
