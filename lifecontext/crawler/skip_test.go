package crawler

import "testing"

func TestShouldSkip(t *testing.T) {
	cases := []struct {
		name         string
		frontendHost string
		frontendPort string
		loc          Location
		want         bool
	}{
		{"exact match", "localhost", "3000", Location{Hostname: "localhost", Port: "3000", Scheme: "http"}, true},
		{"case-insensitive host", "LocalHost", "3000", Location{Hostname: "localhost", Port: "3000", Scheme: "http"}, true},
		{"different host", "localhost", "3000", Location{Hostname: "example.com", Port: "3000", Scheme: "http"}, false},
		{"different port", "localhost", "3000", Location{Hostname: "localhost", Port: "8080", Scheme: "http"}, false},
		{"empty expected port matches any", "localhost", "", Location{Hostname: "localhost", Port: "9999", Scheme: "http"}, true},
		{"implicit http port", "localhost", "80", Location{Hostname: "localhost", Port: "", Scheme: "http"}, true},
		{"implicit https port", "app.example.com", "443", Location{Hostname: "app.example.com", Port: "", Scheme: "https"}, true},
		{"implicit port mismatch", "localhost", "3000", Location{Hostname: "localhost", Port: "", Scheme: "http"}, false},
		{"empty configured host never skips", "", "3000", Location{Hostname: "localhost", Port: "3000", Scheme: "http"}, false},
		{"whitespace configured host never skips", "   ", "", Location{Hostname: "localhost", Port: "", Scheme: "http"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ShouldSkip(c.frontendHost, c.frontendPort, c.loc); got != c.want {
				t.Errorf("ShouldSkip(%q, %q, %+v) = %v, want %v",
					c.frontendHost, c.frontendPort, c.loc, got, c.want)
			}
		})
	}
}

func TestLocationFromURL(t *testing.T) {
	loc, err := LocationFromURL("https://example.com:8443/path?q=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Hostname != "example.com" || loc.Port != "8443" || loc.Scheme != "https" {
		t.Errorf("unexpected location: %+v", loc)
	}

	loc, err = LocationFromURL("http://localhost/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Port != "" {
		t.Errorf("expected empty port for implicit default, got %q", loc.Port)
	}
}
