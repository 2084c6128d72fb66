package internal

import (
	"net/http"
	"strings"
)

// ExtractorSource reads one candidate value from a request.
type ExtractorSource = func(*http.Request) (string, bool)

// Extractor is an ordered list of sources; the first non-empty value wins.
type Extractor struct {
	sources []ExtractorSource
}

func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

func (e Extractor) Extract(r *http.Request) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(r); ok {
			return v, true
		}
	}
	return "", false
}

func present(v string) (string, bool) {
	return v, v != ""
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return func(r *http.Request) (string, bool) {
		return present(r.Header.Get(name))
	}
}

// FromQuery reads a query parameter. Useful for links that cannot carry
// headers, such as direct downloads from a browser.
func FromQuery(name string) ExtractorSource {
	return func(r *http.Request) (string, bool) {
		return present(r.URL.Query().Get(name))
	}
}

// FromBearerToken reads the token of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func FromBearerToken() ExtractorSource {
	const scheme = "bearer "
	return func(r *http.Request) (string, bool) {
		auth := r.Header.Get("Authorization")
		if len(auth) < len(scheme) || !strings.EqualFold(auth[:len(scheme)], scheme) {
			return "", false
		}
		return present(strings.TrimSpace(auth[len(scheme):]))
	}
}
