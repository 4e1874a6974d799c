package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-country-cache/country"
)

// CountryServer is a fake REST Countries v2 API backed by an in-memory catalog.
type CountryServer struct {
	*httptest.Server

	mu        sync.Mutex
	catalog   []country.Country
	status    int
	gate      chan struct{}
	release   func()
	requests  atomic.Int32
	userAgent atomic.Value
}

// NewCountryServer starts a fake API serving catalog and closes it when the
// test ends. It answers GET /all and GET /name/{q} (case insensitive
// substring, 404 when nothing matches).
func NewCountryServer(t testing.TB, catalog []country.Country) *CountryServer {
	t.Helper()

	s := &CountryServer{catalog: append([]country.Country(nil), catalog...)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(func() {
		s.mu.Lock()
		release := s.release
		s.mu.Unlock()
		if release != nil {
			release()
		}
		s.Close()
	})
	return s
}

// SetCatalog replaces the served catalog.
func (s *CountryServer) SetCatalog(catalog []country.Country) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = append([]country.Country(nil), catalog...)
}

// FailWith makes every request answer with status. Zero restores normal replies.
func (s *CountryServer) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Hold blocks every request until the returned release func is called.
func (s *CountryServer) Hold() (release func()) {
	gate := make(chan struct{})

	var once sync.Once
	release = func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}

	s.mu.Lock()
	s.gate = gate
	s.release = release
	s.mu.Unlock()
	return release
}

// Requests returns how many requests were served.
func (s *CountryServer) Requests() int {
	return int(s.requests.Load())
}

// LastUserAgent returns the User-Agent header of the latest request.
func (s *CountryServer) LastUserAgent() string {
	ua, _ := s.userAgent.Load().(string)
	return ua
}

type wireFlags struct {
	SVG string `json:"svg"`
	PNG string `json:"png"`
}

type wireCountry struct {
	Name       string    `json:"name"`
	Capital    string    `json:"capital,omitempty"`
	Region     string    `json:"region"`
	Population int64     `json:"population"`
	Flag       string    `json:"flag"`
	Flags      wireFlags `json:"flags"`
}

func (s *CountryServer) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	s.userAgent.Store(r.Header.Get("User-Agent"))

	s.mu.Lock()
	gate, status := s.gate, s.status
	catalog := append([]country.Country(nil), s.catalog...)
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	// clients may point at the server root or at a /v2 base URL
	path := strings.TrimPrefix(r.URL.Path, "/v2")

	var matches []country.Country
	switch {
	case path == "/all":
		matches = catalog
	case strings.HasPrefix(path, "/name/"):
		q := strings.ToLower(strings.TrimPrefix(path, "/name/"))
		for _, c := range catalog {
			if strings.Contains(strings.ToLower(c.Name), q) {
				matches = append(matches, c)
			}
		}
		if len(matches) == 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":404,"message":"Not Found"}`))
			return
		}
	default:
		http.NotFound(w, r)
		return
	}

	out := make([]wireCountry, len(matches))
	for i, c := range matches {
		out[i] = wireCountry{
			Name:       c.Name,
			Capital:    c.Capital,
			Region:     c.Region,
			Population: c.Population,
			Flag:       c.FlagURL,
			Flags:      wireFlags{SVG: c.FlagURL},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
