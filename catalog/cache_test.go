package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/skilldeck/skilldeck-go/api"
	platformerrors "github.com/skilldeck/skilldeck-go/platform/errors"
)

type staticTokens struct {
	token string
}

func (s *staticTokens) Token() (string, bool) {
	return s.token, s.token != ""
}

var testCatalog = []Course{
	{ID: 1, Title: "Intro to Go", Credits: 3, Description: "Concurrency and interfaces", Author: &Author{Name: "Pat Doyle"}},
	{ID: 2, Title: "Databases", Credits: 4, Description: "Relational modeling", Author: &Author{FullName: "Sam Reyes"}},
	{ID: 42, Title: "Distributed Systems", Credits: 3, Description: "Consensus and replication"},
}

// catalogServer serves the catalog endpoints and counts fetches; failing
// can be toggled at runtime.
type catalogServer struct {
	srv     *httptest.Server
	fetches atomic.Int64
	fail    atomic.Bool
	lastURL atomic.Value
}

func newCatalogServer(t *testing.T) *catalogServer {
	t.Helper()
	cs := &catalogServer{}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.fetches.Add(1)
		cs.lastURL.Store(r.URL.Path)
		if cs.fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(testCatalog)
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func newTestCache(t *testing.T, cs *catalogServer, tokens api.TokenSource) *Cache {
	t.Helper()
	return NewCache(api.NewClient(cs.srv.URL, tokens, zerolog.Nop()), zerolog.Nop())
}

func TestListAllFetchesOnce(t *testing.T) {
	cs := newCatalogServer(t)
	cache := newTestCache(t, cs, nil)

	first, err := cache.ListAll(context.Background(), false)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	if len(first) != len(testCatalog) {
		t.Fatalf("courses = %d, want %d", len(first), len(testCatalog))
	}

	if _, err := cache.ListAll(context.Background(), false); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if got := cs.fetches.Load(); got != 1 {
		t.Fatalf("fetches = %d, want 1 (second call must be served from cache)", got)
	}
}

func TestListAllForceRefresh(t *testing.T) {
	cs := newCatalogServer(t)
	cache := newTestCache(t, cs, nil)

	if _, err := cache.ListAll(context.Background(), false); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := cache.ListAll(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := cs.fetches.Load(); got != 2 {
		t.Fatalf("fetches = %d, want 2", got)
	}
}

func TestListAllEndpointSelection(t *testing.T) {
	t.Run("unauthenticated uses public listing", func(t *testing.T) {
		cs := newCatalogServer(t)
		cache := newTestCache(t, cs, nil)
		if _, err := cache.ListAll(context.Background(), false); err != nil {
			t.Fatalf("list: %v", err)
		}
		if got := cs.lastURL.Load(); got != "/api/course/getAll" {
			t.Fatalf("path = %v, want /api/course/getAll", got)
		}
	})

	t.Run("active session uses authenticated listing", func(t *testing.T) {
		cs := newCatalogServer(t)
		cache := newTestCache(t, cs, &staticTokens{token: "tok-1"})
		if _, err := cache.ListAll(context.Background(), false); err != nil {
			t.Fatalf("list: %v", err)
		}
		if got := cs.lastURL.Load(); got != "/api/course/getAllCourses" {
			t.Fatalf("path = %v, want /api/course/getAllCourses", got)
		}
	})
}

func TestListAllDegradedFallback(t *testing.T) {
	cs := newCatalogServer(t)
	cache := newTestCache(t, cs, nil)

	if _, err := cache.ListAll(context.Background(), false); err != nil {
		t.Fatalf("initial list: %v", err)
	}

	cs.fail.Store(true)
	stale, err := cache.ListAll(context.Background(), true)
	if got := platformerrors.CodeOf(err); got != platformerrors.CodeFetchFailed {
		t.Fatalf("error code = %q, want CATALOG_FETCH_FAILED", got)
	}
	if len(stale) != len(testCatalog) {
		t.Fatalf("stale courses = %d, want the previously cached %d", len(stale), len(testCatalog))
	}
}

func TestListAllEmptyWhenNeverFetched(t *testing.T) {
	cs := newCatalogServer(t)
	cs.fail.Store(true)
	cache := newTestCache(t, cs, nil)

	courses, err := cache.ListAll(context.Background(), false)
	if got := platformerrors.CodeOf(err); got != platformerrors.CodeFetchFailed {
		t.Fatalf("error code = %q, want CATALOG_FETCH_FAILED", got)
	}
	if len(courses) != 0 {
		t.Fatalf("courses = %d, want 0 for a cache that never fetched", len(courses))
	}
}

func TestFilter(t *testing.T) {
	cs := newCatalogServer(t)
	cache := newTestCache(t, cs, nil)
	if _, err := cache.ListAll(context.Background(), false); err != nil {
		t.Fatalf("list: %v", err)
	}
	before := cs.fetches.Load()

	tests := []struct {
		name    string
		query   string
		wantIDs []int64
	}{
		{"empty returns all in order", "", []int64{1, 2, 42}},
		{"whitespace returns all", "   ", []int64{1, 2, 42}},
		{"title match", "go", []int64{1}},
		{"case-insensitive title", "DISTRIBUTED", []int64{42}},
		{"description match", "modeling", []int64{2}},
		{"author name match", "doyle", []int64{1}},
		{"author fullName match", "reyes", []int64{2}},
		{"no match", "quantum", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := cache.Filter(tc.query)
			var gotIDs []int64
			for _, course := range got {
				gotIDs = append(gotIDs, course.ID)
			}
			if len(gotIDs) != len(tc.wantIDs) {
				t.Fatalf("Filter(%q) ids = %v, want %v", tc.query, gotIDs, tc.wantIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tc.wantIDs[i] {
					t.Fatalf("Filter(%q) ids = %v, want %v", tc.query, gotIDs, tc.wantIDs)
				}
			}
		})
	}

	if got := cs.fetches.Load(); got != before {
		t.Fatalf("fetches = %d, want %d (filtering must not hit the network)", got, before)
	}
}

func TestGet(t *testing.T) {
	cs := newCatalogServer(t)
	cache := newTestCache(t, cs, nil)
	if _, err := cache.ListAll(context.Background(), false); err != nil {
		t.Fatalf("list: %v", err)
	}

	course, ok := cache.Get(42)
	if !ok {
		t.Fatal("expected course 42")
	}
	if course.Title != "Distributed Systems" {
		t.Fatalf("title = %q", course.Title)
	}
	if _, ok := cache.Get(999); ok {
		t.Fatal("expected course 999 to be absent")
	}
}

func TestAuthorDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		author *Author
		want   string
	}{
		{"nil", nil, ""},
		{"name", &Author{Name: "Pat"}, "Pat"},
		{"fullName fallback", &Author{FullName: "Pat Doyle"}, "Pat Doyle"},
		{"name preferred", &Author{Name: "Pat", FullName: "Pat Doyle"}, "Pat"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.author.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}
