package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const repoPayload = `[
	{"stargazers_count": 10, "forks_count": 2, "language": "Go", "fork": false},
	{"stargazers_count": 5, "forks_count": 1, "language": "Go", "fork": false},
	{"stargazers_count": 3, "forks_count": 0, "language": "TypeScript", "fork": false},
	{"stargazers_count": 100, "forks_count": 50, "language": "C", "fork": true}
]`

func testServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/users/octocat/repos" {
			t.Errorf("path = %q, want /users/octocat/repos", r.URL.Path)
		}
		w.Write([]byte(repoPayload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStats_AggregatesOwnRepos(t *testing.T) {
	var calls atomic.Int64
	srv := testServer(t, &calls)
	c := NewClient(srv.URL, "octocat", time.Hour)

	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// The forked repo is excluded from every aggregate.
	if stats.PublicRepos != 3 {
		t.Errorf("repos = %d, want 3", stats.PublicRepos)
	}
	if stats.Stars != 18 {
		t.Errorf("stars = %d, want 18", stats.Stars)
	}
	if stats.Forks != 3 {
		t.Errorf("forks = %d, want 3", stats.Forks)
	}
	if len(stats.Languages) != 2 {
		t.Fatalf("languages = %v, want 2 entries", stats.Languages)
	}
	if stats.Languages[0].Language != "Go" || stats.Languages[0].Count != 2 {
		t.Errorf("top language = %+v, want Go/2", stats.Languages[0])
	}
}

func TestStats_FollowsPagination(t *testing.T) {
	full := make([]map[string]any, reposPerPage)
	for i := range full {
		full[i] = map[string]any{"stargazers_count": 1, "forks_count": 0, "language": "Go", "fork": false}
	}
	firstPage, err := json.Marshal(full)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write(firstPage)
		case "2":
			w.Write([]byte(`[{"stargazers_count": 7, "forks_count": 1, "language": "TypeScript", "fork": false}]`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "octocat", time.Hour)
	stats, err := c.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if n := calls.Load(); n != 2 {
		t.Errorf("provider fetched %d pages, want 2", n)
	}
	if stats.PublicRepos != reposPerPage+1 {
		t.Errorf("repos = %d, want %d", stats.PublicRepos, reposPerPage+1)
	}
	if stats.Stars != reposPerPage+7 {
		t.Errorf("stars = %d, want %d", stats.Stars, reposPerPage+7)
	}
	if len(stats.Languages) != 2 {
		t.Errorf("languages = %v, want Go and TypeScript", stats.Languages)
	}
}

func TestStats_CachedWithinTTL(t *testing.T) {
	var calls atomic.Int64
	srv := testServer(t, &calls)
	c := NewClient(srv.URL, "octocat", time.Hour)

	for range 5 {
		if _, err := c.Stats(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("provider fetched %d times, want 1 (cached)", n)
	}
}

func TestStats_RefreshesAfterExpiry(t *testing.T) {
	var calls atomic.Int64
	srv := testServer(t, &calls)
	c := NewClient(srv.URL, "octocat", 10*time.Millisecond)

	if _, err := c.Stats(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := c.Stats(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("provider fetched %d times, want 2 (expired)", n)
	}
}

func TestStats_ConcurrentMissesShareOneFetch(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Write([]byte(repoPayload))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "octocat", time.Hour)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Stats(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}

	// Give all goroutines time to reach the singleflight gate.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("provider fetched %d times under concurrent misses, want 1", n)
	}
}

func TestStats_ProviderErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "octocat", time.Hour)
	if _, err := c.Stats(context.Background()); err == nil {
		t.Fatal("expected error from failing provider")
	}
}
