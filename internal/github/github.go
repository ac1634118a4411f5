package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Single fixed cache key: the whole aggregate is cached as one unit.
const statsKey = "github:stats"

type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// Stats is the aggregated public profile shown on the dashboard.
type Stats struct {
	User        string          `json:"user"`
	PublicRepos int             `json:"public_repos"`
	Stars       int             `json:"stars"`
	Forks       int             `json:"forks"`
	Languages   []LanguageCount `json:"languages"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// Client fetches and caches GitHub profile stats. The aggregate is
// expensive (one paged repo listing per refresh), so it lives in a
// TTL cache and concurrent misses share a single refresh.
type Client struct {
	apiURL string
	user   string
	client *http.Client
	cache  *expirable.LRU[string, *Stats]
	group  singleflight.Group
}

func NewClient(apiURL, user string, ttl time.Duration) *Client {
	return &Client{
		apiURL: apiURL,
		user:   user,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  expirable.NewLRU[string, *Stats](4, nil, ttl),
	}
}

// Stats returns the cached aggregate, refreshing it on miss or expiry.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	if s, ok := c.cache.Get(statsKey); ok {
		return s, nil
	}

	v, err, _ := c.group.Do(statsKey, func() (any, error) {
		// A concurrent caller may have refreshed while we waited.
		if s, ok := c.cache.Get(statsKey); ok {
			return s, nil
		}
		s, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Add(statsKey, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Stats), nil
}

const reposPerPage = 100

type repo struct {
	Stargazers int    `json:"stargazers_count"`
	Forks      int    `json:"forks_count"`
	Language   string `json:"language"`
	Fork       bool   `json:"fork"`
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]repo, error) {
	url := fmt.Sprintf("%s/users/%s/repos?per_page=%d&type=owner&page=%d", c.apiURL, c.user, reposPerPage, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch repos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github returned %s", resp.Status)
	}

	var repos []repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("decode repos: %w", err)
	}
	return repos, nil
}

func (c *Client) fetch(ctx context.Context) (*Stats, error) {
	stats := &Stats{User: c.user, FetchedAt: time.Now().UTC()}
	langs := make(map[string]int)

	// Page until a short page; accounts can own more than one page of repos.
	for page := 1; ; page++ {
		repos, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, r := range repos {
			if r.Fork {
				continue
			}
			stats.PublicRepos++
			stats.Stars += r.Stargazers
			stats.Forks += r.Forks
			if r.Language != "" {
				langs[r.Language]++
			}
		}
		if len(repos) < reposPerPage {
			break
		}
	}

	stats.Languages = make([]LanguageCount, 0, len(langs))
	for lang, count := range langs {
		stats.Languages = append(stats.Languages, LanguageCount{Language: lang, Count: count})
	}
	sort.Slice(stats.Languages, func(i, j int) bool {
		if stats.Languages[i].Count != stats.Languages[j].Count {
			return stats.Languages[i].Count > stats.Languages[j].Count
		}
		return stats.Languages[i].Language < stats.Languages[j].Language
	})

	return stats, nil
}
