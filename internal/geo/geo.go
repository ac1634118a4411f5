package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

// Sentinel values. Tracking never fails because geolocation did.
const (
	TestCountry = "Test Country"
	TestCity    = "Test City"
	Unknown     = "Unknown"
)

type Result struct {
	Country string
	City    string
}

// Resolver resolves an IP to country/city. Lookup order: local/test
// sentinel, HTTP provider (if an API key is configured), local MaxMind
// database (if one is open), Unknown/Unknown. It never returns an error;
// provider failures are logged and absorbed.
type Resolver struct {
	apiURL string
	apiKey string
	local  bool
	client *http.Client
	mmdb   *maxminddb.Reader
}

// New builds a Resolver. mmdbPath may be empty (no local fallback); local
// flags a local/test environment where every lookup short-circuits to the
// test sentinel.
func New(apiURL, apiKey, mmdbPath string, local bool) (*Resolver, error) {
	r := &Resolver{
		apiURL: apiURL,
		apiKey: apiKey,
		local:  local,
		client: &http.Client{Timeout: 5 * time.Second},
	}
	if mmdbPath != "" {
		mmdb, err := maxminddb.Open(mmdbPath)
		if err != nil {
			return nil, fmt.Errorf("open geoip database: %w", err)
		}
		r.mmdb = mmdb
	}
	return r, nil
}

func (r *Resolver) Close() {
	if r != nil && r.mmdb != nil {
		r.mmdb.Close()
	}
}

func (r *Resolver) Resolve(ctx context.Context, ip string) Result {
	if r.local || isLoopback(ip) {
		return Result{Country: TestCountry, City: TestCity}
	}

	if r.apiKey != "" {
		res, err := r.lookupProvider(ctx, ip)
		if err == nil {
			return res
		}
		log.Printf("geo: provider lookup for %s failed: %v", ip, err)
	}

	if res, ok := r.lookupMMDB(ip); ok {
		return res
	}

	return Result{Country: Unknown, City: Unknown}
}

func isLoopback(ip string) bool {
	if ip == "127.0.0.1" || ip == "::1" {
		return true
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}

func (r *Resolver) lookupProvider(ctx context.Context, ip string) (Result, error) {
	q := url.Values{}
	q.Set("apiKey", r.apiKey)
	q.Set("ip", ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("provider returned %s", resp.Status)
	}

	var payload struct {
		CountryName string `json:"country_name"`
		City        string `json:"city"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("decode provider response: %w", err)
	}

	res := Result{Country: payload.CountryName, City: payload.City}
	if res.Country == "" {
		res.Country = Unknown
	}
	if res.City == "" {
		res.City = Unknown
	}
	return res, nil
}

func (r *Resolver) lookupMMDB(ipStr string) (Result, bool) {
	if r.mmdb == nil {
		return Result{}, false
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Result{}, false
	}

	var record struct {
		Country struct {
			ISOCode string            `maxminddb:"iso_code"`
			Names   map[string]string `maxminddb:"names"`
		} `maxminddb:"country"`
		City struct {
			Names map[string]string `maxminddb:"names"`
		} `maxminddb:"city"`
	}
	if err := r.mmdb.Lookup(ip, &record); err != nil {
		return Result{}, false
	}

	country := record.Country.Names["en"]
	if country == "" {
		country = record.Country.ISOCode
	}
	if country == "" {
		return Result{}, false
	}

	city := record.City.Names["en"]
	if city == "" {
		city = Unknown
	}
	return Result{Country: country, City: city}, true
}
