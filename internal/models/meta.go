package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Statistic is a named dashboard counter, unique per portfolio by name.
type Statistic struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	Name        string    `json:"name"`
	Value       int64     `json:"value"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// API is an external profile endpoint tied to the portfolio, e.g. the
// GitHub account the stats fetcher aggregates.
type API struct {
	ID          int64  `json:"id"`
	PortfolioID int64  `json:"portfolio_id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
}

func UpsertStatistic(db *sql.DB, portfolioID int64, name string, value int64) error {
	_, err := db.Exec(
		`INSERT INTO statistics (portfolio_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT(portfolio_id, name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		portfolioID, name, value,
	)
	if err != nil {
		return fmt.Errorf("upsert statistic: %w", err)
	}
	return nil
}

func ListStatistics(db *sql.DB, portfolioID int64) ([]Statistic, error) {
	rows, err := db.Query(`SELECT id, portfolio_id, name, value, updated_at FROM statistics WHERE portfolio_id = ? ORDER BY name`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	defer rows.Close()

	var stats []Statistic
	for rows.Next() {
		var s Statistic
		if err := rows.Scan(&s.ID, &s.PortfolioID, &s.Name, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan statistic: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func UpsertAPI(db *sql.DB, portfolioID int64, name, url string) error {
	_, err := db.Exec(
		`INSERT INTO apis (portfolio_id, name, url) VALUES (?, ?, ?)
		ON CONFLICT(portfolio_id, name) DO UPDATE SET url = excluded.url`,
		portfolioID, name, url,
	)
	if err != nil {
		return fmt.Errorf("upsert api: %w", err)
	}
	return nil
}

func ListAPIs(db *sql.DB, portfolioID int64) ([]API, error) {
	rows, err := db.Query(`SELECT id, portfolio_id, name, url FROM apis WHERE portfolio_id = ? ORDER BY name`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list apis: %w", err)
	}
	defer rows.Close()

	var apis []API
	for rows.Next() {
		var a API
		if err := rows.Scan(&a.ID, &a.PortfolioID, &a.Name, &a.URL); err != nil {
			return nil, fmt.Errorf("scan api: %w", err)
		}
		apis = append(apis, a)
	}
	return apis, rows.Err()
}
