package models

import (
	"database/sql"
	"fmt"
	"time"
)

// ProjectView is one view event. Append-only; a visitor reloading the page
// produces one row per reload.
type ProjectView struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	VisitorID int64     `json:"visitor_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

type TimelineEntry struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int    `json:"count"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// ProjectStats is the derived reporting view for one project.
type ProjectStats struct {
	TotalViews          int             `json:"total_views"`
	UniqueVisitors      int             `json:"unique_visitors"`
	ViewsTimeline       []TimelineEntry `json:"views_timeline"`
	TopReferrers        []ReferrerCount `json:"top_referrers"`
	CountryDistribution []CountryCount  `json:"country_distribution"`
}

func InsertProjectView(db *sql.DB, v *ProjectView) error {
	// Stored as text in SQLite's datetime format so date() and friends can
	// group on the column. Binding a raw time.Time would store a layout the
	// builtin date functions do not parse.
	res, err := db.Exec(
		`INSERT INTO project_views (project_id, visitor_id, viewed_at) VALUES (?, ?, ?)`,
		v.ProjectID, v.VisitorID, v.ViewedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("insert project view: %w", err)
	}
	id, _ := res.LastInsertId()
	v.ID = id
	return nil
}

func ViewCountForProject(db *sql.DB, projectID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM project_views WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

func UniqueVisitorsForProject(db *sql.DB, projectID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(DISTINCT visitor_id) FROM project_views WHERE project_id = ?`, projectID).Scan(&count)
	return count, err
}

func ViewCountsForProjects(db *sql.DB, ids []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	// Build placeholders
	placeholders := "?"
	args := make([]any, len(ids))
	args[0] = ids[0]
	for i := 1; i < len(ids); i++ {
		placeholders += ",?"
		args[i] = ids[i]
	}

	query := fmt.Sprintf(`SELECT project_id, COUNT(*) FROM project_views WHERE project_id IN (%s) GROUP BY project_id`, placeholders)
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("view counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan view count: %w", err)
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

// ViewsTimelineForProject groups views by calendar day (UTC) in ascending
// date order.
func ViewsTimelineForProject(db *sql.DB, projectID int64) ([]TimelineEntry, error) {
	rows, err := db.Query(
		`SELECT date(viewed_at) as day, COUNT(*) FROM project_views WHERE project_id = ? GROUP BY day ORDER BY day ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("views timeline: %w", err)
	}
	defer rows.Close()

	var entries []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		if err := rows.Scan(&e.Date, &e.Count); err != nil {
			return nil, fmt.Errorf("scan timeline entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TopReferrersForProject returns the most frequent non-empty visitor
// referrers for a project. Tie-break order is whatever SQLite picks.
func TopReferrersForProject(db *sql.DB, projectID int64, limit int) ([]ReferrerCount, error) {
	rows, err := db.Query(
		`SELECT v.referrer, COUNT(*) as cnt FROM project_views pv
		JOIN visitors v ON v.id = pv.visitor_id
		WHERE pv.project_id = ? AND v.referrer != ''
		GROUP BY v.referrer ORDER BY cnt DESC LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top referrers: %w", err)
	}
	defer rows.Close()

	var results []ReferrerCount
	for rows.Next() {
		var r ReferrerCount
		if err := rows.Scan(&r.Referrer, &r.Count); err != nil {
			return nil, fmt.Errorf("scan referrer: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func CountryDistributionForProject(db *sql.DB, projectID int64) ([]CountryCount, error) {
	rows, err := db.Query(
		`SELECT v.country, COUNT(*) as cnt FROM project_views pv
		JOIN visitors v ON v.id = pv.visitor_id
		WHERE pv.project_id = ? AND v.country != ''
		GROUP BY v.country ORDER BY cnt DESC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("country distribution: %w", err)
	}
	defer rows.Close()

	var results []CountryCount
	for rows.Next() {
		var c CountryCount
		if err := rows.Scan(&c.Country, &c.Count); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// StatsForProject computes the full reporting view on demand.
func StatsForProject(db *sql.DB, projectID int64) (*ProjectStats, error) {
	total, err := ViewCountForProject(db, projectID)
	if err != nil {
		return nil, err
	}
	unique, err := UniqueVisitorsForProject(db, projectID)
	if err != nil {
		return nil, err
	}
	timeline, err := ViewsTimelineForProject(db, projectID)
	if err != nil {
		return nil, err
	}
	referrers, err := TopReferrersForProject(db, projectID, 5)
	if err != nil {
		return nil, err
	}
	countries, err := CountryDistributionForProject(db, projectID)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		TotalViews:          total,
		UniqueVisitors:      unique,
		ViewsTimeline:       timeline,
		TopReferrers:        referrers,
		CountryDistribution: countries,
	}
	if stats.ViewsTimeline == nil {
		stats.ViewsTimeline = []TimelineEntry{}
	}
	if stats.TopReferrers == nil {
		stats.TopReferrers = []ReferrerCount{}
	}
	if stats.CountryDistribution == nil {
		stats.CountryDistribution = []CountryCount{}
	}
	return stats, nil
}
