package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Visitor is one browser session. Rows are created once and never mutated;
// the UNIQUE constraint on session_id is what keeps concurrent first-time
// tracks from producing duplicates.
type Visitor struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	SessionID   string    `json:"session_id"`
	IPHash      string    `json:"-"`
	UserAgent   string    `json:"user_agent"`
	Referrer    string    `json:"referrer"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	DeviceType  string    `json:"device_type"`
	IsBot       bool      `json:"is_bot"`
	CreatedAt   time.Time `json:"created_at"`
}

const visitorColumns = `id, portfolio_id, session_id, ip_hash, user_agent, referrer, country, city, browser, os, device_type, is_bot, created_at`

func CreateVisitor(db *sql.DB, v *Visitor) error {
	res, err := db.Exec(
		`INSERT INTO visitors (portfolio_id, session_id, ip_hash, user_agent, referrer, country, city, browser, os, device_type, is_bot) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.PortfolioID, v.SessionID, v.IPHash, v.UserAgent, v.Referrer, v.Country, v.City, v.Browser, v.OS, v.DeviceType, boolToInt(v.IsBot),
	)
	if err != nil {
		return fmt.Errorf("insert visitor: %w", err)
	}
	id, _ := res.LastInsertId()
	v.ID = id

	// Re-read to get created_at
	return GetVisitorByID(db, v)
}

func GetVisitorByID(db *sql.DB, v *Visitor) error {
	row := db.QueryRow(`SELECT `+visitorColumns+` FROM visitors WHERE id = ?`, v.ID)
	return scanVisitor(row, v)
}

func GetVisitorBySession(db *sql.DB, sessionID string) (*Visitor, error) {
	v := &Visitor{}
	row := db.QueryRow(`SELECT `+visitorColumns+` FROM visitors WHERE session_id = ?`, sessionID)
	if err := scanVisitor(row, v); err != nil {
		return nil, err
	}
	return v, nil
}

func ListVisitors(db *sql.DB, portfolioID int64) ([]Visitor, error) {
	rows, err := db.Query(`SELECT `+visitorColumns+` FROM visitors WHERE portfolio_id = ? ORDER BY created_at DESC`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	defer rows.Close()

	var visitors []Visitor
	for rows.Next() {
		var v Visitor
		var bot int
		if err := rows.Scan(&v.ID, &v.PortfolioID, &v.SessionID, &v.IPHash, &v.UserAgent, &v.Referrer, &v.Country, &v.City, &v.Browser, &v.OS, &v.DeviceType, &bot, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.IsBot = bot == 1
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

func VisitorCount(db *sql.DB, portfolioID int64) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM visitors WHERE portfolio_id = ?`, portfolioID).Scan(&count)
	return count, err
}

func scanVisitor(row *sql.Row, v *Visitor) error {
	var bot int
	if err := row.Scan(&v.ID, &v.PortfolioID, &v.SessionID, &v.IPHash, &v.UserAgent, &v.Referrer, &v.Country, &v.City, &v.Browser, &v.OS, &v.DeviceType, &bot, &v.CreatedAt); err != nil {
		return err
	}
	v.IsBot = bot == 1
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
