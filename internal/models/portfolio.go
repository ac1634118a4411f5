package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrMultiplePortfolios is returned when the portfolios table holds more
// than one row. The deployment owns exactly one portfolio; anything else
// is a corrupted install and the server refuses to guess.
var ErrMultiplePortfolios = errors.New("more than one portfolio row exists")

type Portfolio struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	ImageURL   string    `json:"image_url"`
	OwnerName  string    `json:"owner_name"`
	OwnerEmail string    `json:"owner_email"`
	OwnerBio   string    `json:"owner_bio"`
	PublicURL  string    `json:"public_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PortfolioAggregate is the full nested read served to the dashboard and
// the public site.
type PortfolioAggregate struct {
	Portfolio
	Projects     []Project     `json:"projects"`
	Skills       []Skill       `json:"skills"`
	Achievements []Achievement `json:"achievements"`
	Statistics   []Statistic   `json:"statistics"`
	APIs         []API         `json:"apis"`
	Messages     []Message     `json:"messages"`
	Visitors     []Visitor     `json:"visitors"`
}

func CreatePortfolio(db *sql.DB, p *Portfolio) error {
	res, err := db.Exec(
		`INSERT INTO portfolios (title, image_url, owner_name, owner_email, owner_bio, public_url) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Title, p.ImageURL, p.OwnerName, p.OwnerEmail, p.OwnerBio, p.PublicURL,
	)
	if err != nil {
		return fmt.Errorf("insert portfolio: %w", err)
	}
	id, _ := res.LastInsertId()
	p.ID = id

	// Re-read to get timestamps
	return getPortfolioByID(db, p)
}

// LoadPortfolio returns the deployment's single portfolio. It fails with
// sql.ErrNoRows when the table is empty and ErrMultiplePortfolios when the
// singleton invariant is broken.
func LoadPortfolio(db *sql.DB) (*Portfolio, error) {
	rows, err := db.Query(`SELECT id, title, image_url, owner_name, owner_email, owner_bio, public_url, created_at, updated_at FROM portfolios LIMIT 2`)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	defer rows.Close()

	var found []*Portfolio
	for rows.Next() {
		p := &Portfolio{}
		if err := rows.Scan(&p.ID, &p.Title, &p.ImageURL, &p.OwnerName, &p.OwnerEmail, &p.OwnerBio, &p.PublicURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan portfolio: %w", err)
		}
		found = append(found, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, sql.ErrNoRows
	case 1:
		return found[0], nil
	default:
		return nil, ErrMultiplePortfolios
	}
}

func UpdatePortfolio(db *sql.DB, p *Portfolio) error {
	_, err := db.Exec(
		`UPDATE portfolios SET title = ?, image_url = ?, owner_name = ?, owner_email = ?, owner_bio = ?, public_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		p.Title, p.ImageURL, p.OwnerName, p.OwnerEmail, p.OwnerBio, p.PublicURL, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update portfolio: %w", err)
	}
	return getPortfolioByID(db, p)
}

func DeletePortfolio(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM portfolios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete portfolio: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetAggregate assembles the portfolio with all of its relations.
func GetAggregate(db *sql.DB, id int64) (*PortfolioAggregate, error) {
	p := &Portfolio{ID: id}
	if err := getPortfolioByID(db, p); err != nil {
		return nil, err
	}

	projects, err := ListProjects(db, id)
	if err != nil {
		return nil, err
	}
	skills, err := ListSkills(db, id)
	if err != nil {
		return nil, err
	}
	achievements, err := ListAchievements(db, id)
	if err != nil {
		return nil, err
	}
	statistics, err := ListStatistics(db, id)
	if err != nil {
		return nil, err
	}
	apis, err := ListAPIs(db, id)
	if err != nil {
		return nil, err
	}
	messages, err := ListMessages(db, id)
	if err != nil {
		return nil, err
	}
	visitors, err := ListVisitors(db, id)
	if err != nil {
		return nil, err
	}

	agg := &PortfolioAggregate{
		Portfolio:    *p,
		Projects:     projects,
		Skills:       skills,
		Achievements: achievements,
		Statistics:   statistics,
		APIs:         apis,
		Messages:     messages,
		Visitors:     visitors,
	}
	if agg.Projects == nil {
		agg.Projects = []Project{}
	}
	if agg.Skills == nil {
		agg.Skills = []Skill{}
	}
	if agg.Achievements == nil {
		agg.Achievements = []Achievement{}
	}
	if agg.Statistics == nil {
		agg.Statistics = []Statistic{}
	}
	if agg.APIs == nil {
		agg.APIs = []API{}
	}
	if agg.Messages == nil {
		agg.Messages = []Message{}
	}
	if agg.Visitors == nil {
		agg.Visitors = []Visitor{}
	}
	return agg, nil
}

func getPortfolioByID(db *sql.DB, p *Portfolio) error {
	row := db.QueryRow(`SELECT id, title, image_url, owner_name, owner_email, owner_bio, public_url, created_at, updated_at FROM portfolios WHERE id = ?`, p.ID)
	return row.Scan(&p.ID, &p.Title, &p.ImageURL, &p.OwnerName, &p.OwnerEmail, &p.OwnerBio, &p.PublicURL, &p.CreatedAt, &p.UpdatedAt)
}
