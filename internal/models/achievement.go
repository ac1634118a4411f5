package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Achievement struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	AchievedOn  string    `json:"achieved_on"`
	CreatedAt   time.Time `json:"created_at"`
}

func CreateAchievement(db *sql.DB, a *Achievement) error {
	res, err := db.Exec(
		`INSERT INTO achievements (portfolio_id, title, description, image_url, achieved_on) VALUES (?, ?, ?, ?, ?)`,
		a.PortfolioID, a.Title, a.Description, a.ImageURL, a.AchievedOn,
	)
	if err != nil {
		return fmt.Errorf("insert achievement: %w", err)
	}
	id, _ := res.LastInsertId()
	a.ID = id

	// Re-read to get created_at
	return GetAchievementByID(db, a)
}

func GetAchievementByID(db *sql.DB, a *Achievement) error {
	row := db.QueryRow(`SELECT id, portfolio_id, title, description, image_url, achieved_on, created_at FROM achievements WHERE id = ?`, a.ID)
	return row.Scan(&a.ID, &a.PortfolioID, &a.Title, &a.Description, &a.ImageURL, &a.AchievedOn, &a.CreatedAt)
}

func ListAchievements(db *sql.DB, portfolioID int64) ([]Achievement, error) {
	rows, err := db.Query(
		`SELECT id, portfolio_id, title, description, image_url, achieved_on, created_at FROM achievements WHERE portfolio_id = ? ORDER BY achieved_on DESC`,
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var achievements []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.PortfolioID, &a.Title, &a.Description, &a.ImageURL, &a.AchievedOn, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func UpdateAchievement(db *sql.DB, a *Achievement) error {
	_, err := db.Exec(
		`UPDATE achievements SET title = ?, description = ?, image_url = ?, achieved_on = ? WHERE id = ?`,
		a.Title, a.Description, a.ImageURL, a.AchievedOn, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update achievement: %w", err)
	}
	return GetAchievementByID(db, a)
}

func DeleteAchievement(db *sql.DB, portfolioID, id int64) error {
	res, err := db.Exec(`DELETE FROM achievements WHERE id = ? AND portfolio_id = ?`, id, portfolioID)
	if err != nil {
		return fmt.Errorf("delete achievement: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
