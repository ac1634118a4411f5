package models

import (
	"database/sql"
	"fmt"
)

// Skill is a technology tag, unique per portfolio by name.
type Skill struct {
	ID          int64  `json:"id"`
	PortfolioID int64  `json:"portfolio_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
}

func CreateSkill(db *sql.DB, s *Skill) error {
	res, err := db.Exec(
		`INSERT INTO skills (portfolio_id, name, category) VALUES (?, ?, ?)`,
		s.PortfolioID, s.Name, s.Category,
	)
	if err != nil {
		return fmt.Errorf("insert skill: %w", err)
	}
	id, _ := res.LastInsertId()
	s.ID = id
	return nil
}

func GetSkillByID(db *sql.DB, s *Skill) error {
	row := db.QueryRow(`SELECT id, portfolio_id, name, category FROM skills WHERE id = ?`, s.ID)
	return row.Scan(&s.ID, &s.PortfolioID, &s.Name, &s.Category)
}

func ListSkills(db *sql.DB, portfolioID int64) ([]Skill, error) {
	rows, err := db.Query(`SELECT id, portfolio_id, name, category FROM skills WHERE portfolio_id = ? ORDER BY name`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var skills []Skill
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.PortfolioID, &s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func DeleteSkill(db *sql.DB, portfolioID, id int64) error {
	res, err := db.Exec(`DELETE FROM skills WHERE id = ? AND portfolio_id = ?`, id, portfolioID)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
