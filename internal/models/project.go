package models

import (
	"database/sql"
	"fmt"
	"time"
)

type Project struct {
	ID            int64     `json:"id"`
	PortfolioID   int64     `json:"portfolio_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	Category      string    `json:"category"`
	ProjectDate   string    `json:"project_date"`
	SourceCodeURL string    `json:"source_code_url"`
	LiveSiteURL   string    `json:"live_site_url"`
	Technologies  []Skill   `json:"technologies"`
	ViewCount     int       `json:"view_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const projectColumns = `id, portfolio_id, title, description, image_url, category, project_date, source_code_url, live_site_url, created_at, updated_at`

func CreateProject(db *sql.DB, p *Project) error {
	res, err := db.Exec(
		`INSERT INTO projects (portfolio_id, title, description, image_url, category, project_date, source_code_url, live_site_url) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PortfolioID, p.Title, p.Description, p.ImageURL, p.Category, p.ProjectDate, p.SourceCodeURL, p.LiveSiteURL,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	id, _ := res.LastInsertId()
	p.ID = id

	// Re-read to get timestamps
	return GetProjectByID(db, p)
}

func GetProjectByID(db *sql.DB, p *Project) error {
	row := db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, p.ID)
	if err := row.Scan(&p.ID, &p.PortfolioID, &p.Title, &p.Description, &p.ImageURL, &p.Category, &p.ProjectDate, &p.SourceCodeURL, &p.LiveSiteURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return err
	}
	techs, err := TechnologiesForProject(db, p.ID)
	if err != nil {
		return err
	}
	p.Technologies = techs
	return nil
}

// ListProjects returns all projects for a portfolio with technologies and
// view counts filled in. Counts and technologies are fetched in batched
// queries keyed on the project ids.
func ListProjects(db *sql.DB, portfolioID int64) ([]Project, error) {
	rows, err := db.Query(`SELECT `+projectColumns+` FROM projects WHERE portfolio_id = ? ORDER BY created_at DESC`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	var ids []int64
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.PortfolioID, &p.Title, &p.Description, &p.ImageURL, &p.Category, &p.ProjectDate, &p.SourceCodeURL, &p.LiveSiteURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Technologies = []Skill{}
		projects = append(projects, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts, err := ViewCountsForProjects(db, ids)
	if err != nil {
		return nil, err
	}
	techs, err := technologiesForProjects(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].ViewCount = counts[projects[i].ID]
		if t, ok := techs[projects[i].ID]; ok {
			projects[i].Technologies = t
		}
	}
	return projects, nil
}

func UpdateProject(db *sql.DB, p *Project) error {
	_, err := db.Exec(
		`UPDATE projects SET title = ?, description = ?, image_url = ?, category = ?, project_date = ?, source_code_url = ?, live_site_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		p.Title, p.Description, p.ImageURL, p.Category, p.ProjectDate, p.SourceCodeURL, p.LiveSiteURL, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return GetProjectByID(db, p)
}

func DeleteProject(db *sql.DB, portfolioID, id int64) error {
	res, err := db.Exec(`DELETE FROM projects WHERE id = ? AND portfolio_id = ?`, id, portfolioID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetProjectTechnologies replaces the technology set for a project.
func SetProjectTechnologies(db *sql.DB, projectID int64, skillIDs []int64) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM project_technologies WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("clear technologies: %w", err)
	}
	for _, skillID := range skillIDs {
		if _, err := tx.Exec(`INSERT INTO project_technologies (project_id, skill_id) VALUES (?, ?)`, projectID, skillID); err != nil {
			return fmt.Errorf("insert technology: %w", err)
		}
	}
	return tx.Commit()
}

func TechnologiesForProject(db *sql.DB, projectID int64) ([]Skill, error) {
	rows, err := db.Query(
		`SELECT s.id, s.portfolio_id, s.name, s.category FROM skills s
		JOIN project_technologies pt ON pt.skill_id = s.id
		WHERE pt.project_id = ?
		ORDER BY s.name`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("project technologies: %w", err)
	}
	defer rows.Close()

	skills := []Skill{}
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.PortfolioID, &s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("scan technology: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func technologiesForProjects(db *sql.DB, ids []int64) (map[int64][]Skill, error) {
	techs := make(map[int64][]Skill, len(ids))
	if len(ids) == 0 {
		return techs, nil
	}

	placeholders := "?"
	args := make([]any, len(ids))
	args[0] = ids[0]
	for i := 1; i < len(ids); i++ {
		placeholders += ",?"
		args[i] = ids[i]
	}

	query := fmt.Sprintf(
		`SELECT pt.project_id, s.id, s.portfolio_id, s.name, s.category FROM skills s
		JOIN project_technologies pt ON pt.skill_id = s.id
		WHERE pt.project_id IN (%s)
		ORDER BY s.name`, placeholders,
	)
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("project technologies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID int64
		var s Skill
		if err := rows.Scan(&projectID, &s.ID, &s.PortfolioID, &s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("scan technology: %w", err)
		}
		techs[projectID] = append(techs[projectID], s)
	}
	return techs, rows.Err()
}
