package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/foliohq/folio/internal/models"
)

// Pointer fields so updates can tell an omitted key from an explicit
// empty string.
type projectRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	ImageURL      *string `json:"image_url"`
	Category      *string `json:"category"`
	ProjectDate   *string `json:"project_date"`
	SourceCodeURL *string `json:"source_code_url"`
	LiveSiteURL   *string `json:"live_site_url"`
}

func strOrEmpty(s *string) string {
	if s != nil {
		return *s
	}
	return ""
}

type projectsResponse struct {
	Status   string           `json:"status"`
	Projects []models.Project `json:"projects"`
}

type projectResponse struct {
	Status  string          `json:"status"`
	Project *models.Project `json:"project"`
}

func (h *AdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Title == nil || *req.Title == "" {
		jsonValidationError(w, map[string]string{"title": "title is required"})
		return
	}

	project := &models.Project{
		PortfolioID:   h.Portfolio.ID,
		Title:         *req.Title,
		Description:   strOrEmpty(req.Description),
		ImageURL:      strOrEmpty(req.ImageURL),
		Category:      strOrEmpty(req.Category),
		ProjectDate:   strOrEmpty(req.ProjectDate),
		SourceCodeURL: strOrEmpty(req.SourceCodeURL),
		LiveSiteURL:   strOrEmpty(req.LiveSiteURL),
	}
	if err := models.CreateProject(h.DB, project); err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, projectResponse{Status: "success", Project: project})
}

func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := models.ListProjects(h.DB, h.Portfolio.ID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projectsResponse{Status: "success", Projects: projects})
}

func (h *AdminHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}
	project.ViewCount, _ = models.ViewCountForProject(h.DB, project.ID)
	writeJSON(w, http.StatusOK, projectResponse{Status: "success", Project: project})
}

func (h *AdminHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// Partial update: keys absent from the body leave stored values alone.
	if req.Title != nil && *req.Title != "" {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.ImageURL != nil {
		project.ImageURL = *req.ImageURL
	}
	if req.Category != nil {
		project.Category = *req.Category
	}
	if req.ProjectDate != nil {
		project.ProjectDate = *req.ProjectDate
	}
	if req.SourceCodeURL != nil {
		project.SourceCodeURL = *req.SourceCodeURL
	}
	if req.LiveSiteURL != nil {
		project.LiveSiteURL = *req.LiveSiteURL
	}

	if err := models.UpdateProject(h.DB, project); err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, projectResponse{Status: "success", Project: project})
}

func (h *AdminHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	// Views and technology links go with the project via FK cascade.
	if err := models.DeleteProject(h.DB, h.Portfolio.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "project not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type technologiesRequest struct {
	SkillIDs []int64 `json:"skill_ids"`
}

// SetTechnologies replaces a project's technology set with skills from the
// same portfolio.
func (h *AdminHandler) SetTechnologies(w http.ResponseWriter, r *http.Request) {
	project, ok := h.ownedProject(w, r)
	if !ok {
		return
	}

	var req technologiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	for _, skillID := range req.SkillIDs {
		skill := &models.Skill{ID: skillID}
		if err := models.GetSkillByID(h.DB, skill); err != nil || skill.PortfolioID != h.Portfolio.ID {
			jsonValidationError(w, map[string]string{"skill_ids": "unknown skill id"})
			return
		}
	}

	if err := models.SetProjectTechnologies(h.DB, project.ID, req.SkillIDs); err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := models.GetProjectByID(h.DB, project); err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, projectResponse{Status: "success", Project: project})
}

func (h *AdminHandler) ownedProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}

	project := &models.Project{ID: id}
	if err := models.GetProjectByID(h.DB, project); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "project not found", http.StatusNotFound)
			return nil, false
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	if project.PortfolioID != h.Portfolio.ID {
		jsonError(w, "forbidden", http.StatusForbidden)
		return nil, false
	}
	return project, true
}
