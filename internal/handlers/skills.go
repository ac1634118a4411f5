package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/foliohq/folio/internal/db"
	"github.com/foliohq/folio/internal/models"
)

type skillRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type skillsResponse struct {
	Status string         `json:"status"`
	Skills []models.Skill `json:"skills"`
}

type skillResponse struct {
	Status string        `json:"status"`
	Skill  *models.Skill `json:"skill"`
}

func (h *AdminHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	var req skillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		jsonValidationError(w, map[string]string{"name": "name is required"})
		return
	}

	skill := &models.Skill{PortfolioID: h.Portfolio.ID, Name: req.Name, Category: req.Category}
	if err := models.CreateSkill(h.DB, skill); err != nil {
		if db.IsUniqueViolation(err) {
			jsonError(w, "skill already exists", http.StatusConflict)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, skillResponse{Status: "success", Skill: skill})
}

func (h *AdminHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := models.ListSkills(h.DB, h.Portfolio.ID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if skills == nil {
		skills = []models.Skill{}
	}
	writeJSON(w, http.StatusOK, skillsResponse{Status: "success", Skills: skills})
}

func (h *AdminHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := models.DeleteSkill(h.DB, h.Portfolio.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "skill not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
