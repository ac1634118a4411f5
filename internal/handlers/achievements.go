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
type achievementRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	AchievedOn  *string `json:"achieved_on"`
}

type achievementsResponse struct {
	Status       string               `json:"status"`
	Achievements []models.Achievement `json:"achievements"`
}

type achievementResponse struct {
	Status      string              `json:"status"`
	Achievement *models.Achievement `json:"achievement"`
}

func (h *AdminHandler) CreateAchievement(w http.ResponseWriter, r *http.Request) {
	var req achievementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Title == nil || *req.Title == "" {
		jsonValidationError(w, map[string]string{"title": "title is required"})
		return
	}

	achievement := &models.Achievement{
		PortfolioID: h.Portfolio.ID,
		Title:       *req.Title,
		Description: strOrEmpty(req.Description),
		ImageURL:    strOrEmpty(req.ImageURL),
		AchievedOn:  strOrEmpty(req.AchievedOn),
	}
	if err := models.CreateAchievement(h.DB, achievement); err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, achievementResponse{Status: "success", Achievement: achievement})
}

func (h *AdminHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := models.ListAchievements(h.DB, h.Portfolio.ID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if achievements == nil {
		achievements = []models.Achievement{}
	}
	writeJSON(w, http.StatusOK, achievementsResponse{Status: "success", Achievements: achievements})
}

func (h *AdminHandler) UpdateAchievement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	achievement := &models.Achievement{ID: id}
	if err := models.GetAchievementByID(h.DB, achievement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "achievement not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if achievement.PortfolioID != h.Portfolio.ID {
		jsonError(w, "forbidden", http.StatusForbidden)
		return
	}

	var req achievementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// Partial update: keys absent from the body leave stored values alone.
	if req.Title != nil && *req.Title != "" {
		achievement.Title = *req.Title
	}
	if req.Description != nil {
		achievement.Description = *req.Description
	}
	if req.ImageURL != nil {
		achievement.ImageURL = *req.ImageURL
	}
	if req.AchievedOn != nil {
		achievement.AchievedOn = *req.AchievedOn
	}

	if err := models.UpdateAchievement(h.DB, achievement); err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, achievementResponse{Status: "success", Achievement: achievement})
}

func (h *AdminHandler) DeleteAchievement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := models.DeleteAchievement(h.DB, h.Portfolio.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "achievement not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
