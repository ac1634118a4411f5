package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foliohq/folio/internal/models"
)

// AdminHandler serves the API-key-guarded CRUD surface consumed by the
// owner's dashboard.
type AdminHandler struct {
	DB        *sql.DB
	Portfolio *models.Portfolio
}

type messagesResponse struct {
	Status   string           `json:"status"`
	Messages []models.Message `json:"messages"`
}

func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := models.ListMessages(h.DB, h.Portfolio.ID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	writeJSON(w, http.StatusOK, messagesResponse{Status: "success", Messages: messages})
}

func (h *AdminHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := models.DeleteMessage(h.DB, h.Portfolio.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "message not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type visitorsResponse struct {
	Status   string           `json:"status"`
	Visitors []models.Visitor `json:"visitors"`
	Total    int              `json:"total"`
}

func (h *AdminHandler) ListVisitors(w http.ResponseWriter, r *http.Request) {
	visitors, err := models.ListVisitors(h.DB, h.Portfolio.ID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if visitors == nil {
		visitors = []models.Visitor{}
	}
	writeJSON(w, http.StatusOK, visitorsResponse{Status: "success", Visitors: visitors, Total: len(visitors)})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
