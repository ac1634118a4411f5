package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	netmail "net/mail"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foliohq/folio/internal/mailer"
	"github.com/foliohq/folio/internal/models"
	"github.com/foliohq/folio/internal/tracking"
)

// TrackingHandler serves the public visitor/message/view endpoints.
type TrackingHandler struct {
	DB        *sql.DB
	Tracker   *tracking.Tracker
	Mailer    *mailer.Mailer
	Portfolio *models.Portfolio
}

type trackRequest struct {
	SessionID string `json:"session_id"`
}

type visitorPayload struct {
	ID       int64  `json:"id"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Referrer string `json:"referrer"`
}

type trackResponse struct {
	Status  string         `json:"status"`
	Visitor visitorPayload `json:"visitor"`
}

// Track registers the visitor session, creating it on first sight.
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	v, err := h.Tracker.TrackVisitor(r.Context(), h.Portfolio.ID, tracking.Request{
		SessionID: req.SessionID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		if errors.Is(err, tracking.ErrBadSessionID) {
			jsonValidationError(w, map[string]string{"session_id": err.Error()})
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, trackResponse{
		Status: "success",
		Visitor: visitorPayload{
			ID:       v.ID,
			Country:  v.Country,
			City:     v.City,
			Referrer: v.Referrer,
		},
	})
}

type messageRequest struct {
	SessionID   string `json:"session_id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Message     string `json:"message"`
}

type messageResponse struct {
	Status  string          `json:"status"`
	Message *models.Message `json:"message"`
}

// SubmitMessage accepts a contact-form submission tied to an existing
// visitor session. The caller must have tracked the session first.
func (h *TrackingHandler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if req.SenderName == "" {
		fields["sender_name"] = "sender_name is required"
	} else if len(req.SenderName) > 255 {
		fields["sender_name"] = "sender_name must be at most 255 characters"
	}
	if req.SenderEmail != "" {
		if len(req.SenderEmail) > 255 {
			fields["sender_email"] = "sender_email must be at most 255 characters"
		} else if _, err := netmail.ParseAddress(req.SenderEmail); err != nil {
			fields["sender_email"] = "sender_email must be a valid email address"
		}
	}
	if req.Message == "" {
		fields["message"] = "message is required"
	} else if len(req.Message) > 2000 {
		fields["message"] = "message must be at most 2000 characters"
	}
	if len(fields) > 0 {
		jsonValidationError(w, fields)
		return
	}

	visitor, err := models.GetVisitorBySession(h.DB, req.SessionID)
	if err != nil || visitor.PortfolioID != h.Portfolio.ID {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "internal error", http.StatusInternalServerError)
			return
		}
		jsonError(w, "invalid session, reload and try again", http.StatusBadRequest)
		return
	}

	msg := &models.Message{
		PortfolioID: h.Portfolio.ID,
		VisitorID:   visitor.ID,
		SenderName:  req.SenderName,
		SenderEmail: req.SenderEmail,
		Body:        req.Message,
	}
	if err := models.CreateMessage(h.DB, msg); err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	// Fire-and-forget; delivery failure never rolls back the message.
	if req.SenderEmail != "" {
		go h.Mailer.NotifyOwner(h.Portfolio, msg, visitor)
	}

	writeJSON(w, http.StatusCreated, messageResponse{Status: "success", Message: msg})
}

type viewResponse struct {
	Status    string `json:"status"`
	ViewCount int    `json:"view_count"`
}

// TrackView records one raw view for a project and returns the new total.
func (h *TrackingHandler) TrackView(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	count, _, err := h.Tracker.TrackView(r.Context(), project, tracking.Request{
		SessionID: req.SessionID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		if errors.Is(err, tracking.ErrBadSessionID) {
			jsonValidationError(w, map[string]string{"session_id": err.Error()})
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{Status: "success", ViewCount: count})
}

type statsResponse struct {
	Status string               `json:"status"`
	Stats  *models.ProjectStats `json:"stats"`
}

// ProjectStats serves the derived reporting view, computed on demand.
func (h *TrackingHandler) ProjectStats(w http.ResponseWriter, r *http.Request) {
	project, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	stats, err := models.StatsForProject(h.DB, project.ID)
	if err != nil {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Status: "success", Stats: stats})
}

func (h *TrackingHandler) loadProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, "invalid id", http.StatusBadRequest)
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
		jsonError(w, "project not found", http.StatusNotFound)
		return nil, false
	}
	return project, true
}

// chi's RealIP middleware already sets RemoteAddr from X-Forwarded-For/X-Real-IP
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || ip == "" {
		return r.RemoteAddr
	}
	return ip
}
