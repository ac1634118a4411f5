package tracking

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/mssola/useragent"

	"github.com/foliohq/folio/internal/db"
	"github.com/foliohq/folio/internal/geo"
	"github.com/foliohq/folio/internal/models"
)

const (
	sessionIDMinLen = 20
	sessionIDMaxLen = 255
)

// ErrBadSessionID rejects session ids outside the accepted length range.
var ErrBadSessionID = errors.New("session_id must be between 20 and 255 characters")

// Request carries the per-request attributes of a tracking call.
type Request struct {
	SessionID string
	IP        string
	UserAgent string
	Referrer  string
}

type Tracker struct {
	db  *sql.DB
	geo *geo.Resolver
}

func New(database *sql.DB, resolver *geo.Resolver) *Tracker {
	return &Tracker{db: database, geo: resolver}
}

// TrackVisitor finds or creates the visitor for a session id. The first
// call for a session wins: later calls return the stored row unchanged
// even if the supplied attributes differ. Geolocation and user-agent
// enrichment only happen on the create path.
//
// Two concurrent first-time calls race to insert; the UNIQUE constraint on
// session_id picks the winner and the loser falls back to reading the
// winner's row.
func (t *Tracker) TrackVisitor(ctx context.Context, portfolioID int64, req Request) (*models.Visitor, error) {
	if len(req.SessionID) < sessionIDMinLen || len(req.SessionID) > sessionIDMaxLen {
		return nil, ErrBadSessionID
	}

	v, err := models.GetVisitorBySession(t.db, req.SessionID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	loc := t.geo.Resolve(ctx, req.IP)

	ua := useragent.New(req.UserAgent)
	browser, _ := ua.Browser()
	deviceType := "desktop"
	if ua.Mobile() {
		deviceType = "mobile"
	} else if ua.Bot() {
		deviceType = "bot"
	}

	v = &models.Visitor{
		PortfolioID: portfolioID,
		SessionID:   req.SessionID,
		IPHash:      HashIP(req.IP),
		UserAgent:   req.UserAgent,
		Referrer:    req.Referrer,
		Country:     loc.Country,
		City:        loc.City,
		Browser:     browser,
		OS:          ua.OS(),
		DeviceType:  deviceType,
		IsBot:       IsBot(req.UserAgent),
	}
	if err := models.CreateVisitor(t.db, v); err != nil {
		if db.IsUniqueViolation(err) {
			return models.GetVisitorBySession(t.db, req.SessionID)
		}
		return nil, err
	}
	return v, nil
}

// TrackView records one view event for a project and returns the fresh
// total view count. Views are not deduplicated; a reload produces another
// row. The visitor is resolved or created with TrackVisitor semantics,
// scoped to the project's owning portfolio.
func (t *Tracker) TrackView(ctx context.Context, project *models.Project, req Request) (int, *models.Visitor, error) {
	v, err := t.TrackVisitor(ctx, project.PortfolioID, req)
	if err != nil {
		return 0, nil, err
	}

	pv := &models.ProjectView{
		ProjectID: project.ID,
		VisitorID: v.ID,
		ViewedAt:  time.Now().UTC(),
	}
	if err := models.InsertProjectView(t.db, pv); err != nil {
		return 0, nil, err
	}

	count, err := models.ViewCountForProject(t.db, project.ID)
	if err != nil {
		return 0, nil, err
	}
	return count, v, nil
}

// HashIP hashes a raw IP before storage. Raw addresses are never persisted.
func HashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}
