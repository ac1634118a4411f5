package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"regexp"

	qrcode "github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/foliohq/folio/internal/github"
	"github.com/foliohq/folio/internal/models"
)

// PortfolioHandler serves the public portfolio aggregate, the QR code and
// the cached GitHub stats.
type PortfolioHandler struct {
	DB        *sql.DB
	GitHub    *github.Client
	Portfolio *models.Portfolio
}

type portfolioResponse struct {
	Status    string                     `json:"status"`
	Portfolio *models.PortfolioAggregate `json:"portfolio"`
}

// Get loads the singleton portfolio with all nested relations.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	agg, err := models.GetAggregate(h.DB, h.Portfolio.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			jsonError(w, "portfolio not found", http.StatusNotFound)
			return
		}
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, portfolioResponse{Status: "success", Portfolio: agg})
}

type githubResponse struct {
	Status string        `json:"status"`
	Stats  *github.Stats `json:"stats"`
}

// GitHubStats serves the cached GitHub profile aggregate.
func (h *PortfolioHandler) GitHubStats(w http.ResponseWriter, r *http.Request) {
	if h.GitHub == nil {
		jsonError(w, "github stats not configured", http.StatusNotFound)
		return
	}

	stats, err := h.GitHub.Stats(r.Context())
	if err != nil {
		jsonError(w, "github stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, githubResponse{Status: "success", Stats: stats})
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// QRCode renders the portfolio's public URL as a PNG.
func (h *PortfolioHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	if h.Portfolio.PublicURL == "" {
		jsonError(w, "portfolio has no public url", http.StatusNotFound)
		return
	}

	// Parse query params with defaults
	shape := r.URL.Query().Get("shape") // square|circle
	fg := r.URL.Query().Get("fg")       // hex color
	dl := r.URL.Query().Get("dl")       // 0|1

	// Build image options, always transparent background
	opts := []standard.ImageOption{
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(10),
		standard.WithBorderWidth(20),
		standard.WithBgTransparent(),
	}
	if shape == "circle" {
		opts = append(opts, standard.WithCircleShape())
	}
	if hexColorRe.MatchString(fg) {
		opts = append(opts, standard.WithFgColorRGBHex(fg))
	}

	qrc, err := qrcode.New(h.Portfolio.PublicURL)
	if err != nil {
		jsonError(w, "failed to generate qr code", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	writer := standard.NewWithWriter(nopCloser{&buf}, opts...)
	if err := qrc.Save(writer); err != nil {
		jsonError(w, "failed to render qr code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if dl == "1" {
		w.Header().Set("Content-Disposition", `attachment; filename="portfolio-qr.png"`)
	}
	w.Write(buf.Bytes())
}
