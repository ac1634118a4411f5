package tracking

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/foliohq/folio/internal/db"
	"github.com/foliohq/folio/internal/geo"
	"github.com/foliohq/folio/internal/models"
)

const testSession = "abcdefghij0123456789"

func testSetup(t *testing.T) (*sql.DB, *Tracker, int64) {
	t.Helper()
	database, err := db.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	p := &models.Portfolio{Title: "Test Portfolio", OwnerName: "Owner"}
	if err := models.CreatePortfolio(database, p); err != nil {
		t.Fatal(err)
	}

	// local=true keeps every lookup on the test sentinel, no network
	resolver, err := geo.New("http://geo.invalid", "", "", true)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(resolver.Close)

	return database, New(database, resolver), p.ID
}

func testProject(t *testing.T, database *sql.DB, portfolioID int64) *models.Project {
	t.Helper()
	p := &models.Project{PortfolioID: portfolioID, Title: "Demo"}
	if err := models.CreateProject(database, p); err != nil {
		t.Fatal(err)
	}
	return p
}

func visitorRowCount(t *testing.T, database *sql.DB) int {
	t.Helper()
	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM visitors`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestTrackVisitor_CreatesWithEnrichment(t *testing.T) {
	database, tracker, portfolioID := testSetup(t)

	v, err := tracker.TrackVisitor(context.Background(), portfolioID, Request{
		SessionID: testSession,
		IP:        "8.8.8.8",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Referrer:  "https://google.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.ID <= 0 {
		t.Errorf("ID = %d, want > 0", v.ID)
	}
	if v.Country != geo.TestCountry || v.City != geo.TestCity {
		t.Errorf("geo = %s/%s, want test sentinel", v.Country, v.City)
	}
	if v.IPHash == "" || v.IPHash == "8.8.8.8" {
		t.Errorf("ip hash = %q, want sha256 hex", v.IPHash)
	}
	if len(v.IPHash) != 64 {
		t.Errorf("ip hash length = %d, want 64", len(v.IPHash))
	}
	if v.Browser != "Chrome" {
		t.Errorf("browser = %q, want Chrome", v.Browser)
	}
	if v.DeviceType != "desktop" {
		t.Errorf("device type = %q, want desktop", v.DeviceType)
	}
	if v.IsBot {
		t.Error("IsBot = true for a real browser UA")
	}
	if n := visitorRowCount(t, database); n != 1 {
		t.Errorf("visitor rows = %d, want 1", n)
	}
}

func TestTrackVisitor_Idempotent(t *testing.T) {
	database, tracker, portfolioID := testSetup(t)

	first, err := tracker.TrackVisitor(context.Background(), portfolioID, Request{
		SessionID: testSession,
		IP:        "1.2.3.4",
		Referrer:  "https://a.example",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Same session, different attributes: stored row wins, no update.
	second, err := tracker.TrackVisitor(context.Background(), portfolioID, Request{
		SessionID: testSession,
		IP:        "5.6.7.8",
		Referrer:  "https://b.example",
	})
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != second.ID {
		t.Errorf("ids differ: %d vs %d", first.ID, second.ID)
	}
	if second.Referrer != "https://a.example" {
		t.Errorf("referrer = %q, want first-seen value", second.Referrer)
	}
	if n := visitorRowCount(t, database); n != 1 {
		t.Errorf("visitor rows = %d, want 1", n)
	}
}

func TestTrackVisitor_SessionIDLength(t *testing.T) {
	_, tracker, portfolioID := testSetup(t)

	for name, sessionID := range map[string]string{
		"too short": strings.Repeat("a", 19),
		"empty":     "",
		"too long":  strings.Repeat("a", 256),
	} {
		if _, err := tracker.TrackVisitor(context.Background(), portfolioID, Request{SessionID: sessionID}); err != ErrBadSessionID {
			t.Errorf("%s: err = %v, want ErrBadSessionID", name, err)
		}
	}

	for _, sessionID := range []string{strings.Repeat("a", 20), strings.Repeat("a", 255)} {
		if _, err := tracker.TrackVisitor(context.Background(), portfolioID, Request{SessionID: sessionID}); err != nil {
			t.Errorf("len %d: unexpected error: %v", len(sessionID), err)
		}
	}
}

func TestTrackVisitor_RaceLoserReadsWinnerRow(t *testing.T) {
	database, tracker, portfolioID := testSetup(t)

	// Simulate losing the insert race: the row appears after the
	// tracker's existence check would have missed it. Direct insert
	// stands in for the winning request.
	winner := &models.Visitor{PortfolioID: portfolioID, SessionID: testSession, Country: "Won"}
	if err := models.CreateVisitor(database, winner); err != nil {
		t.Fatal(err)
	}

	v, err := tracker.TrackVisitor(context.Background(), portfolioID, Request{
		SessionID: testSession,
		IP:        "8.8.8.8",
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.ID != winner.ID {
		t.Errorf("id = %d, want winner's %d", v.ID, winner.ID)
	}
	if n := visitorRowCount(t, database); n != 1 {
		t.Errorf("visitor rows = %d, want 1", n)
	}
}

func TestTrackView_CountsRawViews(t *testing.T) {
	database, tracker, portfolioID := testSetup(t)
	project := testProject(t, database, portfolioID)

	req := Request{SessionID: testSession, IP: "8.8.8.8"}

	count, v1, err := tracker.TrackView(context.Background(), project, req)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	count, v2, err := tracker.TrackView(context.Background(), project, req)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if v1.ID != v2.ID {
		t.Errorf("visitor ids differ: %d vs %d", v1.ID, v2.ID)
	}

	unique, err := models.UniqueVisitorsForProject(database, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unique != 1 {
		t.Errorf("unique visitors = %d, want 1", unique)
	}
}

func TestTrackView_DistinctSessions(t *testing.T) {
	database, tracker, portfolioID := testSetup(t)
	project := testProject(t, database, portfolioID)

	sessions := []string{
		"session-aaaaaaaaaaaaaaaa",
		"session-bbbbbbbbbbbbbbbb",
		"session-cccccccccccccccc",
	}
	for _, s := range sessions {
		if _, _, err := tracker.TrackView(context.Background(), project, Request{SessionID: s}); err != nil {
			t.Fatal(err)
		}
	}

	total, err := models.ViewCountForProject(database, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("total views = %d, want 3", total)
	}
	unique, err := models.UniqueVisitorsForProject(database, project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if unique != 3 {
		t.Errorf("unique visitors = %d, want 3", unique)
	}
}

func TestHashIP_StableAndOpaque(t *testing.T) {
	a := HashIP("203.0.113.7")
	b := HashIP("203.0.113.7")
	if a != b {
		t.Errorf("hash not stable: %q vs %q", a, b)
	}
	if a == "203.0.113.7" || len(a) != 64 {
		t.Errorf("hash = %q, want 64-char sha256 hex", a)
	}
	if HashIP("") != "" {
		t.Error("empty IP should hash to empty string")
	}
}

func TestIsBot(t *testing.T) {
	bots := []string{
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"curl/8.4.0",
		"python-requests/2.31.0",
		"Slackbot-LinkExpanding 1.0",
	}
	for _, ua := range bots {
		if !IsBot(ua) {
			t.Errorf("IsBot(%q) = false, want true", ua)
		}
	}

	humans := []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	}
	for _, ua := range humans {
		if IsBot(ua) {
			t.Errorf("IsBot(%q) = true, want false", ua)
		}
	}
}
