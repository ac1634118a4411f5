package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/foliohq/folio/internal/db"
	"github.com/foliohq/folio/internal/models"
	"github.com/foliohq/folio/internal/tracking"
)

type seedProject struct {
	title       string
	description string
	category    string
	sourceURL   string
	liveURL     string
	techs       []string
	// weight controls relative view volume (higher = more views)
	weight float64
}

var projects = []seedProject{
	{"Realtime Chat", "WebSocket chat server with presence and typing indicators", "backend", "https://github.com/owner/realtime-chat", "https://chat.demo.dev", []string{"Go", "WebSocket", "Redis"}, 5.0},
	{"Expense Tracker", "Personal finance dashboard with CSV import and budgets", "fullstack", "https://github.com/owner/expense-tracker", "https://expenses.demo.dev", []string{"React", "TypeScript", "PostgreSQL"}, 4.2},
	{"Image Resizer CLI", "Batch image resizing tool with watermark support", "tooling", "https://github.com/owner/imgsize", "", []string{"Go"}, 2.5},
	{"Weather Bot", "Telegram bot serving hourly forecasts", "bots", "https://github.com/owner/weather-bot", "", []string{"Go", "Telegram API"}, 3.1},
	{"Portfolio Site", "This site, React frontend with a Go backend", "fullstack", "https://github.com/owner/folio", "https://me.demo.dev", []string{"Go", "React", "SQLite"}, 4.8},
	{"Markdown Notes", "Local-first notes app with full-text search", "frontend", "https://github.com/owner/mdnotes", "https://notes.demo.dev", []string{"TypeScript", "React"}, 2.0},
}

var skills = []struct {
	name     string
	category string
}{
	{"Go", "backend"},
	{"React", "frontend"},
	{"TypeScript", "frontend"},
	{"PostgreSQL", "database"},
	{"SQLite", "database"},
	{"Redis", "database"},
	{"WebSocket", "backend"},
	{"Telegram API", "backend"},
	{"Docker", "infra"},
	{"Kubernetes", "infra"},
}

var achievements = []struct {
	title       string
	description string
	achievedOn  string
}{
	{"AWS Certified Developer", "Associate-level certification", "2024-03-12"},
	{"Hackathon Winner", "First place at CityJS hack night", "2024-11-02"},
	{"Open Source Maintainer", "500+ stars on imgsize", "2025-06-20"},
}

var referrers = []struct {
	url    string
	weight float64
}{
	{"https://google.com/", 30},
	{"", 20}, // direct traffic
	{"https://github.com/", 15},
	{"https://twitter.com/", 8},
	{"https://reddit.com/", 7},
	{"https://dev.to/", 5},
	{"https://news.ycombinator.com/", 5},
	{"https://linkedin.com/", 4},
}

var countries = []struct {
	name   string
	city   string
	weight float64
}{
	{"United States", "New York", 25},
	{"India", "Bengaluru", 20},
	{"Germany", "Berlin", 8},
	{"United Kingdom", "London", 7},
	{"Brazil", "São Paulo", 6},
	{"France", "Paris", 5},
	{"Canada", "Toronto", 4},
	{"Australia", "Sydney", 3},
	{"Japan", "Tokyo", 3},
	{"Netherlands", "Amsterdam", 2},
}

var userAgents = []struct {
	ua     string
	weight float64
}{
	{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", 45},
	{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15", 20},
	{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", 15},
	{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1", 15},
	{"Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36", 5},
}

func main() {
	godotenv.Load()

	dbPath := os.Getenv("FOLIO_DB_PATH")
	if dbPath == "" {
		dbPath = "./folio.db"
	}

	database, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()

	if _, err := models.LoadPortfolio(database); err == nil {
		log.Fatal("database already seeded")
	}

	rng := rand.New(rand.NewSource(42)) // deterministic seed
	now := time.Now().UTC()
	threeMonthsAgo := now.AddDate(0, -3, 0)

	fmt.Println("Seeding portfolio...")
	portfolio := &models.Portfolio{
		Title:      "Ada's Portfolio",
		OwnerName:  "Ada Smith",
		OwnerEmail: "ada@example.com",
		OwnerBio:   "Backend engineer who ships small sharp tools.",
		PublicURL:  "https://me.demo.dev",
	}
	if err := models.CreatePortfolio(database, portfolio); err != nil {
		log.Fatalf("create portfolio: %v", err)
	}

	fmt.Println("Seeding skills...")
	skillIDs := make(map[string]int64, len(skills))
	for _, s := range skills {
		skill := &models.Skill{PortfolioID: portfolio.ID, Name: s.name, Category: s.category}
		if err := models.CreateSkill(database, skill); err != nil {
			log.Fatalf("create skill %q: %v", s.name, err)
		}
		skillIDs[s.name] = skill.ID
	}

	fmt.Println("Seeding achievements...")
	for _, a := range achievements {
		achievement := &models.Achievement{
			PortfolioID: portfolio.ID,
			Title:       a.title,
			Description: a.description,
			AchievedOn:  a.achievedOn,
		}
		if err := models.CreateAchievement(database, achievement); err != nil {
			log.Fatalf("create achievement %q: %v", a.title, err)
		}
	}

	fmt.Println("Seeding projects...")
	created := make([]models.Project, 0, len(projects))
	for i, sp := range projects {
		project := &models.Project{
			PortfolioID:   portfolio.ID,
			Title:         sp.title,
			Description:   sp.description,
			Category:      sp.category,
			SourceCodeURL: sp.sourceURL,
			LiveSiteURL:   sp.liveURL,
			ProjectDate:   threeMonthsAgo.AddDate(0, 0, i*10).Format("2006-01-02"),
		}
		if err := models.CreateProject(database, project); err != nil {
			log.Fatalf("create project %q: %v", sp.title, err)
		}

		var ids []int64
		for _, tech := range sp.techs {
			ids = append(ids, skillIDs[tech])
		}
		if err := models.SetProjectTechnologies(database, project.ID, ids); err != nil {
			log.Fatalf("set technologies for %q: %v", sp.title, err)
		}
		created = append(created, *project)
		fmt.Printf("  [%2d] %s\n", project.ID, sp.title)
	}

	fmt.Println("\nGenerating visitors and views...")

	pickReferrer := func() string {
		var total float64
		for _, r := range referrers {
			total += r.weight
		}
		v := rng.Float64() * total
		for _, r := range referrers {
			v -= r.weight
			if v <= 0 {
				return r.url
			}
		}
		return referrers[0].url
	}
	pickCountry := func() (string, string) {
		var total float64
		for _, c := range countries {
			total += c.weight
		}
		v := rng.Float64() * total
		for _, c := range countries {
			v -= c.weight
			if v <= 0 {
				return c.name, c.city
			}
		}
		return countries[0].name, countries[0].city
	}
	pickUA := func() string {
		var total float64
		for _, u := range userAgents {
			total += u.weight
		}
		v := rng.Float64() * total
		for _, u := range userAgents {
			v -= u.weight
			if v <= 0 {
				return u.ua
			}
		}
		return userAgents[0].ua
	}

	const visitorCount = 400
	visitors := make([]models.Visitor, 0, visitorCount)
	for range visitorCount {
		country, city := pickCountry()
		ip := fmt.Sprintf("%d.%d.%d.%d", rng.Intn(224)+1, rng.Intn(256), rng.Intn(256), rng.Intn(256))
		v := models.Visitor{
			PortfolioID: portfolio.ID,
			SessionID:   uuid.NewString(),
			IPHash:      tracking.HashIP(ip),
			UserAgent:   pickUA(),
			Referrer:    pickReferrer(),
			Country:     country,
			City:        city,
		}
		if err := models.CreateVisitor(database, &v); err != nil {
			log.Fatalf("create visitor: %v", err)
		}
		visitors = append(visitors, v)
	}

	totalViews := 0
	for i, sp := range projects {
		project := created[i]
		viewsForProject := int(sp.weight * 60)
		for range viewsForProject {
			visitor := visitors[rng.Intn(len(visitors))]
			daysAgo := rng.Intn(90)
			viewedAt := now.AddDate(0, 0, -daysAgo).Add(-time.Duration(rng.Intn(86400)) * time.Second)
			pv := &models.ProjectView{
				ProjectID: project.ID,
				VisitorID: visitor.ID,
				ViewedAt:  viewedAt,
			}
			if err := models.InsertProjectView(database, pv); err != nil {
				log.Fatalf("insert view for %q: %v", sp.title, err)
			}
			totalViews++
		}
		fmt.Printf("  %-20s %d views\n", sp.title, viewsForProject)
	}

	fmt.Println("\nSeeding messages...")
	samples := []struct{ name, email, body string }{
		{"Jordan Patel", "jordan@example.net", "Loved the chat project write-up. Are you open to contract work?"},
		{"Sam Chen", "", "The expense tracker demo is exactly what I was looking for. Nice work!"},
		{"Riley Novak", "riley@example.org", "Found a small bug in imgsize on ARM, opened an issue on GitHub."},
	}
	for i, s := range samples {
		msg := &models.Message{
			PortfolioID: portfolio.ID,
			VisitorID:   visitors[i].ID,
			SenderName:  s.name,
			SenderEmail: s.email,
			Body:        s.body,
		}
		if err := models.CreateMessage(database, msg); err != nil {
			log.Fatalf("create message: %v", err)
		}
	}

	for name, value := range map[string]int64{
		"total_visitors": int64(len(visitors)),
		"total_views":    int64(totalViews),
	} {
		if err := models.UpsertStatistic(database, portfolio.ID, name, value); err != nil {
			log.Fatalf("upsert statistic %q: %v", name, err)
		}
	}

	fmt.Printf("\nDone! %d projects, %d visitors, %d views.\n", len(created), len(visitors), totalViews)
	fmt.Printf("Database: %s\n", dbPath)
}
