package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/foliohq/folio/internal/config"
	"github.com/foliohq/folio/internal/db"
	"github.com/foliohq/folio/internal/geo"
	"github.com/foliohq/folio/internal/github"
	"github.com/foliohq/folio/internal/handlers"
	"github.com/foliohq/folio/internal/mailer"
	"github.com/foliohq/folio/internal/models"
	"github.com/foliohq/folio/internal/tracking"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	portfolio, err := models.LoadPortfolio(database)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Fatal("no portfolio found, run cmd/seed first")
		}
		log.Fatalf("portfolio: %v", err)
	}
	if portfolio.PublicURL == "" {
		portfolio.PublicURL = cfg.PublicURL
	}

	resolver, err := geo.New(cfg.GeoAPIURL, cfg.GeoAPIKey, cfg.GeoIPPath, cfg.IsLocal())
	if err != nil {
		log.Printf("geo: %v (geoip fallback disabled)", err)
		resolver, _ = geo.New(cfg.GeoAPIURL, cfg.GeoAPIKey, "", cfg.IsLocal())
	}
	defer resolver.Close()

	var githubClient *github.Client
	if cfg.GitHubUser != "" {
		githubClient = github.NewClient(cfg.GitHubAPIURL, cfg.GitHubUser, cfg.GitHubTTL)
		if err := models.UpsertAPI(database, portfolio.ID, "github", cfg.GitHubAPIURL+"/users/"+cfg.GitHubUser); err != nil {
			log.Printf("github: %v", err)
		}
	}

	mailFrom := cfg.MailFrom
	if mailFrom == "" {
		mailFrom = portfolio.OwnerEmail
	}
	notifier := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, mailFrom)

	tracker := tracking.New(database, resolver)

	trackingHandler := &handlers.TrackingHandler{
		DB:        database,
		Tracker:   tracker,
		Mailer:    notifier,
		Portfolio: portfolio,
	}
	portfolioHandler := &handlers.PortfolioHandler{
		DB:        database,
		GitHub:    githubClient,
		Portfolio: portfolio,
	}
	adminHandler := &handlers.AdminHandler{
		DB:        database,
		Portfolio: portfolio,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		// Public site + dashboard reads
		r.Get("/portfolio", portfolioHandler.Get)
		r.Get("/portfolio/qr", portfolioHandler.QRCode)
		r.Get("/github/stats", portfolioHandler.GitHubStats)
		r.Post("/portfolio/track", trackingHandler.Track)
		r.Post("/portfolio/messages", trackingHandler.SubmitMessage)
		r.Post("/projects/{id}/views", trackingHandler.TrackView)
		r.Get("/projects/{id}/stats", trackingHandler.ProjectStats)

		// Owner-only CRUD
		r.Route("/admin", func(r chi.Router) {
			r.Use(handlers.AuthMiddleware(cfg.AdminToken))
			r.Post("/projects", adminHandler.CreateProject)
			r.Get("/projects", adminHandler.ListProjects)
			r.Get("/projects/{id}", adminHandler.GetProject)
			r.Patch("/projects/{id}", adminHandler.UpdateProject)
			r.Delete("/projects/{id}", adminHandler.DeleteProject)
			r.Put("/projects/{id}/technologies", adminHandler.SetTechnologies)
			r.Post("/skills", adminHandler.CreateSkill)
			r.Get("/skills", adminHandler.ListSkills)
			r.Delete("/skills/{id}", adminHandler.DeleteSkill)
			r.Post("/achievements", adminHandler.CreateAchievement)
			r.Get("/achievements", adminHandler.ListAchievements)
			r.Patch("/achievements/{id}", adminHandler.UpdateAchievement)
			r.Delete("/achievements/{id}", adminHandler.DeleteAchievement)
			r.Get("/messages", adminHandler.ListMessages)
			r.Delete("/messages/{id}", adminHandler.DeleteMessage)
			r.Get("/visitors", adminHandler.ListVisitors)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("folio listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-stop
	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	log.Println("goodbye")
}
