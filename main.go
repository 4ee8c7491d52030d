package main

import (
	"context"
	"html/template"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"pickem-app-go/config"
	"pickem-app-go/database"
	"pickem-app-go/handlers"
	"pickem-app-go/localstore"
	"pickem-app-go/logging"
	"pickem-app-go/metrics"
	"pickem-app-go/middleware"
	"pickem-app-go/services"
	"pickem-app-go/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Output:      os.Stdout,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	cfg.LogConfiguration()
	logger := logging.WithPrefix("Main")

	// Remote pick store is optional: a missing host or failed connection
	// means local-only mode, never a startup failure.
	var db *database.MongoDB
	var pickRepo services.PickRepository
	if cfg.IsRemoteStoreConfigured() {
		db, err = database.NewMongoConnection(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
			Timeout:  cfg.Database.Timeout,
		})
		if err != nil {
			logger.Errorf("Database connection failed: %v", err)
			logger.Warn("Continuing in local-only mode...")
			db = nil
		} else {
			defer db.Close()
			pickRepo = database.NewMongoPickRepository(db)
		}
	} else {
		logger.Warn("No database host configured, running in local-only mode")
	}

	// Core services
	feed := services.NewESPNService(cfg.Feed.ScoreboardURL, cfg.Feed.Timeout)
	schedule := services.NewScheduleService(feed)
	store := localstore.New(cfg.Local.StateFile, cfg.App.DefaultLeague)
	picks := services.NewPickService(pickRepo, store, schedule)

	// Load the schedule and reconcile saved picks on startup. A feed failure
	// is retryable from the UI, so log and continue.
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := schedule.Refresh(startupCtx, store.Load().Week); err != nil {
		logger.Errorf("Initial schedule load failed: %v", err)
	} else if err := picks.Reconcile(startupCtx); err != nil {
		logger.Errorf("Startup reconciliation failed: %v", err)
	}
	cancel()

	// Parse templates
	pageTemplates, err := template.New("").Funcs(templates.GetTemplateFuncs()).ParseGlob("templates/*.html")
	if err != nil {
		logger.Fatalf("Error parsing templates: %v", err)
	}

	// Create handlers
	gameHandler := handlers.NewGameHandler(pageTemplates, schedule, picks)
	pickHandler := handlers.NewPickHandler(schedule, picks)
	healthHandler := handlers.NewHealthHandler(feed, db)

	// Live pick-list updates via the change stream, when the store is up
	if db != nil {
		watcher := services.NewPickStreamWatcher(db, gameHandler.BroadcastPickUpdate)
		watcher.StartWatching()
	}

	// Setup routes
	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.SecurityMiddleware)

	// Static files
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("static/"))))

	// Game routes
	r.HandleFunc("/", gameHandler.GetGames).Methods("GET")
	r.HandleFunc("/games", gameHandler.GetGames).Methods("GET")
	r.HandleFunc("/games/{id}/picks", gameHandler.GetGamePicks).Methods("GET")
	r.HandleFunc("/events", gameHandler.SSEHandler).Methods("GET")
	r.HandleFunc("/health", healthHandler.GetHealth).Methods("GET")

	// Pick routes
	r.HandleFunc("/picks", pickHandler.PostPick).Methods("POST")
	r.HandleFunc("/profile", pickHandler.PostProfile).Methods("POST")
	r.HandleFunc("/submit", pickHandler.PostSubmit).Methods("POST")
	r.HandleFunc("/refresh", pickHandler.PostRefresh).Methods("POST")
	r.HandleFunc("/clear", pickHandler.PostClear).Methods("POST")

	if cfg.App.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}

	// Start server
	addr := cfg.GetServerAddress()
	logger.Infof("Server starting on %s", addr)
	logger.Infof("Visit: http://%s", addr)
	logger.Fatal(http.ListenAndServe(addr, r))
}
