package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avdmeer/Post-Ledger-Backend/internal/api"
	"github.com/avdmeer/Post-Ledger-Backend/internal/config"
	"github.com/avdmeer/Post-Ledger-Backend/internal/database"
	"github.com/avdmeer/Post-Ledger-Backend/internal/jobs"
	"github.com/avdmeer/Post-Ledger-Backend/internal/peer"
	"github.com/avdmeer/Post-Ledger-Backend/internal/repository"
	"github.com/avdmeer/Post-Ledger-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply pending schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	agentRepo := repository.NewAgentRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	postRepo := repository.NewPostRepository(db)
	logRepo := repository.NewLogRepository(db)

	peerConfigured := cfg.Peer.URL != ""

	// Create services
	systemService := service.NewSystemService(db, peerConfigured)
	developerService := service.NewDeveloperService(logRepo)
	agentService := service.NewAgentService(
		agentRepo,
		recordRepo,
		cfg.Auth.Keys,
		cfg.Auth.TokenTTL,
	)
	chainService := service.NewChainService(
		agentRepo,
		recordRepo,
	)
	postService := service.NewPostService(
		postRepo,
		agentRepo,
		chainService,
	)

	var peerService *service.PeerService
	if peerConfigured {
		peerClient := peer.NewLedgerClient(cfg.Peer.URL, cfg.Peer.Timeout.Duration())
		peerService = service.NewPeerService(
			peerClient,
			agentRepo,
			recordRepo,
			postRepo,
			developerService,
		)
		log.Printf("Peer import enabled: %s", cfg.Peer.URL)
	}

	// Start background jobs
	scheduler := jobs.NewScheduler(chainService, peerService, developerService)
	if err := scheduler.Start(cfg.Jobs.ChainAuditSchedule, cfg.Jobs.PeerImportSchedule, cfg.Jobs.LogRetentionDays); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	// Create router
	router := api.NewRouter(systemService, agentService, postService, chainService, peerService, developerService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let running jobs finish before the process exits
	scheduler.Stop()

	log.Println("Server exited")
}
