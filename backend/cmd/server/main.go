package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"mindgraph/backend/internal/api"
	"mindgraph/backend/internal/graph"
	"mindgraph/backend/internal/importer"
	"mindgraph/backend/internal/nlp"
	"mindgraph/backend/internal/service"
	"mindgraph/backend/pkg/config"
	"mindgraph/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	intel := buildIntel(cfg, log)

	// Wire services
	synchronizer := service.NewSynchronizer(repo, intel, cfg.SyncConcurrency)
	notes := service.NewNoteService(repo, intel, synchronizer)
	links := service.NewLinkService(repo, repo, intel)
	graphSvc := service.NewGraphService(repo, repo, intel)
	web := importer.NewWebImporter(cfg.NLPTimeout)

	router := api.NewRouter(api.Services{
		Notes:    notes,
		Links:    links,
		Graph:    graphSvc,
		Importer: web,
	}, log, cfg.IsProduction())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// buildIntel selects the text intelligence backend from configuration.
func buildIntel(cfg *config.Config, log *zap.Logger) nlp.TextIntelligence {
	switch cfg.IntelBackend {
	case "openai":
		log.Info("Using OpenAI-compatible text intelligence",
			zap.String("base_url", cfg.OpenAIBaseURL),
			zap.String("embedding_model", cfg.EmbeddingModel),
		)
		return nlp.NewOpenAIIntel(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	default:
		log.Info("Using NLP sidecar text intelligence",
			zap.String("url", cfg.NLPServiceURL),
		)
		return nlp.NewClient(cfg.NLPServiceURL, cfg.NLPTimeout)
	}
}
