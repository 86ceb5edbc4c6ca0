package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"mindgraph/backend/internal/discord"
	"mindgraph/backend/internal/graph"
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
	log.Info("Starting note capture bot...")

	if cfg.DiscordBotToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is required")
	}

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

	var intel nlp.TextIntelligence
	if cfg.IntelBackend == "openai" {
		intel = nlp.NewOpenAIIntel(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	} else {
		intel = nlp.NewClient(cfg.NLPServiceURL, cfg.NLPTimeout)
	}

	synchronizer := service.NewSynchronizer(repo, intel, cfg.SyncConcurrency)
	notes := service.NewNoteService(repo, intel, synchronizer)
	capture := discord.NewCaptureHandler(notes, cfg.NotesChannelID, log)

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatal("Failed to create Discord session", zap.Error(err))
	}

	dg.AddHandler(capture.HandleMessage)
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	if err := dg.Open(); err != nil {
		log.Fatal("Failed to open Discord connection", zap.Error(err))
	}
	defer dg.Close()

	log.Info("Bot is running. Press Ctrl+C to exit.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down bot...")
}
