package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"mindgraph/backend/internal/graph"
	"mindgraph/backend/internal/nlp"
	"mindgraph/backend/internal/service"
	"mindgraph/backend/pkg/config"
	"mindgraph/backend/pkg/logger"
)

type sampleNote struct {
	title   string
	content string
	tags    []string
}

// Sample notes chosen to overlap on entities and topics so the
// synchronizer has real material to link.
var samples = []sampleNote{
	{
		title:   "Raft Consensus",
		content: "Raft elects a leader per term and replicates a log to followers. Safety depends on the election restriction and commit rules.",
		tags:    []string{"distributed-systems"},
	},
	{
		title:   "Paxos Basics",
		content: "Paxos reaches consensus through proposers, acceptors and learners. Multi-Paxos amortizes the prepare phase, similar in spirit to Raft's leader.",
		tags:    []string{"distributed-systems"},
	},
	{
		title:   "Kafka Partitions",
		content: "Kafka topics split into partitions, each an ordered append-only log. Consumer groups divide partitions among members.",
		tags:    []string{"messaging"},
	},
	{
		title:   "Write-Ahead Logging",
		content: "A write-ahead log records changes before applying them, the same append-only structure Kafka partitions and Raft logs are built on.",
		tags:    []string{"storage"},
	},
	{
		title:   "Sourdough Starter",
		content: "Feed the starter equal parts flour and water daily. Keep it at room temperature until it doubles within six hours.",
		tags:    []string{"baking"},
	},
}

func main() {
	reset := flag.Bool("reset", false, "Delete all existing notes before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Seeding sample notes...")

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	if *reset {
		existing, err := repo.ListNotes(ctx)
		if err != nil {
			log.Fatal("Failed to list existing notes", zap.Error(err))
		}
		for _, n := range existing {
			if err := repo.DeleteNote(ctx, n.ID); err != nil {
				log.Fatal("Failed to delete note", zap.String("note_id", n.ID), zap.Error(err))
			}
		}
		log.Info("Cleared existing notes", zap.Int("count", len(existing)))
	}

	var intel nlp.TextIntelligence
	if cfg.IntelBackend == "openai" {
		intel = nlp.NewOpenAIIntel(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	} else {
		intel = nlp.NewClient(cfg.NLPServiceURL, cfg.NLPTimeout)
	}

	synchronizer := service.NewSynchronizer(repo, intel, cfg.SyncConcurrency)
	notes := service.NewNoteService(repo, intel, synchronizer)

	// Create through the service so enrichment and linking run for real.
	for _, s := range samples {
		note, err := notes.Create(ctx, s.title, s.content, s.tags)
		if err != nil {
			log.Fatal("Failed to seed note", zap.String("title", s.title), zap.Error(err))
		}
		log.Info("Seeded note", zap.String("note_id", note.ID), zap.String("title", note.Title))
	}

	rels, err := repo.AllRelationships(ctx)
	if err != nil {
		log.Fatal("Failed to count relationships", zap.Error(err))
	}
	log.Info("Seeding complete",
		zap.Int("notes", len(samples)),
		zap.Int("relationships", len(rels)),
	)
}
