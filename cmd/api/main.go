package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"notesqa/internal/config"
	"notesqa/internal/handlers"
	"notesqa/internal/http"
	"notesqa/internal/keypool"
	"notesqa/internal/llm"
	"notesqa/internal/rag"
	"notesqa/internal/storage"
	"notesqa/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	chunkRepo := storage.NewChunkRepo(db)
	documentRepo := storage.NewDocumentRepo(db)
	historyRepo := storage.NewHistoryRepo(db)

	// Initialize Qdrant vector store
	ctx := context.Background()
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.VectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)

	// Provider credential pool shared by the embedding and generation clients
	pool, err := keypool.New(cfg.APIKeys, cfg.KeyResetWindow)
	if err != nil {
		log.Fatalf("Failed to create credential pool: %v", err)
	}
	slog.Info("Credential pool ready", "keys", pool.Size(), "reset_window", cfg.KeyResetWindow)

	embedder, err := llm.NewEmbeddingsClient(pool, cfg.ProviderBaseURL, cfg.EmbeddingModel, cfg.VectorSize)
	if err != nil {
		log.Fatalf("Failed to create embeddings client: %v", err)
	}
	generator := llm.NewGenerationClient(pool, cfg.ProviderBaseURL, cfg.GenerationModel)

	// Create question-answering engine
	params := rag.Params{
		DistanceThreshold: cfg.DistanceThreshold,
		Ceiling:           cfg.RetrievalCeiling,
		SemanticWeight:    cfg.SemanticWeight,
		LexicalWeight:     cfg.LexicalWeight,
		MMRLambda:         cfg.MMRLambda,
	}
	engine := rag.NewEngine(embedder, generator, vectorStore, cfg.QdrantCollection,
		chunkRepo, historyRepo, params, cfg.AskTimeout)
	slog.Info("Engine initialized",
		"distance_threshold", cfg.DistanceThreshold, "ceiling", cfg.RetrievalCeiling)

	// Create router with dependencies
	deps := &http.Deps{
		Ask:       handlers.NewAskHandler(engine),
		History:   handlers.NewHistoryHandler(historyRepo),
		Documents: handlers.NewDocumentsHandler(documentRepo, vectorStore, cfg.QdrantCollection),
		Health:    handlers.NewHealthHandler(db, vectorStore, cfg.QdrantCollection),
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("Provider configuration",
		"base_url", cfg.ProviderBaseURL,
		"generation_model", cfg.GenerationModel,
		"embedding_model", cfg.EmbeddingModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
