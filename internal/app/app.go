package app

import (
	"context"
	"fmt"

	"github.com/Mokshithabhi/chatpdf/internal/config"
	"github.com/Mokshithabhi/chatpdf/internal/core/fetch"
	"github.com/Mokshithabhi/chatpdf/internal/core/ingestion_engine"
	"github.com/Mokshithabhi/chatpdf/internal/core/llm"
	objectclient "github.com/Mokshithabhi/chatpdf/internal/core/object-client"
	"github.com/Mokshithabhi/chatpdf/internal/pkg/logger"
	"github.com/Mokshithabhi/chatpdf/internal/services"
)

type App struct {
	Cache   *services.DocumentCache
	Queries *services.QueryService
	Server  *Server
	Log     *logger.Logger

	embedder  *llm.GeminiEmbedder
	generator *llm.GeminiLLM
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	// S3 is optional; without credentials uploads stage to the local
	// upload directory instead.
	var objects objectclient.ObjectClient
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		objects, err = objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		log.Info("object storage ready", "bucket", cfg.BucketName)
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	generator, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	fetcher := fetch.NewFetcher(objects)
	extractor := ingestion_engine.NewDocconvExtractor(log)
	metadata := ingestion_engine.NewMetadataExtractor(generator, log)
	chunker := ingestion_engine.NewChunkExtractor(cfg.ChunkSize, cfg.ChunkOverlap)
	builder := ingestion_engine.NewIndexBuilder(embedder, cfg.EmbedBatch)

	cache := services.NewDocumentCache(fetcher, extractor, metadata, chunker, builder, log)
	queries := services.NewQueryService(cache, embedder, generator, cfg.TopK, log)

	server := NewServer(cfg, cache, queries, objects, log)

	return &App{
		Cache:     cache,
		Queries:   queries,
		Server:    server,
		Log:       log,
		embedder:  embedder,
		generator: generator,
	}, nil
}

func (a *App) Close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.generator != nil {
		_ = a.generator.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
