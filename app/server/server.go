package server

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"pdfrag/app/agent"
	"pdfrag/app/api"
	"pdfrag/app/middleware"
	"pdfrag/model"
	"pdfrag/retrieval"
	"pdfrag/store"
	"pdfrag/types"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	cfg    types.Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer constructs the fiber app up front so Stop always has an
// app to shut down, even when a signal races startup.
func NewServer(cfg types.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: slog.Default(),
		app:    fiber.New(config),
	}
}

func (s *Server) Stop() {
	if err := s.app.Shutdown(); err != nil {
		s.logger.Error("error during shutdown", "error", err)
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()

	// One embedder instance serves every query, configured identically
	// to the build phase through the shared config.
	embedder := model.NewOpenAIEmbedder(s.cfg)

	storer, err := s.openStore(ctx, embedder)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			log.Fatal("no index found, run the indexer before starting the server: ", err)
		}
		log.Fatal("error opening vector store: ", err)
	}

	var (
		llm            = model.NewOpenAIChatModel(s.cfg)
		generator      = agent.New(llm, s.cfg.RequestTimeout)
		retriever      = retrieval.New(embedder, storer)
		app            = s.app
		checkHandler   = api.NewCheckHandler()
		requestHandler = api.NewRequestHandler(retriever, generator, s.cfg.TopK)
		apigrp         = app.Group("/api")
	)

	app.Use(middleware.PlugStatic("/"))
	app.Get("/health", checkHandler.HandleHealthy)
	app.Post("/ask", requestHandler.HandleAsk)
	apigrp.Post("/chat", requestHandler.HandleChat)
	app.Static("/", s.cfg.PublicDir)

	if err := app.Listen(s.cfg.ServerAddr); err != nil {
		s.logger.Error("error starting server", "error", err.Error())
	}
}

// openStore loads query-ready state for the configured backend. Load
// fails fast when no index exists: an unindexed corpus must not look
// like an empty one.
func (s *Server) openStore(ctx context.Context, embedder model.Embedder) (store.VectorStorer, error) {
	var storer store.VectorStorer
	switch s.cfg.StoreBackend {
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, s.cfg.PostgresDSN, embedder)
		if err != nil {
			return nil, err
		}
		storer = pg
	default:
		storer = store.NewFileStore(s.cfg.StorageDir, embedder)
	}

	if err := storer.Load(ctx); err != nil {
		return nil, err
	}
	return storer, nil
}
