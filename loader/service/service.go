package service

import (
	"context"
	"fmt"
	"log/slog"

	"pdfrag/loader/internal"
	"pdfrag/store"
	"pdfrag/types"
)

// Service drives one index build: load the source folder, embed every
// page, persist the store wholesale.
type Service struct {
	logger *slog.Logger
	cfg    types.Config
	store  store.VectorStorer
	loader *internal.PDFLoader
}

func New(cfg types.Config, storer store.VectorStorer, loader *internal.PDFLoader) *Service {
	return &Service{
		logger: slog.Default(),
		cfg:    cfg,
		store:  storer,
		loader: loader,
	}
}

func (s *Service) Run(ctx context.Context) error {
	docs, err := s.loader.LoadDir(s.cfg.SourceDir)
	if err != nil {
		return err
	}

	pages := internal.Flatten(docs)
	if len(pages) == 0 {
		return fmt.Errorf("no pages extracted from %s", s.cfg.SourceDir)
	}
	s.logger.Info("total pages to index", "files", len(docs), "pages", len(pages))

	if err := s.store.Build(ctx, pages); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	s.logger.Info("index built", "location", s.cfg.StorageDir, "embedding_model", s.cfg.EmbeddingModel)
	return nil
}
