package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pdfrag/loader/internal"
	"pdfrag/loader/service"
	"pdfrag/model"
	"pdfrag/store"
	"pdfrag/types"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := types.LoadConfig()
	embedder := model.NewOpenAIEmbedder(cfg)

	var storer store.VectorStorer
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN, embedder)
		if err != nil {
			log.Fatal("error connecting to Postgres: ", err)
		}
		defer pg.Close()
		storer = pg
	default:
		storer = store.NewFileStore(cfg.StorageDir, embedder)
	}

	loader := internal.NewPDFLoader(internal.NewPDFExtractor())
	if err := service.New(cfg, storer, loader).Run(ctx); err != nil {
		log.Fatal(err)
	}
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
}
