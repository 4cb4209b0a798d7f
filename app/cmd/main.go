package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pdfrag/app/server"
	"pdfrag/types"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	s := server.NewServer(types.LoadConfig())

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func mustLoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
}
