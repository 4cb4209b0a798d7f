package types

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Metadata keys attached to every indexed page.
const (
	MetaFileName     = "file_name"
	MetaPageLabel    = "page_label"
	MetaPageNumber   = "page_number"
	MetaFileSize     = "file_size"
	MetaCreationDate = "creation_date"
)

// Page is one unit of indexed content: the extracted text of a single
// PDF page plus its provenance metadata. ExcludedFromPrompt lists
// metadata keys that stay in the persisted index but must never be
// rendered into an LLM prompt.
type Page struct {
	Content            string
	Metadata           map[string]string
	ExcludedFromPrompt []string
}

// Document is a source file with its pages in file order.
type Document struct {
	FileName string
	Pages    []Page
}

// IndexedVector is a page together with its embedding and a
// store-assigned identifier. Created at build time, never mutated.
type IndexedVector struct {
	ID        uuid.UUID
	Page      Page
	Embedding []float32
}

// Match is a single similarity-search hit. Query-scoped, not persisted.
type Match struct {
	Content  string
	Metadata map[string]string
	Score    float32
}

// Config is the single shared configuration value for both the index
// builder and the query server. The embedding model identity lives here
// and nowhere else, so the build and query phases cannot drift apart.
type Config struct {
	ServerAddr string

	SourceDir  string
	StorageDir string
	PublicDir  string

	StoreBackend string // "file" or "postgres"
	PostgresDSN  string

	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	EmbeddingModel string

	TopK           int
	RequestTimeout time.Duration
}

// LoadConfig reads configuration from the environment. Defaults suit a
// local Ollama setup, where the API key is a fixed placeholder.
func LoadConfig() Config {
	cfg := Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":3000"),
		SourceDir:      getEnv("PDF_SOURCE_DIR", "./pdf"),
		StorageDir:     getEnv("INDEX_STORAGE_DIR", "./storage"),
		PublicDir:      getEnv("PUBLIC_DIR", "./public"),
		StoreBackend:   getEnv("STORE_BACKEND", "file"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:      getEnv("LLM_API_KEY", "ollama"),
		LLMModel:       getEnv("LLM_MODEL", "qwen2.5:3b"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		TopK:           3,
		RequestTimeout: 2 * time.Minute,
	}

	if v := os.Getenv("RETRIEVAL_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			cfg.TopK = k
		}
	}
	if v := os.Getenv("LLM_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}

	if cfg.StoreBackend == "postgres" {
		port, _ := strconv.Atoi(getEnv("PG_PORT", "5432"))
		cfg.PostgresDSN = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			getEnv("PG_HOST", "localhost"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
