package types

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.ServerAddr != ":3000" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr)
	}
	if cfg.StoreBackend != "file" {
		t.Errorf("StoreBackend = %q", cfg.StoreBackend)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d", cfg.TopK)
	}
	if cfg.RequestTimeout != 2*time.Minute {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.LLMBaseURL != "http://localhost:11434/v1" {
		t.Errorf("LLMBaseURL = %q", cfg.LLMBaseURL)
	}
	if cfg.PostgresDSN != "" {
		t.Errorf("PostgresDSN should be empty for the file backend, got %q", cfg.PostgresDSN)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "7")
	t.Setenv("LLM_REQUEST_TIMEOUT", "30s")
	t.Setenv("EMBEDDING_MODEL", "mxbai-embed-large")

	cfg := LoadConfig()
	if cfg.TopK != 7 {
		t.Errorf("TopK = %d, want 7", cfg.TopK)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.EmbeddingModel != "mxbai-embed-large" {
		t.Errorf("EmbeddingModel = %q", cfg.EmbeddingModel)
	}
}

func TestLoadConfigIgnoresInvalidTopK(t *testing.T) {
	for _, v := range []string{"0", "-2", "three"} {
		t.Setenv("RETRIEVAL_TOP_K", v)
		if cfg := LoadConfig(); cfg.TopK != 3 {
			t.Errorf("RETRIEVAL_TOP_K=%s: TopK = %d, want default 3", v, cfg.TopK)
		}
	}
}

func TestValidateChatParams(t *testing.T) {
	empty := &ChatParams{}
	if errs := Validate(empty); len(errs) == 0 {
		t.Error("empty messages must fail validation")
	}

	ok := &ChatParams{Messages: []ChatMessage{{Role: "user", Content: "hi"}}}
	if errs := Validate(ok); len(errs) != 0 {
		t.Errorf("valid params failed validation: %v", errs)
	}
}
