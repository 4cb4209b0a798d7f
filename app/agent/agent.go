package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"pdfrag/model"
	"pdfrag/retrieval"
	"pdfrag/types"
)

// StructuredAnswer is the output contract for batch-mode generation.
type StructuredAnswer struct {
	Answer string `json:"answer"`
}

// ChunkSink receives streamed text chunks. Implementations flush each
// chunk to the client before returning; a write error means the client
// is gone and the stream must stop.
type ChunkSink interface {
	WriteChunk(chunk string) error
}

const answerSystemPrompt = `You are an assistant answering questions from the provided context only.
Respond with a single JSON object of the form {"answer": "..."} and nothing else.
Answer clearly and to the point, without adding any additional information.
If the context is empty or does not contain the answer, say there is no information for this request.`

const streamSystemPrompt = "Use the context to answer.\n\nCONTEXT:\n%s"

// Agent combines retrieved context with the user question and drives
// the language model, either as one validated structured answer or as
// a relayed chunk stream.
type Agent struct {
	llm     model.ChatModel
	logger  *slog.Logger
	timeout time.Duration
}

func New(llm model.ChatModel, timeout time.Duration) *Agent {
	return &Agent{
		llm:     llm,
		logger:  slog.Default(),
		timeout: timeout,
	}
}

// BuildContext concatenates match contents in retrieval order, each
// annotated with its source file and page for the model's benefit.
// Only those two metadata keys are ever rendered; prompt-excluded
// metadata stays out of the text by construction.
func BuildContext(matches []types.Match) string {
	if len(matches) == 0 {
		return "empty"
	}
	var sb strings.Builder
	for i, m := range matches {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[SOURCE: %s | PAGE: %s]\n", m.Metadata[types.MetaFileName], retrieval.ResolvePage(m.Metadata))
		sb.WriteString(m.Content)
	}
	return sb.String()
}

// Answer runs one structured generation and validates the output
// contract. Malformed model output is an error, never a malformed
// response. No retries: retry is the caller's decision.
func (a *Agent) Answer(ctx context.Context, contextText, question string) (string, error) {
	start := time.Now()
	defer func() {
		a.logger.Info("llm answer finished", "took", time.Since(start))
	}()

	if contextText == "" {
		contextText = "empty"
	}
	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)

	if count, err := model.CountTokens(answerSystemPrompt + prompt); err == nil {
		a.logger.Info("prompt size", "tokens", count)
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.llm.Complete(cctx, answerSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	jsonStr, err := extractJSON(raw)
	if err != nil {
		return "", fmt.Errorf("model output is not a JSON object: %q", truncate(raw, 200))
	}
	var out StructuredAnswer
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return "", fmt.Errorf("malformed structured output: %w", err)
	}
	if strings.TrimSpace(out.Answer) == "" {
		return "", errors.New("structured output has no answer field")
	}
	return out.Answer, nil
}

// OpenStream starts a model stream for the conversation. Opening is
// separate from relaying so a start failure can still reach the client
// as a regular error response, before any response byte is committed.
func (a *Agent) OpenStream(ctx context.Context, contextText string, messages []types.ChatMessage) (model.ChatStream, error) {
	stream, err := a.llm.Stream(ctx, fmt.Sprintf(streamSystemPrompt, contextText), messages)
	if err != nil {
		return nil, fmt.Errorf("starting generation: %w", err)
	}
	return stream, nil
}

// Relay pumps chunks from an open stream to the sink in emission
// order. The first sink error or context cancellation abandons
// generation; the deferred Close releases the upstream connection.
func (a *Agent) Relay(ctx context.Context, stream model.ChatStream, sink ChunkSink) error {
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("stream receive: %w", err)
		}
		if err := sink.WriteChunk(chunk); err != nil {
			return fmt.Errorf("writing chunk: %w", err)
		}
	}
}

// extractJSON trims any chatter the model wrapped around the object.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errors.New("no valid json found")
	}
	return s[start : end+1], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
