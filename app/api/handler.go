package api

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pdfrag/app/agent"
	"pdfrag/model"
	"pdfrag/retrieval"
	"pdfrag/store"
	"pdfrag/types"
)

// Retriever is the retrieval capability the handlers depend on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]types.Match, error)
}

// Generator is the generation capability the handlers depend on.
// Opening a stream is separate from relaying it so start failures can
// still surface as a regular error response.
type Generator interface {
	Answer(ctx context.Context, contextText, question string) (string, error)
	OpenStream(ctx context.Context, contextText string, messages []types.ChatMessage) (model.ChatStream, error)
	Relay(ctx context.Context, stream model.ChatStream, sink agent.ChunkSink) error
}

type RequestHandler struct {
	retriever Retriever
	generator Generator
	topK      int
	logger    *slog.Logger
}

func NewRequestHandler(retriever Retriever, generator Generator, topK int) *RequestHandler {
	return &RequestHandler{
		retriever: retriever,
		generator: generator,
		topK:      topK,
		logger:    slog.Default(),
	}
}

// HandleAsk answers one question in batch mode: retrieve, generate a
// validated structured answer, attach the deduplicated citations.
func (h *RequestHandler) HandleAsk(c *fiber.Ctx) error {
	var params types.AskParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if strings.TrimSpace(params.Question) == "" {
		return ErrNoQuestion()
	}

	matches, err := h.retriever.Retrieve(c.Context(), params.Question, h.topK)
	if err != nil {
		if errors.Is(err, store.ErrInvalidTopK) {
			return NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	answer, err := h.generator.Answer(c.Context(), agent.BuildContext(matches), params.Question)
	if err != nil {
		return err
	}

	return c.JSON(types.AskResponse{
		Answer:  answer,
		Sources: retrieval.Sources(matches),
	})
}
