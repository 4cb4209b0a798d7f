package api

import (
	"bufio"
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"pdfrag/app/agent"
	"pdfrag/types"
)

// HandleChat streams an answer as raw chunked text. Retrieval and any
// pre-stream failure still produce a JSON error; once the first chunk
// is flushed the connection can only end early, never carry an error
// code.
func (h *RequestHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	question := strings.TrimSpace(params.Messages[len(params.Messages)-1].Content)
	if question == "" {
		return ErrNoQuestion()
	}

	matches, err := h.retriever.Retrieve(c.Context(), question, h.topK)
	if err != nil {
		return err
	}
	contextText := agent.BuildContext(matches)

	// Open the model stream before committing the response, so a
	// start failure (model unreachable, no model loaded) still reaches
	// the client as a JSON error instead of an empty 200.
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := h.generator.OpenStream(ctx, contextText, params.Messages)
	if err != nil {
		cancel()
		return err
	}

	// Disable response buffering so chunks reach the client as soon
	// as the model emits them.
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set(fiber.HeaderCacheControl, "no-cache, no-transform")

	generator := h.generator
	logger := h.logger

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		sink := &flushSink{w: w}
		if err := generator.Relay(ctx, stream, sink); err != nil {
			// Mid-stream there is no way to signal an error to the
			// client; the stream just ends.
			logger.Error("chat stream aborted", "error", err)
		}
	})
	return nil
}

// flushSink writes each chunk straight through the response writer.
// A flush error means the client disconnected, which stops the
// generator on its next write.
type flushSink struct {
	w *bufio.Writer
}

func (s *flushSink) WriteChunk(chunk string) error {
	if _, err := s.w.WriteString(chunk); err != nil {
		return err
	}
	return s.w.Flush()
}
