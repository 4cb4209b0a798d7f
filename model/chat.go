package model

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"pdfrag/types"
)

// ChatModel is the language-model capability boundary: one blocking
// completion with a JSON output contract, and one incremental stream.
type ChatModel interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Stream(ctx context.Context, system string, messages []types.ChatMessage) (ChatStream, error)
}

// ChatStream yields text chunks in the model's emission order.
// Recv returns io.EOF after the final chunk.
type ChatStream interface {
	Recv() (string, error)
	Close() error
}

// OpenAIChatModel talks to an OpenAI-compatible chat completions
// endpoint, typically a local Ollama behind its /v1 facade.
type OpenAIChatModel struct {
	client *openai.Client
	model  string
}

func NewOpenAIChatModel(cfg types.Config) *OpenAIChatModel {
	oc := openai.DefaultConfig(cfg.LLMAPIKey)
	oc.BaseURL = cfg.LLMBaseURL
	return &OpenAIChatModel{
		client: openai.NewClientWithConfig(oc),
		model:  cfg.LLMModel,
	}
}

// Complete runs a single chat completion in JSON-object mode and
// returns the raw message content.
func (m *OpenAIChatModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream opens a streaming completion. The system message carries the
// retrieved context; messages are relayed verbatim.
func (m *OpenAIChatModel) Stream(ctx context.Context, system string, messages []types.ChatMessage) (ChatStream, error) {
	req := openai.ChatCompletionRequest{
		Model:  m.model,
		Stream: true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
		},
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	stream, err := m.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat stream failed to start: %w", err)
	}
	return &openaiStream{inner: stream}, nil
}

type openaiStream struct {
	inner *openai.ChatCompletionStream
}

func (s *openaiStream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if err != nil {
			return "", err // io.EOF on normal completion
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *openaiStream) Close() error { return s.inner.Close() }

var _ io.Closer = (*openaiStream)(nil)
