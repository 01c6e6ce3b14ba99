package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"stagelink/core"

	"github.com/sashabaranov/go-openai"
)

// Config holds the configuration for the OpenAI-backed chat source.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Service streams chat completions from an OpenAI-compatible endpoint and
// hands the decoded text chunks to the pipeline as they arrive. It
// implements the chat handler's ChunkSource.
type Service struct {
	client *openai.Client
	config Config
}

func NewService(config Config) *Service {
	if config.Model == "" {
		config.Model = openai.GPT4oMini
	}
	return &Service{config: config}
}

// Init validates the configuration and builds the API client.
func (s *Service) Init(ctx context.Context) error {
	if s.config.APIKey == "" {
		return fmt.Errorf("llm: API key is required")
	}
	cfg := openai.DefaultConfig(s.config.APIKey)
	if s.config.BaseURL != "" {
		cfg.BaseURL = s.config.BaseURL
	}
	s.client = openai.NewClientWithConfig(cfg)
	return nil
}

// Stream runs one streaming completion, invoking onChunk sequentially for
// every content delta. It returns nil on a clean end of stream and the
// read error when the stream breaks mid-response.
func (s *Service) Stream(ctx context.Context, messages []core.ChatMessage, onChunk func(chunk string)) error {
	if s.client == nil {
		return fmt.Errorf("llm: service not initialized")
	}

	req := openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    convertMessages(messages),
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
		Stream:      true,
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("llm: create stream: %w", err)
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("llm: stream read: %w", err)
		}
		if len(response.Choices) > 0 && response.Choices[0].Delta.Content != "" {
			onChunk(response.Choices[0].Delta.Content)
		}
	}
}

func convertMessages(messages []core.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    convertRole(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

func convertRole(role core.Role) string {
	switch role {
	case core.RoleSystem:
		return openai.ChatMessageRoleSystem
	case core.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
