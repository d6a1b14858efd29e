package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultModel = "gpt-4o-mini"

// OpenAI generates notes through the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAI creates a provider for the given API key. An empty model falls
// back to a small default; a nil logger discards output.
func NewOpenAI(apiKey, model string, logger *slog.Logger) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &OpenAI{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}, nil
}

func (o *OpenAI) GenerateNote(ctx context.Context, req NoteRequest) (string, error) {
	o.logger.Debug("generating workout note",
		"model", o.model,
		"category", req.Category,
		"date", req.Date.Format("2006-01-02"),
		"changes", len(req.Changes))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt()),
			openai.UserMessage(buildUserPrompt(req)),
		},
	})
	if err != nil {
		o.logger.Error("chat completion failed", "error", err)
		return "", fmt.Errorf("generating note: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	note, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		o.logger.Error("malformed note reply", "error", err)
		return "", err
	}

	o.logger.Debug("generated workout note", "length", len(note))
	return note, nil
}
