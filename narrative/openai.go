package narrative

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIConfig struct {
	APIKey      string // falls back to OPENAI_API_KEY
	BaseURL     string // falls back to OPENAI_BASE_URL, then the public API
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		MaxTokens:   2000,
		Timeout:     60 * time.Second,
	}
}

// OpenAI is a Completer backed by the chat completions API.
type OpenAI struct {
	client openai.Client
	cfg    OpenAIConfig
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	defaults := DefaultOpenAIConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...), cfg: cfg}, nil
}

func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(o.cfg.Temperature),
		MaxTokens:   openai.Int(o.cfg.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", o.cfg.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion (%s) returned no choices", o.cfg.Model)
	}
	logger.Debugf("narrative: %s answered in %s using %d tokens", o.cfg.Model, time.Since(start).Truncate(time.Millisecond), resp.Usage.TotalTokens)
	return resp.Choices[0].Message.Content, nil
}
