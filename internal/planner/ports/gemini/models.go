package gemini

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/tripplanner-poc/server/internal/planner/model"
	logx "github.com/tripplanner-poc/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey           string
	BaseURL          string
	ExtractionConfig *model.ExtractionModelConfig
	RecConfig        *model.RecommendationModelConfig
}

// ChatModels holds the extraction and recommendation chat models. The
// extraction model runs at low temperature for structured output; the
// recommendation model is shared by all four free-text ports.
type ChatModels struct {
	Extraction          *gemini.ChatModel
	Recommendation      *gemini.ChatModel
	ExtractionModelName string
	RecModelName        string
}

// NewChatModels creates both chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModelExtraction, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ExtractionConfig.Model,
		Temperature: &config.ExtractionConfig.Temperature,
		MaxTokens:   &config.ExtractionConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating extraction model")
		return nil, fmt.Errorf("error creating extraction model: %w", err)
	}

	chatModelRec, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.RecConfig.Model,
		Temperature: &config.RecConfig.Temperature,
		MaxTokens:   &config.RecConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating recommendation model")
		return nil, fmt.Errorf("error creating recommendation model: %w", err)
	}

	return &ChatModels{
		Extraction:          chatModelExtraction,
		Recommendation:      chatModelRec,
		ExtractionModelName: config.ExtractionConfig.Model,
		RecModelName:        config.RecConfig.Model,
	}, nil
}
