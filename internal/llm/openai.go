package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/genaitools/testgen/internal/config"
	"github.com/genaitools/testgen/pkg/types"
)

// OpenAIGenerator implements Generator against the OpenAI chat completion
// API. One request per call, bounded by the configured timeout.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewOpenAIGenerator builds a generator from the config. The config must
// already be validated; an empty API key is an error here.
func NewOpenAIGenerator(cfg *config.Config) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return &OpenAIGenerator{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.GenerationTimeout,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemMessage, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	logrus.WithField("model", g.model).Debug("Sending generation request")

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	logrus.WithField("finish_reason", resp.Choices[0].FinishReason).Debug("Received generation response")
	return resp.Choices[0].Message.Content, nil
}

// DetectFrameworkWithModel asks the model to classify the framework from a
// code sample when the heuristics were inconclusive. Invalid answers fall
// back to general.
func DetectFrameworkWithModel(ctx context.Context, gen Generator, files []types.FileFunctions) types.Framework {
	var sample strings.Builder
	fileLimit := len(files)
	if fileLimit > 3 {
		fileLimit = 3
	}
	for _, ff := range files[:fileLimit] {
		funcLimit := len(ff.Functions)
		if funcLimit > 2 {
			funcLimit = 2
		}
		for _, fn := range ff.Functions[:funcLimit] {
			sample.WriteString(fn.Source)
			sample.WriteString("\n\n")
		}
	}
	code := sample.String()
	if len(code) > 2000 {
		code = code[:2000]
	}
	if strings.TrimSpace(code) == "" {
		return types.FrameworkGeneral
	}

	system := "You are a Python framework detection expert. Analyze code and return only the framework name: flask, django, fastapi, or general."
	prompt := fmt.Sprintf("Analyze the following Python code and determine the web framework being used.\nReturn ONLY the framework name in lowercase (flask, django, fastapi, or general).\n\nCode to analyze:\n%s", code)

	answer, err := gen.Generate(ctx, system, prompt)
	if err != nil {
		logrus.WithError(err).Warn("Model framework detection failed, using general")
		return types.FrameworkGeneral
	}

	switch fw := strings.ToLower(strings.TrimSpace(answer)); fw {
	case "flask", "django", "fastapi":
		logrus.WithField("framework", fw).Info("Model detected framework")
		return types.Framework(fw)
	default:
		return types.FrameworkGeneral
	}
}
