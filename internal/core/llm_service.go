package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/api/option"

	"github.com/campuscare/wellbeing-chat/internal/config"
)

const (
	defaultGeminiModel    = "gemini-1.5-flash-latest"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	defaultOllamaModel    = "llama3.2"

	agentTemperature = 0.4
	agentMaxTokens   = 120
)

// NewExecutor builds the Executor for the configured LLM provider. The
// returned close function releases the provider client.
func NewExecutor(ctx context.Context, cfg *config.Config) (Executor, func() error, error) {
	noop := func() error { return nil }

	switch cfg.LLMProvider {
	case config.ProviderGemini:
		exec, err := NewGeminiExecutor(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, noop, err
		}
		return exec, exec.Close, nil

	case config.ProviderOpenAI:
		model, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(modelOrDefault(cfg.LLMModel, defaultOpenAIModel)),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("create openai model: %w", err)
		}
		return NewLangChainExecutor(model), noop, nil

	case config.ProviderAnthropic:
		model, err := anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(modelOrDefault(cfg.LLMModel, defaultAnthropicModel)),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("create anthropic model: %w", err)
		}
		return NewLangChainExecutor(model), noop, nil

	case config.ProviderOllama:
		model, err := ollama.New(
			ollama.WithModel(modelOrDefault(cfg.LLMModel, defaultOllamaModel)),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, noop, fmt.Errorf("create ollama model: %w", err)
		}
		return NewLangChainExecutor(model), noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

func modelOrDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}

// GeminiExecutor runs agent tasks on Google Gemini.
type GeminiExecutor struct {
	client    *genai.Client
	modelName string
}

func NewGeminiExecutor(ctx context.Context, apiKey, modelName string) (*GeminiExecutor, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiExecutor{
		client:    client,
		modelName: modelOrDefault(modelName, defaultGeminiModel),
	}, nil
}

func (e *GeminiExecutor) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

func (e *GeminiExecutor) Execute(ctx context.Context, persona Persona, task Task, conversation string) (string, error) {
	model := e.client.GenerativeModel(e.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(persona.SystemPrompt())},
	}

	temp := float32(agentTemperature)
	maxTokens := int32(agentMaxTokens)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: &maxTokens,
		Temperature:     &temp,
	}

	resp, err := model.GenerateContent(ctx, genai.Text(BuildTaskPrompt(task, conversation)))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text.String(), nil
}

// LangChainExecutor runs agent tasks on any langchaingo model.
type LangChainExecutor struct {
	llm llms.Model
}

func NewLangChainExecutor(model llms.Model) *LangChainExecutor {
	return &LangChainExecutor{llm: model}
}

func (e *LangChainExecutor) Execute(ctx context.Context, persona Persona, task Task, conversation string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, persona.SystemPrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, BuildTaskPrompt(task, conversation)),
	}

	response, err := e.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(agentTemperature),
		llms.WithMaxTokens(agentMaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}
