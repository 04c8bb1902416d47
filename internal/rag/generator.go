package rag

import (
	"context"
	"errors"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/eduhub/tutor-go/internal/config"
	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/logger"
)

// ChatModel 文本生成模型接口
type ChatModel interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Ready() bool
}

// GeminiChatModel 使用Gemini生成接口
type GeminiChatModel struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiChatModel 创建Gemini生成模型
func NewGeminiChatModel(ctx context.Context, apiKey, model string, temperature float64) (*GeminiChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiChatModel{
		client:      client,
		model:       model,
		temperature: float32(temperature),
	}, nil
}

func (m *GeminiChatModel) Generate(ctx context.Context, system, user string) (string, error) {
	if m.client == nil {
		return "", errors.New("gemini client not initialized")
	}

	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}
	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(m.temperature),
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("generation response empty")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", errors.New("generation response empty")
	}
	return answer, nil
}

func (m *GeminiChatModel) Ready() bool {
	return m.client != nil
}

// OpenAIChatModel 使用OpenAI生成接口
type OpenAIChatModel struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIChatModel 创建OpenAI生成模型
func NewOpenAIChatModel(apiKey, model string, temperature float64) (*OpenAIChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is empty")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	temp := float32(temperature)
	if temp == 0 {
		// go-openai对Temperature字段做omitempty处理，0会被丢弃而回落到服务端默认值
		temp = math.SmallestNonzeroFloat32
	}

	return &OpenAIChatModel{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temp,
	}, nil
}

func (m *OpenAIChatModel) Generate(ctx context.Context, system, user string) (string, error) {
	if m.client == nil {
		return "", errors.New("openai client not initialized")
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: m.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("generation response empty")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("generation response empty")
	}
	return answer, nil
}

func (m *OpenAIChatModel) Ready() bool {
	return m.client != nil
}

// NewChatModel 按配置创建生成模型
func NewChatModel(ctx context.Context, cfg config.GenerationConfig) (ChatModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIChatModel(cfg.APIKey, cfg.Model, cfg.Temperature)
	case "gemini", "":
		return NewGeminiChatModel(ctx, cfg.APIKey, cfg.Model, cfg.Temperature)
	default:
		return nil, errors.New("unknown generation provider: " + cfg.Provider)
	}
}

// AnswerGenerator 带有限重试的答案生成器
type AnswerGenerator struct {
	model      ChatModel
	maxRetries int
	logger     *zap.Logger
}

// NewAnswerGenerator 创建答案生成器。maxRetries为失败后的额外尝试次数。
func NewAnswerGenerator(model ChatModel, maxRetries int) *AnswerGenerator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &AnswerGenerator{
		model:      model,
		maxRetries: maxRetries,
		logger:     logger.GetLogger(),
	}
}

// Generate 调用生成模型，失败时最多重试maxRetries次
func (g *AnswerGenerator) Generate(ctx context.Context, prompt GroundedPrompt) (string, error) {
	if g.model == nil || !g.model.Ready() {
		return "", apperrors.NewGenerationFailure()
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		answer, err := g.model.Generate(ctx, prompt.System, prompt.User)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		g.logger.Warn("Answer generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}

	return "", apperrors.NewGenerationFailure().WithCause(lastErr)
}
