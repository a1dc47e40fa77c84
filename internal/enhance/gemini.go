package enhance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel 是未配置模型时使用的 Gemini 模型。
const DefaultModel = "gemini-1.5-flash"

// GeminiEnhancer 直接调用 Gemini 改写文本。
type GeminiEnhancer struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiEnhancer 使用 API key 创建客户端；key 为空时返回错误。
func NewGeminiEnhancer(ctx context.Context, apiKey, model string, temperature float32) (*GeminiEnhancer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiEnhancer{client: client, model: model, temperature: temperature}, nil
}

// Enhance 实现 Enhancer。
func (g *GeminiEnhancer) Enhance(ctx context.Context, text string, kind Kind) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(text, kind)))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return extractText(resp)
}

// Close 释放底层连接。
func (g *GeminiEnhancer) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text parts in response")
	}
	return sb.String(), nil
}
