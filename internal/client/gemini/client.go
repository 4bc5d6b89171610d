package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"card-backend/internal/model"
)

const defaultModel = "gemini-2.0-flash"

// Config Gemini 客户端配置
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // 可选，覆盖默认接口地址
}

// Client Gemini 多模态客户端
type Client struct {
	client *genai.Client
	model  string
}

// NewClient 创建 Gemini 客户端；API key 为空时直接返回错误
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", model.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, model: cfg.Model}, nil
}

// Extract 提示词与图片放在同一条 user 内容中，要求返回 application/json
func (c *Client) Extract(ctx context.Context, prompt string, images []model.CardImage) (string, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", classifyError(err)
	}
	text := resp.Text()
	if text == "" {
		return "", model.ErrNoExtractionData
	}
	return text, nil
}

// classifyError 5xx 与 429 视为暂不可用，其余状态码视为异常响应；非 API 错误（网络、取消）保持原样
func classifyError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini generate content: %w", err)
	}
	kind := model.ErrUpstreamBadResponse
	if apiErr.Code >= 500 || apiErr.Code == http.StatusTooManyRequests {
		kind = model.ErrUpstreamUnavailable
	}
	return fmt.Errorf("%w: gemini generate content: %w", kind, err)
}
