package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"card-backend/internal/model"
)

// ErrNoContent 接口返回成功但 message.content 为空（null 或缺失）
var ErrNoContent = errors.New("llm returned no content")

// Config LLM 客户端配置
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // 0 表示使用 http.Client 默认值
}

// Client 大模型客户端（OpenAI 兼容接口，支持图片输入）
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient 创建 LLM 客户端
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// ChatRequest 聊天请求（OpenAI 兼容）
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// Message 多模态消息，content 为内容片段数组
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart 内容片段：text 或 image_url
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// ResponseFormat 输出格式约束，如 {"type":"json_object"}
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatResponse 聊天响应；content 可能为 null
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// APIError 非 200 响应
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api error: %s %s", e.Status, e.Body)
}

// Temporary 5xx 与 429 视为服务暂不可用
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// TextPart 构建文本片段
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart 构建图片片段，图片以 base64 data URI 内联
func ImagePart(mimeType string, data []byte) ContentPart {
	url := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// Chat 发送对话请求，返回第一条回复文本
func (c *Client) Chat(ctx context.Context, messages []Message, format *ResponseFormat) (string, error) {
	url := c.cfg.BaseURL + "/chat/completions"
	reqBody := ChatRequest{
		Model:          c.cfg.Model,
		Messages:       messages,
		ResponseFormat: format,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(data)}
	}
	var chatResp ChatResponse
	if err := json.Unmarshal(data, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	content := chatResp.Choices[0].Message.Content
	if content == nil {
		return "", ErrNoContent
	}
	return *content, nil
}

// Extract 以一条 user 消息发送提示词与全部图片，要求返回 JSON 对象
func (c *Client) Extract(ctx context.Context, prompt string, images []model.CardImage) (string, error) {
	parts := make([]ContentPart, 0, len(images)+1)
	parts = append(parts, TextPart(prompt))
	for _, img := range images {
		parts = append(parts, ImagePart(img.MIMEType, img.Data))
	}
	return c.Chat(ctx, []Message{{Role: "user", Content: parts}}, &ResponseFormat{Type: "json_object"})
}
