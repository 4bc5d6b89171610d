package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"card-backend/internal/client/llm"
	"card-backend/internal/model"
)

// VisionModel 多模态大模型：提示词 + 图片 -> JSON 文本
type VisionModel interface {
	Extract(ctx context.Context, prompt string, images []model.CardImage) (string, error)
}

// 提取提示词：要求只返回包含七个字段的 JSON 对象
const extractPrompt = `You are an expert business card data extractor. You will be given an image of a business card.
Your job is to read the text and extract key information in a structured JSON format.
The fields to extract are: organization, name, designation, contact, email, website, and address.
If a field is not found, use an empty string "" as its value.
Your response MUST be ONLY the JSON object, with no extra text, explanations, or markdown formatting.`

// ScanService 编排：名片图片 -> 大模型提取 -> 规整为 Contact
type ScanService struct {
	vision VisionModel
	logger *zap.Logger
}

// NewScanService 创建名片识别服务
func NewScanService(vision VisionModel, logger *zap.Logger) *ScanService {
	return &ScanService{vision: vision, logger: logger}
}

// Scan 识别正面（必填）与背面（可选）图片，返回 remarks 为空的联系人
func (s *ScanService) Scan(ctx context.Context, front model.CardImage, back *model.CardImage) (model.Contact, error) {
	images := []model.CardImage{front}
	if back != nil {
		images = append(images, *back)
	}

	raw, err := s.vision.Extract(ctx, extractPrompt, images)
	if errors.Is(err, llm.ErrNoContent) {
		err = model.ErrNoExtractionData
	}
	if err != nil {
		err = classify("extract card", err)
		s.logger.Warn("vision extraction failed", zap.Int("images", len(images)), zap.Error(err))
		return model.Contact{}, err
	}

	contact, err := parseContact(raw)
	if err != nil {
		err = classify("parse card", err)
		s.logger.Warn("vision output not parseable", zap.String("raw", truncate(raw, 500)), zap.Error(err))
		return model.Contact{}, err
	}
	return contact, nil
}

// parseContact 解析大模型输出；非字符串值转为字符串，多余字段丢弃，remarks 强制为空
func parseContact(raw string) (model.Contact, error) {
	raw = ExtractJSON(raw)
	if raw == "" {
		return model.Contact{}, model.ErrNoExtractionData
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return model.Contact{}, fmt.Errorf("%w: decode json: %v", model.ErrUpstreamBadResponse, err)
	}
	if fields == nil {
		return model.Contact{}, fmt.Errorf("%w: json is not an object", model.ErrUpstreamBadResponse)
	}
	var c model.Contact
	for _, key := range model.ContentFields {
		c.SetField(key, stringify(fields[key]))
	}
	c.Remarks = ""
	return c, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if _, nested := item.([]any); nested {
				continue
			}
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// ExtractJSON 从回复中提取 JSON（大模型可能带 markdown 代码块）
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
