package model

import (
	"errors"
	"fmt"
)

// 错误分类：handler 按类别映射 HTTP 状态码与对外提示，原始错误只写日志
var (
	ErrValidation          = errors.New("validation error")
	ErrConfiguration       = errors.New("configuration error")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamBadResponse = errors.New("upstream bad response")
)

// ErrNoExtractionData 大模型未返回任何内容（属于 ErrUpstreamBadResponse）
var ErrNoExtractionData = fmt.Errorf("%w: ai model did not return any data", ErrUpstreamBadResponse)
