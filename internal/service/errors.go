package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"card-backend/internal/model"
)

type temporary interface {
	Temporary() bool
}

// classify 为外部调用错误打上 model 中的类别；已分类的错误原样返回
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrConfiguration),
		errors.Is(err, model.ErrUpstreamUnavailable),
		errors.Is(err, model.ErrUpstreamBadResponse):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, model.ErrUpstreamUnavailable, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrUpstreamUnavailable, err)
	}
	var t temporary
	if errors.As(err, &t) && t.Temporary() {
		return fmt.Errorf("%s: %w: %w", op, model.ErrUpstreamUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrUpstreamBadResponse, err)
}
