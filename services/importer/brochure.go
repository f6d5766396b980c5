package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// URLChecker verifies that a brochure URL answers.
type URLChecker interface {
	Check(ctx context.Context, url string) error
}

// StatusError is returned when the URL answered with a non-2xx status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Brochure URL not accessible (Status: %d)", e.StatusCode)
}

// HTTPChecker issues a HEAD request per URL.
type HTTPChecker struct {
	client *resty.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{client: resty.New().SetTimeout(timeout)}
}

func (h *HTTPChecker) Check(ctx context.Context, url string) error {
	resp, err := h.client.R().SetContext(ctx).Head(url)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &StatusError{StatusCode: resp.StatusCode()}
	}
	return nil
}
