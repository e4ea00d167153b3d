// Package transport issues HTTP requests against the task API.
//
// Network-level retries and the per-request timeout live here; callers only
// see a status code and a body. Non-2xx statuses are not errors at this layer.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"tasksync/internal/service"
)

// RequestIDHeader carries a per-request identifier for server-side correlation.
const RequestIDHeader = "X-Request-ID"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Response is a completed HTTP exchange.
type Response struct {
	Status int
	Body   []byte
	Header http.Header
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Doer is the transport contract used by the session manager.
// body is JSON-encoded when non-nil.
type Doer interface {
	Request(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error)
}

// Options configures an HTTP transport.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
	Logger   *slog.Logger
}

// HTTP implements Doer over go-retryablehttp.
type HTTP struct {
	baseURL string
	client  *retryablehttp.Client
	log     *slog.Logger
}

// New creates an HTTP transport.
func New(opts Options) *HTTP {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = logger
	client.CheckRetry = retryNetworkErrors
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	return &HTTP{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  client,
		log:     logger,
	}
}

// Request sends one request. Cancellation surfaces as service.ErrCanceled,
// any other transport failure as *service.NetworkError.
func (h *HTTP) Request(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error) {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	url := h.baseURL + "/" + strings.TrimLeft(path, "/")
	var reqBody any
	if raw != nil {
		reqBody = raw
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if raw != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	h.log.Debug("http request", "method", method, "path", path, "request_id", requestID)

	resp, err := h.client.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return nil, service.Canceled(ctx.Err())
		}
		return nil, &service.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return nil, service.Canceled(ctx.Err())
		}
		return nil, &service.NetworkError{Op: "read " + path, Err: err}
	}

	h.log.Debug("http response", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	return &Response{
		Status: resp.StatusCode,
		Body:   bytes.TrimSpace(data),
		Header: resp.Header,
	}, nil
}

// retryNetworkErrors retries connection failures only. Status codes are
// returned to the caller untouched; the session layer owns 401 handling.
func retryNetworkErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return err != nil, nil
}
