package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxAttempts = 3

	DefaultScrapeTimeout = 15 * time.Minute
)

// Client for requests to the job search backend
type Client struct {
	baseURL       string
	httpClient    *http.Client
	logger        *zap.Logger
	userAgent     string
	backoff       time.Duration
	timeout       time.Duration
	scrapeTimeout time.Duration
}

// New creates a client. timeout bounds each lookup attempt; scrapes run
// synchronously on the backend and get DefaultScrapeTimeout instead.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:        logger,
		userAgent:     "jobwatch/1.0",
		backoff:       time.Second,
		timeout:       timeout,
		scrapeTimeout: DefaultScrapeTimeout,
	}
}

// WithScrapeTimeout overrides the bound on scrape requests.
func (c *Client) WithScrapeTimeout(d time.Duration) *Client {
	c.scrapeTimeout = d
	return c
}

// WithBackoff overrides the base retry backoff.
func (c *Client) WithBackoff(d time.Duration) *Client {
	c.backoff = d
	return c
}

// doRequest for HTTP reqs; only idempotent requests are retried
func (c *Client) doRequest(ctx context.Context, op, method, path string, params url.Values, timeout time.Duration) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = maxAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * c.backoff
			c.logger.Debug("retrying request",
				zap.String("url", fullURL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			if err := sleep(ctx, backoff); err != nil {
				return nil, &TransportError{Op: op, Err: err}
			}
		}

		body, status, err := c.roundTrip(ctx, method, fullURL, timeout)
		if err != nil {
			// cancelled by the caller: do not retry, do not log as failure
			if ctx.Err() != nil {
				return nil, &TransportError{Op: op, Err: ctx.Err()}
			}
			lastErr = &TransportError{Op: op, Err: err}
			continue
		}

		if status >= 200 && status < 300 {
			c.logger.Debug("successful request",
				zap.String("url", fullURL),
				zap.Int("status", status),
			)
			return body, nil
		}

		c.logger.Warn("API error",
			zap.String("url", fullURL),
			zap.Int("status", status),
			zap.String("body", string(body)),
		)

		switch status {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = &TransportError{Op: op, Status: status, Err: fmt.Errorf("unexpected status code")}
			continue
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			var apiErr ErrorResponse
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != nil {
				return nil, &TransportError{Op: op, Status: status, Err: fmt.Errorf("bad request: %v", apiErr.Detail)}
			}
			return nil, &TransportError{Op: op, Status: status, Err: fmt.Errorf("bad request: %s", string(body))}
		case http.StatusNotFound:
			return nil, &TransportError{Op: op, Status: status, Err: fmt.Errorf("not found")}
		default:
			return nil, &TransportError{Op: op, Status: status, Err: fmt.Errorf("unexpected status code")}
		}
	}

	return nil, lastErr
}

func (c *Client) roundTrip(ctx context.Context, method, fullURL string, timeout time.Duration) ([]byte, int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	return c.doRequest(ctx, op, http.MethodGet, path, params, c.timeout)
}

func (c *Client) post(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	return c.doRequest(ctx, op, http.MethodPost, path, params, c.scrapeTimeout)
}

func (c *Client) parseResponse(op string, data []byte, dest interface{}) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsCanceled reports whether err comes from a caller-cancelled request.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
