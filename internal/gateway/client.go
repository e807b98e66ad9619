package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/shareit-go/shareit/internal/pkg/middleware"
)

// ErrServerUnavailable is returned while the circuit to the server is open.
var ErrServerUnavailable = errors.New("booking server unavailable")

// errServerStatus marks a 5xx reply so the breaker counts it as a failure
// while the reply itself is still relayed to the caller.
var errServerStatus = errors.New("server returned 5xx")

// Response is a server reply relayed verbatim to the gateway's caller.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Request describes one call forwarded to the server.
type Request struct {
	Method    string
	Path      string
	RawQuery  string
	UserID    string
	RequestID string
	Body      []byte
}

// Client forwards validated requests to the booking server through a circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// BreakerSettings tunes when the circuit to the server opens.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings opens after five consecutive failures for thirty seconds.
var DefaultBreakerSettings = BreakerSettings{MaxFailures: 5, OpenTimeout: 30 * time.Second}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration, settings BreakerSettings, logger *zap.Logger) *Client {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = DefaultBreakerSettings.MaxFailures
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "shareit-server",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// Forward sends req to the server and returns its reply. Any HTTP status is a
// successful forward; only transport failures and an open circuit are errors.
func (c *Client) Forward(ctx context.Context, req Request) (*Response, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.Status >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, errServerStatus):
		return result.(*Response), nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, ErrServerUnavailable
	case err != nil:
		return nil, err
	}
	return result.(*Response), nil
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	endpoint := c.baseURL + req.Path
	if req.RawQuery != "" {
		endpoint += "?" + req.RawQuery
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.UserID != "" {
		httpReq.Header.Set(middleware.UserIDHeader, req.UserID)
	}
	if req.RequestID != "" {
		httpReq.Header.Set(middleware.RequestIDHeader, req.RequestID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("server request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read server response: %w", err)
	}

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
