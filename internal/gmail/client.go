package gmail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/gmailmcp/internal/instrumentation"
	"github.com/teemow/gmailmcp/internal/logging"
)

const (
	// DefaultRateLimit is the default number of Gmail API calls per second.
	DefaultRateLimit = 10
	// DefaultRateBurst is the default burst size of the call limiter.
	DefaultRateBurst = 20

	userID = "me"
)

// Client wraps the Gmail API for one account. Every call is paced by a rate
// limiter, guarded by a circuit breaker and recorded as a span and metric.
// Calls are never retried.
type Client struct {
	svc     *gmail.Service
	account string

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *instrumentation.Metrics
	logger  *slog.Logger

	apiOptions []option.ClientOption
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRateLimit sets the sustained call rate and burst size.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records Gmail API call metrics.
func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for breaker state changes.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAPIOptions passes extra options to the Gmail service constructor,
// for example option.WithEndpoint in tests.
func WithAPIOptions(opts ...option.ClientOption) ClientOption {
	return func(c *Client) {
		c.apiOptions = append(c.apiOptions, opts...)
	}
}

// NewClient creates a Gmail client for account using an authorized HTTP client.
func NewClient(ctx context.Context, account string, hc *http.Client, opts ...ClientOption) (*Client, error) {
	c := &Client{
		account: account,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateBurst),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	apiOpts := append([]option.ClientOption{option.WithHTTPClient(hc)}, c.apiOptions...)
	svc, err := gmail.NewService(ctx, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	c.svc = svc

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gmail-api:" + account,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			var nce *nonCircuitError
			return err == nil || errors.As(err, &nce)
		},
	})

	return c, nil
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// BreakerState returns the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// call runs fn as one Gmail API operation.
func (c *Client) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceGmail, operation,
		attribute.String(instrumentation.SpanAttrAccount, c.account))
	defer span.End()

	start := time.Now()
	err := c.execute(ctx, fn)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		c.logger.Debug("gmail API call failed",
			logging.Operation(operation),
			logging.Account(c.account),
			logging.Err(err))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	if c.metrics != nil {
		c.metrics.RecordAPICall(ctx, instrumentation.ServiceGmail, operation, status, time.Since(start))
	}
	return err
}

func (c *Client) execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		if err := fn(ctx); err != nil {
			if !tripsBreaker(err) {
				return nil, &nonCircuitError{err: err}
			}
			return nil, err
		}
		return nil, nil
	})

	var nce *nonCircuitError
	if errors.As(err, &nce) {
		return nce.err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
