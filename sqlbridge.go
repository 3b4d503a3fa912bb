package sqlbridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/joacominatel/sqlbridge/drivers"
)

// Target describes where to connect and with which credentials.
type Target = drivers.Target

// Options tunes one statement execution.
type Options struct {
	// CollectWarnings appends server-emitted warnings to the result.
	CollectWarnings bool

	// Timeout bounds the whole round-trip. Zero means no timeout.
	Timeout time.Duration
}

// Client executes single SQL statements. Every call opens its own
// connection; the only state shared between concurrent calls is the
// driver registry.
type Client struct {
	registry *drivers.Registry
	log      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRegistry uses a registry other than drivers.Default.
func WithRegistry(r *drivers.Registry) Option {
	return func(c *Client) { c.registry = r }
}

// WithLogger enables structured logging. The default logger discards
// everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client backed by drivers.Default unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		registry: drivers.Default,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClient = New()

// Execute runs one SQL statement with the default client.
func Execute(ctx context.Context, target Target, query string, opts Options) (*QueryResult, error) {
	return defaultClient.Execute(ctx, target, query, opts)
}
