package printshop

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"order-desk/internal/integrations"
	"order-desk/internal/metrics"
)

var _ integrations.OrderBackend = (*Provider)(nil)

// TokenSource отдаёт действующий токен доступа, при необходимости обновляя его.
type TokenSource interface {
	GetValidToken(ctx context.Context) (string, error)
}

// Provider - типизированный клиент сервера заказов типографии.
type Provider struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logger     *zap.Logger
	metrics    *metrics.Metrics

	// Повтор идемпотентных GET при сетевых сбоях и 5xx
	maxRetries uint64
	retryBase  time.Duration
}

type Option func(*Provider)

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// WithRetry задаёт число повторов и базовую задержку экспоненциальной паузы.
func WithRetry(maxRetries uint64, base time.Duration) Option {
	return func(p *Provider) {
		p.maxRetries = maxRetries
		p.retryBase = base
	}
}

func New(baseURL string, tokens TokenSource, logger *zap.Logger, opts ...Option) *Provider {
	p := &Provider{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logger:     logger.Named("printshop_provider"),
		maxRetries: 2,
		retryBase:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return "printshop"
}
