package ade

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/ade-labs/invoice-pipeline/internal/resilience"
)

// Config for the ADE client.
type Config struct {
	APIKey    string        // if empty, falls back to env VISION_AGENT_API_KEY
	BaseURL   string        // default https://api.va.landing.ai
	Model     string        // parse model id, e.g. "dpt-2-latest"
	Timeout   time.Duration // http client timeout
	BatchSize int           // request-rate hint; <=0 disables client-side limiting
}

// Client is a stateless call-through to the remote parse and extract
// endpoints. It is safe for concurrent use and is shared across all batch
// workers; retry and breaker policy live in the injected executor.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	exec    *resilience.Executor
	logger  *slog.Logger
}

func NewClient(cfg Config, exec *resilience.Executor, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("VISION_AGENT_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.va.landing.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "dpt-2-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	burst := 1
	if cfg.BatchSize > 0 {
		limit = rate.Limit(cfg.BatchSize)
		burst = cfg.BatchSize
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		exec:    exec,
		logger:  logger,
	}
}
