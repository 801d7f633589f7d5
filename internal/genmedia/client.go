package genmedia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/infrastructure/observability"
)

// Options configure the generation-service client. Zero values fall back
// to the defaults used in production.
type Options struct {
	BaseURL       string
	APIKey        string
	MaskTimeout   time.Duration
	ImageTimeout  time.Duration
	SubmitTimeout time.Duration
	MaxAttempts   int
	BackoffBase   time.Duration
	BackoffCap    time.Duration
	PollInterval  time.Duration
	PollAttempts  int
	QuotaCooldown time.Duration
}

func (o *Options) applyDefaults() {
	if o.MaskTimeout <= 0 {
		o.MaskTimeout = 30 * time.Second
	}
	if o.ImageTimeout <= 0 {
		o.ImageTimeout = 60 * time.Second
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = 30 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 5 * time.Second
	}
	if o.BackoffCap <= 0 {
		o.BackoffCap = 30 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.PollAttempts <= 0 {
		o.PollAttempts = 60
	}
	if o.QuotaCooldown <= 0 {
		o.QuotaCooldown = time.Minute
	}
}

// Client talks to the external generative-media service. All operations
// share one retry policy: up to MaxAttempts tries with exponential backoff
// and jitter, retrying only failures where another attempt can help.
type Client struct {
	opts Options
	http *http.Client
	log  zerolog.Logger
	met  *observability.Metrics

	mu            sync.Mutex
	cooldownUntil time.Time
}

func New(opts Options, log zerolog.Logger, met *observability.Metrics) *Client {
	opts.applyDefaults()
	return &Client{
		opts: opts,
		http: &http.Client{},
		log:  log,
		met:  met,
	}
}

// inCooldown reports whether a prior quota failure still blocks requests.
func (c *Client) inCooldown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Now().Before(c.cooldownUntil)
}

func (c *Client) armCooldown() {
	c.mu.Lock()
	c.cooldownUntil = time.Now().Add(c.opts.QuotaCooldown)
	c.mu.Unlock()
}

// post runs one logical operation against the service, applying the shared
// retry policy. timeout bounds each individual attempt, not the whole call.
func (c *Client) post(ctx context.Context, op, path string, payload any, timeout time.Duration) ([]byte, error) {
	if c.inCooldown() {
		c.met.GenMediaRequestsTotal.WithLabelValues(op, "cooldown").Inc()
		return nil, &Error{Category: CategoryQuota, Message: "generation paused after quota exhaustion"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Category: CategoryValidation, Message: "encode request", Err: err}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.opts.BackoffBase
	bo.MaxInterval = c.opts.BackoffCap
	bo.MaxElapsedTime = 0

	var out []byte
	attempt := 0
	operation := func() error {
		attempt++
		res, err := c.once(ctx, path, body, timeout)
		if err == nil {
			out = res
			return nil
		}
		ge := AsError(err)
		if !ge.Retryable() || attempt >= c.opts.MaxAttempts {
			return backoff.Permanent(ge)
		}
		c.log.Warn().Str("op", op).Int("attempt", attempt).
			Str("category", string(ge.Category)).Msg("generation attempt failed, retrying")
		return ge
	}

	err = backoff.Retry(operation, backoff.WithContext(bo, ctx))
	if err != nil {
		ge := AsError(err)
		if ge.Category == CategoryQuota {
			c.armCooldown()
		}
		c.met.GenMediaRequestsTotal.WithLabelValues(op, string(ge.Category)).Inc()
		return nil, ge
	}
	c.met.GenMediaRequestsTotal.WithLabelValues(op, "ok").Inc()
	return out, nil
}

func (c *Client) once(ctx context.Context, path string, body []byte, timeout time.Duration) ([]byte, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, c.opts.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Category: CategoryValidation, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, string(data))
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodGet, c.opts.BaseURL+path, nil)
	if err != nil {
		return nil, &Error{Category: CategoryValidation, Message: "build request", Err: err}
	}
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, string(data))
	}
	return data, nil
}

func decodeInto(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &Error{Category: CategoryProcessing, Message: "decode generation response", Err: err}
	}
	return nil
}

func requireField(name, value string) error {
	if value == "" {
		return &Error{Category: CategoryValidation, Message: fmt.Sprintf("%s is required", name)}
	}
	return nil
}
