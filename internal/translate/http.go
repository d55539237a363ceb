package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 120 * time.Second

// Options configures the HTTP translation client.
type Options struct {
	// Endpoint is the full URL of the translation service.
	Endpoint string
	// SourceDialect and TargetDialect are passed through to the service.
	SourceDialect string
	TargetDialect string
	// Token is sent as a bearer token when non-empty.
	Token string
	// Timeout bounds each request; zero means the default.
	Timeout time.Duration
	// Logger for request diagnostics; nil discards.
	Logger *slog.Logger
}

// HTTPTranslator submits SQL to a remote translation endpoint over JSON.
type HTTPTranslator struct {
	hc     *http.Client
	opts   Options
	logger *slog.Logger
}

// NewHTTP creates an HTTP translation client.
func NewHTTP(opts Options) (*HTTPTranslator, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("translate: endpoint is required")
	}
	if !strings.HasPrefix(opts.Endpoint, "http://") && !strings.HasPrefix(opts.Endpoint, "https://") {
		return nil, fmt.Errorf("translate: endpoint must be an http(s) URL: %s", opts.Endpoint)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTPTranslator{
		hc:     &http.Client{Timeout: timeout},
		opts:   opts,
		logger: logger,
	}, nil
}

type translateRequest struct {
	Name          string `json:"name"`
	SQL           string `json:"sql"`
	SourceDialect string `json:"source_dialect,omitempty"`
	TargetDialect string `json:"target_dialect,omitempty"`
}

type translateResponse struct {
	SQL   string `json:"sql"`
	Error string `json:"error,omitempty"`
}

// Translate implements Translator.
func (t *HTTPTranslator) Translate(ctx context.Context, name, sql string) (string, error) {
	body, err := json.Marshal(translateRequest{
		Name:          name,
		SQL:           sql,
		SourceDialect: t.opts.SourceDialect,
		TargetDialect: t.opts.TargetDialect,
	})
	if err != nil {
		return "", fmt.Errorf("translate %s: encode request: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translate %s: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.opts.Token)
	}

	start := time.Now()
	resp, err := t.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return "", fmt.Errorf("translate %s: read response: %w", name, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return "", fmt.Errorf("translate %s: service returned %d: %s", name, resp.StatusCode, msg)
	}

	var decoded translateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("translate %s: decode response: %w", name, err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("translate %s: %s", name, decoded.Error)
	}

	t.logger.Debug("file translated", "file", name, "elapsed", time.Since(start).Round(time.Millisecond))
	return decoded.SQL, nil
}
