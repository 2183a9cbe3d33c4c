// Package client обращается к REST API магазина: каталогу и заказам.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/domain"
	"github.com/vladislavdragonenkov/sweetcart/internal/version"
)

// DefaultTimeout — таймаут одного HTTP-запроса.
const DefaultTimeout = 10 * time.Second

const maxErrorBody = 64 << 10

// APIError — ответ API со статусом вне 2xx.
type APIError struct {
	Status  int
	Message string
	cause   error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Unwrap связывает 401 и 404 с доменными ошибками.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Config — параметры базового клиента.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// Token возвращает актуальный bearer-токен; пустая строка отключает заголовок.
	Token func() string
	// OnUnauthorized вызывается на каждый ответ 401.
	OnUnauthorized func()
	Logger         *log.Entry
}

// Client — общий HTTP-клиент для всех ресурсов API.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	token          func() string
	onUnauthorized func()
	userAgent      string
	logger         *log.Entry
}

// New проверяет базовый URL и собирает клиента.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be http or https", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.WithField("component", "api-client")
	}

	token := cfg.Token
	if token == nil {
		token = func() string { return "" }
	}

	return &Client{
		baseURL:        u,
		http:           httpClient,
		token:          token,
		onUnauthorized: cfg.OnUnauthorized,
		userAgent:      "sweetcart/" + version.GetVersion(),
		logger:         logger,
	}, nil
}

// do выполняет запрос и декодирует JSON-ответ в out (если out не nil).
func (c *Client) do(ctx context.Context, method, path string, in any, out any, headers http.Header) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	// path приходит уже экранированным: отдельные сегменты кодируются через url.PathEscape.
	rawPath := c.baseURL.EscapedPath() + path
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return fmt.Errorf("build request path %q: %w", path, err)
	}
	target := *c.baseURL
	target.Path = decoded
	target.RawPath = rawPath

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vv := range headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(log.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(started).Milliseconds(),
	}).Debug("api request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		apiErr.cause = domain.ErrUnauthorized
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	case http.StatusNotFound:
		apiErr.cause = domain.ErrNotFound
	}
	return apiErr
}
