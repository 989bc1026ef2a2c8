// Package duo is a client for the Duo Admin API, the recipient directory of
// the bridge. Every call is signed with the integration's secret key; see
// signer.go.
package duo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
	"github.com/PratikDhanave/idp-hook-bridge/internal/metrics"
)

const (
	apiPrefix = "/admin/v1"
	statOK    = "OK"

	// DefaultPageSize is the page size used by paginated searches.
	DefaultPageSize = 100
)

// Config locates the API and the integration used to sign requests.
type Config struct {
	// Endpoint is the API base URL, e.g. https://api-xxxxxxxx.duosecurity.com.
	Endpoint       string
	IntegrationKey string
	SecretKey      string
	Timeout        time.Duration
}

// Client calls the Admin API.
type Client struct {
	baseURL    string
	signer     *Signer
	httpClient *http.Client
	pageSize   int
	logger     logrus.FieldLogger
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config, logger logrus.FieldLogger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("invalid duo endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid duo endpoint %q: scheme and host required", cfg.Endpoint)
	}
	if cfg.IntegrationKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("duo integration key and secret key required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Duo's endpoint was historically configured with the /admin/v1 suffix.
	base := strings.TrimSuffix(strings.TrimRight(u.String(), "/"), apiPrefix)

	return &Client{
		baseURL:    base,
		signer:     NewSigner(cfg.IntegrationKey, cfg.SecretKey, u.Hostname()),
		httpClient: &http.Client{Timeout: timeout},
		pageSize:   DefaultPageSize,
		logger:     logging.OrDiscard(logger).WithField(logging.FieldService, "duo"),
	}, nil
}

// envelope is the wrapper around every Admin API response.
type envelope struct {
	Stat          string          `json:"stat"`
	Response      json.RawMessage `json:"response"`
	Code          int             `json:"code"`
	Message       string          `json:"message"`
	MessageDetail string          `json:"message_detail"`
}

// do signs and sends one request and decodes the "response" member into out
// (when out is non-nil). GET and DELETE carry params in the query string,
// everything else in a form-encoded body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, out any) error {
	signed := c.signer.NewRequest(method, path, params)
	encoded := EncodeParams(params)

	target := c.baseURL + path
	var body io.Reader
	if method == http.MethodGet || method == http.MethodDelete {
		if encoded != "" {
			target += "?" + encoded
		}
	} else {
		body = strings.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header = signed.Header()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.DuoRequestsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.DuoRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil || env.Stat != statOK {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Stat:       env.Stat,
			Code:       env.Code,
			Message:    env.Message,
			Detail:     env.MessageDetail,
			Body:       raw,
			Header:     resp.Header,
		}
		c.logger.WithFields(logrus.Fields{
			logging.FieldMethod: method,
			logging.FieldPath:   path,
			logging.FieldStatus: resp.StatusCode,
			"body":              string(raw),
			"headers":           resp.Header,
		}).Error("duo request failed")
		return apiErr
	}

	if out == nil || len(env.Response) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// searchPages walks a paginated collection until match returns true. An
// empty page ends the search with ErrNotFound.
func searchPages[T any](ctx context.Context, c *Client, path string, match func(T) bool) (T, error) {
	var zero T
	for offset := 0; ; offset += c.pageSize {
		params := url.Values{
			"limit":  {strconv.Itoa(c.pageSize)},
			"offset": {strconv.Itoa(offset)},
		}
		var page []T
		if err := c.do(ctx, http.MethodGet, path, params, &page); err != nil {
			return zero, err
		}
		for _, item := range page {
			if match(item) {
				return item, nil
			}
		}
		if len(page) == 0 {
			return zero, ErrNotFound
		}
	}
}
