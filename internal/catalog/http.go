package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"storefront/internal/domain"
	applog "storefront/internal/logger"
)

// DefaultURL is the public mock collection the storefront was built against.
const DefaultURL = "https://682e5317746f8ca4a47c9c37.mockapi.io/api/Product"

const maxBodyBytes = 4 << 20

type HTTPOptions struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  *logrus.Logger
}

// HTTPClient talks JSON to a REST product collection: GET /, GET /{id}, POST /.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	logger := applog.OrDiscard(opts.Logger)

	st := gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnf("CircuitBreaker[%s] state changed from %s to %s", name, from, to)
		},
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  client,
		cb:      gobreaker.NewCircuitBreaker(st),
		logger:  logger,
	}
}

func (c *HTTPClient) List(ctx context.Context) ([]domain.Product, error) {
	var wire []wireProduct
	if err := c.do(ctx, "list", http.MethodGet, c.baseURL, nil, &wire); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(wire))
	for _, w := range wire {
		products = append(products, w.toDomain())
	}
	c.logger.Debugf("catalog: list count=%d", len(products))
	return products, nil
}

func (c *HTTPClient) Get(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}
	var wire wireProduct
	if err := c.do(ctx, "get", http.MethodGet, c.baseURL+"/"+url.PathEscape(id), nil, &wire); err != nil {
		return nil, err
	}
	p := wire.toDomain()
	return &p, nil
}

func (c *HTTPClient) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	body := createRequest{
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		Category:    product.Category,
		Image:       product.Image,
	}
	var wire wireProduct
	if err := c.do(ctx, "create", http.MethodPost, c.baseURL, body, &wire); err != nil {
		return nil, err
	}
	p := wire.toDomain()
	c.logger.Infof("catalog: created id=%s name=%q", p.ID, p.Name)
	return &p, nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, target string, body, out interface{}) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, op, method, target, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Wrapf(ErrUnavailable, "catalog %s", op)
	}
	return err
}

func (c *HTTPClient) roundTrip(ctx context.Context, op, method, target string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "catalog %s: encode request", op)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrapf(err, "catalog %s: build request", op)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warnf("catalog: %s %s error=%v", method, target, err)
		return errors.Wrapf(err, "catalog %s", op)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrapf(err, "catalog %s: read body", op)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(domain.ErrNotFound, "catalog %s", op)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warnf("catalog: %s %s status=%d", method, target, resp.StatusCode)
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: truncate(string(payload), 200)}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "catalog %s: decode response", op)
	}
	return nil
}

// Client errors and missing products say nothing about the catalog's health.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode < 500
	}
	return false
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
