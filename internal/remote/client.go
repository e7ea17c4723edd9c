// Package remote reads camp data from another campreg instance over its
// /api/store endpoints.
package remote

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/models"
)

type Options struct {
	Timeout time.Duration
	Retries int
	// Token is sent as a bearer token when set.
	Token  string
	Logger *zap.Logger
}

// Client implements the same list operations as services.Registry.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

type apiError struct {
	Error string `json:"error"`
}

func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}
	return &Client{http: client, log: log}
}

// Reachable probes GET /healthz.
func (c *Client) Reachable(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/healthz")
	if err != nil {
		c.log.Debug("remote store unreachable", zap.Error(err))
		return false
	}
	return resp.IsSuccess()
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out any) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		SetError(&apiErr).
		Get(path)
	if err != nil {
		c.log.Warn("remote store call failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		c.log.Warn("remote store returned error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", msg),
		)
		return fmt.Errorf("GET %s: %d %s", path, resp.StatusCode(), msg)
	}
	return nil
}

func (c *Client) ListCamps(ctx context.Context) ([]models.Camp, error) {
	var out []models.Camp
	if err := c.get(ctx, "/api/store/camps", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListFamilies(ctx context.Context, campID uint) ([]models.Family, error) {
	var out []models.Family
	path := "/api/store/camps/" + strconv.FormatUint(uint64(campID), 10) + "/families"
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListIndividuals(ctx context.Context, campID uint) ([]models.Individual, error) {
	var out []models.Individual
	path := "/api/store/camps/" + strconv.FormatUint(uint64(campID), 10) + "/individuals"
	if err := c.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDelegates(ctx context.Context, campID *uint) ([]models.Delegate, error) {
	var q map[string]string
	if campID != nil {
		q = map[string]string{"camp_id": strconv.FormatUint(uint64(*campID), 10)}
	}
	var out []models.Delegate
	if err := c.get(ctx, "/api/store/delegates", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAidDeliveries(ctx context.Context) ([]models.AidDelivery, error) {
	var out []models.AidDelivery
	if err := c.get(ctx, "/api/store/aid", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
