package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gescall/dialer-console/pkg/logger"
	"github.com/valyala/fasthttp"
)

var (
	ErrAPIFailure = errors.New("telephony api reported an error")
)

// Config for the dialer admin API client. The API is a legacy CGI-style
// endpoint: every call is a GET with function/user/pass query parameters
// and a plain-text body that starts with "ERROR:" on failure.
type Config struct {
	BaseURL    string
	User       string
	Pass       string
	Source     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

type Client struct {
	config *Config
	client *fasthttp.Client
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}

	client := &Client{
		config: config,
		client: &fasthttp.Client{
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}

	logger.Info("Telephony client initialized", "url", config.BaseURL, "timeout", config.Timeout)

	return client, nil
}

// SetCampaignActive flips a campaign's active flag through the dialer
// admin API.
func (c *Client) SetCampaignActive(ctx context.Context, campaignID, active string) error {
	params := url.Values{}
	params.Set("function", "update_campaign")
	params.Set("campaign_id", campaignID)
	params.Set("active", active)
	return c.call(ctx, params)
}

// SetListActive flips a list's active flag through the dialer admin API.
func (c *Client) SetListActive(ctx context.Context, listID, active string) error {
	params := url.Values{}
	params.Set("function", "update_list")
	params.Set("list_id", listID)
	params.Set("active", active)
	return c.call(ctx, params)
}

func (c *Client) call(ctx context.Context, params url.Values) error {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		body, err := c.doRequest(ctx, params)
		if err != nil {
			logger.Warn("Telephony request failed, retrying",
				"error", err, "function", params.Get("function"), "attempt", attempt+1)
			lastErr = err
			continue
		}

		logger.Debug("Telephony request ok", "function", params.Get("function"), "response", firstLine(body))
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, params url.Values) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	full := url.Values{}
	full.Set("user", c.config.User)
	full.Set("pass", c.config.Pass)
	full.Set("source", c.config.Source)
	for k, vs := range params {
		for _, v := range vs {
			full.Add(k, v)
		}
	}

	req.SetRequestURI(c.config.BaseURL + "?" + full.Encode())
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.Body())
	}

	body := string(resp.Body())
	// The API answers 200 even on failure; the body carries the verdict.
	if strings.Contains(body, "ERROR:") {
		return "", fmt.Errorf("%w: %s", ErrAPIFailure, firstLine(body))
	}

	return body, nil
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
