package logsnag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/joshuawatkins04/logsnag_sdk/internal/telemetry"
	"github.com/joshuawatkins04/logsnag_sdk/internal/transport"
)

// Client is the LogSnag SDK client. It is immutable after construction and
// safe for concurrent use.
type Client struct {
	transport *transport.Transport
	project   string
}

// NewClient creates a new LogSnag client for project, authenticating with
// apiToken. Neither argument is checked for emptiness; the service rejects
// bad credentials.
func NewClient(apiToken, project string, opts ...Option) (*Client, error) {
	config := newDefaultConfig()
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	httpClient, err := buildHTTPClient(config)
	if err != nil {
		return nil, err
	}

	userAgent := fmt.Sprintf("logsnag-go/%s", Version)
	if config.userAgent != "" {
		userAgent = userAgent + " " + config.userAgent
	}

	return &Client{
		transport: &transport.Transport{
			BaseURL:    config.baseURL,
			HTTPClient: httpClient,
			APIToken:   apiToken,
			UserAgent:  userAgent,
		},
		project: project,
	}, nil
}

// buildHTTPClient resolves the HTTPDoer, applying instrumentation where a
// RoundTripper is reachable.
func buildHTTPClient(config *clientConfig) (HTTPDoer, error) {
	var wrap func(http.RoundTripper) http.RoundTripper
	if config.telemetry.Enabled() {
		w, err := telemetry.Wrapper(config.telemetry)
		if err != nil {
			return nil, fmt.Errorf("configure telemetry: %w", err)
		}
		wrap = w
	}

	if config.httpClient == nil {
		return transport.NewHTTPClient(config.timeout, wrap), nil
	}

	hc, ok := config.httpClient.(*http.Client)
	if !ok || wrap == nil {
		return config.httpClient, nil
	}
	instrumented := *hc
	instrumented.Transport = wrap(hc.Transport)
	return &instrumented, nil
}

// Project returns the project name every payload is sent to.
func (c *Client) Project() string {
	return c.project
}

// Publish sends an event log to channel. opts may be nil.
// The response is returned on HTTP 200; its Body can still be read. If the
// body of a 200 response could not be read, the response is returned along
// with a *NetworkError whose Op is "read".
func (c *Client) Publish(ctx context.Context, channel, event string, opts *LogOptions) (*http.Response, error) {
	log := Log{
		Project: c.project,
		Channel: channel,
		Event:   event,
	}
	if opts != nil {
		log.Description = opts.Description
		log.Icon = opts.Icon
		log.Notify = opts.Notify
		log.Tags = opts.Tags.clone()
	}
	return c.sendLog(ctx, log)
}

// PublishInsight sends an insight. An empty icon is omitted. Results follow
// the same rules as Publish.
func (c *Client) PublishInsight(ctx context.Context, title string, value InsightValue, icon string) (*http.Response, error) {
	return c.sendInsight(ctx, Insight{
		Project: c.project,
		Title:   title,
		Value:   value,
		Icon:    icon,
	})
}

// sendLog encodes and posts an event log.
func (c *Client) sendLog(ctx context.Context, log Log) (*http.Response, error) {
	body, err := json.Marshal(log)
	if err != nil {
		return nil, &SerializationError{Payload: "log", Err: err}
	}
	return c.post(ctx, logPath, body)
}

// sendInsight encodes and posts an insight.
func (c *Client) sendInsight(ctx context.Context, insight Insight) (*http.Response, error) {
	body, err := json.Marshal(insight)
	if err != nil {
		return nil, &SerializationError{Payload: "insight", Err: err}
	}
	return c.post(ctx, insightPath, body)
}

// post performs a single request and applies the status contract: 200 is
// success, anything else is an *APIError. A 200 with an unreadable body
// still yields the response.
func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req := transport.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, &NetworkError{Op: "request", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		text := resp.Body
		if resp.ReadErr != nil {
			text = []byte(fmt.Sprintf("<unreadable body: %v>", resp.ReadErr))
		}
		return nil, newAPIError(resp.StatusCode, text, resp.RequestID)
	}

	if resp.ReadErr != nil {
		return resp.HTTP, &NetworkError{Op: "read", Err: resp.ReadErr}
	}

	return resp.HTTP, nil
}
