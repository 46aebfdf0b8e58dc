// Package settings is a client for the system settings service. It loads the
// values a settings form is seeded with and saves the processed payload a
// valid form produces.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-formstate/pkg/formstate"
)

// DefaultTimeout applies when Client.HTTPClient is nil.
const DefaultTimeout = 10 * time.Second

const systemPath = "/settings/system"

// ErrBaseURL is returned when Client.BaseURL is empty or not absolute.
var ErrBaseURL = errors.New("settings: invalid base url")

// Envelope is the response body shared by every endpoint.
type Envelope struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	Data        formstate.Values    `json:"data,omitempty"`
	LastUpdated string              `json:"lastUpdated,omitempty"`
	Errors      map[string][]string `json:"errors,omitempty"`
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"}

// Updated parses LastUpdated. The service omits the zone, in which case the
// time is reported in UTC.
func (e *Envelope) Updated() (time.Time, bool) {
	if e == nil || e.LastUpdated == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, e.LastUpdated); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Client talks to the settings endpoints under BaseURL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Token is sent as a bearer token when set.
	Token  string
	Logger *slog.Logger
}

// Load fetches the current system settings.
func (c *Client) Load(ctx context.Context) (*Envelope, error) {
	return c.do(ctx, http.MethodGet, systemPath, nil)
}

// LoadForm fetches the current settings and resets form onto them, so the
// loaded values become the new pristine state.
func (c *Client) LoadForm(ctx context.Context, form *formstate.Form) (*Envelope, error) {
	if form == nil {
		return nil, formstate.ErrNilForm
	}
	env, err := c.Load(ctx)
	if err != nil {
		return nil, err
	}
	form.Reset(env.Data)
	return env, nil
}

// Save replaces the system settings with values.
func (c *Client) Save(ctx context.Context, values formstate.Values) (*Envelope, error) {
	return c.do(ctx, http.MethodPut, systemPath, values)
}

// Reset restores the service defaults.
func (c *Client) Reset(ctx context.Context) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, systemPath+"/reset", nil)
}

// SendTestEmail asks the service to deliver a message with the saved SMTP
// configuration.
func (c *Client) SendTestEmail(ctx context.Context, address string) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, systemPath+"/send-test-email", map[string]string{"testEmail": address})
}

// CreateBackup triggers a manual backup.
func (c *Client) CreateBackup(ctx context.Context) (*Envelope, error) {
	return c.do(ctx, http.MethodPost, systemPath+"/backup", nil)
}

// SubmitFunc adapts Save for formstate.Submit.
func (c *Client) SubmitFunc() formstate.SubmitFunc {
	return func(ctx context.Context, values formstate.Values) error {
		_, err := c.Save(ctx, values)
		return err
	}
}

func (c *Client) do(ctx context.Context, method, path string, reqBody any) (*Envelope, error) {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if reqBody != nil {
		raw, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("settings: marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("settings: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(c.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("settings: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("settings: read response: %w", err)
	}
	c.logger().Debug("settings: response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(raw))

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Message
			apiErr.Errors = env.Errors
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("settings: decode response: %w", decodeErr)
	}
	if !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	return &env, nil
}

func (c *Client) endpoint(path string) (string, error) {
	base, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrBaseURL, c.BaseURL)
	}
	base.Path = strings.TrimRight(base.Path, "/") + path
	return base.String(), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
