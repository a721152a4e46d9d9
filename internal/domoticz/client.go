// Package domoticz reads user variables and device values from a Domoticz
// server and exposes them as the poller's state store.
package domoticz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	logx "lte2mqtt/pkg/logx"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var (
	// ErrAuthentication matches StatusErrors for 401 and 403.
	ErrAuthentication = errors.New("domoticz authentication failed")
	// ErrNoResult is returned when the server answers OK without a result row.
	ErrNoResult = errors.New("domoticz returned no result")
)

// StatusError is returned for any non-200 HTTP response.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("domoticz %s: HTTP error %d", e.Path, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrAuthentication &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the server root, e.g. "http://127.0.0.1:8080".
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Value is one stored reading. Data has its unit suffix stripped.
type Value struct {
	Data       string
	LastUpdate string
}

type apiResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Result  []apiResult `json:"result"`
}

type apiResult struct {
	Data       *string `json:"Data"`
	Value      *string `json:"Value"`
	LastUpdate string  `json:"LastUpdate"`
}

// Client is a minimal Domoticz JSON API client.
type Client struct {
	base *url.URL
	cfg  Config
	http *http.Client
	log  logx.Logger
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("domoticz: base url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("domoticz: invalid base url: %w", err)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{base: u, cfg: cfg, http: hc, log: log.With(logx.String("comp", "domoticz"))}, nil
}

// UserVariable returns the user variable with the given idx.
func (c *Client) UserVariable(ctx context.Context, idx int) (Value, error) {
	q := url.Values{}
	q.Set("type", "command")
	q.Set("param", "getuservariable")
	q.Set("idx", strconv.Itoa(idx))
	return c.get(ctx, q)
}

// Device returns the current value of the device with the given idx.
func (c *Client) Device(ctx context.Context, idx int) (Value, error) {
	q := url.Values{}
	q.Set("type", "devices")
	q.Set("rid", strconv.Itoa(idx))
	return c.get(ctx, q)
}

func (c *Client) get(ctx context.Context, q url.Values) (Value, error) {
	const path = "/json.htm"
	u := c.base.JoinPath(path)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Value{}, err
	}
	if c.cfg.Username != "" || c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Value{}, fmt.Errorf("domoticz %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Error("unexpected HTTP status", logx.Int("status", resp.StatusCode), logx.String("query", u.RawQuery))
		return Value{}, &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	var ar apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&ar); err != nil {
		return Value{}, fmt.Errorf("domoticz %s: decode: %w", path, err)
	}
	if ar.Status != "" && !strings.EqualFold(ar.Status, "OK") {
		return Value{}, fmt.Errorf("domoticz %s?%s: status %s: %s", path, u.RawQuery, ar.Status, ar.Message)
	}
	if len(ar.Result) == 0 {
		return Value{}, fmt.Errorf("%w (%s)", ErrNoResult, u.RawQuery)
	}
	return parseResult(ar.Result[0]), nil
}

// parseResult prefers Data over Value and drops everything after the first
// space, which separates the number from its unit.
func parseResult(r apiResult) Value {
	var data string
	switch {
	case r.Data != nil:
		data = *r.Data
	case r.Value != nil:
		data = *r.Value
	}
	if i := strings.IndexByte(data, ' '); i > 0 {
		data = data[:i]
	}
	return Value{Data: data, LastUpdate: r.LastUpdate}
}
