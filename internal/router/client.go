package router

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lte2mqtt/internal/signal"
	"lte2mqtt/internal/traffic"
	logx "lte2mqtt/pkg/logx"
)

const (
	pathSesTokInfo   = "/api/webserver/SesTokInfo"
	pathToken        = "/api/webserver/token"
	pathLogin        = "/api/user/login"
	pathSignal       = "/api/device/signal"
	pathTrafficStats = "/api/monitoring/traffic-statistics"
	pathClearTraffic = "/api/monitoring/clear-traffic"

	headerToken    = "__RequestVerificationToken"
	headerTokenOne = "__RequestVerificationTokenone"
	headerTokenTwo = "__RequestVerificationTokentwo"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Password encodings understood by /api/user/login.
const (
	PasswordTypeBase64 = 0
	PasswordTypeSHA256 = 4
)

// Config configures a router client.
type Config struct {
	// BaseURL is the router's web UI, e.g. "http://192.168.8.1".
	BaseURL      string
	Username     string
	Password     string
	PasswordType int
	Timeout      time.Duration
	// HTTPClient overrides the default client (its Jar is replaced).
	HTTPClient *http.Client
}

// Client is a Huawei LTE web API client. It is not safe for concurrent use.
type Client struct {
	base *url.URL
	cfg  Config
	http *http.Client
	log  logx.Logger

	tokens   []string
	loggedIn bool
}

// New validates cfg and returns a client with its own cookie jar.
func New(cfg Config, log logx.Logger) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("router: base url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("router: invalid base url: %w", err)
	}
	if cfg.PasswordType != PasswordTypeBase64 && cfg.PasswordType != PasswordTypeSHA256 {
		return nil, fmt.Errorf("router: unsupported password type %d", cfg.PasswordType)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		cp := *cfg.HTTPClient
		hc = &cp
	}
	hc.Jar = jar
	if hc.Timeout == 0 {
		hc.Timeout = cfg.Timeout
		if hc.Timeout <= 0 {
			hc.Timeout = defaultTimeout
		}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{base: u, cfg: cfg, http: hc, log: log.With(logx.String("comp", "router"))}, nil
}

// Login opens a session. It is called implicitly by the data calls; calling
// it explicitly surfaces credential problems early.
func (c *Client) Login(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	if err := c.openSession(ctx); err != nil {
		return err
	}
	if c.cfg.Username == "" {
		// Routers with login disabled accept anonymous sessions.
		c.loggedIn = true
		return nil
	}

	token, err := c.nextToken(ctx)
	if err != nil {
		return err
	}
	body, err := encodeRequest(loginRequest{
		Username:     c.cfg.Username,
		Password:     encodePassword(c.cfg.Username, c.cfg.Password, token, c.cfg.PasswordType),
		PasswordType: c.cfg.PasswordType,
	})
	if err != nil {
		return err
	}
	err = c.do(ctx, http.MethodPost, pathLogin, token, body, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == codeAlreadyLoggedIn {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.loggedIn = true
	c.log.Debug("router session established", logx.String("user", c.cfg.Username))
	return nil
}

// Signal returns the current radio readings.
func (c *Client) Signal(ctx context.Context) (signal.Sample, error) {
	if err := c.Login(ctx); err != nil {
		return nil, err
	}
	var r signalResponse
	if err := c.do(ctx, http.MethodGet, pathSignal, "", nil, &r); err != nil {
		return nil, err
	}
	return signal.Sample{
		signal.RSRQ:   r.RSRQ,
		signal.RSRP:   r.RSRP,
		signal.RSSI:   r.RSSI,
		signal.SINR:   r.SINR,
		signal.CellID: r.CellID,
	}, nil
}

// TrafficStatistics returns the cumulative counters since the last clear.
func (c *Client) TrafficStatistics(ctx context.Context) (traffic.Counters, error) {
	if err := c.Login(ctx); err != nil {
		return traffic.Counters{}, err
	}
	var r trafficResponse
	if err := c.do(ctx, http.MethodGet, pathTrafficStats, "", nil, &r); err != nil {
		return traffic.Counters{}, err
	}
	dl, err := parseCounter("TotalDownload", r.TotalDownload)
	if err != nil {
		return traffic.Counters{}, err
	}
	ul, err := parseCounter("TotalUpload", r.TotalUpload)
	if err != nil {
		return traffic.Counters{}, err
	}
	c.log.Debug("traffic statistics",
		logx.Uint64("total_dl_bytes", uint64(dl)),
		logx.Uint64("total_ul_bytes", uint64(ul)),
		logx.String("connect_time", r.CurrentConnectTime),
		logx.String("dl_rate", r.CurrentDownloadRate),
		logx.String("ul_rate", r.CurrentUploadRate),
	)
	return traffic.Counters{DownloadBytes: dl, UploadBytes: ul}, nil
}

// ClearTraffic zeroes the router's traffic statistics.
func (c *Client) ClearTraffic(ctx context.Context) error {
	if err := c.Login(ctx); err != nil {
		return err
	}
	token, err := c.nextToken(ctx)
	if err != nil {
		return err
	}
	body, err := encodeRequest(clearTrafficRequest{ClearTraffic: 1})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, pathClearTraffic, token, body, nil)
}

// openSession fetches the anonymous session cookie and the first CSRF token.
func (c *Client) openSession(ctx context.Context) error {
	var r sesTokInfo
	if err := c.do(ctx, http.MethodGet, pathSesTokInfo, "", nil, &r); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	name, value, ok := strings.Cut(strings.TrimSpace(r.SesInfo), "=")
	if ok && name != "" {
		c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	}
	if tok := strings.TrimSpace(r.TokInfo); tok != "" {
		c.tokens = append(c.tokens, tok)
	}
	return nil
}

// nextToken pops a CSRF token, fetching a fresh one when the queue is empty.
func (c *Client) nextToken(ctx context.Context) (string, error) {
	if len(c.tokens) == 0 {
		var r tokenResponse
		if err := c.do(ctx, http.MethodGet, pathToken, "", nil, &r); err != nil {
			return "", fmt.Errorf("token: %w", err)
		}
		tok := strings.TrimSpace(r.Token)
		if len(tok) > 32 {
			tok = tok[len(tok)-32:]
		}
		if tok == "" {
			return "", fmt.Errorf("token: %w: empty token", ErrAuthentication)
		}
		c.tokens = append(c.tokens, tok)
	}
	tok := c.tokens[0]
	c.tokens = c.tokens[1:]
	return tok, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, out any) error {
	u := c.base.JoinPath(path)
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	}
	if token != "" {
		req.Header.Set(headerToken, token)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("router %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.collectTokens(resp.Header)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("router %s: read body: %w", path, err)
	}
	return decodeResponse(path, b, out)
}

// collectTokens keeps the tokens the router hands out after login and POSTs.
// A login response replaces the queue; others append.
func (c *Client) collectTokens(h http.Header) {
	if one := h.Get(headerTokenOne); one != "" {
		c.tokens = c.tokens[:0]
		c.tokens = append(c.tokens, one)
		if two := h.Get(headerTokenTwo); two != "" {
			c.tokens = append(c.tokens, two)
		}
		return
	}
	if v := h.Get(headerToken); v != "" {
		for _, t := range strings.Split(v, "#") {
			if t = strings.TrimSpace(t); t != "" {
				c.tokens = append(c.tokens, t)
			}
		}
	}
}

func encodePassword(username, password, token string, passwordType int) string {
	if passwordType == PasswordTypeBase64 {
		return base64.StdEncoding.EncodeToString([]byte(password))
	}
	h1 := sha256.Sum256([]byte(password))
	p1 := base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(h1[:])))
	h2 := sha256.Sum256([]byte(username + p1 + token))
	return base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(h2[:])))
}

func parseCounter(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s=%q", traffic.ErrInvalidCounterValue, name, raw)
	}
	return v, nil
}
