package axeos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// ErrStatus is wrapped by errors caused by a non-2xx HTTP response.
var ErrStatus = errors.New("unexpected status")

// InfoFetcher is implemented by *Client and consumed by the telemetry sampler.
type InfoFetcher interface {
	GetInfo(ctx context.Context) (SystemInfo, error)
}

// LineStreamer is implemented by *Client and consumed by the log viewer.
type LineStreamer interface {
	Stream(ctx context.Context, deliver func(line string)) error
}

var (
	_ InfoFetcher  = (*Client)(nil)
	_ LineStreamer = (*Client)(nil)
)

// Client talks to the AxeOS HTTP API and its websocket log endpoint.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	dialer    *websocket.Dialer
	userAgent string
	log       zerolog.Logger
}

const (
	defaultDevice    = "192.168.4.1"
	defaultUserAgent = "axemon/0.1"
	requestTimeout   = 5 * time.Second
	handshakeTimeout = 5 * time.Second

	systemInfoPath = "/api/system/info"
	logStreamPath  = "/api/ws"
)

// NewClient builds a Client for the device at addr (host, host:port or URL).
func NewClient(addr string, log zerolog.Logger) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		userAgent: defaultUserAgent,
		log:       log.With().Str("component", "axeos").Logger(),
	}, nil
}

// BaseURL returns the resolved device URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetInfo retrieves the device's system information.
func (c *Client) GetInfo(ctx context.Context) (SystemInfo, error) {
	if c == nil {
		return SystemInfo{}, fmt.Errorf("client is nil")
	}
	var payload SystemInfo
	if err := c.do(ctx, http.MethodGet, systemInfoPath, &payload); err != nil {
		return SystemInfo{}, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s: %w %d", path, ErrStatus, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = defaultDevice
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse device address %q: %w", addr, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse device address %q: missing host", addr)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
