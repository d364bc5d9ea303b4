package axeos

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 1 << 16
)

// Stream dials the device log websocket and calls deliver once per received
// message, in receipt order, until ctx is cancelled or the connection fails.
// Messages are delivered exactly as sent, escape sequences included.
//
// A cancelled ctx ends the stream with a nil error.
func (c *Client) Stream(ctx context.Context, deliver func(line string)) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	wsURL := c.streamURL()

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	conn, resp, err := c.dialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if resp != nil {
			return fmt.Errorf("dial log stream: %w %d", ErrStatus, resp.StatusCode)
		}
		return fmt.Errorf("dial log stream: %w", err)
	}
	conn.SetReadLimit(maxMsgSize)
	c.log.Debug().Str("url", wsURL).Msg("log stream connected")

	done := make(chan struct{})
	defer close(done)
	go keepAlive(ctx, conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Str("url", wsURL).Msg("log stream closed by device")
				return nil
			}
			return fmt.Errorf("read log stream: %w", err)
		}
		deliver(string(data))
	}
}

// keepAlive pings the device and closes the connection when ctx ends, which
// unblocks the pending read in Stream.
func keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer func() { _ = conn.Close() }()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (c *Client) streamURL() string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.ResolveReference(&url.URL{Path: logStreamPath}).String()
}
