// Package mockdevice serves a fake AxeOS device for local development and
// transport tests: /api/system/info and the /api/ws log websocket.
package mockdevice

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/five82/axemon/internal/axeos"
)

const (
	writeWait   = 5 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxMsgSize  = 1 << 12
	sendBacklog = 64
)

// Device holds the fake device state and its connected log clients.
type Device struct {
	mu         sync.Mutex
	info       axeos.SystemInfo
	infoStatus int
	clients    map[*client]struct{}

	infoRequests atomic.Int64
	started      time.Time
	log          zerolog.Logger
	upgrader     websocket.Upgrader
}

type client struct {
	send chan string
}

// New returns a Device reporting info until changed with SetInfo.
func New(info axeos.SystemInfo, log zerolog.Logger) *Device {
	return &Device{
		info:    info,
		clients: make(map[*client]struct{}),
		started: time.Now(),
		log:     log.With().Str("component", "mockdevice").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// DefaultInfo is a plausible BM1370 board reading in device units.
func DefaultInfo() axeos.SystemInfo {
	return axeos.SystemInfo{
		Power:             14.27,
		Voltage:           5112,
		Current:           2790,
		CoreVoltage:       1150,
		CoreVoltageActual: 1146,
		Temp:              58.4,
		VRTemp:            52,
		HashRate:          1012.5,
		BestDiff:          "4.29G",
		BestSessionDiff:   "118M",
		Frequency:         525,
		FanSpeed:          62,
		FanRPM:            4120,
		SharesAccepted:    1834,
		SharesRejected:    3,
		FreeHeap:          182344,
		Hostname:          "bitaxe",
		SSID:              "workshop",
		WifiStatus:        "Connected!",
		ASICModel:         "BM1370",
		StratumURL:        "public-pool.io",
		StratumPort:       21496,
		StratumUser:       "bc1q.bitaxe",
		Version:           "v2.4.2",
		BoardVersion:      "601",
	}
}

// Router builds the gin engine exposing the device API.
func (d *Device) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/system/info", d.getInfo)
		api.GET("/ws", d.wsConnect)
	}
	return router
}

// SetInfo replaces the reported system info and clears any forced failure.
func (d *Device) SetInfo(info axeos.SystemInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.info = info
	d.infoStatus = 0
}

// FailInfo makes /api/system/info answer with status until SetInfo is called.
func (d *Device) FailInfo(status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.infoStatus = status
}

// InfoRequests reports how many times /api/system/info was requested.
func (d *Device) InfoRequests() int64 {
	return d.infoRequests.Load()
}

// Clients reports the number of connected log websocket clients.
func (d *Device) Clients() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

// Publish sends line to every connected log client and returns how many
// clients accepted it. Slow clients drop lines instead of blocking.
func (d *Device) Publish(line string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	sent := 0
	for c := range d.clients {
		select {
		case c.send <- line:
			sent++
		default:
		}
	}
	return sent
}

func (d *Device) getInfo(c *gin.Context) {
	d.infoRequests.Add(1)

	d.mu.Lock()
	info, status := d.info, d.infoStatus
	d.mu.Unlock()

	if status != 0 {
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	info.UptimeSeconds = int64(time.Since(d.started).Seconds())
	c.JSON(http.StatusOK, info)
}

func (d *Device) wsConnect(c *gin.Context) {
	conn, err := d.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		d.log.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cl := &client{send: make(chan string, sendBacklog)}
	d.register(cl)
	defer d.unregister(cl)

	done := make(chan struct{})
	go drain(conn, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case line := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				d.log.Debug().Err(err).Msg("ws write failed")
				return
			}
		}
	}
}

func (d *Device) register(c *client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[c] = struct{}{}
}

func (d *Device) unregister(c *client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.clients, c)
}

// drain reads control frames and reports when the peer goes away.
func drain(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
