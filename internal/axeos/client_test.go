package axeos_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/axemon/internal/axeos"
	"github.com/five82/axemon/internal/mockdevice"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newDevice(t *testing.T) (*mockdevice.Device, *axeos.Client) {
	t.Helper()
	dev := mockdevice.New(mockdevice.DefaultInfo(), zerolog.Nop())
	srv := httptest.NewServer(dev.Router())
	t.Cleanup(srv.Close)

	client, err := axeos.NewClient(srv.URL, zerolog.Nop())
	require.NoError(t, err)
	return dev, client
}

func TestNewClient_DefaultsAndNormalizes(t *testing.T) {
	c, err := axeos.NewClient("", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.4.1", c.BaseURL())

	c, err = axeos.NewClient("  10.0.0.7:8080/some/path?x=1 ", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.7:8080", c.BaseURL())

	c, err = axeos.NewClient("https://miner.lan", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://miner.lan", c.BaseURL())
}

func TestNewClient_RejectsMissingHost(t *testing.T) {
	_, err := axeos.NewClient("http://", zerolog.Nop())
	require.Error(t, err)
}

func TestGetInfo_DecodesDeviceUnits(t *testing.T) {
	_, client := newDevice(t)

	info, err := client.GetInfo(context.Background())
	require.NoError(t, err)

	want := mockdevice.DefaultInfo()
	assert.Equal(t, want.Power, info.Power)
	assert.Equal(t, want.Voltage, info.Voltage)
	assert.Equal(t, want.Current, info.Current)
	assert.Equal(t, want.CoreVoltageActual, info.CoreVoltageActual)
	assert.Equal(t, want.Hostname, info.Hostname)
	assert.Equal(t, want.ASICModel, info.ASICModel)
}

func TestGetInfo_StatusErrorWrapsSentinel(t *testing.T) {
	dev, client := newDevice(t)
	dev.FailInfo(http.StatusServiceUnavailable)

	_, err := client.GetInfo(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, axeos.ErrStatus), "err = %v", err)
	assert.Contains(t, err.Error(), "503")
}

func TestGetInfo_HonorsContext(t *testing.T) {
	_, client := newDevice(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetInfo(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
}

func TestSystemInfo_KeepsUnknownFields(t *testing.T) {
	raw := `{"power":12.34,"voltage":15000,"hostname":"axe","smallCoreCount":2040,"autofanspeed":1}`

	var info axeos.SystemInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &info))
	assert.Equal(t, 12.34, info.Power)
	assert.Equal(t, "axe", info.Hostname)
	require.Len(t, info.Extra, 2)
	assert.JSONEq(t, "2040", string(info.Extra["smallCoreCount"]))

	out, err := json.Marshal(info)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.EqualValues(t, 2040, back["smallCoreCount"])
	assert.EqualValues(t, 1, back["autofanspeed"])
	assert.EqualValues(t, 15000, back["voltage"])
}

func TestStream_DeliversMessagesInOrder(t *testing.T) {
	dev, client := newDevice(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		lines []string
	)
	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Stream(ctx, func(line string) {
			mu.Lock()
			defer mu.Unlock()
			lines = append(lines, line)
		})
	}()

	require.Eventually(t, func() bool { return dev.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	sent := []string{
		"\x1b[0;32mI (10) boot: ready\x1b[0m",
		"plain line",
		"\x1b[0;31mE (11) asic: fault\x1b[0m\n",
	}
	for _, l := range sent {
		require.Equal(t, 1, dev.Publish(l))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(lines) == len(sent)
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, sent, lines)
	mu.Unlock()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after cancel")
	}
	require.Eventually(t, func() bool { return dev.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStream_DialFailureReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client, err := axeos.NewClient(srv.URL, zerolog.Nop())
	require.NoError(t, err)

	err = client.Stream(context.Background(), func(string) {})
	require.Error(t, err)
	assert.True(t, errors.Is(err, axeos.ErrStatus), "err = %v", err)
}
