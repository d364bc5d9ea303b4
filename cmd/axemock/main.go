// Command axemock serves a simulated AxeOS device: the system info endpoint
// and a websocket console that emits colored log lines.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/five82/axemon/internal/mockdevice"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("axemock", pflag.ContinueOnError)
	addr := flags.String("addr", ":8080", "listen address")
	every := flags.Duration("log-every", time.Second, "interval between simulated log lines")
	hostname := flags.String("hostname", "", "override the reported hostname")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gin.SetMode(gin.ReleaseMode)
	info := mockdevice.DefaultInfo()
	if *hostname != "" {
		info.Hostname = *hostname
	}
	device := mockdevice.New(info, log)
	go device.Run(ctx, *every)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           device.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", *addr).Msg("mock device listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "axemock: %v\n", err)
			return 1
		}
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 3*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
	log.Info().Msg("stopped")
	return 0
}
