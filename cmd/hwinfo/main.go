package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dicklesworthstone/hwinfo/internal/config"
	"github.com/Dicklesworthstone/hwinfo/internal/controller"
	"github.com/Dicklesworthstone/hwinfo/internal/info"
	"github.com/Dicklesworthstone/hwinfo/internal/logging"
	"github.com/Dicklesworthstone/hwinfo/internal/platform"
	"github.com/Dicklesworthstone/hwinfo/internal/ui"
)

const firstSummaryTimeout = 10 * time.Second

func main() {
	cfg, err := config.FromFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "hwinfo:", err)
		os.Exit(2)
	}

	logger, closer, err := logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, "hwinfo: -log-level:", err)
		os.Exit(2)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	plat := platform.Host(platform.HostOptions{
		SysRoot:         cfg.SysRoot,
		Interval:        cfg.Interval,
		CameraDevice:    cfg.CameraDevice,
		EnableCamera:    cfg.EnableCamera,
		EnableSensors:   cfg.EnableSensors,
		EnableBattery:   cfg.EnableBatt,
		DisplayOverride: cfg.Display,
	})
	buf := controller.NewTextBuffer()
	ctrl := controller.New(plat, buf, controller.Options{
		Fields:     cfg.Fields,
		Aggregator: info.New(cfg.Locale),
		Dedup:      cfg.Dedup,
		Logger:     &logger,
	})

	logger.Info().
		Dur("interval", cfg.Interval).
		Str("locale", cfg.Locale.String()).
		Int("fields", len(cfg.Fields)).
		Msg("starting")

	switch {
	case cfg.JSON:
		err = printOnce(ctx, ctrl, buf, cfg.Interval)
	case cfg.JSONStream:
		err = stream(ctx, ctrl, buf)
	default:
		err = ui.RunTUI(ctx, ctrl, buf, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("exit")
		fmt.Fprintln(os.Stderr, "hwinfo:", err)
		closer.Close()
		os.Exit(1)
	}
}

// printOnce waits for the first summary, lets the sensor feeds report for one
// interval, then prints whatever is latest.
func printOnce(ctx context.Context, ctrl *controller.Controller, buf *controller.TextBuffer, settle time.Duration) error {
	if err := ctrl.Activate(ctx); err != nil {
		return err
	}
	defer ctrl.Deactivate()

	waitCtx, cancel := context.WithTimeout(ctx, firstSummaryTimeout)
	defer cancel()
	if _, _, err := buf.Next(waitCtx, 0); err != nil {
		return fmt.Errorf("waiting for first summary: %w", err)
	}

	select {
	case <-time.After(settle):
	case <-ctx.Done():
	}
	summary, _ := buf.Latest()
	return json.NewEncoder(os.Stdout).Encode(summary)
}

// stream writes one JSON document per published summary until ctx ends.
func stream(ctx context.Context, ctrl *controller.Controller, buf *controller.TextBuffer) error {
	if err := ctrl.Activate(ctx); err != nil {
		return err
	}
	defer ctrl.Deactivate()

	enc := json.NewEncoder(os.Stdout)
	var seq uint64
	for {
		summary, next, err := buf.Next(ctx, seq)
		if err != nil {
			return err
		}
		seq = next
		if err := enc.Encode(summary); err != nil {
			return err
		}
	}
}
