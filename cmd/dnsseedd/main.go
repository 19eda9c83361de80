package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/addresspool"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/common/clock"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/common/log"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/config"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/domain"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/responder"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/stats"
	"github.com/dnsseedd/dnsseed/internal/dnsseed/transport"
)

const (
	appName = "dnsseedd"
	version = "0.1.0-dev"

	defaultShutdownTimeout = 10 * time.Second
	defaultSnapshotPeriod  = 30 * time.Second
)

// Application holds every long-lived component dnsseedd composes at
// startup.
type Application struct {
	config    *config.AppConfig
	transport *transport.UDPTransport
	store     *stats.Store
	counters  *stats.Counters
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"version":   version,
		"env":       cfg.Env,
		"log_level": cfg.LogLevel,
		"bind_addr": cfg.BindAddr,
		"zone_host": cfg.ZoneHost,
	}, "starting "+appName)

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "failed to build application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info(map[string]any{"signal": sig.String()}, "shutdown signal received")
		cancel()
	}()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "server failed")
	}

	log.Info(nil, appName+" stopped gracefully")
}

// buildApplication constructs every component and wires them together,
// without starting any goroutines.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	logger := log.GetLogger()
	clk := clock.RealClock{}

	counters := stats.NewCounters()

	topNames, err := stats.NewTopNames(cfg.TopNamesSize)
	if err != nil {
		return nil, fmt.Errorf("building top-names tracker: %w", err)
	}

	uniqueSources := stats.NewUniqueSources(
		cfg.UniqueSourcesCapacity,
		cfg.UniqueSourcesFPRate,
		time.Duration(cfg.UniqueSourcesResetSeconds)*time.Second,
		clk,
	)

	var store *stats.Store
	if cfg.StatsDBPath != "" {
		store, err = stats.OpenStore(cfg.StatsDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening stats store: %w", err)
		}
		if snap, ok, err := store.Load(); err != nil {
			logger.Warn(map[string]any{"error": err.Error()}, "failed to load persisted stats snapshot")
		} else if ok {
			logger.Info(map[string]any{"requests": snap.Requests}, "restored stats snapshot")
		}
	}

	pool, err := addresspool.LoadFile(cfg.PeersFile)
	if err != nil {
		return nil, fmt.Errorf("loading peers file %s: %w", cfg.PeersFile, err)
	}

	rec := &recorder{counters: counters, topNames: topNames}

	resp := &responder.Responder{
		Zone:     cfg.Zone(),
		Lookup:   pool,
		Clock:    clk,
		Recorder: rec,
	}

	tr := transport.NewUDPTransport(cfg.BindAddr, resp, logger, cfg.MaxInFlight)
	tr.OnDatagram = func(src net.Addr) {
		uniqueSources.Observe(src.String())
	}

	return &Application{
		config:    cfg,
		transport: tr,
		store:     store,
		counters:  counters,
	}, nil
}

// Run starts the server and blocks until ctx is canceled, then shuts
// down gracefully.
func (app *Application) Run(ctx context.Context) error {
	if err := app.transport.Start(ctx); err != nil {
		return fmt.Errorf("starting UDP transport: %w", err)
	}

	log.Info(map[string]any{
		"address": app.transport.Address(),
	}, "dns server started")

	var storeDone chan struct{}
	if app.store != nil {
		storeDone = make(chan struct{})
		go func() {
			app.store.Run(ctx, app.counters, defaultSnapshotPeriod)
			close(storeDone)
		}()
	}

	<-ctx.Done()
	log.Info(nil, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := app.transport.Stop(); err != nil {
		log.Warn(map[string]any{"error": err.Error()}, "error during transport shutdown")
	}

	if storeDone != nil {
		select {
		case <-storeDone:
		case <-shutdownCtx.Done():
			log.Warn(nil, "stats store did not finish its final save before shutdown timeout")
		}
	}
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "error closing stats store")
		}
	}

	return nil
}

// recorder adapts the stats subsystem to responder.Recorder, fanning a
// single Handle outcome out to every observer.
type recorder struct {
	counters *stats.Counters
	topNames *stats.TopNames
}

func (r *recorder) RecordRequest() {
	r.counters.RecordRequest()
}

func (r *recorder) RecordResponse(qname string, rcode domain.RCode) {
	r.counters.RecordResponse(rcode)
	if qname != "" {
		r.topNames.Record(qname)
	}
}
