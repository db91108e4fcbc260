// staticdhcpd — a static (non-allocating) DHCPv4 server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/staticdhcpd/staticdhcpd/internal/config"
	"github.com/staticdhcpd/staticdhcpd/internal/engine"
	"github.com/staticdhcpd/staticdhcpd/internal/governance"
	"github.com/staticdhcpd/staticdhcpd/internal/listener"
	"github.com/staticdhcpd/staticdhcpd/internal/logging"
	"github.com/staticdhcpd/staticdhcpd/internal/metrics"
	"github.com/staticdhcpd/staticdhcpd/internal/record"
	"github.com/staticdhcpd/staticdhcpd/internal/responder"
)

func main() {
	configPath := flag.String("config", "/etc/staticdhcpd/config.toml", "path to configuration file")
	metricsListen := flag.String("metrics-listen", "", "address to serve /metrics on (e.g. :9110); empty disables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Server.LogLevel, os.Stdout)
	logger.Info("staticdhcpd starting",
		"config", *configPath,
		"server_ip", cfg.Server.ServerIP,
		"server_port", cfg.Network.ServerPort,
		"pxe_enabled", cfg.PXEEnabled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openRecordSource(cfg)
	if err != nil {
		logger.Error("failed to open record source", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	records := record.NewCache(store, cfg.Record.UseCache, cfg.Record.ConcurrencyLimit)
	gov := governance.New(cfg.Governance.Enabled, cfg.Governance.Threshold)

	udpResp, err := responder.NewUDPResponder(cfg.Network.ServerPort)
	if err != nil {
		logger.Error("failed to open UDP responder", "error", err)
		os.Exit(1)
	}
	defer udpResp.Close()

	var rawResp responder.Responder
	if cfg.RawResponderEnabled() {
		rr, err := responder.NewRawResponder(cfg.Network.ResponseInterface, cfg.ServerIP())
		if err != nil {
			logger.Warn("failed to open raw responder, falling back to UDP-only sends",
				"interface", cfg.Network.ResponseInterface, "error", err)
		} else {
			rawResp = rr
			defer rr.Close()
		}
	}

	var pxeResp responder.Responder
	if cfg.PXEEnabled() {
		pr, err := responder.NewUDPResponder(cfg.Network.PXEPort)
		if err != nil {
			logger.Error("failed to open PXE UDP responder", "error", err)
			os.Exit(1)
		}
		pxeResp = pr
		defer pr.Close()
	}

	eng := engine.New(cfg, records, gov, udpResp, pxeResp, rawResp, nil, logger)

	lst, err := listener.New(cfg.Network.ServerPort, cfg.Network.PXEPort, eng, logger)
	if err != nil {
		logger.Error("failed to start listener", "error", err)
		os.Exit(1)
	}
	lst.Start()
	defer lst.Stop()

	metrics.ServerStartTime.SetToCurrentTime()
	metrics.ServerInfo.WithLabelValues("dev").Set(1)

	if *metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		metricsServer := &http.Server{Addr: *metricsListen, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer metricsServer.Close()
		logger.Info("metrics server listening", "addr", *metricsListen)
	}

	pollDone := make(chan struct{})
	go runGovernancePoll(ctx, gov, cfg.PollingInterval(), logger, pollDone)

	logger.Info("staticdhcpd ready", "raw_responder", rawResp != nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigCh
		switch sig {
		case syscall.SIGHUP:
			logger.Info("received SIGHUP, reinitialising record source")
			if err := records.Reinitialise(); err != nil {
				logger.Error("failed to reinitialise record source", "error", err)
				continue
			}
			logger.Info("record source reinitialised")

		case syscall.SIGINT, syscall.SIGTERM:
			logger.Info("received shutdown signal", "signal", sig.String())
			cancel()
			<-pollDone
			logger.Info("staticdhcpd stopped")
			return
		}
	}
}

// openRecordSource opens the built-in bbolt backend when no external
// record source is wired, per spec §6's "a record source is the one
// required external collaborator" (here defaulted to bbolt so the binary
// is runnable standalone).
func openRecordSource(cfg *config.Config) (record.Source, func(), error) {
	store, err := record.OpenBoltStore(cfg.Record.BoltPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening bbolt store %s: %w", cfg.Record.BoltPath, err)
	}
	return store, func() { store.Close() }, nil
}

// runGovernancePoll ticks the governor at the configured polling interval
// (spec §5) until ctx is cancelled, then signals done.
func runGovernancePoll(ctx context.Context, gov *governance.Governor, interval time.Duration, logger interface {
	Info(msg string, args ...any)
}, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := gov.Tick(interval)
			metrics.GovernanceIgnoredMACs.Set(float64(snap.IgnoredMACCount))
			logger.Info("governance poll",
				"processed", snap.PacketsProcessed,
				"discarded", snap.PacketsDiscarded,
				"ignored_macs", snap.IgnoredMACCount)
		}
	}
}
