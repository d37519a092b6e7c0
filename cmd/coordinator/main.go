// Package main implements the minikv coordinator service: the metadata
// coordinator of a distributed blob store. It decides replica placement,
// maintains a durable per-key record index, and orchestrates PUT/GET/HEAD/
// DELETE against a fleet of volume servers with single-writer semantics per
// key.
//
// Architecture:
//
//	┌───────────────────────────────────────┐
//	│            coordinator                 │
//	├───────────────────────────────────────┤
//	│  HTTP API:                             │
//	│    PUT/GET/HEAD/DELETE  /<key>         │
//	│    GET                  /metrics       │
//	├───────────────────────────────────────┤
//	│  Components:                           │
//	│    placement  - deterministic replicas │
//	│    index      - durable record store   │
//	│    locktable  - per-key mutual excl.   │
//	│    volumeclient - replica HTTP I/O     │
//	│    volumehealth - background probes    │
//	└───────────────────────────────────────┘
//
// Configuration is via CLI flags only; there is no config file. Exit codes:
// 0 on graceful shutdown via SIGINT/SIGTERM, 1 on startup failure (bad
// flags, index open failure).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/dreamware/minikv/internal/coordinator"
	"github.com/dreamware/minikv/internal/coordinator/volumehealth"
	"github.com/dreamware/minikv/internal/index"
	"github.com/dreamware/minikv/internal/volumeclient"
)

type cliConfig struct {
	leveldbPath      string
	volumes          []string
	port             int
	replicas         int
	subvolumes       int
	healthCheckEvery time.Duration
	checksumEnabled  bool
	verbose          bool
}

// parseFlags parses the coordinator's CLI flags. --leveldb-path is the only
// required flag; everything else has a production-sane default.
func parseFlags(args []string) (cliConfig, error) {
	fs := flag.NewFlagSet("coordinator", flag.ContinueOnError)

	port := fs.Int("port", 3000, "HTTP listen port")
	leveldbPath := fs.String("leveldb-path", "", "path to the on-disk index directory (required)")
	checksum := fs.Bool("hash-md5-checksum", true, "compute and store an MD5 checksum on every PUT")
	volumes := fs.StringSlice("volumes", nil, "comma-separated list of volume host[:port] strings")
	replicas := fs.Int("replicas", 3, "number of replicas per key")
	subvolumes := fs.Int("subvolumes", 10, "number of sub-volume buckets per replica")
	verbose := fs.Bool("verbose", false, "enable development-mode (human-readable) logging")
	healthInterval := fs.Duration("health-check-interval", 5*time.Second, "interval between background volume health probes")

	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	if *leveldbPath == "" {
		return cliConfig{}, fmt.Errorf("--leveldb-path is required")
	}

	return cliConfig{
		port:             *port,
		leveldbPath:      *leveldbPath,
		checksumEnabled:  *checksum,
		volumes:          dedupeVolumes(*volumes),
		replicas:         *replicas,
		subvolumes:       *subvolumes,
		verbose:          *verbose,
		healthCheckEvery: *healthInterval,
	}, nil
}

// dedupeVolumes drops repeated entries from a --volumes list while
// preserving first-seen order, so a typo'd duplicate doesn't silently
// double a volume's share of placement.
func dedupeVolumes(volumes []string) []string {
	out := make([]string, 0, len(volumes))
	for _, v := range volumes {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "minikv coordinator:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "minikv coordinator: failed to init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	idx, err := index.Open(cfg.leveldbPath)
	if err != nil {
		log.Fatalw("failed to open index", "path", cfg.leveldbPath, "error", err)
	}
	defer idx.Close()

	client := volumeclient.New(10 * time.Second)
	metrics := coordinator.NewMetrics()

	srv := coordinator.New(idx, client, coordinator.Config{
		Volumes:         cfg.volumes,
		Replicas:        cfg.replicas,
		Subvolumes:      cfg.subvolumes,
		ChecksumEnabled: cfg.checksumEnabled,
	}, log, metrics)

	gauge := volumehealth.NewPrometheusGauge(metrics.Registry)
	monitor := volumehealth.New(client, gauge, log, cfg.healthCheckEvery)
	monitor.Start(srv.Volumes())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("/", srv)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infow("coordinator listening", "addr", httpSrv.Addr, "volumes", strings.Join(cfg.volumes, ","))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("stopping volume health monitor")
	monitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Errorw("graceful shutdown error", "error", err)
	}
	log.Info("coordinator stopped")
}
