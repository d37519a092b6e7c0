package coordinator

import (
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/minikv/internal/index"
	"github.com/dreamware/minikv/internal/locktable"
	"github.com/dreamware/minikv/internal/volumeclient"
)

// Config holds the immutable, startup-time parameters a Server is built
// from. It is intentionally separate from the CLI flag parsing in
// cmd/coordinator so the server is testable without pflag in the loop.
type Config struct {
	Volumes          []string
	Replicas         int
	Subvolumes       int
	ChecksumEnabled  bool
	HealthCheckEvery time.Duration
}

// Server is the coordinator's request-handling state: the durable index,
// the per-key lock table, the static volume list, and the volume HTTP
// client, all shared by reference across concurrently handled requests per
// internal/coordinator's concurrency model (§5 of the design: no
// snapshot-copy per request).
type Server struct {
	idx     index.Index
	locks   *locktable.Table
	client  volumeclient.Client
	log     *zap.SugaredLogger
	metrics *Metrics

	volumes    []string
	replicas   int
	subvolumes int
	checksum   bool
}

// New assembles a Server from its collaborators. idx and client are
// accepted as narrow interfaces so tests can substitute an in-memory
// index.Mem for the on-disk index, and point the client at
// coordinatortest.FakeVolume servers on loopback instead of real volumes.
// A nil metrics gets a fresh private Metrics; a nil log gets a no-op logger.
func New(idx index.Index, client volumeclient.Client, cfg Config, log *zap.SugaredLogger, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		idx:        idx,
		locks:      locktable.New(),
		client:     client,
		log:        log,
		metrics:    metrics,
		volumes:    cfg.Volumes,
		replicas:   cfg.Replicas,
		subvolumes: cfg.Subvolumes,
		checksum:   cfg.ChecksumEnabled,
	}
}

// Volumes returns the static volume list the server was configured with.
func (s *Server) Volumes() []string {
	return append([]string(nil), s.volumes...)
}
