package coordinator

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dreamware/minikv/internal/placement"
	"github.com/dreamware/minikv/internal/record"
	"github.com/dreamware/minikv/internal/volumeclient"
)

// ServeHTTP dispatches a request for /<key> to the matching PUT/GET/HEAD/
// DELETE handler, recording outcome metrics around every call.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")
	if key == "" {
		http.Error(w, "key required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	switch r.Method {
	case http.MethodPut:
		s.handlePut(rec, r, key)
	case http.MethodGet, http.MethodHead:
		s.handleGetOrHead(rec, r, key)
	case http.MethodDelete:
		s.handleDelete(rec, r, key)
	default:
		http.Error(rec, "method not allowed", http.StatusMethodNotAllowed)
	}

	s.metrics.observe(r.Method, outcomeFor(rec.status), time.Since(start))
}

// statusRecorder captures the status code written so ServeHTTP can label
// its metrics after the handler returns.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func outcomeFor(status int) string {
	switch {
	case status < 400:
		return "success"
	case status < 500:
		return "client_error"
	default:
		return "server_error"
	}
}

// handlePut implements PUT /:key per the coordinator's state machine: lock,
// reject a live key, place replicas, fan out writes, and record the
// resulting status transition.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request, key string) {
	if r.ContentLength <= 0 {
		w.WriteHeader(http.StatusLengthRequired)
		return
	}

	release, ok := s.locks.TryAcquire(key)
	if !ok {
		s.log.Debugw("put conflict: key locked", "key", key)
		w.WriteHeader(http.StatusConflict)
		return
	}
	defer release()

	current, err := s.idx.GetOrDefault(key)
	if err != nil {
		s.log.Errorw("put: index read failed", "key", key, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !current.Status.Overwritable() {
		s.log.Debugw("put conflict: key is live", "key", key)
		http.Error(w, "Forbidden to overwrite with PUT", http.StatusConflict)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.log.Errorw("put: failed to read body", "key", key, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	volumes := placement.Place(key, s.volumes, s.replicas, s.subvolumes)

	if err := s.writeReplicas(r, key, volumes, body); err != nil {
		s.log.Errorw("put: replica write failed", "key", key, "error", err)
		if putErr := s.idx.Put(key, record.Record{Status: record.StatusSoft, Volumes: volumes}); putErr != nil {
			s.log.Errorw("put: failed to stamp Soft after replica failure", "key", key, "error", putErr)
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	hash := ""
	if s.checksum {
		sum := md5.Sum(body)
		hash = hex.EncodeToString(sum[:])
	}

	if err := s.idx.Put(key, record.Record{Status: record.StatusNo, Hash: hash, Volumes: volumes}); err != nil {
		s.log.Errorw("put: failed to write No record", "key", key, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// writeReplicas fans PUT out to every selected volume concurrently and
// reports the first failure. Every replica PUT is dispatched regardless of
// an earlier failure; only one failure is needed to drive the record to
// Soft, not an early stop on the first one.
func (s *Server) writeReplicas(r *http.Request, key string, volumes []string, body []byte) error {
	var wg sync.WaitGroup
	errs := make([]error, len(volumes))

	for i, v := range volumes {
		wg.Add(1)
		go func(i int, volume string) {
			defer wg.Done()
			errs[i] = s.client.RemotePut(r.Context(), volume, key, body)
		}(i, v)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// handleGetOrHead implements GET /:key and its sibling HEAD /:key: no
// lock is taken; the current record is read and, if live, one replica is
// sampled uniformly at random and HEAD-probed.
func (s *Server) handleGetOrHead(w http.ResponseWriter, r *http.Request, key string) {
	rec, found, err := s.idx.Get(key)
	if err != nil {
		s.log.Errorw("get: index read failed", "key", key, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !found {
		w.Header().Set("Content-Length", "0")
		w.Header().Set("Content-Md5", "")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if rec.Status != record.StatusNo {
		w.Header().Set("Content-Length", "0")
		w.Header().Set("Content-Md5", rec.Hash)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	current := placement.Place(key, s.volumes, s.replicas, s.subvolumes)
	balance := "balanced"
	if len(current) != len(rec.Volumes) {
		balance = "unbalanced"
	}

	if len(rec.Volumes) == 0 {
		w.Header().Set("Content-Length", "0")
		w.Header().Set("Key-Volumes", "")
		w.Header().Set("Key-Balance", balance)
		w.WriteHeader(http.StatusGone)
		return
	}

	chosen := rec.Volumes[rand.Intn(len(rec.Volumes))]
	if err := s.client.RemoteHead(r.Context(), chosen, key); err != nil {
		s.log.Debugw("get: chosen replica unreachable", "key", key, "volume", chosen, "error", err)
		w.Header().Set("Content-Length", "0")
		w.Header().Set("Key-Volumes", strings.Join(rec.Volumes, ","))
		w.Header().Set("Key-Balance", balance)
		w.WriteHeader(http.StatusGone)
		return
	}

	w.Header().Set("Location", "http://"+chosen+volumeclient.RemotePath(key))
	w.Header().Set("Content-Length", "0")
	w.Header().Set("Content-Md5", rec.Hash)
	w.WriteHeader(http.StatusFound)
}

// handleDelete implements DELETE /:key: lock, reject an already-gone key,
// stamp Soft, release.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, key string) {
	release, ok := s.locks.TryAcquire(key)
	if !ok {
		s.log.Debugw("delete conflict: key locked", "key", key)
		w.WriteHeader(http.StatusConflict)
		return
	}
	defer release()

	current, err := s.idx.GetOrDefault(key)
	if err != nil {
		s.log.Errorw("delete: index read failed", "key", key, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if current.Status == record.StatusSoft || current.Status == record.StatusHard {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err := s.idx.Put(key, record.Record{Status: record.StatusSoft, Hash: current.Hash, Volumes: current.Volumes}); err != nil {
		s.log.Errorw("delete: failed to stamp Soft", "key", key, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
