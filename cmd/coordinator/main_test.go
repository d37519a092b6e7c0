package main

import (
	"testing"
	"time"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := parseFlags([]string{"--leveldb-path", "/tmp/minikv-idx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.port != 3000 {
		t.Errorf("port = %d, want 3000", cfg.port)
	}
	if !cfg.checksumEnabled {
		t.Error("checksumEnabled = false, want true by default")
	}
	if cfg.replicas != 3 {
		t.Errorf("replicas = %d, want 3", cfg.replicas)
	}
	if cfg.subvolumes != 10 {
		t.Errorf("subvolumes = %d, want 10", cfg.subvolumes)
	}
	if cfg.verbose {
		t.Error("verbose = true, want false by default")
	}
	if cfg.healthCheckEvery != 5*time.Second {
		t.Errorf("healthCheckEvery = %v, want 5s", cfg.healthCheckEvery)
	}
}

func TestParseFlags_DuplicateVolumesDeduped(t *testing.T) {
	cfg, err := parseFlags([]string{
		"--leveldb-path", "/tmp/minikv-idx",
		"--volumes", "a:1,b:2,a:1,c:3,b:2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a:1", "b:2", "c:3"}
	if len(cfg.volumes) != len(want) {
		t.Fatalf("volumes = %v, want %v", cfg.volumes, want)
	}
	for i := range want {
		if cfg.volumes[i] != want[i] {
			t.Errorf("volumes[%d] = %q, want %q", i, cfg.volumes[i], want[i])
		}
	}
}

func TestParseFlags_MissingLeveldbPath(t *testing.T) {
	_, err := parseFlags([]string{"--port", "4000"})
	if err == nil {
		t.Fatal("expected error for missing --leveldb-path, got nil")
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	cfg, err := parseFlags([]string{
		"--leveldb-path", "/tmp/minikv-idx",
		"--port", "9000",
		"--hash-md5-checksum=false",
		"--volumes", "a:1,b:2,c:3",
		"--replicas", "2",
		"--subvolumes", "4",
		"--verbose",
		"--health-check-interval", "1500ms",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.port)
	}
	if cfg.checksumEnabled {
		t.Error("checksumEnabled = true, want false")
	}
	want := []string{"a:1", "b:2", "c:3"}
	if len(cfg.volumes) != len(want) {
		t.Fatalf("volumes = %v, want %v", cfg.volumes, want)
	}
	for i := range want {
		if cfg.volumes[i] != want[i] {
			t.Errorf("volumes[%d] = %q, want %q", i, cfg.volumes[i], want[i])
		}
	}
	if cfg.replicas != 2 {
		t.Errorf("replicas = %d, want 2", cfg.replicas)
	}
	if cfg.subvolumes != 4 {
		t.Errorf("subvolumes = %d, want 4", cfg.subvolumes)
	}
	if !cfg.verbose {
		t.Error("verbose = false, want true")
	}
	if cfg.healthCheckEvery != 1500*time.Millisecond {
		t.Errorf("healthCheckEvery = %v, want 1.5s", cfg.healthCheckEvery)
	}
}
