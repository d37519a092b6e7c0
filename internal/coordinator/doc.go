// Package coordinator implements the metadata coordinator for a distributed
// blob store: a single HTTP-facing Server that decides where each key's
// replicas live, serializes concurrent writers per key, and mediates every
// PUT/GET/HEAD/DELETE against a fleet of volume servers.
//
// # Overview
//
// The coordinator owns no blob bytes itself. For every key it tracks a
// record (see internal/record) describing the key's lifecycle status and
// the set of volumes holding its replicas, persisted in a durable index
// (internal/index). Placement of new keys is computed deterministically by
// internal/placement (rendezvous hashing), so the coordinator never needs
// to persist a separate placement table: given the same key and volume
// list, Place always returns the same replica set.
//
// # Architecture
//
//	┌──────────────────────────────────────────┐
//	│                  Server                    │
//	├──────────────────────────────────────────┤
//	│                                            │
//	│  ┌───────────────┐   ┌──────────────────┐ │
//	│  │  locktable    │   │  index (durable)  │ │
//	│  │  per-key lock │   │  key -> record    │ │
//	│  └───────────────┘   └──────────────────┘ │
//	│                                            │
//	│  ┌───────────────┐   ┌──────────────────┐ │
//	│  │  placement    │   │  volumeclient     │ │
//	│  │  rendezvous   │   │  PUT/HEAD to a    │ │
//	│  │  hashing      │   │  volume server    │ │
//	│  └───────────────┘   └──────────────────┘ │
//	│                                            │
//	└──────────────────────────────────────────┘
//
// volumehealth runs alongside the Server as a purely observational
// background poller; it never gates request handling.
//
// # Request handling
//
// PUT acquires the key's lock, rejects a live (No-status) key with 409,
// places replicas, fans the write out to every replica concurrently, and
// records the key as No (live) on success or Soft (tombstoned) if any
// replica write failed. GET/HEAD take no lock: they read the current
// record, sample one of its volumes at random, and HEAD-probe it to
// confirm reachability before redirecting. DELETE acquires the lock and
// stamps the record Soft.
//
// # Concurrency
//
// The Server holds its collaborators by reference and shares them across
// concurrently handled requests; there is no per-request state copy. The
// only serialization point for a given key is locktable.Table - two PUTs
// (or a PUT and a DELETE) for the same key never interleave, but different
// keys proceed fully in parallel.
package coordinator
