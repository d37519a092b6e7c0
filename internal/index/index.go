// Package index implements the coordinator's durable metadata store: a thin
// wrapper over an embedded ordered KV engine (goleveldb) keyed by a 31-bit
// integer derived from the user key, holding binary-encoded records.
package index

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/dreamware/minikv/internal/record"
)

// Index is the narrow capability contract the request coordinator depends
// on. It is satisfied by *DB and by any in-memory fake used in tests, per
// the "narrow capability interface" guidance for the volume client and the
// index.
type Index interface {
	Put(key string, r record.Record) error
	Get(key string) (record.Record, bool, error)
	GetOrDefault(key string) (record.Record, error)
}

// DB wraps an on-disk goleveldb database. Keys never collide at the
// goleveldb level; the 31-bit collision risk is inherent to IndexKey itself
// (see its doc comment) and is accepted as a documented limitation.
type DB struct {
	db *leveldb.DB
}

// Open opens (creating if absent) the goleveldb database rooted at path.
// The caller must call Close when done.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// Close releases the underlying database handle.
func (idx *DB) Close() error {
	return idx.db.Close()
}

// Put serialises r and writes it under key's integer index key. goleveldb's
// default write options provide no per-write fsync, matching the "default
// write durability" the metadata index is specified to use.
func (idx *DB) Put(key string, r record.Record) error {
	k := encodeIndexKey(IndexKey(key))
	if err := idx.db.Put(k, record.Encode(r), nil); err != nil {
		return fmt.Errorf("index: put %s: %w", key, err)
	}
	return nil
}

// Get returns the record stored for key, or ok=false if no record is
// present. It fails only on an underlying I/O or decode error.
func (idx *DB) Get(key string) (record.Record, bool, error) {
	k := encodeIndexKey(IndexKey(key))
	v, err := idx.db.Get(k, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return record.Record{}, false, nil
	}
	if err != nil {
		return record.Record{}, false, fmt.Errorf("index: get %s: %w", key, err)
	}
	r, err := record.Decode(v)
	if err != nil {
		return record.Record{}, false, fmt.Errorf("index: decode %s: %w", key, err)
	}
	return r, true, nil
}

// GetOrDefault returns the record stored for key, or record.Default() when
// absent.
func (idx *DB) GetOrDefault(key string) (record.Record, error) {
	r, ok, err := idx.Get(key)
	if err != nil {
		return record.Record{}, err
	}
	if !ok {
		return record.Default(), nil
	}
	return r, nil
}

var _ Index = (*DB)(nil)

// IndexKey derives the 31-bit non-negative integer the record for key is
// stored under: an FNV-1a hash of key with the top bit masked off.
// Collisions across distinct user keys are possible in theory and are an
// accepted limitation of the on-disk format — a production evolution
// would key the store on the raw user key instead.
func IndexKey(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() & 0x7fffffff
}

func encodeIndexKey(k uint32) []byte {
	return []byte{
		byte(k >> 24),
		byte(k >> 16),
		byte(k >> 8),
		byte(k),
	}
}
