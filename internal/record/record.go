// Package record defines the durable per-key metadata value the coordinator
// stores in its index, and its canonical binary encoding.
//
// A Record tracks the lifecycle of a single key: whether it is live, soft or
// hard deleted, or still mid-write, together with the checksum and replica
// volumes it was last written to. The encoding is a fixed, length-prefixed
// binary layout (see Encode/Decode) chosen to round-trip byte-for-byte
// across coordinator restarts and engine compactions.
package record

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Status is the lifecycle stage of a key's record.
//
// The tag values are part of the on-disk format (see Encode) and must never
// be renumbered; doing so would silently reinterpret every record already
// written to an existing index.
type Status uint32

const (
	// StatusNo means the record is live: payload exists on Volumes.
	StatusNo Status = 0
	// StatusSoft means the key is logically deleted, or a write failed
	// mid-flight. Volume bytes may still exist but must not be served.
	StatusSoft Status = 1
	// StatusHard is a tombstone after physical unlink. Unlink itself is
	// not implemented by this coordinator; records may never reach this
	// status and callers must tolerate that.
	StatusHard Status = 2
	// StatusInit means a write started and its outcome is unknown (e.g. a
	// crash mid-PUT). It is also the status of the default record
	// returned for a key never seen, distinguishing "never seen" from
	// "explicitly tombstoned" (see Default).
	StatusInit Status = 3
)

// String renders the status the way it appears in logs and error bodies.
func (s Status) String() string {
	switch s {
	case StatusNo:
		return "No"
	case StatusSoft:
		return "Soft"
	case StatusHard:
		return "Hard"
	case StatusInit:
		return "Init"
	default:
		return fmt.Sprintf("Status(%d)", uint32(s))
	}
}

// Live reports whether a record with this status should be served to
// clients. Only StatusNo is live.
func (s Status) Live() bool {
	return s == StatusNo
}

// Overwritable reports whether a PUT is allowed to replace a record with
// this status. Every status except StatusNo may be overwritten — absence of
// a record is handled separately by Default, which is itself StatusInit and
// therefore overwritable.
func (s Status) Overwritable() bool {
	return s != StatusNo
}

// Record is the durable per-key value: lifecycle status, payload checksum
// (lowercase hex MD5, empty when checksum verification is disabled), and the
// ordered list of replica volumes the payload was actually written to.
type Record struct {
	Hash    string
	Volumes []string
	Status  Status
}

// Default is the record substituted for a key the index has never seen:
// Init status, empty hash, no volumes. The PUT overwrite check treats
// "no record present" and "status in {Init, Soft, Hard}" identically, so
// this default is always overwritable.
func Default() Record {
	return Record{Status: StatusInit}
}

// Encode serialises r to the canonical little-endian, length-prefixed binary
// form: a 4-byte status tag, an 8-byte length + UTF-8 bytes for Hash, then an
// 8-byte count followed by, for each volume, an 8-byte length + UTF-8 bytes.
//
// This exact layout is fixed by the coordinator's on-disk contract; changing
// field order or width invalidates every index already written.
func Encode(r Record) []byte {
	size := 4 + 8 + len(r.Hash) + 8
	for _, v := range r.Volumes {
		size += 8 + len(v)
	}

	buf := make([]byte, size)
	off := 0

	binary.LittleEndian.PutUint32(buf[off:], uint32(r.Status))
	off += 4

	binary.LittleEndian.PutUint64(buf[off:], uint64(len(r.Hash)))
	off += 8
	off += copy(buf[off:], r.Hash)

	binary.LittleEndian.PutUint64(buf[off:], uint64(len(r.Volumes)))
	off += 8
	for _, v := range r.Volumes {
		binary.LittleEndian.PutUint64(buf[off:], uint64(len(v)))
		off += 8
		off += copy(buf[off:], v)
	}

	return buf
}

// Decode parses the canonical binary form produced by Encode. It returns an
// error wrapping io.ErrUnexpectedEOF if b is truncated.
func Decode(b []byte) (Record, error) {
	var r Record

	status, b, err := readUint32(b)
	if err != nil {
		return r, fmt.Errorf("record: decode status: %w", err)
	}
	r.Status = Status(status)

	hash, b, err := readString(b)
	if err != nil {
		return r, fmt.Errorf("record: decode hash: %w", err)
	}
	r.Hash = hash

	count, b, err := readUint64(b)
	if err != nil {
		return r, fmt.Errorf("record: decode volume count: %w", err)
	}

	volumes := make([]string, 0, count)
	for i := uint64(0); i < count; i++ {
		var v string
		v, b, err = readString(b)
		if err != nil {
			return r, fmt.Errorf("record: decode volume %d: %w", i, err)
		}
		volumes = append(volumes, v)
	}
	r.Volumes = volumes

	return r, nil
}

func readUint32(b []byte) (uint32, []byte, error) {
	if len(b) < 4 {
		return 0, nil, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint32(b), b[4:], nil
}

func readUint64(b []byte) (uint64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint64(b), b[8:], nil
}

func readString(b []byte) (string, []byte, error) {
	n, b, err := readUint64(b)
	if err != nil {
		return "", nil, err
	}
	if uint64(len(b)) < n {
		return "", nil, io.ErrUnexpectedEOF
	}
	return string(b[:n]), b[n:], nil
}
