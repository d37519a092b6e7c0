// Package placement implements the coordinator's replica selection: a
// deterministic, rendezvous-hashing (highest-random-weight) mapping from a
// key and the configured volume set to an ordered list of replica targets.
package placement

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"sort"
)

// Place computes the ordered list of replica path strings for key against
// volumes, taking the top min(replicas, len(volumes)) scorers and appending
// a deterministic sub-volume suffix to each (except when replicas == 1, per
// the single-replica special case).
//
// Place is a pure function of its arguments: identical inputs always
// produce identical output. Appending volumes never reorders the existing
// ones relative to each other: an appended volume enters the ranking at the
// position its own score earns, displacing only the entries it outranks.
func Place(key string, volumes []string, replicas, subvolumes int) []string {
	if len(volumes) == 0 {
		return nil
	}
	if subvolumes <= 0 {
		subvolumes = 1
	}

	scored := make([]scoredVolume, len(volumes))
	for i, v := range volumes {
		scored[i] = scoredVolume{volume: v, score: score(key, v)}
	}

	sort.Slice(scored, func(i, j int) bool {
		c := bytes.Compare(scored[i].score[:], scored[j].score[:])
		if c != 0 {
			return c > 0
		}
		return scored[i].volume < scored[j].volume
	})

	n := replicas
	if n > len(scored) {
		n = len(scored)
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		sv := scored[i]
		if replicas == 1 {
			out[i] = sv.volume
			continue
		}
		out[i] = fmt.Sprintf("%s/sv%02X", sv.volume, subVolume(sv.score, subvolumes))
	}
	return out
}

type scoredVolume struct {
	volume string
	score  [md5.Size]byte
}

// score computes the rendezvous weight of volume for key: MD5(key||volume).
func score(key, volume string) [md5.Size]byte {
	h := md5.New()
	h.Write([]byte(key))
	h.Write([]byte(volume))
	var sum [md5.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// subVolume derives the sub-volume bucket from the last four score bytes.
func subVolume(sum [md5.Size]byte, subvolumes int) int {
	v := uint32(sum[12])<<24 | uint32(sum[13])<<16 | uint32(sum[14])<<8 | uint32(sum[15])
	return int(v % uint32(subvolumes))
}
