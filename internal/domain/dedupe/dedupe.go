// Package dedupe drops source rows that were already seen in the same run.
package dedupe

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Deduper records row fingerprints so each distinct row is processed once.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and records it if
	// not. It returns true for a repeat.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so a later identical row is accepted again.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Fingerprint joins fields into a dedupe key. Field boundaries are kept, so
// ("ab","c") and ("a","bc") differ.
func Fingerprint(fields ...string) string {
	d := xxhash.New()
	for _, f := range fields {
		_, _ = d.WriteString(f)
		_, _ = d.Write([]byte{0x1f})
	}
	var buf [8]byte
	sum := d.Sum64()
	for i := range buf {
		buf[i] = byte(sum >> (8 * i))
	}
	return string(buf[:])
}

// inMemoryDeduper keeps hashed keys in a map. In bounded mode the oldest key
// is evicted first from a fixed ring.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[uint64]int // hash -> ring slot, -1 in unbounded mode
	ring    []uint64
	used    []bool
	next    int
	maxSize int
}

// NewInMemoryDeduper creates a deduper. It is unbounded unless WithMaxSize
// sets a positive limit.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[uint64]int)
	if d.maxSize > 0 {
		d.ring = make([]uint64, d.maxSize)
		d.used = make([]bool, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	h := xxhash.Sum64String(key)
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[h]; ok {
		return true
	}
	if d.maxSize <= 0 {
		d.seen[h] = -1
		return false
	}
	slot := d.next
	if d.used[slot] {
		delete(d.seen, d.ring[slot])
	}
	d.ring[slot], d.used[slot] = h, true
	d.seen[h] = slot
	d.next = (d.next + 1) % d.maxSize
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	h := xxhash.Sum64String(key)
	d.mu.Lock()
	defer d.mu.Unlock()

	slot, ok := d.seen[h]
	if !ok {
		return
	}
	delete(d.seen, h)
	if slot >= 0 {
		d.used[slot] = false
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
