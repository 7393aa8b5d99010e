package cache

import "context"

// Key identifies one fixed-size block of a blob.
type Key struct {
	// Path is the blob name within its store.
	Path string
	// Block is the block index, i.e. offset / block size.
	Block uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	Get(ctx context.Context, key Key) ([]byte, bool)
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	Stats() (hits, misses int64)
}
