// --------------------------------------------------------------------------------
// Author: Thomas F McGeehan V
//
// This file is part of a software project developed by Thomas F McGeehan V.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
// For more information about the MIT License, please visit:
// https://opensource.org/licenses/MIT
//
// Acknowledgment appreciated but not required.
// --------------------------------------------------------------------------------

package fileio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// blockKey identifies one fixed-size block of one file. Entries for
// distinct paths never share a key, even when block indexes coincide.
type blockKey struct {
	pathHash  uint64
	blockSize uint32
	blockIdx  int64
}

type cacheEntry struct {
	bytes     []byte
	expiresAt time.Time
}

// BlockCache is a weight-bounded LRU of (path, blockSize, blockIndex) ->
// bytes. Weight is len(bytes); total cached bytes never exceeds maxBytes.
// Concurrent GetOrFetch calls for the same key deduplicate the underlying
// fetch.
type BlockCache struct {
	mu        sync.Mutex
	lru       *lru.Cache[blockKey, *cacheEntry]
	maxBytes  int64
	curBytes  int64
	ttl       time.Duration
	inflight  map[blockKey]*inflightFetch
}

type inflightFetch struct {
	done chan struct{}
	data []byte
	err  error
}

// NewBlockCache builds a cache that evicts the least-recently-used block
// once curBytes would exceed maxBytes. entryCountHint bounds the LRU's
// internal slot count; it is a performance hint, not a correctness bound
// (curBytes/maxBytes is the real limit).
func NewBlockCache(maxBytes int64, ttl time.Duration, entryCountHint int) (*BlockCache, error) {
	if entryCountHint <= 0 {
		entryCountHint = 4096
	}
	bc := &BlockCache{
		maxBytes: maxBytes,
		ttl:      ttl,
		inflight: make(map[blockKey]*inflightFetch),
	}
	c, err := lru.NewWithEvict(entryCountHint, bc.onEvict)
	if err != nil {
		return nil, fmt.Errorf("new block cache: %w", err)
	}
	bc.lru = c
	return bc, nil
}

func (bc *BlockCache) onEvict(_ blockKey, entry *cacheEntry) {
	bc.curBytes -= int64(len(entry.bytes))
}

func keyFor(path string, blockSize uint32, blockIdx int64) blockKey {
	return blockKey{pathHash: xxhash.Sum64String(path), blockSize: blockSize, blockIdx: blockIdx}
}

// Fetcher retrieves one block's raw bytes, e.g. a range read against a
// storage.Store.
type Fetcher func(ctx context.Context, blockIdx int64) ([]byte, error)

// GetOrFetch returns the cached block if present and unexpired, otherwise
// calls fetch exactly once even under concurrent callers for the same key.
func (bc *BlockCache) GetOrFetch(ctx context.Context, path string, blockSize uint32, blockIdx int64, fetch Fetcher) ([]byte, error) {
	key := keyFor(path, blockSize, blockIdx)

	bc.mu.Lock()
	if entry, ok := bc.lru.Get(key); ok {
		if bc.ttl <= 0 || time.Now().Before(entry.expiresAt) {
			if bc.ttl > 0 {
				entry.expiresAt = time.Now().Add(bc.ttl)
			}
			bc.mu.Unlock()
			return entry.bytes, nil
		}
		bc.lru.Remove(key)
	}

	if f, ok := bc.inflight[key]; ok {
		bc.mu.Unlock()
		<-f.done
		return f.data, f.err
	}

	f := &inflightFetch{done: make(chan struct{})}
	bc.inflight[key] = f
	bc.mu.Unlock()

	data, err := fetch(ctx, blockIdx)

	bc.mu.Lock()
	delete(bc.inflight, key)
	if err == nil {
		bc.insertLocked(key, data)
	}
	bc.mu.Unlock()

	f.data, f.err = data, err
	close(f.done)
	return data, err
}

func (bc *BlockCache) insertLocked(key blockKey, data []byte) {
	expires := time.Time{}
	if bc.ttl > 0 {
		expires = time.Now().Add(bc.ttl)
	}
	bc.lru.Add(key, &cacheEntry{bytes: data, expiresAt: expires})
	bc.curBytes += int64(len(data))

	for bc.maxBytes > 0 && bc.curBytes > bc.maxBytes && bc.lru.Len() > 0 {
		bc.lru.RemoveOldest()
	}
}

// InvalidatePath drops every cached block registered under path, for the
// mutable-file edge case. The cache keys on a path hash rather than the
// path itself, so callers that need prefix invalidation must track the
// path->hash mapping themselves; whole-path invalidation is all the engine
// needs.
func (bc *BlockCache) InvalidatePath(path string) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	target := xxhash.Sum64String(path)
	for _, key := range bc.lru.Keys() {
		if key.pathHash == target {
			bc.lru.Remove(key)
		}
	}
}

// Len reports the number of cached blocks, for tests.
func (bc *BlockCache) Len() int {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.lru.Len()
}
