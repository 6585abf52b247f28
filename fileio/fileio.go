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

// Package fileio adapts a storage.Store to the Iceberg engine's expected
// InputFile/SeekableInputStream surface, backed by a block-cached range
// reader. The streams it hands out are usable as the io.ReaderAt behind
// parquet.OpenFile.
package fileio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/arrowarc/icebergraph/storage"
	"github.com/arrowarc/icebergraph/vgerr"
)

// FileIO adapts a storage.Store for the Iceberg table-loading path.
type FileIO struct {
	store     storage.Store
	cache     *BlockCache
	blockSize uint32

	mu     sync.Mutex
	inputs map[string]*InputFile
}

// New builds a FileIO over store with the given block size and block
// cache. Pass a nil cache to disable block caching (every range read hits
// the store directly).
func New(store storage.Store, blockSize uint32, cache *BlockCache) *FileIO {
	if blockSize == 0 {
		blockSize = 4 * 1024 * 1024
	}
	return &FileIO{
		store:     store,
		cache:     cache,
		blockSize: blockSize,
		inputs:    make(map[string]*InputFile),
	}
}

// InputFile is a handle to one path. Multiple calls to NewInputFile for the
// same path return the same InputFile, so its cached size is shared; every
// InputFile of a FileIO shares that FileIO's block cache.
type InputFile struct {
	io   *FileIO
	path string

	mu         sync.Mutex
	sizeCached bool
	size       int64
}

// NewInputFile returns (creating if necessary) the InputFile for path.
func (f *FileIO) NewInputFile(path string) *InputFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in, ok := f.inputs[path]; ok {
		return in
	}
	in := &InputFile{io: f, path: path}
	f.inputs[path] = in
	return in
}

// Exists consults Store.Stat when available, otherwise attempts a read.
func (f *FileIO) Exists(ctx context.Context, path string) (bool, error) {
	if f.store.SupportsStat() {
		_, err := f.store.Stat(ctx, path)
		if err != nil {
			return false, nil
		}
		return true, nil
	}
	_, err := f.store.ReadBytes(ctx, path)
	return err == nil, nil
}

// GetLength resolves the file's length, caching the result per InputFile;
// repeated calls issue at most one Stat.
func (in *InputFile) GetLength(ctx context.Context) (int64, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.sizeCached {
		return in.size, nil
	}

	if in.io.store.SupportsStat() {
		stat, err := in.io.store.Stat(ctx, in.path)
		if err != nil {
			return 0, vgerr.Wrap(vgerr.IOError, "stat "+in.path, err)
		}
		in.size = stat.Size
		in.sizeCached = true
		return in.size, nil
	}

	// Fallback: read the whole file once and cache its length.
	data, err := in.io.store.ReadBytes(ctx, in.path)
	if err != nil {
		return 0, vgerr.Wrap(vgerr.IOError, "read "+in.path, err)
	}
	in.size = int64(len(data))
	in.sizeCached = true
	return in.size, nil
}

// NewStream opens a seekable reader over the file. When the backing store
// supports range reads, the stream is served through the block cache.
// Otherwise it falls back to reading the whole file into memory once.
func (in *InputFile) NewStream(ctx context.Context) (*SeekableInputStream, error) {
	size, err := in.GetLength(ctx)
	if err != nil {
		return nil, err
	}

	if !in.io.store.SupportsRange() || in.io.cache == nil {
		data, err := in.io.store.ReadBytes(ctx, in.path)
		if err != nil {
			return nil, vgerr.Wrap(vgerr.IOError, "read "+in.path, err)
		}
		return &SeekableInputStream{whole: data, size: int64(len(data))}, nil
	}

	return &SeekableInputStream{
		ctx:       ctx,
		in:        in,
		size:      size,
		blockSize: in.io.blockSize,
	}, nil
}

// SeekableInputStream is a pull-based byte reader with absolute seek,
// fetching fixed-size blocks on demand.
type SeekableInputStream struct {
	// whole-file fallback mode
	whole []byte

	// block-cached mode
	ctx       context.Context
	in        *InputFile
	blockSize uint32

	size int64
	pos  int64
}

// Size returns the total stream length.
func (s *SeekableInputStream) Size() int64 { return s.size }

// Seek repositions the stream. Negative or beyond-EOF offsets fail.
func (s *SeekableInputStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = s.pos + offset
	case io.SeekEnd:
		newPos = s.size + offset
	default:
		return 0, vgerr.New(vgerr.IOError, fmt.Sprintf("invalid whence %d", whence))
	}
	if newPos < 0 || newPos > s.size {
		return 0, vgerr.New(vgerr.IOError, fmt.Sprintf("seek out of bounds: %d (size %d)", newPos, s.size))
	}
	s.pos = newPos
	return s.pos, nil
}

// ReadAt reads len(p) bytes (or until EOF) starting at off, without
// disturbing the stream's current position. A read spanning multiple
// blocks issues multiple fetches and concatenates.
func (s *SeekableInputStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > s.size {
		return 0, vgerr.New(vgerr.IOError, fmt.Sprintf("read out of bounds at %d (size %d)", off, s.size))
	}

	length := int64(len(p))
	if off+length > s.size {
		length = s.size - off
	}
	if length <= 0 {
		return 0, io.EOF
	}

	if s.whole != nil {
		n := copy(p, s.whole[off:off+length])
		return n, nil
	}

	out, err := s.readRangeBlockCached(off, length)
	if err != nil {
		return 0, err
	}
	n := copy(p, out)
	return n, nil
}

// Read implements io.Reader by reading from the current position.
func (s *SeekableInputStream) Read(p []byte) (int, error) {
	n, err := s.ReadAt(p, s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *SeekableInputStream) Close() error { return nil }

// readRangeBlockCached converts [off, off+length) into one or more block
// fetches aligned to blockSize and concatenates them.
func (s *SeekableInputStream) readRangeBlockCached(off, length int64) ([]byte, error) {
	blockSize := int64(s.blockSize)
	firstBlock := off / blockSize
	lastBlock := (off + length - 1) / blockSize

	out := make([]byte, 0, length)
	for block := firstBlock; block <= lastBlock; block++ {
		blockData, err := s.in.io.cache.GetOrFetch(s.ctx, s.in.path, s.blockSize, block, s.fetchBlock)
		if err != nil {
			return nil, err
		}

		blockStart := block * blockSize
		sliceStart := int64(0)
		if off > blockStart {
			sliceStart = off - blockStart
		}
		sliceEnd := int64(len(blockData))
		blockEnd := blockStart + int64(len(blockData))
		if off+length < blockEnd {
			sliceEnd = off + length - blockStart
		}
		if sliceStart > sliceEnd || sliceStart > int64(len(blockData)) {
			continue
		}
		if sliceEnd > int64(len(blockData)) {
			sliceEnd = int64(len(blockData))
		}
		out = append(out, blockData[sliceStart:sliceEnd]...)
	}
	return out, nil
}

// fetchBlock issues one range read for blockIdx, clamped to EOF.
func (s *SeekableInputStream) fetchBlock(ctx context.Context, blockIdx int64) ([]byte, error) {
	blockSize := int64(s.blockSize)
	start := blockIdx * blockSize
	if start >= s.size {
		return nil, vgerr.New(vgerr.IOError, fmt.Sprintf("block %d past EOF (size %d)", blockIdx, s.size))
	}
	length := blockSize
	if start+length > s.size {
		length = s.size - start
	}
	data, err := s.in.io.store.ReadBytesRange(ctx, s.in.path, start, length)
	if err != nil {
		return nil, vgerr.Wrap(vgerr.IOError, fmt.Sprintf("range read %s [%d,%d)", s.in.path, start, start+length), err)
	}
	return data, nil
}

// DefaultCacheTTL is the access TTL applied to cached blocks.
const DefaultCacheTTL = 5 * time.Minute
