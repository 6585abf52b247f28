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

// Package storage is the pluggable byte-range-read abstraction the engine
// sits on. Implementations may provide any subset of Store's methods;
// FileIO degrades gracefully when a method is unsupported.
package storage

import (
	"bytes"
	"context"
	"io"

	"github.com/thanos-io/objstore"

	"github.com/arrowarc/icebergraph/vgerr"
)

// Stat describes the size of an object.
type Stat struct {
	Size int64
}

// Store is the minimal storage interface the engine depends on. ReadBytes
// is required; the others are preferred when the backing store offers
// them, since they unlock range reads and stat caching in fileio.FileIO.
type Store interface {
	ReadBytes(ctx context.Context, path string) ([]byte, error)

	// SupportsRange reports whether ReadBytesRange is implemented for real
	// (as opposed to falling back to a full read internally).
	SupportsRange() bool
	ReadBytesRange(ctx context.Context, path string, offset, length int64) ([]byte, error)

	SupportsStat() bool
	Stat(ctx context.Context, path string) (Stat, error)

	WriteBytes(ctx context.Context, path string, data []byte) error
}

// bucketStore adapts an objstore.Bucket to the Store interface.
type bucketStore struct {
	bucket objstore.Bucket
}

// NewBucketStore wraps any objstore.Bucket (filesystem, GCS, S3, in-memory)
// as a Store.
func NewBucketStore(bucket objstore.Bucket) Store {
	return &bucketStore{bucket: bucket}
}

func (s *bucketStore) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	rc, err := s.bucket.Get(ctx, path)
	if err != nil {
		return nil, vgerr.Wrap(vgerr.IOError, "read "+path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, vgerr.Wrap(vgerr.IOError, "read "+path, err)
	}
	return data, nil
}

func (s *bucketStore) SupportsRange() bool { return true }

func (s *bucketStore) ReadBytesRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	rc, err := s.bucket.GetRange(ctx, path, offset, length)
	if err != nil {
		return nil, vgerr.Wrap(vgerr.IOError, "range read "+path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, vgerr.Wrap(vgerr.IOError, "range read "+path, err)
	}
	return data, nil
}

func (s *bucketStore) SupportsStat() bool { return true }

func (s *bucketStore) Stat(ctx context.Context, path string) (Stat, error) {
	attrs, err := s.bucket.Attributes(ctx, path)
	if err != nil {
		return Stat{}, vgerr.Wrap(vgerr.IOError, "stat "+path, err)
	}
	return Stat{Size: attrs.Size}, nil
}

func (s *bucketStore) WriteBytes(ctx context.Context, path string, data []byte) error {
	if err := s.bucket.Upload(ctx, path, bytes.NewReader(data)); err != nil {
		return vgerr.Wrap(vgerr.IOError, "write "+path, err)
	}
	return nil
}

// NewInMemoryStore returns a Store backed by an in-memory objstore bucket,
// useful for tests and fixtures.
func NewInMemoryStore() Store {
	return NewBucketStore(objstore.NewInMemBucket())
}
