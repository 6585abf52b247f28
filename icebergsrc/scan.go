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

package icebergsrc

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"
	iceberg "github.com/polarsignals/iceberg-go"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/vgerr"
)

// ScanOptions configures one scan over a TableSource. RejectUnknownOps
// makes an unrecognized predicate operator an error instead of the default
// pass-through-as-true.
type ScanOptions struct {
	Columns          []string
	Predicates       []arrowbatch.Predicate
	SnapshotID       *int64
	AsOfTime         *time.Time
	BatchSize        int
	Limit            *uint64
	CopyBatches      bool
	RejectUnknownOps bool
}

const defaultBatchSize = 4096

// BatchIterator is a pull-based cursor over data-file row groups,
// producing Arrow batches with projection and predicate filtering applied.
type BatchIterator struct {
	mem         memory.Allocator
	src         *TableSource
	opts        ScanOptions
	arrowSchema *arrow.Schema
	projected   []Field

	entries    []iceberg.ManifestEntry
	entryIdx   int
	curRowGrps []parquet.RowGroup
	rowGrpIdx  int
	curRows    parquet.Rows
	curSchema  *parquet.Schema
	curFile    interface{ Close() error }

	emitted uint64
	done    bool
}

// ScanArrowBatches is the primary scan path: column projection and coarse
// predicate pushdown at the manifest/data-file level via the current
// snapshot's manifests, with exact row filtering applied per-batch through
// arrowbatch.FilterBatch.
func (s *TableSource) ScanArrowBatches(ctx context.Context, opts ScanOptions) (*BatchIterator, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	arrowSchema, projected, err := arrowSchemaFor(s.schema, opts.Columns)
	if err != nil {
		return nil, err
	}

	snap := s.table.CurrentSnapshot()
	it := &BatchIterator{
		mem:         memory.NewGoAllocator(),
		src:         s,
		opts:        opts,
		arrowSchema: arrowSchema,
		projected:   projected,
	}
	if snap == nil {
		it.done = true
		return it, nil
	}
	if err := validateSnapshotSelection(snap, opts.SnapshotID, opts.AsOfTime); err != nil {
		return nil, err
	}

	manifests, err := snap.Manifests(s.bucket)
	if err != nil {
		return nil, vgerr.Wrap(vgerr.IOError, "read manifest list", err)
	}
	for _, m := range manifests {
		entries, _, err := m.FetchEntries(s.bucket, false)
		if err != nil {
			return nil, vgerr.Wrap(vgerr.IOError, "fetch manifest entries", err)
		}
		for _, e := range entries {
			// Skip files whose column bounds prove no row can match; this
			// is where predicate pushdown prunes partitions, since a
			// partition column's bounds within one file collapse to its
			// partition value.
			if !entryMayContainMatches(boundsForEntry(s.schema, e.DataFile()), opts.Predicates) {
				continue
			}
			it.entries = append(it.entries, e)
		}
	}
	return it, nil
}

// PlannedFiles reports how many data files survived bound-based pruning
// for this scan.
func (it *BatchIterator) PlannedFiles() int { return len(it.entries) }

// Next returns the next filtered, projected batch, or ok=false at end of
// scan. When CopyBatches is true (default), each returned record is
// independent of iterator state.
func (it *BatchIterator) Next(ctx context.Context) (arrow.Record, bool, error) {
	if it.done {
		return nil, false, nil
	}
	if it.opts.Limit != nil && it.emitted >= *it.opts.Limit {
		it.done = true
		return nil, false, nil
	}

	for {
		if it.curRows == nil {
			if !it.openNextEntry(ctx) {
				it.done = true
				return nil, false, nil
			}
		}

		buf := make([]parquet.Row, it.opts.BatchSize)
		n, err := it.curRows.ReadRows(buf)
		if n == 0 {
			it.closeCurrent()
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, false, vgerr.Wrap(vgerr.IOError, "read parquet rows", err)
			}
			continue
		}

		rec, err := rowsToRecord(it.mem, it.arrowSchema, it.curSchema, it.projected, buf[:n])
		if err != nil {
			return nil, false, err
		}

		filtered, err := arrowbatch.FilterBatch(it.mem, rec, it.opts.Predicates, it.opts.CopyBatches, arrowbatch.EvalOptions{RejectUnknownOps: it.opts.RejectUnknownOps})
		rec.Release()
		if err != nil {
			return nil, false, err
		}
		if filtered.NumRows() == 0 {
			filtered.Release()
			continue
		}

		it.emitted += uint64(filtered.NumRows())
		return filtered, true, nil
	}
}

// openNextEntry advances to the next non-empty row group, opening the next
// data file's stream when the current file's row groups are exhausted.
// Files are opened via fileio's block-cached SeekableInputStream, which
// already satisfies io.ReaderAt.
func (it *BatchIterator) openNextEntry(ctx context.Context) bool {
	for {
		if it.rowGrpIdx < len(it.curRowGrps) {
			rg := it.curRowGrps[it.rowGrpIdx]
			it.rowGrpIdx++
			if rg.NumRows() == 0 {
				continue
			}
			it.curRows = rg.Rows()
			it.curSchema = rg.Schema()
			return true
		}

		it.closeCurrent()
		if it.entryIdx >= len(it.entries) {
			return false
		}
		entry := it.entries[it.entryIdx]
		it.entryIdx++
		df := entry.DataFile()

		input := it.src.fileIO.NewInputFile(df.FilePath())
		stream, err := input.NewStream(ctx)
		if err != nil {
			continue // unreadable data file: skip rather than fail the whole scan
		}

		pf, err := parquet.OpenFile(stream, df.FileSizeBytes())
		if err != nil {
			stream.Close()
			continue
		}

		it.curFile = stream
		it.curRowGrps = pf.RowGroups()
		it.rowGrpIdx = 0
	}
}

func (it *BatchIterator) closeCurrent() {
	if it.curRows != nil {
		it.curRows.Close()
		it.curRows = nil
	}
	it.curRowGrps = nil
	it.rowGrpIdx = 0
	if it.curFile != nil {
		it.curFile.Close()
		it.curFile = nil
	}
}

// Close releases any open data-file stream; idempotent, safe on partial
// iteration.
func (it *BatchIterator) Close() error {
	it.closeCurrent()
	it.done = true
	return nil
}

// ScanRows is the row-at-a-time convenience wrapper: it pulls Arrow
// batches and converts them to row maps at the boundary via
// arrowbatch.ToRows.
func (s *TableSource) ScanRows(ctx context.Context, opts ScanOptions) ([]arrowbatch.Row, error) {
	it, err := s.ScanArrowBatches(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var rows []arrowbatch.Row
	for {
		batch, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		converted, err := arrowbatch.ToRows(batch)
		batch.Release()
		if err != nil {
			return nil, err
		}
		rows = append(rows, converted...)
	}
}
