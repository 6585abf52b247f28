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
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	iceberg "github.com/polarsignals/iceberg-go"
	"github.com/polarsignals/iceberg-go/catalog"
	"github.com/polarsignals/iceberg-go/table"
	"github.com/thanos-io/objstore"

	"github.com/arrowarc/icebergraph/fileio"
	"github.com/arrowarc/icebergraph/stats"
	"github.com/arrowarc/icebergraph/vgerr"
)

// TableSource is an immutable handle to one Iceberg table bound to a
// metadata location. Reloading a different metadata location produces a
// distinct TableSource rather than mutating this one.
type TableSource struct {
	name          string
	metadataLoc   string
	bucket        objstore.Bucket
	fileIO        *fileio.FileIO
	table         table.Table
	schema        Schema
	currentSnapID int64
}

// Name returns the table name this source was loaded for.
func (s *TableSource) Name() string { return s.name }

// Schema returns the immutable schema captured when the source was loaded.
func (s *TableSource) Schema() Schema { return s.schema }

// sourceCache is the bounded LRU of metadata-location -> *TableSource.
// Insertions are idempotent: a concurrent second load of the same location
// returns the first caller's TableSource.
type sourceCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *TableSource]
}

func newSourceCache(maxEntries int) *sourceCache {
	c, _ := lru.New[string, *TableSource](maxEntries)
	return &sourceCache{cache: c}
}

// Catalog resolves table identifiers to iceberg-go table.Table handles and
// owns the bounded TableSource cache.
type Catalog struct {
	catalog catalog.Catalog
	bucket  objstore.Bucket
	fileIO  *fileio.FileIO
	cache   *sourceCache
}

// NewCatalog wraps an iceberg-go catalog and bucket. fio drives the
// block-cached range reads used to open data files during scans; it shares
// its bucket with ctlg.
func NewCatalog(ctlg catalog.Catalog, bucket objstore.Bucket, fio *fileio.FileIO, cacheSize int) *Catalog {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheEntries
	}
	return &Catalog{catalog: ctlg, bucket: bucket, fileIO: fio, cache: newSourceCache(cacheSize)}
}

// LoadFromMetadata loads (or returns the cached) TableSource for
// metadataLocation. metadataLocation is treated as the catalog identifier
// path under which the table is resolved; iceberg-go does not expose
// loading a table directly from a bare metadata.json URI.
func (c *Catalog) LoadFromMetadata(ctx context.Context, metadataLocation, tableName string) (*TableSource, error) {
	c.cache.mu.Lock()
	defer c.cache.mu.Unlock()

	if cached, ok := c.cache.cache.Get(metadataLocation); ok {
		return cached, nil
	}

	if c.catalog == nil {
		return nil, vgerr.New(vgerr.CatalogError, "no catalog client configured")
	}
	t, err := c.catalog.LoadTable(ctx, []string{metadataLocation}, iceberg.Properties{})
	if err != nil {
		return nil, vgerr.Wrap(vgerr.CatalogError, "load table "+tableName, err)
	}

	snap := t.CurrentSnapshot()
	var snapID int64
	if snap != nil {
		snapID = snap.SnapshotID
	}

	src := &TableSource{
		name:          tableName,
		metadataLoc:   metadataLocation,
		bucket:        c.bucket,
		fileIO:        c.fileIO,
		table:         t,
		schema:        fromIcebergSchema(t.Schema(), t.Metadata().PartitionSpec()),
		currentSnapID: snapID,
	}
	c.cache.cache.Add(metadataLocation, src)
	return src, nil
}

// validateSnapshotSelection checks a requested snapshot id or as-of-time
// against the only snapshot the catalog client exposes. A selection the
// current snapshot cannot satisfy is refused rather than silently serving
// the wrong data.
func validateSnapshotSelection(snap *table.Snapshot, snapshotID *int64, asOf *time.Time) error {
	if snapshotID != nil && *snapshotID != snap.SnapshotID {
		return vgerr.New(vgerr.PlanningError, "scanning a non-current snapshot is not supported")
	}
	if asOf != nil && snap.TimestampMs > asOf.UnixMilli() {
		return vgerr.New(vgerr.PlanningError, "as-of-time predates the current snapshot")
	}
	return nil
}

// GetSchema resolves the schema for the requested snapshot selection. With
// only the current snapshot available, any satisfiable selection resolves
// to the schema captured at load time.
func (s *TableSource) GetSchema(opts ScanOptions) (Schema, error) {
	snap := s.table.CurrentSnapshot()
	if snap == nil {
		return s.schema, nil
	}
	if err := validateSnapshotSelection(snap, opts.SnapshotID, opts.AsOfTime); err != nil {
		return Schema{}, err
	}
	return s.schema, nil
}

// GetStatistics returns row/file counts summed over the current snapshot's
// manifest entries (one file per entry, rows from each data file's record
// count). When includeColumnStats is true, per-column null and value counts
// are aggregated from the data files; min/max bounds and distinct counts
// are not filled in.
func (s *TableSource) GetStatistics(ctx context.Context, includeColumnStats bool) (stats.TableStats, error) {
	snap := s.table.CurrentSnapshot()
	if snap == nil {
		return stats.TableStats{}, nil
	}

	out := stats.TableStats{
		SnapshotID:  snap.SnapshotID,
		TimestampMs: snap.TimestampMs,
		Columns:     map[string]stats.ColumnStats{},
	}

	manifests, err := snap.Manifests(s.bucket)
	if err != nil {
		return stats.TableStats{}, vgerr.Wrap(vgerr.IOError, "read manifest list", err)
	}

	colAgg := map[string]*columnAggregate{}
	for _, m := range manifests {
		entries, _, err := m.FetchEntries(s.bucket, false)
		if err != nil {
			return stats.TableStats{}, vgerr.Wrap(vgerr.IOError, "fetch manifest entries", err)
		}
		out.FileCount += uint64(len(entries))
		for _, e := range entries {
			df := e.DataFile()
			out.RowCount += uint64(df.Count())
			if !includeColumnStats {
				continue
			}
			aggregateColumnStats(colAgg, s.schema, df)
		}
	}
	for name, agg := range colAgg {
		out.Columns[name] = agg.toColumnStats()
	}
	return out, nil
}

type columnAggregate struct {
	nullCount  uint64
	valueCount uint64
}

func (a *columnAggregate) toColumnStats() stats.ColumnStats {
	return stats.ColumnStats{NullCount: a.nullCount, ValueCount: a.valueCount}
}

// aggregateColumnStats folds one data file's per-column null/value counts
// into the running aggregate.
func aggregateColumnStats(agg map[string]*columnAggregate, schema Schema, df iceberg.DataFile) {
	nullCounts := df.NullValueCounts()
	for i, f := range schema.Fields {
		a, ok := agg[f.Name]
		if !ok {
			a = &columnAggregate{}
			agg[f.Name] = a
		}
		if i < len(nullCounts) {
			a.nullCount += uint64(nullCounts[i])
		}
		a.valueCount += uint64(df.Count())
	}
}

// DefaultCacheEntries bounds the process-wide TableSource cache size absent
// explicit configuration.
const DefaultCacheEntries = 64

// CacheTTLHint documents the intent that cache entries never need a TTL:
// TableSources are immutable per metadata location, so only capacity-based
// eviction applies.
const CacheTTLHint = time.Duration(0)
