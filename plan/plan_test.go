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

package plan

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arrowarc/icebergraph/icebergsrc"
)

// memPlan replays a fixed sequence of batches, standing in for a Scan in
// tests that exercise downstream operators without a live TableSource.
type memPlan struct {
	sch     icebergsrc.Schema
	batches []arrow.Record
	idx     int
	closed  bool
}

func (m *memPlan) Open(ctx context.Context) error { m.idx = 0; return nil }

func (m *memPlan) NextBatch(ctx context.Context) (*Batch, error) {
	if m.idx >= len(m.batches) {
		return nil, nil
	}
	rec := m.batches[m.idx]
	m.idx++
	rec.Retain()
	return &Batch{Arrow: rec}, nil
}

func (m *memPlan) Close() error { m.closed = true; return nil }

func (m *memPlan) EstimatedRows() uint64 { return uint64(len(m.batches)) * 2 }

func (m *memPlan) Schema() icebergsrc.Schema { return m.sch }

// recordBatch wraps a single arrow.Record into the single-element slice
// memPlan expects, so test setup doesn't repeat the slice literal syntax.
func recordBatch(rec arrow.Record) []arrow.Record { return []arrow.Record{rec} }

func int64Field(name string, nullable bool) icebergsrc.Field {
	return icebergsrc.Field{Name: name, LogicalType: "int64", Nullable: nullable}
}

func stringField(name string, nullable bool) icebergsrc.Field {
	return icebergsrc.Field{Name: name, LogicalType: "utf8", Nullable: nullable}
}

// buildInt64StringRecord builds a two-column (id int64, label utf8) record.
// A negative id encodes a null cell for that row.
func buildInt64StringRecord(mem memory.Allocator, ids []int64, labels []string) arrow.Record {
	return buildNamedInt64StringRecord(mem, "id", "label", ids, labels)
}

// buildNamedInt64StringRecord is buildInt64StringRecord with caller-chosen
// column names, for constructing the build side of a hash join under a
// different schema than the probe side.
func buildNamedInt64StringRecord(mem memory.Allocator, idCol, labelCol string, ids []int64, labels []string) arrow.Record {
	fields := []arrow.Field{
		{Name: idCol, Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: labelCol, Type: arrow.BinaryTypes.String, Nullable: true},
	}
	idBuilder := array.NewInt64Builder(mem)
	defer idBuilder.Release()
	labelBuilder := array.NewStringBuilder(mem)
	defer labelBuilder.Release()

	for i, id := range ids {
		if id < 0 {
			idBuilder.AppendNull()
		} else {
			idBuilder.Append(id)
		}
		if labels[i] == "" {
			labelBuilder.AppendNull()
		} else {
			labelBuilder.Append(labels[i])
		}
	}

	idArr := idBuilder.NewArray()
	defer idArr.Release()
	labelArr := labelBuilder.NewArray()
	defer labelArr.Release()

	return array.NewRecord(arrow.NewSchema(fields, nil), []arrow.Array{idArr, labelArr}, int64(len(ids)))
}
