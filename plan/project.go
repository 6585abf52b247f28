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
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arrowarc/icebergraph/icebergsrc"
	"github.com/arrowarc/icebergraph/vgerr"
)

// Project selects a subset of columns from each child batch. When Columns
// is empty, or already equals the child's schema, NextBatch passes batches
// through unchanged.
type Project struct {
	Child   Plan
	Columns []string

	noop   bool
	schema icebergsrc.Schema
}

func (p *Project) Open(ctx context.Context) error {
	childSchema := p.Child.Schema()
	if len(p.Columns) == 0 || sameColumns(p.Columns, childSchema.ColumnNames()) {
		p.noop = true
		p.schema = childSchema
		return p.Child.Open(ctx)
	}

	byName := make(map[string]icebergsrc.Field, len(childSchema.Fields))
	for _, f := range childSchema.Fields {
		byName[f.Name] = f
	}
	fields := make([]icebergsrc.Field, 0, len(p.Columns))
	for _, name := range p.Columns {
		f, ok := byName[name]
		if !ok {
			return vgerr.New(vgerr.SchemaError, fmt.Sprintf("project: unknown column %q", name))
		}
		fields = append(fields, f)
	}
	p.schema = icebergsrc.Schema{Fields: fields}
	return p.Child.Open(ctx)
}

func sameColumns(want, have []string) bool {
	if len(want) != len(have) {
		return false
	}
	for i := range want {
		if want[i] != have[i] {
			return false
		}
	}
	return true
}

func (p *Project) NextBatch(ctx context.Context) (*Batch, error) {
	batch, err := p.Child.NextBatch(ctx)
	if err != nil || batch == nil {
		return batch, err
	}
	if p.noop || batch.Arrow == nil {
		return batch, nil
	}

	rec := batch.Arrow
	schema := rec.Schema()
	cols := make([]arrow.Array, len(p.Columns))
	fields := make([]arrow.Field, len(p.Columns))
	for i, name := range p.Columns {
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			rec.Release()
			return nil, vgerr.New(vgerr.SchemaError, fmt.Sprintf("project: column %q not present in batch", name))
		}
		cols[i] = rec.Column(idx[0])
		fields[i] = schema.Field(idx[0])
	}
	projected := array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows())
	rec.Release()
	return &Batch{Arrow: projected}, nil
}

func (p *Project) Close() error { return p.Child.Close() }

func (p *Project) EstimatedRows() uint64 { return p.Child.EstimatedRows() }

func (p *Project) Schema() icebergsrc.Schema { return p.schema }
