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

// Package plan implements the pull-based physical operator tree: Scan,
// Filter, Project and HashJoin, composed by a PlanCompiler that turns a
// join order into an operator tree.
package plan

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/icebergsrc"
)

// Batch is the operator-tree output unit: either a columnar Arrow record or
// a slice of row maps, never both. Which form a producer emits is governed
// by its output_arrow configuration.
type Batch struct {
	Arrow arrow.Record
	Rows  []arrowbatch.Row
}

// NumRows reports the row count regardless of which representation is set.
func (b *Batch) NumRows() int64 {
	if b == nil {
		return 0
	}
	if b.Arrow != nil {
		return b.Arrow.NumRows()
	}
	return int64(len(b.Rows))
}

// Release frees any Arrow-backed storage. A no-op for row-map batches.
func (b *Batch) Release() {
	if b != nil && b.Arrow != nil {
		b.Arrow.Release()
	}
}

// Plan is the pull-based physical operator interface: every operator
// opens its children, is pulled batch-by-batch, and closes
// idempotently regardless of how much of the iteration actually ran.
type Plan interface {
	Open(ctx context.Context) error
	NextBatch(ctx context.Context) (*Batch, error)
	Close() error
	EstimatedRows() uint64
	Schema() icebergsrc.Schema
}

// unknownEstimatedRows is the fallback used whenever statistics cannot
// produce a cardinality estimate.
const unknownEstimatedRows = 1000
