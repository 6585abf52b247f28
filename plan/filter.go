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

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/icebergsrc"
)

// Filter is the pass-through post-scan predicate operator: it evaluates
// predicates columnarly against the child's output and emits only matching
// rows.
type Filter struct {
	Child       Plan
	Predicates  []arrowbatch.Predicate
	CopyBatches bool
	Selectivity float64 // used to scale EstimatedRows; 1.0 if unknown

	mem memory.Allocator
}

func (f *Filter) Open(ctx context.Context) error {
	f.mem = memory.NewGoAllocator()
	return f.Child.Open(ctx)
}

func (f *Filter) NextBatch(ctx context.Context) (*Batch, error) {
	for {
		batch, err := f.Child.NextBatch(ctx)
		if err != nil || batch == nil {
			return batch, err
		}
		if batch.Arrow == nil {
			return batch, nil
		}

		filtered, err := arrowbatch.FilterBatch(f.mem, batch.Arrow, f.Predicates, f.CopyBatches, arrowbatch.EvalOptions{})
		batch.Release()
		if err != nil {
			return nil, err
		}
		if filtered.NumRows() == 0 {
			filtered.Release()
			continue
		}
		return &Batch{Arrow: filtered}, nil
	}
}

func (f *Filter) Close() error { return f.Child.Close() }

func (f *Filter) EstimatedRows() uint64 {
	sel := f.Selectivity
	if sel <= 0 {
		sel = 1.0
	}
	est := float64(f.Child.EstimatedRows()) * sel
	if est < 1 {
		est = 1
	}
	return uint64(est)
}

func (f *Filter) Schema() icebergsrc.Schema { return f.Child.Schema() }
