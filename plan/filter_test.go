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
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/icebergsrc"
)

func TestFilterEmitsOnlyMatchingRows(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildInt64StringRecord(mem, []int64{1, 2, 3}, []string{"a", "b", "c"})
	defer rec.Release()

	child := &memPlan{
		sch:     icebergsrc.Schema{Fields: []icebergsrc.Field{int64Field("id", false), stringField("label", true)}},
		batches: recordBatch(rec),
	}
	f := &Filter{Child: child, Predicates: []arrowbatch.Predicate{arrowbatch.Gt("id", arrowbatch.Int64(1))}}
	require.NoError(t, f.Open(context.Background()))

	batch, err := f.NextBatch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, batch)
	defer batch.Release()
	assert.Equal(t, int64(2), batch.Arrow.NumRows())
	idCol := batch.Arrow.Column(0).(*array.Int64)
	assert.Equal(t, int64(2), idCol.Value(0))
	assert.Equal(t, int64(3), idCol.Value(1))

	next, err := f.NextBatch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestFilterSkipsFullyFilteredBatches(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildInt64StringRecord(mem, []int64{1, 2}, []string{"a", "b"})
	defer rec.Release()

	child := &memPlan{
		sch:     icebergsrc.Schema{Fields: []icebergsrc.Field{int64Field("id", false), stringField("label", true)}},
		batches: recordBatch(rec),
	}
	f := &Filter{Child: child, Predicates: []arrowbatch.Predicate{arrowbatch.Gt("id", arrowbatch.Int64(100))}}
	require.NoError(t, f.Open(context.Background()))

	batch, err := f.NextBatch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestFilterEstimatedRowsAppliesSelectivity(t *testing.T) {
	child := &memPlan{batches: recordBatch(nil)}
	f := &Filter{Child: child, Selectivity: 0.5}
	// memPlan.EstimatedRows reports len(batches)*2; with one batch that's 2.
	assert.Equal(t, uint64(1), f.EstimatedRows())
}
