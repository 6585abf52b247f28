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
	"sort"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowarc/icebergraph/icebergsrc"
)

func probeSchema() icebergsrc.Schema {
	return icebergsrc.Schema{Fields: []icebergsrc.Field{int64Field("id", false), stringField("label", true)}}
}

func buildSchema() icebergsrc.Schema {
	return icebergsrc.Schema{Fields: []icebergsrc.Field{int64Field("fk", false), stringField("extra", true)}}
}

func TestHashJoinInnerMatchesOnSingleKey(t *testing.T) {
	mem := memory.NewGoAllocator()
	probeRec := buildInt64StringRecord(mem, []int64{1, 2, 3}, []string{"a", "b", "c"})
	defer probeRec.Release()
	buildRec := buildNamedInt64StringRecord(mem, "fk", "extra", []int64{2, 3}, []string{"x", "y"})
	defer buildRec.Release()

	probe := &memPlan{sch: probeSchema(), batches: recordBatch(probeRec)}
	build := &memPlan{sch: buildSchema(), batches: recordBatch(buildRec)}

	hj := &HashJoin{
		Probe: probe, Build: build,
		ProbeKeys: []string{"id"}, BuildKeys: []string{"fk"},
		OutputArrow: false,
	}
	require.NoError(t, hj.Open(context.Background()))

	batch, err := hj.NextBatch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, batch)
	require.Len(t, batch.Rows, 2)

	var labels []string
	for _, r := range batch.Rows {
		labels = append(labels, r["label"].S+"/"+r["extra"].S)
	}
	sort.Strings(labels)
	assert.Equal(t, []string{"b/x", "c/y"}, labels)

	require.NoError(t, hj.Close())
}

func TestHashJoinLeftOuterEmitsUnmatchedWithNulls(t *testing.T) {
	mem := memory.NewGoAllocator()
	probeRec := buildInt64StringRecord(mem, []int64{1, 2}, []string{"a", "b"})
	defer probeRec.Release()
	buildRec := buildNamedInt64StringRecord(mem, "fk", "extra", []int64{2}, []string{"x"})
	defer buildRec.Release()

	probe := &memPlan{sch: probeSchema(), batches: recordBatch(probeRec)}
	build := &memPlan{sch: buildSchema(), batches: recordBatch(buildRec)}

	hj := &HashJoin{
		Probe: probe, Build: build,
		ProbeKeys: []string{"id"}, BuildKeys: []string{"fk"},
		LeftOuter: true,
	}
	require.NoError(t, hj.Open(context.Background()))

	batch, err := hj.NextBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Rows, 2)

	var unmatched, matched bool
	for _, r := range batch.Rows {
		if r["label"].S == "a" {
			unmatched = true
			assert.True(t, r["extra"].IsNull())
		}
		if r["label"].S == "b" {
			matched = true
			assert.Equal(t, "x", r["extra"].S)
		}
	}
	assert.True(t, unmatched)
	assert.True(t, matched)
}

func TestHashJoinExcludesNullBuildKeys(t *testing.T) {
	mem := memory.NewGoAllocator()
	probeRec := buildInt64StringRecord(mem, []int64{1}, []string{"a"})
	defer probeRec.Release()
	buildRec := buildNamedInt64StringRecord(mem, "fk", "extra", []int64{-1}, []string{"x"}) // negative id encodes null
	defer buildRec.Release()

	probe := &memPlan{sch: probeSchema(), batches: recordBatch(probeRec)}
	build := &memPlan{sch: buildSchema(), batches: recordBatch(buildRec)}

	hj := &HashJoin{
		Probe: probe, Build: build,
		ProbeKeys: []string{"id"}, BuildKeys: []string{"fk"},
		LeftOuter: true,
	}
	require.NoError(t, hj.Open(context.Background()))
	assert.Empty(t, hj.buildRows)

	batch, err := hj.NextBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)
	assert.True(t, batch.Rows[0]["extra"].IsNull())
}

func TestHashJoinRejectsMismatchedKeyArity(t *testing.T) {
	hj := &HashJoin{
		Probe: &memPlan{}, Build: &memPlan{},
		ProbeKeys: []string{"id"}, BuildKeys: []string{"fk", "other"},
	}
	err := hj.Open(context.Background())
	require.Error(t, err)
}
