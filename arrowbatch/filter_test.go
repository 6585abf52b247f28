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

package arrowbatch

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAirlinesBatch(mem memory.Allocator) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "country", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	idB := array.NewInt64Builder(mem)
	nameB := array.NewStringBuilder(mem)
	countryB := array.NewStringBuilder(mem)
	defer idB.Release()
	defer nameB.Release()
	defer countryB.Release()

	rows := []struct {
		id      int64
		name    string
		country string
		null    bool
	}{
		{1, "United Airlines", "United States", false},
		{2, "Air Canada", "Canada", false},
		{3, "Lufthansa", "Germany", false},
		{4, "Ghost Air", "", true},
	}
	for _, r := range rows {
		idB.Append(r.id)
		nameB.Append(r.name)
		if r.null {
			countryB.AppendNull()
		} else {
			countryB.Append(r.country)
		}
	}

	return array.NewRecord(schema, []arrow.Array{idB.NewArray(), nameB.NewArray(), countryB.NewArray()}, 4)
}

func TestMatchingRowsEq(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	rows, err := MatchingRows(rec, []Predicate{Eq("country", String("Canada"))}, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rows)
}

func TestMatchingRowsIn(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	rows, err := MatchingRows(rec, []Predicate{In("country", String("United States"), String("Canada"))}, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, rows)
}

func TestMatchingRowsNullNeverMatchesComparison(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	rows, err := MatchingRows(rec, []Predicate{Ne("country", String("Canada"))}, EvalOptions{})
	require.NoError(t, err)
	// row 3 has a null country and must not satisfy != either.
	assert.Equal(t, []int{0, 2}, rows)
}

func TestMatchingRowsIsNull(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	rows, err := MatchingRows(rec, []Predicate{IsNull("country")}, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, rows)
}

func TestMatchingRowsAndOr(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	rows, err := MatchingRows(rec, []Predicate{
		Or(Eq("country", String("Canada")), Eq("country", String("Germany"))),
	}, EvalOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, rows)
}

func TestUnknownOperatorPassesThroughByDefault(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	unknown := Predicate{Op: Op(999), Column: "name"}
	rows, err := MatchingRows(rec, []Predicate{unknown}, EvalOptions{})
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestUnknownOperatorRejectedWhenConfigured(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	unknown := Predicate{Op: Op(999), Column: "country"}
	_, err := MatchingRows(rec, []Predicate{unknown}, EvalOptions{RejectUnknownOps: true})
	assert.Error(t, err)
}

func TestFilterBatchCopySemantics(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	filtered, err := FilterBatch(mem, rec, []Predicate{Eq("country", String("Canada"))}, true, EvalOptions{})
	require.NoError(t, err)
	defer filtered.Release()

	assert.EqualValues(t, 1, filtered.NumRows())
	rows, err := ToRows(filtered)
	require.NoError(t, err)
	assert.Equal(t, "Canada", rows[0]["country"].S)
	assert.Equal(t, int64(2), rows[0]["id"].I)
}

func TestFilterBatchNoPredicateNoCopyAliases(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	out, err := FilterBatch(mem, rec, nil, false, EvalOptions{})
	require.NoError(t, err)
	defer out.Release()
	assert.Same(t, rec.Column(0), out.Column(0))
}

func TestToRowsRoundTrip(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := buildAirlinesBatch(mem)
	defer rec.Release()

	rows, err := ToRows(rec)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "United States", rows[0]["country"].S)
	assert.True(t, rows[3]["country"].IsNull())
}

func TestUnsupportedColumnTypeFailsExplicitly(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "weird", Type: arrow.ListOf(arrow.PrimitiveTypes.Int64)},
	}, nil)
	lb := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int64)
	defer lb.Release()
	lb.Append(true)
	lb.ValueBuilder().(*array.Int64Builder).Append(1)
	arr := lb.NewArray()
	defer arr.Release()
	rec := array.NewRecord(schema, []arrow.Array{arr}, 1)
	defer rec.Release()

	_, err := ToRows(rec)
	assert.Error(t, err)
}
