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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowarc/icebergraph/arrowbatch"
)

func int64Bound(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

func stringBounds(lo, hi string) columnBounds {
	return columnBounds{logicalType: "utf8", lower: []byte(lo), upper: []byte(hi)}
}

func TestEntryPruningOnPartitionValue(t *testing.T) {
	// A file partitioned on active="N" collapses that column's bounds to
	// its partition value, so active="Y" must prune it.
	fileY := map[string]columnBounds{"active": stringBounds("Y", "Y")}
	fileN := map[string]columnBounds{"active": stringBounds("N", "N")}
	preds := []arrowbatch.Predicate{arrowbatch.Eq("active", arrowbatch.String("Y"))}

	assert.True(t, entryMayContainMatches(fileY, preds))
	assert.False(t, entryMayContainMatches(fileN, preds))
}

func TestEntryPruningIntRanges(t *testing.T) {
	bounds := map[string]columnBounds{
		"id": {logicalType: "int64", lower: int64Bound(10), upper: int64Bound(20)},
	}

	assert.True(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{arrowbatch.Eq("id", arrowbatch.Int64(15))}))
	assert.False(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{arrowbatch.Eq("id", arrowbatch.Int64(5))}))
	assert.False(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{arrowbatch.Gt("id", arrowbatch.Int64(20))}))
	assert.True(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{arrowbatch.Gte("id", arrowbatch.Int64(20))}))
	assert.False(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{arrowbatch.Lt("id", arrowbatch.Int64(10))}))
	assert.True(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{arrowbatch.Between("id", arrowbatch.Int64(18), arrowbatch.Int64(30))}))
	assert.False(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{arrowbatch.Between("id", arrowbatch.Int64(21), arrowbatch.Int64(30))}))
}

func TestEntryPruningIn(t *testing.T) {
	bounds := map[string]columnBounds{"country": stringBounds("Canada", "Germany")}

	keep := []arrowbatch.Predicate{arrowbatch.In("country", arrowbatch.String("France"), arrowbatch.String("Peru"))}
	prune := []arrowbatch.Predicate{arrowbatch.In("country", arrowbatch.String("Peru"), arrowbatch.String("Zambia"))}
	assert.True(t, entryMayContainMatches(bounds, keep))
	assert.False(t, entryMayContainMatches(bounds, prune))
}

func TestEntryPruningNulls(t *testing.T) {
	noNulls := map[string]columnBounds{
		"name": {logicalType: "utf8", nullCount: 0, rowCount: 100, hasNulls: true},
	}
	allNulls := map[string]columnBounds{
		"name": {logicalType: "utf8", nullCount: 100, rowCount: 100, hasNulls: true},
	}

	assert.False(t, entryMayContainMatches(noNulls, []arrowbatch.Predicate{arrowbatch.IsNull("name")}))
	assert.True(t, entryMayContainMatches(noNulls, []arrowbatch.Predicate{arrowbatch.NotNull("name")}))
	assert.True(t, entryMayContainMatches(allNulls, []arrowbatch.Predicate{arrowbatch.IsNull("name")}))
	assert.False(t, entryMayContainMatches(allNulls, []arrowbatch.Predicate{arrowbatch.NotNull("name")}))
}

func TestEntryPruningNeverPrunesWithoutBounds(t *testing.T) {
	empty := map[string]columnBounds{"id": {logicalType: "int64"}}
	preds := []arrowbatch.Predicate{arrowbatch.Eq("id", arrowbatch.Int64(1))}

	assert.True(t, entryMayContainMatches(empty, preds))
	assert.True(t, entryMayContainMatches(map[string]columnBounds{}, preds))
}

func TestEntryPruningAndOrTrees(t *testing.T) {
	bounds := map[string]columnBounds{
		"id":      {logicalType: "int64", lower: int64Bound(10), upper: int64Bound(20)},
		"country": stringBounds("Canada", "Canada"),
	}

	and := arrowbatch.And(
		arrowbatch.Eq("id", arrowbatch.Int64(15)),
		arrowbatch.Eq("country", arrowbatch.String("Peru")),
	)
	assert.False(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{and}))

	or := arrowbatch.Or(
		arrowbatch.Eq("id", arrowbatch.Int64(99)),
		arrowbatch.Eq("country", arrowbatch.String("Canada")),
	)
	assert.True(t, entryMayContainMatches(bounds, []arrowbatch.Predicate{or}))
}

func TestDecodeBoundTypes(t *testing.T) {
	v, ok := decodeBound("int64", int64Bound(-7))
	require.True(t, ok)
	assert.Equal(t, int64(-7), v.I)

	i32 := make([]byte, 4)
	binary.LittleEndian.PutUint32(i32, uint32(42))
	v, ok = decodeBound("int32", i32)
	require.True(t, ok)
	assert.Equal(t, int64(42), v.I)

	v, ok = decodeBound("utf8", []byte("abc"))
	require.True(t, ok)
	assert.Equal(t, "abc", v.S)

	_, ok = decodeBound("decimal", []byte{1, 2})
	assert.False(t, ok)
	_, ok = decodeBound("int64", nil)
	assert.False(t, ok)
}
