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

package joingraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/stats"
)

func distinctCount(n uint64) *uint64 { return &n }

func TestEstimateJoinRowsClampsToOne(t *testing.T) {
	assert.Equal(t, uint64(1), EstimateJoinRows(1, 1000, 1, 1000))
}

func TestEstimateJoinRowsFormula(t *testing.T) {
	// (100 * 50) / max(10, 5) = 5000/10 = 500
	assert.Equal(t, uint64(500), EstimateJoinRows(100, 10, 50, 5))
}

func TestSelectivityEq(t *testing.T) {
	st := stats.TableStats{RowCount: 1000, Columns: map[string]stats.ColumnStats{
		"country": {DistinctCount: distinctCount(200)},
	}}
	sel := Selectivity(st, arrowbatch.Eq("country", arrowbatch.String("US")))
	assert.InDelta(t, 1.0/200.0, sel, 1e-9)
}

func TestSelectivityIn(t *testing.T) {
	st := stats.TableStats{RowCount: 1000, Columns: map[string]stats.ColumnStats{
		"country": {DistinctCount: distinctCount(200)},
	}}
	sel := Selectivity(st, arrowbatch.In("country", arrowbatch.String("US"), arrowbatch.String("CA")))
	assert.InDelta(t, 2.0/200.0, sel, 1e-9)
}

func TestSelectivityRangeAndNullFixedConstants(t *testing.T) {
	st := stats.TableStats{RowCount: 1000}
	assert.InDelta(t, 0.3, Selectivity(st, arrowbatch.Gt("age", arrowbatch.Int64(18))), 1e-9)
	assert.InDelta(t, 0.1, Selectivity(st, arrowbatch.IsNull("age")), 1e-9)
	assert.InDelta(t, 0.9, Selectivity(st, arrowbatch.NotNull("age")), 1e-9)
}

func TestSelectivityAndIsProduct(t *testing.T) {
	st := stats.TableStats{RowCount: 1000, Columns: map[string]stats.ColumnStats{
		"country": {DistinctCount: distinctCount(10)},
		"city":    {DistinctCount: distinctCount(100)},
	}}
	sel := Selectivity(st, arrowbatch.And(
		arrowbatch.Eq("country", arrowbatch.String("US")),
		arrowbatch.Eq("city", arrowbatch.String("NYC")),
	))
	assert.InDelta(t, 0.1*0.01, sel, 1e-9)
}

func TestSelectivityOrIsComplementOfProduct(t *testing.T) {
	st := stats.TableStats{RowCount: 1000, Columns: map[string]stats.ColumnStats{
		"country": {DistinctCount: distinctCount(10)},
		"city":    {DistinctCount: distinctCount(10)},
	}}
	sel := Selectivity(st, arrowbatch.Or(
		arrowbatch.Eq("country", arrowbatch.String("US")),
		arrowbatch.Eq("city", arrowbatch.String("NYC")),
	))
	assert.InDelta(t, 1-(0.9*0.9), sel, 1e-9)
}

func TestSelectedRowsBoundedByRowCount(t *testing.T) {
	st := stats.TableStats{RowCount: 1000, Columns: map[string]stats.ColumnStats{
		"country": {DistinctCount: distinctCount(1)}, // ndv=1 -> selectivity 1.0
	}}
	rows := SelectedRows(st, []arrowbatch.Predicate{arrowbatch.Eq("country", arrowbatch.String("US"))})
	assert.Equal(t, uint64(1000), rows)
}

func TestSelectedRowsNeverBelowOne(t *testing.T) {
	st := stats.TableStats{RowCount: 1000, Columns: map[string]stats.ColumnStats{
		"country": {DistinctCount: distinctCount(100000)},
	}}
	rows := SelectedRows(st, []arrowbatch.Predicate{
		arrowbatch.Eq("country", arrowbatch.String("US")),
		arrowbatch.Eq("country", arrowbatch.String("US")),
	})
	assert.GreaterOrEqual(t, rows, uint64(1))
}

func TestBuildVsProbePicksSmallerAsBuild(t *testing.T) {
	assert.True(t, BuildVsProbe(10, 100))
	assert.False(t, BuildVsProbe(100, 10))
}
