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
	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/stats"
)

// EstimateJoinRows estimates result rows for a join of two tables on one
// column each: (child.rows * parent.rows) / max(ndv), clamped to at least 1.
func EstimateJoinRows(childRows uint64, childNDV uint64, parentRows uint64, parentNDV uint64) uint64 {
	maxNDV := childNDV
	if parentNDV > maxNDV {
		maxNDV = parentNDV
	}
	if maxNDV == 0 {
		maxNDV = 1
	}
	est := (childRows * parentRows) / maxNDV
	if est < 1 {
		est = 1
	}
	return est
}

// Selectivity estimates the fraction of a table's rows one predicate keeps;
// column cardinality falls back through stats.ColumnStats.NDV.
func Selectivity(t stats.TableStats, p arrowbatch.Predicate) float64 {
	switch p.Op {
	case arrowbatch.OpEq:
		return 1.0 / float64(ndvOrOne(t, p.Column))
	case arrowbatch.OpIn:
		return float64(len(p.Values)) / float64(ndvOrOne(t, p.Column))
	case arrowbatch.OpGt, arrowbatch.OpGte, arrowbatch.OpLt, arrowbatch.OpLte, arrowbatch.OpBetween:
		return 0.3
	case arrowbatch.OpIsNull:
		return 0.1
	case arrowbatch.OpNotNull:
		return 0.9
	case arrowbatch.OpAnd:
		product := 1.0
		for _, c := range p.Children {
			product *= Selectivity(t, c)
		}
		return product
	case arrowbatch.OpOr:
		product := 1.0
		for _, c := range p.Children {
			product *= (1 - Selectivity(t, c))
		}
		return 1 - product
	default:
		return 1.0 // unknown operator: no narrowing, matches pass-through eval semantics
	}
}

func ndvOrOne(t stats.TableStats, column string) uint64 {
	n := t.NDV(column)
	if n == 0 {
		return 1
	}
	return n
}

// SelectedRows composes the selectivity of every predicate against a table,
// bounded to [1, row_count].
func SelectedRows(t stats.TableStats, predicates []arrowbatch.Predicate) uint64 {
	if t.RowCount == 0 {
		return 0
	}
	product := 1.0
	for _, p := range predicates {
		product *= Selectivity(t, p)
	}
	rows := uint64(float64(t.RowCount) * product)
	if rows < 1 {
		rows = 1
	}
	if rows > t.RowCount {
		rows = t.RowCount
	}
	return rows
}
