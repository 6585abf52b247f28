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

// Package stats holds the per-table and per-column statistics the join
// planner's cost model consumes.
package stats

// ColumnStats summarizes one column for cardinality estimation.
type ColumnStats struct {
	Min           any
	Max           any
	NullCount     uint64
	ValueCount    uint64
	DistinctCount *uint64 // nil when no NDV sketch is available
}

// NDV returns the best available distinct-value estimate for the column,
// falling back from an explicit sketch to value count to row count.
func (c ColumnStats) NDV(rowCount uint64) uint64 {
	if c.DistinctCount != nil && *c.DistinctCount > 0 {
		return *c.DistinctCount
	}
	if c.ValueCount > 0 {
		return c.ValueCount
	}
	if rowCount > 0 {
		return rowCount
	}
	return 1
}

// TableStats aggregates one table's snapshot-level statistics.
type TableStats struct {
	RowCount    uint64
	FileCount   uint64
	SnapshotID  int64
	TimestampMs int64
	Columns     map[string]ColumnStats
}

// NDV resolves the distinct-value estimate for column, defaulting to the
// table's row count when the column is unknown.
func (t TableStats) NDV(column string) uint64 {
	cs, ok := t.Columns[column]
	if !ok {
		if t.RowCount > 0 {
			return t.RowCount
		}
		return 1
	}
	return cs.NDV(t.RowCount)
}
