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
	"math"

	iceberg "github.com/polarsignals/iceberg-go"

	"github.com/arrowarc/icebergraph/arrowbatch"
)

// columnBounds carries one column's per-data-file statistics: serialized
// lower/upper bound values, the null count, and the file's row count.
type columnBounds struct {
	logicalType string
	lower       []byte
	upper       []byte
	nullCount   int64
	rowCount    int64
	hasNulls    bool
}

// boundsForEntry collects per-column bounds and counts from a data file,
// keyed by column name. Bounds are indexed by schema field position, the
// same way the manifest writer records them.
func boundsForEntry(schema Schema, df iceberg.DataFile) map[string]columnBounds {
	lowers := df.LowerBoundValues()
	uppers := df.UpperBoundValues()
	nulls := df.NullValueCounts()

	out := make(map[string]columnBounds, len(schema.Fields))
	for i, f := range schema.Fields {
		cb := columnBounds{logicalType: f.LogicalType, rowCount: int64(df.Count())}
		if i < len(lowers) {
			cb.lower = lowers[i]
		}
		if i < len(uppers) {
			cb.upper = uppers[i]
		}
		if i < len(nulls) {
			cb.nullCount = int64(nulls[i])
			cb.hasNulls = true
		}
		out[f.Name] = cb
	}
	return out
}

// entryMayContainMatches reports whether any row of the data file described
// by bounds could satisfy every predicate. False is a true negative: the
// file can be skipped without being opened. Missing bounds, unknown columns,
// and unknown operators never prune.
func entryMayContainMatches(bounds map[string]columnBounds, predicates []arrowbatch.Predicate) bool {
	for _, p := range predicates {
		if !predicateMayMatch(bounds, p) {
			return false
		}
	}
	return true
}

func predicateMayMatch(bounds map[string]columnBounds, p arrowbatch.Predicate) bool {
	switch p.Op {
	case arrowbatch.OpAnd:
		for _, c := range p.Children {
			if !predicateMayMatch(bounds, c) {
				return false
			}
		}
		return true
	case arrowbatch.OpOr:
		if len(p.Children) == 0 {
			return true
		}
		for _, c := range p.Children {
			if predicateMayMatch(bounds, c) {
				return true
			}
		}
		return false
	}

	cb, ok := bounds[p.Column]
	if !ok {
		return true
	}

	switch p.Op {
	case arrowbatch.OpIsNull:
		if !cb.hasNulls {
			return true
		}
		return cb.nullCount > 0
	case arrowbatch.OpNotNull:
		if !cb.hasNulls || cb.rowCount == 0 {
			return true
		}
		return cb.rowCount > cb.nullCount
	}

	lo, okLo := decodeBound(cb.logicalType, cb.lower)
	hi, okHi := decodeBound(cb.logicalType, cb.upper)
	if !okLo || !okHi {
		return true
	}

	switch p.Op {
	case arrowbatch.OpEq:
		return lo.Compare(p.Value) <= 0 && hi.Compare(p.Value) >= 0
	case arrowbatch.OpNe:
		// Only prunable when every row holds exactly the compared value.
		return !(lo.Compare(hi) == 0 && lo.Compare(p.Value) == 0)
	case arrowbatch.OpGt:
		return hi.Compare(p.Value) > 0
	case arrowbatch.OpGte:
		return hi.Compare(p.Value) >= 0
	case arrowbatch.OpLt:
		return lo.Compare(p.Value) < 0
	case arrowbatch.OpLte:
		return lo.Compare(p.Value) <= 0
	case arrowbatch.OpIn:
		if len(p.Values) == 0 {
			return true
		}
		for _, v := range p.Values {
			if lo.Compare(v) <= 0 && hi.Compare(v) >= 0 {
				return true
			}
		}
		return false
	case arrowbatch.OpBetween:
		return lo.Compare(p.Hi) <= 0 && hi.Compare(p.Lo) >= 0
	default:
		return true
	}
}

// decodeBound turns a single serialized bound value into a comparable
// arrowbatch.Value. Iceberg serializes single values little-endian.
func decodeBound(logicalType string, raw []byte) (arrowbatch.Value, bool) {
	if len(raw) == 0 {
		return arrowbatch.Value{}, false
	}
	switch logicalType {
	case "int32", "date32":
		if len(raw) < 4 {
			return arrowbatch.Value{}, false
		}
		return arrowbatch.Int64(int64(int32(binary.LittleEndian.Uint32(raw)))), true
	case "int64", "timestamp", "date64":
		if len(raw) < 8 {
			return arrowbatch.Value{}, false
		}
		return arrowbatch.Int64(int64(binary.LittleEndian.Uint64(raw))), true
	case "float32":
		if len(raw) < 4 {
			return arrowbatch.Value{}, false
		}
		return arrowbatch.Float64(float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))), true
	case "float64":
		if len(raw) < 8 {
			return arrowbatch.Value{}, false
		}
		return arrowbatch.Float64(math.Float64frombits(binary.LittleEndian.Uint64(raw))), true
	case "utf8", "binary":
		return arrowbatch.String(string(raw)), true
	default:
		return arrowbatch.Value{}, false
	}
}
