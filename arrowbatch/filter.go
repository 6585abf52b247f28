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
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arrowarc/icebergraph/vgerr"
)

// EvalOptions controls how an unrecognized predicate operator is handled.
type EvalOptions struct {
	RejectUnknownOps bool
}

// MatchingRows returns the indices of rows in batch that satisfy every
// predicate (conjunction across the slice, each predicate itself possibly
// an And/Or tree). With no predicates, every row matches.
func MatchingRows(batch arrow.Record, predicates []Predicate, opts EvalOptions) ([]int, error) {
	if len(predicates) == 0 {
		rows := make([]int, batch.NumRows())
		for i := range rows {
			rows[i] = i
		}
		return rows, nil
	}

	prepared := PrepareAll(predicates)
	cols := columnIndex(batch)

	var matches []int
	for row := 0; row < int(batch.NumRows()); row++ {
		ok, err := evalConjunction(batch, cols, prepared, row, opts)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, row)
		}
	}
	return matches, nil
}

func columnIndex(batch arrow.Record) map[string]int {
	idx := make(map[string]int, batch.NumCols())
	for i, f := range batch.Schema().Fields() {
		idx[f.Name] = i
	}
	return idx
}

func evalConjunction(batch arrow.Record, cols map[string]int, preds []prepared, row int, opts EvalOptions) (bool, error) {
	for _, p := range preds {
		ok, err := evalOne(batch, cols, p, row, opts)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil // short-circuit the conjunction
		}
	}
	return true, nil
}

func evalOne(batch arrow.Record, cols map[string]int, p prepared, row int, opts EvalOptions) (bool, error) {
	switch p.src.Op {
	case OpAnd:
		for _, c := range p.children {
			ok, err := evalOne(batch, cols, c, row, opts)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case OpOr:
		for _, c := range p.children {
			ok, err := evalOne(batch, cols, c, row, opts)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case OpIsNull:
		colIdx, ok := cols[p.src.Column]
		if !ok {
			return false, vgerr.New(vgerr.SchemaError, "unknown column "+p.src.Column)
		}
		return batch.Column(colIdx).IsNull(row), nil
	case OpNotNull:
		colIdx, ok := cols[p.src.Column]
		if !ok {
			return false, vgerr.New(vgerr.SchemaError, "unknown column "+p.src.Column)
		}
		return !batch.Column(colIdx).IsNull(row), nil
	}

	colIdx, ok := cols[p.src.Column]
	if !ok {
		return false, vgerr.New(vgerr.SchemaError, "unknown column "+p.src.Column)
	}
	col := batch.Column(colIdx)
	if col.IsNull(row) {
		return false, nil // SQL-null semantics: a null never satisfies a comparison
	}
	v, err := valueAt(p.src.Column, col, row)
	if err != nil {
		return false, err
	}

	switch p.src.Op {
	case OpEq:
		return v.Compare(p.src.Value) == 0, nil
	case OpNe:
		return v.Compare(p.src.Value) != 0, nil
	case OpGt:
		return v.Compare(p.src.Value) > 0, nil
	case OpGte:
		return v.Compare(p.src.Value) >= 0, nil
	case OpLt:
		return v.Compare(p.src.Value) < 0, nil
	case OpLte:
		return v.Compare(p.src.Value) <= 0, nil
	case OpIn:
		_, found := p.inSet[v]
		return found, nil
	case OpBetween:
		return v.Compare(p.src.Lo) >= 0 && v.Compare(p.src.Hi) <= 0, nil
	default:
		if opts.RejectUnknownOps {
			return false, vgerr.New(vgerr.PlanningError, "unknown predicate operator")
		}
		return true, nil // unknown operator passes through as true
	}
}

// FilterBatch builds a filtered copy of batch. copy=true (or any row
// actually filtered out) allocates a fresh batch with the same schema,
// copying matching rows value-by-value. copy=false with no predicates
// returns batch itself, aliasing the caller's lifetime contract.
func FilterBatch(mem memory.Allocator, batch arrow.Record, predicates []Predicate, copyOut bool, opts EvalOptions) (arrow.Record, error) {
	rows, err := MatchingRows(batch, predicates, opts)
	if err != nil {
		return nil, err
	}

	if !copyOut && len(predicates) == 0 {
		batch.Retain()
		return batch, nil
	}

	return copyRows(mem, batch, rows)
}

// copyRows builds a new record containing only the given row indices,
// using a builder per column dispatched on the same fixed set of column
// kinds as valueAt.
func copyRows(mem memory.Allocator, batch arrow.Record, rows []int) (arrow.Record, error) {
	schema := batch.Schema()
	builders := make([]array.Builder, schema.NumFields())
	for i, f := range schema.Fields() {
		b := array.NewBuilder(mem, f.Type)
		builders[i] = b
		defer b.Release()
	}

	for _, row := range rows {
		for i := range builders {
			col := batch.Column(i)
			if col.IsNull(row) {
				builders[i].AppendNull()
				continue
			}
			if err := appendValue(builders[i], col, row); err != nil {
				return nil, err
			}
		}
	}

	arrays := make([]arrow.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.NewArray()
	}
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	return array.NewRecord(schema, arrays, int64(len(rows))), nil
}

// appendValue copies one cell from col at row into builder, dispatching on
// the concrete builder/array type pair.
func appendValue(builder array.Builder, col arrow.Array, row int) error {
	switch b := builder.(type) {
	case *array.Int32Builder:
		b.Append(col.(*array.Int32).Value(row))
	case *array.Int64Builder:
		b.Append(col.(*array.Int64).Value(row))
	case *array.Float32Builder:
		b.Append(col.(*array.Float32).Value(row))
	case *array.Float64Builder:
		b.Append(col.(*array.Float64).Value(row))
	case *array.StringBuilder:
		b.Append(col.(*array.String).Value(row))
	case *array.BinaryBuilder:
		b.Append(col.(*array.Binary).Value(row))
	case *array.BooleanBuilder:
		b.Append(col.(*array.Boolean).Value(row))
	case *array.Date32Builder:
		b.Append(col.(*array.Date32).Value(row))
	case *array.Date64Builder:
		b.Append(col.(*array.Date64).Value(row))
	case *array.TimestampBuilder:
		b.Append(col.(*array.Timestamp).Value(row))
	case *array.Decimal128Builder:
		b.Append(col.(*array.Decimal128).Value(row))
	default:
		return vgerr.New(vgerr.ExecutionError,
			fmt.Sprintf("unsupported column type for copy (%T)", builder))
	}
	return nil
}
