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
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/icebergsrc"
	"github.com/arrowarc/icebergraph/vgerr"
)

// HashJoin implements the equi-join operator: build once from Build in
// Open, then probe one Probe batch at a time in NextBatch.
type HashJoin struct {
	Probe, Build         Plan
	ProbeKeys, BuildKeys []string
	LeftOuter            bool
	OutputArrow          bool
	OutputColumns        []string
	EstRows              uint64

	mem       memory.Allocator
	buildRows []joinRow
	table     map[string][]int // key string -> indices into buildRows
	probeSch  icebergsrc.Schema
	buildSch  icebergsrc.Schema
	outSchema icebergsrc.Schema
}

type joinRow struct {
	values map[string]arrowbatch.Value
}

func (h *HashJoin) Open(ctx context.Context) error {
	if len(h.ProbeKeys) != len(h.BuildKeys) {
		return vgerr.New(vgerr.PlanningError, "hash join: probe_keys and build_keys must have equal length")
	}
	h.mem = memory.NewGoAllocator()
	h.table = map[string][]int{}

	if err := h.Build.Open(ctx); err != nil {
		return err
	}
	h.buildSch = h.Build.Schema()

	for {
		batch, err := h.Build.NextBatch(ctx)
		if err != nil {
			return err
		}
		if batch == nil {
			break
		}
		if batch.Arrow == nil {
			batch.Release()
			return vgerr.New(vgerr.ExecutionError, "hash join: build side must emit Arrow batches")
		}
		if err := h.absorbBuildBatch(batch.Arrow); err != nil {
			batch.Release()
			return err
		}
		batch.Release()
	}

	if err := h.Probe.Open(ctx); err != nil {
		return err
	}
	h.probeSch = h.Probe.Schema()
	h.outSchema = mergeSchemas(h.probeSch, h.buildSch)
	return nil
}

func (h *HashJoin) absorbBuildBatch(rec arrow.Record) error {
	schema := rec.Schema()
	cols := make([]arrow.Array, len(h.BuildKeys))
	for i, k := range h.BuildKeys {
		idx := schema.FieldIndices(k)
		if len(idx) == 0 {
			return vgerr.New(vgerr.SchemaError, fmt.Sprintf("hash join: build key column %q not found", k))
		}
		cols[i] = rec.Column(idx[0])
	}

	for row := 0; row < int(rec.NumRows()); row++ {
		values := make(map[string]arrowbatch.Value, rec.NumCols())
		nullKey := false
		for i := range h.BuildKeys {
			if cols[i].IsNull(row) {
				nullKey = true
			}
		}
		if nullKey {
			continue // SQL null-safe semantics: a null in any build key excludes the row
		}
		for i := 0; i < int(rec.NumCols()); i++ {
			name := schema.Field(i).Name
			v, err := arrowbatch.ValueAt(name, rec.Column(i), row)
			if err != nil {
				return err
			}
			values[name] = v
		}

		keyParts := make([]string, len(h.BuildKeys))
		for i, k := range h.BuildKeys {
			keyParts[i] = values[k].String()
		}
		key := strings.Join(keyParts, "\x1f")
		idx := len(h.buildRows)
		h.buildRows = append(h.buildRows, joinRow{values: values})
		h.table[key] = append(h.table[key], idx)
	}
	return nil
}

func (h *HashJoin) NextBatch(ctx context.Context) (*Batch, error) {
	for {
		probeBatch, err := h.Probe.NextBatch(ctx)
		if err != nil {
			return nil, err
		}
		if probeBatch == nil {
			return nil, nil
		}
		if probeBatch.Arrow == nil {
			probeBatch.Release()
			return nil, vgerr.New(vgerr.ExecutionError, "hash join: probe side must emit Arrow batches")
		}

		rows, err := h.probeBatchToOutputRows(probeBatch.Arrow)
		probeBatch.Release()
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}

		if h.OutputArrow {
			rec, err := rowsToArrow(h.mem, h.outSchema, rows, h.OutputColumns)
			if err != nil {
				return nil, err
			}
			return &Batch{Arrow: rec}, nil
		}
		return &Batch{Rows: toArrowbatchRows(rows, h.OutputColumns)}, nil
	}
}

func (h *HashJoin) probeBatchToOutputRows(rec arrow.Record) ([]joinRow, error) {
	schema := rec.Schema()
	probeKeyCols := make([]arrow.Array, len(h.ProbeKeys))
	for i, k := range h.ProbeKeys {
		idx := schema.FieldIndices(k)
		if len(idx) == 0 {
			return nil, vgerr.New(vgerr.SchemaError, fmt.Sprintf("hash join: probe key column %q not found", k))
		}
		probeKeyCols[i] = rec.Column(idx[0])
	}

	var out []joinRow
	for row := 0; row < int(rec.NumRows()); row++ {
		probeValues := make(map[string]arrowbatch.Value, rec.NumCols())
		for i := 0; i < int(rec.NumCols()); i++ {
			name := schema.Field(i).Name
			v, err := arrowbatch.ValueAt(name, rec.Column(i), row)
			if err != nil {
				return nil, err
			}
			probeValues[name] = v
		}

		nullKey := false
		keyParts := make([]string, len(h.ProbeKeys))
		for i := range h.ProbeKeys {
			if probeKeyCols[i].IsNull(row) {
				nullKey = true
			}
			keyParts[i] = probeValues[h.ProbeKeys[i]].String()
		}

		var matchIdx []int
		if !nullKey {
			matchIdx = h.table[strings.Join(keyParts, "\x1f")]
		}

		if len(matchIdx) == 0 {
			if h.LeftOuter {
				out = append(out, joinRow{values: mergeValues(probeValues, nil, h.buildSch)})
			}
			continue
		}
		for _, bi := range matchIdx {
			out = append(out, joinRow{values: mergeValues(probeValues, h.buildRows[bi].values, h.buildSch)})
		}
	}
	return out, nil
}

func mergeValues(probe, build map[string]arrowbatch.Value, buildSchema icebergsrc.Schema) map[string]arrowbatch.Value {
	merged := make(map[string]arrowbatch.Value, len(probe)+len(buildSchema.Fields))
	for k, v := range probe {
		merged[k] = v
	}
	if build != nil {
		for k, v := range build {
			merged[k] = v
		}
		return merged
	}
	for _, f := range buildSchema.Fields {
		if _, ok := merged[f.Name]; !ok {
			merged[f.Name] = arrowbatch.Null()
		}
	}
	return merged
}

func mergeSchemas(a, b icebergsrc.Schema) icebergsrc.Schema {
	seen := make(map[string]bool, len(a.Fields)+len(b.Fields))
	out := icebergsrc.Schema{}
	for _, f := range a.Fields {
		if !seen[f.Name] {
			out.Fields = append(out.Fields, f)
			seen[f.Name] = true
		}
	}
	for _, f := range b.Fields {
		if !seen[f.Name] {
			f.Nullable = true // build-side columns are nullable once left-outer can introduce gaps
			out.Fields = append(out.Fields, f)
			seen[f.Name] = true
		}
	}
	return out
}

func toArrowbatchRows(rows []joinRow, columns []string) []arrowbatch.Row {
	out := make([]arrowbatch.Row, len(rows))
	for i, r := range rows {
		if len(columns) == 0 {
			out[i] = arrowbatch.Row(r.values)
			continue
		}
		row := make(arrowbatch.Row, len(columns))
		for _, c := range columns {
			row[c] = r.values[c]
		}
		out[i] = row
	}
	return out
}

// rowsToArrow materializes join output rows as an Arrow record, built
// per-type with array.NewBuilder the same way icebergsrc's rowsToRecord
// does, since a hash join's output schema is a plain union of its inputs'
// schemas rather than a parquet-sourced one.
func rowsToArrow(mem memory.Allocator, schema icebergsrc.Schema, rows []joinRow, columns []string) (arrow.Record, error) {
	fields := schema.Fields
	if len(columns) > 0 {
		byName := make(map[string]icebergsrc.Field, len(fields))
		for _, f := range fields {
			byName[f.Name] = f
		}
		fields = make([]icebergsrc.Field, 0, len(columns))
		for _, c := range columns {
			if f, ok := byName[c]; ok {
				fields = append(fields, f)
			}
		}
	}

	arrowFields := make([]arrow.Field, len(fields))
	builders := make([]array.Builder, len(fields))
	for i, f := range fields {
		af, err := arrowFieldForJoin(f)
		if err != nil {
			return nil, err
		}
		arrowFields[i] = af
		builders[i] = array.NewBuilder(mem, af.Type)
		defer builders[i].Release()
	}

	for _, r := range rows {
		for i, f := range fields {
			if err := appendArrowbatchValue(builders[i], r.values[f.Name]); err != nil {
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
	return array.NewRecord(arrow.NewSchema(arrowFields, nil), arrays, int64(len(rows))), nil
}

func arrowFieldForJoin(f icebergsrc.Field) (arrow.Field, error) {
	var dt arrow.DataType
	switch f.LogicalType {
	case "int32":
		dt = arrow.PrimitiveTypes.Int32
	case "int64":
		dt = arrow.PrimitiveTypes.Int64
	case "float32":
		dt = arrow.PrimitiveTypes.Float32
	case "float64":
		dt = arrow.PrimitiveTypes.Float64
	case "utf8", "binary":
		dt = arrow.BinaryTypes.String
	case "bool":
		dt = arrow.FixedWidthTypes.Boolean
	case "date32":
		dt = arrow.FixedWidthTypes.Date32
	case "date64":
		dt = arrow.FixedWidthTypes.Date64
	case "timestamp":
		dt = arrow.FixedWidthTypes.Timestamp_us
	case "decimal":
		// Join rows carry decimal cells as float64 scalars, so the output
		// column is float64 rather than a re-scaled decimal128.
		dt = arrow.PrimitiveTypes.Float64
	default:
		return arrow.Field{}, vgerr.New(vgerr.SchemaError, fmt.Sprintf("hash join: unsupported logical type %q for column %s", f.LogicalType, f.Name))
	}
	return arrow.Field{Name: f.Name, Type: dt, Nullable: true}, nil
}

func appendArrowbatchValue(builder array.Builder, v arrowbatch.Value) error {
	if v.IsNull() {
		builder.AppendNull()
		return nil
	}
	switch b := builder.(type) {
	case *array.Int32Builder:
		b.Append(int32(v.I))
	case *array.Int64Builder:
		b.Append(v.I)
	case *array.Float32Builder:
		b.Append(float32(v.F))
	case *array.Float64Builder:
		b.Append(v.F)
	case *array.StringBuilder:
		b.Append(v.S)
	case *array.BooleanBuilder:
		b.Append(v.B)
	case *array.Date32Builder:
		b.Append(arrow.Date32(v.I))
	case *array.Date64Builder:
		b.Append(arrow.Date64(v.I))
	case *array.TimestampBuilder:
		b.Append(arrow.Timestamp(v.I))
	default:
		return vgerr.New(vgerr.ExecutionError, fmt.Sprintf("hash join: unsupported builder type %T", builder))
	}
	return nil
}

func (h *HashJoin) Close() error {
	buildErr := h.Build.Close()
	probeErr := h.Probe.Close()
	if buildErr != nil {
		return buildErr
	}
	return probeErr
}

func (h *HashJoin) EstimatedRows() uint64 {
	if h.EstRows > 0 {
		return h.EstRows
	}
	return unknownEstimatedRows
}

func (h *HashJoin) Schema() icebergsrc.Schema { return h.outSchema }
