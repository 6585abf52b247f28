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
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"

	"github.com/arrowarc/icebergraph/vgerr"
)

// arrowFieldFor builds the arrow.Field a Field maps to, for the subset of
// logical types icebergTypeToLogicalType produces.
func arrowFieldFor(f Field) (arrow.Field, error) {
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
	case "utf8":
		dt = arrow.BinaryTypes.String
	case "bool":
		dt = arrow.FixedWidthTypes.Boolean
	case "date32":
		dt = arrow.FixedWidthTypes.Date32
	case "timestamp":
		dt = arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.Field{}, vgerr.New(vgerr.SchemaError,
			fmt.Sprintf("unsupported logical type %q for column %s", f.LogicalType, f.Name))
	}
	return arrow.Field{Name: f.Name, Type: dt, Nullable: f.Nullable}, nil
}

// arrowSchemaFor builds the arrow.Schema for a projected column subset of a
// Schema, preserving projection order.
func arrowSchemaFor(s Schema, columns []string) (*arrow.Schema, []Field, error) {
	byName := make(map[string]Field, len(s.Fields))
	for _, f := range s.Fields {
		byName[f.Name] = f
	}
	if len(columns) == 0 {
		columns = s.ColumnNames()
	}

	fields := make([]arrow.Field, 0, len(columns))
	projected := make([]Field, 0, len(columns))
	for _, name := range columns {
		f, ok := byName[name]
		if !ok {
			return nil, nil, vgerr.New(vgerr.SchemaError, "unknown column "+name)
		}
		af, err := arrowFieldFor(f)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, af)
		projected = append(projected, f)
	}
	return arrow.NewSchema(fields, nil), projected, nil
}

// rowsToRecord converts parquet rows (one leaf value per schema column) into
// an arrow.Record over the projected fields, looking each field up in the
// parquet schema by name. This is the same per-type dispatch idea as
// arrowbatch's typed builders, sourced from a parquet.Value instead of an
// arrow.Array cell.
func rowsToRecord(mem memory.Allocator, arrowSchema *arrow.Schema, pschema *parquet.Schema, projected []Field, rows []parquet.Row) (arrow.Record, error) {
	leafIndex := make(map[string]int, len(pschema.Fields()))
	for i, f := range pschema.Fields() {
		leafIndex[f.Name()] = i
	}

	builders := make([]array.Builder, len(projected))
	for i, f := range projected {
		af, err := arrowFieldFor(f)
		if err != nil {
			return nil, err
		}
		builders[i] = array.NewBuilder(mem, af.Type)
		defer builders[i].Release()
	}

	for _, row := range rows {
		for i, f := range projected {
			leaf, ok := leafIndex[f.Name]
			if !ok || leaf >= len(row) {
				builders[i].AppendNull()
				continue
			}
			if err := appendParquetValue(builders[i], row[leaf]); err != nil {
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
	return array.NewRecord(arrowSchema, arrays, int64(len(rows))), nil
}

func appendParquetValue(builder array.Builder, v parquet.Value) error {
	if v.IsNull() {
		builder.AppendNull()
		return nil
	}
	switch b := builder.(type) {
	case *array.Int32Builder:
		b.Append(v.Int32())
	case *array.Int64Builder:
		b.Append(v.Int64())
	case *array.Float32Builder:
		b.Append(v.Float())
	case *array.Float64Builder:
		b.Append(v.Double())
	case *array.StringBuilder:
		b.Append(string(v.ByteArray()))
	case *array.BooleanBuilder:
		b.Append(v.Boolean())
	case *array.Date32Builder:
		b.Append(arrow.Date32(v.Int32()))
	case *array.TimestampBuilder:
		b.Append(arrow.Timestamp(v.Int64()))
	default:
		return vgerr.New(vgerr.ExecutionError, fmt.Sprintf("unsupported builder type %T for parquet value", builder))
	}
	return nil
}
