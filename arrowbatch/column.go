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
	"github.com/apache/arrow-go/v18/arrow/decimal128"

	"github.com/arrowarc/icebergraph/vgerr"
)

// ValueAt extracts row idx of col as a Value, dispatching on the fixed set
// of supported column kinds. Any type outside that set is an ExecutionError
// naming the column and its Go type. Exported for callers that need to pull
// a single typed cell out of an arrow.Array, e.g. a hash join computing a
// row's key tuple.
func ValueAt(name string, col arrow.Array, idx int) (Value, error) {
	return valueAt(name, col, idx)
}

func valueAt(name string, col arrow.Array, idx int) (Value, error) {
	if col.IsNull(idx) {
		return Null(), nil
	}

	switch c := col.(type) {
	case *array.Int32:
		return Int64(int64(c.Value(idx))), nil
	case *array.Int64:
		return Int64(c.Value(idx)), nil
	case *array.Float32:
		return Float64(float64(c.Value(idx))), nil
	case *array.Float64:
		return Float64(c.Value(idx)), nil
	case *array.String:
		return String(c.Value(idx)), nil
	case *array.Binary:
		return String(string(c.Value(idx))), nil
	case *array.Boolean:
		return Bool(c.Value(idx)), nil
	case *array.Date32:
		return Int64(int64(c.Value(idx))), nil
	case *array.Date64:
		return Int64(int64(c.Value(idx))), nil
	case *array.Timestamp:
		return Int64(int64(c.Value(idx))), nil
	case *array.Decimal128:
		return Float64(decimal128ToFloat(c.Value(idx), c.DataType().(*arrow.Decimal128Type).Scale)), nil
	default:
		return Value{}, vgerr.New(vgerr.ExecutionError,
			fmt.Sprintf("unsupported column type (%s, %T)", name, col)).WithContext("column", name)
	}
}

func decimal128ToFloat(v decimal128.Num, scale int32) float64 {
	f := v.ToFloat64(scale)
	return f
}

// ColumnKindOf classifies the logical type of an arrow field, used by
// callers that need to describe a schema.
func ColumnKindOf(dt arrow.DataType) string {
	switch dt.ID() {
	case arrow.INT32:
		return "int32"
	case arrow.INT64:
		return "int64"
	case arrow.FLOAT32:
		return "float32"
	case arrow.FLOAT64:
		return "float64"
	case arrow.STRING, arrow.LARGE_STRING:
		return "utf8"
	case arrow.BINARY, arrow.LARGE_BINARY:
		return "binary"
	case arrow.BOOL:
		return "bool"
	case arrow.DATE32:
		return "date32"
	case arrow.DATE64:
		return "date64"
	case arrow.TIMESTAMP:
		return "timestamp"
	case arrow.DECIMAL128, arrow.DECIMAL256:
		return "decimal"
	default:
		return dt.Name()
	}
}
