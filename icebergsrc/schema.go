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

// Package icebergsrc adapts a polarsignals/iceberg-go table into the
// engine's TableSource contract: immutable per-metadata-location handles
// that resolve schema and statistics and scan Arrow batches with predicate
// pushdown.
package icebergsrc

import (
	iceberg "github.com/polarsignals/iceberg-go"
)

// Field is one column of a Schema.
type Field struct {
	Name          string
	LogicalType   string
	Nullable      bool
	IsPartitionKey bool
}

// PartitionField describes one partition-spec entry: the source field id it
// transforms and the transform's name (identity, bucket, truncate, ...).
type PartitionField struct {
	SourceFieldID int
	FieldName     string
	Transform     string
}

// Schema is the ordered column sequence plus partition-spec description.
type Schema struct {
	Fields    []Field
	Partition []PartitionField
}

// ColumnNames returns the ordered field names of the schema.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// fromIcebergSchema converts an iceberg-go schema + partition spec into a
// Schema, marking fields whose ids appear as partition-spec sources.
func fromIcebergSchema(sch *iceberg.Schema, spec iceberg.PartitionSpec) Schema {
	partitionSourceIDs := map[int]bool{}
	var partitionFields []PartitionField
	if !spec.IsUnpartitioned() {
		for i := 0; i < spec.NumFields(); i++ {
			pf := spec.Field(i)
			partitionSourceIDs[pf.SourceID] = true
			partitionFields = append(partitionFields, PartitionField{
				SourceFieldID: pf.SourceID,
				FieldName:     pf.Name,
				Transform:     pf.Transform.String(),
			})
		}
	}

	out := Schema{Partition: partitionFields}
	for _, f := range sch.Fields() {
		out.Fields = append(out.Fields, Field{
			Name:           f.Name,
			LogicalType:    icebergTypeToLogicalType(f.Type),
			Nullable:       !f.Required,
			IsPartitionKey: partitionSourceIDs[f.ID],
		})
	}
	return out
}

// icebergTypeToLogicalType maps an iceberg primitive type name to the
// logical-type string the rest of the engine dispatches on.
func icebergTypeToLogicalType(t iceberg.Type) string {
	switch t.Type() {
	case "long":
		return "int64"
	case "int":
		return "int32"
	case "float":
		return "float32"
	case "double":
		return "float64"
	case "string", "binary":
		return "utf8"
	case "boolean":
		return "bool"
	case "date":
		return "date32"
	case "timestamp", "timestamptz":
		return "timestamp"
	case "decimal":
		return "decimal"
	default:
		return t.Type()
	}
}
