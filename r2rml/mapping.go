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

// Package r2rml parses R2RML mapping documents into RoutingIndex-ready
// records and derives the routing and join structure a planner needs. The
// tokeniser+parser handle the subset of the vocabulary the engine routes
// on (TriplesMap, logicalTable, subjectMap, predicateObjectMap, objectMap,
// referencing object maps).
package r2rml

// ObjectMapKind tags which variant of ObjectMap is populated.
type ObjectMapKind int

const (
	ObjectMapColumn ObjectMapKind = iota
	ObjectMapRef
)

// JoinCondition relates a child-table column to a parent-table column for a
// referencing object map.
type JoinCondition struct {
	Child  string
	Parent string
}

// ObjectMap is either a column-typed literal extraction or a reference to
// another TriplesMap joined by one or more conditions.
type ObjectMap struct {
	Kind ObjectMapKind

	// ObjectMapColumn
	Column   string
	Datatype string // IRI, optional

	// ObjectMapRef
	ParentTriplesMap string
	JoinConditions   []JoinCondition
}

// Mapping is one TriplesMap: a table, its subject template, and the
// predicate → ObjectMap entries hung off it.
type Mapping struct {
	Table           string
	TriplesMapID    string
	SubjectTemplate string
	SubjectClass    string // IRI, optional
	Predicates      map[string]ObjectMap
}

// TemplateColumns extracts the {col} placeholders from a subject template,
// in left-to-right order, e.g. "http://ex.org/airline/{id}" -> ["id"].
func TemplateColumns(template string) []string {
	var cols []string
	i := 0
	for i < len(template) {
		if template[i] != '{' {
			i++
			continue
		}
		j := i + 1
		for j < len(template) && template[j] != '}' {
			j++
		}
		if j < len(template) {
			cols = append(cols, template[i+1:j])
		}
		i = j + 1
	}
	return cols
}
