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

// Package joingraph builds the join graph over R2RML-mapped tables and
// implements the greedy, NDV-driven join ordering cost model.
package joingraph

import "github.com/arrowarc/icebergraph/r2rml"

// JoinColumnPair is one (child, parent) column pair of a composite join key.
type JoinColumnPair struct {
	Child  string
	Parent string
}

// JoinEdge is one undirected join relationship derived from a reference
// objectMap. Composite keys are supported via multi-element Columns.
type JoinEdge struct {
	ChildTable   string
	ParentTable  string
	Columns      []JoinColumnPair
	PredicateIRI string
}

// JoinGraph indexes edges by each endpoint table; every edge is referenced
// from both its child and parent entry in ByTable.
type JoinGraph struct {
	Edges     []JoinEdge
	ByTable   map[string][]JoinEdge
	TMToTable map[string]string
}

// BuildJoinGraph derives a JoinGraph from a RoutingIndex: for each mapping
// and each reference predicate, add an undirected edge.
func BuildJoinGraph(idx *r2rml.RoutingIndex) *JoinGraph {
	g := &JoinGraph{
		ByTable:   map[string][]JoinEdge{},
		TMToTable: map[string]string{},
	}

	for tmID, m := range idx.Mappings() {
		g.TMToTable[tmID] = m.Table

		for predIRI, om := range m.Predicates {
			if om.Kind != r2rml.ObjectMapRef {
				continue
			}
			parentTable, ok := idx.TableFor(om.ParentTriplesMap)
			if !ok {
				continue // dangling reference; planner treats it as unroutable
			}
			cols := make([]JoinColumnPair, len(om.JoinConditions))
			for i, jc := range om.JoinConditions {
				cols[i] = JoinColumnPair{Child: jc.Child, Parent: jc.Parent}
			}
			edge := JoinEdge{
				ChildTable:   m.Table,
				ParentTable:  parentTable,
				Columns:      cols,
				PredicateIRI: predIRI,
			}
			g.Edges = append(g.Edges, edge)
			g.ByTable[m.Table] = append(g.ByTable[m.Table], edge)
			g.ByTable[parentTable] = append(g.ByTable[parentTable], edge)
		}
	}
	return g
}

// EdgesBetween returns every edge connecting a and b, in either direction.
func (g *JoinGraph) EdgesBetween(a, b string) []JoinEdge {
	var out []JoinEdge
	for _, e := range g.ByTable[a] {
		if e.ChildTable == b || e.ParentTable == b {
			out = append(out, e)
		}
	}
	return out
}

// Neighbors returns the set of tables directly joinable with table.
func (g *JoinGraph) Neighbors(table string) map[string]bool {
	n := map[string]bool{}
	for _, e := range g.ByTable[table] {
		if e.ChildTable != table {
			n[e.ChildTable] = true
		}
		if e.ParentTable != table {
			n[e.ParentTable] = true
		}
	}
	return n
}
