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

package executor

import (
	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/r2rml"
)

// BindingKind tags which variant of Binding is populated.
type BindingKind int

const (
	BindingUnbound BindingKind = iota
	BindingIRI
	BindingLiteral
)

// Binding is one variable's value in a Solution.
type Binding struct {
	Kind     BindingKind
	IRI      string
	Value    arrowbatch.Value
	Datatype string
}

// Solution maps variable name to Binding.
type Solution map[string]Binding

// varSource records how to recover one query variable from a merged output
// row: either by materializing a table's subject template, or by reading a
// single column value directly.
type varSource struct {
	isSubject bool

	table    string
	template string
	columns  []string

	column   string
	datatype string
}

// bindingPlan accumulates one varSource per variable name seen across all
// patterns in a query. The first binding site for a variable wins, matching
// ordinary SPARQL semantics where repeated variable occurrences are join
// constraints, not independent re-bindings.
type bindingPlan struct {
	vars map[string]varSource
}

func newBindingPlan() *bindingPlan {
	return &bindingPlan{vars: map[string]varSource{}}
}

func (b *bindingPlan) bindSubject(variable, table, template string, columns []string) {
	if _, ok := b.vars[variable]; ok {
		return
	}
	b.vars[variable] = varSource{isSubject: true, table: table, template: template, columns: columns}
}

func (b *bindingPlan) bindColumn(variable, table, column, datatype string) {
	if _, ok := b.vars[variable]; ok {
		return
	}
	b.vars[variable] = varSource{table: table, column: column, datatype: datatype}
}

// solve converts one merged output row into a Solution.
func (b *bindingPlan) solve(row arrowbatch.Row) Solution {
	sol := make(Solution, len(b.vars))
	for variable, src := range b.vars {
		if src.isSubject {
			row2 := make(map[string]string, len(src.columns))
			missing := false
			for _, c := range src.columns {
				v, ok := row[c]
				if !ok || v.IsNull() {
					missing = true
					break
				}
				row2[c] = v.String()
			}
			if missing {
				sol[variable] = Binding{Kind: BindingUnbound}
				continue
			}
			iri := r2rml.MaterializeSubject(src.template, row2)
			sol[variable] = Binding{Kind: BindingIRI, IRI: iri}
			continue
		}

		v, ok := row[src.column]
		if !ok || v.IsNull() {
			sol[variable] = Binding{Kind: BindingUnbound}
			continue
		}
		sol[variable] = Binding{Kind: BindingLiteral, Value: v, Datatype: src.datatype}
	}
	return sol
}
