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

// Package arrowbatch provides columnar predicate evaluation and
// filtered-batch construction over Apache Arrow records. Evaluation
// dispatches on a fixed set of supported Arrow column kinds; anything
// outside that set fails explicitly.
package arrowbatch

import "fmt"

// Op is a predicate operator tag.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
	OpIn
	OpBetween
	OpIsNull
	OpNotNull
	OpAnd
	OpOr
)

// Predicate is a tagged variant over the supported operators. Column is
// unused for And/Or; Values holds the In set, Lo/Hi the Between bounds.
type Predicate struct {
	Op       Op
	Column   string
	Value    Value
	Values   []Value // In
	Lo, Hi   Value   // Between
	Children []Predicate
}

func Eq(column string, v Value) Predicate      { return Predicate{Op: OpEq, Column: column, Value: v} }
func Ne(column string, v Value) Predicate      { return Predicate{Op: OpNe, Column: column, Value: v} }
func Gt(column string, v Value) Predicate      { return Predicate{Op: OpGt, Column: column, Value: v} }
func Gte(column string, v Value) Predicate     { return Predicate{Op: OpGte, Column: column, Value: v} }
func Lt(column string, v Value) Predicate      { return Predicate{Op: OpLt, Column: column, Value: v} }
func Lte(column string, v Value) Predicate     { return Predicate{Op: OpLte, Column: column, Value: v} }
func IsNull(column string) Predicate           { return Predicate{Op: OpIsNull, Column: column} }
func NotNull(column string) Predicate          { return Predicate{Op: OpNotNull, Column: column} }
func And(children ...Predicate) Predicate      { return Predicate{Op: OpAnd, Children: children} }
func Or(children ...Predicate) Predicate       { return Predicate{Op: OpOr, Children: children} }

func In(column string, values ...Value) Predicate {
	return Predicate{Op: OpIn, Column: column, Values: values}
}

func Between(column string, lo, hi Value) Predicate {
	return Predicate{Op: OpBetween, Column: column, Lo: lo, Hi: hi}
}

// prepared caches In.Values as a hash set and recurses into And/Or children
// so repeated per-row evaluation never rescans the raw predicate.
type prepared struct {
	src      Predicate
	inSet    map[Value]struct{}
	children []prepared
}

func prepare(p Predicate) prepared {
	pr := prepared{src: p}
	switch p.Op {
	case OpIn:
		pr.inSet = make(map[Value]struct{}, len(p.Values))
		for _, v := range p.Values {
			pr.inSet[v] = struct{}{}
		}
	case OpAnd, OpOr:
		pr.children = make([]prepared, len(p.Children))
		for i, c := range p.Children {
			pr.children[i] = prepare(c)
		}
	}
	return pr
}

// PrepareAll normalizes a predicate list for repeated evaluation across
// many rows of one batch.
func PrepareAll(predicates []Predicate) []prepared {
	out := make([]prepared, len(predicates))
	for i, p := range predicates {
		out[i] = prepare(p)
	}
	return out
}

func (p Predicate) String() string {
	switch p.Op {
	case OpAnd:
		return fmt.Sprintf("AND%v", p.Children)
	case OpOr:
		return fmt.Sprintf("OR%v", p.Children)
	case OpIn:
		return fmt.Sprintf("%s IN %v", p.Column, p.Values)
	case OpBetween:
		return fmt.Sprintf("%s BETWEEN %v AND %v", p.Column, p.Lo, p.Hi)
	case OpIsNull:
		return p.Column + " IS NULL"
	case OpNotNull:
		return p.Column + " IS NOT NULL"
	default:
		return fmt.Sprintf("%s %v %v", p.Column, p.Op, p.Value)
	}
}
