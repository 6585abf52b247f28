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

import "fmt"

// ValueKind tags which field of Value is meaningful.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt64
	KindFloat64
	KindString
	KindBool
)

// Value is a comparable scalar used both as a predicate literal and as a
// row-map cell. It is a plain comparable struct (no interface{}/any) so it
// can key a Go map directly for Predicate.In's hash-set preparation.
type Value struct {
	Kind ValueKind
	I    int64
	F    float64
	S    string
	B    bool
}

func Int64(v int64) Value      { return Value{Kind: KindInt64, I: v} }
func Float64(v float64) Value  { return Value{Kind: KindFloat64, F: v} }
func String(v string) Value    { return Value{Kind: KindString, S: v} }
func Bool(v bool) Value        { return Value{Kind: KindBool, B: v} }
func Null() Value              { return Value{Kind: KindNull} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInt64:
		return fmt.Sprintf("%d", v.I)
	case KindFloat64:
		return fmt.Sprintf("%g", v.F)
	case KindString:
		return v.S
	case KindBool:
		return fmt.Sprintf("%t", v.B)
	default:
		return "?"
	}
}

// Compare returns -1/0/1 for a<b/a==b/a>b. Values of differing Kind other
// than numeric-vs-numeric are compared by Kind order, which is sufficient
// since predicates are only ever constructed comparing like-typed columns.
func (a Value) Compare(b Value) int {
	if a.Kind == KindInt64 && b.Kind == KindFloat64 {
		return compareFloat(float64(a.I), b.F)
	}
	if a.Kind == KindFloat64 && b.Kind == KindInt64 {
		return compareFloat(a.F, float64(b.I))
	}
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindInt64:
		return compareInt(a.I, b.I)
	case KindFloat64:
		return compareFloat(a.F, b.F)
	case KindString:
		switch {
		case a.S < b.S:
			return -1
		case a.S > b.S:
			return 1
		default:
			return 0
		}
	case KindBool:
		if a.B == b.B {
			return 0
		}
		if !a.B {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
