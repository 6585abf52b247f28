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

package vgerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(IOError, "range read failed", cause)
	assert.Equal(t, "io: range read failed: boom", e.Error())
	assert.ErrorIs(t, e, cause)
}

func TestWithContext(t *testing.T) {
	base := New(SchemaError, "unknown column")
	withCol := base.WithContext("column", "country")
	assert.Empty(t, base.Context)
	assert.Equal(t, "country", withCol.Context["column"])
}

func TestOfKind(t *testing.T) {
	inner := Wrap(PlanningError, "disconnected join graph", nil)
	outer := Wrap(ExecutionError, "compile failed", inner)
	assert.True(t, OfKind(outer, ExecutionError))
	assert.False(t, OfKind(outer, IOError))
}

func TestIsMatchesOnKindOnly(t *testing.T) {
	a := New(CatalogError, "first")
	b := New(CatalogError, "second")
	assert.True(t, errors.Is(a, b))

	c := New(IOError, "third")
	assert.False(t, errors.Is(a, c))
}
