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

package r2rml

import (
	"regexp"
	"strings"

	"github.com/arrowarc/icebergraph/vgerr"
)

// MaterializeSubject substitutes a subject template's {col} placeholders
// with row values, in template order. Missing columns materialize as an
// empty segment rather than failing, matching R2RML's own treatment of a
// null template value.
func MaterializeSubject(template string, row map[string]string) string {
	var b strings.Builder
	i := 0
	for i < len(template) {
		if template[i] != '{' {
			b.WriteByte(template[i])
			i++
			continue
		}
		j := i + 1
		for j < len(template) && template[j] != '}' {
			j++
		}
		if j >= len(template) {
			b.WriteString(template[i:])
			break
		}
		b.WriteString(row[template[i+1:j]])
		i = j + 1
	}
	return b.String()
}

// templatePattern compiles a subject template into a regexp that captures
// each {col} placeholder as a non-slash run, and the ordered list of column
// names each capture group corresponds to.
func templatePattern(template string) (*regexp.Regexp, []string) {
	var pattern strings.Builder
	var cols []string
	pattern.WriteByte('^')
	i := 0
	for i < len(template) {
		if template[i] != '{' {
			j := i
			for j < len(template) && template[j] != '{' {
				j++
			}
			pattern.WriteString(regexp.QuoteMeta(template[i:j]))
			i = j
			continue
		}
		j := i + 1
		for j < len(template) && template[j] != '}' {
			j++
		}
		if j >= len(template) {
			break
		}
		cols = append(cols, template[i+1:j])
		pattern.WriteString("([^/]+)")
		i = j + 1
	}
	pattern.WriteByte('$')
	return regexp.MustCompile(pattern.String()), cols
}

// ExtractSubjectValues reverses MaterializeSubject: given an IRI produced by
// template, it recovers the per-column values used to build it. Used during
// transitive path execution to turn a frontier IRI back into an ID to query
// the next table rows by.
func ExtractSubjectValues(template, iri string) (map[string]string, error) {
	re, cols := templatePattern(template)
	m := re.FindStringSubmatch(iri)
	if m == nil {
		return nil, vgerr.New(vgerr.SchemaError, "iri does not match subject template").
			WithContext("template", template).WithContext("iri", iri)
	}
	out := make(map[string]string, len(cols))
	for i, col := range cols {
		out[col] = m[i+1]
	}
	return out, nil
}

// SingleTemplateColumn returns the sole column name of a single-column
// subject template, or ok=false when the template has zero or more than one
// placeholder. Transitive path BFS only walks single-column subject keys.
func SingleTemplateColumn(template string) (string, bool) {
	cols := TemplateColumns(template)
	if len(cols) != 1 {
		return "", false
	}
	return cols[0], true
}
