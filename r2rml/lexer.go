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
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokIRI tokenKind = iota // <...>
	tokQName                // prefix:local
	tokString               // "..."
	tokPunct                // one of [ ] ; . ,
	tokWord                 // bare word, e.g. "a"
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	line int
}

func (t token) String() string {
	return fmt.Sprintf("%q (line %d)", t.text, t.line)
}

// lex tokenizes a Turtle-like document. It understands IRIs in angle
// brackets, quoted strings, prefix:local qnames, and the punctuation this
// grammar subset needs ([ ] ; . , ).
func lex(src string) ([]token, error) {
	var toks []token
	line := 1
	i := 0
	n := len(src)

	for i < n {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '<':
			j := i + 1
			for j < n && src[j] != '>' {
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("line %d: unterminated IRI", line)
			}
			toks = append(toks, token{tokIRI, src[i+1 : j], line})
			i = j + 1
		case c == '"':
			j := i + 1
			for j < n && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("line %d: unterminated string", line)
			}
			toks = append(toks, token{tokString, src[i+1 : j], line})
			i = j + 1
		case c == '[' || c == ']' || c == ';' || c == '.' || c == ',':
			toks = append(toks, token{tokPunct, string(c), line})
			i++
		default:
			j := i
			for j < n && !strings.ContainsRune(" \t\r\n#<\"[];.,", rune(src[j])) {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("line %d: unexpected character %q", line, c)
			}
			word := src[i:j]
			if strings.Contains(word, ":") && word != "a" {
				toks = append(toks, token{tokQName, word, line})
			} else {
				toks = append(toks, token{tokWord, word, line})
			}
			i = j
		}
	}
	toks = append(toks, token{tokEOF, "", line})
	return toks, nil
}
