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

	"github.com/arrowarc/icebergraph/vgerr"
)

// Parse reads an R2RML Turtle-like document and returns the
// TriplesMaps it declares. The minimum vocabulary this parser recognizes:
// rr:TriplesMap, rr:logicalTable, rr:tableName, rr:subjectMap, rr:template,
// rr:class, rr:predicateObjectMap, rr:predicate, rr:objectMap, rr:column,
// rr:datatype, rr:parentTriplesMap, rr:joinCondition, rr:child, rr:parent,
// plus @prefix declarations.
func Parse(doc string) ([]Mapping, error) {
	toks, err := lex(doc)
	if err != nil {
		return nil, vgerr.Wrap(vgerr.SchemaError, "r2rml lex failed", err)
	}
	p := &parser{toks: toks, prefixes: map[string]string{}}
	return p.parseDocument()
}

type parser struct {
	toks     []token
	pos      int
	prefixes map[string]string
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) advance()    { p.pos++ }

func (p *parser) errf(format string, args ...any) error {
	loc := fmt.Sprintf("line %d", p.cur().line)
	return vgerr.New(vgerr.SchemaError, loc+": "+fmt.Sprintf(format, args...))
}

func (p *parser) expectPunct(s string) error {
	if p.cur().kind != tokPunct || p.cur().text != s {
		return p.errf("expected %q, got %s", s, p.cur())
	}
	p.advance()
	return nil
}

// expand resolves a qname (prefix:local) or bare IRI/word to a full IRI
// string using the document's @prefix declarations.
func (p *parser) expand(t token) (string, error) {
	switch t.kind {
	case tokIRI:
		return t.text, nil
	case tokQName:
		idx := strings.IndexByte(t.text, ':')
		prefix, local := t.text[:idx], t.text[idx+1:]
		base, ok := p.prefixes[prefix]
		if !ok {
			return "", p.errf("unknown prefix %q", prefix)
		}
		return base + local, nil
	default:
		return t.text, nil
	}
}

func (p *parser) parseDocument() ([]Mapping, error) {
	var mappings []Mapping
	for p.cur().kind != tokEOF {
		if p.cur().kind == tokWord && p.cur().text == "@prefix" {
			if err := p.parsePrefixDecl(); err != nil {
				return nil, err
			}
			continue
		}
		m, err := p.parseTriplesMap()
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func (p *parser) parsePrefixDecl() error {
	p.advance() // @prefix
	if p.cur().kind != tokQName && !(p.cur().kind == tokWord) {
		return p.errf("expected prefix name after @prefix")
	}
	name := strings.TrimSuffix(p.cur().text, ":")
	p.advance()
	if p.cur().kind != tokIRI {
		return p.errf("expected IRI in @prefix declaration")
	}
	p.prefixes[name] = p.cur().text
	p.advance()
	return p.expectPunct(".")
}

// parseTriplesMap parses one top-level statement: a subject IRI (the
// triples-map id) followed by `a rr:TriplesMap ;` and a semicolon-separated
// list of predicate/object pairs, terminated by `.`.
func (p *parser) parseTriplesMap() (Mapping, error) {
	subjTok := p.cur()
	tmID, err := p.expand(subjTok)
	if err != nil {
		return Mapping{}, err
	}
	p.advance()

	m := Mapping{TriplesMapID: tmID, Predicates: map[string]ObjectMap{}}

	if p.cur().kind != tokWord || p.cur().text != "a" {
		return Mapping{}, p.errf("expected 'a rr:TriplesMap'")
	}
	p.advance()
	typeIRI, err := p.expand(p.cur())
	if err != nil {
		return Mapping{}, err
	}
	if !strings.HasSuffix(typeIRI, "TriplesMap") {
		return Mapping{}, p.errf("expected rr:TriplesMap, got %s", typeIRI)
	}
	p.advance()

	for {
		if p.cur().kind != tokPunct || p.cur().text != ";" {
			break
		}
		p.advance()
		predIRI, err := p.expand(p.cur())
		if err != nil {
			return Mapping{}, err
		}
		p.advance()

		switch {
		case strings.HasSuffix(predIRI, "logicalTable"):
			table, err := p.parseLogicalTable()
			if err != nil {
				return Mapping{}, err
			}
			m.Table = table
		case strings.HasSuffix(predIRI, "subjectMap"):
			tmpl, class, err := p.parseSubjectMap()
			if err != nil {
				return Mapping{}, err
			}
			m.SubjectTemplate, m.SubjectClass = tmpl, class
		case strings.HasSuffix(predIRI, "predicateObjectMap"):
			predIRIOut, om, err := p.parsePredicateObjectMap()
			if err != nil {
				return Mapping{}, err
			}
			m.Predicates[predIRIOut] = om
		default:
			return Mapping{}, p.errf("unexpected predicate %s on TriplesMap", predIRI)
		}
	}

	if err := p.expectPunct("."); err != nil {
		return Mapping{}, err
	}
	if m.Table == "" {
		return Mapping{}, p.errf("TriplesMap %s is missing rr:logicalTable/rr:tableName", tmID)
	}
	if m.SubjectTemplate == "" {
		return Mapping{}, p.errf("TriplesMap %s is missing rr:subjectMap/rr:template", tmID)
	}
	return m, nil
}

func (p *parser) parseBlankNodeProperties(handle func(predIRI string) error) error {
	if err := p.expectPunct("["); err != nil {
		return err
	}
	for p.cur().kind != tokPunct || p.cur().text != "]" {
		predIRI, err := p.expand(p.cur())
		if err != nil {
			return err
		}
		p.advance()
		if err := handle(predIRI); err != nil {
			return err
		}
		if p.cur().kind == tokPunct && p.cur().text == ";" {
			p.advance()
			continue
		}
		break
	}
	return p.expectPunct("]")
}

func (p *parser) parseLogicalTable() (string, error) {
	var table string
	err := p.parseBlankNodeProperties(func(predIRI string) error {
		if !strings.HasSuffix(predIRI, "tableName") {
			return p.errf("unexpected predicate %s in logicalTable", predIRI)
		}
		if p.cur().kind != tokString {
			return p.errf("rr:tableName expects a string literal")
		}
		table = p.cur().text
		p.advance()
		return nil
	})
	return table, err
}

func (p *parser) parseSubjectMap() (template, class string, err error) {
	err = p.parseBlankNodeProperties(func(predIRI string) error {
		switch {
		case strings.HasSuffix(predIRI, "template"):
			if p.cur().kind != tokString {
				return p.errf("rr:template expects a string literal")
			}
			template = p.cur().text
			p.advance()
		case strings.HasSuffix(predIRI, "class"):
			c, e := p.expand(p.cur())
			if e != nil {
				return e
			}
			class = c
			p.advance()
		default:
			return p.errf("unexpected predicate %s in subjectMap", predIRI)
		}
		return nil
	})
	return template, class, err
}

func (p *parser) parsePredicateObjectMap() (predIRI string, om ObjectMap, err error) {
	err = p.parseBlankNodeProperties(func(inner string) error {
		switch {
		case strings.HasSuffix(inner, "predicate"):
			iri, e := p.expand(p.cur())
			if e != nil {
				return e
			}
			predIRI = iri
			p.advance()
		case strings.HasSuffix(inner, "objectMap"):
			parsed, e := p.parseObjectMap()
			if e != nil {
				return e
			}
			om = parsed
		default:
			return p.errf("unexpected predicate %s in predicateObjectMap", inner)
		}
		return nil
	})
	if err != nil {
		return "", ObjectMap{}, err
	}
	if predIRI == "" {
		return "", ObjectMap{}, p.errf("predicateObjectMap is missing rr:predicate")
	}
	return predIRI, om, nil
}

func (p *parser) parseObjectMap() (ObjectMap, error) {
	var om ObjectMap
	var haveColumn, haveRef bool

	err := p.parseBlankNodeProperties(func(predIRI string) error {
		switch {
		case strings.HasSuffix(predIRI, "column"):
			if p.cur().kind != tokString {
				return p.errf("rr:column expects a string literal")
			}
			om.Kind = ObjectMapColumn
			om.Column = p.cur().text
			haveColumn = true
			p.advance()
		case strings.HasSuffix(predIRI, "datatype"):
			dt, e := p.expand(p.cur())
			if e != nil {
				return e
			}
			om.Datatype = dt
			p.advance()
		case strings.HasSuffix(predIRI, "parentTriplesMap"):
			ptm, e := p.expand(p.cur())
			if e != nil {
				return e
			}
			om.Kind = ObjectMapRef
			om.ParentTriplesMap = ptm
			haveRef = true
			p.advance()
		case strings.HasSuffix(predIRI, "joinCondition"):
			jc, e := p.parseJoinCondition()
			if e != nil {
				return e
			}
			om.JoinConditions = append(om.JoinConditions, jc)
		default:
			return p.errf("unexpected predicate %s in objectMap", predIRI)
		}
		return nil
	})
	if err != nil {
		return ObjectMap{}, err
	}
	if haveColumn == haveRef {
		return ObjectMap{}, p.errf("objectMap must set exactly one of rr:column or rr:parentTriplesMap")
	}
	return om, nil
}

func (p *parser) parseJoinCondition() (JoinCondition, error) {
	var jc JoinCondition
	err := p.parseBlankNodeProperties(func(predIRI string) error {
		switch {
		case strings.HasSuffix(predIRI, "child"):
			if p.cur().kind != tokString {
				return p.errf("rr:child expects a string literal")
			}
			jc.Child = p.cur().text
			p.advance()
		case strings.HasSuffix(predIRI, "parent"):
			if p.cur().kind != tokString {
				return p.errf("rr:parent expects a string literal")
			}
			jc.Parent = p.cur().text
			p.advance()
		default:
			return p.errf("unexpected predicate %s in joinCondition", predIRI)
		}
		return nil
	})
	if err != nil {
		return JoinCondition{}, err
	}
	if jc.Child == "" || jc.Parent == "" {
		return JoinCondition{}, p.errf("joinCondition requires both rr:child and rr:parent")
	}
	return jc, nil
}
