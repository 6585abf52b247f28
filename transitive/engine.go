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

// Package transitive executes SPARQL-style transitive property paths
// (pred+, pred*) over R2RML-mapped Iceberg tables by BFS. It wraps
// icebergsrc's scan interface rather than the compiled plan tree,
// since a BFS frontier query is a simple single-table IN-predicate scan
// repeated across depth, not a join.
package transitive

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/icebergsrc"
	"github.com/arrowarc/icebergraph/r2rml"
	"github.com/arrowarc/icebergraph/vgerr"
)

// Kind distinguishes pred+ (OnePlus) from pred* (ZeroPlus).
type Kind int

const (
	OnePlus Kind = iota
	ZeroPlus
)

// DefaultDepthLimit caps BFS depth when the caller does not configure one.
const DefaultDepthLimit = 100

// Pattern is one transitive triple pattern: predicate IRI plus an optional
// bound subject or object IRI (nil means "free variable").
type Pattern struct {
	PredicateIRI string
	Subject      *string
	Object       *string
	Kind         Kind
}

// Pair is one (subject, object) IRI binding produced by a transitive scan.
type Pair struct {
	Subject string
	Object  string
}

// Source is the scan surface BFS needs from a table; *icebergsrc.TableSource
// satisfies it.
type Source interface {
	ScanRows(ctx context.Context, opts icebergsrc.ScanOptions) ([]arrowbatch.Row, error)
}

// Engine runs BFS over a single R2RML-mapped table per predicate. Each
// step queries the backing table for rows whose subject-ID column is in
// the current frontier, using the predicate's routed ObjectMap column as
// the edge target.
type Engine struct {
	Routing    *r2rml.RoutingIndex
	Sources    map[string]Source
	DepthLimit int
	Logger     log.Logger
}

// NewEngine constructs an Engine with DefaultDepthLimit and a no-op logger.
func NewEngine(routing *r2rml.RoutingIndex, sources map[string]Source) *Engine {
	return &Engine{
		Routing:    routing,
		Sources:    sources,
		DepthLimit: DefaultDepthLimit,
		Logger:     log.NewNopLogger(),
	}
}

type edgeShape struct {
	table        string
	subjectCol   string
	objectCol    string
	subjTemplate string
}

// resolveEdge finds the single-column-keyed column mapping for predIRI.
// Transitive paths only walk self-referential, single-column-subject
// mappings; a composite subject template cannot key a BFS frontier, so
// such mappings are skipped.
func (e *Engine) resolveEdge(predIRI string) (edgeShape, error) {
	routes := e.Routing.RoutesFor(predIRI)
	for _, route := range routes {
		if route.ObjectMap.Kind != r2rml.ObjectMapColumn {
			continue
		}
		mapping, ok := e.Routing.Mapping(route.TriplesMapID)
		if !ok {
			continue
		}
		subjCol, ok := r2rml.SingleTemplateColumn(mapping.SubjectTemplate)
		if !ok {
			continue
		}
		return edgeShape{
			table:        mapping.Table,
			subjectCol:   subjCol,
			objectCol:    route.ObjectMap.Column,
			subjTemplate: mapping.SubjectTemplate,
		}, nil
	}
	return edgeShape{}, vgerr.New(vgerr.SchemaError, "transitive: no column-typed, single-column-subject mapping routes predicate "+predIRI)
}

// Run dispatches a transitive pattern to the forward, backward, or
// enumerate-both case, applying a result limit when given.
func (e *Engine) Run(ctx context.Context, p Pattern, snapshotID *int64, limit uint64) ([]Pair, error) {
	edge, err := e.resolveEdge(p.PredicateIRI)
	if err != nil {
		return nil, err
	}
	src, ok := e.Sources[edge.table]
	if !ok {
		return nil, vgerr.New(vgerr.SchemaError, "transitive: no TableSource registered for table "+edge.table)
	}

	switch {
	case p.Subject != nil && p.Object == nil:
		objs, err := e.bfs(ctx, src, edge, snapshotID, *p.Subject, edge.subjectCol, edge.objectCol, p.Kind == ZeroPlus)
		if err != nil {
			return nil, err
		}
		return capPairs(subjectPairs(*p.Subject, objs), limit), nil

	case p.Subject == nil && p.Object != nil:
		subs, err := e.bfs(ctx, src, edge, snapshotID, *p.Object, edge.objectCol, edge.subjectCol, p.Kind == ZeroPlus)
		if err != nil {
			return nil, err
		}
		return capPairs(objectPairs(subs, *p.Object), limit), nil

	case p.Subject == nil && p.Object == nil:
		return e.enumerate(ctx, src, edge, snapshotID, p.Kind == ZeroPlus, limit)

	default:
		// Both bound: verify reachability rather than enumerating.
		if *p.Subject == *p.Object && p.Kind == ZeroPlus {
			return []Pair{{Subject: *p.Subject, Object: *p.Object}}, nil
		}
		objs, err := e.bfs(ctx, src, edge, snapshotID, *p.Subject, edge.subjectCol, edge.objectCol, false)
		if err != nil {
			return nil, err
		}
		for _, o := range objs {
			if o == *p.Object {
				return []Pair{{Subject: *p.Subject, Object: *p.Object}}, nil
			}
		}
		return nil, nil
	}
}

// bfs walks from startIRI, reading fromCol->toCol edges, and returns the
// set of reachable IRIs excluding the start. reflexive additionally
// includes the start in the result, the zero-step case of pred*.
func (e *Engine) bfs(ctx context.Context, src Source, edge edgeShape, snapshotID *int64, startIRI, fromCol, toCol string, reflexive bool) ([]string, error) {
	startVals, err := r2rml.ExtractSubjectValues(edge.subjTemplate, startIRI)
	if err != nil {
		return nil, err
	}
	startID := startVals[edge.subjectCol]

	visited := map[string]bool{startID: true}
	var results []string
	if reflexive {
		results = append(results, startIRI)
	}

	frontier := []string{startID}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= e.DepthLimit {
			level.Warn(e.Logger).Log("msg", "transitive path hit depth limit", "table", edge.table, "limit", e.DepthLimit)
			break
		}

		values := make([]arrowbatch.Value, len(frontier))
		for i, id := range frontier {
			values[i] = arrowbatch.String(id)
		}
		rows, err := src.ScanRows(ctx, icebergsrc.ScanOptions{
			Columns:     []string{fromCol, toCol},
			Predicates:  []arrowbatch.Predicate{arrowbatch.In(fromCol, values...)},
			SnapshotID:  snapshotID,
			CopyBatches: true,
		})
		if err != nil {
			return nil, err
		}

		var next []string
		for _, row := range rows {
			v, ok := row[toCol]
			if !ok || v.IsNull() {
				continue
			}
			id := v.String()
			if visited[id] {
				continue
			}
			visited[id] = true
			next = append(next, id)
			iri := r2rml.MaterializeSubject(edge.subjTemplate, map[string]string{edge.subjectCol: id})
			results = append(results, iri)
		}
		frontier = next
	}
	return results, nil
}

// enumerate handles the "both free" case: distinct starting subjects from
// the subject column, forward BFS from each, bounded by limit total pairs.
func (e *Engine) enumerate(ctx context.Context, src Source, edge edgeShape, snapshotID *int64, reflexive bool, limit uint64) ([]Pair, error) {
	rows, err := src.ScanRows(ctx, icebergsrc.ScanOptions{
		Columns:     []string{edge.subjectCol},
		SnapshotID:  snapshotID,
		CopyBatches: true,
	})
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []Pair
	for _, row := range rows {
		v, ok := row[edge.subjectCol]
		if !ok || v.IsNull() {
			continue
		}
		id := v.String()
		if seen[id] {
			continue
		}
		seen[id] = true

		startIRI := r2rml.MaterializeSubject(edge.subjTemplate, map[string]string{edge.subjectCol: id})
		objs, err := e.bfs(ctx, src, edge, snapshotID, startIRI, edge.subjectCol, edge.objectCol, reflexive)
		if err != nil {
			return nil, err
		}
		out = append(out, subjectPairs(startIRI, objs)...)
		if limit > 0 && uint64(len(out)) >= limit {
			return out[:limit], nil
		}
	}
	return out, nil
}

func subjectPairs(subject string, objects []string) []Pair {
	out := make([]Pair, len(objects))
	for i, o := range objects {
		out[i] = Pair{Subject: subject, Object: o}
	}
	return out
}

func objectPairs(subjects []string, object string) []Pair {
	out := make([]Pair, len(subjects))
	for i, s := range subjects {
		out[i] = Pair{Subject: s, Object: object}
	}
	return out
}

func capPairs(pairs []Pair, limit uint64) []Pair {
	if limit > 0 && uint64(len(pairs)) > limit {
		return pairs[:limit]
	}
	return pairs
}
