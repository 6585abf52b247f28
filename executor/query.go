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

// Package executor is the top-level query engine: it takes a set of triple
// patterns from the SPARQL front end, routes them through an
// r2rml.RoutingIndex into plan.PatternGroups, compiles and runs a
// plan.Plan, and converts the final batches into Solution bindings.
package executor

import (
	"context"
	"sort"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/config"
	"github.com/arrowarc/icebergraph/icebergsrc"
	"github.com/arrowarc/icebergraph/joingraph"
	"github.com/arrowarc/icebergraph/plan"
	"github.com/arrowarc/icebergraph/r2rml"
	"github.com/arrowarc/icebergraph/stats"
	"github.com/arrowarc/icebergraph/vgerr"
)

// TermKind tags which field of Term is meaningful.
type TermKind int

const (
	TermVariable TermKind = iota
	TermIRI
	TermLiteral
)

// Term is one position of a TriplePattern.
type Term struct {
	Kind     TermKind
	Variable string
	IRI      string
	Literal  arrowbatch.Value
	Datatype string
}

// Var builds a variable term.
func Var(name string) Term { return Term{Kind: TermVariable, Variable: name} }

// IRITerm builds a constant-IRI term.
func IRITerm(iri string) Term { return Term{Kind: TermIRI, IRI: iri} }

// LiteralTerm builds a constant-literal term.
func LiteralTerm(v arrowbatch.Value) Term { return Term{Kind: TermLiteral, Literal: v} }

// TriplePattern is one graph-query clause. Optional marks a SPARQL
// OPTIONAL clause, threaded to plan.PatternGroup.Optional.
type TriplePattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Optional  bool
}

// Options carries a query's limit and snapshot selection.
type Options struct {
	Limit      *uint64
	SnapshotID *int64
	AsOfTime   *time.Time
}

// Engine executes a set of triple patterns against an R2RML-mapped Iceberg
// warehouse, pulling from a compiled operator tree until it is exhausted.
// Config supplies the planning policies: AllowCartesianJoins gates
// cross-product steps for disconnected join graphs, RejectUnknownPreds
// turns unrouted predicate IRIs and unrecognized predicate operators into
// errors instead of warnings/pass-through.
type Engine struct {
	Routing      *r2rml.RoutingIndex
	Graph        *joingraph.JoinGraph
	Sources      map[string]*icebergsrc.TableSource
	StatsByTable map[string]stats.TableStats
	Config       config.EngineConfig
	Logger       log.Logger
}

// NewEngine constructs an Engine with default config and a no-op logger.
func NewEngine(routing *r2rml.RoutingIndex, graph *joingraph.JoinGraph, sources map[string]*icebergsrc.TableSource, statsByTable map[string]stats.TableStats) *Engine {
	return &Engine{
		Routing:      routing,
		Graph:        graph,
		Sources:      sources,
		StatsByTable: statsByTable,
		Config:       config.Default(),
		Logger:       log.NewNopLogger(),
	}
}

// Query runs patterns to completion and returns every solution. The
// query-level Limit is applied only after every join completes; per-scan
// limits are never pushed below a join, where they could drop needed rows.
func (e *Engine) Query(ctx context.Context, patterns []TriplePattern, opts Options) ([]Solution, error) {
	queryID := uuid.NewString()
	logger := e.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	level.Debug(logger).Log("msg", "query started", "query_id", queryID, "patterns", len(patterns))

	groups, bindings, err := e.plan(patterns)
	if err != nil {
		level.Error(logger).Log("msg", "query planning failed", "query_id", queryID, "err", err)
		return nil, err
	}

	compiler := &plan.PlanCompiler{
		Sources:          e.Sources,
		JoinGraph:        e.Graph,
		StatsByTable:     e.StatsByTable,
		AllowCartesian:   e.Config.AllowCartesianJoins,
		RejectUnknownOps: e.Config.RejectUnknownPreds,
	}
	compiled, err := compiler.Compile(groups, plan.TimeTravel{SnapshotID: opts.SnapshotID, AsOfTime: opts.AsOfTime}, plan.CompileOptions{OutputArrow: false})
	if err != nil {
		return nil, err
	}

	if err := compiled.Open(ctx); err != nil {
		return nil, err
	}
	defer compiled.Close()

	var out []Solution
	for {
		batch, err := compiled.NextBatch(ctx)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			break
		}
		rows, err := rowsOf(batch)
		batch.Release()
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			out = append(out, bindings.solve(row))
			if opts.Limit != nil && uint64(len(out)) >= *opts.Limit {
				level.Debug(logger).Log("msg", "query limit reached", "query_id", queryID, "rows", len(out))
				return out, nil
			}
		}
	}
	level.Debug(logger).Log("msg", "query complete", "query_id", queryID, "rows", len(out))
	return out, nil
}

// rowsOf normalizes a plan.Batch into row maps regardless of whether the
// producer emitted Arrow columns or row maps already. A bare Scan (no
// joins at all) always emits Arrow, so this boundary is where row-map
// conversion finally happens. The caller keeps ownership of the batch.
func rowsOf(b *plan.Batch) ([]arrowbatch.Row, error) {
	if b.Rows != nil {
		return b.Rows, nil
	}
	if b.Arrow == nil {
		return nil, nil
	}
	return arrowbatch.ToRows(b.Arrow)
}

// plan routes patterns into per-table plan.PatternGroups and records how to
// recover each query variable's Binding from a merged output row.
func (e *Engine) plan(patterns []TriplePattern) ([]plan.PatternGroup, *bindingPlan, error) {
	type groupAccum struct {
		table      string
		predicates []arrowbatch.Predicate
		columns    map[string]bool
		optional   bool
	}

	tables := map[string]*groupAccum{}
	bindings := newBindingPlan()
	order := []string{}

	touch := func(table string) *groupAccum {
		g, ok := tables[table]
		if !ok {
			g = &groupAccum{table: table, columns: map[string]bool{}}
			tables[table] = g
			order = append(order, table)
		}
		return g
	}

	for _, pat := range patterns {
		if pat.Predicate.Kind != TermIRI {
			return nil, nil, vgerr.New(vgerr.SchemaError, "executor: triple pattern predicate must be a constant IRI")
		}
		routes := e.Routing.RoutesFor(pat.Predicate.IRI)
		if len(routes) == 0 {
			if e.Config.RejectUnknownPreds {
				return nil, nil, vgerr.New(vgerr.SchemaError, "executor: predicate not routed by any mapping: "+pat.Predicate.IRI)
			}
			logger := e.Logger
			if logger == nil {
				logger = log.NewNopLogger()
			}
			level.Warn(logger).Log("msg", "skipping pattern with unrouted predicate", "predicate", pat.Predicate.IRI)
			continue
		}
		route := routes[0]
		mapping, ok := e.Routing.Mapping(route.TriplesMapID)
		if !ok {
			return nil, nil, vgerr.New(vgerr.SchemaError, "executor: routing index has no mapping for "+route.TriplesMapID)
		}
		g := touch(mapping.Table)
		if pat.Optional {
			g.optional = true
		}

		subjCols := r2rml.TemplateColumns(mapping.SubjectTemplate)
		for _, c := range subjCols {
			g.columns[c] = true
		}

		switch pat.Subject.Kind {
		case TermVariable:
			bindings.bindSubject(pat.Subject.Variable, mapping.Table, mapping.SubjectTemplate, subjCols)
		case TermIRI:
			vals, err := r2rml.ExtractSubjectValues(mapping.SubjectTemplate, pat.Subject.IRI)
			if err != nil {
				return nil, nil, err
			}
			for _, c := range subjCols {
				g.predicates = append(g.predicates, arrowbatch.Eq(c, arrowbatch.String(vals[c])))
			}
		default:
			return nil, nil, vgerr.New(vgerr.SchemaError, "executor: subject position cannot be a literal")
		}

		switch route.ObjectMap.Kind {
		case r2rml.ObjectMapColumn:
			col := route.ObjectMap.Column
			g.columns[col] = true
			switch pat.Object.Kind {
			case TermVariable:
				bindings.bindColumn(pat.Object.Variable, mapping.Table, col, route.ObjectMap.Datatype)
			case TermLiteral:
				g.predicates = append(g.predicates, arrowbatch.Eq(col, pat.Object.Literal))
			case TermIRI:
				return nil, nil, vgerr.New(vgerr.SchemaError, "executor: object position of a column-typed predicate cannot be a constant IRI")
			}

		case r2rml.ObjectMapRef:
			parentTable, ok := e.Routing.TableFor(route.ObjectMap.ParentTriplesMap)
			if !ok {
				return nil, nil, vgerr.New(vgerr.SchemaError, "executor: dangling parentTriplesMap "+route.ObjectMap.ParentTriplesMap)
			}
			parentMapping, _ := e.Routing.Mapping(route.ObjectMap.ParentTriplesMap)
			pg := touch(parentTable)
			parentSubjCols := r2rml.TemplateColumns(parentMapping.SubjectTemplate)
			for _, c := range parentSubjCols {
				pg.columns[c] = true
			}
			for _, jc := range route.ObjectMap.JoinConditions {
				g.columns[jc.Child] = true
				pg.columns[jc.Parent] = true
			}

			switch pat.Object.Kind {
			case TermVariable:
				bindings.bindSubject(pat.Object.Variable, parentTable, parentMapping.SubjectTemplate, parentSubjCols)
			case TermIRI:
				vals, err := r2rml.ExtractSubjectValues(parentMapping.SubjectTemplate, pat.Object.IRI)
				if err != nil {
					return nil, nil, err
				}
				for _, c := range parentSubjCols {
					pg.predicates = append(pg.predicates, arrowbatch.Eq(c, arrowbatch.String(vals[c])))
				}
			case TermLiteral:
				return nil, nil, vgerr.New(vgerr.SchemaError, "executor: object position of a reference predicate cannot be a literal")
			}
		}
	}

	groups := make([]plan.PatternGroup, 0, len(order))
	for _, t := range order {
		g := tables[t]
		cols := make([]string, 0, len(g.columns))
		for c := range g.columns {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		groups = append(groups, plan.PatternGroup{
			Table:      g.table,
			Predicates: g.predicates,
			Columns:    cols,
			Optional:   g.optional,
		})
	}
	return groups, bindings, nil
}
