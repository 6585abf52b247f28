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

package plan

import (
	"time"

	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/icebergsrc"
	"github.com/arrowarc/icebergraph/joingraph"
	"github.com/arrowarc/icebergraph/stats"
	"github.com/arrowarc/icebergraph/vgerr"
)

// PatternGroup bundles every triple pattern touching a single table: its
// pushed-down predicates, the extra columns a pattern or its subject
// template needs beyond what predicates already reference, and whether the
// group is introduced via an OPTIONAL (SPARQL) clause.
type PatternGroup struct {
	Table      string
	Predicates []arrowbatch.Predicate
	Columns    []string
	Optional   bool
}

// TimeTravel carries a query's snapshot selection through to every Scan.
type TimeTravel struct {
	SnapshotID *int64
	AsOfTime   *time.Time
}

// CompileOptions controls how the compiled tree emits its final batches.
type CompileOptions struct {
	OutputArrow   bool
	CopyBatches   bool
	OutputColumns []string
}

// PlanCompiler turns a join order over a set of PatternGroups into an
// operator tree. AllowCartesian permits a cross-product step for a table
// with no join path to the rest of the query; the default refuses it.
// RejectUnknownOps makes scans error on an unrecognized predicate operator.
type PlanCompiler struct {
	Sources          map[string]*icebergsrc.TableSource
	JoinGraph        *joingraph.JoinGraph
	StatsByTable     map[string]stats.TableStats
	AllowCartesian   bool
	RejectUnknownOps bool
}

// Compile pushes projections and predicates into per-table scans, orders
// the joins, and folds the ordered tables into a chain of hash joins.
func (c *PlanCompiler) Compile(groups []PatternGroup, tt TimeTravel, opts CompileOptions) (Plan, error) {
	if len(groups) == 0 {
		return nil, vgerr.New(vgerr.PlanningError, "plan compiler: no pattern groups to compile")
	}

	byTable := make(map[string]PatternGroup, len(groups))
	tables := make([]string, 0, len(groups))
	predicatesByTable := make(map[string][]arrowbatch.Predicate, len(groups))
	for _, g := range groups {
		if _, dup := byTable[g.Table]; dup {
			return nil, vgerr.New(vgerr.PlanningError, "plan compiler: duplicate pattern group for table "+g.Table)
		}
		byTable[g.Table] = g
		tables = append(tables, g.Table)
		predicatesByTable[g.Table] = g.Predicates
	}

	// Step 1: projection pushdown — union of predicate columns, explicit
	// pattern/subject-template columns, and join-key columns for edges
	// between tables actually referenced by this query.
	tableSet := make(map[string]bool, len(tables))
	for _, t := range tables {
		tableSet[t] = true
	}
	columnsByTable := make(map[string][]string, len(tables))
	for _, t := range tables {
		columnsByTable[t] = neededColumns(t, byTable[t], tableSet, c.JoinGraph)
	}

	// Step 2: join order.
	order := joingraph.OrderJoins(c.JoinGraph, tables, c.StatsByTable, predicatesByTable)
	if len(order) == 0 {
		return nil, vgerr.New(vgerr.PlanningError, "plan compiler: join ordering produced no steps")
	}
	if !c.AllowCartesian {
		for _, step := range order[1:] {
			if step.IsCartesian {
				return nil, vgerr.New(vgerr.PlanningError, "plan compiler: disconnected join graph, no join path to table "+step.Table)
			}
		}
	}

	// Step 3: leftmost scan.
	seed := order[0]
	seedScan, err := c.buildScan(seed.Table, byTable[seed.Table], columnsByTable[seed.Table], tt, seed.EstimatedRows)
	if err != nil {
		return nil, err
	}
	var current Plan = seedScan

	// Step 4: fold in each subsequent table as a HashJoin.
	for _, step := range order[1:] {
		if step.Edge == nil && !step.IsCartesian {
			return nil, vgerr.New(vgerr.PlanningError, "plan compiler: join step for "+step.Table+" has no edge")
		}
		group := byTable[step.Table]
		scan, err := c.buildScan(step.Table, group, columnsByTable[step.Table], tt, step.EstimatedRows)
		if err != nil {
			return nil, err
		}

		var newTableKeys, currentKeys []string
		if step.Edge != nil {
			newTableKeys, currentKeys = edgeKeysForSides(*step.Edge, step.Table)
		}

		buildLeft := joingraph.BuildVsProbe(current.EstimatedRows(), scan.EstimatedRows())
		if group.Optional {
			// The required side must survive unmatched, so it probes and the
			// optional table builds regardless of size.
			buildLeft = false
		}
		isLast := step.Table == order[len(order)-1].Table
		outputArrow := opts.OutputArrow || !isLast
		var outputColumns []string
		if isLast {
			outputColumns = opts.OutputColumns
		}

		join := &HashJoin{
			LeftOuter:     group.Optional,
			OutputArrow:   outputArrow,
			OutputColumns: outputColumns,
			EstRows:       step.EstimatedRows,
		}
		if buildLeft {
			join.Build, join.Probe = current, scan
			join.BuildKeys, join.ProbeKeys = currentKeys, newTableKeys
		} else {
			join.Build, join.Probe = scan, current
			join.BuildKeys, join.ProbeKeys = newTableKeys, currentKeys
		}
		current = join
	}

	return current, nil
}

func (c *PlanCompiler) buildScan(table string, group PatternGroup, columns []string, tt TimeTravel, estRows uint64) (*Scan, error) {
	src, ok := c.Sources[table]
	if !ok {
		return nil, vgerr.New(vgerr.SchemaError, "plan compiler: no TableSource registered for table "+table)
	}
	return &Scan{
		Source: src,
		Opts: icebergsrc.ScanOptions{
			Columns:          columns,
			Predicates:       group.Predicates,
			SnapshotID:       tt.SnapshotID,
			AsOfTime:         tt.AsOfTime,
			RejectUnknownOps: c.RejectUnknownOps,
		},
		EstRows: estRows,
	}, nil
}

// neededColumns computes the projection-pushdown column set for one table.
func neededColumns(table string, group PatternGroup, tableSet map[string]bool, g *joingraph.JoinGraph) []string {
	seen := map[string]bool{}
	var out []string
	add := func(col string) {
		if col != "" && !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
	}

	for _, p := range group.Predicates {
		for _, col := range predicateColumns(p) {
			add(col)
		}
	}
	for _, col := range group.Columns {
		add(col)
	}
	for _, e := range g.ByTable[table] {
		other := e.ChildTable
		if other == table {
			other = e.ParentTable
		}
		if !tableSet[other] {
			continue
		}
		for _, pair := range e.Columns {
			if e.ChildTable == table {
				add(pair.Child)
			} else {
				add(pair.Parent)
			}
		}
	}
	return out
}

func predicateColumns(p arrowbatch.Predicate) []string {
	if len(p.Children) > 0 {
		var out []string
		for _, child := range p.Children {
			out = append(out, predicateColumns(child)...)
		}
		return out
	}
	if p.Column == "" {
		return nil
	}
	return []string{p.Column}
}

// edgeKeysForSides splits an edge's composite key columns into the side
// belonging to newTable (probe, pending BuildVsProbe's final call) and the
// other side (build).
func edgeKeysForSides(e joingraph.JoinEdge, newTable string) (newTableKeys, otherKeys []string) {
	newTableKeys = make([]string, len(e.Columns))
	otherKeys = make([]string, len(e.Columns))
	for i, pair := range e.Columns {
		if e.ChildTable == newTable {
			newTableKeys[i] = pair.Child
			otherKeys[i] = pair.Parent
		} else {
			newTableKeys[i] = pair.Parent
			otherKeys[i] = pair.Child
		}
	}
	return newTableKeys, otherKeys
}
