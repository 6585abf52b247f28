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

package joingraph

import (
	"github.com/arrowarc/icebergraph/arrowbatch"
	"github.com/arrowarc/icebergraph/stats"
)

// JoinStep is one step of the computed join sequence: the first step is a
// bare scan (Edge is nil), every subsequent step names the edge used to
// join the new table in.
type JoinStep struct {
	Table          string
	Edge           *JoinEdge // nil for the first (seed) step
	EstimatedRows  uint64
	IsCartesian    bool // true if no joinable table existed and this step is forced
}

// OrderJoins computes a greedy join order over the set of tables, given the
// join graph, per-table stats, and per-table predicates.
func OrderJoins(g *JoinGraph, tables []string, statsByTable map[string]stats.TableStats, predicatesByTable map[string][]arrowbatch.Predicate) []JoinStep {
	if len(tables) == 0 {
		return nil
	}

	remaining := map[string]bool{}
	for _, t := range tables {
		remaining[t] = true
	}
	selected := make(map[string]uint64, len(tables))
	for _, t := range tables {
		selected[t] = SelectedRows(statsByTable[t], predicatesByTable[t])
	}

	// Step 1: smallest selected-rows table that also participates in at
	// least one join edge with another table in the set.
	seed := smallestJoinable(tables, remaining, selected, g)
	steps := []JoinStep{{Table: seed, EstimatedRows: selected[seed]}}
	delete(remaining, seed)
	runningRows := selected[seed]
	chosen := []string{seed}

	for len(remaining) > 0 {
		next, edge, est, isCartesian := bestNext(chosen, remaining, selected, statsByTable, g, runningRows)
		steps = append(steps, JoinStep{
			Table:         next,
			Edge:          edge,
			EstimatedRows: est,
			IsCartesian:   isCartesian,
		})
		delete(remaining, next)
		chosen = append(chosen, next)
		runningRows = est
	}
	return steps
}

func smallestJoinable(tables []string, remaining map[string]bool, selected map[string]uint64, g *JoinGraph) string {
	var best string
	var bestRows uint64
	found := false
	for _, t := range tables {
		if len(g.Neighbors(t)) == 0 {
			continue
		}
		if !found || selected[t] < bestRows {
			best, bestRows, found = t, selected[t], true
		}
	}
	if found {
		return best
	}
	// No table participates in any edge; fall back to the globally smallest.
	found = false
	for _, t := range tables {
		if !found || selected[t] < bestRows {
			best, bestRows, found = t, selected[t], true
		}
	}
	return best
}

// bestNext prefers a joinable table minimizing estimated join cardinality
// (tie-break smaller
// selected-rows); if none is joinable, take the smallest remaining and flag
// the step as a forced Cartesian product.
func bestNext(chosen []string, remaining map[string]bool, selected map[string]uint64, statsByTable map[string]stats.TableStats, g *JoinGraph, runningRows uint64) (table string, edge *JoinEdge, estRows uint64, isCartesian bool) {
	chosenSet := map[string]bool{}
	for _, c := range chosen {
		chosenSet[c] = true
	}

	var bestTable string
	var bestEdge *JoinEdge
	var bestEst uint64
	found := false

	for t := range remaining {
		e := firstEdgeToChosen(g, t, chosenSet)
		if e == nil {
			continue
		}
		est := estimateJoinWithEdge(runningRows, *e, t, statsByTable)
		if !found || est < bestEst || (est == bestEst && selected[t] < selected[bestTable]) {
			bestTable, bestEdge, bestEst, found = t, e, est, true
		}
	}
	if found {
		return bestTable, bestEdge, bestEst, false
	}

	// No joinable table: forced Cartesian step, pick smallest remaining.
	var smallest string
	first := true
	for t := range remaining {
		if first || selected[t] < selected[smallest] {
			smallest, first = t, false
		}
	}
	return smallest, nil, runningRows * selected[smallest], true
}

func firstEdgeToChosen(g *JoinGraph, table string, chosenSet map[string]bool) *JoinEdge {
	for _, e := range g.ByTable[table] {
		other := e.ChildTable
		if other == table {
			other = e.ParentTable
		}
		if chosenSet[other] {
			edge := e
			return &edge
		}
	}
	return nil
}

func estimateJoinWithEdge(runningRows uint64, e JoinEdge, newTable string, statsByTable map[string]stats.TableStats) uint64 {
	newStats := statsByTable[newTable]
	if len(e.Columns) == 0 {
		return EstimateJoinRows(runningRows, 1, newStats.RowCount, 1)
	}
	col := e.Columns[0]
	joinCol := col.Child
	if e.ParentTable == newTable {
		joinCol = col.Parent
	}
	return EstimateJoinRows(runningRows, runningRows, newStats.RowCount, newStats.NDV(joinCol))
}

// BuildVsProbe reports which side builds the hash table: the smaller
// estimated side builds, the larger probes.
func BuildVsProbe(leftRows, rightRows uint64) (buildIsLeft bool) {
	return leftRows <= rightRows
}
