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

import "github.com/arrowarc/icebergraph/vgerr"

// PredicateRoute is one candidate mapping for a predicate IRI: the mapping
// itself plus a shortcut to its ObjectMap for that predicate.
type PredicateRoute struct {
	TriplesMapID string
	Table        string
	ObjectMap    ObjectMap
}

// RoutingIndex precomputes the lookups a planner needs:
// predicate IRI -> candidate mappings, triples-map id -> table name.
type RoutingIndex struct {
	byPredicate map[string][]PredicateRoute
	tmToTable   map[string]string
	mappings    map[string]Mapping // by triples_map_id
}

// BuildRoutingIndex derives a RoutingIndex from a parsed mapping set. The
// index never routes a predicate IRI to a table whose mapping does not
// list that IRI, since every route is built directly from the mapping's
// own Predicates map.
func BuildRoutingIndex(mappings []Mapping) (*RoutingIndex, error) {
	idx := &RoutingIndex{
		byPredicate: map[string][]PredicateRoute{},
		tmToTable:   map[string]string{},
		mappings:    map[string]Mapping{},
	}
	for _, m := range mappings {
		if m.TriplesMapID == "" {
			return nil, vgerr.New(vgerr.SchemaError, "mapping is missing a triples_map_id")
		}
		if _, dup := idx.mappings[m.TriplesMapID]; dup {
			return nil, vgerr.New(vgerr.SchemaError, "duplicate triples_map_id "+m.TriplesMapID)
		}
		idx.mappings[m.TriplesMapID] = m
		idx.tmToTable[m.TriplesMapID] = m.Table

		for predIRI, om := range m.Predicates {
			if om.Kind == ObjectMapRef {
				if len(om.JoinConditions) == 0 {
					return nil, vgerr.New(vgerr.SchemaError, "reference objectMap on "+m.TriplesMapID+" has no join conditions").
						WithContext("predicate", predIRI)
				}
			}
			idx.byPredicate[predIRI] = append(idx.byPredicate[predIRI], PredicateRoute{
				TriplesMapID: m.TriplesMapID,
				Table:        m.Table,
				ObjectMap:    om,
			})
		}
	}
	return idx, nil
}

// RoutesFor returns every mapping that declares predIRI, in the order the
// mappings were supplied to BuildRoutingIndex.
func (idx *RoutingIndex) RoutesFor(predIRI string) []PredicateRoute {
	return idx.byPredicate[predIRI]
}

// TableFor resolves a triples_map_id to its backing table name.
func (idx *RoutingIndex) TableFor(triplesMapID string) (string, bool) {
	t, ok := idx.tmToTable[triplesMapID]
	return t, ok
}

// Mapping returns the full Mapping for a triples_map_id.
func (idx *RoutingIndex) Mapping(triplesMapID string) (Mapping, bool) {
	m, ok := idx.mappings[triplesMapID]
	return m, ok
}

// Mappings returns every mapping known to the index, keyed by triples_map_id,
// for callers that need to enumerate tables touched by a mapping set.
func (idx *RoutingIndex) Mappings() map[string]Mapping {
	return idx.mappings
}
