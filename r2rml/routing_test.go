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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRoutingIndexFromSampleDocument(t *testing.T) {
	mappings, err := Parse(sampleDoc)
	require.NoError(t, err)

	idx, err := BuildRoutingIndex(mappings)
	require.NoError(t, err)

	table, ok := idx.TableFor("#AirlineMap")
	require.True(t, ok)
	assert.Equal(t, "airlines", table)

	routes := idx.RoutesFor("http://example.org/schema#name")
	require.Len(t, routes, 2) // both TriplesMaps expose ex:name
	tables := []string{routes[0].Table, routes[1].Table}
	assert.Contains(t, tables, "airlines")
	assert.Contains(t, tables, "countries")

	countryRoutes := idx.RoutesFor("http://example.org/schema#country")
	require.Len(t, countryRoutes, 1)
	assert.Equal(t, ObjectMapRef, countryRoutes[0].ObjectMap.Kind)

	// Invariant: the index never routes a predicate to a mapping that does
	// not declare it.
	assert.Empty(t, idx.RoutesFor("http://example.org/schema#nonexistent"))
}

func TestBuildRoutingIndexRejectsDuplicateTriplesMapID(t *testing.T) {
	m := Mapping{
		TriplesMapID:    "#Dup",
		Table:           "t1",
		SubjectTemplate: "http://ex.org/{id}",
		Predicates:      map[string]ObjectMap{},
	}
	_, err := BuildRoutingIndex([]Mapping{m, m})
	assert.Error(t, err)
}

func TestBuildRoutingIndexRejectsReferenceWithoutJoinCondition(t *testing.T) {
	m := Mapping{
		TriplesMapID:    "#Bad",
		Table:           "t1",
		SubjectTemplate: "http://ex.org/{id}",
		Predicates: map[string]ObjectMap{
			"http://ex.org/p": {Kind: ObjectMapRef, ParentTriplesMap: "#Other"},
		},
	}
	_, err := BuildRoutingIndex([]Mapping{m})
	assert.Error(t, err)
}
