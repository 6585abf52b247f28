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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrowarc/icebergraph/r2rml"
)

func sampleRoutingIndex(t *testing.T) *r2rml.RoutingIndex {
	t.Helper()
	mappings, err := r2rml.Parse(`
@prefix rr: <http://www.w3.org/ns/r2rml#> .
@prefix ex: <http://example.org/schema#> .

<#AirlineMap> a rr:TriplesMap ;
  rr:logicalTable [ rr:tableName "airlines" ] ;
  rr:subjectMap [ rr:template "http://example.org/airline/{id}" ] ;
  rr:predicateObjectMap [
    rr:predicate ex:country ;
    rr:objectMap [
      rr:parentTriplesMap <#CountryMap> ;
      rr:joinCondition [ rr:child "country_id" ; rr:parent "id" ]
    ]
  ] .

<#CountryMap> a rr:TriplesMap ;
  rr:logicalTable [ rr:tableName "countries" ] ;
  rr:subjectMap [ rr:template "http://example.org/country/{id}" ] .
`)
	require.NoError(t, err)
	idx, err := r2rml.BuildRoutingIndex(mappings)
	require.NoError(t, err)
	return idx
}

func TestBuildJoinGraph(t *testing.T) {
	idx := sampleRoutingIndex(t)
	g := BuildJoinGraph(idx)

	require.Len(t, g.Edges, 1)
	e := g.Edges[0]
	assert.Equal(t, "airlines", e.ChildTable)
	assert.Equal(t, "countries", e.ParentTable)
	require.Len(t, e.Columns, 1)
	assert.Equal(t, "country_id", e.Columns[0].Child)
	assert.Equal(t, "id", e.Columns[0].Parent)

	// Every edge must be referenced from both endpoints.
	assert.Len(t, g.ByTable["airlines"], 1)
	assert.Len(t, g.ByTable["countries"], 1)

	neighbors := g.Neighbors("airlines")
	assert.True(t, neighbors["countries"])
}

func TestEdgesBetween(t *testing.T) {
	idx := sampleRoutingIndex(t)
	g := BuildJoinGraph(idx)

	edges := g.EdgesBetween("airlines", "countries")
	assert.Len(t, edges, 1)
	assert.Empty(t, g.EdgesBetween("airlines", "flights"))
}
