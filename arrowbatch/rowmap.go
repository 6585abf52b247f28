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

package arrowbatch

import "github.com/apache/arrow-go/v18/arrow"

// Row is one record-boundary row map, produced only at the executor
// boundary; everything below it stays columnar.
type Row map[string]Value

// ToRows converts every row of batch into a Row map.
func ToRows(batch arrow.Record) ([]Row, error) {
	fields := batch.Schema().Fields()
	rows := make([]Row, batch.NumRows())

	for r := 0; r < int(batch.NumRows()); r++ {
		row := make(Row, len(fields))
		for c, f := range fields {
			col := batch.Column(c)
			if col.IsNull(r) {
				row[f.Name] = Null()
				continue
			}
			v, err := valueAt(f.Name, col, r)
			if err != nil {
				return nil, err
			}
			row[f.Name] = v
		}
		rows[r] = row
	}
	return rows, nil
}
