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
	"context"

	"github.com/arrowarc/icebergraph/icebergsrc"
)

// Scan wraps a TableSource scan. EstRows is supplied by
// the compiler, which already has stats + selectivity available via
// joingraph; Scan itself stays free of any stats-package dependency.
type Scan struct {
	Source  *icebergsrc.TableSource
	Opts    icebergsrc.ScanOptions
	EstRows uint64
	it      *icebergsrc.BatchIterator
}

func (s *Scan) Open(ctx context.Context) error {
	it, err := s.Source.ScanArrowBatches(ctx, s.Opts)
	if err != nil {
		return err
	}
	s.it = it
	return nil
}

func (s *Scan) NextBatch(ctx context.Context) (*Batch, error) {
	rec, ok, err := s.it.Next(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &Batch{Arrow: rec}, nil
}

func (s *Scan) Close() error {
	if s.it == nil {
		return nil
	}
	return s.it.Close()
}

func (s *Scan) EstimatedRows() uint64 {
	if s.EstRows == 0 {
		return unknownEstimatedRows
	}
	return s.EstRows
}

// Schema reflects the projected column set the scan actually emits, not the
// table's full schema.
func (s *Scan) Schema() icebergsrc.Schema {
	return projectSchema(s.Source.Schema(), s.Opts.Columns)
}

// projectSchema narrows full to the named columns, in projection order.
// Unknown names are dropped; the scan itself reports those as errors.
func projectSchema(full icebergsrc.Schema, columns []string) icebergsrc.Schema {
	if len(columns) == 0 {
		return full
	}
	byName := make(map[string]icebergsrc.Field, len(full.Fields))
	for _, f := range full.Fields {
		byName[f.Name] = f
	}
	out := icebergsrc.Schema{Partition: full.Partition}
	for _, name := range columns {
		if f, ok := byName[name]; ok {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}
