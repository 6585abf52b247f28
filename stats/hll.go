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

package stats

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/arrowarc/icebergraph/vgerr"
)

// hllPrecision fixes the register count at 2^14 = 16384, a common
// precision/accuracy tradeoff for an NDV estimator over Iceberg-scale
// columns.
const hllPrecision = 14
const hllRegisters = 1 << hllPrecision

// HLL is a register-based HyperLogLog sketch, hashed with xxhash, the same
// hash the block cache keys use.
type HLL struct {
	registers [hllRegisters]uint8
}

// NewHLL returns an empty sketch.
func NewHLL() *HLL { return &HLL{} }

// Add folds one value's hash into the sketch.
func (h *HLL) Add(value string) {
	hash := xxhash.Sum64String(value)
	idx := hash >> (64 - hllPrecision)
	rest := hash << hllPrecision
	rank := uint8(bits.LeadingZeros64(rest)) + 1
	if rank > h.registers[idx] {
		h.registers[idx] = rank
	}
}

// Estimate returns the estimated distinct-value count, using the standard
// HyperLogLog bias-corrected harmonic mean estimator.
func (h *HLL) Estimate() uint64 {
	sum := 0.0
	zeros := 0
	for _, r := range h.registers {
		sum += 1.0 / math.Pow(2, float64(r))
		if r == 0 {
			zeros++
		}
	}
	alpha := 0.7213 / (1 + 1.079/hllRegisters)
	raw := alpha * hllRegisters * hllRegisters / sum

	if raw <= 2.5*hllRegisters && zeros > 0 {
		return uint64(hllRegisters * math.Log(float64(hllRegisters)/float64(zeros)))
	}
	return uint64(raw)
}

// hllMagic tags the on-disk sketch format.
const hllMagic = "HLL1"

// SketchPath builds the persisted sketch location:
// <ledger>/stats-sketches/{values|subjects}/<ns>_<name>_<t>.hll.
func SketchPath(ledgerRoot, kind, namespace, name string, t int64) string {
	return fmt.Sprintf("%s/stats-sketches/%s/%s_%s_%d.hll", ledgerRoot, kind, namespace, name, t)
}

// Save writes the sketch to path, truncating any existing file.
func (h *HLL) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return vgerr.Wrap(vgerr.IOError, "save hll sketch "+path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(hllMagic); err != nil {
		return vgerr.Wrap(vgerr.IOError, "save hll sketch "+path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, h.registers[:]); err != nil {
		return vgerr.Wrap(vgerr.IOError, "save hll sketch "+path, err)
	}
	return w.Flush()
}

// LoadHLL reads a sketch previously written by Save. A missing or corrupt
// sketch is not an engine-level error: callers should treat a non-nil error
// here as "fall back to value_count/row_count", not abort the query.
func LoadHLL(path string) (*HLL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vgerr.Wrap(vgerr.IOError, "load hll sketch "+path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic := make([]byte, len(hllMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != hllMagic {
		return nil, vgerr.New(vgerr.IOError, "load hll sketch "+path+": bad magic")
	}
	h := &HLL{}
	if err := binary.Read(r, binary.LittleEndian, h.registers[:]); err != nil {
		return nil, vgerr.Wrap(vgerr.IOError, "load hll sketch "+path, err)
	}
	return h, nil
}
