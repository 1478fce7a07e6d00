/*******************************************************************************
 * Copyright (c) 2025 Genome Research Ltd.
 *
 * Authors:
 *	- Sendu Bala <sb10@sanger.ac.uk>
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package selection

import (
	"math"
	"regexp"
	"strconv"

	"github.com/wtsi-hgi/enrich/seqlib"
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

var nonsenseRe = regexp.MustCompile(`p\.[A-Z][a-z][a-z](\d+)Ter`)

// countTimepoints counts every library, then builds a table per common key
// with a count.<t> column for each timepoint. Libraries at the same timepoint
// are summed. Only entities seen at timepoint 0 are kept; those missing at a
// later timepoint get a NaN count there.
func (s *Selection) countTimepoints() error {
	for _, lib := range s.libs {
		if err := lib.Calculate(); err != nil {
			return err
		}

		if err := lib.Dump(); err != nil {
			return err
		}
	}

	for _, key := range s.keys {
		t, err := s.combineCounts(key)
		if err != nil {
			return err
		}

		s.store.Put(key, t)
	}

	return nil
}

func (s *Selection) combineCounts(key string) (*table.Table, error) {
	sums := make(map[int]*table.Table, len(s.timepoints))

	for _, tp := range s.timepoints {
		sum, err := s.sumTimepoint(key, tp)
		if err != nil {
			return nil, err
		}

		sums[tp] = sum
	}

	ref := sums[types.ReferenceTimepoint]
	if ref.Len() == 0 {
		return nil, types.NewDataError(s.name, types.ErrEmptyTable)
	}

	t, err := table.New(key, ref.Index())
	if err != nil {
		return nil, types.NewDataError(s.name, err)
	}

	for _, tp := range s.timepoints {
		counts := make([]float64, t.Len())

		for i, id := range t.Index() {
			counts[i] = sums[tp].Value(id, table.ColCount)
		}

		if err := t.SetFloats(table.CountCol(tp), table.Int, counts); err != nil {
			return nil, types.NewDataError(s.name, err)
		}
	}

	s.log.Info("combined counts", "key", key, "rows", t.Len())

	return t, nil
}

// sumTimepoint restores the key's table from each library at the timepoint,
// sums them, and dumps them again.
func (s *Selection) sumTimepoint(key string, tp int) (*table.Table, error) {
	libs := s.byTimepoint[tp]
	tables := make([]*table.Table, 0, len(libs))

	for _, lib := range libs {
		if err := lib.Restore(key); err != nil {
			return nil, err
		}

		t, ok := lib.Table(key)
		if !ok {
			return nil, types.NewDataError(lib.Name(), table.ErrNoColumn)
		}

		tables = append(tables, t)
	}

	sum, err := table.Sum(key, tables...)
	if err != nil {
		return nil, types.NewDataError(s.name, err)
	}

	if err := dumpAll(libs, key); err != nil {
		return nil, err
	}

	return sum, nil
}

func dumpAll(libs []*seqlib.Library, key string) error {
	for _, lib := range libs {
		if err := lib.Dump(key); err != nil {
			return err
		}
	}

	return nil
}

// isNonsense tells you if the variant descriptor contains a nonsense change at
// or before the given amino acid position.
func isNonsense(descriptor string, position int) bool {
	for _, m := range nonsenseRe.FindAllStringSubmatch(descriptor, -1) {
		pos, err := strconv.Atoi(m[1])
		if err == nil && pos <= position {
			return true
		}
	}

	return false
}

// correctCarryover removes the estimated nonspecific carryover from the later
// timepoint variant counts, using the proportion of nonsense variants at each
// timepoint relative to the input.
func (s *Selection) correctCarryover() {
	if !s.hasVariants() {
		return
	}

	t := s.mustTable(table.KindVariants)

	nonspecific := make([]bool, t.Len())
	for i, id := range t.Index() {
		nonspecific[i] = isNonsense(id, s.carryover.Position)
	}

	props := make(map[int]float64, len(s.timepoints))

	for _, tp := range s.timepoints {
		props[tp] = nonspecificProportion(t.Floats(table.CountCol(tp)), nonspecific)
	}

	ref := props[types.ReferenceTimepoint]
	if ref == 0 || math.IsNaN(ref) {
		s.log.Warn("no nonspecific variants in the input; skipping carryover correction")

		return
	}

	for _, tp := range s.timepoints.Later() {
		t.SetFloats(table.CountCol(tp), table.Int, //nolint:errcheck
			subtractCarryover(t.Floats(table.CountCol(tp)), props[tp]/ref))
	}

	s.log.Info("corrected nonspecific carryover", "method", s.carryover.Method,
		"position", s.carryover.Position)
}

func nonspecificProportion(counts []float64, nonspecific []bool) float64 {
	var total, ns float64

	for i, c := range counts {
		if math.IsNaN(c) {
			continue
		}

		total += c

		if nonspecific[i] {
			ns += c
		}
	}

	return ns / total
}

// subtractCarryover returns counts reduced by the given fraction of
// themselves, truncated to whole numbers and never below 0.
func subtractCarryover(counts []float64, fraction float64) []float64 {
	out := make([]float64, len(counts))

	for i, c := range counts {
		if math.IsNaN(c) {
			out[i] = c

			continue
		}

		out[i] = math.Max(0, math.Trunc(c-c*fraction))
	}

	return out
}
