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

package types

import (
	"fmt"
	"sort"
)

const (
	ErrTooFewTimepoints  = Error("insufficient number of timepoints")
	ErrMissingTimepoint0 = Error("missing timepoint 0")
	ErrNegativeTimepoint = Error("invalid negative timepoint")

	// ReferenceTimepoint is the input population every ratio is relative to.
	ReferenceTimepoint = 0

	minTimepoints = 2
)

// Timepoints is an ascending list of distinct timepoints.
type Timepoints []int

// NewTimepoints returns the distinct values of the given timepoints in
// ascending order.
func NewTimepoints(tps ...int) Timepoints {
	seen := make(map[int]bool, len(tps))
	result := make(Timepoints, 0, len(tps))

	for _, tp := range tps {
		if seen[tp] {
			continue
		}

		seen[tp] = true

		result = append(result, tp)
	}

	sort.Ints(result)

	return result
}

// Validate checks there are at least two timepoints, and that the first is
// literally 0.
func (t Timepoints) Validate() error {
	if len(t) < minTimepoints {
		return ErrTooFewTimepoints
	}

	if t[0] < ReferenceTimepoint {
		return ErrNegativeTimepoint
	}

	if t[0] != ReferenceTimepoint {
		return ErrMissingTimepoint0
	}

	return nil
}

// Later returns all timepoints other than the reference timepoint.
func (t Timepoints) Later() Timepoints {
	if len(t) == 0 || t[0] != ReferenceTimepoint {
		return t
	}

	return t[1:]
}

// Floats returns the timepoints as float64 values, for use as the x axis of a
// regression.
func (t Timepoints) Floats() []float64 {
	fs := make([]float64, len(t))

	for i, tp := range t {
		fs[i] = float64(tp)
	}

	return fs
}

func (t Timepoints) String() string {
	return fmt.Sprint([]int(t))
}
