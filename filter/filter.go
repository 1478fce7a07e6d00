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

// Package filter holds the named filters applied to reads and scored variants,
// the human readable message for each, and the statistics recording how many
// reads or entities each filter removed.
package filter

import (
	"math"
)

// Key names a filter as it appears in configuration.
type Key string

const (
	MinQuality          Key = "min quality"
	AvgQuality          Key = "avg quality"
	Chastity            Key = "chastity"
	MaxMutations        Key = "max mutations"
	MaxBarcodeVariation Key = "max barcode variation"
	MinCount            Key = "min count"
	MinInputCount       Key = "min input count"
	MinRSquared         Key = "min rsquared"

	// Total is the statistics key for the number of reads or entities removed
	// by any filter.
	Total Key = "total"
)

// Scope says whether a filter applies to the reads of a library or to the
// scored variants of a selection.
type Scope int

const (
	ScopeLibrary Scope = iota
	ScopeSelection
)

// declared is every filter in declaration order, which also breaks ties in
// reports.
var declared = []Key{ //nolint:gochecknoglobals
	MinQuality, AvgQuality, Chastity, MaxMutations,
	MaxBarcodeVariation, MinCount, MinInputCount, MinRSquared,
}

// Scope returns the scope of the filter and false if the key isn't a known
// filter.
func (k Key) Scope() (Scope, bool) {
	switch k {
	case MinQuality, AvgQuality, Chastity, MaxMutations:
		return ScopeLibrary, true
	case MaxBarcodeVariation, MinCount, MinInputCount, MinRSquared:
		return ScopeSelection, true
	case Total:
	}

	return 0, false
}

// Recognised returns the filters of the given scope in declaration order.
func Recognised(scope Scope) []Key {
	var keys []Key

	for _, k := range declared {
		if s, _ := k.Scope(); s == scope {
			keys = append(keys, k)
		}
	}

	return keys
}

func declarationOrder(k Key) int {
	for i, d := range declared {
		if d == k {
			return i
		}
	}

	return len(declared)
}

// Messages maps filters to the human readable reason given for removals.
type Messages map[Key]string

// DefaultMessages returns a new copy of the standard filter messages.
func DefaultMessages() Messages {
	return Messages{
		MinQuality:          "single-base quality",
		AvgQuality:          "average quality",
		Chastity:            "not chaste",
		MaxMutations:        "excess mutations",
		MinCount:            "not enough variant reads",
		MinInputCount:       "not enough variant reads in input",
		MinRSquared:         "low r-squared",
		MaxBarcodeVariation: "high barcode CV",
		Total:               "total",
	}
}

// Message returns the message for the filter, or the key itself if it has
// none.
func (m Messages) Message(k Key) string {
	if msg, ok := m[k]; ok {
		return msg
	}

	return string(k)
}

// Read holds the per-read filter settings of a library. Zero values disable
// the quality filters.
type Read struct {
	MinQuality   int
	AvgQuality   float64
	Chastity     bool
	MaxMutations int
}

// Active returns the read filters that are enabled. Set callsMutations for
// libraries that call mutations, where max mutations always applies.
func (r Read) Active(callsMutations bool) []Key {
	var keys []Key

	if r.MinQuality > 0 {
		keys = append(keys, MinQuality)
	}

	if r.AvgQuality > 0 {
		keys = append(keys, AvgQuality)
	}

	if r.Chastity {
		keys = append(keys, Chastity)
	}

	if callsMutations {
		keys = append(keys, MaxMutations)
	}

	return keys
}

// Variant holds the variant-level filter settings of a selection.
// MaxBarcodeVariation is NaN when the filter is not requested.
type Variant struct {
	MaxBarcodeVariation float64
	MinCount            float64
	MinInputCount       float64
	MinRSquared         float64
}

// DefaultVariant returns settings that remove nothing.
func DefaultVariant() Variant {
	return Variant{MaxBarcodeVariation: math.NaN()}
}

// Active returns the variant filters that are enabled, in the order they are
// applied.
func (v Variant) Active() []Key {
	var keys []Key

	if !math.IsNaN(v.MaxBarcodeVariation) {
		keys = append(keys, MaxBarcodeVariation)
	}

	if v.MinCount > 0 {
		keys = append(keys, MinCount)
	}

	if v.MinInputCount > 0 {
		keys = append(keys, MinInputCount)
	}

	if v.MinRSquared > 0 {
		keys = append(keys, MinRSquared)
	}

	return keys
}

// Enabled tells you if the given filter is active.
func (v Variant) Enabled(k Key) bool {
	for _, a := range v.Active() {
		if a == k {
			return true
		}
	}

	return false
}
