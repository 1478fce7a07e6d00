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

package config

import (
	"math"
	"sort"

	"github.com/spf13/cast"
	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/types"
)

// converter converts filter values from a run file, which may be numbers,
// bools or strings, to the types we need. The conversions do not return
// errors, but instead set the Err field to a *types.ConfigError. Check that
// field after doing all your conversions.
type converter struct {
	component string
	Err       error
}

func (c *converter) invalid(key string, v any) {
	c.Err = types.NewConfigError(c.component, key, v, types.ErrInvalidValue)
}

// ToInt converts v to a non-negative int. If the conversion fails, the error
// field is set, and 0 is returned.
//
// If the error field is already set, this function does nothing and returns 0.
func (c *converter) ToInt(key string, v any) int {
	if c.Err != nil {
		return 0
	}

	i, err := cast.ToIntE(v)
	if err != nil || i < 0 {
		c.invalid(key, v)

		return 0
	}

	return i
}

// ToFloat converts v to a non-negative float64. If the conversion fails, the
// error field is set, and 0 is returned.
//
// If the error field is already set, this function does nothing and returns 0.
func (c *converter) ToFloat(key string, v any) float64 {
	if c.Err != nil {
		return 0
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || f < 0 || math.IsNaN(f) {
		c.invalid(key, v)

		return 0
	}

	return f
}

// ToBool converts v to a bool. If the conversion fails, the error field is
// set, and false is returned.
//
// If the error field is already set, this function does nothing and returns
// false.
func (c *converter) ToBool(key string, v any) bool {
	if c.Err != nil {
		return false
	}

	b, err := cast.ToBoolE(v)
	if err != nil {
		c.invalid(key, v)

		return false
	}

	return b
}

// ReadFilters returns the library's read filters. Max mutations defaults to
// defaultMaxMutations. Keys that aren't library filters are returned as
// unknown, for the caller to warn about.
func (l *Library) ReadFilters(defaultMaxMutations int) (filter.Read, []string, error) {
	f := filter.Read{MaxMutations: defaultMaxMutations}
	c := &converter{component: l.Name}

	unknown := eachFilter(l.Filters, filter.ScopeLibrary, func(k filter.Key, v any) {
		switch k { //nolint:exhaustive
		case filter.MinQuality:
			f.MinQuality = c.ToInt(string(k), v)
		case filter.AvgQuality:
			f.AvgQuality = c.ToFloat(string(k), v)
		case filter.Chastity:
			f.Chastity = c.ToBool(string(k), v)
		case filter.MaxMutations:
			f.MaxMutations = c.ToInt(string(k), v)
		}
	})

	return f, unknown, c.Err
}

// VariantFilters returns the selection's variant filters. Keys that aren't
// selection filters are returned as unknown, for the caller to warn
// about.
func (s *Selection) VariantFilters() (filter.Variant, []string, error) {
	f := filter.DefaultVariant()
	c := &converter{component: s.Name}

	unknown := eachFilter(s.Filters, filter.ScopeSelection, func(k filter.Key, v any) {
		switch k { //nolint:exhaustive
		case filter.MaxBarcodeVariation:
			f.MaxBarcodeVariation = c.ToFloat(string(k), v)
		case filter.MinCount:
			f.MinCount = c.ToFloat(string(k), v)
		case filter.MinInputCount:
			f.MinInputCount = c.ToFloat(string(k), v)
		case filter.MinRSquared:
			f.MinRSquared = c.ToFloat(string(k), v)
		}
	})

	return f, unknown, c.Err
}

func eachFilter(raw map[string]any, scope filter.Scope, fn func(filter.Key, any)) []string {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}

	sort.Strings(names)

	var unknown []string

	for _, name := range names {
		k := filter.Key(name)

		if s, ok := k.Scope(); !ok || s != scope {
			unknown = append(unknown, name)

			continue
		}

		fn(k, raw[name])
	}

	return unknown
}
