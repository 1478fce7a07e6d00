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
	"fmt"

	"github.com/spf13/viper"
	"github.com/wtsi-hgi/enrich/types"
)

// SaveSelection writes the selection as a run file that LoadSelection can
// read. The format is taken from the path's extension. Unset optional values
// are left out.
func SaveSelection(path string, s *Selection) error {
	v := viper.New()

	if err := v.MergeConfigMap(s.settings()); err != nil {
		return types.NewConfigError(path, "", nil, err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return types.NewConfigError(path, "", nil, fmt.Errorf("%w: %w", types.ErrUnreadable, err))
	}

	return nil
}

func (s *Selection) settings() map[string]any {
	libs := make([]any, len(s.Libraries))

	for i, l := range s.Libraries {
		libs[i] = l.settings()
	}

	m := map[string]any{
		"name":      s.Name,
		"libraries": libs,
	}

	setIf(m, "barcodes", s.Barcodes != nil, func() any { return s.Barcodes.settings() })
	setIf(m, "filters", len(s.Filters) > 0, func() any { return s.Filters })
	setIf(m, "carryover correction", s.Carryover != nil, func() any {
		return map[string]any{"method": s.Carryover.Method, "position": s.Carryover.Position}
	})
	setIf(m, "normalize wt", s.NormalizeWT, func() any { return true })
	setIf(m, "output directory", s.OutputDir != "", func() any { return s.OutputDir })

	return m
}

func (l *Library) settings() map[string]any {
	m := map[string]any{"name": l.Name}

	setIf(m, "timepoint", l.Timepoint != nil, func() any { return *l.Timepoint })
	setIf(m, "fastq", l.FASTQ != nil, func() any { return l.FASTQ.settings() })
	setIf(m, "filters", len(l.Filters) > 0, func() any { return l.Filters })
	setIf(m, "barcodes", l.Barcodes != nil, func() any { return l.Barcodes.settings() })
	setIf(m, "wild type", l.WildType != nil, func() any {
		return map[string]any{
			"sequence":         l.WildType.Sequence,
			"coding":           l.WildType.Coding,
			"reference offset": l.WildType.ReferenceOffset,
		}
	})
	setIf(m, "report filtered reads", l.ReportFilteredReads, func() any { return true })
	setIf(m, "output directory", l.OutputDir != "", func() any { return l.OutputDir })

	return m
}

func (f *FASTQ) settings() map[string]any {
	m := make(map[string]any)

	setIf(m, "forward", f.Forward != "", func() any { return f.Forward })
	setIf(m, "reverse", f.Reverse != "", func() any { return f.Reverse })
	setIf(m, "start", f.Start != 0, func() any { return f.Start })
	setIf(m, "length", f.Length != 0, func() any { return f.Length })

	return m
}

func (b *Barcodes) settings() map[string]any {
	m := make(map[string]any)

	setIf(m, "map file", b.MapFile != "", func() any { return b.MapFile })
	setIf(m, "min count", b.MinCount != 0, func() any { return b.MinCount })

	return m
}

func setIf(m map[string]any, key string, ok bool, value func() any) {
	if ok {
		m[key] = value()
	}
}
