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

package filter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/inconshreveable/log15"
)

const (
	// ReportFile is the name of the file filter reports are written to.
	ReportFile = "filter_stats.txt"

	reportDirPerm = 0755
)

// Stats counts how many reads or entities each filter removed, plus a total.
// Counts start at zero and only ever increase.
type Stats struct {
	messages Messages
	keys     []Key
	counts   map[Key]int64
	total    int64
}

// NewStats returns zeroed statistics for the given active filters, reported
// with the DefaultMessages.
func NewStats(active ...Key) *Stats {
	return NewStatsWithMessages(DefaultMessages(), active...)
}

// NewStatsWithMessages is like NewStats, but lets you supply the messages used
// in reports.
func NewStatsWithMessages(msgs Messages, active ...Key) *Stats {
	s := &Stats{
		messages: msgs,
		counts:   make(map[Key]int64, len(active)),
	}

	for _, k := range active {
		s.track(k)
	}

	return s
}

func (s *Stats) track(k Key) {
	if _, ok := s.counts[k]; ok || k == Total {
		return
	}

	s.counts[k] = 0
	s.keys = append(s.keys, k)
}

// Fail records that n reads or entities failed every one of the given
// filters. Each filter's count goes up by n, and the total goes up by n once.
func (s *Stats) Fail(n int64, keys ...Key) {
	if n <= 0 || len(keys) == 0 {
		return
	}

	for _, k := range keys {
		s.track(k)
		s.counts[k] += n
	}

	s.total += n
}

// Count returns the count for the given filter, or the total if passed Total.
func (s *Stats) Count(k Key) int64 {
	if k == Total {
		return s.total
	}

	return s.counts[k]
}

// Keys returns the tracked filters in the order they were first tracked.
func (s *Stats) Keys() []Key {
	return append([]Key(nil), s.keys...)
}

// SumTotal sets the total to the sum of the individual filter counts and
// returns it.
func (s *Stats) SumTotal() int64 {
	var sum int64

	for _, n := range s.counts {
		sum += n
	}

	s.total = sum

	return sum
}

// Line is one line of a filter report.
type Line struct {
	Key     Key
	Message string
	Count   int64
}

// Report returns a line per tracked filter sorted by descending count, ties
// broken by filter declaration order, followed by a final total line.
func (s *Stats) Report() []Line {
	keys := s.Keys()

	sort.SliceStable(keys, func(i, j int) bool {
		ci, cj := s.counts[keys[i]], s.counts[keys[j]]
		if ci != cj {
			return ci > cj
		}

		return declarationOrder(keys[i]) < declarationOrder(keys[j])
	})

	lines := make([]Line, 0, len(keys)+1)

	for _, k := range keys {
		lines = append(lines, Line{Key: k, Message: s.messages.Message(k), Count: s.counts[k]})
	}

	return append(lines, Line{Key: Total, Message: s.messages.Message(Total), Count: s.total})
}

// WriteReport writes the Report as tab separated message and count lines.
func (s *Stats) WriteReport(w io.Writer) error {
	for _, l := range s.Report() {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", l.Message, l.Count); err != nil {
			return err
		}
	}

	return nil
}

// WriteFile writes the report to ReportFile in the given directory, creating
// it if necessary, and returns the path written.
func (s *Stats) WriteFile(dir string) (path string, err error) {
	if err = os.MkdirAll(dir, reportDirPerm); err != nil {
		return "", err
	}

	path = filepath.Join(dir, ReportFile)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	defer func() {
		if errc := f.Close(); err == nil {
			err = errc
		}
	}()

	return path, s.WriteReport(f)
}

// Log logs the report at info level.
func (s *Stats) Log(logger log15.Logger) {
	for _, l := range s.Report() {
		logger.Info("filter statistics", "filter", l.Message, "count", l.Count)
	}
}
