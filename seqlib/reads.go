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

// Package seqlib counts the reads of a single sequencing library, for one
// timepoint, into barcode and/or variant count tables.
package seqlib

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/enrich/fastq"
	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrAlreadyCalculated = Error("library has already been calculated")
	ErrNotCalculated     = Error("library has not been calculated")
)

// Opener opens a read file as a fastq.Source.
type Opener func(path string) (fastq.Source, error)

// Counter counts the reads of a library into tables in the given store,
// returning statistics on the reads it filtered out.
type Counter interface {
	Count(store *table.Store) (*filter.Stats, error)
}

// Reads says where a library's reads are and how to prepare them for
// counting.
type Reads struct {
	Path    string
	Reverse bool

	// Start and Length trim reads to a 1-based window before counting. Zero
	// values keep the whole read.
	Start  int
	Length int
}

func (r Reads) prepare(read *fastq.Read) *fastq.Read {
	if r.Start > 1 || r.Length > 0 {
		read = read.Trim(r.Start, r.Length)
	}

	if r.Reverse {
		read = read.RevComp()
	}

	return read
}

// each calls fn on each read, prepared, from the read file.
func (r Reads) each(open Opener, fn func(*fastq.Read) error) error {
	if open == nil {
		open = fastq.Open
	}

	src, err := open(r.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrUnreadable, err)
	}

	defer src.Close()

	for {
		read, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("%w: %w", types.ErrUnreadable, err)
		}

		if err = fn(r.prepare(read)); err != nil {
			return err
		}
	}
}

// readFilter applies the per-read quality filters, recording failures.
type readFilter struct {
	filters        filter.Read
	reportFiltered bool
	messages       filter.Messages
	log            log15.Logger
}

func newReadFilter(filters filter.Read, reportFiltered bool, logger log15.Logger) *readFilter {
	return &readFilter{
		filters:        filters,
		reportFiltered: reportFiltered,
		messages:       filter.DefaultMessages(),
		log:            logger,
	}
}

// keep returns true if the read passes every enabled filter. Otherwise the
// failure is recorded in stats against each filter that failed.
func (f *readFilter) keep(read *fastq.Read, stats *filter.Stats) bool {
	var failed []filter.Key

	if f.filters.Chastity && !read.Chaste() {
		failed = append(failed, filter.Chastity)
	}

	if f.filters.MinQuality > 0 && read.MinQuality() < f.filters.MinQuality {
		failed = append(failed, filter.MinQuality)
	}

	if f.filters.AvgQuality > 0 && read.MeanQuality() < f.filters.AvgQuality {
		failed = append(failed, filter.AvgQuality)
	}

	if len(failed) == 0 {
		return true
	}

	stats.Fail(1, failed...)
	f.reportRead(read, failed...)

	return false
}

func (f *readFilter) reportRead(read *fastq.Read, failed ...filter.Key) {
	if !f.reportFiltered {
		return
	}

	f.log.Debug("filtered read", "reasons", f.reasons(failed...),
		"header", read.Header, "sequence", read.Sequence())
}

func (f *readFilter) reportVariant(variant string, count int64) {
	if !f.reportFiltered {
		return
	}

	f.log.Debug("filtered variant", "reasons", f.reasons(filter.MaxMutations),
		"quantity", count, "sequence", variant)
}

func (f *readFilter) reasons(keys ...filter.Key) string {
	msgs := make([]string, len(keys))

	for i, k := range keys {
		msgs[i] = f.messages.Message(k)
	}

	return strings.Join(msgs, ", ")
}

func discardLogger() log15.Logger {
	l := log15.New()
	l.SetHandler(log15.DiscardHandler())

	return l
}

func loggerOrDiscard(logger log15.Logger) log15.Logger {
	if logger == nil {
		return discardLogger()
	}

	return logger
}

func emptyTableError(name, kind string) error {
	return types.NewDataError(name, fmt.Errorf("%w: %s", types.ErrEmptyTable, kind))
}
