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

package seqlib

import (
	"errors"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/enrich/fastq"
	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/mutation"
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

// VariantCounter counts reads by the mutations they carry, one read per
// variant.
type VariantCounter struct {
	Name           string
	Reads          Reads
	Filters        filter.Read
	Caller         mutation.Caller
	ReportFiltered bool
	Open           Opener
	Log            log15.Logger
}

// Count implements Counter, putting a variants table in the store.
func (v *VariantCounter) Count(store *table.Store) (*filter.Stats, error) {
	logger := loggerOrDiscard(v.Log)
	rf := newReadFilter(v.Filters, v.ReportFiltered, logger)
	stats := filter.NewStats(v.Filters.Active(true)...)
	counter := table.NewCounter()

	logger.Info("counting variants")

	err := v.Reads.each(v.Open, func(read *fastq.Read) error {
		if !rf.keep(read, stats) {
			return nil
		}

		desc, err := v.Caller.Call(read.Sequence())
		if errors.Is(err, mutation.ErrTooManyMutations) {
			stats.Fail(1, filter.MaxMutations)
			rf.reportRead(read, filter.MaxMutations)

			return nil
		}

		if err != nil {
			return err
		}

		counter.Add(desc, 1)

		return nil
	})
	if err != nil {
		return nil, types.NewDataError(v.Name, err)
	}

	if counter.Len() == 0 {
		return nil, emptyTableError(v.Name, table.KindVariants)
	}

	variants := counter.Table(table.KindVariants)
	store.Put(table.KindVariants, variants)

	logger.Info("counted variants", "total", counter.Total(), "unique", variants.Len(),
		"calls", v.Caller.Calls())

	return stats, nil
}
