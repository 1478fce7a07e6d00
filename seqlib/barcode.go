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
	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/enrich/fastq"
	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

// BarcodeCounter counts reads by their exact, upper-cased sequence.
type BarcodeCounter struct {
	Name    string
	Reads   Reads
	Filters filter.Read

	// MinCount moves barcodes seen fewer times than this to the
	// barcodes_low_abundance table, which is dumped straight away.
	MinCount int64

	ReportFiltered bool
	Open           Opener
	Log            log15.Logger
}

// Count implements Counter, putting a barcodes table in the store.
func (b *BarcodeCounter) Count(store *table.Store) (*filter.Stats, error) {
	stats := filter.NewStats(b.Filters.Active(false)...)

	if err := b.count(store, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

func (b *BarcodeCounter) count(store *table.Store, stats *filter.Stats) error {
	logger := loggerOrDiscard(b.Log)
	rf := newReadFilter(b.Filters, b.ReportFiltered, logger)
	counter := table.NewCounter()

	logger.Info("counting barcodes")

	err := b.Reads.each(b.Open, func(read *fastq.Read) error {
		if rf.keep(read, stats) {
			counter.Add(read.Sequence(), 1)
		}

		return nil
	})
	if err != nil {
		return types.NewDataError(b.Name, err)
	}

	if counter.Len() == 0 {
		return emptyTableError(b.Name, table.KindBarcodes)
	}

	barcodes := counter.Table(table.KindBarcodes)

	if b.MinCount > 0 {
		if err = b.removeLowAbundance(store, barcodes, logger); err != nil {
			return err
		}
	}

	store.Put(table.KindBarcodes, barcodes)

	logger.Info("retained barcode counts", "total", sumCounts(barcodes), "unique", barcodes.Len())

	return nil
}

func (b *BarcodeCounter) removeLowAbundance(store *table.Store, barcodes *table.Table, logger log15.Logger) error {
	counts := barcodes.Floats(table.ColCount)
	low := barcodes.Clone().Rename(table.KindBarcodesLowAbundance)
	lowCounts := low.Floats(table.ColCount)
	minCount := float64(b.MinCount)

	low.Filter(func(i int) bool { return lowCounts[i] < minCount })
	barcodes.Filter(func(i int) bool { return counts[i] >= minCount })

	logger.Info("writing low-abundance barcode counts to disk", "unique", low.Len())

	store.Put(table.KindBarcodesLowAbundance, low)

	if err := store.Dump(table.KindBarcodesLowAbundance); err != nil {
		return types.NewDataError(b.Name, err)
	}

	return nil
}

func sumCounts(t *table.Table) int64 {
	var sum int64

	for _, c := range t.Floats(table.ColCount) {
		sum += int64(c)
	}

	return sum
}
