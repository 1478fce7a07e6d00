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
	"github.com/wtsi-hgi/enrich/barcodemap"
	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/mutation"
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

// BarcodeVariantCounter counts barcodes, then resolves mapped barcodes to
// their variants and counts those, each barcode contributing its count.
type BarcodeVariantCounter struct {
	Barcodes BarcodeCounter
	Map      *barcodemap.Map
	Caller   mutation.Caller
}

// Count implements Counter, putting barcodes, barcodes_unmapped and variants
// tables in the store. barcodes_unmapped is dumped straight away.
func (bv *BarcodeVariantCounter) Count(store *table.Store) (*filter.Stats, error) {
	b := &bv.Barcodes
	logger := loggerOrDiscard(b.Log)
	stats := filter.NewStats(b.Filters.Active(true)...)

	if err := b.count(store, stats); err != nil {
		return nil, err
	}

	barcodes, _ := store.Get(table.KindBarcodes)

	if err := bv.removeUnmapped(store, barcodes, logger); err != nil {
		return nil, err
	}

	logger.Info("converting barcodes to variants")

	rf := newReadFilter(b.Filters, b.ReportFiltered, logger)
	counter := table.NewCounter()
	counts := barcodes.Floats(table.ColCount)

	for i, bc := range barcodes.Index() {
		count := int64(counts[i])
		variant, _ := bv.Map.Variant(bc)

		desc, err := bv.Caller.Call(variant)
		if errors.Is(err, mutation.ErrTooManyMutations) {
			stats.Fail(count, filter.MaxMutations)
			rf.reportVariant(variant, count)

			if _, ok := bv.Map.Descriptor(bc); !ok {
				bv.Map.SetDescriptor(bc, barcodemap.FilteredDescriptor)
			}

			continue
		}

		if err != nil {
			return nil, types.NewDataError(b.Name, err)
		}

		counter.Add(desc, count)
		bv.Map.AddBarcode(desc, bc)
		bv.Map.SetDescriptor(bc, desc)
	}

	if counter.Len() == 0 {
		return nil, emptyTableError(b.Name, table.KindVariants)
	}

	variants := counter.Table(table.KindVariants)
	store.Put(table.KindVariants, variants)

	logger.Info("retained variant counts", "total", counter.Total(), "unique", variants.Len(),
		"calls", bv.Caller.Calls())

	return stats, nil
}

func (bv *BarcodeVariantCounter) removeUnmapped(store *table.Store, barcodes *table.Table,
	logger log15.Logger) error {
	unmapped := barcodes.Clone().Rename(table.KindBarcodesUnmapped)
	ids := unmapped.Index()

	unmapped.Filter(func(i int) bool { return !bv.Map.Has(ids[i]) })

	mapped := barcodes.Index()
	barcodes.Filter(func(i int) bool { return bv.Map.Has(mapped[i]) })

	logger.Info("writing unmapped barcode counts to disk", "unique", unmapped.Len())

	store.Put(table.KindBarcodesUnmapped, unmapped)

	if err := store.Dump(table.KindBarcodesUnmapped); err != nil {
		return types.NewDataError(bv.Barcodes.Name, err)
	}

	return nil
}
