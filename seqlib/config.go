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
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/enrich/barcodemap"
	"github.com/wtsi-hgi/enrich/config"
	"github.com/wtsi-hgi/enrich/mutation"
	"github.com/wtsi-hgi/enrich/types"
)

// KindOf returns the kind of library the config describes: barcode-variant if
// it has both barcodes and a wild type, barcode or variant if it has only one
// of them.
func KindOf(cfg *config.Library) (Kind, error) {
	switch {
	case cfg.Barcodes != nil && cfg.WildType != nil:
		return KindBarcodeVariant, nil
	case cfg.Barcodes != nil:
		return KindBarcode, nil
	case cfg.WildType != nil:
		return KindVariant, nil
	}

	return 0, types.NewConfigError(cfg.Name, "barcodes' or 'wild type", nil, types.ErrMissingKey)
}

// Options supply the things a library may get from its selection.
type Options struct {
	// Map is used by barcode-variant libraries instead of loading their own
	// map file.
	Map *barcodemap.Map

	// Output overrides the library's own output directory.
	Output string

	// Open opens read files; defaults to fastq.Open.
	Open Opener

	Log log15.Logger
}

// FromConfig returns a Library for the config. Filter keys that don't apply to
// libraries are warned about and otherwise ignored.
func FromConfig(cfg *config.Library, opts Options) (*Library, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kind, err := KindOf(cfg)
	if err != nil {
		return nil, err
	}

	output := opts.Output
	if output == "" {
		output = cfg.OutputDir
	}

	if output == "" {
		return nil, types.NewConfigError(cfg.Name, "output directory", nil, types.ErrMissingKey)
	}

	logger := loggerOrDiscard(opts.Log).New("name", cfg.Name)

	counter, err := newCounter(cfg, kind, opts, logger)
	if err != nil {
		return nil, err
	}

	return New(cfg.Name, *cfg.Timepoint, kind, counter, output, opts.Log), nil
}

func newCounter(cfg *config.Library, kind Kind, opts Options, logger log15.Logger) (Counter, error) {
	defaultMaxMutations := 0
	if cfg.WildType != nil {
		defaultMaxMutations = len(cfg.WildType.Sequence)
	}

	filters, unknown, err := cfg.ReadFilters(defaultMaxMutations)
	if err != nil {
		return nil, err
	}

	if len(unknown) > 0 {
		logger.Warn("ignoring unknown filters", "filters", strings.Join(unknown, ", "))
	}

	path, reverse := cfg.FASTQ.Path()
	reads := Reads{Path: path, Reverse: reverse}

	if kind == KindVariant {
		caller, errc := newCaller(cfg, filters.MaxMutations)
		if errc != nil {
			return nil, errc
		}

		return &VariantCounter{
			Name: cfg.Name, Reads: reads, Filters: filters, Caller: caller,
			ReportFiltered: cfg.ReportFilteredReads, Open: opts.Open, Log: logger,
		}, nil
	}

	reads.Start, reads.Length = cfg.FASTQ.Start, cfg.FASTQ.Length

	bc := BarcodeCounter{
		Name: cfg.Name, Reads: reads, Filters: filters, MinCount: int64(cfg.Barcodes.MinCount),
		ReportFiltered: cfg.ReportFilteredReads, Open: opts.Open, Log: logger,
	}

	if kind == KindBarcode {
		return &bc, nil
	}

	return newBarcodeVariantCounter(cfg, bc, filters.MaxMutations, opts.Map)
}

func newCaller(cfg *config.Library, maxMutations int) (*mutation.Ungapped, error) {
	caller, err := mutation.NewUngapped(mutation.WildTypeSequence{
		Sequence:        cfg.WildType.Sequence,
		Coding:          cfg.WildType.Coding,
		ReferenceOffset: cfg.WildType.ReferenceOffset,
	}, maxMutations)
	if err != nil {
		return nil, types.NewConfigError(cfg.Name, "wild type", cfg.WildType.Sequence, err)
	}

	return caller, nil
}

func newBarcodeVariantCounter(cfg *config.Library, bc BarcodeCounter, maxMutations int,
	shared *barcodemap.Map) (*BarcodeVariantCounter, error) {
	caller, err := newCaller(cfg, maxMutations)
	if err != nil {
		return nil, err
	}

	m := shared

	if m == nil {
		if cfg.MapFile() == "" {
			return nil, types.NewConfigError(cfg.Name, "map file", nil, types.ErrMissingKey)
		}

		if m, err = barcodemap.Load(cfg.MapFile()); err != nil {
			return nil, err
		}
	}

	return &BarcodeVariantCounter{Barcodes: bc, Map: m, Caller: caller}, nil
}
