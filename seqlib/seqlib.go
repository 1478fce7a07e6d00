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
	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

// Kind is the kind of a library, which determines the tables it counts.
type Kind int

const (
	KindBarcode Kind = iota
	KindVariant
	KindBarcodeVariant
)

func (k Kind) String() string {
	switch k {
	case KindBarcode:
		return "barcode"
	case KindVariant:
		return "variant"
	case KindBarcodeVariant:
		return "barcode-variant"
	}

	return "unknown"
}

// Keys returns the keys of the count tables a library of this kind produces
// for scoring. Diagnostic tables such as barcodes_unmapped are not included.
func (k Kind) Keys() []string {
	switch k {
	case KindBarcode:
		return []string{table.KindBarcodes}
	case KindVariant:
		return []string{table.KindVariants}
	case KindBarcodeVariant:
		return []string{table.KindBarcodes, table.KindVariants}
	}

	return nil
}

// State is the progress of a Library through counting.
type State int

const (
	Uninitialized State = iota
	Counting
	Counted
	Filtered
)

// Library is a sequencing library at one timepoint. It owns the tables its
// Counter produces.
type Library struct {
	name      string
	timepoint int
	kind      Kind
	counter   Counter
	output    string
	store     *table.Store
	stats     *filter.Stats
	state     State
	log       log15.Logger
}

// New returns a Library that counts with the given Counter and keeps its
// tables under the output directory.
func New(name string, timepoint int, kind Kind, counter Counter, output string, logger log15.Logger) *Library {
	logger = loggerOrDiscard(logger)

	return &Library{
		name:      name,
		timepoint: timepoint,
		kind:      kind,
		counter:   counter,
		output:    output,
		store:     table.NewStore(name, output, logger),
		log:       logger.New("name", name),
	}
}

// Name returns the library's name.
func (l *Library) Name() string { return l.name }

// Timepoint returns the timepoint the library was sequenced at.
func (l *Library) Timepoint() int { return l.timepoint }

// Kind returns the library's kind.
func (l *Library) Kind() Kind { return l.kind }

// State returns how far through counting the library is.
func (l *Library) State() State { return l.state }

// Stats returns the filter statistics from counting, or nil before Calculate
// has completed.
func (l *Library) Stats() *filter.Stats { return l.stats }

// Calculate counts the library's reads, then writes and logs its filter
// statistics. It can only be called once.
func (l *Library) Calculate() error {
	if l.state != Uninitialized {
		return ErrAlreadyCalculated
	}

	l.state = Counting

	stats, err := l.counter.Count(l.store)
	if err != nil {
		return err
	}

	l.stats = stats
	l.state = Counted

	if err = l.reportFilterStats(); err != nil {
		return err
	}

	l.state = Filtered

	return nil
}

func (l *Library) reportFilterStats() error {
	l.stats.Log(l.log)

	path, err := l.stats.WriteFile(table.Dir(l.output, "", l.name))
	if err != nil {
		return types.NewDataError(l.name, err)
	}

	l.log.Debug("wrote filter statistics", "path", path)

	return nil
}

func (l *Library) checkCounted() error {
	if l.state < Counted {
		return ErrNotCalculated
	}

	return nil
}

// Table returns the in-memory table for the key.
func (l *Library) Table(key string) (*table.Table, bool) {
	return l.store.Get(key)
}

// TableState returns whether the table for the key is absent, in memory or
// dumped to disk.
func (l *Library) TableState(key string) table.State {
	return l.store.State(key)
}

// Keys returns the keys of every table the library currently holds, in
// memory or on disk.
func (l *Library) Keys() []string {
	return l.store.Keys()
}

// Dump writes the tables for the given keys (default all) to disk and
// releases them from memory. Keys with no table in memory are skipped, and
// nothing happens before the library has been counted.
func (l *Library) Dump(keys ...string) error {
	if l.state < Counted {
		return nil
	}

	if err := l.store.Dump(keys...); err != nil {
		return types.NewDataError(l.name, err)
	}

	return nil
}

// Restore reloads previously dumped tables for the given keys (default all).
// Keys that were never dumped are skipped.
func (l *Library) Restore(keys ...string) error {
	if l.state < Counted {
		return nil
	}

	if err := l.store.Restore(keys...); err != nil {
		return types.NewDataError(l.name, err)
	}

	return nil
}

// WriteAll writes every table to output/name/key.tsv. Dumped tables are
// restored one at a time for writing, then dumped again.
func (l *Library) WriteAll() error {
	if err := l.checkCounted(); err != nil {
		return err
	}

	for _, key := range l.store.Keys() {
		if err := l.writeTable(key); err != nil {
			return types.NewDataError(l.name, err)
		}
	}

	return nil
}

func (l *Library) writeTable(key string) error {
	dumped := l.store.State(key) == table.OnDisk

	if err := l.store.Restore(key); err != nil {
		return err
	}

	paths, err := l.store.Write("", key)
	if err != nil {
		return err
	}

	l.log.Debug("wrote table", "key", key, "path", paths[key])

	if dumped {
		return l.store.Dump(key)
	}

	return nil
}
