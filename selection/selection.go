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

// Package selection combines the libraries of a time-course selection into
// per-timepoint counts, and scores each barcode or variant by the change in
// its relative abundance over time.
package selection

import (
	"sort"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-hgi/enrich/barcodemap"
	"github.com/wtsi-hgi/enrich/config"
	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/seqlib"
	"github.com/wtsi-hgi/enrich/table"
	"github.com/wtsi-hgi/enrich/types"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrAlreadyCalculated = Error("selection has already been calculated")
	ErrNoCommonKind      = Error("no count data present across all libraries")
	ErrUnknownCarryover  = Error("unrecognised nonspecific carryover correction method")

	// CarryoverNonsense is the carryover correction method that treats
	// nonsense variants as nonspecific.
	CarryoverNonsense = "nonsense"

	// PreFilterDir and PreWTNormDir are the output subdirectories tables are
	// snapshotted to before filtering and wild type normalisation.
	PreFilterDir = "pre-filter"
	PreWTNormDir = "pre-wtnorm"
)

// Options supply things not in the run file.
type Options struct {
	// Output overrides the run file's output directory.
	Output string

	// Open opens read files; defaults to fastq.Open.
	Open seqlib.Opener

	Log log15.Logger
}

// Selection is a set of libraries sequenced at two or more timepoints,
// including the input at timepoint 0.
type Selection struct {
	name          string
	output        string
	timepoints    types.Timepoints
	libs          []*seqlib.Library
	byTimepoint   map[int][]*seqlib.Library
	keys          []string
	filters       filter.Variant
	carryover     *config.Carryover
	normalizeWT   bool
	barcodeMap    *barcodemap.Map
	trackBarcodes bool
	store         *table.Store
	stats         *filter.Stats
	calculated    bool
	log           log15.Logger
}

// New validates the config and creates its libraries, returning a
// *types.ConfigError if there are too few timepoints, no timepoint 0,
// library names that share an output directory with each other or with the
// selection, no count kind common to all libraries, an unknown
// carryover method, or a max barcode variation filter when barcode variation
// can't be tracked. Unknown filters are warned about and otherwise ignored.
func New(cfg *config.Selection, opts Options) (*Selection, error) {
	logger := opts.Log
	if logger == nil {
		logger = log15.New()
		logger.SetHandler(log15.DiscardHandler())
	}

	s := &Selection{
		name:        cfg.Name,
		carryover:   cfg.Carryover,
		normalizeWT: cfg.NormalizeWT,
		byTimepoint: make(map[int][]*seqlib.Library),
		log:         logger.New("name", cfg.Name),
	}

	if err := s.configure(cfg, opts); err != nil {
		return nil, err
	}

	if err := s.createLibraries(cfg, opts, logger); err != nil {
		return nil, err
	}

	if err := s.findCommonKeys(); err != nil {
		return nil, err
	}

	s.store = table.NewStore(s.name, s.output, logger)
	s.stats = filter.NewStats(s.filters.Active()...)

	return s, nil
}

func (s *Selection) configure(cfg *config.Selection, opts Options) error {
	s.output = opts.Output
	if s.output == "" {
		s.output = cfg.OutputDir
	}

	if s.output == "" {
		return types.NewConfigError(s.name, "output directory", nil, types.ErrMissingKey)
	}

	if err := s.checkLibraries(cfg); err != nil {
		return err
	}

	if s.carryover != nil && s.carryover.Method != CarryoverNonsense {
		return types.NewConfigError(s.name, "carryover correction", s.carryover.Method, ErrUnknownCarryover)
	}

	filters, unknown, err := cfg.VariantFilters()
	if err != nil {
		return err
	}

	if len(unknown) > 0 {
		s.log.Warn("ignoring unknown filters", "filters", strings.Join(unknown, ", "))
	}

	s.filters = filters

	return nil
}

func (s *Selection) checkLibraries(cfg *config.Selection) error {
	if len(cfg.Libraries) == 0 {
		return types.NewConfigError(s.name, "libraries", nil, types.ErrMissingKey)
	}

	// output and dump directories are named after the sanitised name, so
	// that is what must be unique, including against the selection itself.
	names := map[string]bool{table.Sanitize(s.name): true}
	tps := make([]int, 0, len(cfg.Libraries))

	for _, l := range cfg.Libraries {
		if err := l.Validate(); err != nil {
			return err
		}

		dir := table.Sanitize(l.Name)
		if names[dir] {
			return types.NewConfigError(s.name, "name", l.Name, types.ErrNotUnique)
		}

		names[dir] = true
		tps = append(tps, *l.Timepoint)
	}

	s.timepoints = types.NewTimepoints(tps...)

	if err := s.timepoints.Validate(); err != nil {
		return types.NewConfigError(s.name, "timepoint", s.timepoints.String(), err)
	}

	return nil
}

// sharedMapPath returns the map file every library would use, if they are all
// barcode-variant libraries using the same one.
func sharedMapPath(cfg *config.Selection) string {
	path := ""

	for _, l := range cfg.Libraries {
		if kind, err := seqlib.KindOf(l); err != nil || kind != seqlib.KindBarcodeVariant {
			return ""
		}

		p := l.MapFile()
		if p == "" {
			p = cfg.MapFile()
		}

		if p == "" || (path != "" && p != path) {
			return ""
		}

		path = p
	}

	return path
}

func (s *Selection) createLibraries(cfg *config.Selection, opts Options, logger log15.Logger) error {
	if err := s.loadBarcodeMap(cfg); err != nil {
		return err
	}

	if !s.trackBarcodes && s.filters.Enabled(filter.MaxBarcodeVariation) {
		return types.NewConfigError(s.name, string(filter.MaxBarcodeVariation),
			s.filters.MaxBarcodeVariation, types.ErrUnsupported)
	}

	for _, l := range cfg.Libraries {
		m := s.barcodeMap
		if !s.trackBarcodes && l.MapFile() != "" {
			m = nil
		}

		lib, err := seqlib.FromConfig(l, seqlib.Options{Map: m, Output: s.output, Open: opts.Open, Log: logger})
		if err != nil {
			return err
		}

		s.libs = append(s.libs, lib)
		s.byTimepoint[lib.Timepoint()] = append(s.byTimepoint[lib.Timepoint()], lib)
	}

	sort.SliceStable(s.libs, func(i, j int) bool {
		return s.libs[i].Timepoint() < s.libs[j].Timepoint()
	})

	return nil
}

// loadBarcodeMap loads the map shared by all libraries when they all use the
// same one, enabling barcode variation tracking. Otherwise it loads the
// selection's own map, if any, for libraries that lack one.
func (s *Selection) loadBarcodeMap(cfg *config.Selection) error {
	path := sharedMapPath(cfg)
	if path != "" {
		s.trackBarcodes = true
	} else {
		path = cfg.MapFile()
	}

	if path == "" {
		return nil
	}

	m, err := barcodemap.Load(path)
	if err != nil {
		return err
	}

	s.barcodeMap = m

	return nil
}

func (s *Selection) findCommonKeys() error {
	counts := make(map[string]int)

	for _, lib := range s.libs {
		for _, k := range lib.Kind().Keys() {
			counts[k]++
		}
	}

	for _, k := range []string{table.KindBarcodes, table.KindVariants} {
		if counts[k] == len(s.libs) {
			s.keys = append(s.keys, k)
		}
	}

	if len(s.keys) == 0 {
		return types.NewConfigError(s.name, "libraries", nil, ErrNoCommonKind)
	}

	return nil
}

// Name returns the selection's name.
func (s *Selection) Name() string { return s.name }

// Timepoints returns the selection's timepoints in ascending order.
func (s *Selection) Timepoints() types.Timepoints { return s.timepoints }

// Libraries returns the libraries sorted by timepoint, then config order.
func (s *Selection) Libraries() []*seqlib.Library { return s.libs }

// Keys returns the kinds of table the selection scores.
func (s *Selection) Keys() []string { return s.keys }

// TracksBarcodes tells you if barcode variation is calculated for variants.
func (s *Selection) TracksBarcodes() bool { return s.trackBarcodes }

// BarcodeMap returns the map shared by the libraries, if any.
func (s *Selection) BarcodeMap() *barcodemap.Map { return s.barcodeMap }

// Table returns the selection's table for the key.
func (s *Selection) Table(key string) (*table.Table, bool) { return s.store.Get(key) }

// Stats returns the variant filter statistics.
func (s *Selection) Stats() *filter.Stats { return s.stats }

// Calculate counts every library, then combines, corrects, scores, filters
// and normalises the counts. It can only be called once.
func (s *Selection) Calculate() error {
	if s.calculated {
		return ErrAlreadyCalculated
	}

	s.calculated = true

	if err := s.countTimepoints(); err != nil {
		return err
	}

	if s.carryover != nil {
		s.correctCarryover()
	}

	for _, key := range s.keys {
		s.score(s.mustTable(key))
	}

	if s.trackBarcodes {
		if err := s.calcBarcodeVariation(); err != nil {
			return err
		}
	}

	s.sortAll()

	if s.hasVariants() {
		if err := s.filterVariants(); err != nil {
			return err
		}
	}

	if s.normalizeWT && s.hasVariants() {
		if err := s.normalizeToWT(); err != nil {
			return err
		}
	}

	return s.reportFilterStats()
}

func (s *Selection) mustTable(key string) *table.Table {
	t, _ := s.store.Get(key)

	return t
}

func (s *Selection) hasVariants() bool {
	return s.store.State(table.KindVariants) == table.InMemory
}

func (s *Selection) sortAll() {
	for _, key := range s.keys {
		s.mustTable(key).SortDescending(table.ColScore) //nolint:errcheck
	}
}

func (s *Selection) snapshot(subdir string) error {
	if _, err := s.store.Write(subdir); err != nil {
		return types.NewDataError(s.name, err)
	}

	return nil
}

func (s *Selection) reportFilterStats() error {
	s.stats.SumTotal()
	s.stats.Log(s.log)

	if _, err := s.stats.WriteFile(table.Dir(s.output, "", s.name)); err != nil {
		return types.NewDataError(s.name, err)
	}

	return nil
}

// WriteAll writes the selection's tables to output/name/ and every library's
// tables to output/library name/.
func (s *Selection) WriteAll() error {
	paths, err := s.store.Write("")
	if err != nil {
		return types.NewDataError(s.name, err)
	}

	for key, path := range paths {
		s.log.Debug("wrote table", "key", key, "path", path)
	}

	for _, lib := range s.libs {
		if err := lib.WriteAll(); err != nil {
			return err
		}
	}

	return nil
}
