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

// Package barcodemap loads and validates the barcode to variant sequence maps
// used by barcode-variant libraries.
package barcodemap

import (
	"bufio"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/wtsi-hgi/enrich/types"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrFormat = Error("invalid barcode map")

	// FilteredDescriptor is recorded against barcodes whose variant was
	// rejected during mutation calling.
	FilteredDescriptor = "~filtered"

	barcodeAlphabet = "ACGT"
	variantAlphabet = "ACGTN"
	commentPrefix   = "#"
	maxLineLength   = 1024 * 1024
)

// Map maps barcodes to variant sequences. It also holds two indexes that are
// filled in during counting: the barcodes seen for each variant descriptor,
// and the descriptor assigned to each barcode.
type Map struct {
	path        string
	variants    map[string]string
	barcodes    map[string][]string
	added       map[string]bool
	descriptors map[string]string
}

// Load reads a barcode map file: whitespace separated barcode and variant
// sequence pairs, one per line. Blank lines and lines starting with # are
// ignored. Files ending .gz or .bz2 are decompressed.
//
// Returns a *types.DataError wrapping ErrFormat if any line is malformed, has
// bad characters, or assigns a barcode a different variant to an earlier line.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewDataError(path, fmt.Errorf("%w: %w", types.ErrUnreadable, err))
	}

	defer f.Close()

	r, err := decompressor(path, f)
	if err != nil {
		return nil, types.NewDataError(path, fmt.Errorf("%w: %w", types.ErrUnreadable, err))
	}

	defer r.Close()

	m := newMap(path)

	if err = m.parse(r); err != nil {
		return nil, types.NewDataError(path, err)
	}

	return m, nil
}

func newMap(path string) *Map {
	return &Map{
		path:        path,
		variants:    make(map[string]string),
		barcodes:    make(map[string][]string),
		added:       make(map[string]bool),
		descriptors: make(map[string]string),
	}
}

// decompressor returns a reader of the decompressed content of r, based on
// path's extension. Closing it does not close r.
func decompressor(path string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return pgzip.NewReader(r)
	case ".bz2":
		return io.NopCloser(bzip2.NewReader(r)), nil
	default:
		return io.NopCloser(r), nil
	}
}

func (m *Map) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineLength)

	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		if err := m.addLine(line); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrUnreadable, err)
	}

	return nil
}

func (m *Map) addLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 { //nolint:mnd
		return fmt.Errorf("%w: expected 2 fields, found %d", ErrFormat, len(fields))
	}

	barcode, variant := strings.ToUpper(fields[0]), strings.ToUpper(fields[1])

	if !onlyContains(barcode, barcodeAlphabet) {
		return fmt.Errorf("%w: unexpected character in barcode %s", ErrFormat, barcode)
	}

	if !onlyContains(variant, variantAlphabet) {
		return fmt.Errorf("%w: unexpected character in variant %s", ErrFormat, variant)
	}

	if existing, ok := m.variants[barcode]; ok && existing != variant {
		return fmt.Errorf("%w: barcode %s assigned to both %s and %s", ErrFormat, barcode, existing, variant)
	}

	m.variants[barcode] = variant

	return nil
}

func onlyContains(s, alphabet string) bool {
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}

	return true
}

// Path returns the path the map was loaded from.
func (m *Map) Path() string { return m.path }

// Len returns the number of barcodes in the map.
func (m *Map) Len() int { return len(m.variants) }

// Has returns true if the barcode is in the map.
func (m *Map) Has(barcode string) bool {
	_, ok := m.variants[barcode]

	return ok
}

// Variant returns the variant sequence for the barcode.
func (m *Map) Variant(barcode string) (string, bool) {
	v, ok := m.variants[barcode]

	return v, ok
}

// AddBarcode records that the barcode was counted towards the variant with
// the given descriptor. Adding the same pair again does nothing.
func (m *Map) AddBarcode(descriptor, barcode string) {
	key := descriptor + "\t" + barcode
	if m.added[key] {
		return
	}

	m.added[key] = true
	m.barcodes[descriptor] = append(m.barcodes[descriptor], barcode)
}

// Barcodes returns the barcodes recorded against the variant descriptor, in
// the order they were added.
func (m *Map) Barcodes(descriptor string) []string {
	return append([]string(nil), m.barcodes[descriptor]...)
}

// SetDescriptor records the variant descriptor the barcode resolved to, which
// is FilteredDescriptor for barcodes whose variant was rejected.
func (m *Map) SetDescriptor(barcode, descriptor string) {
	m.descriptors[barcode] = descriptor
}

// Descriptor returns the variant descriptor recorded for the barcode.
func (m *Map) Descriptor(barcode string) (string, bool) {
	d, ok := m.descriptors[barcode]

	return d, ok
}
