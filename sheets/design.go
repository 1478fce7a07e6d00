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

package sheets

import (
	"context"
	"fmt"
	"strconv"

	"github.com/wtsi-hgi/enrich/config"
	"github.com/wtsi-hgi/enrich/filter"
)

const (
	ErrMissingSelection = Error("library's selection not found in selections sheet")
	ErrDuplicate        = Error("selection listed more than once")

	SelectionsSheet = "Selections"
	LibrariesSheet  = "Libraries"
)

var selectionColumns = []string{ //nolint:gochecknoglobals
	"selection",
	"map file",
	"min count",
	"min input count",
	"min rsquared",
	"max barcode variation",
	"carryover method",
	"carryover position",
	"normalize wt",
	"output directory",
}

var libraryColumns = []string{ //nolint:gochecknoglobals
	"selection",
	"library",
	"timepoint",
	"forward",
	"reverse",
	"start",
	"length",
	"barcoded",
	"map file",
	"barcode min count",
	"wild type",
	"coding",
	"reference offset",
	"min quality",
	"avg quality",
	"chastity",
	"max mutations",
	"report filtered reads",
}

// Design reads the Selections and Libraries sheets of the given document and
// returns a run config for each selection.
func (s *Sheets) Design(ctx context.Context, docID string) ([]*config.Selection, error) {
	sels, err := s.Read(ctx, docID, SelectionsSheet)
	if err != nil {
		return nil, err
	}

	libs, err := s.Read(ctx, docID, LibrariesSheet)
	if err != nil {
		return nil, err
	}

	return Design(sels, libs)
}

// Design converts a selections sheet, with one row per selection, and a
// libraries sheet, with one row per library naming its selection, into run
// configs. Blank cells leave settings unset. Selections are returned in
// sheet order.
func Design(selections, libraries *Sheet) ([]*config.Selection, error) {
	sels, lookup, err := designSelections(selections)
	if err != nil {
		return nil, err
	}

	if err = designLibraries(libraries, sels, lookup); err != nil {
		return nil, err
	}

	return sels, nil
}

func designSelections(sheet *Sheet) ([]*config.Selection, map[string]int, error) {
	if len(sheet.Rows) == 0 {
		return nil, nil, ErrNoData
	}

	rows, err := sheet.Columns(selectionColumns...)
	if err != nil {
		return nil, nil, err
	}

	sels := make([]*config.Selection, len(rows))
	lookup := make(map[string]int, len(rows))

	c := converter{sheet: SelectionsSheet}

	for i, row := range rows {
		c.row = i + 1

		if _, dup := lookup[row[0]]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicate, row[0])
		}

		sels[i] = &config.Selection{
			Name:        row[0],
			NormalizeWT: c.ToBool(row[8]),
			OutputDir:   row[9],
		}

		if row[1] != "" {
			sels[i].Barcodes = &config.Barcodes{MapFile: row[1]}
		}

		sels[i].Filters = c.filters(map[filter.Key]string{
			filter.MinCount:            row[2],
			filter.MinInputCount:       row[3],
			filter.MinRSquared:         row[4],
			filter.MaxBarcodeVariation: row[5],
		})

		if row[6] != "" {
			sels[i].Carryover = &config.Carryover{Method: row[6], Position: c.ToInt(row[7])}
		}

		lookup[row[0]] = i
	}

	return sels, lookup, c.Err
}

func designLibraries(sheet *Sheet, sels []*config.Selection, lookup map[string]int) error {
	if len(sheet.Rows) == 0 {
		return ErrNoData
	}

	rows, err := sheet.Columns(libraryColumns...)
	if err != nil {
		return err
	}

	c := converter{sheet: LibrariesSheet}

	for i, row := range rows {
		c.row = i + 1

		selI, ok := lookup[row[0]]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingSelection, row[0])
		}

		tp := c.ToInt(row[2])

		lib := &config.Library{
			Name:      row[1],
			Timepoint: &tp,
			FASTQ: &config.FASTQ{
				Forward: row[3],
				Reverse: row[4],
				Start:   c.ToInt(row[5]),
				Length:  c.ToInt(row[6]),
			},
			ReportFilteredReads: c.ToBool(row[17]),
		}

		if c.ToBool(row[7]) {
			lib.Barcodes = &config.Barcodes{MapFile: row[8], MinCount: c.ToInt(row[9])}
		}

		if row[10] != "" {
			lib.WildType = &config.WildType{
				Sequence:        row[10],
				Coding:          c.ToBool(row[11]),
				ReferenceOffset: c.ToInt(row[12]),
			}
		}

		lib.Filters = c.filters(map[filter.Key]string{
			filter.MinQuality:   row[13],
			filter.AvgQuality:   row[14],
			filter.Chastity:     row[15],
			filter.MaxMutations: row[16],
		})

		sels[selI].Libraries = append(sels[selI].Libraries, lib)
	}

	return c.Err
}

// converter converts sheet cells to other types. The conversions do not
// return errors, but instead set the Err field, naming the sheet and row of
// the first bad cell. Check that field after doing all your conversions. Blank
// cells convert to zero values.
type converter struct {
	sheet string
	row   int
	Err   error
}

func (c *converter) fail(s string, err error) {
	c.Err = fmt.Errorf("%s row %d: bad value %q: %w", c.sheet, c.row, s, err)
}

// ToInt converts a string to an int. If the conversion fails, the error
// field is set, and 0 is returned.
//
// If the error field is already set, this function does nothing and returns 0.
func (c *converter) ToInt(s string) int {
	if c.Err != nil || s == "" {
		return 0
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		c.fail(s, err)

		return 0
	}

	return i
}

// ToFloat converts a string to a float. If the conversion fails, the error
// field is set, and 0 is returned.
//
// If the error field is already set, this function does nothing and returns 0.
func (c *converter) ToFloat(s string) float64 {
	if c.Err != nil || s == "" {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.fail(s, err)

		return 0
	}

	return f
}

// ToBool converts a string to a bool. If the conversion fails, the error field
// is set, and false is returned.
//
// If the error field is already set, this function does nothing and returns
// false.
func (c *converter) ToBool(s string) bool {
	if c.Err != nil || s == "" {
		return false
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		c.fail(s, err)

		return false
	}

	return b
}

// filters returns a run file filters setting holding the non-blank cells,
// converted to the type each filter takes. Returns nil if all are blank.
func (c *converter) filters(cells map[filter.Key]string) map[string]any {
	var out map[string]any

	for k, cell := range cells {
		if cell == "" {
			continue
		}

		if out == nil {
			out = make(map[string]any)
		}

		switch k { //nolint:exhaustive
		case filter.Chastity:
			out[string(k)] = c.ToBool(cell)
		case filter.MinQuality, filter.MaxMutations:
			out[string(k)] = c.ToInt(cell)
		default:
			out[string(k)] = c.ToFloat(cell)
		}
	}

	return out
}
