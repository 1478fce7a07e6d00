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

package table

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

const (
	// IndexLabel is the header of the index column in written tables.
	IndexLabel = "sequence"

	// NaNToken is written for missing values.
	NaNToken = "NaN"

	// FileSuffix is the extension of written tables.
	FileSuffix = ".tsv"

	outputPrecision = 4
	fullPrecision   = -1
	dirPerm         = 0755

	ErrBadHeader = Error("table file has an unexpected header")
)

// Sanitize cleans up a name for use in a file path by removing all characters
// other than letters, digits, space and "._~", then converting spaces to
// underscores.
func Sanitize(s string) string {
	var b strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" ._~", r) {
			b.WriteRune(r)
		}
	}

	return strings.ReplaceAll(b.String(), " ", "_")
}

// Dir returns the directory tables belonging to owner are written to: base,
// then the optional subdir, then the sanitized owner.
func Dir(base, subdir, owner string) string {
	if subdir != "" {
		return filepath.Join(base, subdir, Sanitize(owner))
	}

	return filepath.Join(base, Sanitize(owner))
}

// Path returns the path of the file the table with the given key (entity
// kind) belonging to owner will be written to.
func Path(base, subdir, owner, key string) string {
	return filepath.Join(Dir(base, subdir, owner), Sanitize(key+FileSuffix))
}

// WriteTSV writes the table tab-separated, with a header line whose first
// field is IndexLabel. Float values are written to 4 significant figures,
// unless precise is true, in which case they're written with the fewest digits
// that read back to the identical value.
func (t *Table) WriteTSV(w io.Writer, precise bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	record := make([]string, len(t.cols)+1)
	record[0] = IndexLabel

	for i, c := range t.cols {
		record[i+1] = c.Name
	}

	if err := cw.Write(record); err != nil {
		return err
	}

	prec := outputPrecision
	if precise {
		prec = fullPrecision
	}

	for r, id := range t.index {
		record[0] = id

		for i, c := range t.cols {
			record[i+1] = c.format(r, prec)
		}

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func (c *Column) format(row, prec int) string {
	if c.Kind == String {
		return c.strs[row]
	}

	v := c.nums[row]

	switch {
	case math.IsNaN(v):
		return NaNToken
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case c.Kind == Int:
		return strconv.FormatInt(int64(v), 10)
	default:
		return strconv.FormatFloat(v, 'g', prec, 64)
	}
}

// WriteFile writes the table to path, creating parent directories as needed.
func (t *Table) WriteFile(path string, precise bool) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return t.WriteTSV(f, precise)
}

// ReadTSV parses a table in the format written by WriteTSV. Column kinds are
// inferred: a column whose every value is NaN or a whole number is Int, one
// whose every value is NaN or a number is Float, and anything else is String.
func ReadTSV(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}

	if len(header) == 0 || header[0] != IndexLabel {
		return nil, ErrBadHeader
	}

	var (
		index []string
		cells = make([][]string, len(header)-1)
	)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		index = append(index, record[0])

		for i := range cells {
			cells[i] = append(cells[i], record[i+1])
		}
	}

	t, err := New(name, index)
	if err != nil {
		return nil, err
	}

	for i, col := range cells {
		t.set(parseColumn(header[i+1], col))
	}

	return t, nil
}

// ReadFile reads a table written by WriteFile.
func ReadFile(path, name string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	return ReadTSV(f, name)
}

func parseColumn(name string, cells []string) *Column {
	nums := make([]float64, len(cells))
	kind := Int

	for i, cell := range cells {
		v, isInt, ok := parseCell(cell)
		if !ok {
			return &Column{Name: name, Kind: String, strs: cells}
		}

		if !isInt {
			kind = Float
		}

		nums[i] = v
	}

	return &Column{Name: name, Kind: kind, nums: nums}
}

func parseCell(cell string) (float64, bool, bool) {
	switch cell {
	case NaNToken:
		return math.NaN(), true, true
	case "inf":
		return math.Inf(1), false, true
	case "-inf":
		return math.Inf(-1), false, true
	}

	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return float64(i), true, true
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false, false
	}

	return v, false, true
}
