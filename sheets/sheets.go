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

// Package sheets reads experiment designs from Google sheets, so that run
// files can be generated from them.
package sheets

import (
	"context"
	"fmt"

	"github.com/wtsi-hgi/enrich/config"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	googleSheets "google.golang.org/api/sheets/v4"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	readOnlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

	ErrNoData        = Error("no data found in sheet")
	ErrMissingColumn = Error("column not found in sheet")
)

// Sheets allows the retrival of sheets from Google docs.
type Sheets struct {
	srv *googleSheets.Service
}

// New returns a Sheets that you can Read() sheets from Google docs with,
// signed in as the given service account with read-only access.
func New(ctx context.Context, creds *config.Credentials) (*Sheets, error) {
	client := jwtConfig(creds).Client(ctx)

	srv, err := googleSheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}

	return &Sheets{srv: srv}, nil
}

func jwtConfig(creds *config.Credentials) *jwt.Config {
	return &jwt.Config{
		Email:        creds.ClientEmail,
		PrivateKey:   []byte(creds.PrivateKey),
		PrivateKeyID: creds.PrivateKeyID,
		TokenURL:     creds.TokenURI,
		Scopes:       []string{readOnlyScope},
	}
}

// Sheet contains the retrieved cells in a Google sheet.
type Sheet struct {
	ColumnHeaders []string
	Rows          [][]string
}

// Read retrieves the contents of a given document and sheet within that
// document. The id of a Google sheet is the long string of characters in the
// URL when viewing that document. Returns ErrNoData for an empty sheet.
func (s *Sheets) Read(ctx context.Context, docID, sheetName string) (*Sheet, error) {
	valRange, err := s.srv.Spreadsheets.Values.Get(docID, sheetName).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if len(valRange.Values) == 0 {
		return nil, ErrNoData
	}

	return NewSheet(valRange.Values), nil
}

// NewSheet makes a Sheet from raw cell values, the first row of which are
// the column headers.
func NewSheet(values [][]any) *Sheet {
	if len(values) == 0 {
		return &Sheet{}
	}

	rows := make([][]string, len(values)-1)

	for i, row := range values[1:] {
		rows[i] = rowToStringSlice(row)
	}

	return &Sheet{
		ColumnHeaders: rowToStringSlice(values[0]),
		Rows:          rows,
	}
}

func rowToStringSlice(in []any) []string {
	out := make([]string, len(in))

	for i, cols := range in {
		out[i] = fmt.Sprint(cols)
	}

	return out
}

// Columns returns the values of the named columns for every row, in the order
// the names were given. Cells missing from the end of short rows are blank.
// Returns an error wrapping ErrMissingColumn if any name isn't a header.
func (s *Sheet) Columns(names ...string) ([][]string, error) {
	indexes := make([]int, len(names))

	for i, name := range names {
		indexes[i] = s.columnIndex(name)
		if indexes[i] < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	out := make([][]string, len(s.Rows))

	for r, row := range s.Rows {
		out[r] = make([]string, len(indexes))

		for i, ci := range indexes {
			if ci < len(row) {
				out[r][i] = row[ci]
			}
		}
	}

	return out, nil
}

func (s *Sheet) columnIndex(name string) int {
	for i, h := range s.ColumnHeaders {
		if h == name {
			return i
		}
	}

	return -1
}
