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
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/enrich/config"
	"golang.org/x/oauth2/jwt"
)

const (
	userPerms       = 0600
	credentialsJSON = `{
    "type": "service_account",
    "project_id": "projectID",
    "private_key_id": "keyID",
    "private_key": "keyContent\n",
    "client_email": "user@project.iam.gserviceaccount.com",
    "client_id": "12345",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_x509_cert_url": "https://www.googleapis.com/robot/v1/metadata/x509/project.iam.gserviceaccount.com",
    "universe_domain": "googleapis.com"
}`
)

func TestCredentials(t *testing.T) {
	Convey("Given service account credentials, you can make a read-only jwt.Config", t, func() {
		credPath := filepath.Join(t.TempDir(), "credentials.json")
		So(os.WriteFile(credPath, []byte(credentialsJSON), userPerms), ShouldBeNil)

		creds, err := config.LoadCredentials(credPath)
		So(err, ShouldBeNil)

		So(jwtConfig(creds), ShouldResemble, &jwt.Config{
			Email:        "user@project.iam.gserviceaccount.com",
			PrivateKey:   []byte("keyContent\n"),
			PrivateKeyID: "keyID",
			TokenURL:     "https://oauth2.googleapis.com/token",
			Scopes: []string{
				"https://www.googleapis.com/auth/spreadsheets.readonly",
			},
		})
	})
}

func TestSheet(t *testing.T) {
	Convey("Given raw sheet values", t, func() {
		sheet := NewSheet([][]any{
			{"a", "b", "c"},
			{"1", 2, true},
			{"x"},
		})

		So(sheet.ColumnHeaders, ShouldResemble, []string{"a", "b", "c"})
		So(sheet.Rows[0], ShouldResemble, []string{"1", "2", "true"})

		Convey("You can get specific columns, with short rows padded", func() {
			cols, err := sheet.Columns("c", "a")
			So(err, ShouldBeNil)
			So(cols, ShouldResemble, [][]string{{"true", "1"}, {"", "x"}})

			_, err = sheet.Columns("a", "foo")
			So(errors.Is(err, ErrMissingColumn), ShouldBeTrue)
		})
	})
}

func selectionsSheet() *Sheet {
	return NewSheet([][]any{
		{"selection", "map file", "min count", "min input count", "min rsquared",
			"max barcode variation", "carryover method", "carryover position", "normalize wt",
			"output directory"},
		{"sel1", "/maps/bc.txt", "5", "", "0.5", "", "nonsense", "20", "TRUE", "/out"},
		{"sel2"},
	})
}

func librariesSheet(rows ...[]any) *Sheet {
	header := []any{"selection", "library", "timepoint", "forward", "reverse", "start", "length",
		"barcoded", "map file", "barcode min count", "wild type", "coding", "reference offset",
		"min quality", "avg quality", "chastity", "max mutations", "report filtered reads"}

	return NewSheet(append([][]any{header}, rows...))
}

func TestDesign(t *testing.T) {
	Convey("Given selections and libraries sheets", t, func() {
		libs := librariesSheet(
			[]any{"sel1", "in", "0", "/r/t0.fq", "", "2", "18", "TRUE", "", "3", "ACGT", "FALSE", "",
				"20", "", "TRUE", "", "TRUE"},
			[]any{"sel2", "v0", "0", "", "/r/v0.fq", "", "", "", "", "", "ACGTAA", "TRUE", "3"},
			[]any{"sel1", "out", "2", "/r/t2.fq", "", "", "", "TRUE", "", "", "ACGT"},
		)

		Convey("You can design run configs for each selection", func() {
			sels, err := Design(selectionsSheet(), libs)
			So(err, ShouldBeNil)
			So(len(sels), ShouldEqual, 2)

			s1 := sels[0]
			So(s1.Name, ShouldEqual, "sel1")
			So(s1.MapFile(), ShouldEqual, "/maps/bc.txt")
			So(s1.Filters, ShouldResemble, map[string]any{"min count": 5.0, "min rsquared": 0.5})
			So(s1.Carryover, ShouldResemble, &config.Carryover{Method: "nonsense", Position: 20})
			So(s1.NormalizeWT, ShouldBeTrue)
			So(s1.OutputDir, ShouldEqual, "/out")
			So(len(s1.Libraries), ShouldEqual, 2)

			in := s1.Libraries[0]
			So(in.Name, ShouldEqual, "in")
			So(*in.Timepoint, ShouldEqual, 0)
			So(in.FASTQ, ShouldResemble, &config.FASTQ{Forward: "/r/t0.fq", Start: 2, Length: 18})
			So(in.Barcodes, ShouldResemble, &config.Barcodes{MinCount: 3})
			So(in.WildType, ShouldResemble, &config.WildType{Sequence: "ACGT"})
			So(in.Filters, ShouldResemble, map[string]any{"min quality": 20, "chastity": true})
			So(in.ReportFilteredReads, ShouldBeTrue)
			So(in.Validate(), ShouldBeNil)

			So(*s1.Libraries[1].Timepoint, ShouldEqual, 2)
			So(s1.Libraries[1].Filters, ShouldBeNil)

			s2 := sels[1]
			So(s2.Barcodes, ShouldBeNil)
			So(s2.Filters, ShouldBeNil)
			So(s2.Carryover, ShouldBeNil)
			So(len(s2.Libraries), ShouldEqual, 1)
			So(s2.Libraries[0].Barcodes, ShouldBeNil)
			So(s2.Libraries[0].WildType, ShouldResemble,
				&config.WildType{Sequence: "ACGTAA", Coding: true, ReferenceOffset: 3})

			Convey("Which can be saved as run files", func() {
				path := filepath.Join(t.TempDir(), "sel1.json")
				So(config.SaveSelection(path, s1), ShouldBeNil)

				loaded, err := config.LoadSelection(path)
				So(err, ShouldBeNil)
				So(loaded.Name, ShouldEqual, "sel1")
				So(len(loaded.Libraries), ShouldEqual, 2)
			})
		})

		Convey("Libraries must belong to a listed selection", func() {
			libs.Rows = append(libs.Rows, []string{"sel3", "x", "0"})
			_, err := Design(selectionsSheet(), libs)
			So(errors.Is(err, ErrMissingSelection), ShouldBeTrue)
		})

		Convey("Bad cells are reported with their row", func() {
			libs.Rows[1][2] = "soon"
			_, err := Design(selectionsSheet(), libs)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, `Libraries row 2: bad value "soon"`)
		})

		Convey("Selections must be unique and present", func() {
			sels := selectionsSheet()
			sels.Rows = append(sels.Rows, []string{"sel1"})
			_, err := Design(sels, libs)
			So(errors.Is(err, ErrDuplicate), ShouldBeTrue)

			_, err = Design(NewSheet([][]any{{"selection"}}), libs)
			So(err, ShouldEqual, ErrNoData)

			_, err = Design(selectionsSheet(), NewSheet([][]any{{"library"}}))
			So(err, ShouldEqual, ErrNoData)
		})
	})
}

func TestSheets(t *testing.T) {
	c := config.FromEnv("..")

	creds, err := c.Credentials()
	if err != nil {
		SkipConvey("skipping sheet tests without ENRICH_CREDENTIALS_FILE and ENRICH_SPREADSHEET_ID set", t, func() {})

		return
	}

	Convey("Given real service credentials, you can make a Sheets", t, func() {
		ctx := context.Background()
		sheets, err := New(ctx, creds)
		So(err, ShouldBeNil)
		So(sheets, ShouldNotBeNil)

		Convey("Which you can use to Read the contents of named sheets", func() {
			sheet, err := sheets.Read(ctx, c.SheetID, LibrariesSheet)
			So(err, ShouldBeNil)
			So(sheet.ColumnHeaders, ShouldContain, "library")
			So(len(sheet.Rows), ShouldBeGreaterThan, 0)

			_, err = sheets.Read(ctx, c.SheetID, "~invalid")
			So(err, ShouldNotBeNil)
		})

		Convey("Which you can use to design run configs", func() {
			sels, err := sheets.Design(ctx, c.SheetID)
			So(err, ShouldBeNil)
			So(len(sels), ShouldBeGreaterThan, 0)
		})
	})
}
