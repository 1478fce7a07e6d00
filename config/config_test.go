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

package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-hgi/enrich/filter"
	"github.com/wtsi-hgi/enrich/types"
)

const filePerm = 0644

func TestConfig(t *testing.T) {
	Convey("Given a full set of env vars, you can make a config", t, func() {
		testPath := "/path"
		testSheetID := "sheetid"
		testUser := "user"
		testPass := "pass"
		testHost := "host"
		testPort := "1234"
		testDBName := "db"
		testOutput := "/out"

		t.Setenv(EnvVarCreds, testPath)
		t.Setenv(EnvVarSheet, testSheetID)
		t.Setenv(EnvVarUser, testUser)
		t.Setenv(EnvVarPass, testPass)
		t.Setenv(EnvVarHost, testHost)
		t.Setenv(EnvVarPort, testPort)
		t.Setenv(EnvVarDBName, testDBName)
		t.Setenv(EnvVarOutputDir, testOutput)

		config := FromEnv()
		So(config, ShouldNotBeNil)
		So(config.CredentialsPath, ShouldEqual, testPath)
		So(config.SheetID, ShouldEqual, testSheetID)
		So(config.User, ShouldEqual, testUser)
		So(config.Password, ShouldEqual, testPass)
		So(config.Host, ShouldEqual, testHost)
		So(config.Port, ShouldEqual, testPort)
		So(config.DBName, ShouldEqual, testDBName)
		So(config.OutputDir, ShouldEqual, testOutput)
		So(config.RequireDB(), ShouldBeNil)
		So(config.RequireSheets(), ShouldBeNil)
		So(config.FormatDSN(), ShouldStartWith, "user:pass@tcp(host:1234)/db")

		Convey("Without a full set of env vars, the requirements fail", func() {
			os.Setenv(EnvVarUser, "")
			config := FromEnv()
			So(config.RequireDB(), ShouldEqual, ErrMissingEnvs)
			So(config.RequireSheets(), ShouldBeNil)

			os.Setenv(EnvVarUser, "user")
			os.Setenv(EnvVarCreds, "")
			config = FromEnv()
			So(config.RequireDB(), ShouldBeNil)
			So(config.RequireSheets(), ShouldEqual, ErrMissingEnvs)
		})

		Convey("You can load values from an .env file", func() {
			os.Unsetenv(EnvVarUser)

			origDir, err := os.Getwd()
			So(err, ShouldBeNil)

			defer func() {
				os.Chdir(origDir)
			}()

			dir := t.TempDir()
			err = os.Chdir(dir)
			So(err, ShouldBeNil)

			config := FromEnv()
			So(config.RequireDB(), ShouldEqual, ErrMissingEnvs)

			err = os.WriteFile(".env",
				[]byte(EnvVarUser+"=fileuser\n"+EnvVarDBName+"=filedb"), filePerm)
			So(err, ShouldBeNil)

			config = FromEnv()
			So(config.RequireDB(), ShouldBeNil)
			So(config.User, ShouldEqual, "fileuser")
			So(config.CredentialsPath, ShouldEqual, testPath)
			So(config.DBName, ShouldEqual, testDBName)
		})
	})
}

const selectionJSON = `{
	"name": "sel 1",
	"output directory": "/out",
	"barcodes": {"map file": "/maps/bc.txt"},
	"filters": {"min count": 5, "min rsquared": "0.5", "max barcode variation": 1, "chastity": true},
	"carryover correction": {"method": "nonsense", "position": 20},
	"normalize wt": true,
	"libraries": [
		{
			"name": "input",
			"timepoint": 0,
			"fastq": {"forward": "/reads/t0.fq", "start": 2, "length": 18},
			"barcodes": {"min count": 3},
			"wild type": {"sequence": "ACGT", "coding": false},
			"filters": {"min quality": 20, "chastity": true, "min count": 2},
			"report filtered reads": true
		},
		{
			"name": "selected",
			"timepoint": 2,
			"fastq": {"reverse": "/reads/t2.fq"},
			"barcodes": {},
			"wild type": {"sequence": "ACGT", "reference offset": 3},
			"filters": {}
		}
	]
}`

const selectionYAML = `name: sel2
libraries:
  - name: lib
    timepoint: 0
    fastq:
      forward: reads.fq
    filters:
      avg quality: 25.5
      max mutations: 2
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestRunFiles(t *testing.T) {
	Convey("You can load a selection from a JSON run file", t, func() {
		s, err := LoadSelection(writeFile(t, "sel.json", selectionJSON))
		So(err, ShouldBeNil)
		So(s.Name, ShouldEqual, "sel 1")
		So(s.OutputDir, ShouldEqual, "/out")
		So(s.MapFile(), ShouldEqual, "/maps/bc.txt")
		So(s.NormalizeWT, ShouldBeTrue)
		So(s.Carryover, ShouldNotBeNil)
		So(s.Carryover.Method, ShouldEqual, "nonsense")
		So(s.Carryover.Position, ShouldEqual, 20)
		So(len(s.Libraries), ShouldEqual, 2)

		input := s.Libraries[0]
		So(input.Name, ShouldEqual, "input")
		So(*input.Timepoint, ShouldEqual, 0)
		So(input.FASTQ.Start, ShouldEqual, 2)
		So(input.FASTQ.Length, ShouldEqual, 18)
		So(input.Barcodes.MinCount, ShouldEqual, 3)
		So(input.MapFile(), ShouldEqual, "")
		So(input.WildType.Sequence, ShouldEqual, "ACGT")
		So(input.ReportFilteredReads, ShouldBeTrue)

		path, reverse := input.FASTQ.Path()
		So(path, ShouldEqual, "/reads/t0.fq")
		So(reverse, ShouldBeFalse)

		selected := s.Libraries[1]
		So(*selected.Timepoint, ShouldEqual, 2)
		So(selected.WildType.ReferenceOffset, ShouldEqual, 3)

		path, reverse = selected.FASTQ.Path()
		So(path, ShouldEqual, "/reads/t2.fq")
		So(reverse, ShouldBeTrue)

		Convey("And convert its filters, getting back unknown keys", func() {
			rf, unknown, err := input.ReadFilters(4)
			So(err, ShouldBeNil)
			So(rf, ShouldResemble, filter.Read{MinQuality: 20, Chastity: true, MaxMutations: 4})
			So(unknown, ShouldResemble, []string{"min count"})

			rf, unknown, err = selected.ReadFilters(4)
			So(err, ShouldBeNil)
			So(rf.MaxMutations, ShouldEqual, 4)
			So(unknown, ShouldBeNil)

			vf, unknown, err := s.VariantFilters()
			So(err, ShouldBeNil)
			So(vf.MinCount, ShouldEqual, 5)
			So(vf.MinRSquared, ShouldEqual, 0.5)
			So(vf.MaxBarcodeVariation, ShouldEqual, 1)
			So(vf.MinInputCount, ShouldEqual, 0)
			So(unknown, ShouldResemble, []string{"chastity"})
		})

		Convey("And save it as a YAML run file that loads the same", func() {
			path := filepath.Join(t.TempDir(), "saved.yml")
			So(SaveSelection(path, s), ShouldBeNil)

			saved, err := LoadSelection(path)
			So(err, ShouldBeNil)
			So(saved.Name, ShouldEqual, s.Name)
			So(saved.MapFile(), ShouldEqual, s.MapFile())
			So(saved.Carryover, ShouldResemble, s.Carryover)
			So(saved.NormalizeWT, ShouldBeTrue)
			So(len(saved.Libraries), ShouldEqual, 2)
			So(saved.Libraries[0].FASTQ, ShouldResemble, input.FASTQ)
			So(saved.Libraries[0].WildType, ShouldResemble, input.WildType)
			So(*saved.Libraries[1].Timepoint, ShouldEqual, 2)

			vf, _, err := saved.VariantFilters()
			So(err, ShouldBeNil)
			So(vf.MinCount, ShouldEqual, 5)
		})

		Convey("Invalid filter values are config errors", func() {
			s.Filters["min count"] = "lots"

			_, _, err := s.VariantFilters()
			So(errors.Is(err, types.ErrInvalidValue), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "'min count' (lots) [sel 1]")

			input.Filters["min quality"] = -1
			_, _, err = input.ReadFilters(4)
			So(errors.Is(err, types.ErrInvalidValue), ShouldBeTrue)
		})
	})

	Convey("Without filters, variant filters default to removing nothing", t, func() {
		s := &Selection{Name: "s"}
		vf, unknown, err := s.VariantFilters()
		So(err, ShouldBeNil)
		So(unknown, ShouldBeNil)
		So(math.IsNaN(vf.MaxBarcodeVariation), ShouldBeTrue)
		So(vf.Active(), ShouldBeNil)
	})

	Convey("You can load a YAML run file", t, func() {
		s, err := LoadSelection(writeFile(t, "sel.yml", selectionYAML))
		So(err, ShouldBeNil)
		So(s.Name, ShouldEqual, "sel2")

		rf, _, err := s.Libraries[0].ReadFilters(1)
		So(err, ShouldBeNil)
		So(rf.AvgQuality, ShouldEqual, 25.5)
		So(rf.MaxMutations, ShouldEqual, 2)
	})

	Convey("You can load a single library run file", t, func() {
		l, err := LoadLibrary(writeFile(t, "lib.json",
			`{"name": "lib", "timepoint": 1, "fastq": {"forward": "r.fq"}, "barcodes": {"map file": "m.txt"}}`))
		So(err, ShouldBeNil)
		So(l.MapFile(), ShouldEqual, "m.txt")
		So(l.WildType, ShouldBeNil)
	})

	Convey("Incomplete libraries are config errors", t, func() {
		for content, want := range map[string]error{
			`{"name": "lib", "fastq": {"forward": "r.fq"}}`:                                    types.ErrMissingKey,
			`{"name": "lib", "timepoint": -1, "fastq": {"forward": "r.fq"}}`:                   types.ErrNegativeTimepoint,
			`{"name": "lib", "timepoint": 0}`:                                                  types.ErrMissingKey,
			`{"name": "lib", "timepoint": 0, "fastq": {"forward": "a.fq", "reverse": "b.fq"}}`: types.ErrInvalidValue,
		} {
			_, err := LoadLibrary(writeFile(t, "lib.json", content))
			So(errors.Is(err, want), ShouldBeTrue)

			var ce *types.ConfigError
			So(errors.As(err, &ce), ShouldBeTrue)
			So(ce.Component, ShouldEqual, "lib")
		}

		_, err := LoadSelection(writeFile(t, "sel.json", `{"name": "s"}`))
		So(errors.Is(err, types.ErrMissingKey), ShouldBeTrue)

		_, err = LoadSelection(filepath.Join(t.TempDir(), "missing.json"))
		So(errors.Is(err, types.ErrUnreadable), ShouldBeTrue)
	})
}

const credentialsJSON = `{
	"type": "service_account",
	"project_id": "projectID",
	"private_key_id": "keyID",
	"private_key": "keyContent\n",
	"client_email": "user@project.iam.gserviceaccount.com",
	"client_id": "12345",
	"token_uri": "https://oauth2.googleapis.com/token"
}`

func TestCredentials(t *testing.T) {
	Convey("Given a service account key file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "credentials.json")
		So(os.WriteFile(path, []byte(credentialsJSON), filePerm), ShouldBeNil)

		Convey("You can load its credentials", func() {
			creds, err := LoadCredentials(path)
			So(err, ShouldBeNil)
			So(creds, ShouldResemble, &Credentials{
				Type:         "service_account",
				ProjectID:    "projectID",
				PrivateKeyID: "keyID",
				PrivateKey:   "keyContent\n",
				ClientEmail:  "user@project.iam.gserviceaccount.com",
				TokenURI:     "https://oauth2.googleapis.com/token",
			})
		})

		Convey("You can load them via a Config that names the file and a sheet", func() {
			c := &Config{CredentialsPath: path, SheetID: "sheetID"}
			creds, err := c.Credentials()
			So(err, ShouldBeNil)
			So(creds.ClientEmail, ShouldEqual, "user@project.iam.gserviceaccount.com")

			c.SheetID = ""
			_, err = c.Credentials()
			So(err, ShouldEqual, ErrMissingEnvs)
		})

		Convey("Missing, unparsable or incomplete files are ConfigErrors", func() {
			var cerr *types.ConfigError

			_, err := LoadCredentials(filepath.Join(dir, "missing.json"))
			So(errors.As(err, &cerr), ShouldBeTrue)

			bad := filepath.Join(dir, "bad.json")
			So(os.WriteFile(bad, []byte("{"), filePerm), ShouldBeNil)
			_, err = LoadCredentials(bad)
			So(errors.As(err, &cerr), ShouldBeTrue)

			incomplete := filepath.Join(dir, "incomplete.json")
			So(os.WriteFile(incomplete, []byte(`{"client_email": "a@b.com", "token_uri": "t"}`), filePerm), ShouldBeNil)
			_, err = LoadCredentials(incomplete)
			So(errors.Is(err, types.ErrMissingKey), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "private_key")
		})
	})
}
