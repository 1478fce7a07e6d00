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

package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/enrich/config"
	"github.com/wtsi-hgi/enrich/scoredb"
	"github.com/wtsi-hgi/enrich/table"
)

// options for this cmd.
var (
	exportTables    []string
	exportSelection string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scores to MySQL.",
	Long: `Export scores to MySQL.

Given score tables written by the run sub-command with -t, and the name of
their selection with -s, the rows of each table are loaded in to the
enrich_scores table of a MySQL database, replacing any previously exported
scores of the same selection and kind. The kind is taken from the file name,
eg. variants for variants.tsv.

The database connection details are taken from the ENRICH_SQL_USER,
ENRICH_SQL_PASS, ENRICH_SQL_HOST, ENRICH_SQL_PORT and ENRICH_SQL_DB
environment variables, which may also be set in a .env file in the current
directory.

An example command line could look like this:
$ enrich export -s "my selection" -t /output/dir/my_selection/variants.tsv
`,
	Run: func(_ *cobra.Command, _ []string) {
		c := config.FromEnv()
		if err := c.RequireDB(); err != nil {
			die(err)
		}

		db, err := scoredb.New(c.FormatDSN())
		if err != nil {
			die(err)
		}

		defer db.Close()

		ctx := context.Background()

		if err = db.CreateSchema(ctx); err != nil {
			die(err)
		}

		for _, path := range exportTables {
			kind := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

			t, errr := table.ReadFile(path, kind)
			if errr != nil {
				die(errr)
			}

			n, errr := db.Export(ctx, exportSelection, t)
			if errr != nil {
				dief("exporting %s: %s", path, errr)
			}

			info("exported %d %s scores for selection %s", n, kind, exportSelection)
		}
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVarP(&exportTables, "tables", "t", nil,
		"paths to score tables")
	markFlagRequired(exportCmd, "tables")
	exportCmd.Flags().StringVarP(&exportSelection, "selection", "s", "",
		"name of the selection the tables belong to")
	markFlagRequired(exportCmd, "selection")
}
