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

	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/enrich/config"
	"github.com/wtsi-hgi/enrich/sheets"
	"github.com/wtsi-hgi/enrich/table"
)

const runFileExt = ".json"

// options for this cmd.
var (
	designOutput    string
	designSelection string
)

// designCmd represents the design command.
var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Generate run files from a Google sheet.",
	Long: `Generate run files from a Google sheet.

The spreadsheet given by ENRICH_SPREADSHEET_ID is read using the service
account credentials file given by ENRICH_CREDENTIALS_FILE (either may be set
in a .env file in the current directory).

It must have a "Selections" sheet with one row per selection, and a
"Libraries" sheet with one row per library naming the selection it belongs to.

A run file is written for each selection (or just the one named with
--selection) to the directory given by -o, named after the selection. These
can be passed to the run sub-command.
`,
	Run: func(_ *cobra.Command, _ []string) {
		c := config.FromEnv()

		creds, err := c.Credentials()
		if err != nil {
			die(err)
		}

		ctx := context.Background()

		s, err := sheets.New(ctx, creds)
		if err != nil {
			die(err)
		}

		sels, err := s.Design(ctx, c.SheetID)
		if err != nil {
			die(err)
		}

		createOutputDir(designOutput)

		written := 0

		for _, sel := range sels {
			if designSelection != "" && sel.Name != designSelection {
				continue
			}

			path := filepath.Join(designOutput, table.Sanitize(sel.Name)+runFileExt)

			if err = config.SaveSelection(path, sel); err != nil {
				die(err)
			}

			cliPrint("%s\n", path)

			written++
		}

		if written == 0 {
			warn("no selections were found to write run files for")
		}
	},
}

func init() {
	RootCmd.AddCommand(designCmd)

	designCmd.Flags().StringVarP(&designOutput, outputFlag, "o", "",
		"output directory for run files")
	markFlagRequired(designCmd, outputFlag)
	designCmd.Flags().StringVar(&designSelection, "selection", "",
		"only write the run file for this selection")
}
