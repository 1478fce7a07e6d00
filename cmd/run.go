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
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/enrich/config"
	"github.com/wtsi-hgi/enrich/selection"
	"github.com/wtsi-hgi/enrich/seqlib"
)

// options for this cmd.
var (
	runConfig   string
	runOutput   string
	countConfig string
	countOutput string
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Count and score a selection.",
	Long: `Count and score a selection.

Given a selection run file with the -c option, every library in the selection
is counted, then the counts are combined per timepoint, corrected for
nonspecific carryover if configured, scored, filtered and optionally
normalised to wild type.

Tables are written as TSV files to the output directory given by -o, or
ENRICH_OUTPUT_DIR, or the run file's "output directory", in that order of
preference:

  <output>/<selection>/<barcodes|variants>.tsv    final scores
  <output>/<selection>/filter_stats.txt           variant filter statistics
  <output>/pre-filter/<selection>/...             scores before filtering
  <output>/pre-wtnorm/<selection>/...             scores before wild type normalisation
  <output>/<library>/...                          per-library counts and filter statistics

An example command line could look like this:
$ enrich run -c selection.json -o /output/dir
`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.LoadSelection(runConfig)
		if err != nil {
			die(err)
		}

		out := outputDir(runOutput)
		createOutputDir(out)

		sel, err := selection.New(cfg, selection.Options{Output: out, Log: appLogger})
		if err != nil {
			die(err)
		}

		if err = sel.Calculate(); err != nil {
			die(err)
		}

		if err = sel.WriteAll(); err != nil {
			die(err)
		}

		info("scored selection %s from %d libraries", sel.Name(), len(sel.Libraries()))
	},
}

// countCmd represents the count command.
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count a single library.",
	Long: `Count a single library.

Given a library run file with the -c option, the library's reads are filtered
and counted per barcode and/or per variant, and the count tables and filter
statistics are written to <output>/<library>/.

The output directory is chosen as for the run sub-command.
`,
	Run: func(_ *cobra.Command, _ []string) {
		cfg, err := config.LoadLibrary(countConfig)
		if err != nil {
			die(err)
		}

		out := outputDir(countOutput)
		createOutputDir(out)

		lib, err := seqlib.FromConfig(cfg, seqlib.Options{Output: out, Log: appLogger})
		if err != nil {
			die(err)
		}

		if err = lib.Calculate(); err != nil {
			die(err)
		}

		if err = lib.WriteAll(); err != nil {
			die(err)
		}

		info("counted %s library %s", lib.Kind(), lib.Name())
	},
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(countCmd)

	// flags specific to these sub-commands
	runCmd.Flags().StringVarP(&runConfig, configFlag, "c", "",
		"path to selection run file")
	markFlagRequired(runCmd, configFlag)
	runCmd.Flags().StringVarP(&runOutput, outputFlag, "o", "",
		"output directory")

	countCmd.Flags().StringVarP(&countConfig, configFlag, "c", "",
		"path to library run file")
	markFlagRequired(countCmd, configFlag)
	countCmd.Flags().StringVarP(&countOutput, outputFlag, "o", "",
		"output directory")
}
