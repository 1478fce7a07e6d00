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

// package cmd is the cobra file that enables subcommands and handles
// command-line args.

package cmd

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/wtsi-hgi/enrich/config"
)

const (
	dirPerm    = 0755
	configFlag = "config"
	outputFlag = "output"
)

// appLogger is used for logging events in our commands.
var appLogger = log15.New()

// global options.
var verbose bool

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "enrich",
	Short: "enrich scores variants from deep mutational scanning experiments",
	Long: `enrich scores variants from deep mutational scanning experiments.

Reads from sequencing libraries taken at two or more timepoints of a selection
are counted, per barcode and/or per variant, and each barcode or variant is
scored by how its frequency relative to the input changes over time.

Describe your selection and its libraries in a JSON or YAML run file, then use
the "run" sub-command to count and score everything. The "count" sub-command
counts a single library, "design" generates run files from a Google sheet, and
"export" loads scores in to a MySQL database.
`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		lvl := log15.LvlInfo
		if verbose {
			lvl = log15.LvlDebug
		}

		appLogger.SetHandler(log15.LvlFilterHandler(lvl, log15.StderrHandler))
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once to
// the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		die(err)
	}
}

func init() {
	// set up logging to stderr
	appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlInfo, log15.StderrHandler))

	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log debug messages, including details of filtered reads")
}

// outputDir returns the flag value if set, otherwise ENRICH_OUTPUT_DIR. A
// blank result means the run file's own output directory will be used.
func outputDir(flag string) string {
	if flag != "" {
		return flag
	}

	return config.FromEnv().OutputDir
}

// createOutputDir creates the directory if it doesn't already exist.
func createOutputDir(dir string) {
	if dir == "" {
		return
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		die(err)
	}
}

func markFlagRequired(cmd *cobra.Command, flag string) {
	if err := cmd.MarkFlagRequired(flag); err != nil {
		die(err)
	}
}

// cliPrint outputs the message to STDOUT.
func cliPrint(msg string, a ...interface{}) {
	fmt.Fprintf(os.Stdout, msg, a...)
}

// info is a convenience to log a message at the Info level.
func info(msg string, a ...interface{}) {
	appLogger.Info(fmt.Sprintf(msg, a...))
}

// warn is a convenience to log a message at the Warn level.
func warn(msg string, a ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, a...))
}

// die is a convenience to log an error at the Error level and exit non zero.
func die(err error) {
	appLogger.Error(err.Error())
	os.Exit(1)
}

// dief is like die, but takes a message with placeholders.
func dief(msg string, a ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}
