package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global output flags only
	quiet        bool
	outputFormat string
	jobs         int
)

var rootCmd = &cobra.Command{
	Use:   "bamtail [flags] FILE...",
	Short: "Report the last alignment position in position-sorted BAM files",
	Long: `bamtail reports the reference name and position of the most recent
alignment written to a BGZF-compressed BAM file, without decompressing
the file from the start and without an index.

It is intended for monitoring BAM files that are still being written by
an active pipeline: the final complete BGZF blocks are located by
scanning backward from the end of the file and the last complete
alignment record is reported as "<name>:<position>" (1-based), or
"unmapped" when the final record has no reference.

Commands:
  refs        List the reference sequences declared in a BAM header`,
	Version:       "1.1.0",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTail(args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Only global output control flags
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output of filenames")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")
	rootCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files to process in parallel (0 uses config)")
}
