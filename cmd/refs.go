package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-bamtail/internal/device"
	"github.com/deploymenttheory/go-bamtail/internal/parsers/bam"
)

var refsCmd = &cobra.Command{
	Use:   "refs FILE",
	Short: "List the reference sequences declared in a BAM header",
	Long: `List the reference sequence dictionary from the header section of a
BAM file: one line per reference with its index, name and length.

Examples:
  # List references as text
  bamtail refs sample.bam

  # List references as JSON
  bamtail refs --format json sample.bam`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRefs(args[0])
	},
}

func init() {
	rootCmd.AddCommand(refsCmd)
}

func runRefs(path string) error {
	cfg, err := device.LoadTailConfig()
	if err != nil {
		return err
	}

	f, err := device.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	refs, err := bam.ReadReferences(f, f.Size(), cfg.HeaderBudgetBytes)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		line, err := json.Marshal(refs)
		if err != nil {
			return err
		}
		fmt.Println(string(line))
		return nil
	}
	for i, ref := range refs {
		fmt.Printf("%d\t%s\t%d\n", i, ref.Name, ref.Length)
	}
	return nil
}
