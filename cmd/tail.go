package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/deploymenttheory/go-bamtail/internal/device"
	"github.com/deploymenttheory/go-bamtail/internal/parsers/bam"
	"github.com/deploymenttheory/go-bamtail/internal/services"
	"github.com/deploymenttheory/go-bamtail/internal/types"
)

// outcome collects one file's resolution so results print in argument
// order regardless of completion order.
type outcome struct {
	result types.TailResult
	refs   []types.Reference
	err    error
}

func runTail(paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	cfg, err := device.LoadTailConfig()
	if err != nil {
		return err
	}
	if jobs > 0 {
		cfg.Jobs = jobs
	}
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}

	outcomes := make([]outcome, len(paths))
	var g errgroup.Group
	g.SetLimit(cfg.Jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, refs, err := tailFile(path, cfg)
			outcomes[i] = outcome{result: res, refs: refs, err: err}
			// Per-file failures are reported individually and never
			// cancel sibling files.
			return nil
		})
	}
	g.Wait()

	failed := false
	for i, path := range paths {
		if err := printOutcome(path, &outcomes[i], len(paths) > 1); err != nil {
			return err
		}
		if outcomes[i].err != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more files failed")
	}
	return nil
}

// printOutcome renders one file's result in the selected output format.
// Text-mode render failures are folded into the outcome so the exit code
// reflects them.
func printOutcome(path string, o *outcome, multi bool) error {
	if outputFormat == "json" {
		line, err := json.Marshal(services.ReportTail(path, o.result, o.refs, o.err))
		if err != nil {
			return err
		}
		fmt.Println(string(line))
		return nil
	}

	if o.err == nil {
		line, err := services.FormatTail(o.result, o.refs)
		if err != nil {
			o.err = err
		} else {
			if multi && !quiet {
				fmt.Printf("%s: ", path)
			}
			fmt.Println(line)
			return nil
		}
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", path, o.err)
	return nil
}

// tailFile resolves one file end to end: open, build the reference
// catalog from the header section, resolve the tail.
func tailFile(path string, cfg *device.TailConfig) (types.TailResult, []types.Reference, error) {
	f, err := device.Open(path)
	if err != nil {
		return types.TailResult{}, nil, err
	}
	defer f.Close()

	refs, err := bam.ReadReferences(f, f.Size(), cfg.HeaderBudgetBytes)
	if err != nil {
		return types.TailResult{}, nil, err
	}

	res, err := services.ResolveTail(f, cfg)
	return res, refs, err
}
