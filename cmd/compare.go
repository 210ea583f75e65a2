package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/review-cli/internal/pipeline"
	"github.com/sells-group/review-cli/internal/reconcile"
	"github.com/sells-group/review-cli/internal/workbook"
)

var (
	compareOutput string
	compareSheet  string
)

var compareCmd = &cobra.Command{
	Use:   "compare <file1.xlsx> <file2.xlsx>",
	Short: "Compare two extracted workbooks by module component",
	Long:  "Outer-joins two workbooks on the Module component column and writes a three-sheet report. Rows where both files answer yes to Problem identified? are highlighted.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "compare")
		if err != nil {
			return err
		}
		defer env.Close()

		return runCompare(ctx, env.Pipeline, args[0], args[1], compareOutput, os.Stdout)
	},
}

func init() {
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "comparison.xlsx", "output workbook path")
	compareCmd.Flags().StringVar(&compareSheet, "sheet", "", "sheet to read from each input (default first sheet)")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(ctx context.Context, p *pipeline.Pipeline, left, right, output string, out io.Writer) error {
	opts := workbook.ReadOptions{SheetName: compareSheet}

	f, err := os.Create(output)
	if err != nil {
		return eris.Wrapf(err, "create %s", output)
	}

	res, err := p.Compare(ctx, pipeline.CompareRequest{
		Left:       workbook.FileSource{Path: left, Options: opts},
		Right:      workbook.FileSource{Path: right, Options: opts},
		Output:     f,
		OutputName: output,
	})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = eris.Wrapf(cerr, "close %s", output)
	}
	if err != nil {
		_ = os.Remove(output)
		return err
	}

	switch {
	case eris.Is(res.Err, reconcile.ErrMissingKey):
		_, _ = fmt.Fprintf(out, "Warning: %s\n", reconcile.MissingKeyMsg)
	case res.Err != nil:
		_, _ = fmt.Fprintf(out, "Warning: %s\n", reconcile.MissingColumnMsg)
	default:
		_, _ = fmt.Fprintf(out, "Compared %d module component(s), %d highlighted\n", res.Joined.Len(), res.Highlighted())
	}
	if res.DroppedDuplicates > 0 {
		_, _ = fmt.Fprintf(out, "Dropped %d duplicate row(s)\n", res.DroppedDuplicates)
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", output)
	return nil
}
