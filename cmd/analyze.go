package main

import (
	"context"
	"encoding/json"
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
	analyzeColumn string
	analyzeRule   string
	analyzeJSON   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.xlsx>",
	Short: "Count rows that answer yes in a column",
	Long: "Counts rows of a workbook whose column answers yes. By default only values that are exactly \"y\" or \"yes\" " +
		"(any case, surrounding spaces ignored) count. This is stricter than the spreadsheet tool the forms came from, " +
		"which counted any value containing a \"y\" such as \"Yes, partly\"; pass --rule contains to reproduce those counts.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		return runAnalyze(ctx, env.Pipeline, args[0], os.Stdout)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeColumn, "column", "", `column to count (default "Problem identified?")`)
	analyzeCmd.Flags().StringVar(&analyzeRule, "rule", "exact", "which values count as yes: exact (y/yes only) or contains (any value containing y)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, p *pipeline.Pipeline, path string, out io.Writer) error {
	rule, ok := reconcile.ParseAnswerRule(analyzeRule)
	if !ok {
		return eris.Errorf("unknown rule %q (want exact or contains)", analyzeRule)
	}

	res, err := p.Analyze(ctx, pipeline.AnalyzeRequest{
		Source: workbook.FileSource{Path: path},
		Column: analyzeColumn,
		Rule:   rule,
	})
	if err != nil {
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err = fmt.Fprintf(out, "Number of 'Yes' in %q: %d (of %d rows)\n", res.Column, res.Count, res.Rows)
	return err
}
