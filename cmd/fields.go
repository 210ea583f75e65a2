package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/review-cli/internal/model"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the review fields extracted from each document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatFields(os.Stdout, model.DefaultFieldSpec())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

// formatFields writes the field labels and how their values are located.
func formatFields(out io.Writer, spec *model.FieldSpec) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tMETHOD")
	_, _ = fmt.Fprintln(w, "-----\t------")
	for _, f := range spec.Fields() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", f.Name, f.Method)
	}
	_ = w.Flush()
}
