package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/review-cli/internal/docx"
	"github.com/sells-group/review-cli/internal/extract"
	"github.com/sells-group/review-cli/internal/model"
	"github.com/sells-group/review-cli/internal/pipeline"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <file.docx|dir>...",
	Short: "Extract review fields from Word documents into a workbook",
	Long:  "Reads every table of each .docx file, extracts one row of review fields per document, and writes the rows to an .xlsx workbook. Directories are expanded to the .docx files they contain.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, "extract")
		if err != nil {
			return err
		}
		defer env.Close()

		paths, err := expandDocxArgs(args)
		if err != nil {
			return err
		}
		return runExtract(ctx, env.Pipeline, paths, extractOutput, os.Stdout)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "extracted_data.xlsx", "output workbook path")
	rootCmd.AddCommand(extractCmd)
}

// expandDocxArgs resolves file and directory arguments to .docx paths.
// Word lock files (~$name.docx) are skipped.
func expandDocxArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "stat %s", arg)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "read dir %s", arg)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, "~$") || model.Fold(filepath.Ext(name)) != ".docx" {
				continue
			}
			paths = append(paths, filepath.Join(arg, name))
		}
	}
	if len(paths) == 0 {
		return nil, eris.New("no .docx files found")
	}
	return paths, nil
}

func runExtract(ctx context.Context, p *pipeline.Pipeline, paths []string, output string, out io.Writer) error {
	sources := make([]extract.Source, len(paths))
	for i, path := range paths {
		sources[i] = docx.FileSource{Path: path}
	}

	f, err := os.Create(output)
	if err != nil {
		return eris.Wrapf(err, "create %s", output)
	}

	res, err := p.Extract(ctx, pipeline.ExtractRequest{
		Sources:    sources,
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

	_, _ = fmt.Fprintf(out, "Extracted %d document(s) to %s\n", len(paths)-len(res.Failures), output)
	if len(res.Failures) > 0 {
		_, _ = fmt.Fprintf(out, "%d document(s) could not be read:\n", len(res.Failures))
		for _, fail := range res.Failures {
			_, _ = fmt.Fprintf(out, "  %s\n", fail.Error())
		}
	}
	if res.RunID != "" {
		_, _ = fmt.Fprintf(out, "Run: %s\n", res.RunID)
	}
	return nil
}
