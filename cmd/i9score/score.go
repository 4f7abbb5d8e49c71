package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"i9score/internal/catalog"
	"i9score/internal/decision"
	id "i9score/pkg/domain"
	"i9score/pkg/requestcontext"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <catalog.json|dir>...",
		Short: "Score extracted I-9 catalogs",
		Long: `Score one or more page catalogs. Directories contribute their *.json
files. Each catalog's document ID is its file name without the extension and
any trailing ".catalog".

Example:
  i9score score catalogs/ --format csv --out results.csv --summary
  i9score score emp-1.catalog.json --threshold 0.7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			showSummary, _ := cmd.Flags().GetBool("summary")
			strict, _ := cmd.Flags().GetBool("strict")

			if format != formatJSON && format != formatCSV {
				return fmt.Errorf("--format must be %q or %q", formatJSON, formatCSV)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			runID := id.NewRunID()
			ctx = requestcontext.WithRunID(ctx, runID)

			results, summary, err := runScore(ctx, a.service, args)
			if err != nil {
				return err
			}

			w := io.Writer(cmd.OutOrStdout())
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if format == formatCSV {
				err = decision.WriteCSV(w, results)
			} else {
				err = decision.WriteJSON(w, decision.NewBatchOutput(runID.String(), results, summary))
			}
			if err != nil {
				return fmt.Errorf("write results: %w", err)
			}

			if showSummary {
				printSummary(cmd.ErrOrStderr(), summary, results)
			}

			failed := countFailed(results)
			if strict && failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", formatJSON, "Output format: json or csv")
	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	cmd.Flags().Bool("summary", false, "Print a batch summary to stderr")
	cmd.Flags().Bool("strict", false, "Exit non-zero when any document fails")
	addConfigFlags(cmd)
	return cmd
}

// runScore loads every catalog and scores the ones that loaded. Results keep
// input path order; load failures are reported in place.
func runScore(ctx context.Context, svc *decision.Service, inputs []string) ([]decision.BatchResult, decision.Summary, error) {
	paths, err := catalog.Paths(inputs...)
	if err != nil {
		return nil, decision.Summary{}, err
	}

	results := make([]decision.BatchResult, len(paths))
	docs := make([]catalog.Document, 0, len(paths))
	slots := make([]int, 0, len(paths))
	for i, path := range paths {
		doc, err := catalog.Load(path)
		if err != nil {
			results[i] = svc.RecordFailure(ctx, catalog.DocumentID(path), err)
			continue
		}
		docs = append(docs, doc)
		slots = append(slots, i)
	}

	scored, summary := svc.EvaluateBatch(ctx, docs)
	for j, res := range scored {
		results[slots[j]] = res
	}
	return results, summary, nil
}

func countFailed(results []decision.BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func printSummary(w io.Writer, s decision.Summary, results []decision.BatchResult) {
	fmt.Fprintf(w, "Documents scored: %d of %d\n", s.Documents, len(results))
	for _, status := range []decision.Status{decision.StatusComplete, decision.StatusPartial, decision.StatusNoI9, decision.StatusError} {
		fmt.Fprintf(w, "  %-16s %d\n", status, s.ByStatus[status])
	}
	if failed := countFailed(results); failed > 0 {
		fmt.Fprintf(w, "  %-16s %d\n", "FAILED", failed)
	}
	if s.Documents > 0 {
		fmt.Fprintf(w, "Score: avg %.1f, min %d, max %d\n", s.AverageScore, s.MinScore, s.MaxScore)
	}
}
