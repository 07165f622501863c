// Command statement-splitter drives the statement processing pipeline from
// the command line, standing in for the task dispatcher that invokes the
// library in production.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corpfin/statement-splitter/internal/config"
	"github.com/corpfin/statement-splitter/internal/logging"
	"github.com/corpfin/statement-splitter/internal/pipeline"
)

const version = "1.0.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "statement-splitter",
		Short: "Split a multi-cardholder statement into per-cardholder PDFs and import files",
		Long: `statement-splitter ingests a multi-cardholder credit-card statement PDF
together with its tabular transaction export, and produces one PDF extract
and one coded-import CSV per cardholder, reconciled by name.`,
		SilenceUsage: true,
	}
	root.AddCommand(processCmd(), versionCmd())
	return root
}

func processCmd() *cobra.Command {
	var (
		pdfPath   string
		excelPath string
		period    string
		runID     string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process one statement pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.OutputRoot = outDir
			}

			log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

			p := pipeline.New(log, pipeline.Options{
				VendorCode:   cfg.VendorCode,
				LineTypeCode: cfg.LineTypeCode,
				JCCompany:    cfg.JCCompany,
				RefPrefix:    cfg.RefPrefix,
				SkipMarkers:  cfg.SkipMarkers,
				OutputRoot:   cfg.OutputRoot,
			})

			res, err := p.Process(context.Background(), pipeline.Input{
				PDFPath:   pdfPath,
				ExcelPath: excelPath,
				Period:    period,
				RunID:     runID,
			})
			if err != nil {
				return err
			}

			printResult(cmd, res)
			if !res.Validation.Clean() {
				return fmt.Errorf("validation found %d contamination finding(s); review before distribution",
					len(res.Validation.Findings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "master statement PDF path")
	cmd.Flags().StringVar(&excelPath, "excel", "", "tabular export XLSX path")
	cmd.Flags().StringVar(&period, "period", "", "statement period token used in references (e.g. 0625)")
	cmd.Flags().StringVar(&runID, "run-id", "", "run identifier (random when omitted)")
	cmd.Flags().StringVar(&outDir, "out", "", "output root directory (overrides OUTPUT_ROOT)")
	cmd.MarkFlagRequired("pdf")
	cmd.MarkFlagRequired("excel")
	cmd.MarkFlagRequired("period")

	return cmd
}

func printResult(cmd *cobra.Command, res *pipeline.Result) {
	out := cmd.OutOrStdout()

	if res.ClosingDate != nil {
		fmt.Fprintf(out, "Closing date: %s\n", res.ClosingDate.Format("2006-01-02"))
	}
	fmt.Fprintf(out, "Cardholders: %d (%d exact, %d approximate matches)\n",
		len(res.Groups), res.Summary.ExactMatches, res.Summary.ApproximateMatches)

	for _, g := range res.Groups {
		fmt.Fprintf(out, "  %-30s pages %d-%d  %3d txn  $%s\n",
			g.Name, g.Slice.Range.Start, g.Slice.Range.End, g.Count, g.Total.StringFixed(2))
	}

	if len(res.Summary.UnmatchedDocument) > 0 {
		fmt.Fprintf(out, "No transactions found for: %v\n", res.Summary.UnmatchedDocument)
	}
	if len(res.Summary.UnmatchedTabular) > 0 {
		fmt.Fprintf(out, "No statement section found for: %v\n", res.Summary.UnmatchedTabular)
	}
	if len(res.SkippedRows) > 0 {
		fmt.Fprintf(out, "Skipped rows:\n")
		for _, r := range res.SkippedRows {
			fmt.Fprintf(out, "  row %d: %s\n", r.RowNumber, r.Reason)
		}
	}
	for _, f := range res.Validation.Findings {
		fmt.Fprintf(out, "CONTAMINATION: %s's data found in %s's PDF (page %d)\n",
			f.Intruder, f.Owner, f.Page)
	}

	fmt.Fprintf(out, "Output: %s\n", res.PDFDir)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "statement-splitter v%s\n", version)
		},
	}
}
