// Package pipeline runs one statement pair end to end: tabular extraction,
// document segmentation and slicing, reconciliation, artifact generation,
// and post-slice validation. It is the library entry point called by the
// external task dispatcher, once per uploaded statement.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/corpfin/statement-splitter/internal/extractor"
	"github.com/corpfin/statement-splitter/internal/models"
	"github.com/corpfin/statement-splitter/internal/reconcile"
	"github.com/corpfin/statement-splitter/internal/segmenter"
	"github.com/corpfin/statement-splitter/internal/tabular"
	"github.com/corpfin/statement-splitter/internal/writer"
)

// Options configure one pipeline instance.
type Options struct {
	VendorCode   string
	LineTypeCode string
	JCCompany    string
	RefPrefix    string
	SkipMarkers  []string
	// OutputRoot is the directory under which the per-run directory is
	// created.
	OutputRoot string
}

// Input identifies one statement pair to process.
type Input struct {
	PDFPath   string
	ExcelPath string
	// Period is the caller-supplied token (e.g. "0625") used in reference
	// string generation.
	Period string
	// RunID isolates this invocation's output directory. Empty means a
	// fresh random ID; reusing an ID clears that run's directory first, so
	// a retry never merges with partial output.
	RunID string
}

// Result is the structured outcome of one invocation.
type Result struct {
	RunID         string                       `json:"runId"`
	Groups        []models.CardholderGroup     `json:"groups"`
	ClosingDate   *time.Time                   `json:"closingDate"`
	Summary       models.ReconciliationSummary `json:"summary"`
	Validation    models.ValidationReport      `json:"validation"`
	SkippedRows   []models.SkippedRow          `json:"skippedRows"`
	ImportFiles   map[string]string            `json:"importFiles"`   // cardholder name -> path
	TemplateFiles map[string]string            `json:"templateFiles"` // cardholder name -> path
	PDFDir        string                       `json:"pdfDir"`
	CSVDir        string                       `json:"csvDir"`
}

// Pipeline processes statement pairs. All state is per-invocation; one
// Pipeline may be used from multiple goroutines as long as each call uses a
// distinct run ID.
type Pipeline struct {
	log  zerolog.Logger
	opts Options
}

// New returns a Pipeline.
func New(log zerolog.Logger, opts Options) *Pipeline {
	return &Pipeline{log: log, opts: opts}
}

// Process runs the three components strictly in sequence; each depends on
// the previous one's full output.
func (p *Pipeline) Process(ctx context.Context, in Input) (*Result, error) {
	runID := in.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := p.log.With().Str("run", runID).Logger()

	pdfDir, csvDir, err := p.prepareDirs(runID)
	if err != nil {
		return nil, err
	}

	// Tabular export first: its groups feed reconciliation.
	ext, err := tabular.New(log).ExtractFile(in.ExcelPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: extract export: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdfExt := extractor.New(log)
	doc, err := pdfExt.ExtractText(in.PDFPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read statement pdf: %w", err)
	}

	seg := segmenter.New(log, p.opts.SkipMarkers)
	segRes := seg.FindRanges(doc.Pages, doc.Failed)
	slices, err := seg.Slice(in.PDFPath, pdfDir, segRes)
	if err != nil {
		return nil, fmt.Errorf("pipeline: slice pdf: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := reconcile.New(log, reconcile.Options{
		VendorCode: p.opts.VendorCode,
		TypeCode:   p.opts.LineTypeCode,
		JCCompany:  p.opts.JCCompany,
		RefPrefix:  p.opts.RefPrefix,
	})
	groups, summary := rec.Reconcile(slices, ext.Groups, in.Period)

	res := &Result{
		RunID:         runID,
		Groups:        groups,
		ClosingDate:   segRes.ClosingDate,
		Summary:       summary,
		SkippedRows:   ext.Skipped,
		ImportFiles:   make(map[string]string),
		TemplateFiles: make(map[string]string),
		PDFDir:        pdfDir,
		CSVDir:        csvDir,
	}

	if err := p.writeArtifacts(groups, csvDir, res); err != nil {
		return nil, err
	}

	// Validation always runs, after slicing. Findings are reported per
	// cardholder; the caller decides whether to halt distribution.
	res.Validation = seg.Validate(slices, func(path string) ([]string, error) {
		d, err := pdfExt.ExtractText(path)
		if err != nil {
			return nil, err
		}
		return d.Pages, nil
	})

	log.Info().
		Int("cardholders", len(groups)).
		Int("importFiles", len(res.ImportFiles)).
		Bool("clean", res.Validation.Clean()).
		Msg("statement processed")

	return res, nil
}

// prepareDirs creates the isolated per-run output directories, clearing any
// previous attempt for the same run ID.
func (p *Pipeline) prepareDirs(runID string) (pdfDir, csvDir string, err error) {
	runDir := filepath.Join(p.opts.OutputRoot, runID)
	if err := os.RemoveAll(runDir); err != nil {
		return "", "", fmt.Errorf("pipeline: clear run dir %q: %w", runDir, err)
	}
	pdfDir = filepath.Join(runDir, "pdfs")
	csvDir = filepath.Join(runDir, "csvs")
	for _, d := range []string{pdfDir, csvDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", "", fmt.Errorf("pipeline: create %q: %w", d, err)
		}
	}
	return pdfDir, csvDir, nil
}

// writeArtifacts emits the coded-import file and coding template for every
// cardholder that reconciled to at least one transaction.
func (p *Pipeline) writeArtifacts(groups []models.CardholderGroup, csvDir string, res *Result) error {
	iw := &writer.ImportWriter{}
	tw := &writer.TemplateWriter{}

	for _, g := range groups {
		if g.Import == nil {
			continue
		}
		base := segmenter.SliceFilename(g.Name, res.ClosingDate)
		base = base[:len(base)-len(".pdf")]

		importPath := filepath.Join(csvDir, base+".csv")
		if err := iw.WriteToFile(importPath, g.Import); err != nil {
			return fmt.Errorf("pipeline: import file for %q: %w", g.Name, err)
		}
		res.ImportFiles[g.Name] = importPath

		templatePath := filepath.Join(csvDir, base+" coding.csv")
		if err := tw.WriteToFile(templatePath, g.Transactions); err != nil {
			return fmt.Errorf("pipeline: coding template for %q: %w", g.Name, err)
		}
		res.TemplateFiles[g.Name] = templatePath
	}
	return nil
}
