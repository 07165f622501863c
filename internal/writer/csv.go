// Package writer emits the per-cardholder flat-file artifacts: the
// coded-import file consumed by the accounting system, and the coding
// template a human coder fills in.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/corpfin/statement-splitter/internal/models"
)

// recType tags distinguish header and line rows in the import file.
const (
	recTypeHeader = "APHB"
	recTypeLine   = "APLB"
)

// ImportWriter writes coded-import files. Generated files are never edited;
// corrections happen upstream and the file is regenerated.
type ImportWriter struct{}

// WriteToFile writes one cardholder's import file at path.
func (w *ImportWriter) WriteToFile(path string, imp *models.CodedImportFile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writer: create %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, imp)
}

// Write writes the header record followed by one line record per
// transaction, preserving source row order.
func (w *ImportWriter) Write(out io.Writer, imp *models.CodedImportFile) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	header := []string{
		recTypeHeader,
		imp.Header.VendorCode,
		imp.Header.Total.StringFixed(2),
		imp.Header.Reference,
		"", "", "", "", "", "",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writer: header record: %w", err)
	}

	for i, line := range imp.Lines {
		row := []string{
			recTypeLine,
			line.TypeCode,
			line.Amount.StringFixed(2),
			line.GLAccount,
			"",
			line.JCCompany,
			line.Job,
			line.Phase,
			line.CostType,
			line.Description,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writer: line record %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// TemplateWriter writes the coding template: transaction details plus blank
// coding columns for the human coder.
type TemplateWriter struct{}

var templateHeader = []string{
	"Transaction Date", "Posting Date", "Description", "Merchant",
	"Amount", "GL Account", "Job Code", "Phase", "Cost Type", "Notes",
}

// WriteToFile writes the coding template for one cardholder's transactions.
func (w *TemplateWriter) WriteToFile(path string, txns []models.TransactionRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writer: create %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, txns)
}

// Write writes the template header and one row per transaction.
func (w *TemplateWriter) Write(out io.Writer, txns []models.TransactionRecord) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if err := cw.Write(templateHeader); err != nil {
		return fmt.Errorf("writer: template header: %w", err)
	}

	for _, t := range txns {
		row := []string{
			formatDate(t.TxnDate),
			formatDate(t.PostingDate),
			t.Description,
			t.Merchant,
			t.Amount.StringFixed(2),
			"", "", "", "", "",
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writer: template row %d: %w", t.RowNumber, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
