// Package tabular reads the companion transaction export (XLSX), locates the
// header row dynamically, and yields normalized transaction records grouped
// by cardholder name. It is a pure read: malformed rows are skipped and
// reported, never fatal; only missing structural prerequisites abort.
package tabular

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/corpfin/statement-splitter/internal/models"
)

// ErrHeaderNotFound means no header row was recognized in the leading rows
// of the sheet. The export format has likely changed.
var ErrHeaderNotFound = errors.New("tabular: header row not found")

// MissingColumnsError reports required fields that could not be located in
// the header row.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "tabular: missing required columns: " + strings.Join(e.Missing, ", ")
}

// Extraction is the result of reading one export file.
type Extraction struct {
	// Groups maps normalized cardholder key ("FIRST LAST", uppercased) to
	// that cardholder's transactions in source row order.
	Groups map[string][]models.TransactionRecord
	// Skipped lists data rows that were excluded, with reasons.
	Skipped []models.SkippedRow
	// HeaderRow is the 1-based row the header was found on.
	HeaderRow int
}

// Extractor reads transaction exports. One Extractor serves one invocation;
// it keeps no state between calls so concurrent statement runs cannot
// cross-contaminate.
type Extractor struct {
	log zerolog.Logger
}

// New returns an Extractor that logs through the given logger.
func New(log zerolog.Logger) *Extractor {
	return &Extractor{log: log.With().Str("component", "tabular").Logger()}
}

// ExtractFile opens an XLSX export and extracts its transactions.
func (e *Extractor) ExtractFile(path string) (*Extraction, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open %q: %w", path, err)
	}
	defer f.Close()

	return e.Extract(f)
}

// Extract reads the active sheet of an open workbook.
func (e *Extractor) Extract(f *excelize.File) (*Extraction, error) {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("tabular: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("tabular: read sheet %q: %w", sheet, err)
	}

	headerRow, err := findHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	cols := mapHeaders(rows[headerRow-1])
	if missing := cols.missingRequired(); len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	e.log.Info().Int("headerRow", headerRow).Msg("mapped export columns")

	out := &Extraction{
		Groups:    make(map[string][]models.TransactionRecord),
		HeaderRow: headerRow,
	}

	for i := headerRow; i < len(rows); i++ {
		rowNum := i + 1
		row := rows[i]

		rec, skip := e.parseRow(row, rowNum, cols)
		if skip != nil {
			if skip.Reason != "" {
				out.Skipped = append(out.Skipped, *skip)
				e.log.Warn().Int("row", rowNum).Str("reason", skip.Reason).Msg("skipped row")
			}
			continue
		}

		key := models.CardholderKey(rec.FirstName, rec.LastName)
		out.Groups[key] = append(out.Groups[key], *rec)
	}

	e.log.Info().
		Int("cardholders", len(out.Groups)).
		Int("skipped", len(out.Skipped)).
		Msg("export extracted")

	return out, nil
}

// parseRow converts one data row to a TransactionRecord. A nil record with a
// non-nil SkippedRow means the row was excluded; an empty Reason marks a
// silent skip (trailing totals and blank rows, which carry no amount).
func (e *Extractor) parseRow(row []string, rowNum int, cols *columnMap) (*models.TransactionRecord, *models.SkippedRow) {
	amountRaw := cell(row, cols.amount)
	if strings.TrimSpace(amountRaw) == "" {
		// Not a data row.
		return nil, &models.SkippedRow{}
	}

	first, last := cardholderName(row, cols)
	if first == "" || last == "" {
		return nil, &models.SkippedRow{RowNumber: rowNum, Reason: "no cardholder name"}
	}

	amount, err := parseAmount(amountRaw)
	if err != nil {
		return nil, &models.SkippedRow{
			RowNumber: rowNum,
			Reason:    fmt.Sprintf("unparseable amount %q", amountRaw),
		}
	}

	merchant, description := descriptions(row, cols)

	rec := &models.TransactionRecord{
		FirstName:   strings.ToUpper(first),
		LastName:    strings.ToUpper(last),
		CardNumber:  cell(row, cardColumn(cols)),
		Amount:      amount,
		TxnDate:     parseDate(cell(row, cols.txnDate)),
		PostingDate: parseDate(cell(row, cols.postingDate)),
		Merchant:    merchant,
		Description: description,
		Reference:   cell(row, cols.reference),
		RowNumber:   rowNum,
		RawRow:      append([]string(nil), row...),
	}
	return rec, nil
}

// cardholderName picks the supplemental name fields when both are populated.
// Supplemental-card transactions belong to the supplemental holder, not the
// primary account holder.
func cardholderName(row []string, cols *columnMap) (first, last string) {
	if cols.hasSupplementalName() {
		first = cell(row, cols.suppFirst)
		last = cell(row, cols.suppLast)
		if first != "" && last != "" {
			return first, last
		}
	}
	return cell(row, cols.basicFirst), cell(row, cols.basicLast)
}

// cardColumn prefers the supplemental account number over the basic one.
func cardColumn(cols *columnMap) int {
	if cols.suppAccount >= 0 {
		return cols.suppAccount
	}
	return cols.basicAccount
}

// descriptions concatenates all populated description fragments in column
// order. The first fragment is treated as the merchant name.
func descriptions(row []string, cols *columnMap) (merchant, full string) {
	var parts []string
	for _, col := range cols.descriptions {
		if col < 0 {
			continue
		}
		if v := cell(row, col); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts, " | ")
}

// findHeaderRow scans the leading rows for the anchor label and returns the
// 1-based header row number.
func findHeaderRow(rows [][]string) (int, error) {
	limit := headerScanRows
	if len(rows) < limit {
		limit = len(rows)
	}
	for i := 0; i < limit; i++ {
		for _, c := range rows[i] {
			if strings.Contains(normalizeHeader(c), headerAnchor) {
				return i + 1, nil
			}
		}
	}
	return 0, ErrHeaderNotFound
}

// cell returns the trimmed cell at col, or "" when the row is short or the
// column is absent. excelize drops trailing empty cells from GetRows, so
// short rows are routine.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// parseAmount normalizes a currency string (thousands separators, dollar
// signs) to a fixed-point decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	return decimal.NewFromString(s)
}

// dateFormats are the accepted export date layouts, tried in order.
var dateFormats = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006-01-02",
	"01-02-06",
}

// parseDate returns nil for values that match no accepted format; an
// unparseable date never fails the row.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
