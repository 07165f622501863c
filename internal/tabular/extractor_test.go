package tabular

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into an in-memory XLSX starting at startRow,
// leaving any leading rows empty the way the real export pads its banner.
func buildWorkbook(t *testing.T, startRow int, rows [][]string) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		for j, val := range row {
			if val == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, startRow+i)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}
	return f
}

var exportHeader = []string{
	"Product",
	"Basic Card Account No",
	"Basic Cardmember First Name",
	"Basic Cardmember Last Name",
	"Supplemental Cardmember First Name",
	"Supplemental Cardmember Last Name",
	"Supplemental Account Number",
	"Business Process Date",
	"Transaction Date",
	"Transaction Amount USD",
	"Transaction Reference",
	"Transaction Description 1",
	"Transaction Description 2",
}

func TestExtract_GroupsByCardholder(t *testing.T) {
	f := buildWorkbook(t, 3, [][]string{
		exportHeader,
		{"Card", "1001", "Pat", "Owner", "John", "Smith", "2001", "06/15/2025", "06/13/2025", "125.50", "REF1", "ACME TOOLS", "PHOENIX AZ"},
		{"Card", "1001", "Pat", "Owner", "John", "Smith", "2001", "06/16/2025", "06/14/2025", "74.50", "REF2", "DESERT FUEL", ""},
		{"Card", "1001", "Pat", "Owner", "Jane", "Doe", "2002", "06/16/2025", "06/15/2025", "19.99", "REF3", "COFFEE CO", ""},
	})

	ext, err := New(zerolog.Nop()).Extract(f)
	require.NoError(t, err)

	require.Len(t, ext.Groups, 2)
	assert.Equal(t, 3, ext.HeaderRow)

	smith := ext.Groups["JOHN SMITH"]
	require.Len(t, smith, 2)
	assert.Equal(t, "125.50", smith[0].Amount.StringFixed(2))
	assert.Equal(t, "ACME TOOLS", smith[0].Merchant)
	assert.Equal(t, "ACME TOOLS | PHOENIX AZ", smith[0].Description)
	assert.Equal(t, "2001", smith[0].CardNumber)
	assert.Equal(t, "REF1", smith[0].Reference)
	require.NotNil(t, smith[0].PostingDate)
	assert.Equal(t, "2025-06-15", smith[0].PostingDate.Format("2006-01-02"))
	require.NotNil(t, smith[0].TxnDate)

	// Source row order is preserved within a group.
	assert.Equal(t, "REF1", smith[0].Reference)
	assert.Equal(t, "REF2", smith[1].Reference)

	require.Len(t, ext.Groups["JANE DOE"], 1)
	assert.Empty(t, ext.Skipped)
}

func TestExtract_SupplementalNamePreferred(t *testing.T) {
	// The supplemental holder made the purchase; the basic holder only owns
	// the account.
	f := buildWorkbook(t, 1, [][]string{
		exportHeader,
		{"Card", "1001", "Pat", "Owner", "John", "Smith", "2001", "06/15/2025", "06/13/2025", "10.00", "R1", "SHOP", ""},
		// No supplemental name: falls back to the basic cardmember.
		{"Card", "1001", "Pat", "Owner", "", "", "", "06/15/2025", "06/13/2025", "20.00", "R2", "SHOP", ""},
	})

	ext, err := New(zerolog.Nop()).Extract(f)
	require.NoError(t, err)

	require.Len(t, ext.Groups["JOHN SMITH"], 1)
	require.Len(t, ext.Groups["PAT OWNER"], 1)
}

func TestExtract_HeaderNotFound(t *testing.T) {
	f := buildWorkbook(t, 1, [][]string{
		{"Some banner text"},
		{"Prepared for review"},
	})

	_, err := New(zerolog.Nop()).Extract(f)
	require.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestExtract_MissingRequiredColumns(t *testing.T) {
	f := buildWorkbook(t, 1, [][]string{
		{"Product", "Supplemental Cardmember First Name", "Supplemental Cardmember Last Name"},
	})

	_, err := New(zerolog.Nop()).Extract(f)
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Missing, "amount")
	assert.Contains(t, missing.Error(), "amount")
}

func TestExtract_SkipsAndReportsBadRows(t *testing.T) {
	f := buildWorkbook(t, 1, [][]string{
		exportHeader,
		{"Card", "1001", "", "", "John", "Smith", "2001", "06/15/2025", "06/13/2025", "not-a-number", "R1", "SHOP", ""},
		{"Card", "1001", "", "", "", "", "", "06/15/2025", "06/13/2025", "42.00", "R2", "SHOP", ""},
		{"Card", "1001", "", "", "John", "Smith", "2001", "06/15/2025", "06/13/2025", "42.00", "R3", "SHOP", ""},
	})

	ext, err := New(zerolog.Nop()).Extract(f)
	require.NoError(t, err)

	// The run completes: one good row extracted, two reported.
	require.Len(t, ext.Groups["JOHN SMITH"], 1)
	require.Len(t, ext.Skipped, 2)
	assert.Equal(t, 2, ext.Skipped[0].RowNumber)
	assert.Contains(t, ext.Skipped[0].Reason, "unparseable amount")
	assert.Contains(t, ext.Skipped[1].Reason, "no cardholder name")
}

func TestExtract_RowsWithoutAmountSilentlySkipped(t *testing.T) {
	// Trailing total rows carry no amount cell and are not data rows.
	f := buildWorkbook(t, 1, [][]string{
		exportHeader,
		{"Card", "1001", "", "", "John", "Smith", "2001", "06/15/2025", "06/13/2025", "42.00", "R1", "SHOP", ""},
		{"Grand Total"},
	})

	ext, err := New(zerolog.Nop()).Extract(f)
	require.NoError(t, err)
	require.Len(t, ext.Groups["JOHN SMITH"], 1)
	assert.Empty(t, ext.Skipped)
}

func TestExtract_UnparseableDateStoredAsNil(t *testing.T) {
	f := buildWorkbook(t, 1, [][]string{
		exportHeader,
		{"Card", "1001", "", "", "John", "Smith", "2001", "junk", "06/13/2025", "42.00", "R1", "SHOP", ""},
	})

	ext, err := New(zerolog.Nop()).Extract(f)
	require.NoError(t, err)

	rec := ext.Groups["JOHN SMITH"][0]
	assert.Nil(t, rec.PostingDate)
	assert.NotNil(t, rec.TxnDate)
}

func TestExtract_RawRowRetained(t *testing.T) {
	f := buildWorkbook(t, 1, [][]string{
		exportHeader,
		{"Card", "1001", "", "", "John", "Smith", "2001", "06/15/2025", "06/13/2025", "1,234.56", "R1", "SHOP", ""},
	})

	ext, err := New(zerolog.Nop()).Extract(f)
	require.NoError(t, err)

	rec := ext.Groups["JOHN SMITH"][0]
	assert.Equal(t, "1234.56", rec.Amount.String())
	assert.Contains(t, rec.RawRow, "1,234.56")
	assert.Equal(t, 2, rec.RowNumber)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1,234.56", "1234.56", false},
		{"$99.00", "99", false},
		{"-42.10", "-42.1", false},
		{"", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
