package writer

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpfin/statement-splitter/internal/models"
)

func TestImportWriter_Write(t *testing.T) {
	imp := &models.CodedImportFile{
		Header: models.CodedHeaderRecord{
			VendorCode: "19473",
			Total:      decimal.RequireFromString("200.00"),
			Reference:  "amex0625JS",
		},
		Lines: []models.CodedLineRecord{
			{TypeCode: "3", Amount: decimal.RequireFromString("125.5"), JCCompany: "1", Description: "ACME TOOLS | PHOENIX AZ"},
			{TypeCode: "3", Amount: decimal.RequireFromString("74.5"), JCCompany: "1", Description: "DESERT FUEL"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, (&ImportWriter{}).Write(&buf, imp))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, "APHB", header[0])
	assert.Equal(t, "19473", header[1])
	assert.Equal(t, "200.00", header[2])
	assert.Equal(t, "amex0625JS", header[3])
	assert.Len(t, header, 10)

	line := rows[1]
	assert.Equal(t, "APLB", line[0])
	assert.Equal(t, "3", line[1])
	assert.Equal(t, "125.50", line[2])
	// Coding placeholders are present but empty.
	assert.Empty(t, line[3])
	assert.Empty(t, line[4])
	assert.Equal(t, "1", line[5])
	assert.Equal(t, "ACME TOOLS | PHOENIX AZ", line[9])

	assert.Equal(t, "74.50", rows[2][2])
}

// Populated coding fields must land in the columns the accounting import
// expects: GL account at 3, company at 5, then job, phase and cost type.
func TestImportWriter_CodedFieldColumns(t *testing.T) {
	imp := &models.CodedImportFile{
		Header: models.CodedHeaderRecord{
			VendorCode: "19473",
			Total:      decimal.RequireFromString("10.00"),
			Reference:  "amex0625JS",
		},
		Lines: []models.CodedLineRecord{
			{
				TypeCode:    "3",
				Amount:      decimal.RequireFromString("10.00"),
				GLAccount:   "6310",
				Job:         "J-100",
				Phase:       "02",
				CostType:    "M",
				JCCompany:   "1",
				Description: "ACME TOOLS",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, (&ImportWriter{}).Write(&buf, imp))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	line := rows[1]
	assert.Equal(t, "6310", line[3])
	assert.Empty(t, line[4])
	assert.Equal(t, "1", line[5])
	assert.Equal(t, "J-100", line[6])
	assert.Equal(t, "02", line[7])
	assert.Equal(t, "M", line[8])
	assert.Equal(t, "ACME TOOLS", line[9])
}

func TestTemplateWriter_Write(t *testing.T) {
	txnDate := time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC)
	txns := []models.TransactionRecord{
		{
			TxnDate:     &txnDate,
			PostingDate: nil, // date failed to parse upstream
			Merchant:    "ACME TOOLS",
			Description: "ACME TOOLS | PHOENIX AZ",
			Amount:      decimal.RequireFromString("125.50"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, (&TemplateWriter{}).Write(&buf, txns))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, templateHeader, rows[0])

	row := rows[1]
	assert.Equal(t, "2025-06-13", row[0])
	assert.Empty(t, row[1])
	assert.Equal(t, "ACME TOOLS | PHOENIX AZ", row[2])
	assert.Equal(t, "ACME TOOLS", row[3])
	assert.Equal(t, "125.50", row[4])
	for _, coding := range row[5:] {
		assert.Empty(t, coding)
	}
}
