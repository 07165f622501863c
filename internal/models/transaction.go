package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord represents a single transaction row from the tabular
// export. It is created once during extraction and never mutated.
type TransactionRecord struct {
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	CardNumber  string          `json:"cardNumber"`
	Amount      decimal.Decimal `json:"amount"`
	TxnDate     *time.Time      `json:"transactionDate"` // nil when the source date did not parse
	PostingDate *time.Time      `json:"postingDate"`     // nil when the source date did not parse
	Merchant    string          `json:"merchant"`        // first populated description fragment
	Description string          `json:"description"`     // all fragments joined with " | "
	Reference   string          `json:"reference"`
	RowNumber   int             `json:"rowNumber"` // 1-based row in the source sheet
	RawRow      []string        `json:"rawRow"`    // original cells, kept for audit
}

// CardholderKey is the grouping identity used by both the tabular extractor
// and the reconciler: "FIRST LAST", uppercased.
func CardholderKey(first, last string) string {
	return strings.ToUpper(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// PageRange is a 1-based inclusive page interval within the source document.
type PageRange struct {
	Start int `json:"pageStart"`
	End   int `json:"pageEnd"`
}

// Pages returns the number of pages covered by the range.
func (r PageRange) Pages() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether page falls inside the range.
func (r PageRange) Contains(page int) bool {
	return page >= r.Start && page <= r.End
}

// CardholderSlice describes the portion of the master document assigned to
// one cardholder, plus the materialized single-cardholder PDF.
type CardholderSlice struct {
	Name        string    `json:"name"` // as captured from the boundary marker
	Range       PageRange `json:"range"`
	CopiedPages int       `json:"copiedPages"` // non-blank pages actually written
	Filename    string    `json:"filename"`
	Path        string    `json:"path"`
}

// CardholderGroup is the reconciled unit handed to the storage layer: one
// document-derived cardholder with a definitively matched transaction list.
type CardholderGroup struct {
	Name         string              `json:"name"`
	Key          string              `json:"key"` // normalized cardholder key
	Slice        CardholderSlice     `json:"slice"`
	Transactions []TransactionRecord `json:"transactions"`
	Total        decimal.Decimal     `json:"total"`
	Count        int                 `json:"count"`
	MatchKind    MatchKind           `json:"matchKind"`
	Import       *CodedImportFile    `json:"import,omitempty"` // nil when no transactions matched
}

// MatchKind records how a document cardholder was paired with a tabular group.
type MatchKind string

const (
	MatchExact       MatchKind = "exact"
	MatchApproximate MatchKind = "approximate"
	MatchNone        MatchKind = "none"
)

// CodedImportFile is the generated flat-file artifact for one cardholder:
// a header record followed by one line record per transaction. Coding fields
// are left blank for downstream human entry; the file is never edited after
// generation.
type CodedImportFile struct {
	Header CodedHeaderRecord `json:"header"`
	Lines  []CodedLineRecord `json:"lines"`
}

// CodedHeaderRecord carries the vendor code, invoice total, and the generated
// reference string ("APHB" record).
type CodedHeaderRecord struct {
	VendorCode string          `json:"vendorCode"`
	Total      decimal.Decimal `json:"total"`
	Reference  string          `json:"reference"`
}

// CodedLineRecord carries one transaction ("APLB" record). GLAccount, Job,
// Phase and CostType are placeholders filled in later by a human coder.
type CodedLineRecord struct {
	TypeCode    string          `json:"typeCode"`
	Amount      decimal.Decimal `json:"amount"`
	GLAccount   string          `json:"glAccount"`
	Job         string          `json:"job"`
	Phase       string          `json:"phase"`
	CostType    string          `json:"costType"`
	JCCompany   string          `json:"jcCompany"`
	Description string          `json:"description"`
}
