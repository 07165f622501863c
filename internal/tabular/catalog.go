package tabular

import (
	"fmt"
	"strings"
)

// maxDescriptionFragments is the number of "Transaction Description N"
// columns the export may carry.
const maxDescriptionFragments = 16

// headerScanRows is how many leading rows are searched for the header row.
const headerScanRows = 30

// headerAnchor is the label that identifies the header row. The export always
// carries a product column, so its presence marks the row as the header.
const headerAnchor = "Product"

// columnMap holds the resolved column index for every recognized field.
// Indexes are 0-based positions into a row slice; -1 means the column was not
// present in the header. A columnMap is built once per extraction and passed
// explicitly, never cached across invocations.
type columnMap struct {
	basicAccount int
	basicFirst   int
	basicLast    int
	suppAccount  int
	suppFirst    int
	suppLast     int
	postingDate  int
	txnDate      int
	amount       int
	reference    int
	descriptions [maxDescriptionFragments]int
}

func newColumnMap() *columnMap {
	m := &columnMap{
		basicAccount: -1,
		basicFirst:   -1,
		basicLast:    -1,
		suppAccount:  -1,
		suppFirst:    -1,
		suppLast:     -1,
		postingDate:  -1,
		txnDate:      -1,
		amount:       -1,
		reference:    -1,
	}
	for i := range m.descriptions {
		m.descriptions[i] = -1
	}
	return m
}

// mapHeaders builds a columnMap from the header row cells. Only label text is
// load-bearing; column order and count are not assumed. Headers are matched
// after collapsing internal whitespace (the export wraps labels across lines).
func mapHeaders(cells []string) *columnMap {
	m := newColumnMap()
	for col, raw := range cells {
		header := normalizeHeader(raw)
		if header == "" {
			continue
		}

		switch {
		case strings.Contains(header, "Basic Card Account No"):
			m.basicAccount = col
		case strings.Contains(header, "Basic Cardmember First Name"):
			m.basicFirst = col
		case strings.Contains(header, "Basic Cardmember Last Name"):
			m.basicLast = col
		case strings.Contains(header, "Supplemental Account Number"):
			m.suppAccount = col
		case strings.Contains(header, "Supplemental Cardmember First Name"):
			m.suppFirst = col
		case strings.Contains(header, "Supplemental Cardmember Last Name"):
			m.suppLast = col
		case strings.Contains(header, "Business Process Date"):
			m.postingDate = col
		case strings.Contains(header, "Transaction Date") && !strings.Contains(header, "Reference"):
			m.txnDate = col
		case strings.Contains(header, "Transaction Amount USD"):
			m.amount = col
		case strings.Contains(header, "Transaction Reference"):
			m.reference = col
		default:
			// Highest number first: "Transaction Description 1" is a
			// prefix of "Transaction Description 10".
			for i := maxDescriptionFragments; i >= 1; i-- {
				if strings.Contains(header, fmt.Sprintf("Transaction Description %d", i)) {
					m.descriptions[i-1] = col
					break
				}
			}
		}
	}
	return m
}

// missingRequired returns the names of required fields that were not located.
// Amount is always required; at least one of the two date fields must exist.
func (m *columnMap) missingRequired() []string {
	var missing []string
	if m.amount < 0 {
		missing = append(missing, "amount")
	}
	if m.postingDate < 0 && m.txnDate < 0 {
		missing = append(missing, "transaction date or business process date")
	}
	return missing
}

// hasSupplementalName reports whether both supplemental name columns exist.
func (m *columnMap) hasSupplementalName() bool {
	return m.suppFirst >= 0 && m.suppLast >= 0
}

// normalizeHeader collapses newlines and runs of whitespace to single spaces.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
