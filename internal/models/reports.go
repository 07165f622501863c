package models

// SkippedRow records a tabular data row that was excluded from extraction,
// with enough context for an operator to locate it in the source sheet.
type SkippedRow struct {
	RowNumber int    `json:"rowNumber"`
	Reason    string `json:"reason"`
}

// PageAudit captures what the segmenter did with each document page.
type PageAudit struct {
	PageNum int    `json:"pageNum"`
	Class   string `json:"class"`  // "boundary", "blank", "content"
	Result  string `json:"result"` // "assigned", "summary", "skipped"
	Marker  string `json:"marker,omitempty"`
	Owner   string `json:"owner,omitempty"`
}

// ReconciliationSummary reports how the two independently keyed groupings
// lined up. Either kind of mismatch indicates an upstream data problem.
type ReconciliationSummary struct {
	ExactMatches       int              `json:"exactMatches"`
	ApproximateMatches int              `json:"approximateMatches"`
	UnmatchedDocument  []string         `json:"unmatchedDocument"` // in the PDF, no transactions found
	UnmatchedTabular   []string         `json:"unmatchedTabular"`  // transactions with no document section
	Ambiguous          []AmbiguousMatch `json:"ambiguous,omitempty"`
}

// AmbiguousMatch records an approximate match that had more than one
// plausible candidate. The first candidate (sorted key order) was used.
type AmbiguousMatch struct {
	DocumentName string   `json:"documentName"`
	Chosen       string   `json:"chosen"`
	Candidates   []string `json:"candidates"`
}

// ContaminationFinding reports another cardholder's boundary marker inside a
// sliced document. This blocks distribution of the affected slice.
type ContaminationFinding struct {
	Owner    string `json:"owner"`
	Intruder string `json:"intruder"`
	Page     int    `json:"page"` // 1-based page within the sliced document
}

// ValidationReport is the outcome of the post-slice validation pass.
type ValidationReport struct {
	Findings []ContaminationFinding `json:"findings"`
	// MissingOwnerMarker lists slices whose own boundary marker did not
	// appear exactly once (zero or duplicated).
	MissingOwnerMarker []string `json:"missingOwnerMarker,omitempty"`
}

// Clean reports whether validation found nothing wrong.
func (v ValidationReport) Clean() bool {
	return len(v.Findings) == 0 && len(v.MissingOwnerMarker) == 0
}

// FindingsFor returns the contamination findings affecting one cardholder.
func (v ValidationReport) FindingsFor(owner string) []ContaminationFinding {
	var out []ContaminationFinding
	for _, f := range v.Findings {
		if f.Owner == owner {
			out = append(out, f)
		}
	}
	return out
}
