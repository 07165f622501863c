package segmenter

import (
	"regexp"
	"strings"
	"time"
)

// PageClass is the tagged classification of one document page. Every page is
// exactly one of boundary, blank, or content; the state machine consumes the
// classification and never inspects page text itself.
type PageClass int

const (
	// ClassContent is the default: transaction listings and anything
	// ambiguous. Classification is conservative toward content so real
	// transaction pages are never dropped.
	ClassContent PageClass = iota
	// ClassBoundary marks a page carrying a "Total for <name>" marker,
	// the last page of that cardholder's section.
	ClassBoundary
	// ClassBlank marks blank and continuation-header pages.
	ClassBlank
)

func (c PageClass) String() string {
	switch c {
	case ClassBoundary:
		return "boundary"
	case ClassBlank:
		return "blank"
	default:
		return "content"
	}
}

// Classification is the result of classifying one page.
type Classification struct {
	Class  PageClass
	Marker string // captured cardholder name, boundary pages only
}

var (
	// boundaryPattern captures the cardholder name from a section total
	// line. The name runs up to the next trailing phrase, a dollar amount,
	// or end of line; some layouts put no space before the amount.
	boundaryPattern = regexp.MustCompile(`(?im)total for\s+(.+?)\s*(?:new charges|previous balance|\$|$)`)

	// closingDatePattern matches the statement closing date printed on the
	// leading pages.
	closingDatePattern = regexp.MustCompile(`(?i)closing date:?\s*(\d{1,2}/\d{1,2}/\d{2,4})`)

	// Transaction-shaped content: an amount with cents, a date pair, or a
	// charge-activity keyword. A continuation header has none of these.
	amountPattern   = regexp.MustCompile(`\$?\d{1,3}(?:,\d{3})*\.\d{2}`)
	datePairPattern = regexp.MustCompile(`\d{1,2}/\d{1,2}(?:/\d{2,4})?`)
)

var transactionKeywords = []string{
	"transaction", "payment", "charge", "purchase", "merchant",
	"activity", "fee", "credit",
}

// blankTextThreshold is the maximum trimmed length for a page to be
// considered blank outright.
const blankTextThreshold = 50

// Classify assigns a page class from its extracted text, independent of any
// segmentation state.
func Classify(text string) Classification {
	if m := boundaryPattern.FindStringSubmatch(text); m != nil {
		return Classification{Class: ClassBoundary, Marker: normalizeName(m[1])}
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < blankTextThreshold {
		return Classification{Class: ClassBlank}
	}

	// Continuation-header pages repeat the statement masthead but carry no
	// transaction-shaped content. Anything ambiguous stays content.
	if !amountPattern.MatchString(trimmed) && !datePairPattern.MatchString(trimmed) &&
		!containsTransactionKeyword(trimmed) {
		return Classification{Class: ClassBlank}
	}

	return Classification{Class: ClassContent}
}

func containsTransactionKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range transactionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FindClosingDate scans the leading pages for the statement closing date.
// Returns nil when no date is found.
func FindClosingDate(pages []string) *time.Time {
	limit := 5
	if len(pages) < limit {
		limit = len(pages)
	}
	for i := 0; i < limit; i++ {
		m := closingDatePattern.FindStringSubmatch(pages[i])
		if m == nil {
			continue
		}
		for _, layout := range []string{"01/02/2006", "1/2/2006", "01/02/06", "1/2/06"} {
			if t, err := time.Parse(layout, m[1]); err == nil {
				return &t
			}
		}
	}
	return nil
}

// normalizeName collapses whitespace in a captured marker name.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
