// Package segmenter recovers per-cardholder structure from the flat master
// statement PDF. It classifies each page, assigns disjoint page ranges to
// cardholder names found in boundary markers, slices the PDF into
// single-cardholder documents, and validates the slices for leakage of one
// cardholder's data into another's file.
package segmenter

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/corpfin/statement-splitter/internal/models"
)

// Assignment pairs a cardholder name with the page range its section covers.
type Assignment struct {
	Name  string
	Range models.PageRange
}

// Result is the full segmentation of one master document.
type Result struct {
	// Assignments holds retained cardholders in document order. Ranges are
	// disjoint and monotonically increasing.
	Assignments []Assignment
	// Summary holds page ranges belonging to skip-listed pseudo-cardholder
	// sections (the aggregate report at the front of the document).
	Summary []models.PageRange
	// Blank lists every page classified blank, including blanks inside an
	// assigned range (those stay in the range but are not copied).
	Blank []int
	// Trailing covers content pages after the final boundary marker; they
	// have no owner and indicate a truncated document.
	Trailing *models.PageRange
	// ClosingDate is read once from the leading pages; nil when absent.
	ClosingDate *time.Time
	// Audit records what happened to each page.
	Audit []models.PageAudit
}

// BlankIn returns the blank pages falling inside the given range.
func (r *Result) BlankIn(rng models.PageRange) []int {
	var out []int
	for _, p := range r.Blank {
		if rng.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Segmenter splits master statement documents. One Segmenter serves one
// invocation and holds no state between documents.
type Segmenter struct {
	log zerolog.Logger
	// skipNames are marker names of administrative pseudo-cardholders.
	// Their boundary pages still terminate range tracking, but the pages
	// are excluded from per-cardholder output.
	skipNames map[string]bool
}

// New returns a Segmenter. skipNames are matched case-insensitively against
// captured boundary marker names.
func New(log zerolog.Logger, skipNames []string) *Segmenter {
	skip := make(map[string]bool, len(skipNames))
	for _, n := range skipNames {
		skip[strings.ToUpper(normalizeName(n))] = true
	}
	return &Segmenter{
		log:       log.With().Str("component", "segmenter").Logger(),
		skipNames: skip,
	}
}

func (s *Segmenter) skipListed(name string) bool {
	return s.skipNames[strings.ToUpper(name)]
}

// FindRanges runs the segmentation state machine over the page texts.
// failed lists 1-based pages whose text extraction errored; those pages are
// treated as content, since dropping a page that might hold transactions is
// worse than copying one that turns out blank.
//
// A tentative range opens at the first non-blank page and closes on the next
// boundary page, which is the owning cardholder's last page since it carries
// their total. Boundaries naming a skip-listed pseudo-cardholder close the
// open range as summary pages instead. Blank pages never open a range, so
// blanks between sections belong to no one.
func (s *Segmenter) FindRanges(pages []string, failed []int) *Result {
	res := &Result{ClosingDate: FindClosingDate(pages)}

	failedSet := make(map[int]bool, len(failed))
	for _, p := range failed {
		failedSet[p] = true
	}

	start := 0 // first page of the open range; 0 when no range is open
	for i, text := range pages {
		pageNum := i + 1
		cls := Classify(text)
		if failedSet[pageNum] {
			cls = Classification{Class: ClassContent}
			s.log.Warn().Int("page", pageNum).
				Msg("undecodable page kept as content")
		}
		audit := models.PageAudit{PageNum: pageNum, Class: cls.Class.String()}

		switch cls.Class {
		case ClassBlank:
			res.Blank = append(res.Blank, pageNum)
			audit.Result = "skipped"

		case ClassBoundary:
			if start == 0 {
				// A section consisting of just its total page.
				start = pageNum
			}
			rng := models.PageRange{Start: start, End: pageNum}
			audit.Marker = cls.Marker
			if s.skipListed(cls.Marker) {
				res.Summary = append(res.Summary, rng)
				audit.Result = "summary"
				s.log.Debug().Str("marker", cls.Marker).
					Int("start", rng.Start).Int("end", rng.End).
					Msg("skip-listed section")
			} else {
				res.Assignments = append(res.Assignments, Assignment{Name: cls.Marker, Range: rng})
				audit.Result = "assigned"
				audit.Owner = cls.Marker
				s.log.Info().Str("cardholder", cls.Marker).
					Int("start", rng.Start).Int("end", rng.End).
					Msg("assigned section")
			}
			start = 0

		case ClassContent:
			if start == 0 {
				start = pageNum
			}
			audit.Result = "assigned"
		}

		res.Audit = append(res.Audit, audit)
	}

	// Content after the last boundary has no owner. Report it rather than
	// guessing an owner.
	if start != 0 {
		res.Trailing = &models.PageRange{Start: start, End: len(pages)}
		s.log.Warn().Int("start", start).Int("end", len(pages)).
			Msg("trailing pages after final boundary marker")
	}

	s.log.Info().
		Int("pages", len(pages)).
		Int("cardholders", len(res.Assignments)).
		Int("blank", len(res.Blank)).
		Msg("segmentation complete")

	return res
}
