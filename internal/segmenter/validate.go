package segmenter

import (
	"strings"

	"github.com/corpfin/statement-splitter/internal/models"
)

// TextExtractor reads a PDF and returns one text string per page. It exists
// so validation can be exercised without real PDF files.
type TextExtractor func(path string) ([]string, error)

// Validate opens every generated per-cardholder PDF and scans it for
// boundary markers. The owner's marker must appear exactly once; any other
// cardholder's marker is cross-contamination: one person's financial data in
// another person's file. Findings never block validation of the remaining
// slices.
func (s *Segmenter) Validate(slices []models.CardholderSlice, extract TextExtractor) models.ValidationReport {
	known := make(map[string]string, len(slices)) // upper name -> display name
	for _, sl := range slices {
		known[strings.ToUpper(sl.Name)] = sl.Name
	}

	var report models.ValidationReport
	for _, sl := range slices {
		pages, err := extract(sl.Path)
		if err != nil {
			s.log.Error().Err(err).Str("cardholder", sl.Name).
				Msg("could not re-read sliced pdf for validation")
			report.MissingOwnerMarker = append(report.MissingOwnerMarker, sl.Name)
			continue
		}

		owner := strings.ToUpper(sl.Name)
		ownerCount := 0
		for i, text := range pages {
			for _, m := range boundaryPattern.FindAllStringSubmatch(text, -1) {
				marker := strings.ToUpper(normalizeName(m[1]))
				if marker == owner {
					ownerCount++
					continue
				}
				display, ok := known[marker]
				if !ok {
					// Not a recognized cardholder; aggregate rows can
					// contain stray "Total for" phrasing.
					continue
				}
				report.Findings = append(report.Findings, models.ContaminationFinding{
					Owner:    sl.Name,
					Intruder: display,
					Page:     i + 1,
				})
				s.log.Error().Str("owner", sl.Name).Str("intruder", display).
					Int("page", i+1).
					Msg("cross-contamination detected")
			}
		}

		if ownerCount != 1 {
			report.MissingOwnerMarker = append(report.MissingOwnerMarker, sl.Name)
			s.log.Warn().Str("cardholder", sl.Name).Int("markers", ownerCount).
				Msg("owner marker not present exactly once")
		}
	}

	if report.Clean() {
		s.log.Info().Int("slices", len(slices)).Msg("validation clean")
	}
	return report
}
