package segmenter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/corpfin/statement-splitter/internal/models"
)

// Slice copies each assigned page range out of the master PDF into a
// single-cardholder PDF under outDir. Blank pages inside a range are not
// copied, except the final page, which always carries the total marker.
func (s *Segmenter) Slice(pdfPath, outDir string, res *Result) ([]models.CardholderSlice, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("segmenter: create output dir %q: %w", outDir, err)
	}

	slices := make([]models.CardholderSlice, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		pages := copyablePages(a.Range, res.BlankIn(a.Range))

		filename := SliceFilename(a.Name, res.ClosingDate)
		outPath := filepath.Join(outDir, filename)

		if err := api.CollectFile(pdfPath, outPath, pageSelection(pages), nil); err != nil {
			return nil, fmt.Errorf("segmenter: slice pages %d-%d for %q: %w",
				a.Range.Start, a.Range.End, a.Name, err)
		}

		s.log.Info().Str("cardholder", a.Name).Str("file", filename).
			Int("start", a.Range.Start).Int("end", a.Range.End).
			Int("copied", len(pages)).
			Msg("wrote cardholder pdf")

		slices = append(slices, models.CardholderSlice{
			Name:        a.Name,
			Range:       a.Range,
			CopiedPages: len(pages),
			Filename:    filename,
			Path:        outPath,
		})
	}
	return slices, nil
}

// copyablePages lists the pages of rng to copy: everything except interior
// blanks. The final page is kept unconditionally.
func copyablePages(rng models.PageRange, blanks []int) []int {
	blank := make(map[int]bool, len(blanks))
	for _, p := range blanks {
		blank[p] = true
	}
	var pages []int
	for p := rng.Start; p <= rng.End; p++ {
		if blank[p] && p != rng.End {
			continue
		}
		pages = append(pages, p)
	}
	return pages
}

func pageSelection(pages []int) []string {
	sel := make([]string, len(pages))
	for i, p := range pages {
		sel[i] = strconv.Itoa(p)
	}
	return sel
}

// SliceFilename builds "<Normalized Name> <YYYY-MM-DD>.pdf". The name is
// title-cased and stripped of filesystem-unsafe runes; the date part is
// omitted when no closing date was found.
func SliceFilename(name string, closingDate *time.Time) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	clean := sanitizeFilename(strings.Join(words, " "))

	if closingDate != nil {
		return fmt.Sprintf("%s %s.pdf", clean, closingDate.Format("2006-01-02"))
	}
	return clean + ".pdf"
}

func titleWord(w string) string {
	r := []rune(strings.ToLower(w))
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) ||
			r == ' ' || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
