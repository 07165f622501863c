// Package extractor reads the text layer of a PDF, one string per page.
// Page boundaries matter here: the segmenter assigns pages to cardholders,
// so extraction must never merge or drop pages silently.
package extractor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// Document is the extracted text of one PDF: one string per page, plus the
// pages whose text could not be decoded. Failed pages keep an empty string
// so page numbering stays aligned with the source; downstream they are
// treated as content, never as blank.
type Document struct {
	Pages []string
	// Failed lists 1-based pages whose extraction errored.
	Failed []int
}

func (d *Document) fail(page int) {
	d.Pages = append(d.Pages, "")
	d.Failed = append(d.Failed, page)
}

// Extractor reads PDF text. One Extractor serves one invocation.
type Extractor struct {
	log zerolog.Logger
}

// New returns an Extractor that logs through the given logger.
func New(log zerolog.Logger) *Extractor {
	return &Extractor{log: log.With().Str("component", "extractor").Logger()}
}

// ExtractText reads a PDF file and returns the text content of each page.
// It tries multiple extraction methods, keeping the first one that yields
// readable statement text. Pages that error individually are logged and
// recorded in the result. Image-based or custom-font PDFs that cannot be
// decoded at all fail outright; the caller gets an error, never garbage text.
func (e *Extractor) ExtractText(filePath string) (doc *Document, err error) {
	// The underlying library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open pdf %q: %w", filePath, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf %q has no pages", filePath)
	}

	methods := []func(*pdf.Reader, int) *Document{
		// Row-based extraction preserves layout best.
		extractByRow,
		// Lower-level content extraction with coordinate-based row rebuilding.
		extractByContent,
		// Plain-text extraction with per-page font maps.
		extractByPlainText,
	}
	for _, method := range methods {
		doc = method(r, numPages)
		if IsReadableText(doc.Pages) {
			for _, p := range doc.Failed {
				e.log.Warn().Str("file", filePath).Int("page", p).
					Msg("page text could not be decoded")
			}
			return doc, nil
		}
	}

	return nil, fmt.Errorf("no readable text could be extracted from %q; the file may be image-based or use font encodings that cannot be decoded", filePath)
}

// statementWords appear in virtually every credit-card statement report.
// Extracted text containing none of them is treated as garbage.
var statementWords = []string{
	"total", "account", "balance", "date", "payment", "statement",
	"charge", "amount", "credit", "transaction", "card", "member",
	"closing", "period", "page", "previous", "new",
}

// IsReadableText checks that pages contain enough text, that it is readable
// rather than binary garbage, and that it looks like statement content.
// Requires >50 chars, >60% plain ASCII characters, and at least one
// recognizable statement word.
func IsReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of plain ASCII readable characters to total
// characters. A strict ASCII check is deliberate: unicode.IsLetter matches
// the accented garbage that identity-encoded fonts produce.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"$%&@#!?+=*`, r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

// extractByRow uses the library's row grouping.
func extractByRow(r *pdf.Reader, numPages int) *Document {
	doc := &Document{Pages: make([]string, 0, numPages)}
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			doc.fail(i)
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			doc.fail(i)
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		doc.Pages = append(doc.Pages, strings.Join(lines, "\n"))
	}
	return doc
}

// extractByContent accesses raw text objects and reconstructs rows by Y
// coordinate, sorting each row by X.
func extractByContent(r *pdf.Reader, numPages int) *Document {
	doc := &Document{Pages: make([]string, 0, numPages)}
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			doc.fail(i)
			continue
		}
		content := page.Content()

		type textItem struct {
			x float64
			s string
		}
		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		// PDF Y runs bottom-to-top.
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

			var parts []string
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					// Large horizontal gap: column separator.
					parts = append(parts, "  ")
				}
				parts = append(parts, item.s)
				prevX = item.x
			}
			line := strings.TrimSpace(strings.Join(parts, ""))
			if line != "" {
				lines = append(lines, line)
			}
		}
		doc.Pages = append(doc.Pages, strings.Join(lines, "\n"))
	}
	return doc
}

// extractByPlainText uses GetPlainText with a per-page font map.
func extractByPlainText(r *pdf.Reader, numPages int) *Document {
	doc := &Document{Pages: make([]string, 0, numPages)}
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			doc.fail(i)
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			doc.fail(i)
			continue
		}
		doc.Pages = append(doc.Pages, strings.TrimSpace(text))
	}
	return doc
}
