// Package reconcile pairs the two independently derived partitions of the
// statement population: cardholder names found in the document and cardholder
// names found in the tabular export. Matching is exact first, then
// approximate on first and last name tokens. The reconciler is the sole
// producer of coded-import records.
package reconcile

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/corpfin/statement-splitter/internal/models"
)

// Options carry the accounting constants stamped into generated records.
type Options struct {
	VendorCode string
	TypeCode   string // line record type code
	JCCompany  string // job cost company
	RefPrefix  string // reference string prefix, e.g. "amex"
}

// Reconciler matches document slices against tabular transaction groups.
// One Reconciler serves one invocation.
type Reconciler struct {
	log  zerolog.Logger
	opts Options
}

// New returns a Reconciler. Zero-valued options fall back to the historical
// import-format constants.
func New(log zerolog.Logger, opts Options) *Reconciler {
	if opts.TypeCode == "" {
		opts.TypeCode = "3"
	}
	if opts.JCCompany == "" {
		opts.JCCompany = "1"
	}
	if opts.RefPrefix == "" {
		opts.RefPrefix = "amex"
	}
	return &Reconciler{
		log:  log.With().Str("component", "reconcile").Logger(),
		opts: opts,
	}
}

// Reconcile produces one CardholderGroup per document slice, in document
// order, each with a definitively matched transaction list (possibly empty).
// period is the caller-supplied token (e.g. "0625") used in reference
// generation. The input maps are not modified.
func (r *Reconciler) Reconcile(
	slices []models.CardholderSlice,
	groups map[string][]models.TransactionRecord,
	period string,
) ([]models.CardholderGroup, models.ReconciliationSummary) {
	var summary models.ReconciliationSummary

	// Sorted keys make approximate matching deterministic and idempotent.
	unclaimed := make(map[string]bool, len(groups))
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
		unclaimed[k] = true
	}
	sort.Strings(keys)

	result := make([]models.CardholderGroup, 0, len(slices))
	for _, sl := range slices {
		key := strings.ToUpper(sl.Name)
		group := models.CardholderGroup{
			Name:  sl.Name,
			Key:   key,
			Slice: sl,
		}

		matchedKey, kind, candidates := r.match(key, keys, unclaimed)
		group.MatchKind = kind

		switch kind {
		case models.MatchExact:
			summary.ExactMatches++
		case models.MatchApproximate:
			summary.ApproximateMatches++
			r.log.Info().Str("document", sl.Name).Str("tabular", matchedKey).
				Msg("approximate name match")
			if len(candidates) > 1 {
				summary.Ambiguous = append(summary.Ambiguous, models.AmbiguousMatch{
					DocumentName: sl.Name,
					Chosen:       matchedKey,
					Candidates:   candidates,
				})
				r.log.Warn().Str("document", sl.Name).Strs("candidates", candidates).
					Msg("ambiguous approximate match; first sorted candidate used")
			}
		case models.MatchNone:
			summary.UnmatchedDocument = append(summary.UnmatchedDocument, sl.Name)
			r.log.Warn().Str("document", sl.Name).
				Msg("no transactions found for document cardholder")
		}

		if matchedKey != "" {
			unclaimed[matchedKey] = false
			group.Transactions = groups[matchedKey]
		}

		group.Total = sumAmounts(group.Transactions)
		group.Count = len(group.Transactions)
		if group.Count > 0 {
			imp := r.buildImport(group.Transactions, group.Total, period)
			group.Import = &imp
		}

		result = append(result, group)
	}

	for _, k := range keys {
		if unclaimed[k] {
			summary.UnmatchedTabular = append(summary.UnmatchedTabular, k)
			r.log.Warn().Str("tabular", k).
				Msg("transaction group has no document section")
		}
	}

	r.log.Info().
		Int("exact", summary.ExactMatches).
		Int("approximate", summary.ApproximateMatches).
		Int("unmatchedDocument", len(summary.UnmatchedDocument)).
		Int("unmatchedTabular", len(summary.UnmatchedTabular)).
		Msg("reconciliation complete")

	return result, summary
}

// match resolves one document key against the tabular keys. It returns the
// matched key (or ""), the match kind, and, for approximate matches, every
// plausible candidate in sorted order.
func (r *Reconciler) match(docKey string, keys []string, unclaimed map[string]bool) (string, models.MatchKind, []string) {
	if unclaimed[docKey] {
		return docKey, models.MatchExact, nil
	}

	var candidates []string
	for _, k := range keys {
		if unclaimed[k] && approxNameEqual(docKey, k) {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) > 0 {
		return candidates[0], models.MatchApproximate, candidates
	}
	return "", models.MatchNone, nil
}

// approxNameEqual accepts two names whose first and last tokens agree, even
// when middle tokens (middle names, initials) differ.
func approxNameEqual(a, b string) bool {
	at := strings.Fields(strings.ToUpper(a))
	bt := strings.Fields(strings.ToUpper(b))
	if len(at) == 0 || len(bt) == 0 {
		return false
	}
	return at[0] == bt[0] && at[len(at)-1] == bt[len(bt)-1]
}

// sumAmounts totals transaction amounts as fixed-point decimals; floating
// point would drift pennies over a statement.
func sumAmounts(txns []models.TransactionRecord) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}

// buildImport materializes the coded-import record set: one header record
// carrying the invoice total and generated reference, then one line record
// per transaction in source row order. Coding fields stay blank for the
// human coder.
func (r *Reconciler) buildImport(txns []models.TransactionRecord, total decimal.Decimal, period string) models.CodedImportFile {
	imp := models.CodedImportFile{
		Header: models.CodedHeaderRecord{
			VendorCode: r.opts.VendorCode,
			Total:      total,
			Reference:  r.reference(txns[0], period),
		},
	}
	for _, t := range txns {
		imp.Lines = append(imp.Lines, models.CodedLineRecord{
			TypeCode:    r.opts.TypeCode,
			Amount:      t.Amount,
			JCCompany:   r.opts.JCCompany,
			Description: t.Description,
		})
	}
	return imp
}

// reference builds "<prefix><period><initials>", e.g. "amex0625JS".
func (r *Reconciler) reference(first models.TransactionRecord, period string) string {
	return r.opts.RefPrefix + period + initial(first.FirstName) + initial(first.LastName)
}

func initial(name string) string {
	r := []rune(name)
	if len(r) == 0 {
		return ""
	}
	return strings.ToUpper(string(r[0]))
}
