package scan

import (
	"regexp"
	"strings"
	"time"

	"github.com/printcloud/backend/internal/domain/purchasing"
	"github.com/shopspring/decimal"
)

// Field patterns are deliberately tolerant: OCR output is noisy and the
// result is only a guess held for human review.
var (
	reGrandTotal = regexp.MustCompile(`(?im)^.*\b(?:grand\s*total|total\s*(?:due|amount|payable)|amount\s*due|balance\s*due)\b[^0-9-]*([0-9][0-9.,]*)`)
	reTotal      = regexp.MustCompile(`(?im)^.*\btotal\b[^0-9-]*([0-9][0-9.,]*)`)
	reSubtotal   = regexp.MustCompile(`(?im)\bsub\s*[- ]?total\b[^0-9-]*([0-9][0-9.,]*)`)
	reTax        = regexp.MustCompile(`(?im)\b(?:tax|vat|gst)\b[^0-9%-]*([0-9][0-9.,]*)`)
	reBillNumber = regexp.MustCompile(`(?im)\b(?:invoice|inv|bill|ref(?:erence)?)\s*(?:no|num|number|#)?\s*[.:#]?\s*([A-Z0-9][A-Z0-9/-]{2,24})`)
	reAmount     = regexp.MustCompile(`^[0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{1,2})?$|^[0-9]+(?:\.[0-9]{1,2})?$`)

	dateFormats = []string{
		"2006-01-02",
		"02/01/2006",
		"01/02/2006",
		"02-01-2006",
		"2 Jan 2006",
		"02 Jan 2006",
		"Jan 2, 2006",
		"January 2, 2006",
		time.RFC3339,
	}

	reDate = regexp.MustCompile(`(?i)\b([0-9]{4}-[0-9]{2}-[0-9]{2}|[0-9]{1,2}[/-][0-9]{1,2}[/-][0-9]{4}|[0-9]{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+[0-9]{4})\b`)
)

// parseBillText walks OCR text and pulls out bill field guesses. The
// confidence score reflects how many fields were recognised.
func parseBillText(text string) purchasing.ExtractionResult {
	result := purchasing.ExtractionResult{RawText: text}

	recognised := 0

	if m := reGrandTotal.FindStringSubmatch(text); len(m) >= 2 {
		if d, ok := parseAmountToken(m[1]); ok {
			result.GrandTotal = d
			recognised += 2
		}
	}
	if result.GrandTotal.IsZero() {
		// Plain "Total" lines are weaker evidence, pick the largest match.
		best := decimal.Zero
		for _, m := range reTotal.FindAllStringSubmatch(text, -1) {
			if d, ok := parseAmountToken(m[1]); ok && d.GreaterThan(best) {
				best = d
			}
		}
		if best.IsPositive() {
			result.GrandTotal = best
			recognised++
		}
	}

	if m := reSubtotal.FindStringSubmatch(text); len(m) >= 2 {
		if d, ok := parseAmountToken(m[1]); ok {
			result.Subtotal = d
			recognised++
		}
	}
	if m := reTax.FindStringSubmatch(text); len(m) >= 2 {
		if d, ok := parseAmountToken(m[1]); ok {
			result.TaxAmount = d
			recognised++
		}
	}
	if m := reBillNumber.FindStringSubmatch(text); len(m) >= 2 {
		result.BillNumber = strings.TrimRight(m[1], "./-")
		recognised++
	}
	if m := reDate.FindStringSubmatch(text); len(m) >= 2 {
		if t := parseDate(m[1]); t != nil {
			result.BillDate = t
			recognised++
		}
	}

	// The first non-empty line that is not a recognised field label is the
	// best supplier name guess on most letterheads.
	result.SupplierName = guessSupplierName(text)
	if result.SupplierName != "" {
		recognised++
	}

	// Cap below AI-grade confidence: OCR guesses always need review.
	result.Confidence = float64(recognised) / 10.0
	if result.Confidence > 0.8 {
		result.Confidence = 0.8
	}

	return result
}

// parseAmountToken normalises a matched numeric token into a decimal
func parseAmountToken(token string) (decimal.Decimal, bool) {
	token = strings.TrimSpace(token)
	token = strings.TrimRight(token, ".,")
	if !reAmount.MatchString(token) {
		return decimal.Zero, false
	}
	token = strings.ReplaceAll(token, ",", "")
	d, err := decimal.NewFromString(token)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// parseDate tries the common bill date formats
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return &t
		}
	}
	return nil
}

var supplierNoise = []string{
	"invoice", "bill", "receipt", "statement", "tax", "date", "total",
	"page", "tel", "phone", "fax", "email", "www",
}

// guessSupplierName picks the first plausible letterhead line
func guessSupplierName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 4 || len(line) > 60 {
			continue
		}
		lower := strings.ToLower(line)
		noisy := false
		for _, word := range supplierNoise {
			if strings.Contains(lower, word) {
				noisy = true
				break
			}
		}
		if noisy {
			continue
		}
		letters := 0
		for _, r := range line {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				letters++
			}
		}
		if letters < len(line)/2 {
			continue
		}
		return line
	}
	return ""
}
