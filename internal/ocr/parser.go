// Package ocr extracts structured line items from raw receipt text.
//
// The text typically comes from an OCR service or a manual paste. Extraction
// is best effort: lines that match no known pattern are skipped silently, and
// the caller is expected to let the user edit the result. Nothing in this
// package performs image analysis.
package ocr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"splitscan/internal/models"
)

// linePatterns are tried in order against each line; the first match wins.
// Each pattern captures (name, price[, quantity]).
var linePatterns = []*regexp.Regexp{
	// "Item Name $X.XX" or "Item Name $X.XX Qty: N"
	regexp.MustCompile(`^(.+?)\s+\$(\d+\.?\d*)(?:\s+Qty:\s*(\d+))?$`),
	// "Item Name - $X.XX"
	regexp.MustCompile(`^(.+?)\s*-\s*\$(\d+\.?\d*)$`),
	// "Item Name $X.XX x N"
	regexp.MustCompile(`^(.+?)\s+\$(\d+\.?\d*)\s+x\s*(\d+)$`),
}

// priceOnly matches a line holding nothing but a price, used by the
// two-line fallback ("Item Name" on one line, "$X.XX" on the next).
var priceOnly = regexp.MustCompile(`^\$(\d+\.?\d*)$`)

// nonItemPatterns mark lines that are receipt metadata rather than items:
// totals, payment info, card brands, dates, receipt numbers, and so on.
var nonItemPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^total`),
	regexp.MustCompile(`(?i)^subtotal`),
	regexp.MustCompile(`(?i)^tax`),
	regexp.MustCompile(`(?i)^tip`),
	regexp.MustCompile(`(?i)^discount`),
	regexp.MustCompile(`(?i)^change`),
	regexp.MustCompile(`(?i)^cash`),
	regexp.MustCompile(`(?i)^card`),
	regexp.MustCompile(`(?i)^visa`),
	regexp.MustCompile(`(?i)^mastercard`),
	regexp.MustCompile(`(?i)^amex`),
	regexp.MustCompile(`(?i)^receipt`),
	regexp.MustCompile(`(?i)^thank`),
	regexp.MustCompile(`(?i)^date`),
	regexp.MustCompile(`(?i)^time`),
	regexp.MustCompile(`(?i)^store`),
	regexp.MustCompile(`(?i)^address`),
	regexp.MustCompile(`(?i)^phone`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),
	regexp.MustCompile(`^\d{2}:\d{2}`),
	regexp.MustCompile(`^#\d+`),
	regexp.MustCompile(`(?i)^transaction`),
	regexp.MustCompile(`(?i)^authorization`),
	regexp.MustCompile(`(?i)^ref`),
	regexp.MustCompile(`(?i)^void`),
	regexp.MustCompile(`(?i)^return`),
	regexp.MustCompile(`(?i)^exchange`),
}

var (
	leadingDigits  = regexp.MustCompile(`^\d+\s*`)
	leadingSymbols = regexp.MustCompile(`^[^\w\s]+`)
	taxPattern     = regexp.MustCompile(`(?i)tax[:\s]*\$?(\d+\.?\d*)`)
	tipPattern     = regexp.MustCompile(`(?i)tip[:\s]*\$?(\d+\.?\d*)`)
)

// ParseReceiptText extracts line items from raw receipt text.
//
// Items are returned in the order their lines appear in the input. Lines that
// look like receipt metadata, or that match no pattern, produce nothing; an
// unparseable input yields an empty result rather than an error. Each item
// gets a fresh ID and an empty claims list.
func ParseReceiptText(text string) []models.Item {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	var items []models.Item
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if isNonItemLine(line) {
			continue
		}

		if item, ok := matchSingleLine(line); ok {
			items = append(items, item)
			continue
		}

		// Two-line fallback: name on this line, bare price on the next.
		if i < len(lines)-1 {
			if m := priceOnly.FindStringSubmatch(lines[i+1]); m != nil {
				if item, ok := newItem(line, m[1], 1); ok {
					items = append(items, item)
					i++ // price line consumed
				}
			}
		}
	}

	return items
}

// matchSingleLine tries each line pattern in priority order.
func matchSingleLine(line string) (models.Item, bool) {
	for _, pattern := range linePatterns {
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		quantity := 1
		if len(m) > 3 && m[3] != "" {
			n, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			quantity = n
		}
		if item, ok := newItem(m[1], m[2], quantity); ok {
			return item, true
		}
	}
	return models.Item{}, false
}

// newItem validates the captured name and price and builds the item.
// Items with a non-positive price or an empty cleaned name are rejected.
func newItem(name, price string, quantity int) (models.Item, bool) {
	value, err := strconv.ParseFloat(price, 64)
	if err != nil || value <= 0 {
		return models.Item{}, false
	}
	cleaned := cleanItemName(name)
	if cleaned == "" {
		return models.Item{}, false
	}
	return models.Item{
		ID:        uuid.New().String(),
		Name:      cleaned,
		UnitPrice: value,
		Quantity:  float64(quantity),
		ClaimedBy: []string{},
	}, true
}

// cleanItemName removes common receipt artifacts: leading item numbers and
// leading runs of punctuation.
func cleanItemName(name string) string {
	name = strings.TrimSpace(name)
	name = leadingDigits.ReplaceAllString(name, "")
	name = leadingSymbols.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// isNonItemLine reports whether a line is receipt metadata rather than an item.
func isNonItemLine(line string) bool {
	for _, pattern := range nonItemPatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// ExtractTaxAndTip scans all lines of the receipt text for tax and tip
// amounts. When several lines match, the last occurrence wins; both values
// default to zero when absent. The scan overlaps the item scan and consumes
// nothing.
func ExtractTaxAndTip(text string) (tax, tip float64) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if m := taxPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				tax = v
			}
		}
		if m := tipPattern.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				tip = v
			}
		}
	}
	return tax, tip
}
