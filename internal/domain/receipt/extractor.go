package receipt

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Patterns are tried in priority order; the first match wins.
var (
	// The word boundary keeps "SUBTOTAL 5.50" from satisfying the TOTAL label.
	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bTOTAL\s*:?\s*\$?(\d+\.\d{2})`),
		regexp.MustCompile(`(?i)\bAMOUNT\s*:?\s*\$?(\d+\.\d{2})`),
		regexp.MustCompile(`(?i)\bGrand\s+Total\s*:?\s*\$?(\d+\.\d{2})`),
	}

	receiptIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Receipt\s*#?\s*:?\s*([A-Z0-9]+)`),
		regexp.MustCompile(`(?i)Transaction\s*#?\s*:?\s*([A-Z0-9]+)`),
		regexp.MustCompile(`(?i)REF\s*#?\s*:?\s*([A-Z0-9]+)`),
		regexp.MustCompile(`(?i)Invoice\s*#?\s*:?\s*([A-Z0-9]+)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
		regexp.MustCompile(`(\d{2}-\d{2}-\d{4})`),
	}

	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}:\d{2}:\d{2})`),
		regexp.MustCompile(`(\d{1,2}:\d{2}\s*[AP]M)`),
	}

	itemLinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\w+.*?)\s+(\d+\.\d{2})`),
		regexp.MustCompile(`(\w+.*?)\s+\$(\d+\.\d{2})`),
	}

	// summaryKeywords mark item candidates that are really total/tax lines
	summaryKeywords = []string{"total", "subtotal", "tax", "change"}
)

// Extract parses raw receipt text into a Record. It never returns an error:
// on any internal fault the result carries a zero total, the fault message in
// ParseError, and the raw text preserved. Callers decide validity via
// Record.IsValid, not the extractor.
func Extract(text string) (record Record) {
	defer func() {
		if r := recover(); r != nil {
			record = Record{
				RawText:     text,
				TotalAmount: decimal.Zero,
				ParseError:  fmt.Sprintf("%v", r),
				ExtractedAt: time.Now().UTC(),
			}
		}
	}()

	record = Record{
		RawText:     text,
		TotalAmount: extractTotal(text),
		ReceiptID:   extractFirst(receiptIDPatterns, text),
		Date:        extractFirst(datePatterns, text),
		Time:        extractFirst(timePatterns, text),
		Items:       extractItems(text),
		ExtractedAt: time.Now().UTC(),
	}
	record.ItemCount = len(record.Items)

	return record
}

// extractTotal returns the first parseable total amount. A match whose
// captured number fails numeric parsing falls through to the next pattern.
func extractTotal(text string) decimal.Decimal {
	for _, pattern := range totalPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		amount, err := decimal.NewFromString(match[1])
		if err != nil {
			continue
		}
		return amount
	}
	return decimal.Zero
}

func extractFirst(patterns []*regexp.Regexp, text string) string {
	for _, pattern := range patterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			return match[1]
		}
	}
	return ""
}

// extractItems scans the text line by line for "name followed by a two-decimal
// price" candidates. Summary lines (total, subtotal, tax, change) are not
// items; lines shorter than 5 characters are skipped outright.
func extractItems(text string) []LineItem {
	var items []LineItem

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 5 {
			continue
		}

		for _, pattern := range itemLinePatterns {
			match := pattern.FindStringSubmatch(line)
			if match == nil {
				continue
			}

			name := strings.TrimSpace(match[1])
			if isSummaryLine(name) {
				break
			}

			price, err := decimal.NewFromString(match[2])
			if err != nil {
				break
			}

			items = append(items, LineItem{
				Name:  name,
				Price: price,
				Line:  line,
			})
			break
		}
	}

	return items
}

func isSummaryLine(name string) bool {
	nameLower := strings.ToLower(name)
	for _, keyword := range summaryKeywords {
		if strings.Contains(nameLower, keyword) {
			return true
		}
	}
	return false
}
