package scorecard

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// TextStatus tags how a free-text field was interpreted.
type TextStatus int

const (
	// TextAbsent means no text was provided.
	TextAbsent TextStatus = iota
	// TextUnparsed means text was provided but yielded nothing usable.
	TextUnparsed
	// TextParsed means a value was extracted.
	TextParsed
)

func (s TextStatus) String() string {
	switch s {
	case TextAbsent:
		return "absent"
	case TextUnparsed:
		return "unparsed"
	case TextParsed:
		return "parsed"
	}
	return "unknown"
}

// HolidayParse is the outcome of reading a holiday-policy text.
type HolidayParse struct {
	Days   int
	Status TextStatus
}

// BenefitsParse is the outcome of splitting a benefits text into items.
type BenefitsParse struct {
	Items  []string
	Status TextStatus
}

var integerPattern = regexp.MustCompile(`\d+`)

// ParseHolidays extracts every integer in text and keeps the largest, so
// "週休2日・年間休日120日" yields 120. Full-width digits are folded first.
func ParseHolidays(text *string) HolidayParse {
	if text == nil {
		return HolidayParse{Status: TextAbsent}
	}
	folded := width.Fold.String(*text)

	best, found := 0, false
	for _, tok := range integerPattern.FindAllString(folded, -1) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			// only overflowing tokens fail here
			continue
		}
		if !found || n > best {
			best, found = n, true
		}
	}
	if !found {
		return HolidayParse{Status: TextUnparsed}
	}
	return HolidayParse{Days: best, Status: TextParsed}
}

func isBenefitDelimiter(r rune) bool {
	switch r {
	case ',', '，', '、', '\n':
		return true
	}
	return false
}

// ParseBenefits splits text on half-width and full-width commas, the
// ideographic comma and newlines, dropping blank fragments.
func ParseBenefits(text *string) BenefitsParse {
	if text == nil {
		return BenefitsParse{Status: TextAbsent}
	}
	var items []string
	for _, part := range strings.FieldsFunc(*text, isBenefitDelimiter) {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return BenefitsParse{Status: TextUnparsed}
	}
	return BenefitsParse{Items: items, Status: TextParsed}
}

// CombineTexts joins the distinct non-blank texts with newlines. It returns
// nil when none is present so the result keeps the absent/blank distinction.
func CombineTexts(texts ...*string) *string {
	var (
		parts   []string
		present bool
		seen    = make(map[string]struct{}, len(texts))
	)
	for _, t := range texts {
		if t == nil {
			continue
		}
		present = true
		v := strings.TrimSpace(*t)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		parts = append(parts, v)
	}
	if !present {
		return nil
	}
	joined := strings.Join(parts, "\n")
	return &joined
}

func containsAny(text *string, keywords []string) bool {
	if text == nil {
		return false
	}
	lower := strings.ToLower(*text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
