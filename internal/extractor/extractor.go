package extractor

import (
	"log/slog"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/snare/internal/rules"
)

// Extractor scans raw message text for payment identifiers, URLs and long
// digit runs. It holds no state beyond its compiled patterns and is safe for
// concurrent use.
type Extractor struct {
	upi     *regexp.Regexp
	url     *regexp.Regexp
	account *regexp.Regexp
	logger  *slog.Logger
}

func New(set *rules.Set, logger *slog.Logger) *Extractor {
	return &Extractor{
		upi:     set.Patterns[rules.CategoryUPI],
		url:     set.Patterns[rules.CategoryURL],
		account: set.Patterns[rules.CategoryAccount],
		logger:  logger,
	}
}

// Extract runs every category pattern over text, upi ids first, then URLs,
// then account numbers. Each category keeps left-to-right order and any
// repeats within the message. The bank account pattern does not try to tell
// accounts apart from phone numbers or order ids, but a candidate glued to a
// letter or digit from any script ("é123456789") is not an account.
func (e *Extractor) Extract(text string) Fragment {
	f := Fragment{
		UPIIDs:       findAll(e.upi, text),
		PhishingURLs: findAll(e.url, text),
		BankAccounts: findStandalone(e.account, text),
	}

	if !f.Empty() {
		e.logger.Debug("intelligence extracted",
			"upi_ids", len(f.UPIIDs),
			"phishing_urls", len(f.PhishingURLs),
			"bank_accounts", len(f.BankAccounts),
		)
	}
	return f
}

func findAll(re *regexp.Regexp, text string) []string {
	matches := re.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// findStandalone is findAll without matches that touch a word character on
// either side. RE2's \b only knows ASCII letters, so "é123456789" would
// otherwise yield an account.
func findStandalone(re *regexp.Regexp, text string) []string {
	out := []string{}
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if touchesWord(text, loc[0], loc[1]) {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

func touchesWord(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return true
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsNumber(r)
}
