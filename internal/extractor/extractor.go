// Package extractor finds URLs and email addresses in plain text.
//
// Matching is regex based and deliberately conservative: URLs must start with
// http://, https:// or www., emails must have the conventional local@domain
// shape with a dotted domain. Results keep first-occurrence order and contain
// no duplicates within a category. Comparison is exact-string and
// case-sensitive, no scheme or case normalization is applied.
package extractor

import (
	"regexp"
	"strings"
)

var (
	// Catches http/https and www. prefixed URLs, including parenthesized
	// path segments (Wikipedia style). Matching stops at whitespace.
	urlPattern = regexp.MustCompile(`(?:https?://|www\.)(?:[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*|localhost)(?::\d{1,5})?(?:/[^\s()]*)?(?:\([^\s()]*\))*`)

	// Standard email address shape: local part then a dotted domain with a
	// two-letter-or-longer TLD.
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// trailing punctuation that is part of the surrounding sentence, not the URL
const trailingPunct = `.,;:!?)>"'`

// Result holds the unique URLs and email addresses found in a text,
// each in first-occurrence order.
type Result struct {
	URLs   []string `json:"urls"`
	Emails []string `json:"emails"`
}

// Extract scans text and returns the unique URLs and email addresses it
// contains. It is a pure function: empty input or input without matches
// yields empty slices, never an error.
func Extract(text string) Result {
	return Result{
		URLs:   dedupe(cleanURLs(urlPattern.FindAllString(text, -1))),
		Emails: dedupe(emailPattern.FindAllString(text, -1)),
	}
}

// cleanURLs strips sentence punctuation from the end of each candidate and
// drops matches too short or dotless to be a real URL.
func cleanURLs(candidates []string) []string {
	cleaned := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = trimTrailing(c)
		if len(c) > 5 && strings.Contains(c, ".") {
			cleaned = append(cleaned, c)
		}
	}
	return cleaned
}

// trimTrailing removes trailing sentence punctuation. A closing parenthesis
// is kept while the candidate still has an unmatched opening one.
func trimTrailing(s string) string {
	for len(s) > 0 {
		last := s[len(s)-1]
		if !strings.ContainsRune(trailingPunct, rune(last)) {
			break
		}
		if last == ')' && strings.Count(s, "(") >= strings.Count(s, ")") {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// dedupe removes repeated values, keeping the first occurrence of each.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
