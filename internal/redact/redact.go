// Package redact detects sensitive data in clipboard text and produces
// masked previews that never expose the underlying secret.
package redact

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Category names the class of sensitive data a match belongs to.
type Category string

const (
	CategoryAPIKey      Category = "api_key"
	CategoryPassword    Category = "password"
	CategorySSN         Category = "ssn"
	CategoryCreditCard  Category = "credit_card"
	CategoryPrivateKey  Category = "private_key"
	CategoryCertificate Category = "certificate"
	CategoryToken       Category = "token"
)

// Match is one detected sensitive region. Start and End are byte offsets
// into the scanned text; Mask is the replacement string for that region.
type Match struct {
	Category Category
	Start    int
	End      int
	Value    string
	Mask     string
}

// rules are evaluated in order; earlier rules win when matches share a
// start offset. group selects the capture group that holds the secret,
// zero meaning the whole match.
type rule struct {
	category Category
	re       *regexp.Regexp
	group    int
}

var rules = []rule{
	{CategoryAPIKey, regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`sk-proj-[a-zA-Z0-9_-]{20,}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`AKIA[A-Z0-9]{16}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`gho_[a-zA-Z0-9]{36}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{22,}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`xox[baprs]-[a-zA-Z0-9-]{10,}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`AIza[a-zA-Z0-9_-]{35}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`sq0[a-z]{3}-[a-zA-Z0-9_-]{22,}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`[sr]k_live_[a-zA-Z0-9]{24,}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`[sp]k_test_[a-zA-Z0-9]{24,}`), 0},
	{CategoryAPIKey, regexp.MustCompile(`pk_live_[a-zA-Z0-9]{24,}`), 0},
	{CategoryPassword, regexp.MustCompile(`(?i)(?:password|passwd|pwd|pass|secret|token|api_key|apikey|auth)[=:\s]+['"]?(\S{6,})['"]?`), 1},
	{CategorySSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), 0},
	{CategorySSN, regexp.MustCompile(`\b\d{9}\b`), 0},
	{CategoryCreditCard, regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`), 0},
	{CategoryCreditCard, regexp.MustCompile(`\b\d{4}[- ]?\d{6}[- ]?\d{5}\b`), 0},
	// PEM blocks are masked from BEGIN through END (or end of text for a
	// truncated copy) so no part of the body survives into a preview.
	{CategoryPrivateKey, regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?(?:-----END [A-Z ]*PRIVATE KEY-----|\z)`), 0},
	{CategoryPrivateKey, regexp.MustCompile(`-----END [A-Z ]*PRIVATE KEY-----`), 0},
	{CategoryCertificate, regexp.MustCompile(`(?s)-----BEGIN [A-Z0-9 ]*CERTIFICATE-----.*?(?:-----END [A-Z0-9 ]*CERTIFICATE-----|\z)`), 0},
	{CategoryCertificate, regexp.MustCompile(`-----END [A-Z0-9 ]*CERTIFICATE-----`), 0},
	{CategoryToken, regexp.MustCompile(`eyJ[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]{10,}\.[a-zA-Z0-9_-]{10,}`), 0},
	{CategoryToken, regexp.MustCompile(`Bearer\s+[a-zA-Z0-9_-]{20,}`), 0},
}

// entropyCandidate picks out long unbroken tokens worth an entropy check.
var entropyCandidate = regexp.MustCompile(`[A-Za-z0-9+/=_-]{32,}`)

// Detect scans text and returns the non-overlapping sensitive matches
// sorted by position. Credit card candidates must pass the Luhn checksum;
// overlaps resolve to the earliest match, ties to the earliest rule.
func Detect(text string) []Match {
	var matches []Match
	for _, r := range rules {
		for _, loc := range r.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			if r.group > 0 && loc[2*r.group] >= 0 {
				start, end = loc[2*r.group], loc[2*r.group+1]
			}
			value := text[start:end]
			if r.category == CategoryCreditCard && !luhnValid(digitsOnly(value)) {
				continue
			}
			matches = append(matches, Match{
				Category: r.category,
				Start:    start,
				End:      end,
				Value:    value,
				Mask:     maskValue(value, r.category),
			})
		}
	}
	for _, loc := range entropyCandidate.FindAllStringIndex(text, -1) {
		tok := text[loc[0]:loc[1]]
		if !looksRandom(tok) {
			continue
		}
		matches = append(matches, Match{
			Category: CategoryAPIKey,
			Start:    loc[0],
			End:      loc[1],
			Value:    tok,
			Mask:     maskValue(tok, CategoryAPIKey),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	kept := matches[:0]
	lastEnd := -1
	for _, m := range matches {
		if m.Start >= lastEnd {
			kept = append(kept, m)
			lastEnd = m.End
		}
	}
	return kept
}

// Mask replaces every matched region of text with its mask. The matches
// must come from Detect on the same text.
func Mask(text string, matches []Match) string {
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m.Start])
		b.WriteString(m.Mask)
		last = m.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// Scan reports whether text contains sensitive data and, when it does,
// returns the fully masked text. Clean text yields ("", false semantics):
// the second result is empty so callers never store a redundant copy.
func Scan(text string) (bool, string) {
	matches := Detect(text)
	if len(matches) == 0 {
		return false, ""
	}
	return true, Mask(text, matches)
}

// Summary renders the distinct categories of a match set for display,
// e.g. "Api Key, Password".
func Summary(matches []Match) string {
	seen := make(map[Category]bool)
	var names []string
	for _, m := range matches {
		if seen[m.Category] {
			continue
		}
		seen[m.Category] = true
		names = append(names, titleCase(string(m.Category)))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func maskValue(value string, category Category) string {
	const bullets = "••••••••"
	switch category {
	case CategorySSN:
		if strings.Contains(value, "-") {
			return "•••-••-" + value[len(value)-4:]
		}
		return "•••••" + value[len(value)-4:]
	case CategoryCreditCard:
		digits := digitsOnly(value)
		return "••••-••••-••••-" + digits[len(digits)-4:]
	case CategoryPrivateKey, CategoryCertificate:
		if strings.Contains(value, "PRIVATE KEY") {
			return "[Private Key]"
		}
		return "[Certificate]"
	case CategoryPassword:
		return bullets
	case CategoryToken:
		if strings.HasPrefix(value, "Bearer") {
			return "Bearer " + bullets
		}
		if strings.HasPrefix(value, "eyJ") {
			return value[:10] + bullets
		}
		return bullets
	default:
		// API keys keep a short recognizable prefix and the tail.
		if len(value) > 12 {
			prefixLen := len(value) / 4
			if prefixLen > 8 {
				prefixLen = 8
			}
			return value[:prefixLen] + bullets + value[len(value)-4:]
		}
		return bullets
	}
}

// looksRandom guards the entropy detector against prose and hex digests:
// a secret-looking token mixes cases and digits and has high
// per-character entropy.
func looksRandom(tok string) bool {
	var hasUpper, hasLower, hasDigit bool
	for i := 0; i < len(tok); i++ {
		switch {
		case tok[i] >= 'A' && tok[i] <= 'Z':
			hasUpper = true
		case tok[i] >= 'a' && tok[i] <= 'z':
			hasLower = true
		case tok[i] >= '0' && tok[i] <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return false
	}
	return entropy(tok) >= 4.3
}

// entropy returns the Shannon entropy of s in bits per byte.
func entropy(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}
	n := float64(len(s))
	var h float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

func luhnValid(digits string) bool {
	if digits == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func digitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
