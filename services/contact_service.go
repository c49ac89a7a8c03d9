package services

import (
	"regexp"
	"strings"

	"MenuScout/models"
)

var (
	// Loose: optional international prefix, any mix of common separators,
	// optional extension. Candidates are checked for digit count afterwards.
	phoneRegex     = regexp.MustCompile(`(?i)(?:\+|\b00)?\(?\d[\d \t().\-/\\]{5,}\d(?:[ \t]*(?:#|ext\.?|extension|x)[ \t.\-]*\d+)?`)
	phoneExtRegex  = regexp.MustCompile(`(?i)(?:#|ext\.?|extension|x)[ \t.\-]*\d+$`)
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	tokenPunctTrim = "\"'<>()[]{},;:!?."
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// ContactScraper pulls phone numbers and email addresses out of page text.
type ContactScraper struct{}

// Scrape returns every phone and email found in text, in order of appearance.
func (ContactScraper) Scrape(text string) (phones, emails []string) {
	for _, m := range phoneRegex.FindAllString(text, -1) {
		phones = append(phones, splitPhones(strings.TrimSpace(m))...)
	}
	for _, tok := range strings.Fields(text) {
		tok = strings.Trim(tok, tokenPunctTrim)
		tok = strings.TrimPrefix(tok, "mailto:")
		if emailRegex.MatchString(tok) {
			emails = append(emails, tok)
		}
	}
	return phones, emails
}

// Augment appends whatever Scrape finds to the restaurant. Nothing is deduplicated.
func (c ContactScraper) Augment(r *models.Restaurant, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	phones, emails := c.Scrape(text)
	r.PhoneNumbers = append(r.PhoneNumbers, phones...)
	r.Emails = append(r.Emails, emails...)
}

// splitPhones accepts a candidate whose digit count is in range. Longer runs
// are cut at bare separators ("/", "-") and then partitioned at whitespace
// into numbers that are each in range. A run with no such partition is
// dropped. A trailing extension stays on the last number.
func splitPhones(m string) []string {
	ext := phoneExtRegex.FindString(m)
	base := strings.TrimSpace(strings.TrimSuffix(m, ext))
	if n := countDigits(base); n >= minPhoneDigits && n <= maxPhoneDigits {
		return []string{m}
	}

	var phones, run []string
	lastOK := false
	flush := func() {
		groups, ok := partitionPhones(run)
		if ok && len(groups) > 0 {
			phones = append(phones, groups...)
		}
		lastOK = ok && len(groups) > 0
		run = nil
	}
	for _, tok := range strings.Fields(base) {
		if countDigits(tok) == 0 {
			flush()
			continue
		}
		run = append(run, tok)
	}
	flush()

	if ext != "" && lastOK {
		phones[len(phones)-1] += " " + strings.TrimSpace(ext)
	}
	return phones
}

// partitionPhones splits tokens into consecutive groups of minPhoneDigits to
// maxPhoneDigits digits each, preferring the shortest leading group.
func partitionPhones(tokens []string) ([]string, bool) {
	if len(tokens) == 0 {
		return nil, true
	}
	digits := 0
	for j, tok := range tokens {
		digits += countDigits(tok)
		if digits > maxPhoneDigits {
			break
		}
		if digits < minPhoneDigits {
			continue
		}
		if rest, ok := partitionPhones(tokens[j+1:]); ok {
			return append([]string{strings.Join(tokens[:j+1], " ")}, rest...), true
		}
	}
	return nil, false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
