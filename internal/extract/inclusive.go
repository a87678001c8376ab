// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "regexp"

// Inclusive-writing categories (prd007-inclusive-forms R1.1):
//
//	binary            forms covering female and male readers without the
//	                  written-out pair ("LehrerInnen", "Lehrer/-in")
//	gender-inclusive  star, underscore, and colon forms that reach past
//	                  the binary ("Lehrer*innen", "Lehrer:innen")
//	neopronouns       gender-neutral pronouns outside official German
//	gender-conceptions vocabulary of non-heteronormative gender identity
var formMatchers = []struct {
	name string
	re   *regexp.Regexp
}{
	{"binary", regexp.MustCompile(`[A-Z]\S*((Innen|In|eR)\b|/-?(in|innen|r)\b|\((in|innen|r)\))`)},
	{"gender-inclusive", regexp.MustCompile(`[A-Z]\S*(\*|_|:)(innen|in|r)\b`)},
	{"neopronouns", regexp.MustCompile(`(?i)\b(hän|hen|ham|they|them|dey|demm|sie?(\*|_|:)?er|xier)\b`)},
	{"gender-conceptions", regexp.MustCompile(`(?i)(trans\*?-?(\*|gender|geschlechtlich(keit)?|ident|sexuell|sexualität|(-| )?mann|(-| )?frau|(-| )?person)|\btrans\b|inter-?(\*|geschlechtlich(keit)?|sex|sexuell|sexualität)|\binter\b|nicht-?binär|non-?binary|enby|gender-?fluid|poly-?gender|hetero-?normativität|hetero-?normativ|lgbtq?i?a?(2s)?\+?|lsbtt?i?a?q?\+|(gender.?)?queer)`)},
}

// CountInclusiveForms counts occurrences of each inclusive-writing
// category in normalized article text (R1.2).
func CountInclusiveForms(text string) map[string]int {
	counts := make(map[string]int, len(formMatchers))
	for _, m := range formMatchers {
		counts[m.name] = len(m.re.FindAllStringIndex(text, -1))
	}
	return counts
}
