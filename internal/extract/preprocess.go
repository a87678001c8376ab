// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

// Scraped article text carries artifacts that throw off tagging and
// entity recognition: typographic dashes, soft hyphens from print
// layouts, and slashed alternative forms ("Raumfahrer/Kosmonauten").
// Gendered suffix forms ("Lehrer/in", "Lehrer/-innen") must survive
// normalization because the inclusive-form matchers count them
// (prd007-inclusive-forms R1.3).
var (
	dashRun    = regexp.MustCompile(`[\x{2013}\x{2014}]+`)
	newlineRun = regexp.MustCompile(`[\r\n]+`)
	slashAlt   = regexp.MustCompile(` ?/ ?-?\pL+`)

	genderSuffixes = map[string]bool{"in": true, "innen": true, "r": true}
)

// Normalize prepares article text for annotation. It returns the
// cleaned text and the number of slashed alternatives removed, which
// the statistics stage reports for auditability.
func Normalize(text string) (string, int) {
	out := strings.ReplaceAll(text, "­", "")
	out = dashRun.ReplaceAllString(out, "-")
	out = newlineRun.ReplaceAllString(out, " ")

	removed := 0
	out = slashAlt.ReplaceAllStringFunc(out, func(match string) string {
		word := strings.TrimLeft(match, " /")
		word = strings.TrimPrefix(word, "-")
		if genderSuffixes[strings.ToLower(word)] {
			return match
		}
		removed++
		return ""
	})
	return out, removed
}
