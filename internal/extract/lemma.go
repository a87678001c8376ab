// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "strings"

var umlautReplacer = strings.NewReplacer("ä", "a", "ö", "o", "ü", "u", "Ä", "A", "Ö", "O", "Ü", "U")

// lemmaCandidates returns dictionary-form candidates for a noun
// surface, most specific first. The compiled table already lists
// flexion plurals, so the surface itself usually hits; the suffix
// rules cover plurals the dump pages left out ("Professoren",
// "Kolleginnen", "Ärzte").
func lemmaCandidates(surface string) []string {
	candidates := []string{surface}

	add := func(c string) {
		if len([]rune(c)) < 3 {
			return
		}
		for _, seen := range candidates {
			if seen == c {
				return
			}
		}
		candidates = append(candidates, c)
	}

	if strings.HasSuffix(surface, "innen") {
		add(strings.TrimSuffix(surface, "nen"))
	}
	for _, suffix := range []string{"en", "n", "e", "er", "s"} {
		if !strings.HasSuffix(surface, suffix) {
			continue
		}
		stem := strings.TrimSuffix(surface, suffix)
		add(stem)
		if plain := umlautReplacer.Replace(stem); plain != stem {
			add(plain)
		}
	}
	return candidates
}
