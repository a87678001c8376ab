// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prn

import (
	"regexp"
	"strings"

	"github.com/pdiddy/depiction-engine/pkg/types"
)

// entry is the parsed view of one dictionary page that the rule list
// runs over. Parsing is separated from classification so each rule stays
// a pure function over this record (prd002-prn-compiler R3.1).
type entry struct {
	// Title is the page headword.
	Title string

	// CommonNoun reports a German common-noun section on the page.
	CommonNoun bool

	// ProperNoun reports a surname, given-name, toponym, or proper-name
	// part-of-speech marker alongside the noun section.
	ProperNoun bool

	// FemaleForms and MaleForms hold the lemmas listed under the page's
	// female/male word-form cross-reference blocks.
	FemaleForms []string
	MaleForms   []string

	// Hypernyms is the lowercased text of the hypernym/hyponym blocks.
	Hypernyms string

	// PluralForms holds the nominative plural forms from the inflection
	// table.
	PluralForms []string
}

// classification is one lemma-to-gender assignment produced by a rule.
type classification struct {
	Lemma  string
	Gender types.GenderLabel
}

const germanHeading = "{{Sprache|Deutsch}}"

var (
	linkPattern   = regexp.MustCompile(`\[\[([^\]|#]+)`)
	pluralPattern = regexp.MustCompile(`(?m)^\s*\|Nominativ Plural[^=]*=\s*(.+?)\s*$`)
)

// properNounMarkers are part-of-speech templates whose presence excludes
// a page: names are resolved against the knowledge base, not the noun
// lexicon (R1.2).
var properNounMarkers = []string{
	"{{Wortart|Nachname",
	"{{Wortart|Vorname",
	"{{Wortart|Eigenname",
	"{{Wortart|Toponym",
}

// parseEntry extracts the rule-relevant view from a dump page. Only the
// page's German section is considered; other language sections of the
// same headword are ignored.
func parseEntry(title, text string) entry {
	section := germanSection(text)
	if section == "" {
		return entry{Title: title}
	}

	e := entry{
		Title:      title,
		CommonNoun: strings.Contains(section, "{{Wortart|Substantiv|Deutsch}}"),
	}
	for _, marker := range properNounMarkers {
		if strings.Contains(section, marker) {
			e.ProperNoun = true
			break
		}
	}

	e.FemaleForms = linkTargets(sectionBody(section, "{{Weibliche Wortformen}}"))
	e.MaleForms = linkTargets(sectionBody(section, "{{Männliche Wortformen}}"))
	e.Hypernyms = strings.ToLower(
		sectionBody(section, "{{Oberbegriffe}}") + "\n" + sectionBody(section, "{{Unterbegriffe}}"))

	for _, m := range pluralPattern.FindAllStringSubmatch(section, -1) {
		form := m[1]
		if form == "" || form == "—" || form == "-" || strings.Contains(form, "{") {
			continue
		}
		e.PluralForms = append(e.PluralForms, form)
	}

	return e
}

// germanSection slices the page text from the German language heading to
// the next language heading.
func germanSection(text string) string {
	idx := strings.Index(text, germanHeading)
	if idx < 0 {
		return ""
	}
	section := text[idx:]
	if next := strings.Index(section[len(germanHeading):], "{{Sprache|"); next >= 0 {
		section = section[:len(germanHeading)+next]
	}
	return section
}

// sectionBody returns the lines following a block template until the
// next block starts (template heading, section heading, or blank line).
func sectionBody(text, marker string) string {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(marker):]
	nl := strings.Index(rest, "\n")
	if nl < 0 {
		return ""
	}
	rest = rest[nl+1:]

	var b strings.Builder
	for _, line := range strings.Split(rest, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "{{") || strings.HasPrefix(trimmed, "=") {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// linkTargets extracts wiki-link targets, dropping namespace links.
func linkTargets(body string) []string {
	var targets []string
	for _, m := range linkPattern.FindAllStringSubmatch(body, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" || strings.Contains(target, ":") {
			continue
		}
		targets = append(targets, target)
	}
	return targets
}

// filter is a named predicate an entry must pass before any rule runs.
type filter struct {
	name string
	keep func(entry) bool
}

// animalMarkers are hypernym substrings marking an entry as denoting an
// animal or fantasy being rather than a person (R3.3).
var animalMarkers = []string{"tier", "vogel", "stute", "hengst", "pferd", "fabelwesen"}

var filters = []filter{
	{
		name: "german-common-noun",
		keep: func(e entry) bool { return e.CommonNoun && !e.ProperNoun },
	},
	{
		name: "animal-fantasy",
		keep: func(e entry) bool {
			for _, marker := range animalMarkers {
				if strings.Contains(e.Hypernyms, marker) {
					return false
				}
			}
			return true
		},
	},
}

// rule is one named classification heuristic.
type rule struct {
	name  string
	apply func(entry) []classification
}

var rules = []rule{
	{name: "cross-reference", apply: crossReference},
	{name: "plural-flexion", apply: pluralFlexion},
}

// entryGender derives the gender of the entry itself from its word-form
// cross-references: a page listing female counterparts (and no male
// ones) denotes the male person, and mirrored for female. Pages listing
// both or neither give no signal (R3.2, R3.5).
func entryGender(e entry) (types.GenderLabel, bool) {
	hasFemale := len(e.FemaleForms) > 0
	hasMale := len(e.MaleForms) > 0
	switch {
	case hasFemale && !hasMale:
		return types.GenderMale, true
	case hasMale && !hasFemale:
		return types.GenderFemale, true
	default:
		return "", false
	}
}

// crossReference classifies the entry and every lemma its word-form
// block lists.
func crossReference(e entry) []classification {
	g, ok := entryGender(e)
	if !ok {
		return nil
	}

	out := []classification{{Lemma: e.Title, Gender: g}}
	listed := e.FemaleForms
	listedGender := types.GenderFemale
	if g == types.GenderFemale {
		listed = e.MaleForms
		listedGender = types.GenderMale
	}
	for _, lemma := range listed {
		out = append(out, classification{Lemma: lemma, Gender: listedGender})
	}
	return out
}

// pluralFlexion records the entry's nominative plural forms under the
// entry's own gender, covering group usage like "die Lehrerinnen" (R3.4).
func pluralFlexion(e entry) []classification {
	g, ok := entryGender(e)
	if !ok {
		return nil
	}

	var out []classification
	for _, form := range e.PluralForms {
		if form == e.Title {
			continue
		}
		out = append(out, classification{Lemma: form, Gender: g})
	}
	return out
}

// classify runs the filter and rule lists over one parsed entry.
// Entries no rule can place yield nothing: omission is preferred to
// silent misclassification (R3.5).
func classify(e entry) []classification {
	for _, f := range filters {
		if !f.keep(e) {
			return nil
		}
	}

	var out []classification
	for _, r := range rules {
		out = append(out, r.apply(e)...)
	}
	return out
}
