// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/pdiddy/depiction-engine/internal/httputil"
	"github.com/pdiddy/depiction-engine/pkg/types"
)

// wikidataAPIBase is the Wikidata SPARQL endpoint. Declared as a var so
// tests can substitute an httptest server.
var wikidataAPIBase = "https://query.wikidata.org/sparql"

// wikidataGenders maps the items a sex-or-gender claim may point at onto
// labels (R3.2). Items outside this map resolve to undetermined and are
// surfaced through the result note.
var wikidataGenders = map[string]types.GenderLabel{
	"Q6581072": types.GenderFemale,
	"Q6581097": types.GenderMale,
}

// WikidataLookup resolves person names through the Wikidata query
// service (R3.1).
type WikidataLookup struct {
	Client    *http.Client
	UserAgent string

	// Endpoint overrides the public query service. Empty selects
	// wikidataAPIBase.
	Endpoint string

	// BearerToken authenticates against a self-hosted query service.
	// The public endpoint needs none.
	BearerToken string
}

// Name returns the backend identifier.
func (l *WikidataLookup) Name() string { return "wikidata" }

func (l *WikidataLookup) base() string {
	if l.Endpoint != "" {
		return l.Endpoint
	}
	return wikidataAPIBase
}

// GenderByName resolves one person name (R3.1-R3.3). Multi-token names
// are first matched structurally against family-name and given-name
// items, then by full label. Scanned names often carry a possessive s
// ("Merkels Rede"), so an empty result is retried once with the trailing
// s of the last token stripped. Unanimous claims map through
// wikidataGenders, conflicting claims come back ambiguous, none at all
// undetermined.
func (l *WikidataLookup) GenderByName(ctx context.Context, name string) (Result, error) {
	tokens := strings.Fields(sanitizeName(name))

	qids, err := l.resolveTokens(ctx, tokens)
	if err != nil {
		return Result{}, err
	}

	if len(qids) == 0 && len(tokens) > 0 {
		if last := tokens[len(tokens)-1]; len(last) > 1 && strings.HasSuffix(last, "s") {
			tokens[len(tokens)-1] = strings.TrimSuffix(last, "s")
			qids, err = l.resolveTokens(ctx, tokens)
			if err != nil {
				return Result{}, err
			}
		}
	}

	if len(qids) == 0 {
		return Result{Gender: types.GenderUndetermined, Source: "wikidata"}, nil
	}
	return resultFromQIDs(qids), nil
}

// resolveTokens runs the structured query, falling back to a label match
// when it finds nothing or matches conflicting people.
func (l *WikidataLookup) resolveTokens(ctx context.Context, tokens []string) ([]string, error) {
	var qids []string
	if len(tokens) > 1 {
		var err error
		qids, err = l.queryGenders(ctx, structuredQuery(tokens))
		if err != nil {
			return nil, err
		}
	}
	if len(qids) == 0 || !unanimous(qids) {
		var err error
		qids, err = l.queryGenders(ctx, labelQuery(strings.Join(tokens, " ")))
		if err != nil {
			return nil, err
		}
	}
	return qids, nil
}

// queryGenders sends one SPARQL query and returns the gender item ids
// from the bindings.
func (l *WikidataLookup) queryGenders(ctx context.Context, query string) ([]string, error) {
	params := url.Values{
		"query":  {query},
		"format": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.base()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", l.UserAgent)
	req.Header.Set("Accept", "application/sparql-results+json")
	if l.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+l.BearerToken)
	}

	resp, err := httputil.DoWithRetry(ctx, l.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("query service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query service returned HTTP %d", resp.StatusCode)
	}

	var sr sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing query response: %w", err)
	}

	var qids []string
	for _, b := range sr.Results.Bindings {
		if b.Gender.Value == "" {
			continue
		}
		qids = append(qids, path.Base(b.Gender.Value))
	}
	return qids, nil
}

// sparqlResponse captures the binding values we need from a SPARQL JSON
// result set.
type sparqlResponse struct {
	Results struct {
		Bindings []struct {
			Gender struct {
				Value string `json:"value"`
			} `json:"gender"`
		} `json:"bindings"`
	} `json:"results"`
}

func unanimous(qids []string) bool {
	for _, q := range qids {
		if q != qids[0] {
			return false
		}
	}
	return true
}

func resultFromQIDs(qids []string) Result {
	if !unanimous(qids) {
		return Result{Gender: types.GenderAmbiguous, Source: "wikidata"}
	}
	if label, ok := wikidataGenders[qids[0]]; ok {
		return Result{Gender: label, Source: "wikidata"}
	}
	return Result{
		Gender: types.GenderUndetermined,
		Source: "wikidata",
		Note:   fmt.Sprintf("gender item %s outside the binary mapping", qids[0]),
	}
}

// sanitizeName strips characters that would break out of a SPARQL string
// literal.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' {
			return -1
		}
		return r
	}, name)
}

// structuredQuery matches a multi-token name against family-name and
// given-name items, the most precise match the query service offers. The
// last token is offered as the surname and every earlier token as a given
// name; the full tail is offered as well because compound surnames with
// particles ("von der Leyen") are stored as a single item.
func structuredQuery(tokens []string) string {
	surnames := make([]string, 0, len(tokens))
	for _, t := range tokens[1:] {
		surnames = append(surnames, fmt.Sprintf("%q@de", t))
	}
	if len(tokens) > 2 {
		surnames = append(surnames, fmt.Sprintf("%q@de", strings.Join(tokens[1:], " ")))
	}

	givens := make([]string, 0, len(tokens)-1)
	for _, t := range tokens[:len(tokens)-1] {
		givens = append(givens, fmt.Sprintf("%q@de", t))
	}

	var b strings.Builder
	b.WriteString("SELECT ?gender WHERE { ?item wdt:P31 wd:Q5 . ")
	fmt.Fprintf(&b, "VALUES ?surname { %s } ", strings.Join(surnames, " "))
	b.WriteString("?item wdt:P734 ?family . ?family rdfs:label|skos:altLabel ?surname . ")
	fmt.Fprintf(&b, "VALUES ?given { %s } ", strings.Join(givens, " "))
	b.WriteString("?item wdt:P735|wdt:P1449|wdt:P742 ?first . ?first rdfs:label|skos:altLabel ?given . ")
	b.WriteString("?item wdt:P21 ?gender . } LIMIT 100")
	return b.String()
}

// labelQuery matches a name against item labels and aliases in German
// and English.
func labelQuery(name string) string {
	return fmt.Sprintf(
		"SELECT ?gender WHERE { ?item wdt:P31 wd:Q5 . VALUES ?name { %q@de %q@en } "+
			"?item rdfs:label|skos:altLabel ?name . ?item wdt:P21 ?gender . } LIMIT 100",
		name, name)
}
