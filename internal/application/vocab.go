package application

import (
	"strings"

	"github.com/gosimple/slug"
)

// Intake matching tables. The form wording is not contractually fixed, so
// label matching, truthy coercion, and the expertise vocabulary are kept as
// versioned data: a new phrasing variant is a data change, not a code change.
const VocabVersion = "2026-08"

// Canonical intake fields.
const (
	FieldEmail       = "email"
	FieldFullName    = "full_name"
	FieldInstitution = "institution"
	FieldGradYear    = "graduation_year"
	FieldExpertise   = "expertise"
	FieldMotivation  = "motivation"
	FieldAge         = "age_confirmed"
	FieldAgreement   = "agreement_accepted"
)

// fieldKeywords maps a substring of the (lower-cased) question label to a
// canonical field. Order matters: the first match wins, so the more specific
// entries come first.
var fieldKeywords = []struct {
	keyword string
	field   string
}{
	{"e-mail", FieldEmail},
	{"email", FieldEmail},
	{"institution", FieldInstitution},
	{"university", FieldInstitution},
	{"college", FieldInstitution},
	{"school", FieldInstitution},
	{"graduation", FieldGradYear},
	{"grad year", FieldGradYear},
	{"class of", FieldGradYear},
	{"expertise", FieldExpertise},
	{"areas", FieldExpertise},
	{"topics", FieldExpertise},
	{"subjects", FieldExpertise},
	{"motivation", FieldMotivation},
	{"why do you", FieldMotivation},
	{"agree", FieldAgreement},
	{"terms", FieldAgreement},
	{"18", FieldAge},
	{"older", FieldAge},
	{"consent", FieldAge},
	{"age", FieldAge},
	{"full name", FieldFullName},
	{"your name", FieldFullName},
	// bare "name" last so "institution name" style labels resolve first
	{"name", FieldFullName},
}

// truthyPhrases is the allow-list for boolean-like answers. Anything not on
// the list coerces to false, never to an error: consent and age fields are
// fail-closed.
var truthyPhrases = map[string]struct{}{
	"yes":                   {},
	"y":                     {},
	"true":                  {},
	"1":                     {},
	"agree":                 {},
	"agreed":                {},
	"i agree":               {},
	"yes, i agree":          {},
	"accept":                {},
	"i accept":              {},
	"confirm":               {},
	"confirmed":             {},
	"i confirm":             {},
	"i do":                  {},
	"of course":             {},
	"18 or older":           {},
	"i am 18 or older":      {},
	"yes, i am 18":          {},
	"i am over 18":          {},
	"over 18":               {},
	"absolutely":            {},
	"correct":               {},
	"that's correct":        {},
	"i consent":             {},
	"i give my consent":     {},
	"i have read and agree": {},
}

// expertiseVocab maps known answer spellings to canonical slugs. Tokens not
// in the map are slugified and passed through so novel options never vanish.
var expertiseVocab = map[string]string{
	"cs":                   "computer-science",
	"comp sci":             "computer-science",
	"computer science":     "computer-science",
	"software":             "software-engineering",
	"software engineering": "software-engineering",
	"ml":                   "machine-learning",
	"machine learning":     "machine-learning",
	"ai":                   "machine-learning",
	"data science":         "data-science",
	"math":                 "mathematics",
	"maths":                "mathematics",
	"mathematics":          "mathematics",
	"physics":              "physics",
	"chemistry":            "chemistry",
	"biology":              "biology",
	"medicine":             "medicine",
	"pre-med":              "medicine",
	"law":                  "law",
	"business":             "business",
	"economics":            "economics",
	"econ":                 "economics",
	"finance":              "finance",
	"design":               "design",
	"writing":              "writing",
	"college essays":       "college-essays",
	"essays":               "college-essays",
	"admissions":           "admissions",
	"college admissions":   "admissions",
}

// CanonicalField resolves a free-text question label to a canonical field by
// substring match. Resilient to paraphrase: any label containing "email" maps
// to the email field.
func CanonicalField(label string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, fk := range fieldKeywords {
		if strings.Contains(l, fk.keyword) {
			return fk.field, true
		}
	}
	return "", false
}

// Truthy coerces a boolean-like answer into a strict bool via the allow-list.
func Truthy(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	a = strings.Trim(a, ".!")
	_, ok := truthyPhrases[a]
	return ok
}

// NormalizeList splits a semicolon- or comma-delimited answer and maps each
// token through the expertise vocabulary, slugifying unknown tokens.
func NormalizeList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ','
	})
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tok := strings.ToLower(strings.TrimSpace(f))
		if tok == "" {
			continue
		}
		canonical, ok := expertiseVocab[tok]
		if !ok {
			canonical = slug.Make(tok)
		}
		if canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	return out
}
