// Package textnorm normalizes free-text chat messages before intent
// classification and course matching. Normalization is pure and total:
// unmapped tokens pass through unchanged and no input can fail.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// abbreviations maps common French SMS shorthand and tech abbreviations to
// their expanded form. Matching is against whole whitespace-delimited
// tokens, after lower-casing.
var abbreviations = map[string]string{
	// Greetings and politeness
	"slt": "salut",
	"bjr": "bonjour",
	"bsr": "bonsoir",
	"cc":  "coucou",
	"svp": "s'il vous plait",
	"stp": "s'il te plait",
	"mrc": "merci",

	// Question words
	"pk":   "pourquoi",
	"pq":   "pourquoi",
	"cmt":  "comment",
	"qd":   "quand",
	"koi":  "quoi",
	"kesk": "qu'est-ce que",

	// Common words
	"bcp":  "beaucoup",
	"tt":   "tout",
	"qlq":  "quelque",
	"qqch": "quelque chose",
	"auj":  "aujourd'hui",
	"dsl":  "desole",
	"pb":   "probleme",
	"rdv":  "rendez-vous",

	// Tech shorthand used in course queries
	"js":   "javascript",
	"ts":   "typescript",
	"py":   "python",
	"bdd":  "base de donnees",
	"algo": "algorithme",
	"prog": "programmation",
	"dev":  "developpement",
	"info": "informatique",
}

// foldTransform strips combining marks so that accented and unaccented
// spellings compare equal ("débutant" == "debutant").
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases and trims raw text, then expands each
// whitespace-delimited token found in the abbreviation table.
// Unmapped tokens are kept as-is. Never fails.
func Normalize(raw string) string {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return ""
	}

	for i, tok := range fields {
		if expanded, ok := abbreviations[tok]; ok {
			fields[i] = expanded
		}
	}

	return strings.Join(fields, " ")
}

// Fold removes diacritics from s. Used by the matcher so that query terms
// hit course titles regardless of accent spelling; Normalize itself keeps
// accents so intent patterns stay readable.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		return s
	}
	return folded
}

// Tokens returns the whitespace-delimited tokens of a normalized string.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
