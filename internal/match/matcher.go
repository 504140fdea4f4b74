// Package match ranks catalog courses against a user query using a weighted
// term-match score. Scoring is deterministic: no randomness, and ties keep
// original catalog order.
package match

import (
	"sort"
	"strings"

	"github.com/pi-elearning/chatbot-go/internal/catalog"
	"github.com/pi-elearning/chatbot-go/internal/textnorm"
)

// Weights holds the per-hit score contributions. The defaults are empirical
// values carried over from the original ranking behavior: a technology name
// in a title almost always means the user wants that literal course, so the
// title bonus dominates incidental description mentions.
type Weights struct {
	Title          int // term occurs in the course title
	Description    int // term occurs in the description
	TechTitleBonus int // term is a known technology keyword and occurs in the title
}

// DefaultWeights returns the standard 10/5/20 weighting.
func DefaultWeights() Weights {
	return Weights{Title: 10, Description: 5, TechTitleBonus: 20}
}

// ScoredCourse pairs a course with its match score. Only exists for the
// duration of one matching operation.
type ScoredCourse struct {
	Course catalog.Course
	Score  int
}

// stopWords are French function words plus the generic course-request terms,
// which carry no ranking signal on their own.
var stopWords = map[string]bool{
	"le": true, "la": true, "les": true, "un": true, "une": true, "des": true,
	"de": true, "du": true, "au": true, "aux": true, "a": true, "à": true,
	"et": true, "ou": true, "en": true, "sur": true, "pour": true, "avec": true,
	"dans": true, "par": true, "ce": true, "cette": true, "ces": true,
	"je": true, "tu": true, "il": true, "elle": true, "on": true, "nous": true,
	"vous": true, "ils": true, "elles": true, "me": true, "moi": true, "te": true,
	"veux": true, "voudrais": true, "cherche": true, "voir": true, "suivre": true,
	"apprendre": true, "montre": true, "donne": true, "trouve": true,
	"est": true, "sont": true, "être": true, "avoir": true, "faire": true,
	"que": true, "qui": true, "quoi": true, "quel": true, "quelle": true,
	"pas": true, "ne": true, "plus": true, "très": true, "bien": true,
	"bonjour": true, "salut": true, "merci": true,
	"cours": true, "formation": true,
}

// techKeywords is the fixed set of recognized technology names, mirroring the
// catalog's category vocabulary plus common framework names users type.
var techKeywords = map[string]bool{
	"javascript": true, "typescript": true, "python": true, "java": true,
	"csharp": true, "sql": true, "mongodb": true, "html": true, "css": true,
	"php": true, "ruby": true, "go": true, "golang": true, "rust": true,
	"swift": true, "kotlin": true, "scala": true, "r": true, "shell": true,
	"powershell": true, "bash": true, "docker": true, "yaml": true,
	"json": true, "xml": true, "markdown": true,
	"react": true, "angular": true, "vue": true, "node": true, "nodejs": true,
	"flutter": true, "django": true, "laravel": true, "kubernetes": true,
	"git": true, "linux": true,
}

// IsTechKeyword reports whether term (exact token, accent-insensitive) is a
// recognized technology name.
func IsTechKeyword(term string) bool {
	return techKeywords[strings.ToLower(textnorm.Fold(term))]
}

// FilterStopWords strips function words and the generic course-request terms
// from query tokens.
func FilterStopWords(terms []string) []string {
	filtered := make([]string, 0, len(terms))
	for _, term := range terms {
		if !stopWords[term] && !stopWords[textnorm.Fold(term)] {
			filtered = append(filtered, term)
		}
	}
	return filtered
}

// HasCourseIntent reports whether the normalized message should short-circuit
// to the catalog path: it contains a recognized technology keyword or the
// literal word "cours".
func HasCourseIntent(normalized string) bool {
	for _, tok := range textnorm.Tokens(normalized) {
		if tok == "cours" || IsTechKeyword(tok) {
			return true
		}
	}
	return false
}

// Match scores courses against query terms and returns positive-score
// courses sorted descending. Comparison is case- and accent-insensitive.
// An empty result is the defined "not found" outcome, not an error.
func Match(queryTerms []string, courses []catalog.Course, w Weights) []ScoredCourse {
	terms := FilterStopWords(queryTerms)
	if len(terms) == 0 {
		return nil
	}

	scored := make([]ScoredCourse, 0, len(courses))
	for _, course := range courses {
		title := strings.ToLower(textnorm.Fold(course.Title))
		description := strings.ToLower(textnorm.Fold(course.Description))

		score := 0
		for _, raw := range terms {
			term := strings.ToLower(textnorm.Fold(raw))
			if term == "" {
				continue
			}
			inTitle := strings.Contains(title, term)
			if inTitle {
				score += w.Title
			}
			if strings.Contains(description, term) {
				score += w.Description
			}
			if inTitle && techKeywords[term] {
				score += w.TechTitleBonus
			}
		}

		if score > 0 {
			scored = append(scored, ScoredCourse{Course: course, Score: score})
		}
	}

	// Stable sort keeps catalog order on equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// Best returns the top-ranked course, if any.
func Best(queryTerms []string, courses []catalog.Course, w Weights) (ScoredCourse, bool) {
	ranked := Match(queryTerms, courses, w)
	if len(ranked) == 0 {
		return ScoredCourse{}, false
	}
	return ranked[0], true
}
