// Package suggest ranks catalog courses against free-text queries using
// BM25. The router uses it to offer alternatives when exact matching finds
// no course.
package suggest

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/crawlab-team/bm25/bm25"

	"github.com/pi-elearning/chatbot-go/internal/catalog"
	"github.com/pi-elearning/chatbot-go/internal/logger"
	"github.com/pi-elearning/chatbot-go/internal/textnorm"
)

// Suggestion is one ranked alternative course.
type Suggestion struct {
	Course catalog.Course
	Score  float64
}

// Index is a BM25 index over catalog courses. Rebuild replaces the whole
// index; BM25 IDF weights depend on the full corpus so incremental updates
// are not supported.
type Index struct {
	mu        sync.RWMutex
	bm25Okapi *bm25.BM25Okapi
	courses   []catalog.Course
	logger    *logger.Logger
}

// NewIndex returns an empty index. Search on an empty index returns nil.
func NewIndex(log *logger.Logger) *Index {
	return &Index{logger: log.WithModule("suggest")}
}

// tokenize folds accents and case, then splits on whitespace. Matches the
// normalization the matcher applies so both see the same terms.
func tokenize(s string) []string {
	return textnorm.Tokens(textnorm.Fold(strings.ToLower(s)))
}

// Rebuild replaces the index contents with the given courses. Each course
// becomes one document built from its title and description.
func (idx *Index) Rebuild(courses []catalog.Course) error {
	if idx == nil {
		return nil
	}

	corpus := make([]string, 0, len(courses))
	kept := make([]catalog.Course, 0, len(courses))
	for _, c := range courses {
		doc := strings.TrimSpace(c.Title + " " + c.Description)
		if doc == "" {
			continue
		}
		corpus = append(corpus, doc)
		kept = append(kept, c)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if len(corpus) == 0 {
		idx.bm25Okapi = nil
		idx.courses = nil
		return nil
	}

	// k1=1.5, b=0.75 are standard BM25 parameters
	okapi, err := bm25.NewBM25Okapi(corpus, tokenize, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("build bm25 index: %w", err)
	}

	idx.bm25Okapi = okapi
	idx.courses = kept
	idx.logger.WithField("docs", len(corpus)).Debug("suggestion index rebuilt")
	return nil
}

// Search returns up to topN courses with a positive BM25 score for query,
// sorted by descending score.
func (idx *Index) Search(query string, topN int) ([]Suggestion, error) {
	if idx == nil || topN <= 0 {
		return nil, nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.bm25Okapi == nil {
		return nil, nil
	}

	scores, err := idx.bm25Okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("bm25 scoring: %w", err)
	}

	results := make([]Suggestion, 0, len(scores))
	for docID, score := range scores {
		if score > 0 {
			results = append(results, Suggestion{Course: idx.courses[docID], Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// Len returns the number of indexed courses.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.courses)
}
