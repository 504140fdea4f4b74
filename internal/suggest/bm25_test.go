package suggest

import (
	"io"
	"testing"

	"github.com/pi-elearning/chatbot-go/internal/catalog"
	"github.com/pi-elearning/chatbot-go/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func testCourses() []catalog.Course {
	return []catalog.Course{
		{ID: "1", Title: "JavaScript pour débutants", Description: "Les bases du langage JavaScript"},
		{ID: "2", Title: "Python fondamentaux", Description: "Programmation Python pour débutants"},
		{ID: "3", Title: "Bases de données SQL", Description: "Requêtes et modélisation SQL"},
		{ID: "4", Title: "Docker en pratique", Description: "Conteneurs et déploiement"},
	}
}

func TestSearch_RanksRelevantCourseFirst(t *testing.T) {
	t.Parallel()

	idx := NewIndex(testLogger())
	if err := idx.Rebuild(testCourses()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	results, err := idx.Search("apprendre python", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no suggestions for a query naming an indexed technology")
	}
	if results[0].Course.ID != "2" {
		t.Errorf("top suggestion = %q, want the Python course", results[0].Course.Title)
	}
}

func TestSearch_AccentInsensitive(t *testing.T) {
	t.Parallel()

	idx := NewIndex(testLogger())
	if err := idx.Rebuild(testCourses()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// "debutants" without the accent must still reach "débutants".
	results, err := idx.Search("debutants", 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("accent-folded query found nothing")
	}
}

func TestSearch_RespectsTopN(t *testing.T) {
	t.Parallel()

	idx := NewIndex(testLogger())
	if err := idx.Rebuild(testCourses()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	results, err := idx.Search("débutants", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) > 1 {
		t.Errorf("got %d suggestions, want at most 1", len(results))
	}
}

func TestSearch_EmptyCases(t *testing.T) {
	t.Parallel()

	idx := NewIndex(testLogger())

	// Empty index.
	if results, err := idx.Search("python", 3); err != nil || results != nil {
		t.Errorf("empty index: got %v, %v", results, err)
	}

	if err := idx.Rebuild(testCourses()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// Empty and whitespace-only queries.
	for _, q := range []string{"", "   "} {
		if results, err := idx.Search(q, 3); err != nil || results != nil {
			t.Errorf("query %q: got %v, %v", q, results, err)
		}
	}

	// Nothing in common with the corpus.
	results, err := idx.Search("zzzz qqqq", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("unrelated query: got %v, want none", results)
	}
}

func TestRebuild_ReplacesContents(t *testing.T) {
	t.Parallel()

	idx := NewIndex(testLogger())
	if err := idx.Rebuild(testCourses()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if idx.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", idx.Len())
	}

	if err := idx.Rebuild([]catalog.Course{{ID: "9", Title: "Go avancé"}}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d after rebuild, want 1", idx.Len())
	}

	results, err := idx.Search("python", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Error("old corpus still searchable after rebuild")
	}
}
