package router

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/pi-elearning/chatbot-go/internal/catalog"
	"github.com/pi-elearning/chatbot-go/internal/dedup"
	"github.com/pi-elearning/chatbot-go/internal/intent"
	"github.com/pi-elearning/chatbot-go/internal/logger"
	"github.com/pi-elearning/chatbot-go/internal/suggest"
	"github.com/pi-elearning/chatbot-go/internal/usercache"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

type stubFetcher struct {
	courses []catalog.Course
	panics  bool
}

func (s *stubFetcher) FetchCourses(context.Context, string, string) []catalog.Course {
	if s.panics {
		panic("fetcher exploded")
	}
	return s.courses
}

type stubPredictor struct {
	predictions []intent.Prediction
	err         error
}

func (s *stubPredictor) Predict(context.Context, string) ([]intent.Prediction, error) {
	return s.predictions, s.err
}

func (s *stubPredictor) Status(context.Context) intent.Status {
	return intent.Status{Loaded: true, NumIntents: intent.Count()}
}

type stubResolver struct {
	categoryID string
	err        error
}

func (s *stubResolver) ResolveCategory(context.Context, string, string) (string, error) {
	return s.categoryID, s.err
}

func newTestRouter(fetcher usercache.Fetcher, predictor intent.Predictor, resolver CategoryResolver) *Router {
	log := testLogger()
	picker := dedup.New(5)
	picker.SetRand(rand.New(rand.NewSource(7)))
	return New(Config{
		Cache:      usercache.New(time.Minute, fetcher),
		Classifier: intent.NewClassifier(predictor, 0.25, log),
		Picker:     picker,
		Resolver:   resolver,
		Suggester:  suggest.NewIndex(log),
		SuggestN:   3,
		Logger:     log,
	})
}

func TestHandleMessage_CourseRedirect(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{courses: []catalog.Course{
		{ID: "c1", Title: "JavaScript pour débutants", Description: "Les bases", ModuleID: "m1"},
		{ID: "c2", Title: "Python fondamentaux", Description: "Programmation Python"},
	}}
	r := newTestRouter(fetcher, &stubPredictor{}, &stubResolver{categoryID: "cat1"})

	reply := r.HandleMessage(context.Background(), "je veux voir le cours javascript", "u1", "tok")

	if reply.Action != "redirect_course" {
		t.Errorf("action = %q, want redirect_course", reply.Action)
	}
	if !reply.ShouldRedirect {
		t.Error("shouldRedirect = false, want true")
	}
	if reply.CourseData == nil || reply.CourseData.Title != "JavaScript pour débutants" {
		t.Errorf("course_data = %+v, want the JavaScript course", reply.CourseData)
	}
	if reply.RedirectData == nil || reply.RedirectData.CourseID != "c1" {
		t.Errorf("redirect_data = %+v, want courseId c1", reply.RedirectData)
	}
	if reply.RedirectURL != "/categories/cat1/modules/m1" {
		t.Errorf("redirect_url = %q, want /categories/cat1/modules/m1", reply.RedirectURL)
	}
	if reply.Intent != "recherche_cours" {
		t.Errorf("intent = %q, want recherche_cours", reply.Intent)
	}
}

func TestHandleMessage_CourseRedirectWithoutCategory(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{courses: []catalog.Course{
		{ID: "c1", Title: "JavaScript pour débutants", ModuleID: "m1"},
	}}
	r := newTestRouter(fetcher, &stubPredictor{}, &stubResolver{err: errors.New("module service down")})

	reply := r.HandleMessage(context.Background(), "cours javascript", "u1", "")

	// Category resolution failure degrades: still a redirect, no URL.
	if reply.Action != "redirect_course" {
		t.Fatalf("action = %q, want redirect_course", reply.Action)
	}
	if reply.RedirectURL != "" {
		t.Errorf("redirect_url = %q, want empty when category is unknown", reply.RedirectURL)
	}
	if reply.RedirectData == nil || reply.RedirectData.ModuleID != "m1" {
		t.Errorf("redirect_data = %+v, want moduleId m1 preserved", reply.RedirectData)
	}
}

func TestHandleMessage_CourseNotFound(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{courses: []catalog.Course{
		{ID: "c1", Title: "Python fondamentaux", Description: "Programmation Python"},
	}}
	predictor := &stubPredictor{predictions: []intent.Prediction{{Label: "salutation", Probability: 0.9}}}
	r := newTestRouter(fetcher, predictor, nil)

	reply := r.HandleMessage(context.Background(), "cours cobol", "u1", "")

	// The course path never falls through to intent classification.
	if reply.Intent != "recherche_cours" {
		t.Errorf("intent = %q, want recherche_cours (no fall-through)", reply.Intent)
	}
	if reply.Action != "" || reply.ShouldRedirect {
		t.Errorf("not-found reply must not redirect: %+v", reply)
	}
	if reply.Response == "" {
		t.Error("not-found reply has empty response text")
	}
}

func TestHandleMessage_IntentTemplate(t *testing.T) {
	t.Parallel()

	predictor := &stubPredictor{predictions: []intent.Prediction{{Label: "salutation", Probability: 0.9}}}
	r := newTestRouter(&stubFetcher{}, predictor, nil)

	reply := r.HandleMessage(context.Background(), "bonjour", "u1", "")

	def, _ := intent.DefinitionFor("salutation")
	found := false
	for _, tpl := range def.Responses {
		if reply.Response == tpl {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("response %q is not one of the salutation templates", reply.Response)
	}
	if reply.Action != "" {
		t.Errorf("action = %q, want absent", reply.Action)
	}
	if reply.Confidence != 0.9 {
		t.Errorf("confidence = %f, want 0.9", reply.Confidence)
	}
	if reply.Intent != "salutation" {
		t.Errorf("intent = %q, want salutation", reply.Intent)
	}
}

func TestHandleMessage_UnknownSentinel(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&stubFetcher{}, &stubPredictor{}, nil)

	reply := r.HandleMessage(context.Background(), "texte sans rapport", "u1", "")

	if reply.Intent != intent.LabelUnknown {
		t.Errorf("intent = %q, want unknown", reply.Intent)
	}
	if reply.Confidence != 0 {
		t.Errorf("confidence = %f, want 0", reply.Confidence)
	}
	if reply.Response == "" {
		t.Error("clarification reply has empty response text")
	}
}

func TestHandleMessage_ClassifierUnavailable(t *testing.T) {
	t.Parallel()

	predictor := &stubPredictor{err: errors.New("model service unreachable")}
	r := newTestRouter(&stubFetcher{}, predictor, nil)

	reply := r.HandleMessage(context.Background(), "quelque chose", "u1", "")

	if reply.Intent != intent.LabelError {
		t.Errorf("intent = %q, want error", reply.Intent)
	}
	if reply.Confidence != 0 {
		t.Errorf("confidence = %f, want 0", reply.Confidence)
	}
}

func TestHandleMessage_PanicRecovery(t *testing.T) {
	t.Parallel()

	r := newTestRouter(&stubFetcher{panics: true}, &stubPredictor{}, nil)

	reply := r.HandleMessage(context.Background(), "cours javascript", "u1", "")

	if reply.Intent != "error" {
		t.Errorf("intent = %q, want error after panic", reply.Intent)
	}
	if reply.Confidence != 0 {
		t.Errorf("confidence = %f, want 0 after panic", reply.Confidence)
	}
	if reply.Response == "" {
		t.Error("panic reply has empty response text")
	}
}

func TestHandleMessage_DedupRotatesTemplates(t *testing.T) {
	t.Parallel()

	predictor := &stubPredictor{predictions: []intent.Prediction{{Label: "salutation", Probability: 0.9}}}
	r := newTestRouter(&stubFetcher{}, predictor, nil)

	def, _ := intent.DefinitionFor("salutation")
	seen := make(map[string]bool)
	for i := 0; i < len(def.Responses); i++ {
		reply := r.HandleMessage(context.Background(), "bonjour", "u1", "")
		if seen[reply.Response] {
			t.Fatalf("template %q repeated before the set was exhausted", reply.Response)
		}
		seen[reply.Response] = true
	}
}

func TestHandleMessage_AbbreviationExpansion(t *testing.T) {
	t.Parallel()

	// "js" expands to "javascript", which is a technology keyword, so the
	// message routes to course search even without the word "cours".
	fetcher := &stubFetcher{courses: []catalog.Course{
		{ID: "c1", Title: "JavaScript pour débutants"},
	}}
	r := newTestRouter(fetcher, &stubPredictor{}, nil)

	reply := r.HandleMessage(context.Background(), "je cherche du js", "u1", "")

	if reply.Action != "redirect_course" {
		t.Errorf("action = %q, want redirect_course via abbreviation expansion", reply.Action)
	}
}
