// Package router composes normalization, course matching, intent
// classification and response deduplication into the end-to-end decision
// for one inbound message.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pi-elearning/chatbot-go/internal/catalog"
	"github.com/pi-elearning/chatbot-go/internal/ctxutil"
	"github.com/pi-elearning/chatbot-go/internal/dedup"
	"github.com/pi-elearning/chatbot-go/internal/intent"
	"github.com/pi-elearning/chatbot-go/internal/logger"
	"github.com/pi-elearning/chatbot-go/internal/match"
	"github.com/pi-elearning/chatbot-go/internal/sentry"
	"github.com/pi-elearning/chatbot-go/internal/suggest"
	"github.com/pi-elearning/chatbot-go/internal/textnorm"
	"github.com/pi-elearning/chatbot-go/internal/usercache"
)

// CategoryResolver resolves a module identifier to its category, used to
// build the course redirect URL. Satisfied by *catalog.Client.
type CategoryResolver interface {
	ResolveCategory(ctx context.Context, moduleID, authToken string) (string, error)
}

// MetricsRecorder receives routing outcomes.
type MetricsRecorder interface {
	RecordPredict(outcome string)
	RecordPredictDuration(path string, seconds float64)
}

// Router handles one message at a time, synchronously, and always returns
// a Reply. No path raises to the caller.
type Router struct {
	cache      *usercache.Cache
	classifier *intent.Classifier
	picker     *dedup.Picker
	resolver   CategoryResolver
	suggester  *suggest.Index
	weights    match.Weights
	suggestN   int
	metrics    MetricsRecorder
	logger     *logger.Logger
}

// Config wires the router's collaborators. Cache, Classifier and Picker
// are required; Resolver and Suggester are optional and degrade to absent
// category identifiers and no suggestions respectively.
type Config struct {
	Cache      *usercache.Cache
	Classifier *intent.Classifier
	Picker     *dedup.Picker
	Resolver   CategoryResolver
	Suggester  *suggest.Index
	Weights    match.Weights
	SuggestN   int
	Metrics    MetricsRecorder
	Logger     *logger.Logger
}

// New builds a Router from cfg.
func New(cfg Config) *Router {
	weights := cfg.Weights
	if weights == (match.Weights{}) {
		weights = match.DefaultWeights()
	}
	return &Router{
		cache:      cfg.Cache,
		classifier: cfg.Classifier,
		picker:     cfg.Picker,
		resolver:   cfg.Resolver,
		suggester:  cfg.Suggester,
		weights:    weights,
		suggestN:   cfg.SuggestN,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.WithModule("router"),
	}
}

// HandleMessage routes one message to a Reply. A recognized technology
// keyword or the literal word "cours" short-circuits to course resolution
// and never falls through to intent classification. Any panic below is
// converted into the generic error reply.
func (r *Router) HandleMessage(ctx context.Context, message, userID, authToken string) (reply Reply) {
	start := time.Now()
	path := "intent"
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("router panic: %v", rec)
			entry := r.logger.WithError(err).WithUserID(userID)
			if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
				entry = entry.WithRequestID(requestID)
			}
			entry.Error("recovered from panic while handling message")
			sentry.CaptureExceptionWithContext(ctx, err)
			r.record("panic")
			reply = errorReply()
		}
		if r.metrics != nil {
			r.metrics.RecordPredictDuration(path, time.Since(start).Seconds())
		}
	}()

	normalized := textnorm.Normalize(message)

	if match.HasCourseIntent(normalized) {
		path = "course"
		return r.handleCourseSearch(ctx, normalized, userID, authToken)
	}

	return r.handleIntent(ctx, normalized, userID)
}

func (r *Router) handleCourseSearch(ctx context.Context, normalized, userID, authToken string) Reply {
	terms := match.FilterStopWords(textnorm.Tokens(normalized))
	courses := r.cache.GetOrFetch(ctx, userID, authToken)

	best, found := match.Best(terms, courses, r.weights)
	if !found {
		r.record("course_not_found")
		return notFoundReply(r.suggestions(normalized, courses))
	}

	categoryID := best.Course.CategoryID
	if categoryID == "" && best.Course.ModuleID != "" && r.resolver != nil {
		resolved, err := r.resolver.ResolveCategory(ctx, best.Course.ModuleID, authToken)
		if err != nil {
			r.logger.WithError(err).WithField("module_id", best.Course.ModuleID).
				Debug("category resolution failed, redirect will omit the URL")
		} else {
			categoryID = resolved
		}
	}

	r.record("course_redirect")
	return courseRedirectReply(best.Course, categoryID)
}

// suggestions rebuilds the BM25 index over the user's course list and
// formats up to suggestN alternative titles.
func (r *Router) suggestions(query string, courses []catalog.Course) string {
	if r.suggester == nil || r.suggestN <= 0 {
		return ""
	}
	if err := r.suggester.Rebuild(courses); err != nil {
		r.logger.WithError(err).Warn("suggestion index rebuild failed")
		return ""
	}
	results, err := r.suggester.Search(query, r.suggestN)
	if err != nil {
		r.logger.WithError(err).Warn("suggestion search failed")
		return ""
	}

	titles := make([]string, 0, len(results))
	for _, s := range results {
		titles = append(titles, "\""+s.Course.Title+"\"")
	}
	return strings.Join(titles, ", ")
}

func (r *Router) handleIntent(ctx context.Context, normalized, userID string) Reply {
	predictions := r.classifier.Classify(ctx, normalized)
	top := predictions[0]

	if top.Label == intent.LabelUnknown || top.Label == intent.LabelError {
		r.record("fallback")
		return clarificationReply(top.Label)
	}

	def, ok := intent.DefinitionFor(top.Label)
	if !ok {
		// The model predicted a tag the response table does not know.
		r.logger.WithField("intent", top.Label).Warn("predicted intent has no definition")
		r.record("fallback")
		return clarificationReply(intent.LabelUnknown)
	}

	r.record("intent")
	return Reply{
		Response:   r.picker.Pick(userID, def.Tag, def.Responses),
		Action:     def.Action,
		Confidence: top.Probability,
		Intent:     def.Tag,
	}
}

func (r *Router) record(outcome string) {
	if r.metrics != nil {
		r.metrics.RecordPredict(outcome)
	}
}
