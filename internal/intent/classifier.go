package intent

import (
	"context"
	"sort"

	"github.com/pi-elearning/chatbot-go/internal/logger"
)

// DefaultThreshold is the probability at or below which predictions are
// discarded.
const DefaultThreshold = 0.25

// MetricsRecorder receives classifier call outcomes.
type MetricsRecorder interface {
	RecordClassifier(status string)
}

// Classifier wraps a Predictor with thresholding and sentinel handling.
// Classify is total: it never fails and never returns an empty list.
type Classifier struct {
	predictor Predictor
	threshold float64
	metrics   MetricsRecorder
	logger    *logger.Logger
}

// NewClassifier returns a Classifier over predictor. A negative threshold
// falls back to DefaultThreshold. Zero is a valid threshold: it keeps every
// prediction with a positive probability.
func NewClassifier(predictor Predictor, threshold float64, log *logger.Logger) *Classifier {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		predictor: predictor,
		threshold: threshold,
		logger:    log.WithModule("intent"),
	}
}

// SetMetrics attaches a metrics recorder.
func (c *Classifier) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// Classify runs the predictor on normalized text, drops predictions at or
// below the threshold, and sorts the survivors by descending probability
// with ties keeping the predictor's order. An empty result after
// thresholding yields the single sentinel {unknown, 1.0}; a predictor
// failure yields {error, 1.0}.
func (c *Classifier) Classify(ctx context.Context, normalized string) []Prediction {
	raw, err := c.predictor.Predict(ctx, normalized)
	if err != nil {
		c.logger.WithError(err).Warn("classifier unavailable, degrading to error sentinel")
		c.record("error")
		return []Prediction{{Label: LabelError, Probability: 1.0}}
	}

	kept := make([]Prediction, 0, len(raw))
	for _, p := range raw {
		if p.Probability > c.threshold {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		c.record("unknown")
		return []Prediction{{Label: LabelUnknown, Probability: 1.0}}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Probability > kept[j].Probability
	})
	c.record("ok")
	return kept
}

// Status reports the underlying predictor's model state.
func (c *Classifier) Status(ctx context.Context) Status {
	return c.predictor.Status(ctx)
}

func (c *Classifier) record(status string) {
	if c.metrics != nil {
		c.metrics.RecordClassifier(status)
	}
}
