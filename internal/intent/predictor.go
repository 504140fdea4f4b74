package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/pi-elearning/chatbot-go/internal/errors"
	"github.com/pi-elearning/chatbot-go/internal/textnorm"
)

// Status reports whether the underlying model is usable.
type Status struct {
	Loaded     bool
	NumIntents int
}

// Predictor produces raw, unthresholded predictions for a normalized text.
type Predictor interface {
	Predict(ctx context.Context, text string) ([]Prediction, error)
	Status(ctx context.Context) Status
}

// HTTPPredictor delegates classification to an external model service.
type HTTPPredictor struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPPredictor returns a predictor for the model service at baseURL.
func NewHTTPPredictor(baseURL string, timeout time.Duration) *HTTPPredictor {
	return &HTTPPredictor{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type statusResponse struct {
	ModelStatus string `json:"model_status"`
	NumIntents  int    `json:"num_intents"`
}

// Predict POSTs the text to the model service and returns its ranked
// predictions.
func (p *HTTPPredictor) Predict(ctx context.Context, text string) ([]Prediction, error) {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: model service returned %d", apperrors.ErrModelUnavailable, resp.StatusCode)
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode predict response: %w", err)
	}
	return parsed.Predictions, nil
}

// Status probes the model service health endpoint. Any failure reports an
// unloaded model rather than an error.
func (p *HTTPPredictor) Status(ctx context.Context) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return Status{}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Status{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Status{}
	}

	var parsed statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Status{}
	}
	return Status{Loaded: parsed.ModelStatus == "loaded", NumIntents: parsed.NumIntents}
}

// KeywordPredictor scores intents by counting pattern occurrences in the
// text. It needs no external service and is the default when no model
// service URL is configured.
type KeywordPredictor struct {
	defs []Definition
}

// NewKeywordPredictor returns a predictor over the static intent table.
func NewKeywordPredictor() *KeywordPredictor {
	return &KeywordPredictor{defs: Definitions()}
}

// Predict assigns each intent a probability proportional to how many of
// its patterns occur in the text. Accents are folded so "à bientôt"
// matches the unaccented pattern table. Intents with no pattern hit are
// omitted.
func (p *KeywordPredictor) Predict(_ context.Context, text string) ([]Prediction, error) {
	folded := textnorm.Fold(text)
	hits := make([]int, len(p.defs))
	total := 0
	for i, def := range p.defs {
		for _, pattern := range def.Patterns {
			if strings.Contains(folded, pattern) {
				hits[i]++
				total++
			}
		}
	}
	if total == 0 {
		return nil, nil
	}

	predictions := make([]Prediction, 0, len(p.defs))
	for i, def := range p.defs {
		if hits[i] == 0 {
			continue
		}
		predictions = append(predictions, Prediction{
			Label:       def.Tag,
			Probability: float64(hits[i]) / float64(total),
		})
	}
	return predictions, nil
}

// Status always reports a loaded model since the table is compiled in.
func (p *KeywordPredictor) Status(context.Context) Status {
	return Status{Loaded: true, NumIntents: len(p.defs)}
}
