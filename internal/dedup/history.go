// Package dedup picks reply templates while avoiding repeats.
//
// Each user keeps a sliding window of recently served templates per intent
// tag. A pick excludes everything in the window when possible; once every
// candidate has been served, the window is cleared and rotation starts over.
package dedup

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultWindowSize is how many recent picks are remembered per user and tag.
const DefaultWindowSize = 5

// MetricsRecorder receives dedup events.
type MetricsRecorder interface {
	RecordDedupReset()
}

// Picker selects reply templates with per-user repeat avoidance.
type Picker struct {
	mu      sync.Mutex
	rng     *rand.Rand
	window  int
	history map[historyKey][]string
	metrics MetricsRecorder
}

type historyKey struct {
	userID string
	tag    string
}

// New returns a Picker with the given window size. A window of zero or
// less falls back to DefaultWindowSize.
func New(window int) *Picker {
	if window <= 0 {
		window = DefaultWindowSize
	}
	return &Picker{
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		window:  window,
		history: make(map[historyKey][]string),
	}
}

// SetRand replaces the random source. Tests use this for determinism.
func (p *Picker) SetRand(rng *rand.Rand) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rng = rng
}

// SetMetrics attaches a metrics recorder.
func (p *Picker) SetMetrics(m MetricsRecorder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics = m
}

// Pick returns one of candidates for the given user and intent tag,
// preferring candidates not served within the recent window. When every
// candidate has been served the history for that user and tag is cleared
// and the pick is made from the full candidate set again.
//
// An empty candidate slice returns "".
func (p *Picker) Pick(userID, tag string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := historyKey{userID: userID, tag: tag}
	seen := p.history[key]

	fresh := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !contains(seen, c) {
			fresh = append(fresh, c)
		}
	}

	if len(fresh) == 0 {
		// Every candidate was served recently. Start a new rotation.
		p.history[key] = nil
		seen = nil
		fresh = candidates
		if p.metrics != nil {
			p.metrics.RecordDedupReset()
		}
	}

	choice := fresh[p.rng.Intn(len(fresh))]

	seen = append(seen, choice)
	if len(seen) > p.window {
		seen = seen[len(seen)-p.window:]
	}
	p.history[key] = seen

	return choice
}

// Reset drops all history for a user.
func (p *Picker) Reset(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.history {
		if key.userID == userID {
			delete(p.history, key)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
