package dedup

import (
	"math/rand"
	"testing"
)

func newTestPicker(window int) *Picker {
	p := New(window)
	p.SetRand(rand.New(rand.NewSource(42)))
	return p
}

func TestPick_NoRepeatUntilExhausted(t *testing.T) {
	t.Parallel()

	candidates := []string{"a", "b", "c", "d"}
	p := newTestPicker(5)

	seen := make(map[string]bool)
	for i := 0; i < len(candidates); i++ {
		choice := p.Pick("u1", "salutation", candidates)
		if seen[choice] {
			t.Fatalf("pick %d returned %q twice before exhaustion", i, choice)
		}
		seen[choice] = true
	}
	if len(seen) != len(candidates) {
		t.Errorf("got %d distinct picks, want %d", len(seen), len(candidates))
	}
}

func TestPick_ResetsAfterExhaustion(t *testing.T) {
	t.Parallel()

	candidates := []string{"a", "b", "c"}
	p := newTestPicker(5)

	for i := 0; i < len(candidates); i++ {
		p.Pick("u1", "aide", candidates)
	}

	// All candidates served. The next pick must still succeed and may be
	// anything from the full set.
	choice := p.Pick("u1", "aide", candidates)
	if choice == "" {
		t.Fatal("pick after exhaustion returned empty string")
	}

	// And the rotation restarts: the following picks again avoid the one
	// just returned until the set is exhausted once more.
	next := p.Pick("u1", "aide", candidates)
	if next == choice {
		t.Errorf("pick immediately after reset repeated %q", choice)
	}
}

func TestPick_UsersAndTagsAreIndependent(t *testing.T) {
	t.Parallel()

	candidates := []string{"a", "b"}
	p := newTestPicker(5)

	p.Pick("u1", "salutation", candidates)
	p.Pick("u1", "salutation", candidates)

	// u1's salutation history is full, but u2 and the other tag start fresh.
	if got := p.Pick("u2", "salutation", candidates); got == "" {
		t.Error("fresh user got empty pick")
	}
	if got := p.Pick("u1", "aide", candidates); got == "" {
		t.Error("fresh tag got empty pick")
	}
}

func TestPick_WindowSlides(t *testing.T) {
	t.Parallel()

	// Six candidates with a window of 5: after five picks the oldest
	// falls out of the window and becomes eligible again.
	candidates := []string{"a", "b", "c", "d", "e", "f"}
	p := newTestPicker(5)

	picks := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		picks = append(picks, p.Pick("u1", "salutation", candidates))
	}
	// Any run of five consecutive picks must be distinct.
	for start := 0; start+5 <= len(picks); start++ {
		window := picks[start : start+5]
		seen := make(map[string]bool)
		for _, c := range window {
			if seen[c] {
				t.Fatalf("picks %v contain a repeat within a window of 5", window)
			}
			seen[c] = true
		}
	}
}

func TestPick_EdgeCases(t *testing.T) {
	t.Parallel()

	p := newTestPicker(5)

	if got := p.Pick("u1", "salutation", nil); got != "" {
		t.Errorf("empty candidates: got %q, want empty", got)
	}
	if got := p.Pick("u1", "salutation", []string{"only"}); got != "only" {
		t.Errorf("single candidate: got %q, want %q", got, "only")
	}
	// A single candidate never exhausts into an empty pick.
	if got := p.Pick("u1", "salutation", []string{"only"}); got != "only" {
		t.Errorf("repeated single candidate: got %q, want %q", got, "only")
	}
}

type countingMetrics struct{ resets int }

func (m *countingMetrics) RecordDedupReset() { m.resets++ }

func TestPick_RecordsResets(t *testing.T) {
	t.Parallel()

	candidates := []string{"a", "b"}
	p := newTestPicker(5)
	m := &countingMetrics{}
	p.SetMetrics(m)

	p.Pick("u1", "salutation", candidates)
	p.Pick("u1", "salutation", candidates)
	p.Pick("u1", "salutation", candidates) // exhausted, triggers reset

	if m.resets != 1 {
		t.Errorf("resets = %d, want 1", m.resets)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	candidates := []string{"a", "b"}
	p := newTestPicker(5)

	first := p.Pick("u1", "salutation", candidates)
	p.Reset("u1")

	// History cleared: the first pick's choice is eligible again, so two
	// picks now cover both candidates without a forced reset.
	m := &countingMetrics{}
	p.SetMetrics(m)
	got := map[string]bool{first: false}
	got[p.Pick("u1", "salutation", candidates)] = true
	got[p.Pick("u1", "salutation", candidates)] = true
	if m.resets != 0 {
		t.Errorf("resets = %d, want 0 after explicit Reset", m.resets)
	}
}
