package live

import (
	"sync"
	"time"
)

// Role identifies the speaker of an utterance.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Utterance is one contiguous run of speech by a single speaker.
type Utterance struct {
	Role Role
	Text string
	// Time is when the first fragment of the utterance arrived.
	Time time.Time
}

// Transcript aggregates streaming speech-to-text fragments into utterances.
// Consecutive fragments from the same speaker extend the current utterance;
// a fragment from the other speaker starts a new one. The two directions
// interleave in arrival order.
type Transcript struct {
	now func() time.Time

	mu         sync.Mutex
	utterances []Utterance
}

func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// Append merges one fragment into the transcript and returns a copy of the
// utterance it landed in, together with its index.
func (t *Transcript) Append(role Role, text string) (Utterance, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.utterances); n > 0 && t.utterances[n-1].Role == role {
		t.utterances[n-1].Text += text
		return t.utterances[n-1], n - 1
	}
	t.utterances = append(t.utterances, Utterance{
		Role: role,
		Text: text,
		Time: t.now(),
	})
	return t.utterances[len(t.utterances)-1], len(t.utterances) - 1
}

// Utterances returns a snapshot of the transcript so far.
func (t *Transcript) Utterances() []Utterance {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Utterance, len(t.utterances))
	copy(out, t.utterances)
	return out
}

// Len returns the number of utterances.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.utterances)
}
