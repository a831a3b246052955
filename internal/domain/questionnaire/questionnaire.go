// Package questionnaire walks a user through the lifestyle prompts one at a
// time and collects their raw answers.
package questionnaire

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/wellness/internal/domain/features"
)

// namespace seeds the stable prompt IDs so cached answers survive restarts.
var namespace = uuid.MustParse("6f1c7c1e-5a8e-4d0b-9b7a-3f7f0f0e8a11")

// Prompt is one question.
type Prompt struct {
	ID    uuid.UUID `json:"id"`
	Field string    `json:"field"`
	Text  string    `json:"text"`
}

func newPrompt(field, text string) Prompt {
	return Prompt{ID: uuid.NewSHA1(namespace, []byte(field)), Field: field, Text: text}
}

// Prompts returns the sleep questionnaire in asking order.
func Prompts() []Prompt {
	return []Prompt{
		newPrompt(features.FieldSex, "What is your sex? (Male, Female)"),
		newPrompt(features.FieldAge, "What is your age?"),
		newPrompt(features.FieldSleepDuration, "How many hours of sleep do you get on average?"),
		newPrompt(features.FieldActivityLevel, "How many minutes of exercise do you get in an average day?"),
		newPrompt(features.FieldStressLevel, "Rate your level of stress from 1-10 (low stress: 1, high stress: 10)"),
		newPrompt(features.FieldSleepDisorder, "Do you have a sleep disorder? (none: 0, sleep apnea: 1, insomnia: 2)"),
	}
}

// Session is one pass through the prompts. It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	prompts []Prompt
	current int
	answers map[uuid.UUID]string
}

// NewSession starts at the first prompt.
func NewSession() *Session {
	return &Session{
		prompts: Prompts(),
		answers: make(map[uuid.UUID]string),
	}
}

// CurrentPrompt returns the prompt awaiting an answer, or false once complete.
func (s *Session) CurrentPrompt() (Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.prompts) {
		return Prompt{}, false
	}
	return s.prompts[s.current], true
}

// SubmitAnswer records text for the current prompt and advances. Blank text
// is rejected and leaves the session where it was.
func (s *Session) SubmitAnswer(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current >= len(s.prompts) {
		return ErrComplete
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyAnswer
	}
	s.answers[s.prompts[s.current].ID] = text
	s.current++
	return nil
}

// IsComplete reports whether every prompt has an answer.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current >= len(s.prompts)
}

// Answers returns the answers keyed by field, ready for features.AssembleSleep.
func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.answers))
	for _, p := range s.prompts {
		if a, ok := s.answers[p.ID]; ok {
			out[p.Field] = a
		}
	}
	return out
}

// Snapshot returns the answers keyed by prompt ID, the form the cache persists.
func (s *Session) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.answers))
	for id, a := range s.answers {
		out[id.String()] = a
	}
	return out
}

// Restore loads cached answers and moves to the first unanswered prompt.
// Unknown IDs and blank values are ignored.
func (s *Session) Restore(cached map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.prompts {
		if a := strings.TrimSpace(cached[p.ID.String()]); a != "" {
			s.answers[p.ID] = a
		}
	}
	s.current = 0
	for s.current < len(s.prompts) {
		if _, ok := s.answers[s.prompts[s.current].ID]; !ok {
			break
		}
		s.current++
	}
}

// Clear drops the answer for field and rewinds to the first unanswered
// prompt. It returns the cleared prompt, or false for an unknown field.
func (s *Session) Clear(field string) (Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.prompts {
		if p.Field != field {
			continue
		}
		delete(s.answers, p.ID)
		if i < s.current {
			s.current = i
		}
		return p, true
	}
	return Prompt{}, false
}

// Reset clears every answer.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = make(map[uuid.UUID]string)
	s.current = 0
}
