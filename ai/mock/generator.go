package mock

import (
	"context"
	"sync"

	"github.com/poiesic/quaerit/core"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	// If nil, uses default deterministic behavior.
	GenerateAnswerFunc func(ctx context.Context, history core.Window, question, docContext string) (string, error)

	mu        sync.Mutex
	callCount int
	questions []string
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// GenerateAnswer returns a deterministic answer echoing the question.
func (m *MockGenerator) GenerateAnswer(ctx context.Context, history core.Window, question, docContext string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.questions = append(m.questions, question)
	m.mu.Unlock()

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, history, question, docContext)
	}

	// Default: deterministic echo so tests can assert on the output
	return "mock answer: " + question, nil
}

// CallCount returns the number of times GenerateAnswer was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Questions returns the questions passed to GenerateAnswer, in call order.
func (m *MockGenerator) Questions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.questions))
	copy(out, m.questions)
	return out
}

// Reset clears the call count, recorded questions, and custom functions.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.questions = nil
	m.GenerateAnswerFunc = nil
}
