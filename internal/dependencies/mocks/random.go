package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/matchqueue/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// TokenResults is a queue of results to return from Token
	TokenResults []string
	tokenIndex   int

	// generated counts tokens produced after the queue ran dry
	generated int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Token returns the next queued result. Once the queue is empty it returns
// distinct zero-padded counters with the same length a real token would have.
func (r *MockRandom) Token(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tokenIndex < len(r.TokenResults) {
		result := r.TokenResults[r.tokenIndex]
		r.tokenIndex++
		return result
	}

	r.generated++
	return fmt.Sprintf("%0*d", random.TokenLength(n), r.generated)
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = append(r.TokenResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = nil
	r.tokenIndex = 0
	r.generated = 0
}
