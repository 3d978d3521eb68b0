package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/matchqueue/internal/dependencies/mocks"
	"github.com/mcoot/matchqueue/internal/services/accounts"
	"github.com/mcoot/matchqueue/internal/storage/memory"
	"github.com/mcoot/matchqueue/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	// MemoryStorage is the backing store, for direct inspection
	MemoryStorage *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Password hashing uses the minimum bcrypt cost to keep tests fast.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, accounts.Config{BcryptCost: bcrypt.MinCost}, Config{}, testutil.NopLogger())

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MemoryStorage: store,
	}
}
