package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/halveric/CosmeticsCore_Go/internal/domain"
)

// MockRepository implements repository.Ledger for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetBalance(ctx context.Context, playerID string) (int, bool, error) {
	args := m.Called(ctx, playerID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockRepository) SetBalance(ctx context.Context, playerID string, balance int) error {
	args := m.Called(ctx, playerID, balance)
	return args.Error(0)
}

// fakeSessions implements Sessions with a fixed online set
type fakeSessions struct {
	online map[string]bool
}

func (f *fakeSessions) IsOnline(playerID string) bool {
	return f.online[playerID]
}

func testOptions() Options {
	return Options{
		MaxBalance:     1_000_000,
		WelcomeBalance: 500,
		CacheSize:      64,
		CacheTTL:       time.Minute,
	}
}

func newTestService(repo *MockRepository) Service {
	return NewService(repo, &fakeSessions{online: map[string]bool{}}, nil, testOptions())
}

func TestGetBalance_CreatesAccountWithWelcomeBalance(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("GetBalance", mock.Anything, "player-1").Return(0, false, nil).Once()
	repo.On("SetBalance", mock.Anything, "player-1", 500).Return(nil).Once()

	balance, err := svc.GetBalance(context.Background(), "player-1")

	require.NoError(t, err)
	assert.Equal(t, 500, balance)
	repo.AssertExpectations(t)
}

func TestGetBalance_CachesAfterFirstLoad(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("GetBalance", mock.Anything, "player-1").Return(120, true, nil).Once()

	for i := 0; i < 3; i++ {
		balance, err := svc.GetBalance(context.Background(), "player-1")
		require.NoError(t, err)
		assert.Equal(t, 120, balance)
	}

	// Only the first call may hit the repository.
	repo.AssertNumberOfCalls(t, "GetBalance", 1)
}

func TestRemoveBalance_InsufficientFunds(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("GetBalance", mock.Anything, "player-1").Return(500, true, nil).Once()

	ok, err := svc.RemoveBalance(context.Background(), "player-1", 600)

	require.NoError(t, err)
	assert.False(t, ok)

	// The balance must be untouched by the rejected debit.
	balance, err := svc.GetBalance(context.Background(), "player-1")
	require.NoError(t, err)
	assert.Equal(t, 500, balance)
}

func TestRemoveBalance_Success(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("GetBalance", mock.Anything, "player-1").Return(500, true, nil).Once()
	repo.On("SetBalance", mock.Anything, "player-1", 350).Return(nil).Once()

	ok, err := svc.RemoveBalance(context.Background(), "player-1", 150)

	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertExpectations(t)
}

func TestAddBalance_ClampsAtMaximum(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, &fakeSessions{online: map[string]bool{}}, nil, Options{
		MaxBalance:     1000,
		WelcomeBalance: 0,
		CacheSize:      64,
		CacheTTL:       time.Minute,
	})

	repo.On("GetBalance", mock.Anything, "player-1").Return(900, true, nil).Once()
	repo.On("SetBalance", mock.Anything, "player-1", 1000).Return(nil).Once()

	ok, err := svc.AddBalance(context.Background(), "player-1", 500)

	require.NoError(t, err)
	assert.True(t, ok)
	repo.AssertExpectations(t)
}

func TestAddBalance_RejectedAtMaximum(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, &fakeSessions{online: map[string]bool{}}, nil, Options{
		MaxBalance:     1000,
		WelcomeBalance: 0,
		CacheSize:      64,
		CacheTTL:       time.Minute,
	})

	repo.On("GetBalance", mock.Anything, "player-1").Return(1000, true, nil).Once()

	ok, err := svc.AddBalance(context.Background(), "player-1", 50)

	require.NoError(t, err)
	assert.False(t, ok)
	repo.AssertNotCalled(t, "SetBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddBalance_RejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(new(MockRepository))

	_, err := svc.AddBalance(context.Background(), "player-1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddBalance(context.Background(), "player-1", -10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetBalance_ClampsToValidRange(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, &fakeSessions{online: map[string]bool{}}, nil, Options{
		MaxBalance:     1000,
		WelcomeBalance: 0,
		CacheSize:      64,
		CacheTTL:       time.Minute,
	})

	repo.On("SetBalance", mock.Anything, "player-1", 0).Return(nil).Once()
	repo.On("SetBalance", mock.Anything, "player-1", 1000).Return(nil).Once()

	require.NoError(t, svc.SetBalance(context.Background(), "player-1", -50))
	require.NoError(t, svc.SetBalance(context.Background(), "player-1", 99999))
	repo.AssertExpectations(t)
}

func TestGetBalance_PersistenceFailure(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("GetBalance", mock.Anything, "player-1").Return(0, false, errors.New("connection refused"))

	_, err := svc.GetBalance(context.Background(), "player-1")

	assert.ErrorIs(t, err, domain.ErrPersistenceUnavailable)
}

func TestRemoveBalance_PersistFailureLeavesCacheUntouched(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("GetBalance", mock.Anything, "player-1").Return(500, true, nil).Once()
	repo.On("SetBalance", mock.Anything, "player-1", 400).Return(errors.New("write failed")).Once()

	_, err := svc.RemoveBalance(context.Background(), "player-1", 100)
	assert.ErrorIs(t, err, domain.ErrPersistenceUnavailable)

	balance, err := svc.GetBalance(context.Background(), "player-1")
	require.NoError(t, err)
	assert.Equal(t, 500, balance)
}

func TestEvictOffline_DropsOnlyOfflinePlayers(t *testing.T) {
	repo := new(MockRepository)
	sessions := &fakeSessions{online: map[string]bool{"online-player": true}}
	svc := NewService(repo, sessions, nil, testOptions())

	repo.On("GetBalance", mock.Anything, "online-player").Return(100, true, nil)
	repo.On("GetBalance", mock.Anything, "offline-player").Return(200, true, nil)

	_, err := svc.GetBalance(context.Background(), "online-player")
	require.NoError(t, err)
	_, err = svc.GetBalance(context.Background(), "offline-player")
	require.NoError(t, err)

	evicted := svc.EvictOffline(context.Background())
	assert.Equal(t, 1, evicted)

	// The online player's entry survives; the offline one reloads.
	_, err = svc.GetBalance(context.Background(), "online-player")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetBalance", 2)

	_, err = svc.GetBalance(context.Background(), "offline-player")
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetBalance", 3)
}
