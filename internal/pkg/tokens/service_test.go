package tokens

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// fakeRepository keeps balances in memory with the same atomicity contract as
// the SQL implementation: check-and-mutate happens under one lock.
type fakeRepository struct {
	mu        sync.Mutex
	balances  map[usercontext.Subject]int64
	lastDay   map[usercontext.Subject]time.Time
	audits    []*models.AuditLog
	auditErr  error
	creditErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		balances: make(map[usercontext.Subject]int64),
		lastDay:  make(map[usercontext.Subject]time.Time),
	}
}

func (f *fakeRepository) GetBalance(subject usercontext.Subject) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[subject]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (f *fakeRepository) Credit(subject usercontext.Subject, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.creditErr != nil {
		return 0, f.creditErr
	}
	f.balances[subject] += amount
	return f.balances[subject], nil
}

func (f *fakeRepository) DebitIfSufficient(subject usercontext.Subject, amount int64) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.balances[subject]
	if current < amount {
		return current, false, nil
	}
	f.balances[subject] = current - amount
	return f.balances[subject], true, nil
}

func (f *fakeRepository) SetBalance(subject usercontext.Subject, value int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[subject] = value
	return nil
}

func (f *fakeRepository) ClaimDaily(subject usercontext.Subject, amount int64, now time.Time) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dayStart := now.UTC().Truncate(24 * time.Hour)
	if last, ok := f.lastDay[subject]; ok && !last.Before(dayStart) {
		return false, f.balances[subject], nil
	}
	f.balances[subject] += amount
	f.lastDay[subject] = now.UTC()
	return true, f.balances[subject], nil
}

func (f *fakeRepository) AppendAudit(entry *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.auditErr != nil {
		return f.auditErr
	}
	f.audits = append(f.audits, entry)
	return nil
}

func newTestService(repo Repository) *Service {
	return &Service{repo: repo, dailyReward: DefaultDailyReward, now: time.Now}
}

var alice = usercontext.Subject{ID: "alice", Type: usercontext.SubjectAnonymous}

func TestGetBalanceMissingRowIsZero(t *testing.T) {
	svc := newTestService(newFakeRepository())

	balance, err := svc.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestGrantCreatesAndIncrements(t *testing.T) {
	svc := newTestService(newFakeRepository())

	balance, err := svc.Grant(alice, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	balance, err = svc.Grant(alice, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)
}

func TestGrantRejectsNonPositiveAmounts(t *testing.T) {
	svc := newTestService(newFakeRepository())

	for _, amount := range []int64{0, -1, -100} {
		_, err := svc.Grant(alice, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestDebitUnderflowFailsWithShortfall(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	_, err := svc.Grant(alice, 50)
	require.NoError(t, err)

	_, err = svc.Debit(alice, 250)
	require.Error(t, err)

	ite, ok := AsInsufficientTokens(err)
	require.True(t, ok)
	assert.Equal(t, int64(200), ite.Needed)
	assert.Equal(t, int64(50), ite.Current)
	assert.Equal(t, int64(250), ite.Required)

	// Failed debit leaves the balance unchanged.
	balance, err := svc.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestBalanceEqualsSumOfGrantsMinusSuccessfulDebits(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.Grant(alice, 100)
	require.NoError(t, err)
	_, err = svc.Grant(alice, 300)
	require.NoError(t, err)

	_, err = svc.Debit(alice, 150)
	require.NoError(t, err)

	// A failed debit contributes nothing.
	_, err = svc.Debit(alice, 1000)
	require.Error(t, err)

	balance, err := svc.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(100+300-150), balance)
}

func TestResetZeroesBalance(t *testing.T) {
	svc := newTestService(newFakeRepository())

	_, err := svc.Grant(alice, 500)
	require.NoError(t, err)

	require.NoError(t, svc.Reset(alice))

	balance, err := svc.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestConcurrentDebitsCannotBothSucceed(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	// Starting balance 1.5B, two simultaneous debits of B.
	const b = 100
	_, err := svc.Grant(alice, b+b/2)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Debit(alice, b)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			_, ok := AsInsufficientTokens(err)
			assert.True(t, ok)
		}
	}
	assert.Equal(t, 1, successes)

	balance, err := svc.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(b/2), balance)
}

func TestClaimDailyRewardOncePerDay(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	day1 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }

	granted, balance, err := svc.ClaimDailyReward(alice)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, int64(DefaultDailyReward), balance)

	// Same day, later: no-op.
	svc.now = func() time.Time { return day1.Add(6 * time.Hour) }
	granted, balance, err = svc.ClaimDailyReward(alice)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, int64(DefaultDailyReward), balance)

	// Next day: grants again.
	svc.now = func() time.Time { return day1.Add(24 * time.Hour) }
	granted, balance, err = svc.ClaimDailyReward(alice)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, int64(2*DefaultDailyReward), balance)
}

func TestAdminGrantWritesAudit(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	actor := usercontext.UserContext{
		Subject: usercontext.Subject{ID: "admin-1", Type: usercontext.SubjectThirdParty},
		Email:   "admin@confessly.app",
		IsAdmin: true,
	}

	balance, err := svc.AdminGrant(actor, alice, 75)
	require.NoError(t, err)
	assert.Equal(t, int64(75), balance)

	require.Len(t, repo.audits, 1)
	entry := repo.audits[0]
	assert.Equal(t, models.AUDIT_TOKEN_GRANT, entry.Action)
	assert.Equal(t, "admin-1", entry.ActorSubjectID)
	assert.Equal(t, "admin@confessly.app", entry.ActorEmail)
	assert.Equal(t, alice.ID, entry.SubjectID)
	assert.Contains(t, entry.Metadata, "\"amount\":75")
}

func TestAdminResetWritesAudit(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	_, err := svc.Grant(alice, 500)
	require.NoError(t, err)

	actor := usercontext.UserContext{Subject: usercontext.Subject{ID: "admin-1", Type: usercontext.SubjectThirdParty}}
	require.NoError(t, svc.AdminReset(actor, alice))

	balance, err := svc.GetBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	require.Len(t, repo.audits, 1)
	assert.Equal(t, models.AUDIT_TOKEN_RESET, repo.audits[0].Action)
}

func TestAuditFailureDoesNotRollBackBalance(t *testing.T) {
	repo := newFakeRepository()
	repo.auditErr = errors.New("audit table unavailable")
	svc := newTestService(repo)

	actor := usercontext.UserContext{Subject: usercontext.Subject{ID: "admin-1", Type: usercontext.SubjectThirdParty}}
	balance, err := svc.AdminGrant(actor, alice, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)
	assert.Empty(t, repo.audits)
}
