package cosmetics

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/confessly/confessly/app/models"
	"github.com/confessly/confessly/internal/pkg/tokens"
	"github.com/confessly/confessly/internal/pkg/usercontext"
)

// fakeRepo backs the service with in-memory state. Transaction snapshots the
// state and restores it when the callback fails, mirroring a DB rollback.
type fakeRepo struct {
	users    map[usercontext.Subject]*models.User
	balances map[usercontext.Subject]int64
	authored map[usercontext.Subject]string

	failSaveUser bool
	failRename   bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[usercontext.Subject]*models.User),
		balances: make(map[usercontext.Subject]int64),
		authored: make(map[usercontext.Subject]string),
	}
}

func (f *fakeRepo) GetUserBySubject(subject usercontext.Subject) (*models.User, error) {
	u, ok := f.users[subject]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeRepo) SaveUser(user *models.User) error {
	if f.failSaveUser {
		return errors.New("save rejected")
	}
	f.users[user.Subject()] = user
	return nil
}

func (f *fakeRepo) UsernameExists(username string) (bool, error) {
	lower := strings.ToLower(username)
	for _, u := range f.users {
		if strings.ToLower(u.Username) == lower {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) RenameAuthoredContent(subject usercontext.Subject, newName string) error {
	if f.failRename {
		return errors.New("rename rejected")
	}
	if _, ok := f.authored[subject]; ok {
		f.authored[subject] = newName
	}
	return nil
}

func (f *fakeRepo) DebitIfSufficient(subject usercontext.Subject, amount int64) (int64, bool, error) {
	current := f.balances[subject]
	if current < amount {
		return current, false, nil
	}
	f.balances[subject] = current - amount
	return f.balances[subject], true, nil
}

func (f *fakeRepo) Transaction(fn func(Repository) error) error {
	snapUsers := make(map[usercontext.Subject]*models.User, len(f.users))
	for k, v := range f.users {
		snapUsers[k] = copyUser(v)
	}
	snapBalances := make(map[usercontext.Subject]int64, len(f.balances))
	for k, v := range f.balances {
		snapBalances[k] = v
	}
	snapAuthored := make(map[usercontext.Subject]string, len(f.authored))
	for k, v := range f.authored {
		snapAuthored[k] = v
	}

	if err := fn(f); err != nil {
		f.users = snapUsers
		f.balances = snapBalances
		f.authored = snapAuthored
		return err
	}
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.PreviousUsernames = append(models.StringList(nil), u.PreviousUsernames...)
	c.UsernameColorGradient = append(models.StringList(nil), u.UsernameColorGradient...)
	c.PurchasedSolidColors = append(models.StringList(nil), u.PurchasedSolidColors...)
	c.PurchasedGradientColors = append(models.GradientList(nil), u.PurchasedGradientColors...)
	if u.UsernameColor != nil {
		v := *u.UsernameColor
		c.UsernameColor = &v
	}
	return &c
}

var anon = usercontext.Subject{ID: "sub-1", Type: usercontext.SubjectAnonymous}

func seedUser(f *fakeRepo, balance int64) *models.User {
	u := &models.User{
		SubjectID:   anon.ID,
		SubjectType: string(anon.Type),
		Username:    "anon_original",
		Role:        models.ROLE_USER,
		Status:      models.STATUS_ACTIVE,
	}
	f.users[anon] = u
	f.balances[anon] = balance
	f.authored[anon] = u.Username
	return u
}

func TestApplySolidColor(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 300)
	svc := NewService(repo, DefaultCatalog())

	res, err := svc.ApplySolidColor(anon, "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, int64(250), res.Cost)
	assert.Equal(t, int64(50), res.Balance)
	require.NotNil(t, res.User.UsernameColor)
	assert.Equal(t, "#ff0000", *res.User.UsernameColor)
	assert.True(t, res.User.PurchasedSolidColors.Contains("#ff0000"))
}

func TestApplySolidColorRejectsBadHex(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1000)
	svc := NewService(repo, DefaultCatalog())

	_, err := svc.ApplySolidColor(anon, "red")
	assert.ErrorIs(t, err, ErrInvalidColor)
	assert.Equal(t, int64(1000), repo.balances[anon])
}

func TestInsufficientTokensScenario(t *testing.T) {
	// Account starts at 0, earns 50, tries a 250 purchase, tops up, succeeds.
	repo := newFakeRepo()
	seedUser(repo, 0)
	svc := NewService(repo, DefaultCatalog())

	repo.balances[anon] = 50
	_, err := svc.ApplySolidColor(anon, "#abc")
	require.Error(t, err)

	ite, ok := tokens.AsInsufficientTokens(err)
	require.True(t, ok)
	assert.Equal(t, int64(200), ite.Needed)
	assert.Equal(t, int64(50), ite.Current)
	assert.Equal(t, int64(250), ite.Required)
	assert.Equal(t, int64(50), repo.balances[anon])

	repo.balances[anon] += 200
	res, err := svc.ApplySolidColor(anon, "#abc")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Balance)
	require.NotNil(t, res.User.UsernameColor)
	assert.Equal(t, "#abc", *res.User.UsernameColor)
	assert.True(t, res.User.PurchasedSolidColors.Contains("#abc"))
}

func TestSolidAndGradientAreMutuallyExclusive(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 5000)
	svc := NewService(repo, DefaultCatalog())

	res, err := svc.ApplySolidColor(anon, "#111")
	require.NoError(t, err)
	assert.Nil(t, res.User.UsernameColorGradient)

	res, err = svc.ApplyGradient(anon, []string{"#111", "#222"})
	require.NoError(t, err)
	assert.Nil(t, res.User.UsernameColor)
	assert.Equal(t, models.StringList{"#111", "#222"}, res.User.UsernameColorGradient)

	res, err = svc.ApplySolidColor(anon, "#333")
	require.NoError(t, err)
	assert.Nil(t, res.User.UsernameColorGradient)
	require.NotNil(t, res.User.UsernameColor)
}

func TestGradientSlotPricingScenario(t *testing.T) {
	// Five colors with no owned slots costs 500 + 2*25; a later four-color
	// gradient fits into the owned slots and costs only the base price.
	repo := newFakeRepo()
	seedUser(repo, 2000)
	svc := NewService(repo, DefaultCatalog())

	res, err := svc.ApplyGradient(anon, []string{"#1a1a1a", "#2b2b2b", "#3c3c3c", "#4d4d4d", "#5e5e5e"})
	require.NoError(t, err)
	assert.Equal(t, int64(550), res.Cost)
	assert.Equal(t, 2, res.User.PurchasedGradientColorSlots)

	res, err = svc.ApplyGradient(anon, []string{"#111", "#222", "#333", "#444"})
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.Cost)
	// Slots never decrease.
	assert.Equal(t, 2, res.User.PurchasedGradientColorSlots)
}

func TestGradientPurchaseHistoryDedup(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 5000)
	svc := NewService(repo, DefaultCatalog())

	seq := []string{"#111", "#222"}
	_, err := svc.ApplyGradient(anon, seq)
	require.NoError(t, err)
	_, err = svc.ApplyGradient(anon, seq)
	require.NoError(t, err)

	res, err := svc.ApplyGradient(anon, []string{"#222", "#111"})
	require.NoError(t, err)
	// Same colors, different order: a distinct sequence.
	assert.Len(t, res.User.PurchasedGradientColors, 2)
}

func TestAnimatedGradientIsOneTime(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1000)
	svc := NewService(repo, DefaultCatalog())

	res, err := svc.PurchaseAnimatedGradient(anon)
	require.NoError(t, err)
	assert.True(t, res.User.AnimatedGradientEnabled)
	assert.Equal(t, int64(500), repo.balances[anon])

	_, err = svc.PurchaseAnimatedGradient(anon)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	// Rejected before any tokens move.
	assert.Equal(t, int64(500), repo.balances[anon])
}

func TestGIFAvatarIsOneTime(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 2500)
	svc := NewService(repo, DefaultCatalog())

	res, err := svc.PurchaseGIFAvatar(anon)
	require.NoError(t, err)
	assert.True(t, res.User.GifProfileEnabled)
	assert.Equal(t, int64(1500), repo.balances[anon])

	_, err = svc.PurchaseGIFAvatar(anon)
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assert.Equal(t, int64(1500), repo.balances[anon])
}

func TestRemoveColorIsFree(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1000)
	svc := NewService(repo, DefaultCatalog())

	_, err := svc.ApplySolidColor(anon, "#fff")
	require.NoError(t, err)
	balanceAfterPurchase := repo.balances[anon]

	user, err := svc.RemoveColor(anon)
	require.NoError(t, err)
	assert.Nil(t, user.UsernameColor)
	assert.Nil(t, user.UsernameColorGradient)
	// History and balance untouched.
	assert.True(t, user.PurchasedSolidColors.Contains("#fff"))
	assert.Equal(t, balanceAfterPurchase, repo.balances[anon])
}

func TestFailedAttributeWriteRollsBackDebit(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1000)
	repo.failSaveUser = true
	svc := NewService(repo, DefaultCatalog())

	_, err := svc.ApplySolidColor(anon, "#fff")
	require.Error(t, err)

	// Transaction rollback restored the balance and the profile.
	assert.Equal(t, int64(1000), repo.balances[anon])
	assert.Nil(t, repo.users[anon].UsernameColor)
}

func TestChangeUsername(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1500)
	svc := NewService(repo, DefaultCatalog())

	res, err := svc.ChangeUsername(anon, "anon_renamed")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Cost)
	assert.Equal(t, int64(500), res.Balance)
	assert.Equal(t, "anon_renamed", res.User.Username)
	assert.True(t, res.User.PreviousUsernames.Contains("anon_original"))
	// Authored content carries the new name.
	assert.Equal(t, "anon_renamed", repo.authored[anon])
}

func TestChangeUsernameRejectsSameName(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1500)
	svc := NewService(repo, DefaultCatalog())

	_, err := svc.ChangeUsername(anon, "ANON_ORIGINAL")
	assert.ErrorIs(t, err, ErrSameUsername)
	assert.Equal(t, int64(1500), repo.balances[anon])
}

func TestChangeUsernameRejectsTakenName(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1500)
	other := usercontext.Subject{ID: "sub-2", Type: usercontext.SubjectAnonymous}
	repo.users[other] = &models.User{
		SubjectID:   other.ID,
		SubjectType: string(other.Type),
		Username:    "anon_taken",
	}
	svc := NewService(repo, DefaultCatalog())

	_, err := svc.ChangeUsername(anon, "anon_TAKEN")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, int64(1500), repo.balances[anon])
}

func TestChangeUsernameRejectsMissingPrefix(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1500)
	svc := NewService(repo, DefaultCatalog())

	_, err := svc.ChangeUsername(anon, "renamed")
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestChangeUsernameRollsBackWhenPropagationFails(t *testing.T) {
	repo := newFakeRepo()
	seedUser(repo, 1500)
	repo.failRename = true
	svc := NewService(repo, DefaultCatalog())

	_, err := svc.ChangeUsername(anon, "anon_renamed")
	require.Error(t, err)

	assert.Equal(t, int64(1500), repo.balances[anon])
	assert.Equal(t, "anon_original", repo.users[anon].Username)
	assert.Empty(t, repo.users[anon].PreviousUsernames)
	assert.Equal(t, "anon_original", repo.authored[anon])
}

func TestCosmeticsRequireAnonymousAccount(t *testing.T) {
	repo := newFakeRepo()
	third := usercontext.Subject{ID: "goog-1", Type: usercontext.SubjectThirdParty}
	repo.users[third] = &models.User{
		SubjectID:   third.ID,
		SubjectType: string(third.Type),
		Username:    "provider_user",
	}
	repo.balances[third] = 5000
	svc := NewService(repo, DefaultCatalog())

	_, err := svc.ApplySolidColor(third, "#fff")
	assert.ErrorIs(t, err, ErrNotAnonymous)
	_, err = svc.ChangeUsername(third, "anon_new")
	assert.ErrorIs(t, err, ErrNotAnonymous)
}
