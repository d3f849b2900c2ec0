package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banner-earn-client/internal/cache"
	apperrors "banner-earn-client/internal/common/errors"
	"banner-earn-client/internal/domain/session"
	"banner-earn-client/internal/tracker"
	"banner-earn-client/internal/withdraw"
)

// fakeLedger counts calls and returns canned responses.
type fakeLedger struct {
	fetchCalls    int
	clickCalls    int
	withdrawCalls int

	session      *session.UserSession
	err          error
	transactions []session.Transaction
}

func (f *fakeLedger) FetchUser(context.Context, string) (*session.UserSession, error) {
	f.fetchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session.Clone(), nil
}

func (f *fakeLedger) Login(context.Context, string, string) (*session.UserSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session.Clone(), nil
}

func (f *fakeLedger) Register(context.Context, string, string, string, string) (*session.UserSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session.Clone(), nil
}

func (f *fakeLedger) ClickBanner(context.Context, string) (*session.UserSession, error) {
	f.clickCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session.Clone(), nil
}

func (f *fakeLedger) Withdraw(context.Context, withdraw.Request) (*session.UserSession, error) {
	f.withdrawCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session.Clone(), nil
}

func (f *fakeLedger) Transactions(context.Context, string) ([]session.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.transactions, nil
}

// memStore duplicates the in-memory Store used by the cache tests.
type memStore struct {
	entries map[string][]byte
}

func newMemStore() *memStore { return &memStore{entries: make(map[string][]byte)} }

func (m *memStore) Put(_ context.Context, key string, value []byte) error {
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return v, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestService(ledger *fakeLedger) (*Service, *cache.SessionCache) {
	sessions := cache.NewSessionCache(newMemStore())
	return New(ledger, sessions, tracker.New()), sessions
}

func login(t *testing.T, svc *Service, ledger *fakeLedger, s *session.UserSession) {
	t.Helper()
	ledger.session = s
	_, err := svc.Login(context.Background(), s.Email, "secret")
	require.NoError(t, err)
}

func TestLoginInstallsSnapshot(t *testing.T) {
	ledger := &fakeLedger{}
	svc, sessions := newTestService(ledger)

	login(t, svc, ledger, &session.UserSession{Email: "a@b.c", Name: "Asha", WalletBalance: 50})

	current := svc.Current()
	require.NotNil(t, current)
	assert.Equal(t, 50.0, current.WalletBalance)

	// The snapshot is persisted to the cache
	cached, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, current, cached)
}

func TestSnapshotReplacedWholesale(t *testing.T) {
	ledger := &fakeLedger{}
	svc, _ := newTestService(ledger)
	login(t, svc, ledger, &session.UserSession{
		Email: "a@b.c", Name: "Asha", Phone: "9999", WalletBalance: 50, TotalEarnings: 60, TotalClicks: 3,
	})

	// Server response omits the phone; the cached snapshot must match the
	// server object exactly, with nothing retained from the prior one
	ledger.session = &session.UserSession{
		Email: "a@b.c", Name: "Asha", WalletBalance: 51, TotalEarnings: 61, TotalClicks: 4,
	}
	result, err := svc.ClickBanner(context.Background(), "banner-1")
	require.NoError(t, err)
	assert.Equal(t, ledger.session, result.Session)
	assert.Equal(t, ledger.session, svc.Current())
	assert.Empty(t, svc.Current().Phone)
}

func TestClickBannerRequiresLogin(t *testing.T) {
	ledger := &fakeLedger{}
	svc, _ := newTestService(ledger)

	_, err := svc.ClickBanner(context.Background(), "banner-1")
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrCodeUnauthenticated, appErr.Code)
	assert.Zero(t, ledger.clickCalls)
}

func TestClickBannerDuplicateShortCircuits(t *testing.T) {
	ledger := &fakeLedger{}
	svc, _ := newTestService(ledger)
	login(t, svc, ledger, &session.UserSession{Email: "a@b.c", WalletBalance: 50})

	ledger.session = &session.UserSession{Email: "a@b.c", WalletBalance: 51, TotalClicks: 1}
	first, err := svc.ClickBanner(context.Background(), "banner-1")
	require.NoError(t, err)
	assert.False(t, first.AlreadyClaimed)
	assert.Equal(t, 1, ledger.clickCalls)

	// Second attempt: informational notice, unchanged balance, zero
	// additional network calls
	second, err := svc.ClickBanner(context.Background(), "banner-1")
	require.NoError(t, err)
	assert.True(t, second.AlreadyClaimed)
	assert.Equal(t, 51.0, second.Session.WalletBalance)
	assert.Equal(t, 1, ledger.clickCalls)
}

func TestClickBannerFailureLeavesTrackerUnmarked(t *testing.T) {
	ledger := &fakeLedger{}
	svc, _ := newTestService(ledger)
	login(t, svc, ledger, &session.UserSession{Email: "a@b.c", WalletBalance: 50})

	ledger.err = apperrors.New(apperrors.ErrCodeNetwork, "Request failed: click_banner")
	_, err := svc.ClickBanner(context.Background(), "banner-1")
	require.Error(t, err)

	// The claim was never confirmed, so the banner stays eligible and the
	// snapshot is untouched
	assert.False(t, svc.BannerClaimed("banner-1"))
	assert.Equal(t, 50.0, svc.Current().WalletBalance)

	ledger.err = nil
	ledger.session = &session.UserSession{Email: "a@b.c", WalletBalance: 51}
	result, err := svc.ClickBanner(context.Background(), "banner-1")
	require.NoError(t, err)
	assert.False(t, result.AlreadyClaimed)
}

func TestWithdrawInsufficientBalanceIsLocal(t *testing.T) {
	ledger := &fakeLedger{}
	svc, _ := newTestService(ledger)
	login(t, svc, ledger, &session.UserSession{Email: "a@b.c", WalletBalance: 50})

	_, err := svc.Withdraw(context.Background(), withdraw.Request{
		Amount: 80, Method: withdraw.MethodUPI, UpiID: "u@b",
	})
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrCodeInsufficientBalance, appErr.Code)

	// No round trip, balance unchanged
	assert.Zero(t, ledger.withdrawCalls)
	assert.Equal(t, 50.0, svc.Current().WalletBalance)
}

func TestWithdrawSuccess(t *testing.T) {
	ledger := &fakeLedger{}
	svc, sessions := newTestService(ledger)
	login(t, svc, ledger, &session.UserSession{Email: "a@b.c", WalletBalance: 500})

	ledger.session = &session.UserSession{Email: "a@b.c", WalletBalance: 350}
	got, err := svc.Withdraw(context.Background(), withdraw.Request{
		Amount: 150, Method: withdraw.MethodUPI, UpiID: "user@bank",
	})
	require.NoError(t, err)
	assert.Equal(t, 350.0, got.WalletBalance)
	assert.Equal(t, 1, ledger.withdrawCalls)

	cached, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 350.0, cached.WalletBalance)
}

func TestRestoreRevalidates(t *testing.T) {
	ledger := &fakeLedger{}
	svc, sessions := newTestService(ledger)
	require.NoError(t, sessions.Save(context.Background(),
		&session.UserSession{Email: "a@b.c", WalletBalance: 40}))

	ledger.session = &session.UserSession{Email: "a@b.c", WalletBalance: 47}
	result, err := svc.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.False(t, result.Stale)
	// The server value wins over the cached one
	assert.Equal(t, 47.0, result.Session.WalletBalance)
	assert.Equal(t, 1, ledger.fetchCalls)
}

func TestRestoreStaleOnNetworkFailure(t *testing.T) {
	ledger := &fakeLedger{}
	svc, sessions := newTestService(ledger)
	require.NoError(t, sessions.Save(context.Background(),
		&session.UserSession{Email: "a@b.c", WalletBalance: 40}))

	ledger.err = apperrors.New(apperrors.ErrCodeNetwork, "Request failed: fetch_user")
	result, err := svc.Restore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.True(t, result.Stale)
	assert.Equal(t, 40.0, result.Session.WalletBalance)
}

func TestRestoreNoSession(t *testing.T) {
	ledger := &fakeLedger{}
	svc, _ := newTestService(ledger)

	result, err := svc.Restore(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Session)
	assert.Zero(t, ledger.fetchCalls)
}

func TestLogoutClearsEverything(t *testing.T) {
	ledger := &fakeLedger{}
	svc, sessions := newTestService(ledger)
	login(t, svc, ledger, &session.UserSession{Email: "a@b.c", WalletBalance: 50})

	require.NoError(t, svc.Logout(context.Background()))
	assert.Nil(t, svc.Current())
	assert.False(t, svc.Authenticated())

	cached, err := sessions.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestObserversSeeEveryReplacement(t *testing.T) {
	ledger := &fakeLedger{}
	svc, _ := newTestService(ledger)

	var seen []*session.UserSession
	svc.Subscribe(func(s *session.UserSession) { seen = append(seen, s) })

	login(t, svc, ledger, &session.UserSession{Email: "a@b.c", WalletBalance: 50})
	require.NoError(t, svc.Logout(context.Background()))

	require.Len(t, seen, 2)
	assert.Equal(t, 50.0, seen[0].WalletBalance)
	assert.Nil(t, seen[1])
}

func TestRefreshBannersIsClientOnly(t *testing.T) {
	ledger := &fakeLedger{}
	svc, _ := newTestService(ledger)
	login(t, svc, ledger, &session.UserSession{Email: "a@b.c", WalletBalance: 50})

	ledger.session = &session.UserSession{Email: "a@b.c", WalletBalance: 51}
	_, err := svc.ClickBanner(context.Background(), "banner-1")
	require.NoError(t, err)
	require.True(t, svc.BannerClaimed("banner-1"))

	svc.RefreshBanners()
	assert.False(t, svc.BannerClaimed("banner-1"))

	// The reset touched no remote state
	assert.Equal(t, 1, ledger.clickCalls)
}

func TestTransactionsPassThrough(t *testing.T) {
	ledger := &fakeLedger{transactions: []session.Transaction{
		{Type: session.TxBannerClick, Amount: 1},
		{Type: session.TxBonus, Amount: 10},
	}}
	svc, _ := newTestService(ledger)
	login(t, svc, ledger, &session.UserSession{Email: "a@b.c"})

	got, err := svc.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, session.TxBannerClick, got[0].Type)
}
