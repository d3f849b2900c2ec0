package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "banner-earn-client/internal/common/errors"
	"banner-earn-client/internal/domain/session"
	"banner-earn-client/internal/withdraw"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestLoginSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "asha@example.com", creds.Email)

		json.NewEncoder(w).Encode(session.UserSession{
			Email: creds.Email, Name: "Asha", WalletBalance: 42,
		})
	}))

	got, err := c.Login(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, 42.0, got.WalletBalance)
}

func TestLoginBadCredentials(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
	}))

	_, err := c.Login(context.Background(), "asha@example.com", "wrong")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAuth, appErr.Code)
	// The server-supplied message is surfaced verbatim
	assert.Equal(t, "Invalid email or password", appErr.Message)
}

func TestFetchUserPath(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/asha@example.com", r.URL.Path)
		json.NewEncoder(w).Encode(session.UserSession{Email: "asha@example.com"})
	}))

	got, err := c.FetchUser(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", got.Email)
}

func TestClickBannerAlreadyClaimed(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Banner already clicked today"})
	}))

	_, err := c.ClickBanner(context.Background(), "asha@example.com")
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrCodeAlreadyClaimed, appErr.Code)
	assert.Equal(t, "Banner already clicked today", appErr.Message)
}

func TestWithdrawEnvelope(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/withdraw", r.URL.Path)

		var req withdraw.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "upi", req.Method)
		assert.Equal(t, "user@bank", req.UpiID)

		// Withdraw wraps the session in a "user" envelope
		json.NewEncoder(w).Encode(map[string]session.UserSession{
			"user": {Email: req.Email, WalletBalance: 350},
		})
	}))

	got, err := c.Withdraw(context.Background(), withdraw.Request{
		Email: "asha@example.com", Amount: 150, Method: "upi", UpiID: "user@bank",
	})
	require.NoError(t, err)
	assert.Equal(t, 350.0, got.WalletBalance)
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Insufficient balance"})
	}))

	_, err := c.Withdraw(context.Background(), withdraw.Request{Amount: 150, Method: "upi", UpiID: "u@b"})
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrCodeInsufficientBalance, appErr.Code)
}

func TestTransactionsEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/asha@example.com", r.URL.Path)
		w.Write([]byte(`[]`))
	}))

	got, err := c.Transactions(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTransactionsOrderPreserved(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]session.Transaction{
			{Type: session.TxWithdrawal, Amount: -150, Description: "Withdrawal via UPI"},
			{Type: session.TxBannerClick, Amount: 1, Description: "Banner click reward"},
			{Type: session.TxBonus, Amount: 10, Description: "Signup bonus"},
		})
	}))

	got, err := c.Transactions(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, session.TxWithdrawal, got[0].Type)
	assert.False(t, got[0].Credit())
	assert.Equal(t, session.TxBonus, got[2].Type)
	assert.True(t, got[2].Credit())
}

func TestUndecodableErrorBodyIsNetworkError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream timeout</html>"))
	}))

	_, err := c.FetchUser(context.Background(), "asha@example.com")
	require.Error(t, err)
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.ErrCodeNetwork, appErr.Code)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 250*time.Millisecond)
	_, err := c.FetchUser(context.Background(), "asha@example.com")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsNetwork())
}
