// Package ledger is the request/response boundary to the remote ledger
// service, the system of record for wallet balance and transaction history.
// Every call performs exactly one round trip; retry decisions belong to the
// caller, and this layer never retries.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "banner-earn-client/internal/common/errors"
	"banner-earn-client/internal/common/logger"
	"banner-earn-client/internal/domain/session"
	"banner-earn-client/internal/metrics"
	"banner-earn-client/internal/withdraw"
)

// Operation names used in logs and metrics labels.
const (
	opFetchUser    = "fetch_user"
	opLogin        = "login"
	opRegister     = "register"
	opClickBanner  = "click_banner"
	opWithdraw     = "withdraw"
	opTransactions = "transactions"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        logger.With("ledger_client"),
	}
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// FetchUser returns the current server-side session for email.
func (c *Client) FetchUser(ctx context.Context, email string) (*session.UserSession, error) {
	var out session.UserSession
	path := "/user/" + url.PathEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, opFetchUser); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns the server session.
func (c *Client) Login(ctx context.Context, email, password string) (*session.UserSession, error) {
	var out session.UserSession
	body := Credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", body, &out, opLogin); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account (the server applies the signup bonus) and
// returns the new session.
func (c *Client) Register(ctx context.Context, name, email, phone, password string) (*session.UserSession, error) {
	var out session.UserSession
	body := Registration{Name: name, Email: email, Phone: phone, Password: password}
	if err := c.do(ctx, http.MethodPost, "/register", body, &out, opRegister); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClickBanner asks the server to grant the per-click reward. The server
// independently rejects duplicate claims for the day.
func (c *Client) ClickBanner(ctx context.Context, email string) (*session.UserSession, error) {
	var out session.UserSession
	body := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/click-banner", body, &out, opClickBanner); err != nil {
		return nil, err
	}
	return &out, nil
}

// Withdraw submits a validated payout request. The success body wraps the
// session in a "user" envelope, unlike the other mutations.
func (c *Client) Withdraw(ctx context.Context, req withdraw.Request) (*session.UserSession, error) {
	var out struct {
		User session.UserSession `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/withdraw", req, &out, opWithdraw); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Transactions returns the user's history, most recent first as ordered by
// the server. A user with no history yields an empty slice, not an error.
func (c *Client) Transactions(ctx context.Context, email string) ([]session.Transaction, error) {
	var out []session.Transaction
	path := "/transactions/" + url.PathEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, opTransactions); err != nil {
		return nil, err
	}
	if out == nil {
		out = []session.Transaction{}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, op string) error {
	start := time.Now()
	outcome := "success"
	defer func() {
		metrics.LedgerRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			outcome = "encode_error"
			return apperrors.NewNetworkError(op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		outcome = "encode_error"
		return apperrors.NewNetworkError(op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "transport_error"
		c.log.Error().Err(err).Str("operation", op).Msg("Ledger request failed")
		return apperrors.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "transport_error"
		return apperrors.NewNetworkError(op, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.Unmarshal(raw, out); err != nil {
				outcome = "decode_error"
				return apperrors.NewNetworkError(op, fmt.Errorf("decode response: %w", err))
			}
		}
		c.log.Debug().Str("operation", op).Int("status", resp.StatusCode).Msg("Ledger request succeeded")
		return nil
	}

	outcome = "remote_error"
	var eb struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
		// Non-2xx with no decodable error body is a transport-class failure
		outcome = "decode_error"
		return apperrors.NewNetworkError(op,
			fmt.Errorf("ledger returned status %d", resp.StatusCode))
	}

	c.log.Warn().
		Str("operation", op).
		Int("status", resp.StatusCode).
		Str("server_error", eb.Error).
		Msg("Ledger rejected request")
	return classify(op, resp.StatusCode, eb.Error)
}

// classify maps a structured server rejection to the typed failure for the
// operation, keeping the server-supplied message verbatim.
func classify(op string, status int, msg string) *apperrors.AppError {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if op == opLogin {
			return apperrors.New(apperrors.ErrCodeAuth, msg)
		}
		return apperrors.New(apperrors.ErrCodeUnauthenticated, msg)
	case http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeNotFound, msg)
	case http.StatusConflict:
		if op == opClickBanner {
			return apperrors.New(apperrors.ErrCodeAlreadyClaimed, msg)
		}
		return apperrors.New(apperrors.ErrCodeValidation, msg)
	case http.StatusBadRequest:
		switch op {
		case opClickBanner:
			return apperrors.New(apperrors.ErrCodeAlreadyClaimed, msg)
		case opLogin:
			return apperrors.New(apperrors.ErrCodeAuth, msg)
		case opWithdraw:
			lower := strings.ToLower(msg)
			if strings.Contains(lower, "insufficient") {
				return apperrors.New(apperrors.ErrCodeInsufficientBalance, msg)
			}
			if strings.Contains(lower, "minimum") {
				return apperrors.New(apperrors.ErrCodeBelowMinimum, msg)
			}
			return apperrors.New(apperrors.ErrCodeValidation, msg)
		default:
			return apperrors.New(apperrors.ErrCodeValidation, msg)
		}
	default:
		return apperrors.New(apperrors.ErrCodeInternal, msg)
	}
}
