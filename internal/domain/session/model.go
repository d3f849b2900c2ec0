package session

import "time"

// Amounts are rupees. The ledger service reports them as JSON numbers and
// the client never computes balances locally, so float64 matches the wire.
const (
	// RewardPerClick is the fixed reward granted per eligible banner click.
	RewardPerClick = 1.0

	// MinWithdrawal is the smallest amount accepted for a payout request.
	MinWithdrawal = 100.0

	// SignupBonus is credited by the ledger service on registration; kept
	// here only for the welcome notice.
	SignupBonus = 10.0
)

// UserSession is the authenticated identity plus the last wallet snapshot
// reported by the ledger service. The server-returned object always replaces
// the previous one wholesale; fields are never merged individually.
type UserSession struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone,omitempty"`
	WalletBalance float64 `json:"walletBalance"`
	TotalEarnings float64 `json:"totalEarnings"`
	TotalClicks   int64   `json:"totalClicks"`
}

// Clone returns an independent copy of the session.
func (s *UserSession) Clone() *UserSession {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// Transaction types as reported by the ledger service.
const (
	TxBannerClick = "banner_click"
	TxWithdrawal  = "withdrawal"
	TxBonus       = "bonus"
)

// Transaction is an immutable ledger entry. Positive amounts are credits,
// negative amounts are debits. Ordering is owned by the ledger service; the
// client renders entries exactly in the order received.
type Transaction struct {
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// Credit reports whether the entry increased the wallet balance.
func (t Transaction) Credit() bool {
	return t.Amount > 0
}
