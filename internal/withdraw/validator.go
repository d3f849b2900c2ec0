// Package withdraw implements the pre-submission rule checks for payout
// requests. The checks are advisory: the ledger service re-validates
// authoritatively, since the balance may change between validation and
// submission.
package withdraw

import (
	"fmt"
	"strings"

	apperrors "banner-earn-client/internal/common/errors"
	"banner-earn-client/internal/domain/session"
)

// Payout methods accepted by the ledger service.
const (
	MethodUPI  = "upi"
	MethodBank = "bank"
)

// Request is a withdrawal submission. It exists only for the duration of one
// attempt and is never persisted locally.
type Request struct {
	Email  string  `json:"email"`
	Amount float64 `json:"amount"`
	Method string  `json:"method"`

	// UPI method
	UpiID string `json:"upiId,omitempty"`

	// Bank transfer method
	AccountNumber string `json:"accountNumber,omitempty"`
	IfscCode      string `json:"ifscCode,omitempty"`
	AccountHolder string `json:"accountHolder,omitempty"`
	BankName      string `json:"bankName,omitempty"`
}

// Validate checks req against the current wallet balance and returns a
// normalized request ready for transmission. It never touches the network.
func Validate(req Request, walletBalance float64) (Request, error) {
	if req.Amount > walletBalance {
		return Request{}, apperrors.New(apperrors.ErrCodeInsufficientBalance,
			"Insufficient balance")
	}
	if req.Amount < session.MinWithdrawal {
		return Request{}, apperrors.New(apperrors.ErrCodeBelowMinimum,
			fmt.Sprintf("Minimum withdrawal amount is ₹%.0f", session.MinWithdrawal))
	}

	normalized := Request{
		Email:  strings.TrimSpace(req.Email),
		Amount: req.Amount,
		Method: strings.ToLower(strings.TrimSpace(req.Method)),
	}

	switch normalized.Method {
	case MethodUPI:
		normalized.UpiID = strings.TrimSpace(req.UpiID)
		if normalized.UpiID == "" {
			return Request{}, apperrors.New(apperrors.ErrCodeValidation,
				"Please enter your UPI ID")
		}

	case MethodBank:
		normalized.AccountNumber = strings.TrimSpace(req.AccountNumber)
		normalized.IfscCode = strings.ToUpper(strings.TrimSpace(req.IfscCode))
		normalized.AccountHolder = strings.TrimSpace(req.AccountHolder)
		normalized.BankName = strings.TrimSpace(req.BankName)
		if normalized.AccountNumber == "" || normalized.IfscCode == "" ||
			normalized.AccountHolder == "" || normalized.BankName == "" {
			return Request{}, apperrors.New(apperrors.ErrCodeValidation,
				"Please fill all bank details")
		}

	default:
		return Request{}, apperrors.New(apperrors.ErrCodeValidation,
			fmt.Sprintf("Unsupported withdrawal method: %s", req.Method))
	}

	return normalized, nil
}
