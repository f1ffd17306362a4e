package payout

import (
	"context"

	"github.com/shopspring/decimal"
)

// Account is where a user's winnings are sent.
type Account struct {
	UserID        string
	BankCode      string
	AccountNumber string
	HolderName    string
}

type TransferRequest struct {
	DisbursementID string
	ContestID      string
	UserID         string
	Amount         decimal.Decimal
	Account        Account
}

type TransferResult struct {
	TransactionRef string
}

// Gateway hands prize money to the external payout provider.
type Gateway interface {
	// LookupAccount reports found=false when the user has no payout account on file.
	LookupAccount(ctx context.Context, userID string) (acct Account, found bool, err error)
	Transfer(ctx context.Context, req TransferRequest) (TransferResult, error)
}
