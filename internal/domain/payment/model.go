package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CapturedPayment is an entry fee confirmed by the payment gateway.
// PaymentID is the gateway's id and dedupes webhook redelivery.
type CapturedPayment struct {
	PaymentID    string
	UserID       string
	TournamentID string
	ContestID    string
	Amount       decimal.Decimal
	CapturedAt   time.Time
}

type Repository interface {
	// Record stores p unless its PaymentID is already known. inserted is false for duplicates.
	Record(ctx context.Context, p CapturedPayment) (inserted bool, err error)
	CountByContest(ctx context.Context, contestID string) (int, error)
}
