package prize

import (
	"time"

	"github.com/shopspring/decimal"
)

type DisbursementStatus string

const (
	DisbursementPending    DisbursementStatus = "PENDING"
	DisbursementProcessing DisbursementStatus = "PROCESSING"
	DisbursementFailed     DisbursementStatus = "FAILED"
	DisbursementPaid       DisbursementStatus = "PAID"
)

var disbursementTransitions = map[DisbursementStatus][]DisbursementStatus{
	DisbursementPending:    {DisbursementProcessing, DisbursementFailed, DisbursementPaid},
	DisbursementProcessing: {DisbursementPaid, DisbursementFailed},
}

func (s DisbursementStatus) Valid() bool {
	switch s {
	case DisbursementPending, DisbursementProcessing, DisbursementFailed, DisbursementPaid:
		return true
	}
	return false
}

func (s DisbursementStatus) Terminal() bool {
	return s == DisbursementPaid || s == DisbursementFailed
}

func (s DisbursementStatus) CanTransitionTo(next DisbursementStatus) bool {
	for _, allowed := range disbursementTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Disbursement is money owed to one winning team. It is created once per
// distribution and only its payout status moves afterwards.
type Disbursement struct {
	ID             string
	ContestID      string
	TeamID         string
	UserID         string
	Rank           int
	Percentage     decimal.Decimal
	Amount         decimal.Decimal
	ProcessingFee  decimal.Decimal
	NetAmount      decimal.Decimal
	Status         DisbursementStatus
	TransactionRef string
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Amounts struct {
	Gross decimal.Decimal
	Fee   decimal.Decimal
	Net   decimal.Decimal
}

// Split computes gross = pool * pct / 100 (truncated to cents),
// fee = gross * feePct / 100 (rounded to cents) and net = gross - fee.
func Split(pool, percentage, feePercent decimal.Decimal) Amounts {
	gross := pool.Mul(percentage).Div(hundred).RoundDown(2)
	fee := gross.Mul(feePercent).Div(hundred).Round(2)
	return Amounts{Gross: gross, Fee: fee, Net: gross.Sub(fee)}
}
