package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payment"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
)

type PrizeRuleRepository struct {
	store *Store
}

func (r *PrizeRuleRepository) ListByScope(_ context.Context, scope prize.Scope) ([]prize.StoredRule, error) {
	var out []prize.StoredRule
	r.store.read(func(t *tables) {
		out = append(out, t.rules[scope]...)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Rule.Rank < out[j].Rule.Rank })
	return out, nil
}

func (r *PrizeRuleRepository) Replace(ctx context.Context, scope prize.Scope, rules []prize.StoredRule) error {
	r.store.write(ctx, func(t *tables) {
		delete(t.rules, scope)
		if len(rules) > 0 {
			t.rules[scope] = append([]prize.StoredRule(nil), rules...)
		}
	})
	return nil
}

type DisbursementRepository struct {
	store *Store
}

func (r *DisbursementRepository) InsertMany(ctx context.Context, rows []prize.Disbursement) error {
	var err error
	r.store.write(ctx, func(t *tables) {
		for _, row := range rows {
			if _, exists := t.disbursements[row.ID]; exists {
				err = fmt.Errorf("disbursement %s already exists", row.ID)
				return
			}
			for _, existing := range t.disbursements {
				if existing.ContestID == row.ContestID && existing.TeamID == row.TeamID {
					err = fmt.Errorf("team %s already has a disbursement in contest %s", row.TeamID, row.ContestID)
					return
				}
			}
		}
		for _, row := range rows {
			t.disbursements[row.ID] = row
		}
	})
	return err
}

func (r *DisbursementRepository) ListByContest(_ context.Context, contestID string) ([]prize.Disbursement, error) {
	var out []prize.Disbursement
	r.store.read(func(t *tables) {
		for _, d := range t.disbursements {
			if d.ContestID == contestID {
				out = append(out, d)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (r *DisbursementRepository) GetByID(_ context.Context, disbursementID string) (out prize.Disbursement, ok bool, _ error) {
	r.store.read(func(t *tables) {
		out, ok = t.disbursements[disbursementID]
	})
	return out, ok, nil
}

func (r *DisbursementRepository) UpdatePayout(ctx context.Context, d prize.Disbursement) error {
	var err error
	r.store.write(ctx, func(t *tables) {
		existing, ok := t.disbursements[d.ID]
		if !ok {
			err = fmt.Errorf("disbursement %s not found", d.ID)
			return
		}
		existing.Status = d.Status
		existing.TransactionRef = d.TransactionRef
		existing.FailureReason = d.FailureReason
		existing.UpdatedAt = d.UpdatedAt
		t.disbursements[d.ID] = existing
	})
	return err
}

type PaymentRepository struct {
	store *Store
}

func (r *PaymentRepository) Record(ctx context.Context, p payment.CapturedPayment) (inserted bool, _ error) {
	r.store.write(ctx, func(t *tables) {
		if _, exists := t.payments[p.PaymentID]; exists {
			return
		}
		t.payments[p.PaymentID] = p
		inserted = true
	})
	return inserted, nil
}

func (r *PaymentRepository) CountByContest(_ context.Context, contestID string) (int, error) {
	count := 0
	r.store.read(func(t *tables) {
		for _, p := range t.payments {
			if p.ContestID == contestID {
				count++
			}
		}
	})
	return count, nil
}
