package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payment"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	qb "github.com/riskibarqy/pickleball-fantasy/internal/platform/querybuilder"
)

type PrizeRuleRepository struct {
	db *sqlx.DB
}

func NewPrizeRuleRepository(db *sqlx.DB) *PrizeRuleRepository {
	return &PrizeRuleRepository{db: db}
}

func scopeConditions(scope prize.Scope) []qb.Condition {
	conds := []qb.Condition{qb.Eq("tournament_id", scope.TournamentID)}
	if scope.IsContest() {
		return append(conds, qb.Eq("contest_id", scope.ContestID))
	}
	return append(conds, qb.IsNull("contest_id"))
}

func (r *PrizeRuleRepository) ListByScope(ctx context.Context, scope prize.Scope) ([]prize.StoredRule, error) {
	query, args, err := qb.Select("*").
		From("prize_distribution_rules").
		Where(scopeConditions(scope)...).
		OrderBy("rank").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list prize rules query: %w", err)
	}

	var rows []prizeRuleTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list prize rules: %w", err)
	}

	out := make([]prize.StoredRule, 0, len(rows))
	for _, row := range rows {
		out = append(out, prize.StoredRule{
			ID:    row.ID,
			Scope: prize.Scope{TournamentID: row.TournamentID, ContestID: row.ContestID.String},
			Rule: prize.Rule{
				Rank:       row.Rank,
				Percentage: row.Percentage,
				MinPlayers: row.MinPlayers,
			},
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// Replace must run inside a transaction so readers never see a half-written table.
func (r *PrizeRuleRepository) Replace(ctx context.Context, scope prize.Scope, rules []prize.StoredRule) error {
	db := conn(ctx, r.db)

	query, args, err := qb.DeleteFrom("prize_distribution_rules").Where(scopeConditions(scope)...).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete prize rules query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete prize rules: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	rows := make([]prizeRuleTableModel, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, prizeRuleTableModel{
			ID:           rule.ID,
			TournamentID: scope.TournamentID,
			ContestID:    nullString(scope.ContestID),
			Rank:         rule.Rule.Rank,
			Percentage:   rule.Rule.Percentage,
			MinPlayers:   rule.Rule.MinPlayers,
			CreatedAt:    rule.CreatedAt,
		})
	}
	query, args, err = qb.InsertModels("prize_distribution_rules", rows, "")
	if err != nil {
		return fmt.Errorf("build insert prize rules query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert prize rules: %w", err)
	}
	return nil
}

type DisbursementRepository struct {
	db *sqlx.DB
}

func NewDisbursementRepository(db *sqlx.DB) *DisbursementRepository {
	return &DisbursementRepository{db: db}
}

func (r *DisbursementRepository) InsertMany(ctx context.Context, rows []prize.Disbursement) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]disbursementTableModel, 0, len(rows))
	for _, d := range rows {
		models = append(models, disbursementToRow(d))
	}
	query, args, err := qb.InsertModels("prize_disbursements", models, "")
	if err != nil {
		return fmt.Errorf("build insert disbursements query: %w", err)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert disbursements: contest already has disbursements: %w", err)
		}
		return fmt.Errorf("insert disbursements: %w", err)
	}
	return nil
}

func (r *DisbursementRepository) ListByContest(ctx context.Context, contestID string) ([]prize.Disbursement, error) {
	query, args, err := qb.Select("*").
		From("prize_disbursements").
		Where(qb.Eq("contest_id", contestID)).
		OrderBy("rank").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list disbursements query: %w", err)
	}

	var rows []disbursementTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list disbursements: %w", err)
	}

	out := make([]prize.Disbursement, 0, len(rows))
	for _, row := range rows {
		out = append(out, disbursementFromRow(row))
	}
	return out, nil
}

func (r *DisbursementRepository) GetByID(ctx context.Context, disbursementID string) (prize.Disbursement, bool, error) {
	query, args, err := qb.Select("*").From("prize_disbursements").Where(qb.Eq("id", disbursementID)).ToSQL()
	if err != nil {
		return prize.Disbursement{}, false, fmt.Errorf("build get disbursement query: %w", err)
	}

	var row disbursementTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prize.Disbursement{}, false, nil
		}
		return prize.Disbursement{}, false, fmt.Errorf("get disbursement: %w", err)
	}
	return disbursementFromRow(row), true, nil
}

func (r *DisbursementRepository) UpdatePayout(ctx context.Context, d prize.Disbursement) error {
	query, args, err := qb.Update("prize_disbursements").
		Set("status", string(d.Status)).
		Set("transaction_ref", nullString(d.TransactionRef)).
		Set("failure_reason", nullString(d.FailureReason)).
		Set("updated_at", d.UpdatedAt).
		Where(qb.Eq("id", d.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update disbursement payout query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update disbursement payout: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update disbursement payout: disbursement %s not found", d.ID)
	}
	return nil
}

func disbursementToRow(d prize.Disbursement) disbursementTableModel {
	return disbursementTableModel{
		ID:             d.ID,
		ContestID:      d.ContestID,
		TeamID:         d.TeamID,
		UserID:         d.UserID,
		Rank:           d.Rank,
		Percentage:     d.Percentage,
		Amount:         d.Amount,
		ProcessingFee:  d.ProcessingFee,
		NetAmount:      d.NetAmount,
		Status:         string(d.Status),
		TransactionRef: nullString(d.TransactionRef),
		FailureReason:  nullString(d.FailureReason),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func disbursementFromRow(row disbursementTableModel) prize.Disbursement {
	return prize.Disbursement{
		ID:             row.ID,
		ContestID:      row.ContestID,
		TeamID:         row.TeamID,
		UserID:         row.UserID,
		Rank:           row.Rank,
		Percentage:     row.Percentage,
		Amount:         row.Amount,
		ProcessingFee:  row.ProcessingFee,
		NetAmount:      row.NetAmount,
		Status:         prize.DisbursementStatus(row.Status),
		TransactionRef: row.TransactionRef.String,
		FailureReason:  row.FailureReason.String,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Record(ctx context.Context, p payment.CapturedPayment) (bool, error) {
	query, args, err := qb.InsertModel("captured_payments", capturedPaymentTableModel{
		PaymentID:    p.PaymentID,
		UserID:       p.UserID,
		TournamentID: p.TournamentID,
		ContestID:    p.ContestID,
		Amount:       p.Amount,
		CapturedAt:   p.CapturedAt,
	}, "ON CONFLICT (payment_id) DO NOTHING RETURNING payment_id")
	if err != nil {
		return false, fmt.Errorf("build record payment query: %w", err)
	}

	var paymentID string
	if err := conn(ctx, r.db).GetContext(ctx, &paymentID, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("record payment: %w", err)
	}
	return true, nil
}

func (r *PaymentRepository) CountByContest(ctx context.Context, contestID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("captured_payments").Where(qb.Eq("contest_id", contestID)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count payments query: %w", err)
	}

	var count int
	if err := conn(ctx, r.db).GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return count, nil
}
