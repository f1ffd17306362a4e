package prize

import "context"

type RuleRepository interface {
	// ListByScope returns rules for exactly this scope; a tournament scope
	// excludes contest overrides.
	ListByScope(ctx context.Context, scope Scope) ([]StoredRule, error)
	// Replace deletes every rule of the scope and inserts rules in its place.
	Replace(ctx context.Context, scope Scope, rules []StoredRule) error
}

type DisbursementRepository interface {
	InsertMany(ctx context.Context, rows []Disbursement) error
	ListByContest(ctx context.Context, contestID string) ([]Disbursement, error)
	GetByID(ctx context.Context, disbursementID string) (Disbursement, bool, error)
	UpdatePayout(ctx context.Context, d Disbursement) error
}
