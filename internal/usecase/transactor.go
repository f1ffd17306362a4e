package usecase

import "context"

// Transactor runs fn atomically against the store. Nested calls join the
// outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactorFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f TransactorFunc) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// passthroughTransactor is used when no store transaction is available.
var passthroughTransactor = TransactorFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})

func orPassthrough(tx Transactor) Transactor {
	if tx == nil {
		return passthroughTransactor
	}
	return tx
}
