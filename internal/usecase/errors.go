package usecase

import "github.com/cockroachdb/errors"

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrNotFound                 = errors.New("resource not found")
	ErrInvalidState             = errors.New("invalid state")
	ErrAlreadyDistributed       = errors.New("prizes already distributed")
	ErrDistributionInProgress   = errors.New("prize distribution in progress")
	ErrNoRulesDefined           = errors.New("no prize rules defined")
	ErrInsufficientParticipants = errors.New("insufficient participants for any prize rule")
	ErrNoParticipants           = errors.New("contest has no participants")
	ErrPayoutFailure            = errors.New("payout failed")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrDependencyUnavailable    = errors.New("dependency unavailable")
)

// invalidState wraps kind so it also matches ErrInvalidState.
func invalidState(kind error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(kind, format, args...), ErrInvalidState)
}

func notFound(format string, args ...any) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

func invalidInput(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}
