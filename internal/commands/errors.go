package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to failed mutations.
const (
	CodeInvalid   = "MUTATION_INVALID"
	CodeCancelled = "MUTATION_CANCELLED"
	CodeTimedOut  = "MUTATION_TIMED_OUT"
	CodeFailed    = "MUTATION_FAILED"
)

// IsValidation reports whether err was rejected before the mutation ran.
func IsValidation(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation)
}

// IsFailure reports whether the mutation was attempted and did not complete.
func IsFailure(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryCommand)
}

// once leaves errors that already carry a category untouched.
func once(err error, wrap func(error) error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return wrap(err)
}

func rejected(err error) error {
	return once(err, func(err error) error {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "mutation rejected").WithTextCode(CodeInvalid)
	})
}

func interrupted(err error) error {
	return once(err, func(err error) error {
		if errors.Is(err, context.DeadlineExceeded) {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "mutation timed out").WithTextCode(CodeTimedOut)
		}
		return goerrors.Wrap(err, goerrors.CategoryCommand, "mutation cancelled").WithTextCode(CodeCancelled)
	})
}

func failed(err error) error {
	return once(err, func(err error) error {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "mutation failed").WithTextCode(CodeFailed)
	})
}
