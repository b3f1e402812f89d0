package service

import (
	"errors"
	"fmt"

	"github.com/amansoomro062/codesign/internal/modules/model"
	"gorm.io/gorm"
)

// Service layer errors; handlers map them to HTTP statuses.
var (
	ErrValidation      = errors.New("validation error")
	ErrAccessDenied    = errors.New("access denied")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("invalid credentials")
	ErrConflict        = errors.New("conflict")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translate folds repository and model errors into service sentinels; any
// other error is returned as-is and surfaces as a persistence failure.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	case errors.Is(err, model.ErrInvalidDocument),
		errors.Is(err, model.ErrInvalidProperties),
		errors.Is(err, model.ErrInvalidRole),
		errors.Is(err, model.ErrOwnerNotCollaborator):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return err
	}
}

func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
