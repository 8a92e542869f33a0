package service

import (
	"errors"

	"github.com/noah-isme/consulting-sessions-api/internal/repository"
	appErrors "github.com/noah-isme/consulting-sessions-api/pkg/errors"
)

// translateStoreError maps store sentinels onto API errors together with the
// outcome label used for metrics. Unknown errors become internal errors.
func translateStoreError(err error) (*appErrors.Error, string) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		return appErrors.ErrSessionNotFound, OutcomeNotFound
	case errors.Is(err, repository.ErrSessionFull):
		return appErrors.ErrSessionFull, OutcomeFull
	case errors.Is(err, repository.ErrSessionClosed), errors.Is(err, repository.ErrSessionCancelled):
		return appErrors.ErrSessionCancelledOrFinished, OutcomeClosed
	case errors.Is(err, repository.ErrSessionFinished):
		return appErrors.ErrSessionAlreadyFinished, OutcomeClosed
	case errors.Is(err, repository.ErrNotEnrolled):
		return appErrors.ErrNotEnrolled, OutcomeNotEnrolled
	case errors.Is(err, repository.ErrCapacityBelowEnrollment):
		return appErrors.ErrCapacityBelowEnrollment, OutcomeClosed
	case errors.Is(err, repository.ErrSessionHasEnrollments):
		return appErrors.ErrSessionHasEnrollments, OutcomeClosed
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message), OutcomeError
	}
}
