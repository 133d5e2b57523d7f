package application

import (
	"errors"

	"github.com/sirupsen/logrus"

	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

// fail passes application errors through untouched and converts anything else
// into a logged system error carrying msg.
func fail(logger *logrus.Logger, msg string, err error, fields logrus.Fields) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if logger != nil {
		logger.WithError(err).WithFields(fields).Error(msg)
	}
	return systemErr(msg, err)
}

// mapNotFound turns repository.ErrNotFound into the given application error.
func mapNotFound(err error, nf *Error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return nf
	}
	return err
}

// mapDuplicate turns repository.ErrDuplicate into the given application error.
func mapDuplicate(err error, dup *Error) error {
	if errors.Is(err, repo.ErrDuplicate) {
		return dup
	}
	return err
}
