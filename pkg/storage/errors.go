package storage

import (
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"io"
	"net"

	"github.com/pkg/errors"
)

type storageError string

const (
	ErrNotFound     = storageError("not found")
	ErrInvalidEvent = storageError("Invalid event data")
	ErrUnavailable  = storageError("storage unavailable")
)

func (e storageError) Error() string {
	return string(e)
}

// UnavailableError reports that the underlying storage medium could not be
// opened or used.
type UnavailableError struct {
	cause error
}

// NewUnavailableError wraps err as a storage availability failure.
func NewUnavailableError(err error) error {
	if err == nil {
		return nil
	}
	if IsUnavailable(err) {
		return err
	}
	return &UnavailableError{cause: err}
}

func (e *UnavailableError) Error() string {
	return ErrUnavailable.Error() + ": " + e.cause.Error()
}

func (e *UnavailableError) Cause() error  { return e.cause }
func (e *UnavailableError) Unwrap() error { return e.cause }

// Is lets errors.Is(err, ErrUnavailable) match.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

func IsInvalidEvent(err error) bool {
	return errors.Cause(err) == ErrInvalidEvent
}

// IsConnectionError reports whether err means the connection to the storage
// medium is gone, as opposed to a rejected statement.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, sql.ErrConnDone) || stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, net.ErrClosed) || stderrors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// WrapConnectionError marks connection failures as unavailable storage and
// wraps everything else with message.
func WrapConnectionError(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsConnectionError(err) {
		return NewUnavailableError(errors.Wrap(err, message))
	}
	return errors.Wrap(err, message)
}
