package errors

import (
	"context"
	"errors"
	"net"
)

// MapTransportError converts errors from an outgoing HTTP call into AppErrors.
// Context and network timeouts become ErrCodeTimeout, cancellation becomes
// ErrCodeCanceled, and everything else becomes ErrCodeUpstream. AppErrors pass
// through unchanged.
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeTimeout, "Request timed out.")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Wrap(err, ErrCodeTimeout, "Request timed out.")
	}

	return Wrap(err, ErrCodeUpstream, "Users API request failed.")
}
