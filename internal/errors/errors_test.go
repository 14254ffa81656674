package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "user not found"},
			want: "user not found",
		},
		{
			name: "error with cause",
			err:  &AppError{Code: ErrCodeUpstream, Message: "list failed", Cause: errors.New("status 502")},
			want: "list failed: status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(wrapped, cause) = false")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		msg  string
	}{
		{"NotFound", NotFound("gone"), ErrCodeNotFound, "gone"},
		{"NotFoundf", NotFoundf("user %d not found", 3), ErrCodeNotFound, "user 3 not found"},
		{"Validation", Validation("bad id"), ErrCodeValidation, "bad id"},
		{"Upstream", Upstream("502"), ErrCodeUpstream, "502"},
		{"Internal", Internal("boom"), ErrCodeInternal, "boom"},
		{"Internalf percent without args", Internalf("100%"), ErrCodeInternal, "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.Message != tt.msg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.msg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("id", "must be a positive integer")
	if GetField(err) != "id" {
		t.Errorf("GetField() = %q, want id", GetField(err))
	}
	if !IsValidation(err) {
		t.Errorf("IsValidation() = false")
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Errorf("Wrap(nil) should be nil")
	}
	if Wrapf(nil, ErrCodeInternal, "x %d", 1) != nil {
		t.Errorf("Wrapf(nil) should be nil")
	}
}

func TestIsHelpers_ThroughFmtWrapping(t *testing.T) {
	base := Upstream("status 500")
	wrapped := fmt.Errorf("create user: %w", base)

	if !IsUpstream(wrapped) {
		t.Errorf("IsUpstream() = false through fmt wrapping")
	}
	if IsTimeout(wrapped) || IsCanceled(wrapped) || IsNotFound(wrapped) || IsInternal(wrapped) {
		t.Errorf("unexpected code match")
	}
	if GetCode(wrapped) != ErrCodeUpstream {
		t.Errorf("GetCode() = %v", GetCode(wrapped))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Errorf("GetCode(plain) should be empty")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestMapTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"net timeout", timeoutErr{}, ErrCodeTimeout},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrCodeUpstream},
		{"app error passes through", NotFound("user 9"), ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(MapTransportError(tt.err)); got != tt.want {
				t.Errorf("MapTransportError() code = %v, want %v", got, tt.want)
			}
		})
	}

	if MapTransportError(nil) != nil {
		t.Errorf("MapTransportError(nil) should be nil")
	}
}
