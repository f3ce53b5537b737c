package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		checkFn  func(error) bool
		expected bool
	}{
		{
			name:     "ErrInvalidCatalog is recognized",
			err:      ErrInvalidCatalog,
			checkFn:  IsInvalidCatalog,
			expected: true,
		},
		{
			name:     "Joined ErrInvalidCatalog is recognized",
			err:      errors.Join(ErrInvalidCatalog, errors.New("additional context")),
			checkFn:  IsInvalidCatalog,
			expected: true,
		},
		{
			name:     "Different error is not ErrInvalidCatalog",
			err:      ErrRateLimitExceeded,
			checkFn:  IsInvalidCatalog,
			expected: false,
		},
		{
			name:     "ErrRateLimitExceeded is recognized",
			err:      ErrRateLimitExceeded,
			checkFn:  IsRateLimitExceeded,
			expected: true,
		},
		{
			name:     "ErrInvalidInput is recognized",
			err:      ErrInvalidInput,
			checkFn:  IsInvalidInput,
			expected: true,
		},
		{
			name:     "Formatted ErrReplyFailed is recognized",
			err:      fmt.Errorf("%w: status 400", ErrReplyFailed),
			checkFn:  IsReplyFailed,
			expected: true,
		},
		{
			name:     "ValidationError unwraps to ErrInvalidCatalog",
			err:      NewValidationError("phrases", "duplicate"),
			checkFn:  IsInvalidCatalog,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.checkFn(tt.err)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("media.歐拉歐拉", "path is empty")

	if err.Field != "media.歐拉歐拉" {
		t.Errorf("expected field 'media.歐拉歐拉', got '%s'", err.Field)
	}

	expected := "validation failed on media.歐拉歐拉: path is empty"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
}

func TestPanicError(t *testing.T) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = NewPanicError(r)
			}
		}()
		panic("boom")
	}()

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PanicError, got %T", err)
	}
	if pe.Value != "boom" {
		t.Errorf("expected value 'boom', got %v", pe.Value)
	}
	if err.Error() != "panic: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !strings.Contains(string(pe.Stack), "TestPanicError") {
		t.Error("expected stack to include the panicking test function")
	}
}
