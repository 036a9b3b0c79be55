package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

var (
	errCause = errors.New("the underlying failure")
	errMark  = errors.New("the operation that failed")
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error // identical error expected back, nil for "wrapped"
	}{
		{
			name: "nil stays nil",
			err:  nil,
			want: nil,
		},
		{
			name: "EOF passes through untouched",
			err:  io.EOF,
			want: io.EOF,
		},
		{
			name: "unexpected EOF passes through untouched",
			err:  io.ErrUnexpectedEOF,
			want: io.ErrUnexpectedEOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := From(tt.err); got != tt.want {
				t.Errorf("From(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}

	t.Run("wrapped error stays matchable", func(t *testing.T) {
		err := From(errCause)
		if err == errCause {
			t.Fatal("From() did not wrap")
		}
		if !errors.Is(err, errCause) {
			t.Errorf("errors.Is() lost the cause: %v", err)
		}
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil cause yields nil", func(t *testing.T) {
		if err := Wrap(nil, errMark); err != nil {
			t.Errorf("Wrap(nil, mark) = %v, want nil", err)
		}
	})

	t.Run("both errors stay matchable", func(t *testing.T) {
		err := Wrap(errCause, errMark)
		if !errors.Is(err, errCause) {
			t.Errorf("errors.Is() lost the cause: %v", err)
		}
		if !errors.Is(err, errMark) {
			t.Errorf("errors.Is() lost the mark: %v", err)
		}
	})

	t.Run("nested checkpoints keep every mark", func(t *testing.T) {
		inner := Wrap(errCause, errMark)
		outerMark := errors.New("outer operation")
		outer := Wrap(inner, outerMark)

		for _, want := range []error{errCause, errMark, outerMark} {
			if !errors.Is(outer, want) {
				t.Errorf("errors.Is(outer, %v) = false", want)
			}
		}
	})

	t.Run("errors.As finds typed marks", func(t *testing.T) {
		mark := &typedError{code: 7}
		err := Wrap(errCause, mark)

		var got *typedError
		if !errors.As(err, &got) || got.code != 7 {
			t.Errorf("errors.As() = %v, want the typed mark", got)
		}
	})
}

func TestCheckpoint_Error(t *testing.T) {
	err := Wrap(errCause, errMark)

	msg := err.Error()
	if !strings.Contains(msg, "checkpoint_test.go:") {
		t.Errorf("message %q does not name the call site", msg)
	}
	if !strings.Contains(msg, errMark.Error()) || !strings.Contains(msg, errCause.Error()) {
		t.Errorf("message %q does not carry both errors", msg)
	}
}

type typedError struct {
	code int
}

func (e *typedError) Error() string {
	return fmt.Sprintf("typed error %d", e.code)
}
