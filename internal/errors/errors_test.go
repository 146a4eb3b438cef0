package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors_SetKindAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		message string
	}{
		{"NotFound", NotFound("fixture not found"), ErrNotFound, "fixture not found"},
		{"NotFoundf", NotFoundf("week %d not found", 7), ErrNotFound, "week 7 not found"},
		{"Validation", Validation("bad week"), ErrValidation, "bad week"},
		{"Validationf", Validationf("week must be >= %d", 1), ErrValidation, "week must be >= 1"},
		{"Conflict", Conflict("fixture already started"), ErrConflict, "fixture already started"},
		{"Conflictf", Conflictf("fixture %s started", "abc"), ErrConflict, "fixture abc started"},
		{"InvalidInput", InvalidInput("bad choice"), ErrInvalidInput, "bad choice"},
		{"InvalidInputf", InvalidInputf("bad choice %q", "Z"), ErrInvalidInput, `bad choice "Z"`},
		{"Internalf", Internalf("stalled at %d", 3), ErrInternal, "stalled at 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.err.Kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, tt.err.Message)
			}
			if tt.err.Err != nil {
				t.Errorf("expected no wrapped error, got %v", tt.err.Err)
			}
		})
	}
}

func TestInternal_WrapsUnderlying(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	if err.Kind != ErrInternal {
		t.Errorf("expected ErrInternal, got %v", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Error() != "internal error: disk full" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestRemoteConstructors(t *testing.T) {
	cause := errors.New("connection refused")

	read := RemoteRead(cause, "failed to load fixtures")
	if read.Kind != ErrRemoteRead {
		t.Errorf("expected ErrRemoteRead, got %v", read.Kind)
	}
	if read.Error() != "failed to load fixtures: connection refused" {
		t.Errorf("unexpected message: %q", read.Error())
	}

	write := RemoteWrite(cause, "failed to save prediction")
	if write.Kind != ErrRemoteWrite {
		t.Errorf("expected ErrRemoteWrite, got %v", write.Kind)
	}
	if !errors.Is(write, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ErrConflict, "context")

	if err.Kind != ErrConflict {
		t.Errorf("expected ErrConflict, got %v", err.Kind)
	}
	if errors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ErrInternal},
		{"plain", errors.New("x"), ErrInternal},
		{"direct", NotFound("x"), ErrNotFound},
		{"wrapped by fmt", fmt.Errorf("outer: %w", RemoteWrite(errors.New("x"), "write")), ErrRemoteWrite},
		{"outermost wins", Wrap(Validation("inner"), ErrRemoteRead, "outer"), ErrRemoteRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRemote(t *testing.T) {
	if IsRemote(nil) {
		t.Error("nil must not be remote")
	}
	if IsRemote(Validation("x")) {
		t.Error("validation must not be remote")
	}
	if !IsRemote(RemoteRead(nil, "x")) {
		t.Error("RemoteRead must be remote")
	}
	if !IsRemote(fmt.Errorf("ctx: %w", RemoteWrite(nil, "x"))) {
		t.Error("wrapped RemoteWrite must be remote")
	}
}

func TestKind_String(t *testing.T) {
	if ErrRemoteRead.String() != "remote_read" {
		t.Errorf("unexpected name %q", ErrRemoteRead.String())
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("unexpected name %q", Kind(99).String())
	}
}

func TestError_AsTarget(t *testing.T) {
	err := fmt.Errorf("service: %w", Conflict("fixture already started"))

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected errors.As to find *Error")
	}
	if appErr.Kind != ErrConflict {
		t.Errorf("expected ErrConflict, got %v", appErr.Kind)
	}
}
