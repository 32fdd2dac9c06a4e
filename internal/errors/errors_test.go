package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestSelErrorMessage(t *testing.T) {
	err := New(RepoNotFound, "repository root missing", nil)

	msg := err.Error()
	if !strings.Contains(msg, "REPO_NOT_FOUND") {
		t.Errorf("Error() should contain the code, got: %s", msg)
	}
	if !strings.Contains(msg, "repository root missing") {
		t.Errorf("Error() should contain the message, got: %s", msg)
	}
}

func TestSelErrorWithCause(t *testing.T) {
	cause := stderrors.New("stat failed")
	err := New(CacheUnavailable, "cannot open cache store", cause)

	if !strings.Contains(err.Error(), "stat failed") {
		t.Errorf("Error() should include the cause, got: %s", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(SeedOutsideRepo, "seed escapes repo", nil).
		WithDetails(map[string]string{"seed": "/elsewhere/a.ts"})

	details, ok := err.Details.(map[string]string)
	if !ok {
		t.Fatal("Details should keep the provided value")
	}
	if details["seed"] != "/elsewhere/a.ts" {
		t.Errorf("Details lost content: %v", details)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
	if got := CodeOf(New(LanguageUnknown, "nope", nil)); got != LanguageUnknown {
		t.Errorf("CodeOf = %q, want %q", got, LanguageUnknown)
	}
	if got := CodeOf(stderrors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %q, want %q", got, InternalError)
	}
}
