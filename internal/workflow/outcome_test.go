package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "lead-pipeline/internal/common/errors"
)

func TestOutcome(t *testing.T) {
	ok := Ok(42)
	assert.True(t, ok.IsOk())
	assert.Equal(t, 42, ok.Value())
	assert.Empty(t, ok.Kind())
	assert.Empty(t, ok.Message())

	cause := errs.NewClientError("POST", "/contacts", 422, "dup")
	failed := Err[int](cause)
	assert.False(t, failed.IsOk())
	assert.Equal(t, 0, failed.Value())
	assert.Equal(t, errs.KindClient, failed.Kind())
	assert.Equal(t, cause.Error(), failed.Message())
	assert.ErrorIs(t, failed.Unwrap(), cause)

	plain := Err[string](errors.New("boom"))
	assert.Equal(t, errs.KindInternal, plain.Kind())

	var zero Outcome[int]
	assert.False(t, zero.IsOk())
	assert.Equal(t, errs.KindInternal, zero.Kind())
	assert.Equal(t, "unknown failure", Err[int](nil).Message())
}

func TestMatch(t *testing.T) {
	describe := func(o Outcome[int]) string {
		return Match(o,
			func(v int) string { return "ok" },
			func(kind errs.Kind, msg string) string { return string(kind) + ":" + msg })
	}
	assert.Equal(t, "ok", describe(Ok(1)))
	assert.Equal(t, "internal:boom", describe(Err[int](errors.New("boom"))))
}

func TestAttempt(t *testing.T) {
	assert.True(t, attempt(func() (int, error) { return 1, nil }).IsOk())
	assert.False(t, attempt(func() (int, error) { return 0, errors.New("x") }).IsOk())
}
