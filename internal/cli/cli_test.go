package cli

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	inner := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"failure", NewExitError(ExitFailure, "1 example(s) did not pass"), ExitFailure},
		{"wrapped", fmt.Errorf("run: %w", WrapExitError(ExitCommandError, "load", inner)), ExitCommandError},
		{"plain error is a usage error", inner, ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	inner := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to resolve sources", inner)

	assert.Equal(t, "failed to resolve sources: no such file", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestToConfigFlags(t *testing.T) {
	f := Flags{Paths: []string{"a"}, Filter: "Numbers", Bail: true, Format: "json", Timeout: time.Second, NoColor: true}
	cf := f.ToConfigFlags()

	assert.Equal(t, []string{"a"}, cf.Paths)
	assert.Equal(t, "Numbers", cf.Filter)
	assert.True(t, cf.Bail)
	assert.Equal(t, "json", cf.Format)
	assert.Equal(t, time.Second, cf.Timeout)
	assert.True(t, cf.NoColor)
}
