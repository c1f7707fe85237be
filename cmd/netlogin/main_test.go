// File: cmd/netlogin/main_test.go
package main

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/netlogin/cmd"
)

// resetMocks restores the original function implementations.
func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
	execute = cmd.Execute
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "interrupted", err: context.Canceled, want: 0},
		{name: "wrapped interrupt", err: errors.Join(errors.New("run"), context.Canceled), want: 0},
		{name: "no accounts", err: errors.New("no accounts configured"), want: 1},
		{name: "deadline", err: context.DeadlineExceeded, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestMain_ExitCodes(t *testing.T) {
	defer resetMocks()

	tests := []struct {
		name     string
		err      error
		wantExit int
	}{
		{name: "success does not call exit", err: nil, wantExit: -1},
		{name: "failure exits 1", err: errors.New("boom"), wantExit: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := -1
			osExit = func(code int) { got = code }
			execute = func(ctx context.Context) error {
				assert.NoError(t, ctx.Err())
				return tt.err
			}
			main()
			assert.Equal(t, tt.wantExit, got)
		})
	}
}

func TestHandlePanic(t *testing.T) {
	defer resetMocks()

	t.Run("writes panic log", func(t *testing.T) {
		var (
			path    string
			content []byte
			code    = -1
		)
		osWriteFile = func(name string, data []byte, perm os.FileMode) error {
			path, content = name, data
			return nil
		}
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("kaboom")
		}()

		assert.Equal(t, panicLogFile, path)
		assert.Contains(t, string(content), "panic: kaboom")
		assert.Contains(t, string(content), "goroutine")
		assert.Equal(t, 1, code)
	})

	t.Run("write failure still exits", func(t *testing.T) {
		code := -1
		osWriteFile = func(string, []byte, os.FileMode) error { return errors.New("read-only fs") }
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("kaboom")
		}()
		assert.Equal(t, 1, code)
	})

	t.Run("no panic is a no-op", func(t *testing.T) {
		called := false
		osExit = func(int) { called = true }
		func() { defer handlePanic() }()
		require.False(t, called)
	})
}
