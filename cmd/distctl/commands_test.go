package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/aegiskit/aegis/pkg/xlog"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return string(out)
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := createApp()
	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run(context.Background(), append([]string{"distctl"}, args...))
	})
	return out, runErr
}

func TestLockTry_PrintsOutput(t *testing.T) {
	out, err := runApp(t, "lock", "try", "job-1")
	if err != nil {
		t.Fatalf("lock try: %v", err)
	}
	if got := out; got == "" {
		t.Fatal("expected output from lock try")
	}
}

// sharedToolkitApp builds a cli.Command wired to a single toolkit instance
// (bypassing the Before hook's per-invocation rebuild), so successive
// Run calls observe the same in-memory adapter state.
func sharedToolkitApp(t *testing.T) (*cli.Command, context.Context) {
	t.Helper()
	logger, _, err := xlog.New().Build()
	if err != nil {
		t.Fatalf("xlog.New().Build(): %v", err)
	}
	tk, err := buildToolkit(defaultToolConfig(), logger)
	if err != nil {
		t.Fatalf("buildToolkit: %v", err)
	}
	ctx := context.WithValue(context.Background(), toolkitKey{}, tk)
	return &cli.Command{Name: "distctl", Commands: createCommands()}, ctx
}

func TestLockTry_SecondAttemptUnavailable(t *testing.T) {
	app, ctx := sharedToolkitApp(t)

	_ = captureStdout(t, func() {
		if err := app.Run(ctx, []string{"distctl", "lock", "try", "job-2"}); err != nil {
			t.Fatalf("first try: %v", err)
		}
	})

	var runErr error
	_ = captureStdout(t, func() {
		runErr = app.Run(ctx, []string{"distctl", "lock", "try", "job-2"})
	})
	var exitErr *exitError
	if !errors.As(runErr, &exitErr) {
		t.Fatalf("expected exitError on already-held key, got %v", runErr)
	}
}

func TestLockTry_MissingKeyIsUsageError(t *testing.T) {
	app := createApp()
	err := app.Run(context.Background(), []string{"distctl", "lock", "try"})
	var usageErr *usageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("expected usageError, got %v", err)
	}
}

func TestCacheGetMiss(t *testing.T) {
	app := createApp()
	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run(context.Background(), []string{"distctl", "cache", "get", "absent"})
	})
	var exitErr *exitError
	if !errors.As(runErr, &exitErr) {
		t.Fatalf("expected exitError on cache miss, got %v", runErr)
	}
	if out == "" {
		t.Fatal("expected miss message on stdout")
	}
}

func TestCachePutThenGet(t *testing.T) {
	app, ctx := sharedToolkitApp(t)

	_ = captureStdout(t, func() {
		if err := app.Run(ctx, []string{"distctl", "cache", "put", "greeting", "hello"}); err != nil {
			t.Fatalf("cache put: %v", err)
		}
	})

	out := captureStdout(t, func() {
		if err := app.Run(ctx, []string{"distctl", "cache", "get", "greeting"}); err != nil {
			t.Fatalf("cache get: %v", err)
		}
	})
	if !bytes.Contains([]byte(out), []byte("hello")) {
		t.Fatalf("expected output to contain the stored value, got %q", out)
	}
}

func TestBreakerState_UnusedKeyIsClosed(t *testing.T) {
	app := createApp()
	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run(context.Background(), []string{"distctl", "breaker", "state", "svc"})
	})
	if runErr != nil {
		t.Fatalf("breaker state: %v", runErr)
	}
	if !bytes.Contains([]byte(out), []byte("status=closed")) {
		t.Fatalf("expected closed breaker state, got %q", out)
	}
}

func TestSemState_UnusedKeyReportsNoSlots(t *testing.T) {
	app := createApp()
	var runErr error
	out := captureStdout(t, func() {
		runErr = app.Run(context.Background(), []string{"distctl", "sem", "state", "pool"})
	})
	if runErr != nil {
		t.Fatalf("sem state: %v", runErr)
	}
	if !bytes.Contains([]byte(out), []byte("no slots held")) {
		t.Fatalf("expected no-slots message, got %q", out)
	}
}
