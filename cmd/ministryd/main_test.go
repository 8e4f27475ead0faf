package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "absent.env")))
	err := cmd.Execute()
	return out.String(), err
}

func TestHashToken(t *testing.T) {
	out, err := run(t, "hash-token", "correct-horse-battery")
	if err != nil {
		t.Fatalf("hash-token: %v", err)
	}
	hash := strings.TrimSpace(out)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse-battery")) != nil {
		t.Fatalf("printed hash does not match token: %q", hash)
	}

	if _, err := run(t, "hash-token", "short"); err == nil {
		t.Fatalf("short tokens should be refused")
	}
	if _, err := run(t, "hash-token"); err == nil {
		t.Fatalf("missing argument should fail")
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || out != "ministryd dev\n" {
		t.Fatalf("version = %q, %v", out, err)
	}
}

func TestMigrateAndSeed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "ministry.db"))

	out, err := run(t, "migrate")
	if err != nil || !strings.Contains(out, "schema up to date") {
		t.Fatalf("migrate = %q, %v", out, err)
	}

	fixture := filepath.Join(dir, "content.yaml")
	body := "beliefs:\n  - name: Salvation\n    detail: By grace through faith.\n"
	if err := os.WriteFile(fixture, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, err = run(t, "seed", "--file", fixture)
	if err != nil || !strings.Contains(out, "created 1") {
		t.Fatalf("seed = %q, %v", out, err)
	}
	out, err = run(t, "seed", "-f", fixture)
	if err != nil || !strings.Contains(out, "already present 1") {
		t.Fatalf("reseed = %q, %v", out, err)
	}
}

func TestConfigErrorsSurface(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://nope")
	if _, err := run(t, "migrate"); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected config error, got %v", err)
	}
}

type fakePurger struct {
	calls atomic.Int32
	err   error
}

func (f *fakePurger) Purge(context.Context) (int64, error) {
	f.calls.Add(1)
	return 1, f.err
}

func TestPurgeSessions_RunsUntilCanceled(t *testing.T) {
	for _, perr := range []error{nil, errors.New("db locked")} {
		p := &fakePurger{err: perr}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			purgeSessions(ctx, p, 5*time.Millisecond)
			close(done)
		}()

		deadline := time.Now().Add(2 * time.Second)
		for p.calls.Load() < 2 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
		<-done
		if p.calls.Load() < 2 {
			t.Fatalf("purge ran %d times", p.calls.Load())
		}
	}
}
