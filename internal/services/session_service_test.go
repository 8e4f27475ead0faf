package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-ministry-site/internal/repo"
)

func TestSessionService_EnsureCreatesThenReuses(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db, time.Hour)
	ctx := context.Background()

	s1, created, err := svc.Ensure(ctx, "")
	if err != nil || !created || s1.Token == "" || s1.ViewerID == "" {
		t.Fatalf("Ensure(empty): s=%+v created=%v err=%v", s1, created, err)
	}
	if s1.Token == s1.ViewerID {
		t.Fatalf("token and viewer id must differ")
	}

	s2, created, err := svc.Ensure(ctx, s1.Token)
	if err != nil || created || s2.ViewerID != s1.ViewerID {
		t.Fatalf("Ensure(existing) should reuse: s=%+v created=%v err=%v", s2, created, err)
	}

	got, err := svc.Lookup(ctx, s1.Token)
	if err != nil || got.ViewerID != s1.ViewerID {
		t.Fatalf("Lookup: got=%+v err=%v", got, err)
	}
}

func TestSessionService_ExpiredSessionIsReplaced(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db, time.Hour)
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	old, _, err := svc.Ensure(ctx, "")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.Lookup(ctx, old.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for expired token, got %v", err)
	}
	// Lookup discarded the stale row.
	if _, err := repo.GetSession(ctx, db, old.Token); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected expired row deleted, got %v", err)
	}

	fresh, created, err := svc.Ensure(ctx, old.Token)
	if err != nil || !created || fresh.Token == old.Token || fresh.ViewerID == old.ViewerID {
		t.Fatalf("expected a brand new session: fresh=%+v created=%v err=%v", fresh, created, err)
	}
}

func TestSessionService_LookupUnknownAndPurge(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db, 0)
	ctx := context.Background()

	if svc.TTL != DefaultSessionTTL {
		t.Fatalf("TTL = %v, want default %v", svc.TTL, DefaultSessionTTL)
	}
	if _, err := svc.Lookup(ctx, "  "); !errors.Is(err, ErrNoSession) {
		t.Fatalf("blank token: expected ErrNoSession, got %v", err)
	}
	if _, err := svc.Lookup(ctx, "nope"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("unknown token: expected ErrNoSession, got %v", err)
	}

	now := time.Now().UTC()
	svc.Now = func() time.Time { return now }
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Ensure(ctx, ""); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
	}
	svc.Now = func() time.Time { return now.Add(DefaultSessionTTL + time.Minute) }
	n, err := svc.Purge(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Purge: n=%d err=%v", n, err)
	}
}
