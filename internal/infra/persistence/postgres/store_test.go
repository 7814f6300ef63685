package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"latticegen/internal/infra/persistence/postgres/testutil"
	"latticegen/pkg/domain"
)

func newStubStore(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(testutil.Opener(db))
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, conn
}

func TestNewStoreCreatesRunsTable(t *testing.T) {
	_, conn := newStubStore(t)
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS runs") {
		t.Fatalf("expected DDL, got %v", conn.Execs)
	}
}

func TestNewStorePingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	defer OverrideSQLOpen(testutil.Opener(db))()
	if _, err := NewStore(context.Background(), "postgres://unused"); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestSaveGetListRuns(t *testing.T) {
	ctx := context.Background()
	store, conn := newStubStore(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	runs := []domain.RunRecord{
		{ID: "late", Pipeline: "embedded", Total: 441, StartedAt: t0.Add(time.Minute)},
		{ID: "early", Pipeline: "ribbon", Total: 12, StartedAt: t0},
	}
	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun %s: %v", run.ID, err)
		}
	}
	runs[0].Defects = 4
	if err := store.SaveRun(ctx, runs[0]); err != nil {
		t.Fatalf("SaveRun upsert: %v", err)
	}
	if got := len(conn.Rows("runs")); got != 2 {
		t.Fatalf("expected 2 rows after upsert, got %d", got)
	}

	got, ok, err := store.GetRun(ctx, "late")
	if err != nil || !ok {
		t.Fatalf("GetRun: %v %v", ok, err)
	}
	if got.Defects != 4 || got.Total != 441 {
		t.Fatalf("unexpected record %+v", got)
	}
	if _, ok, err := store.GetRun(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss, got %v %v", ok, err)
	}

	list, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(list) != 2 || list[0].ID != "early" || list[1].ID != "late" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestSaveRunErrors(t *testing.T) {
	ctx := context.Background()
	store, conn := newStubStore(t)
	if err := store.SaveRun(ctx, domain.RunRecord{}); err == nil {
		t.Fatalf("expected validation error")
	}
	conn.FailBegin = true
	if err := store.SaveRun(ctx, domain.RunRecord{ID: "x"}); err == nil || !strings.Contains(err.Error(), "begin") {
		t.Fatalf("expected begin error, got %v", err)
	}
	conn.FailBegin = false
	conn.FailCommit = true
	if err := store.SaveRun(ctx, domain.RunRecord{ID: "x"}); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
}

func TestListRunsQueryFailure(t *testing.T) {
	store, conn := newStubStore(t)
	conn.FailTables = map[string]bool{"runs": true}
	if _, err := store.ListRuns(context.Background()); err == nil {
		t.Fatalf("expected query failure")
	}
}
