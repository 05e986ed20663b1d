package indexdb

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLiteIndex {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "runs", "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndListRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rows := []RunRow{
		{RunID: "run-001", Seed: "alpha", Policy: "miner", TicksUsed: 980, ActionsExecuted: 140, ActionsFailed: 12, TotalXP: 55, Reputation: 30, ContractsCompleted: 3, LuckDelta: -4.5, FinalDigest: "d1"},
		{RunID: "run-002", Seed: "beta", Policy: "miner", TicksUsed: 1000, ActionsExecuted: 150, ActionsFailed: 40, TotalXP: 41, Reputation: 10, ContractsCompleted: 1, LuckDelta: 2.0, Stalled: true, FinalDigest: "d2"},
		{RunID: "run-003", Seed: "alpha", Policy: "explorer", TicksUsed: 990, ActionsExecuted: 60, ActionsFailed: 2, TotalXP: 24, Reputation: 0, ContractsCompleted: 0, LuckDelta: 11.0, FinalDigest: "d3"},
	}
	for _, r := range rows {
		if err := db.InsertRun(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.RunID, err)
		}
	}

	all, err := db.ListRuns(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("listed %d runs, want 3", len(all))
	}
	if all[0].RunID != "run-001" || !all[1].Stalled || all[0].Stalled {
		t.Fatalf("rows came back wrong: %+v", all[:2])
	}
	if all[0].LuckDelta != -4.5 {
		t.Fatalf("luck delta = %v", all[0].LuckDelta)
	}

	miners, err := db.ListRuns(ctx, "miner")
	if err != nil {
		t.Fatalf("list miner: %v", err)
	}
	if len(miners) != 2 {
		t.Fatalf("listed %d miner runs, want 2", len(miners))
	}
}

func TestInsertRunUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	r := RunRow{RunID: "run-001", Seed: "alpha", Policy: "miner", TotalXP: 10, FinalDigest: "d1"}
	if err := db.InsertRun(ctx, r); err != nil {
		t.Fatalf("insert: %v", err)
	}
	r.TotalXP = 20
	if err := db.InsertRun(ctx, r); err != nil {
		t.Fatalf("reinsert: %v", err)
	}

	all, err := db.ListRuns(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].TotalXP != 20 {
		t.Fatalf("upsert result = %+v", all)
	}
}

func TestSummarize(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, r := range []RunRow{
		{RunID: "a", Seed: "s1", Policy: "miner", TotalXP: 10, Reputation: 20, ContractsCompleted: 2, FinalDigest: "d"},
		{RunID: "b", Seed: "s2", Policy: "miner", TotalXP: 30, Reputation: 0, ContractsCompleted: 1, Stalled: true, FinalDigest: "d"},
	} {
		if err := db.InsertRun(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	sum, err := db.Summarize(ctx, "miner")
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Runs != 2 || sum.MeanXP != 20 || sum.MeanReputation != 10 || sum.ContractsCompleted != 3 || sum.Stalled != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if v, err := db.GetMeta(ctx, "catalogs_digest"); err != nil || v != "" {
		t.Fatalf("empty meta = %q, %v", v, err)
	}
	if err := db.SetMeta(ctx, "catalogs_digest", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := db.SetMeta(ctx, "catalogs_digest", "def"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, err := db.GetMeta(ctx, "catalogs_digest"); err != nil || v != "def" {
		t.Fatalf("meta = %q, %v", v, err)
	}
}
