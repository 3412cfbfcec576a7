package common

import (
	"path/filepath"
	"testing"
)

func TestRepairLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "repairs.jsonl")
	log := NewRepairLog(path)

	entries := []RepairEntry{
		{Op: "fix", File: "a.bin", Offset: 4096, BeforeSha256: "aa", AfterSha256: "bb"},
		{Op: "shift", File: "b.bin", Offset: 5, ShiftCount: 3, BeforeSha256: "cc", AfterSha256: "dd"},
	}
	for _, e := range entries {
		if err := log.Append(e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := ReadRepairLog(path)
	if err != nil {
		t.Fatalf("ReadRepairLog() error = %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("len(entries) = %d, want %d", len(got), len(entries))
	}
	for i, want := range entries {
		if got[i].Op != want.Op || got[i].File != want.File || got[i].Offset != want.Offset {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want)
		}
		if got[i].Ts.IsZero() {
			t.Fatalf("entry %d has zero timestamp", i)
		}
	}
	if got[1].ShiftCount != 3 {
		t.Fatalf("ShiftCount = %d, want 3", got[1].ShiftCount)
	}
}

func TestRepairLogRejectsMissingOp(t *testing.T) {
	log := NewRepairLog(filepath.Join(t.TempDir(), "repairs.jsonl"))
	if err := log.Append(RepairEntry{File: "a.bin"}); err == nil {
		t.Fatalf("Append() error = nil, want error for missing op")
	}
}

func TestReadRepairLogMissingFile(t *testing.T) {
	if _, err := ReadRepairLog(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatalf("ReadRepairLog() error = nil, want error")
	}
}
