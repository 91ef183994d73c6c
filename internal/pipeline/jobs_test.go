package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/docnav/internal/collector"
	"github.com/dgallion1/docnav/internal/navtree"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewDocumentJob(t *testing.T) {
	job := NewDocumentJob("toc.md", "Guide", []byte("hello world"))
	if job.Kind != KindDocument || job.Status != StatusQueued {
		t.Errorf("unexpected kind/status %q/%q", job.Kind, job.Status)
	}
	if len(job.ID) != 26 {
		t.Errorf("expected ULID job id, got %q", job.ID)
	}
	if job.ContentHash != ContentHashHex([]byte("hello world")) {
		t.Errorf("unexpected content hash %q", job.ContentHash)
	}
	if string(job.FileData()) != "hello world" {
		t.Errorf("expected file data to be kept, got %q", job.FileData())
	}
}

func TestNewBrowserJob(t *testing.T) {
	job := NewBrowserJob("https://example.com/documentation/uikit", "UIKit", "", 12)
	if job.Kind != KindBrowser || job.MaxCycles != 12 || job.RootTitle != "UIKit" {
		t.Errorf("unexpected job %+v", job.Snapshot())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusLaunching, "launching"},
		{StatusCollecting, "collecting"},
		{StatusBuilding, "writing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Finished(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusPartial, StatusFailed} {
		if !s.Finished() {
			t.Errorf("expected %q finished", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusLaunching, StatusParsing, StatusCollecting, StatusBuilding} {
		if s.Finished() {
			t.Errorf("expected %q not finished", s)
		}
	}
}

func TestJob_AddErrorAndWarning(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("navigation timed out")
	job.AddError("navigator missing")
	job.AddWarning("attempt 1 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "navigation timed out" {
		t.Errorf("expected first error %q, got %q", "navigation timed out", snap.Progress.Errors[0])
	}
	if len(snap.Progress.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(snap.Progress.Warnings))
	}
}

func TestJob_RecordCycle(t *testing.T) {
	job := &Job{ID: "cycle-test", UpdatedAt: time.Now()}
	job.RecordCycle(collector.CycleReport{Cycle: 1, Expanded: 2, New: 10, Total: 10})
	job.RecordCycle(collector.CycleReport{Cycle: 2, Expanded: 1, New: 0, Total: 10, StableRounds: 1})

	p := job.Snapshot().Progress
	if p.Cycles != 2 || p.Expanded != 3 || p.Items != 10 || p.StableRounds != 1 {
		t.Errorf("unexpected progress %+v", p)
	}
}

func TestJob_SetResult(t *testing.T) {
	job := &Job{ID: "result-test", UpdatedAt: time.Now()}
	if tree, _ := job.Tree(); tree != nil {
		t.Fatal("expected no tree before result")
	}

	res := &collector.Result{
		Tree:  navtree.BuildTree("root", "u", nil),
		Stats: collector.Stats{Cycles: 4, Items: 0, Reason: collector.ReasonStable},
	}
	job.SetResult(res, "out/result-test.json")
	job.SetStatus(StatusCompleted, "done")

	tree, status := job.Tree()
	if tree == nil || tree.Title != "root" {
		t.Fatalf("expected stored tree, got %+v", tree)
	}
	if status != StatusCompleted {
		t.Errorf("expected completed, got %q", status)
	}
	snap := job.Snapshot()
	if snap.Progress.Reason != "stable" || snap.OutputPath != "out/result-test.json" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	// Snapshot should always return non-nil slices.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil || snap.Progress.Warnings == nil {
		t.Error("expected non-nil errors and warnings in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
