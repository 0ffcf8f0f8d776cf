package downloader

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/tanq16/hanzo/utils"
)

func TestClassifyPart(t *testing.T) {
	job := newTestJob(t, "http://unused", 100, 50, 2)
	chunk := &job.Chunks[0]

	if got := ClassifyPart(chunk, job.Config.OutputPath); got != PartAbsent {
		t.Errorf("no file: got %v, want PartAbsent", got)
	}
	writePart(t, job, chunk, bytes.Repeat([]byte("x"), 37))
	if got := ClassifyPart(chunk, job.Config.OutputPath); got != PartPartial {
		t.Errorf("short file: got %v, want PartPartial", got)
	}
	writePart(t, job, chunk, bytes.Repeat([]byte("x"), 60))
	if got := ClassifyPart(chunk, job.Config.OutputPath); got != PartPartial {
		t.Errorf("long file: got %v, want PartPartial", got)
	}
	writePart(t, job, chunk, bytes.Repeat([]byte("x"), 50))
	if got := ClassifyPart(chunk, job.Config.OutputPath); got != PartComplete {
		t.Errorf("exact file: got %v, want PartComplete", got)
	}
}

func TestReconcileParts(t *testing.T) {
	job := newTestJob(t, "http://unused", 100, 25, 4)
	// chunk 0: complete, chunk 1: partial, chunks 2 and 3: absent
	writePart(t, job, &job.Chunks[0], bytes.Repeat([]byte("a"), 25))
	writePart(t, job, &job.Chunks[1], bytes.Repeat([]byte("b"), 10))

	pending, err := ReconcileParts(job)
	if err != nil {
		t.Fatalf("ReconcileParts: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("pending = %v, want 3 chunks", pending)
	}
	for i, want := range []int{1, 2, 3} {
		if pending[i] != want {
			t.Errorf("pending[%d] = %d, want %d", i, pending[i], want)
		}
	}
	if job.Chunks[0].State != StateCompleted {
		t.Errorf("chunk 0 state = %s, want completed", job.Chunks[0].State)
	}
	// A partial part file is always discarded, never resumed mid-range.
	if _, err := os.Stat(job.Chunks[1].PartPath(job.Config.OutputPath)); !os.IsNotExist(err) {
		t.Error("partial part file was not removed")
	}
	snap := job.Progress.Snapshot()
	if snap.BytesDownloaded != 25 || snap.ChunksCompleted != 1 {
		t.Errorf("progress = %+v, want 25 bytes and 1 completed chunk", snap)
	}
}

func TestReconcilePartsSweepsStalePlan(t *testing.T) {
	job := newTestJob(t, "http://unused", 100, 25, 4)
	// A part file from an earlier run planned with chunk size 50.
	stale := filepath.Join(utils.TempDir(job.Config.OutputPath), filepath.Base(job.Config.OutputPath)+".part0_0-49")
	if err := os.MkdirAll(utils.TempDir(job.Config.OutputPath), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(stale, bytes.Repeat([]byte("s"), 50), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	writePart(t, job, &job.Chunks[0], bytes.Repeat([]byte("a"), 25))

	pending, err := ReconcileParts(job)
	if err != nil {
		t.Fatalf("ReconcileParts: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("pending = %v, want 3 chunks", pending)
	}
	if _, statErr := os.Stat(stale); !os.IsNotExist(statErr) {
		t.Error("stale part file from old plan was not removed")
	}
	if job.Chunks[0].State != StateCompleted {
		t.Error("current plan's complete part was not preserved")
	}
}

func TestReconcilePartsNoResumeDiscardsEverything(t *testing.T) {
	job := newTestJob(t, "http://unused", 100, 25, 4)
	job.Config.NoResume = true
	writePart(t, job, &job.Chunks[0], bytes.Repeat([]byte("a"), 25)) // complete
	writePart(t, job, &job.Chunks[1], bytes.Repeat([]byte("b"), 10)) // partial

	pending, err := ReconcileParts(job)
	if err != nil {
		t.Fatalf("ReconcileParts: %v", err)
	}
	if len(pending) != 4 {
		t.Fatalf("pending = %v, want all 4 chunks", pending)
	}
	for i := range job.Chunks {
		if _, statErr := os.Stat(job.Chunks[i].PartPath(job.Config.OutputPath)); !os.IsNotExist(statErr) {
			t.Errorf("part file for chunk %d was not discarded", i)
		}
		if job.Chunks[i].State != StatePending {
			t.Errorf("chunk %d state = %s, want pending", i, job.Chunks[i].State)
		}
	}
	if snap := job.Progress.Snapshot(); snap.BytesDownloaded != 0 || snap.ChunksCompleted != 0 {
		t.Errorf("progress = %+v, want untouched counters", snap)
	}
}

func TestReconcilePartsAllComplete(t *testing.T) {
	job := newTestJob(t, "http://unused", 10, 4, 2)
	writePart(t, job, &job.Chunks[0], []byte("ABCD"))
	writePart(t, job, &job.Chunks[1], []byte("EFGH"))
	writePart(t, job, &job.Chunks[2], []byte("IJ"))

	pending, err := ReconcileParts(job)
	if err != nil {
		t.Fatalf("ReconcileParts: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending = %v, want none", pending)
	}
	for i := range job.Chunks {
		if job.Chunks[i].State != StateCompleted {
			t.Errorf("chunk %d state = %s, want completed", i, job.Chunks[i].State)
		}
	}
}
