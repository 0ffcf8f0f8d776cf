package downloader

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/tanq16/hanzo/utils"
)

// ChunkState tracks a chunk through its lifecycle. Transitions only move
// forward, except the explicit Failed -> Pending retry reset.
type ChunkState int

const (
	StatePending ChunkState = iota
	StateInProgress
	StateCompleted
	StateFailed
	StateAborted
)

func (s ChunkState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInProgress:
		return "in-progress"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Chunk is one inclusive byte range [StartByte, EndByte] of the resource.
// Index defines assembly order and, together with the range bounds, the
// part file name, so a later run recognizes prior progress.
type Chunk struct {
	Index     int
	StartByte int64
	EndByte   int64
	State     ChunkState
	Retries   int
	LastError error
}

func (c *Chunk) ExpectedSize() int64 {
	return c.EndByte - c.StartByte + 1
}

func (c *Chunk) RangeHeader() string {
	return fmt.Sprintf("bytes=%d-%d", c.StartByte, c.EndByte)
}

// PartPath returns the deterministic part file path for this chunk.
func (c *Chunk) PartPath(outputPath string) string {
	name := fmt.Sprintf("%s.part%d_%d-%d", filepath.Base(outputPath), c.Index, c.StartByte, c.EndByte)
	return filepath.Join(utils.TempDir(outputPath), name)
}

// Config is the immutable descriptor of one download.
type Config struct {
	URL            string
	OutputPath     string
	Workers        int
	ChunkSize      int64 // bytes; 0 derives from worker count after probing
	MaxRetries     int   // attempts per chunk
	ExpectedSHA256 string
	KeepParts      bool
	NoResume       bool // discard existing part files instead of resuming
	StallTimeout   time.Duration // per-read inactivity timeout
	ProgressFunc   func(downloaded, total int64)
}

// Job carries the planned state of a running download.
type Job struct {
	ID           string
	Config       Config
	TotalSize    int64
	RangeSupport bool
	Chunks       []Chunk
	StartTime    time.Time
	Progress     *ProgressCounters
}

// Result summarizes a finished download for the caller.
type Result struct {
	OutputPath string
	Size       int64
	Elapsed    time.Duration
}
