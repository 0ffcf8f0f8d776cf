package downloader

import "sync/atomic"

// ProgressCounters is the shared aggregate mutated by workers and read by
// status reporting. All mutation is atomic; no locks.
type ProgressCounters struct {
	bytesDownloaded atomic.Int64
	chunksCompleted atomic.Int64
	chunksFailed    atomic.Int64
}

type ProgressSnapshot struct {
	BytesDownloaded int64
	ChunksCompleted int64
	ChunksFailed    int64
}

// AddBytes records downloaded bytes. Negative deltas roll back bytes from a
// failed attempt whose part file gets discarded.
func (p *ProgressCounters) AddBytes(n int64) {
	p.bytesDownloaded.Add(n)
}

func (p *ProgressCounters) MarkCompleted() {
	p.chunksCompleted.Add(1)
}

func (p *ProgressCounters) MarkFailed() {
	p.chunksFailed.Add(1)
}

func (p *ProgressCounters) Snapshot() ProgressSnapshot {
	return ProgressSnapshot{
		BytesDownloaded: p.bytesDownloaded.Load(),
		ChunksCompleted: p.chunksCompleted.Load(),
		ChunksFailed:    p.chunksFailed.Load(),
	}
}
