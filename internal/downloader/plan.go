package downloader

import "fmt"

// PlanChunks partitions [0, totalSize-1] into contiguous, non-overlapping
// chunks of chunkSize bytes each, the last one clamped to the resource end.
// Without range support the plan is a single chunk covering everything.
// A zero-length resource yields an empty plan.
func PlanChunks(totalSize int64, chunkSize int64, workers int, rangeSupport bool) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, chunkSize)
	}
	if workers <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrInvalidConfiguration, workers)
	}
	if totalSize < 0 {
		return nil, fmt.Errorf("%w: negative total size %d", ErrInvalidConfiguration, totalSize)
	}
	if totalSize == 0 {
		return []Chunk{}, nil
	}
	if !rangeSupport {
		return []Chunk{{Index: 0, StartByte: 0, EndByte: totalSize - 1}}, nil
	}
	numChunks := (totalSize + chunkSize - 1) / chunkSize
	chunks := make([]Chunk, 0, numChunks)
	var currentPosition int64 = 0
	for i := int64(0); i < numChunks; i++ {
		startByte := currentPosition
		endByte := startByte + chunkSize - 1
		if endByte >= totalSize {
			endByte = totalSize - 1
		}
		chunks = append(chunks, Chunk{
			Index:     int(i),
			StartByte: startByte,
			EndByte:   endByte,
		})
		currentPosition = endByte + 1
	}
	return chunks, nil
}

// DeriveChunkSize picks a chunk size when none was configured: one chunk per
// worker, rounded up so the plan covers the whole resource.
func DeriveChunkSize(totalSize int64, workers int) int64 {
	if workers <= 0 || totalSize <= 0 {
		return totalSize
	}
	return (totalSize + int64(workers) - 1) / int64(workers)
}
