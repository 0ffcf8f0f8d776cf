package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tanq16/hanzo/utils"
)

// RunScheduler drains the pending chunks with a bounded pool of workers.
// Each chunk is owned by exactly one worker at a time, so the queue channel
// and the progress counters are the only shared state. Cancellation lets
// in-flight chunks wind down; their part files stay reconcilable by
// ReconcileParts on a later run.
func RunScheduler(ctx context.Context, job *Job, client utils.HTTPDoer, pending []int) error {
	log := utils.GetLogger("scheduler").With().Str("jobId", job.ID).Logger()
	if len(pending) > 0 {
		queue := make(chan int, len(pending))
		for _, idx := range pending {
			queue <- idx
		}
		close(queue)

		workers := min(job.Config.Workers, len(pending))
		log.Debug().Int("workers", workers).Int("pending", len(pending)).Msg("Starting chunk workers")
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for idx := range queue {
					if ctx.Err() != nil {
						return
					}
					downloadChunk(ctx, job, &job.Chunks[idx], client)
				}
			}()
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("download interrupted: %w", err)
	}
	var aborted []int
	for i := range job.Chunks {
		if job.Chunks[i].State != StateCompleted {
			aborted = append(aborted, i)
		}
	}
	if len(aborted) > 0 {
		return fmt.Errorf("%w: %d of %d chunks did not complete: %v", ErrDownloadFailed, len(aborted), len(job.Chunks), aborted)
	}
	return nil
}

// downloadChunk drives one chunk through its state machine: Pending ->
// InProgress -> Completed, with Failed -> Pending retries under a linear
// backoff, and Failed -> Aborted once attempts run out.
func downloadChunk(ctx context.Context, job *Job, chunk *Chunk, client utils.HTTPDoer) {
	log := utils.GetLogger("chunk").With().Str("jobId", job.ID).Int("chunkId", chunk.Index).Logger()
	maxRetries := job.Config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			chunk.State = StatePending
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			log.Debug().Int("attempt", attempt+1).Int("maxRetries", maxRetries).Dur("backoff", backoff).Msg("Retrying download of chunk")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
		chunk.State = StateInProgress
		written, err := fetchChunk(ctx, job, chunk, client)
		if err == nil {
			chunk.State = StateCompleted
			job.Progress.MarkCompleted()
			log.Debug().Int64("bytes", written).Msg("Chunk download completed")
			return
		}
		chunk.State = StateFailed
		chunk.Retries++
		chunk.LastError = err
		// Roll back this attempt entirely; resuming mid-range inside a part
		// file written by a failed attempt is never attempted.
		if written > 0 {
			job.Progress.AddBytes(-written)
		}
		os.Remove(chunk.PartPath(job.Config.OutputPath))
		log.Debug().Err(err).Int("attempt", attempt+1).Msg("Error downloading chunk")
		if ctx.Err() != nil {
			return
		}
	}
	chunk.State = StateAborted
	job.Progress.MarkFailed()
	log.Debug().Int("maxRetries", maxRetries).Msg("Failed to download chunk after multiple attempts")
}

// fetchChunk performs a single ranged GET attempt and streams the body to
// the chunk's part file. It returns the number of bytes written so the
// caller can roll back progress accounting on failure.
func fetchChunk(ctx context.Context, job *Job, chunk *Chunk, client utils.HTTPDoer) (int64, error) {
	log := utils.GetLogger("fetch").With().Str("jobId", job.ID).Int("chunkId", chunk.Index).Logger()
	partPath := chunk.PartPath(job.Config.OutputPath)
	partFile, err := os.OpenFile(partPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("error opening part file: %v", err)
	}
	defer partFile.Close()

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, job.Config.URL, nil)
	if err != nil {
		return 0, err
	}
	if job.RangeSupport {
		req.Header.Set("Range", chunk.RangeHeader())
		log.Debug().Str("range", chunk.RangeHeader()).Msg("Sending range request")
	}
	req.Header.Set("Connection", "keep-alive")
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if job.RangeSupport {
		if resp.StatusCode != http.StatusPartialContent {
			return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
	} else if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	// Inactivity watchdog: cancel the request when no bytes arrive within
	// the stall window; the failed attempt then goes through normal retry.
	var watchdog *time.Timer
	if job.Config.StallTimeout > 0 {
		watchdog = time.AfterFunc(job.Config.StallTimeout, cancel)
		defer watchdog.Stop()
	}

	expected := chunk.ExpectedSize()
	buffer := make([]byte, utils.DefaultBufferSize)
	var written int64
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if watchdog != nil {
				watchdog.Reset(job.Config.StallTimeout)
			}
			if _, writeErr := partFile.Write(buffer[:bytesRead]); writeErr != nil {
				return written, writeErr
			}
			written += int64(bytesRead)
			job.Progress.AddBytes(int64(bytesRead))
			if job.Config.ProgressFunc != nil {
				job.Config.ProgressFunc(job.Progress.Snapshot().BytesDownloaded, job.TotalSize)
			}
			if written > expected {
				return written, fmt.Errorf("range overrun: wrote %d bytes, range holds %d", written, expected)
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return written, readErr
		}
	}
	if written != expected {
		return written, fmt.Errorf("%w: expected %d bytes, got %d", ErrShortRead, expected, written)
	}
	return written, nil
}
