package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tanq16/hanzo/utils"
)

// Run executes one download end to end: probe, plan, reconcile against
// prior part files, schedule workers, assemble, verify, clean up.
func Run(ctx context.Context, cfg Config, client utils.HTTPDoer) (*Result, error) {
	log := utils.GetLogger("downloader")
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("%w: worker count must be positive, got %d", ErrInvalidConfiguration, cfg.Workers)
	}
	startTime := time.Now()

	info, err := Probe(ctx, client, cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = inferOutputPath(cfg.URL, info.Filename)
		log.Debug().Str("output", cfg.OutputPath).Msg("Output path inferred")
	}
	if !info.RangeSupport {
		// Documented fallback, not a failure: one chunk, one worker.
		log.Info().Msg("Server does not support range requests, using a single connection")
		cfg.Workers = 1
	}
	chunkSize := cfg.ChunkSize
	if chunkSize == 0 {
		chunkSize = DeriveChunkSize(info.Size, cfg.Workers)
		if chunkSize <= 0 {
			chunkSize = 1
		}
	}

	job := &Job{
		ID:           uuid.New().String(),
		Config:       cfg,
		TotalSize:    info.Size,
		RangeSupport: info.RangeSupport,
		StartTime:    startTime,
		Progress:     &ProgressCounters{},
	}
	jlog := log.With().Str("jobId", job.ID).Logger()
	if info.ETag != "" || info.LastModified != "" {
		jlog.Debug().Str("etag", info.ETag).Str("lastModified", info.LastModified).Msg("Resource validators")
	}

	if info.Size == 0 {
		// Zero-length resource: nothing to schedule, write the empty file.
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
			return nil, fmt.Errorf("error creating output directory: %v", err)
		}
		if err := os.WriteFile(cfg.OutputPath, nil, 0644); err != nil {
			return nil, fmt.Errorf("error creating empty output file: %v", err)
		}
		if err := VerifyChecksum(cfg.OutputPath, cfg.ExpectedSHA256); err != nil {
			return nil, err
		}
		return &Result{OutputPath: cfg.OutputPath, Size: 0, Elapsed: time.Since(startTime)}, nil
	}

	chunks, err := PlanChunks(info.Size, chunkSize, cfg.Workers, info.RangeSupport)
	if err != nil {
		return nil, err
	}
	job.Chunks = chunks
	jlog.Info().
		Int64("size", info.Size).
		Bool("rangeSupport", info.RangeSupport).
		Int("chunks", len(chunks)).
		Int64("chunkSize", chunkSize).
		Int("workers", cfg.Workers).
		Msg("Download planned")

	pending, err := ReconcileParts(job)
	if err != nil {
		return nil, err
	}
	if err := RunScheduler(ctx, job, client, pending); err != nil {
		return nil, err
	}
	if err := AssembleParts(job); err != nil {
		return nil, err
	}
	// Reassembly succeeded, so part files are cleanable even when the digest
	// disagrees; the assembled output itself stays for inspection.
	verifyErr := VerifyChecksum(cfg.OutputPath, cfg.ExpectedSHA256)
	if !cfg.KeepParts {
		CleanupParts(job)
	}
	if verifyErr != nil {
		return nil, verifyErr
	}
	return &Result{OutputPath: cfg.OutputPath, Size: job.TotalSize, Elapsed: time.Since(startTime)}, nil
}

func inferOutputPath(url string, probedFilename string) string {
	if probedFilename != "" {
		return probedFilename
	}
	trimmed := strings.SplitN(strings.SplitN(url, "#", 2)[0], "?", 2)[0]
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 && idx < len(trimmed)-1 {
		if name := trimmed[idx+1:]; name != "" && !strings.Contains(name, "://") {
			return name
		}
	}
	return "download.bin"
}
