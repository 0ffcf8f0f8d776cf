package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tanq16/hanzo/utils"
)

// PartClass is the resume classification of one chunk's part file.
type PartClass int

const (
	PartAbsent PartClass = iota
	PartPartial
	PartComplete
)

// ClassifyPart inspects a chunk's part file on disk. The file is complete
// only when its length matches the chunk's range exactly; anything else
// (short or long) is Partial and must be restarted from the range start.
func ClassifyPart(chunk *Chunk, outputPath string) PartClass {
	fileInfo, err := os.Stat(chunk.PartPath(outputPath))
	if err != nil {
		return PartAbsent
	}
	if fileInfo.Size() == chunk.ExpectedSize() {
		return PartComplete
	}
	return PartPartial
}

// ReconcileParts rebuilds chunk state from the part files of a prior run.
// Complete chunks are marked Completed and counted into progress; Partial
// part files are removed so their chunks restart cleanly. It returns the
// indexes of chunks that still need downloading.
func ReconcileParts(job *Job) ([]int, error) {
	log := utils.GetLogger("resume").With().Str("jobId", job.ID).Logger()
	tempDir := utils.TempDir(job.Config.OutputPath)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating temp directory: %v", err)
	}
	sweepStaleParts(job, log)
	var pending []int
	for i := range job.Chunks {
		chunk := &job.Chunks[i]
		partPath := chunk.PartPath(job.Config.OutputPath)
		if job.Config.NoResume {
			if err := os.Remove(partPath); err == nil {
				log.Debug().Int("chunkId", chunk.Index).Str("file", filepath.Base(partPath)).Msg("Resume disabled, discarding part file")
			}
			pending = append(pending, i)
			continue
		}
		switch ClassifyPart(chunk, job.Config.OutputPath) {
		case PartComplete:
			log.Debug().Int("chunkId", chunk.Index).Str("file", filepath.Base(partPath)).Msg("Chunk already downloaded, skipping")
			chunk.State = StateCompleted
			job.Progress.AddBytes(chunk.ExpectedSize())
			job.Progress.MarkCompleted()
		case PartPartial:
			log.Debug().Int("chunkId", chunk.Index).Str("file", filepath.Base(partPath)).Msg("Part file length mismatch, removing and redownloading")
			if err := os.Remove(partPath); err != nil {
				return nil, fmt.Errorf("error removing partial part file %s: %v", partPath, err)
			}
			pending = append(pending, i)
		case PartAbsent:
			pending = append(pending, i)
		}
	}
	log.Debug().Int("total", len(job.Chunks)).Int("pending", len(pending)).Msg("Reconciled chunks against part files")
	return pending, nil
}

// sweepStaleParts removes part files left by a run with a different chunk
// plan (for example, another chunk size). Their ranges no longer line up
// with any current chunk, so they can never be reused.
func sweepStaleParts(job *Job, log zerolog.Logger) {
	tempDir := utils.TempDir(job.Config.OutputPath)
	valid := make(map[string]struct{}, len(job.Chunks))
	for i := range job.Chunks {
		valid[filepath.Base(job.Chunks[i].PartPath(job.Config.OutputPath))] = struct{}{}
	}
	prefix := filepath.Base(job.Config.OutputPath) + ".part"
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !utils.PartFileRegex.MatchString(name) {
			continue
		}
		if _, ok := valid[name]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(tempDir, name)); err == nil {
			log.Debug().Str("file", name).Msg("Removed stale part file from a different chunk plan")
		}
	}
}
