package downloader

import (
	"os"
	"path/filepath"

	"github.com/tanq16/hanzo/utils"
)

// CleanupParts removes the job's part files after a successful assembly.
// Individual removal failures are logged but never fail the download; the
// temp directory is removed only once it is empty.
func CleanupParts(job *Job) {
	log := utils.GetLogger("cleanup").With().Str("jobId", job.ID).Logger()
	for i := range job.Chunks {
		partPath := job.Chunks[i].PartPath(job.Config.OutputPath)
		if err := os.Remove(partPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", filepath.Base(partPath)).Msg("Could not remove part file")
		}
	}
	tempDir := utils.TempDir(job.Config.OutputPath)
	if entries, err := os.ReadDir(tempDir); err == nil && len(entries) == 0 {
		if err := os.Remove(tempDir); err != nil {
			log.Warn().Err(err).Str("dir", tempDir).Msg("Could not remove temp directory")
		}
	}
}
