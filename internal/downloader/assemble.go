package downloader

import (
	"fmt"
	"io"
	"os"

	"github.com/tanq16/hanzo/utils"
)

// AssembleParts concatenates the part files into the output file, strictly
// in chunk index order. Completion order during download never affects
// assembly order. The part files on disk are the authoritative inputs; each
// one is re-checked against its chunk's range before being copied.
func AssembleParts(job *Job) error {
	log := utils.GetLogger("assemble").With().Str("jobId", job.ID).Logger()
	for i := range job.Chunks {
		if job.Chunks[i].State != StateCompleted {
			return fmt.Errorf("%w: chunk %d is %s", ErrAssemblyIncomplete, i, job.Chunks[i].State)
		}
	}
	destFile, err := os.Create(job.Config.OutputPath)
	if err != nil {
		return fmt.Errorf("error creating output file: %v", err)
	}
	defer destFile.Close()

	var totalWritten int64 = 0
	for i := range job.Chunks {
		chunk := &job.Chunks[i]
		partPath := chunk.PartPath(job.Config.OutputPath)
		partFile, err := os.Open(partPath)
		if err != nil {
			return fmt.Errorf("error opening part file %s: %v", partPath, err)
		}
		fileInfo, err := partFile.Stat()
		if err != nil {
			partFile.Close()
			return fmt.Errorf("error getting part file info: %v", err)
		}
		if fileInfo.Size() != chunk.ExpectedSize() {
			partFile.Close()
			return fmt.Errorf("%w: part file %s holds %d bytes, chunk needs %d", ErrAssemblyIncomplete, partPath, fileInfo.Size(), chunk.ExpectedSize())
		}
		written, err := io.Copy(destFile, partFile)
		partFile.Close()
		if err != nil {
			return fmt.Errorf("error copying part data: %v", err)
		}
		if written != fileInfo.Size() {
			return fmt.Errorf("error: wrote %d bytes but part size is %d", written, fileInfo.Size())
		}
		totalWritten += written
	}
	if totalWritten != job.TotalSize {
		return fmt.Errorf("%w: assembled %d bytes, expected %d", ErrSizeMismatch, totalWritten, job.TotalSize)
	}
	log.Debug().Int64("size", totalWritten).Int("parts", len(job.Chunks)).Msg("Assembly completed")
	return nil
}
