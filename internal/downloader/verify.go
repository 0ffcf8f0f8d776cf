package downloader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tanq16/hanzo/utils"
)

// HashFileSHA256 streams a file through SHA-256 with a 1 MiB buffer, never
// holding the whole file in memory.
func HashFileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	buf := make([]byte, 1<<20)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum compares the file's SHA-256 digest against an expected hex
// digest, case-insensitively. An empty expected digest skips verification.
// On mismatch the assembled file is left in place for inspection.
func VerifyChecksum(path string, expectedHex string) error {
	if expectedHex == "" {
		return nil
	}
	log := utils.GetLogger("verify")
	digest, err := HashFileSHA256(path)
	if err != nil {
		return fmt.Errorf("error hashing output file: %v", err)
	}
	if !strings.EqualFold(digest, expectedHex) {
		return fmt.Errorf("%w: expected %s, got %s", ErrIntegrityMismatch, strings.ToLower(expectedHex), digest)
	}
	log.Debug().Str("sha256", digest).Msg("Integrity verified")
	return nil
}
