package utils

import "regexp"

// DefaultBufferSize is the read buffer used when streaming response bodies
// to disk.
const DefaultBufferSize = 1024 * 1024 // 1MB

const ToolUserAgent = "hanzo/1.0"

// TempDirName is the directory (next to the output file) holding part files.
const TempDirName = ".hanzo-temp"

// PartFileRegex matches part file names: <base>.part<index>_<start>-<end>
var PartFileRegex = regexp.MustCompile(`\.part(\d+)_(\d+)-(\d+)$`)

// Local-only User-Agent list
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36 Edg/132.0.0.0",
	"curl/7.88.1",
	"Wget/1.21.4",
}
