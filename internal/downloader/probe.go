package downloader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	u "net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tanq16/hanzo/utils"
)

// ResourceInfo is what the prober learns about the target resource.
type ResourceInfo struct {
	Size         int64
	RangeSupport bool
	Filename     string
	ETag         string
	LastModified string
}

var filenameRegex = regexp.MustCompile(`[^a-zA-Z0-9_\-\. ]+`)

// Probe determines the resource's total size and whether the server honors
// byte-range requests. It tries a HEAD first; when that reveals neither a
// length nor range support, it falls back to a one-byte ranged GET, whose
// Content-Range carries the full length.
func Probe(ctx context.Context, client utils.HTTPDoer, url string) (*ResourceInfo, error) {
	log := utils.GetLogger("probe")
	info := &ResourceInfo{Size: -1}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err == nil {
		func() {
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				readHeaders(info, resp.Header)
			}
		}()
	} else {
		log.Debug().Err(err).Msg("HEAD probe failed, trying ranged GET")
	}

	if info.Size < 0 || !info.RangeSupport {
		if err := probeWithRangedGet(ctx, client, url, info); err != nil {
			log.Debug().Err(err).Msg("Ranged GET probe failed")
		}
	}
	if info.Size < 0 {
		return nil, fmt.Errorf("%w: server did not provide a usable Content-Length", ErrSizeUnknown)
	}
	log.Debug().Int64("size", info.Size).Bool("rangeSupport", info.RangeSupport).Str("filename", info.Filename).Msg("Probe completed")
	return info, nil
}

// probeWithRangedGet asks for the first byte only. A 206 answer proves range
// support and its Content-Range total supplies the size.
func probeWithRangedGet(ctx context.Context, client utils.HTTPDoer, url string, info *ResourceInfo) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusPartialContent {
		// The Content-Length here is the range length, never the resource
		// size; only Content-Range carries the total.
		info.RangeSupport = true
		readMetaHeaders(info, resp.Header)
		if total, ok := parseContentRangeTotal(resp.Header.Get("Content-Range")); ok {
			info.Size = total
		}
	} else if resp.StatusCode == http.StatusOK {
		// Full-content answer to a ranged request: no range support, but the
		// Content-Length (if any) is still the full size.
		readHeaders(info, resp.Header)
		info.RangeSupport = false
	}
	return nil
}

func readHeaders(info *ResourceInfo, headers http.Header) {
	if info.Size < 0 {
		if cl := headers.Get("Content-Length"); cl != "" {
			if size, err := strconv.ParseInt(cl, 10, 64); err == nil && size >= 0 {
				info.Size = size
			}
		}
	}
	readMetaHeaders(info, headers)
}

func readMetaHeaders(info *ResourceInfo, headers http.Header) {
	if headers.Get("Accept-Ranges") == "bytes" {
		info.RangeSupport = true
	}
	if info.ETag == "" {
		info.ETag = headers.Get("ETag")
	}
	if info.LastModified == "" {
		info.LastModified = headers.Get("Last-Modified")
	}
	if info.Filename == "" {
		if contentDisposition := headers.Get("Content-Disposition"); contentDisposition != "" {
			if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
				if fn, ok := params["filename"]; ok && fn != "" {
					info.Filename = filenameRegex.ReplaceAllString(fn, "_")
				} else if fn, ok := params["filename*"]; ok && fn != "" {
					if strings.HasPrefix(fn, "UTF-8''") {
						unescaped, _ := u.PathUnescape(strings.TrimPrefix(fn, "UTF-8''"))
						info.Filename = filenameRegex.ReplaceAllString(unescaped, "_")
					}
				}
			}
		}
	}
}

// parseContentRangeTotal extracts the total length from a header like
// "bytes 0-0/12345".
func parseContentRangeTotal(contentRange string) (int64, bool) {
	idx := strings.LastIndex(contentRange, "/")
	if idx < 0 || idx == len(contentRange)-1 {
		return 0, false
	}
	totalStr := contentRange[idx+1:]
	if totalStr == "*" {
		return 0, false
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil || total < 0 {
		return 0, false
	}
	return total, true
}
