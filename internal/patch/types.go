package patch

import "errors"

// FileInfo describes one entry of the server hash manifest: a game file, its
// expected sha256 and size, and where to download it.
type FileInfo struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Manifest is the server hash file.
type Manifest struct {
	Files []FileInfo `json:"files"`
}

// TotalSize sums the declared sizes of all files in the list.
func TotalSize(files []FileInfo) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}

// ErrUnreachable marks connectivity failures against the patch server.
// Callers branch on it with errors.Is.
var ErrUnreachable = errors.New("patch server unreachable")

// ErrNotConfigured is returned when a required server URL is missing from
// the configuration.
var ErrNotConfigured = errors.New("patch server not configured")
