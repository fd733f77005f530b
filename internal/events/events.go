// Package events defines the named channels and payload shapes the patch
// backend emits, plus a small in-process bus that delivers them to
// subscribers in emission order per channel.
package events

// Name identifies a backend event channel.
type Name string

// Backend event channels. Ordering is guaranteed per channel only; handlers
// must tolerate reordering across channels.
const (
	DownloadProgressEvent   Name = "download_progress"
	FileCheckProgressEvent  Name = "file_check_progress"
	FileCheckCompletedEvent Name = "file_check_completed"
	DownloadCompleteEvent   Name = "download_complete"
	HashFileProgressEvent   Name = "hash_file_progress"
	ErrorEvent              Name = "error"
)

// DownloadProgress reports incremental bytes for the active download cycle.
// DownloadedBytes and TotalBytes span the whole cycle, not the current file.
type DownloadProgress struct {
	FileName         string
	Progress         float64
	Speed            float64
	DownloadedBytes  int64
	TotalBytes       int64
	TotalFiles       int
	ElapsedTime      float64
	CurrentFileIndex int
}

// FileCheckProgress reports how far the local-vs-server comparison has come.
type FileCheckProgress struct {
	CurrentFile   string
	Progress      float64
	CurrentCount  int
	TotalFiles    int
	ElapsedTime   float64
	FilesToUpdate int
}

// FileCheckCompleted closes a file-check cycle.
type FileCheckCompleted struct {
	TotalFiles       int
	FilesToUpdate    int
	TotalSize        int64
	TotalTimeSeconds float64
}

// DownloadComplete closes a download cycle.
type DownloadComplete struct{}

// HashFileProgress reports hash-file generation progress. This is an
// independent sub-cycle sharing nothing with the download record.
type HashFileProgress struct {
	CurrentFile    string
	Progress       float64
	ProcessedFiles int
	TotalFiles     int
	TotalSize      int64
}

// Error is a backend-reported error surfaced to the user as a transient
// notice. It carries no orchestration state.
type Error struct {
	Message string
}
