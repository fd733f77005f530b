package state

import "time"

// Phase is the current stage of the update orchestration cycle.
type Phase string

// Orchestration phases. PhaseIdle is the pre-check steady state.
const (
	PhaseIdle      Phase = ""
	PhaseFileCheck Phase = "file_check"
	PhaseDownload  Phase = "download"
	PhaseComplete  Phase = "complete"
	PhaseReady     Phase = "ready"
)

// DefaultSpeedHistoryLength bounds the moving-average window used to smooth
// instantaneous speed samples.
const DefaultSpeedHistoryLength = 10

// State is the single shared application record. One instance exists per
// running client; it is mutated in place through Store.Merge for the life of
// the session.
type State struct {
	Phase Phase

	// Mutual-exclusion flags, one per long-running operation class. Each is
	// true exactly for the duration of its guarded operation, including
	// error paths.
	IsCheckingForUpdates bool
	IsGeneratingHashFile bool
	IsLoggingIn          bool
	IsLoggingOut         bool
	IsGameLaunching      bool

	// Monotone-within-a-cycle booleans, reset together by ResetCycle.
	IsUpdateAvailable   bool
	IsFileCheckComplete bool
	IsDownloadComplete  bool

	// Identity of the file currently being processed. CurrentFileIndex is
	// 1-based; TotalFiles is fixed for the cycle.
	CurrentFileName  string
	CurrentFileIndex int
	TotalFiles       int

	// Byte counters for the cycle. TotalSize and TotalDownloadedBytes are
	// sealed on first positive write and ignore later zero or stale values.
	Progress             float64
	DownloadedSize       int64
	TotalSize            int64
	TotalDownloadedBytes int64

	// Derived telemetry, recomputed on every progress sample.
	CurrentSpeed  float64
	SpeedHistory  []float64
	TimeRemaining float64
	LastUpdate    time.Time

	// Persisted-derived flags, read once at startup and mutated only by the
	// corresponding lifecycle operation.
	IsFirstLaunch   bool
	IsAuthenticated bool
	Language        string

	// Independent progress sub-record for hash-file generation. It shares
	// TotalFiles with the download record; the two cycles are never active
	// at the same time.
	HashFileProgress      float64
	CurrentProcessingFile string
	ProcessedFiles        int
}

// Snapshot is an immutable copy of the state delivered to the render sink.
type Snapshot = State

// Patch carries a partial state update. Nil fields are left untouched by
// Merge; non-nil fields overwrite, except TotalSize and TotalDownloadedBytes
// which are first-write-wins within a cycle.
type Patch struct {
	Phase *Phase

	IsCheckingForUpdates *bool
	IsGeneratingHashFile *bool
	IsLoggingIn          *bool
	IsLoggingOut         *bool
	IsGameLaunching      *bool

	IsUpdateAvailable   *bool
	IsFileCheckComplete *bool
	IsDownloadComplete  *bool

	CurrentFileName  *string
	CurrentFileIndex *int
	TotalFiles       *int

	Progress             *float64
	DownloadedSize       *int64
	TotalSize            *int64
	TotalDownloadedBytes *int64

	CurrentSpeed  *float64
	TimeRemaining *float64
	LastUpdate    *time.Time

	IsFirstLaunch   *bool
	IsAuthenticated *bool
	Language        *string

	HashFileProgress      *float64
	CurrentProcessingFile *string
	ProcessedFiles        *int
}
