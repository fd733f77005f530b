package state

import (
	"sync"
	"time"

	"github.com/teraforge/launcher/internal/progress"
)

// defaultFrameInterval is the render-clock tick used to coalesce
// notifications. Roughly one frame at 60Hz.
const defaultFrameInterval = 16 * time.Millisecond

// Store is the only way other components change observable application
// state. Merge shallow-merges a Patch and schedules a single coalesced
// notification to the render sink per burst of merges.
type Store struct {
	mu    sync.Mutex
	state State

	historyMax    int
	frameInterval time.Duration

	onChange func(Snapshot)
	pending  bool

	// Sealed once the corresponding field receives its first positive value
	// in a cycle. A later zero or stale value never overwrites it.
	totalSizeSealed       bool
	totalDownloadedSealed bool
}

// NewStore builds a Store with default cycle state.
func NewStore() *Store {
	return &Store{
		historyMax:    DefaultSpeedHistoryLength,
		frameInterval: defaultFrameInterval,
		state: State{
			IsFirstLaunch: true,
			Language:      "en",
		},
	}
}

// SetFrameInterval overrides the notification coalescing interval. Intended
// for tests; call before any Merge.
func (s *Store) SetFrameInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d > 0 {
		s.frameInterval = d
	}
}

// OnChange registers the render sink callback. At most one coalesced
// notification fires per frame interval regardless of merge rate.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Merge shallow-merges the patch into the shared state and schedules one
// coalesced notification. TotalSize and TotalDownloadedBytes follow
// first-write-wins: only their first positive value in a cycle sticks.
func (s *Store) Merge(p Patch) {
	s.mu.Lock()
	s.applyLocked(p)
	s.scheduleNotifyLocked()
	s.mu.Unlock()
}

func (s *Store) applyLocked(p Patch) {
	if p.Phase != nil {
		s.state.Phase = *p.Phase
	}
	if p.IsCheckingForUpdates != nil {
		s.state.IsCheckingForUpdates = *p.IsCheckingForUpdates
	}
	if p.IsGeneratingHashFile != nil {
		s.state.IsGeneratingHashFile = *p.IsGeneratingHashFile
	}
	if p.IsLoggingIn != nil {
		s.state.IsLoggingIn = *p.IsLoggingIn
	}
	if p.IsLoggingOut != nil {
		s.state.IsLoggingOut = *p.IsLoggingOut
	}
	if p.IsGameLaunching != nil {
		s.state.IsGameLaunching = *p.IsGameLaunching
	}
	if p.IsUpdateAvailable != nil {
		s.state.IsUpdateAvailable = *p.IsUpdateAvailable
	}
	if p.IsFileCheckComplete != nil {
		s.state.IsFileCheckComplete = *p.IsFileCheckComplete
	}
	if p.IsDownloadComplete != nil {
		s.state.IsDownloadComplete = *p.IsDownloadComplete
	}
	if p.CurrentFileName != nil {
		s.state.CurrentFileName = *p.CurrentFileName
	}
	if p.CurrentFileIndex != nil {
		s.state.CurrentFileIndex = *p.CurrentFileIndex
	}
	if p.TotalFiles != nil {
		s.state.TotalFiles = *p.TotalFiles
	}
	if p.Progress != nil {
		s.state.Progress = *p.Progress
	}
	if p.DownloadedSize != nil {
		s.state.DownloadedSize = *p.DownloadedSize
	}
	if p.TotalSize != nil && !s.totalSizeSealed && *p.TotalSize > 0 {
		s.state.TotalSize = *p.TotalSize
		s.totalSizeSealed = true
	}
	if p.TotalDownloadedBytes != nil && !s.totalDownloadedSealed && *p.TotalDownloadedBytes > 0 {
		s.state.TotalDownloadedBytes = *p.TotalDownloadedBytes
		s.totalDownloadedSealed = true
	}
	if p.CurrentSpeed != nil {
		s.state.CurrentSpeed = *p.CurrentSpeed
	}
	if p.TimeRemaining != nil {
		s.state.TimeRemaining = *p.TimeRemaining
	}
	if p.LastUpdate != nil {
		s.state.LastUpdate = *p.LastUpdate
	}
	if p.IsFirstLaunch != nil {
		s.state.IsFirstLaunch = *p.IsFirstLaunch
	}
	if p.IsAuthenticated != nil {
		s.state.IsAuthenticated = *p.IsAuthenticated
	}
	if p.Language != nil {
		s.state.Language = *p.Language
	}
	if p.HashFileProgress != nil {
		s.state.HashFileProgress = *p.HashFileProgress
	}
	if p.CurrentProcessingFile != nil {
		s.state.CurrentProcessingFile = *p.CurrentProcessingFile
	}
	if p.ProcessedFiles != nil {
		s.state.ProcessedFiles = *p.ProcessedFiles
	}
}

// scheduleNotifyLocked arms at most one pending notification. Merges landing
// while one is pending fold into the same frame.
func (s *Store) scheduleNotifyLocked() {
	if s.pending || s.onChange == nil {
		return
	}
	s.pending = true
	time.AfterFunc(s.frameInterval, s.flush)
}

// flush clears the pending mark before dispatch so a merge performed during
// notification schedules a fresh frame.
func (s *Store) flush() {
	s.mu.Lock()
	s.pending = false
	fn := s.onChange
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

// Snapshot returns an independent copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := s.state
	if len(s.state.SpeedHistory) > 0 {
		snap.SpeedHistory = make([]float64, len(s.state.SpeedHistory))
		copy(snap.SpeedHistory, s.state.SpeedHistory)
	} else {
		snap.SpeedHistory = nil
	}
	return snap
}

// EstimateTimeRemaining feeds a speed sample through the store-owned history
// window and returns the smoothed global ETA in seconds. The history is the
// single window shared by live events and replayed batch samples.
func (s *Store) EstimateTimeRemaining(downloaded, total int64, speed float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress.GlobalTimeRemaining(
		float64(downloaded), float64(total), speed,
		&s.state.SpeedHistory, s.historyMax,
	)
}

// ResetCycle restores the check/download subset of the state to defaults and
// unseals the first-write-wins fields. Authentication, language, first-launch
// and the guard flags are left untouched.
func (s *Store) ResetCycle() {
	s.mu.Lock()
	s.state.Phase = PhaseIdle
	s.state.IsUpdateAvailable = false
	s.state.IsFileCheckComplete = false
	s.state.IsDownloadComplete = false
	s.state.CurrentFileName = ""
	s.state.CurrentFileIndex = 0
	s.state.TotalFiles = 0
	s.state.Progress = 0
	s.state.DownloadedSize = 0
	s.state.TotalSize = 0
	s.state.TotalDownloadedBytes = 0
	s.state.CurrentSpeed = 0
	s.state.SpeedHistory = s.state.SpeedHistory[:0]
	s.state.TimeRemaining = 0
	s.state.HashFileProgress = 0
	s.state.CurrentProcessingFile = ""
	s.state.ProcessedFiles = 0
	s.totalSizeSealed = false
	s.totalDownloadedSealed = false
	s.scheduleNotifyLocked()
	s.mu.Unlock()
}
