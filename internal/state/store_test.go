package state

import (
	"sync"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

func TestMerge_ShallowLastWriteWins(t *testing.T) {
	s := NewStore()

	s.Merge(Patch{Phase: ptr(PhaseFileCheck), CurrentFileName: ptr("a.pak")})
	s.Merge(Patch{CurrentFileName: ptr("b.pak")})

	snap := s.Snapshot()
	if snap.Phase != PhaseFileCheck {
		t.Fatalf("Phase = %q, want %q", snap.Phase, PhaseFileCheck)
	}
	if snap.CurrentFileName != "b.pak" {
		t.Fatalf("CurrentFileName = %q, want b.pak", snap.CurrentFileName)
	}
}

func TestMerge_TotalSizeFirstWriteWins(t *testing.T) {
	s := NewStore()

	s.Merge(Patch{TotalSize: ptr(int64(500))})
	// A late event reporting a zero total must not clobber the established value.
	s.Merge(Patch{TotalSize: ptr(int64(0))})
	if got := s.Snapshot().TotalSize; got != 500 {
		t.Fatalf("TotalSize = %d, want 500 after zero merge", got)
	}

	// A second positive value is stale by definition and is also ignored.
	s.Merge(Patch{TotalSize: ptr(int64(900))})
	if got := s.Snapshot().TotalSize; got != 500 {
		t.Fatalf("TotalSize = %d, want 500 after second write", got)
	}
}

func TestMerge_ZeroDoesNotSeal(t *testing.T) {
	s := NewStore()

	s.Merge(Patch{TotalSize: ptr(int64(0))})
	s.Merge(Patch{TotalSize: ptr(int64(300))})
	if got := s.Snapshot().TotalSize; got != 300 {
		t.Fatalf("TotalSize = %d, want 300 (zero write must not seal)", got)
	}
}

func TestResetCycle_UnsealsAndPreservesSession(t *testing.T) {
	s := NewStore()

	s.Merge(Patch{
		TotalSize:         ptr(int64(500)),
		IsAuthenticated:   ptr(true),
		Language:          ptr("ru"),
		IsUpdateAvailable: ptr(true),
		DownloadedSize:    ptr(int64(100)),
		Phase:             ptr(PhaseDownload),
	})
	s.ResetCycle()

	snap := s.Snapshot()
	if snap.TotalSize != 0 || snap.DownloadedSize != 0 || snap.IsUpdateAvailable {
		t.Fatalf("cycle fields not reset: %+v", snap)
	}
	if snap.Phase != PhaseIdle {
		t.Fatalf("Phase = %q, want idle", snap.Phase)
	}
	if !snap.IsAuthenticated || snap.Language != "ru" {
		t.Fatalf("session fields must survive reset: %+v", snap)
	}

	// First-write-wins is re-armed for the new cycle.
	s.Merge(Patch{TotalSize: ptr(int64(700))})
	if got := s.Snapshot().TotalSize; got != 700 {
		t.Fatalf("TotalSize = %d, want 700 after reset", got)
	}
}

func TestMerge_CoalescesNotifications(t *testing.T) {
	s := NewStore()
	s.SetFrameInterval(30 * time.Millisecond)

	var mu sync.Mutex
	var calls int
	var last Snapshot
	s.OnChange(func(snap Snapshot) {
		mu.Lock()
		calls++
		last = snap
		mu.Unlock()
	})

	for i := 1; i <= 5; i++ {
		s.Merge(Patch{CurrentFileIndex: ptr(i), DownloadedSize: ptr(int64(i * 100))})
	}

	time.Sleep(90 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("notifications = %d, want exactly 1 for a synchronous burst", calls)
	}
	if last.CurrentFileIndex != 5 || last.DownloadedSize != 500 {
		t.Fatalf("notification carried %+v, want fully merged state", last)
	}
}

func TestMerge_NotifiesAgainAfterFlush(t *testing.T) {
	s := NewStore()
	s.SetFrameInterval(10 * time.Millisecond)

	var mu sync.Mutex
	var calls int
	s.OnChange(func(Snapshot) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	s.Merge(Patch{Progress: ptr(10.0)})
	time.Sleep(40 * time.Millisecond)
	s.Merge(Patch{Progress: ptr(20.0)})
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Fatalf("notifications = %d, want 2 (one per burst)", calls)
	}
}

func TestSnapshot_ClonesSpeedHistory(t *testing.T) {
	s := NewStore()
	s.EstimateTimeRemaining(0, 1000, 100)

	snap := s.Snapshot()
	if len(snap.SpeedHistory) != 1 {
		t.Fatalf("SpeedHistory length = %d, want 1", len(snap.SpeedHistory))
	}
	snap.SpeedHistory[0] = 999

	if got := s.Snapshot().SpeedHistory[0]; got != 100 {
		t.Fatalf("store history mutated through snapshot: %v", got)
	}
}

func TestEstimateTimeRemaining_UsesStoreHistory(t *testing.T) {
	s := NewStore()

	// Two samples: window mean is 150, remaining 300 bytes.
	s.EstimateTimeRemaining(0, 1000, 100)
	got := s.EstimateTimeRemaining(700, 1000, 200)
	if got != 2 {
		t.Fatalf("EstimateTimeRemaining = %v, want 2", got)
	}

	// FIFO bound at the default window length.
	for i := 0; i < 20; i++ {
		s.EstimateTimeRemaining(0, 1000, 50)
	}
	if n := len(s.Snapshot().SpeedHistory); n != DefaultSpeedHistoryLength {
		t.Fatalf("history length = %d, want %d", n, DefaultSpeedHistoryLength)
	}
}
