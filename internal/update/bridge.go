package update

import (
	"time"

	"go.uber.org/zap"

	"github.com/teraforge/launcher/internal/events"
	"github.com/teraforge/launcher/internal/state"
)

// defaultSettleDelay is how long the complete phase is shown before the
// cycle settles into ready and the affordances come back.
const defaultSettleDelay = 2 * time.Second

// Bridge translates transfer events into state merges. Both live events from
// the file service and replayed batch samples from the orchestrator land
// here, so every sample goes through the same estimation path.
type Bridge struct {
	store *state.Store
	sink  RenderSink
	log   *zap.Logger

	settleDelay time.Duration
	now         func() time.Time
}

// NewBridge builds a Bridge over the shared store and render sink.
func NewBridge(store *state.Store, sink RenderSink, log *zap.Logger) *Bridge {
	return &Bridge{
		store:       store,
		sink:        sink,
		log:         log,
		settleDelay: defaultSettleDelay,
		now:         time.Now,
	}
}

// SetSettleDelay overrides the complete-to-ready delay. Intended for tests.
func (b *Bridge) SetSettleDelay(d time.Duration) {
	if d >= 0 {
		b.settleDelay = d
	}
}

// Bind subscribes the bridge's handlers on the bus.
func (b *Bridge) Bind(bus *events.Bus) {
	bus.Subscribe(events.DownloadProgressEvent, func(p any) {
		if dp, ok := p.(events.DownloadProgress); ok {
			b.ApplyProgressSample(dp)
		}
	})
	bus.Subscribe(events.FileCheckProgressEvent, func(p any) {
		if fp, ok := p.(events.FileCheckProgress); ok {
			b.applyFileCheckProgress(fp)
		}
	})
	bus.Subscribe(events.FileCheckCompletedEvent, func(p any) {
		if fc, ok := p.(events.FileCheckCompleted); ok {
			b.applyFileCheckCompleted(fc)
		}
	})
	bus.Subscribe(events.DownloadCompleteEvent, func(any) {
		b.applyDownloadComplete()
	})
	bus.Subscribe(events.HashFileProgressEvent, func(p any) {
		if hp, ok := p.(events.HashFileProgress); ok {
			b.applyHashFileProgress(hp)
		}
	})
	bus.Subscribe(events.ErrorEvent, func(p any) {
		if e, ok := p.(events.Error); ok {
			b.applyError(e)
		}
	})
}

// ApplyProgressSample folds one download progress sample into the state:
// clamps the percentage, seeds the sealed totals, and recomputes the
// smoothed ETA through the store-owned history window.
func (b *Bridge) ApplyProgressSample(p events.DownloadProgress) {
	pct := clampPercent(p.Progress)

	total := p.TotalBytes
	if total <= 0 {
		total = b.store.Snapshot().TotalSize
	}
	remaining := b.store.EstimateTimeRemaining(p.DownloadedBytes, total, p.Speed)

	phase := state.PhaseDownload
	now := b.now()
	patch := state.Patch{
		Phase:            &phase,
		CurrentFileName:  &p.FileName,
		CurrentFileIndex: &p.CurrentFileIndex,
		Progress:         &pct,
		DownloadedSize:   &p.DownloadedBytes,
		CurrentSpeed:     &p.Speed,
		TimeRemaining:    &remaining,
		LastUpdate:       &now,
	}
	if p.TotalBytes > 0 {
		patch.TotalSize = &p.TotalBytes
	}
	if p.TotalFiles > 0 {
		patch.TotalFiles = &p.TotalFiles
	}
	b.store.Merge(patch)
}

func (b *Bridge) applyFileCheckProgress(p events.FileCheckProgress) {
	pct := clampPercent(p.Progress)
	phase := state.PhaseFileCheck
	patch := state.Patch{
		Phase:            &phase,
		CurrentFileName:  &p.CurrentFile,
		CurrentFileIndex: &p.CurrentCount,
		Progress:         &pct,
	}
	if p.TotalFiles > 0 {
		patch.TotalFiles = &p.TotalFiles
	}
	b.store.Merge(patch)
}

func (b *Bridge) applyFileCheckCompleted(p events.FileCheckCompleted) {
	checkDone := true
	available := p.FilesToUpdate > 0
	patch := state.Patch{
		IsFileCheckComplete: &checkDone,
		IsUpdateAvailable:   &available,
	}
	if p.TotalFiles > 0 {
		patch.TotalFiles = &p.TotalFiles
	}
	if p.TotalSize > 0 {
		patch.TotalSize = &p.TotalSize
	}
	b.store.Merge(patch)
	b.log.Info("file check completed",
		zap.Int("total_files", p.TotalFiles),
		zap.Int("files_to_update", p.FilesToUpdate),
		zap.Int64("total_size", p.TotalSize))
}

func (b *Bridge) applyDownloadComplete() {
	done := true
	full := 100.0
	b.store.Merge(state.Patch{
		IsDownloadComplete: &done,
		Progress:           &full,
	})
}

func (b *Bridge) applyHashFileProgress(p events.HashFileProgress) {
	pct := clampPercent(p.Progress)
	patch := state.Patch{
		HashFileProgress:      &pct,
		CurrentProcessingFile: &p.CurrentFile,
		ProcessedFiles:        &p.ProcessedFiles,
	}
	if p.TotalFiles > 0 {
		patch.TotalFiles = &p.TotalFiles
	}
	b.store.Merge(patch)
}

// applyError surfaces a transfer error without touching the cycle phase;
// the orchestrator decides whether the cycle resets.
func (b *Bridge) applyError(e events.Error) {
	b.log.Warn("transfer error", zap.String("message", e.Message))
	b.sink.ShowNotice(Notice{Key: NoticeUpdateError, Detail: e.Message})
}

// CompleteCycle moves the cycle to complete, then after the settle delay to
// ready, re-enabling the update affordances.
func (b *Bridge) CompleteCycle() {
	complete := state.PhaseComplete
	b.store.Merge(state.Patch{Phase: &complete})

	time.AfterFunc(b.settleDelay, func() {
		ready := state.PhaseReady
		b.store.Merge(state.Patch{Phase: &ready})
		b.sink.EnableUpdateAffordances()
	})
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
