package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teraforge/launcher/internal/events"
	"github.com/teraforge/launcher/internal/patch"
	"github.com/teraforge/launcher/internal/state"
)

// minSampleInterval floors the synthesized spacing of replayed batch
// samples so per-sample speed stays finite on instant downloads.
const minSampleInterval = time.Millisecond

// Orchestrator drives the update cycle and the guarded session operations.
// Each operation class is protected by its own re-entrancy guard; a second
// invocation while one is running returns ErrBusy without side effects.
type Orchestrator struct {
	store  *state.Store
	bridge *Bridge
	files  FileService
	auth   Authenticator
	game   GameRunner
	hashes HashGenerator
	sink   RenderSink
	log    *zap.Logger

	now func() time.Time

	checking   guard
	hashing    guard
	loggingIn  guard
	loggingOut guard
	launching  guard
}

// Deps bundles the collaborators an Orchestrator needs.
type Deps struct {
	Store  *state.Store
	Bridge *Bridge
	Files  FileService
	Auth   Authenticator
	Game   GameRunner
	Hashes HashGenerator
	Sink   RenderSink
	Log    *zap.Logger
}

// NewOrchestrator builds an Orchestrator from its collaborators.
func NewOrchestrator(d Deps) *Orchestrator {
	sink := d.Sink
	if sink == nil {
		sink = NopSink{}
	}
	return &Orchestrator{
		store:  d.Store,
		bridge: d.Bridge,
		files:  d.Files,
		auth:   d.Auth,
		game:   d.Game,
		hashes: d.Hashes,
		sink:   sink,
		log:    d.Log,
		now:    time.Now,
	}
}

// CheckForUpdates runs one full update cycle: reset the cycle state,
// enumerate out-of-date files, and when any exist, download them and replay
// the batch counts through the progress path. Re-entrant calls return
// ErrBusy.
func (o *Orchestrator) CheckForUpdates(ctx context.Context) error {
	if !o.checking.acquire() {
		o.log.Debug("update check already running, ignoring")
		return ErrBusy
	}
	defer o.finishCheck()

	cycle := uuid.NewString()
	o.log.Info("update check started", zap.String("cycle", cycle))

	o.sink.DisableUpdateAffordances()
	o.store.ResetCycle()

	checking := true
	phase := state.PhaseFileCheck
	o.store.Merge(state.Patch{IsCheckingForUpdates: &checking, Phase: &phase})

	files, err := o.files.EnumerateFilesToUpdate(ctx)
	if err != nil {
		o.failCycle(cycle, "file check failed", err)
		return err
	}

	if len(files) == 0 {
		o.log.Info("no update required", zap.String("cycle", cycle))
		o.bridge.CompleteCycle()
		return nil
	}

	o.log.Info("update required",
		zap.String("cycle", cycle),
		zap.Int("files", len(files)),
		zap.Int64("size", patch.TotalSize(files)))
	return o.downloadAndReplay(ctx, cycle, files)
}

// RunPatchSystem downloads a known file list without a preceding check.
// It shares the check guard, so it cannot overlap CheckForUpdates.
func (o *Orchestrator) RunPatchSystem(ctx context.Context, files []patch.FileInfo) error {
	if !o.checking.acquire() {
		o.log.Debug("patch cycle already running, ignoring")
		return ErrBusy
	}
	defer o.finishCheck()

	cycle := uuid.NewString()
	o.sink.DisableUpdateAffordances()

	checking := true
	o.store.Merge(state.Patch{IsCheckingForUpdates: &checking})

	if len(files) == 0 {
		o.bridge.CompleteCycle()
		return nil
	}
	return o.downloadAndReplay(ctx, cycle, files)
}

// downloadAndReplay runs the batch download and then replays the returned
// per-file byte counts through ApplyProgressSample, so batch results feed
// the same estimation window live events do.
func (o *Orchestrator) downloadAndReplay(ctx context.Context, cycle string, files []patch.FileInfo) error {
	startedAt := o.now()
	counts, err := o.files.DownloadFiles(ctx, files)
	if err != nil {
		o.failCycle(cycle, "download failed", err)
		return err
	}
	elapsed := o.now().Sub(startedAt)

	o.replay(files, counts, elapsed)

	var total int64
	for _, n := range counts {
		total += n
	}
	if total > 0 {
		o.store.Merge(state.Patch{TotalDownloadedBytes: &total})
	}

	o.log.Info("update cycle finished",
		zap.String("cycle", cycle),
		zap.Int64("bytes", total),
		zap.Duration("elapsed", elapsed))
	o.bridge.CompleteCycle()
	return nil
}

// replay spaces the batch byte counts evenly across the observed elapsed
// time, floored at minSampleInterval, and feeds each synthesized sample
// through the bridge.
func (o *Orchestrator) replay(files []patch.FileInfo, counts []int64, elapsed time.Duration) {
	if len(counts) == 0 {
		return
	}
	interval := elapsed / time.Duration(len(counts))
	if interval < minSampleInterval {
		interval = minSampleInterval
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	var cumulative int64
	for i, n := range counts {
		cumulative += n
		var pct float64
		if total > 0 {
			pct = float64(cumulative) / float64(total) * 100
		}
		o.bridge.ApplyProgressSample(events.DownloadProgress{
			FileName:         files[i].Path,
			Progress:         pct,
			Speed:            float64(n) / interval.Seconds(),
			DownloadedBytes:  cumulative,
			TotalBytes:       total,
			TotalFiles:       len(files),
			ElapsedTime:      (interval * time.Duration(i+1)).Seconds(),
			CurrentFileIndex: i + 1,
		})
	}
}

func (o *Orchestrator) finishCheck() {
	done := false
	o.store.Merge(state.Patch{IsCheckingForUpdates: &done})
	o.checking.release()
}

// failCycle surfaces the error, resets the cycle state, and restores the
// affordances so the user can retry.
func (o *Orchestrator) failCycle(cycle, msg string, err error) {
	o.log.Error(msg, zap.String("cycle", cycle), zap.Error(err))

	key := NoticeUpdateError
	if errors.Is(err, patch.ErrUnreachable) {
		key = NoticeServerUnreachable
	}
	o.sink.ShowNotice(Notice{Key: key, Detail: err.Error()})

	o.store.ResetCycle()
	o.sink.EnableUpdateAffordances()
}

// Login authenticates the account and marks the session active.
func (o *Orchestrator) Login(ctx context.Context, username, password string) error {
	if !o.loggingIn.acquire() {
		o.log.Debug("login already running, ignoring")
		return ErrBusy
	}
	defer func() {
		done := false
		o.store.Merge(state.Patch{IsLoggingIn: &done})
		o.loggingIn.release()
	}()

	busy := true
	o.store.Merge(state.Patch{IsLoggingIn: &busy})

	session, err := o.auth.Login(ctx, username, password)
	if err != nil {
		o.log.Warn("login failed", zap.Error(err))
		o.sink.ShowNotice(Notice{Key: NoticeLoginFailed, Detail: err.Error()})
		return err
	}

	authed := true
	o.store.Merge(state.Patch{IsAuthenticated: &authed})
	o.log.Info("logged in", zap.Int64("user_no", session.UserNo))
	return nil
}

// Logout drops the session.
func (o *Orchestrator) Logout() error {
	if !o.loggingOut.acquire() {
		o.log.Debug("logout already running, ignoring")
		return ErrBusy
	}
	defer o.loggingOut.release()

	busy := true
	o.store.Merge(state.Patch{IsLoggingOut: &busy})

	o.auth.Logout()

	done := false
	authed := false
	o.store.Merge(state.Patch{IsLoggingOut: &done, IsAuthenticated: &authed})
	o.log.Info("logged out")
	return nil
}

// GenerateHashFile builds the server manifest from the local install.
func (o *Orchestrator) GenerateHashFile(ctx context.Context) error {
	if !o.hashing.acquire() {
		o.log.Debug("hash file generation already running, ignoring")
		return ErrBusy
	}
	defer func() {
		done := false
		o.store.Merge(state.Patch{IsGeneratingHashFile: &done})
		o.hashing.release()
	}()

	busy := true
	o.store.Merge(state.Patch{IsGeneratingHashFile: &busy})

	if _, err := o.hashes.Generate(ctx); err != nil {
		o.log.Error("hash file generation failed", zap.Error(err))
		o.sink.ShowNotice(Notice{Key: NoticeHashGenFailed, Detail: err.Error()})
		return err
	}
	return nil
}

// LaunchGame starts the game client using the current session. At most one
// launch attempt runs at a time, and a running game blocks a second one.
func (o *Orchestrator) LaunchGame(ctx context.Context) error {
	if !o.launching.acquire() {
		o.log.Debug("game launch already running, ignoring")
		return ErrBusy
	}
	defer func() {
		done := false
		o.store.Merge(state.Patch{IsGameLaunching: &done})
		o.launching.release()
	}()

	busy := true
	o.store.Merge(state.Patch{IsGameLaunching: &busy})

	if o.game.Running() {
		err := fmt.Errorf("game is already running")
		o.sink.ShowNotice(Notice{Key: NoticeLaunchFailed, Detail: err.Error()})
		return err
	}

	session := o.auth.Session()
	if session == nil {
		err := fmt.Errorf("not logged in")
		o.sink.ShowNotice(Notice{Key: NoticeLaunchFailed, Detail: err.Error()})
		return err
	}

	if err := o.game.Launch(ctx, session); err != nil {
		o.log.Error("game launch failed", zap.Error(err))
		o.sink.ShowNotice(Notice{Key: NoticeLaunchFailed, Detail: err.Error()})
		return err
	}
	return nil
}
