// Package app wires the launcher together: configuration, logging, the
// shared state store, the patch backend, and the TUI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teraforge/launcher/internal/auth"
	"github.com/teraforge/launcher/internal/config"
	"github.com/teraforge/launcher/internal/events"
	"github.com/teraforge/launcher/internal/game"
	"github.com/teraforge/launcher/internal/hashgen"
	"github.com/teraforge/launcher/internal/patch"
	"github.com/teraforge/launcher/internal/prefs"
	"github.com/teraforge/launcher/internal/state"
	"github.com/teraforge/launcher/internal/ui"
	"github.com/teraforge/launcher/internal/update"
)

// Options configure the launcher application.
type Options struct {
	ConfigPath     string
	PrefsPath      string // empty uses default ~/.config/teralaunch/prefs.toml
	Debug          bool
	CheckOnStartup bool
}

// Run boots the launcher until the context is cancelled or the UI exits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := newLogger(cfg.LauncherLogPath(), opts.Debug)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()
	log.Info("launcher starting", zap.String("game_path", cfg.GamePath))

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	store := state.NewStore()
	store.Merge(state.Patch{
		Language:      &userPrefs.Language,
		IsFirstLaunch: &userPrefs.FirstLaunch,
	})

	bus := events.NewBus()

	client, err := patch.NewClient(cfg.HashFileURL, cfg.FileServerURL)
	if err != nil {
		return fmt.Errorf("init patch client: %w", err)
	}
	files := patch.NewService(client, cfg.GamePath, cfg.HashCachePath(), bus, log)

	authn, err := auth.NewClient(cfg.LoginURL)
	if err != nil {
		return fmt.Errorf("init auth client: %w", err)
	}

	runner := game.NewLauncher(cfg.GameExecutable(), log)
	hashes := hashgen.NewGenerator(cfg.GamePath, cfg.HashFilePath(), cfg.FileServerURL, bus, log)

	sink := ui.NewSink()
	bridge := update.NewBridge(store, sink, log)
	bridge.Bind(bus)

	orch := update.NewOrchestrator(update.Deps{
		Store:  store,
		Bridge: bridge,
		Files:  files,
		Auth:   authn,
		Game:   runner,
		Hashes: hashes,
		Sink:   sink,
		Log:    log,
	})

	if userPrefs.FirstLaunch {
		if err := prefs.Save(opts.PrefsPath, prefs.Prefs{
			Language:    userPrefs.Language,
			FirstLaunch: false,
		}); err != nil {
			log.Warn("prefs not saved", zap.Error(err))
		}
	}

	if opts.CheckOnStartup {
		go func() {
			if err := client.CheckConnection(ctx); err != nil {
				log.Warn("update server unreachable, skipping startup check", zap.Error(err))
				sink.ShowNotice(update.Notice{
					Key:    update.NoticeServerUnreachable,
					Detail: err.Error(),
				})
				return
			}
			if err := orch.CheckForUpdates(ctx); err != nil {
				log.Warn("startup update check failed", zap.Error(err))
			}
		}()
	}

	return ui.Run(ui.Options{
		Context:      ctx,
		Orchestrator: orch,
		Store:        store,
		Sink:         sink,
		PrefsPath:    opts.PrefsPath,
		LogPath:      cfg.LauncherLogPath(),
	})
}
