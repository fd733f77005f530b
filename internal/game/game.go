// Package game starts the game client and tracks whether it is running.
package game

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/teraforge/launcher/internal/auth"
)

// ErrAlreadyRunning is returned when Launch is called while the game process
// is still alive.
var ErrAlreadyRunning = errors.New("game: already running")

// ErrNotAuthenticated is returned when Launch is called without a session.
var ErrNotAuthenticated = errors.New("game: not logged in")

// Launcher starts the configured game binary and watches the process.
type Launcher struct {
	executable string
	log        *zap.Logger

	mu      sync.Mutex
	running bool
}

// NewLauncher builds a Launcher for the given executable path.
func NewLauncher(executable string, log *zap.Logger) *Launcher {
	return &Launcher{executable: executable, log: log}
}

// Running reports whether a game process started by this launcher is alive.
func (l *Launcher) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Launch starts the game with the session's auth ticket in the environment.
// It returns once the process has started; a background goroutine clears the
// running flag when the process exits.
func (l *Launcher) Launch(ctx context.Context, session *auth.Session) error {
	if session == nil {
		return ErrNotAuthenticated
	}

	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return ErrAlreadyRunning
	}

	if _, err := os.Stat(l.executable); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("game executable: %w", err)
	}

	cmd := exec.CommandContext(ctx, l.executable)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("TERA_USER_NO=%d", session.UserNo),
		"TERA_USER_NAME="+session.UserName,
		"TERA_AUTH_KEY="+session.AuthKey,
		"TERA_CHARACTER_COUNT="+session.CharacterCount,
	)

	if err := cmd.Start(); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("start game: %w", err)
	}
	l.running = true
	l.mu.Unlock()

	l.log.Info("game started",
		zap.String("executable", l.executable),
		zap.Int("pid", cmd.Process.Pid))

	go func() {
		err := cmd.Wait()
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
		if err != nil {
			l.log.Warn("game exited with error", zap.Error(err))
		} else {
			l.log.Info("game exited")
		}
	}()
	return nil
}
