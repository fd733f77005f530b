// Package update orchestrates the client's patch cycle: file check,
// download, progress estimation, and the guarded session operations
// around them. It owns the translation from transfer events into shared
// state merges the render sink observes.
package update

import (
	"context"

	"github.com/teraforge/launcher/internal/auth"
	"github.com/teraforge/launcher/internal/patch"
)

// Notice keys shown to the user through the render sink. The sink resolves
// them to localized text.
const (
	NoticeServerUnreachable = "server_unreachable"
	NoticeUpdateError       = "update_error"
	NoticeLoginFailed       = "login_failed"
	NoticeLaunchFailed      = "launch_failed"
	NoticeHashGenFailed     = "hashgen_failed"
)

// Notice is a user-facing message. Key selects the localized template;
// Detail carries the raw error text for diagnostics.
type Notice struct {
	Key    string
	Detail string
}

// FileService enumerates and downloads out-of-date files, emitting transfer
// events while it works.
type FileService interface {
	EnumerateFilesToUpdate(ctx context.Context) ([]patch.FileInfo, error)
	DownloadFiles(ctx context.Context, files []patch.FileInfo) ([]int64, error)
}

// Authenticator manages the account session.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
	Logout()
	Session() *auth.Session
}

// GameRunner starts the game process and reports whether it is alive.
type GameRunner interface {
	Running() bool
	Launch(ctx context.Context, session *auth.Session) error
}

// HashGenerator produces the server manifest from a local install.
type HashGenerator interface {
	Generate(ctx context.Context) (*patch.Manifest, error)
}

// RenderSink is the surface the orchestrator pushes UI-facing side effects
// to, beyond the state snapshots the store already delivers.
type RenderSink interface {
	DisableUpdateAffordances()
	EnableUpdateAffordances()
	ShowNotice(Notice)
}

// NopSink discards all sink calls. Useful headless and in tests.
type NopSink struct{}

func (NopSink) DisableUpdateAffordances() {}
func (NopSink) EnableUpdateAffordances() {}
func (NopSink) ShowNotice(Notice)        {}
