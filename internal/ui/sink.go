package ui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teraforge/launcher/internal/state"
	"github.com/teraforge/launcher/internal/update"
)

// Sink delivers orchestrator side effects and state snapshots into the
// running bubbletea program. Calls before Attach are dropped; the model
// pulls a fresh snapshot on startup so nothing is lost.
type Sink struct {
	program atomic.Pointer[tea.Program]
}

// NewSink builds an unattached Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Attach points the sink at the running program.
func (s *Sink) Attach(p *tea.Program) {
	s.program.Store(p)
}

func (s *Sink) send(msg tea.Msg) {
	if p := s.program.Load(); p != nil {
		p.Send(msg)
	}
}

// PushSnapshot forwards a coalesced store snapshot. Wire this to
// Store.OnChange.
func (s *Sink) PushSnapshot(snap state.Snapshot) {
	s.send(snapshotMsg{snap})
}

// DisableUpdateAffordances greys out the update controls.
func (s *Sink) DisableUpdateAffordances() {
	s.send(affordanceMsg{enabled: false})
}

// EnableUpdateAffordances restores the update controls.
func (s *Sink) EnableUpdateAffordances() {
	s.send(affordanceMsg{enabled: true})
}

// ShowNotice displays a transient user-facing message.
func (s *Sink) ShowNotice(n update.Notice) {
	s.send(noticeMsg{n})
}

type snapshotMsg struct {
	snap state.Snapshot
}

type affordanceMsg struct {
	enabled bool
}

type noticeMsg struct {
	notice update.Notice
}

type clearNoticeMsg struct{}

type opDoneMsg struct {
	err error
}

type logLinesMsg struct {
	lines []string
}
