package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teraforge/launcher/internal/state"
	"github.com/teraforge/launcher/internal/update"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	store := state.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewModel(ctx, nil, store, "", "")
}

func TestSnapshotMessageUpdatesView(t *testing.T) {
	m := newTestModel(t)

	snap := m.store.Snapshot()
	snap.Phase = state.PhaseDownload
	snap.CurrentFileName = "Client/data.pak"
	snap.DownloadedSize = 1024
	snap.TotalSize = 4096
	snap.Progress = 25

	next, _ := m.Update(snapshotMsg{snap})
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, "Client/data.pak") {
		t.Fatalf("view missing current file:\n%s", view)
	}
	if !strings.Contains(view, "1.00 KB") || !strings.Contains(view, "4.00 KB") {
		t.Fatalf("view missing byte counters:\n%s", view)
	}
}

func TestAffordanceMessageDisablesUpdateKey(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(affordanceMsg{enabled: false})
	m = next.(Model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}})
	if cmd != nil {
		t.Fatal("u key dispatched a command while affordances are disabled")
	}
}

func TestNoticeRendersLocalized(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(noticeMsg{update.Notice{Key: update.NoticeServerUnreachable}})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("notice must schedule its own expiry")
	}
	if !strings.Contains(m.View(), messages["en"][update.NoticeServerUnreachable]) {
		t.Fatalf("notice text missing from view:\n%s", m.View())
	}

	next, _ = m.Update(clearNoticeMsg{})
	m = next.(Model)
	if strings.Contains(m.View(), messages["en"][update.NoticeServerUnreachable]) {
		t.Fatal("notice still visible after expiry")
	}
}

func TestLanguageFallback(t *testing.T) {
	if got := tr("ru", "phase_ready"); got != messages["ru"]["phase_ready"] {
		t.Fatalf("tr(ru) = %q", got)
	}
	if got := tr("de", "phase_ready"); got != messages["en"]["phase_ready"] {
		t.Fatalf("tr(de) = %q, want English fallback", got)
	}
	if got := tr("en", "no_such_key"); got != "no_such_key" {
		t.Fatalf("tr unknown key = %q, want key itself", got)
	}
}

func TestLoginModeCapturesInput(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = next.(Model)
	if m.mode != modeLogin {
		t.Fatal("l key did not open the login form")
	}

	// Typing lands in the username field, not the key handler.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)
	if m.username.Value() != "q" {
		t.Fatalf("username = %q, want typed rune", m.username.Value())
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.mode != modeMain {
		t.Fatal("esc did not close the login form")
	}
}
