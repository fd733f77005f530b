package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/teraforge/launcher/internal/logtail"
	"github.com/teraforge/launcher/internal/prefs"
	pg "github.com/teraforge/launcher/internal/progress"
	"github.com/teraforge/launcher/internal/state"
	"github.com/teraforge/launcher/internal/update"
)

// noticeDuration is how long a notice stays on screen.
const noticeDuration = 6 * time.Second

// logViewLines is how many trailing log lines the diagnostics view shows.
const logViewLines = 20

type viewMode int

const (
	modeMain viewMode = iota
	modeLogin
)

// Model is the launcher's bubbletea model. State arrives as coalesced
// snapshots; key handlers dispatch orchestrator operations as commands.
type Model struct {
	ctx       context.Context
	orch      *update.Orchestrator
	store     *state.Store
	prefsPath string
	logPath   string
	styles    Styles

	width  int
	height int

	snap        state.Snapshot
	affordances bool
	notice      *update.Notice

	mode     viewMode
	bar      progress.Model
	username textinput.Model
	password textinput.Model
	focus    int

	showLog  bool
	logLines []string
}

// NewModel builds the launcher model.
func NewModel(ctx context.Context, orch *update.Orchestrator, store *state.Store, prefsPath, logPath string) Model {
	username := textinput.New()
	username.CharLimit = 64
	password := textinput.New()
	password.CharLimit = 64
	password.EchoMode = textinput.EchoPassword

	return Model{
		ctx:         ctx,
		orch:        orch,
		store:       store,
		prefsPath:   prefsPath,
		logPath:     logPath,
		styles:      DefaultStyles(),
		affordances: true,
		snap:        store.Snapshot(),
		bar:         progress.New(progress.WithDefaultGradient()),
		username:    username,
		password:    password,
	}
}

// Init pulls the current snapshot so the first frame is populated even if no
// merge happens after startup.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{m.store.Snapshot()}
	}
}

// Update handles messages and key input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := msg.Width - 12
		if barWidth > 60 {
			barWidth = 60
		}
		if barWidth > 0 {
			m.bar.Width = barWidth
		}
		return m, nil

	case snapshotMsg:
		m.snap = msg.snap
		return m, nil

	case affordanceMsg:
		m.affordances = msg.enabled
		return m, nil

	case noticeMsg:
		notice := msg.notice
		m.notice = &notice
		return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
			return clearNoticeMsg{}
		})

	case clearNoticeMsg:
		m.notice = nil
		return m, nil

	case opDoneMsg:
		// Errors already surfaced as notices by the orchestrator.
		return m, nil

	case logLinesMsg:
		if m.showLog {
			m.logLines = msg.lines
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeLogin {
			return m.updateLogin(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "u":
		if !m.affordances {
			return m, nil
		}
		return m, m.dispatch(func() error { return m.orch.CheckForUpdates(m.ctx) })

	case "enter":
		if !m.affordances || !m.snap.IsAuthenticated {
			return m, nil
		}
		return m, m.dispatch(func() error { return m.orch.LaunchGame(m.ctx) })

	case "l":
		if m.snap.IsAuthenticated {
			return m, nil
		}
		m.mode = modeLogin
		m.focus = 0
		m.username.Focus()
		m.password.Blur()
		return m, textinput.Blink

	case "o":
		if !m.snap.IsAuthenticated {
			return m, nil
		}
		return m, m.dispatch(func() error { return m.orch.Logout() })

	case "g":
		if !m.affordances {
			return m, nil
		}
		return m, m.dispatch(func() error { return m.orch.GenerateHashFile(m.ctx) })

	case "t":
		return m, m.toggleLanguage()

	case "d":
		if m.showLog {
			m.showLog = false
			m.logLines = nil
			return m, nil
		}
		m.showLog = true
		path := m.logPath
		return m, func() tea.Msg {
			lines, err := logtail.Read(path, logViewLines)
			if err != nil {
				return logLinesMsg{lines: []string{err.Error()}}
			}
			return logLinesMsg{lines: lines}
		}
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeMain
		m.username.Blur()
		m.password.Blur()
		return m, nil

	case "tab", "shift+tab", "up", "down":
		m.focus = (m.focus + 1) % 2
		if m.focus == 0 {
			m.username.Focus()
			m.password.Blur()
		} else {
			m.password.Focus()
			m.username.Blur()
		}
		return m, textinput.Blink

	case "enter":
		user := strings.TrimSpace(m.username.Value())
		pass := m.password.Value()
		if user == "" || pass == "" {
			return m, nil
		}
		m.mode = modeMain
		m.username.Blur()
		m.password.Blur()
		m.password.SetValue("")
		return m, m.dispatch(func() error { return m.orch.Login(m.ctx, user, pass) })

	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// dispatch runs an orchestrator operation off the UI goroutine.
func (m Model) dispatch(op func() error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: op()}
	}
}

// toggleLanguage cycles through the supported languages and persists the
// choice.
func (m Model) toggleLanguage() tea.Cmd {
	current := m.snap.Language
	next := prefs.SupportedLanguages[0]
	for i, lang := range prefs.SupportedLanguages {
		if lang == current {
			next = prefs.SupportedLanguages[(i+1)%len(prefs.SupportedLanguages)]
			break
		}
	}
	m.store.Merge(state.Patch{Language: &next})

	path := m.prefsPath
	return func() tea.Msg {
		return opDoneMsg{err: prefs.Save(path, prefs.Prefs{Language: next, FirstLaunch: false})}
	}
}

// View renders the launcher frame.
func (m Model) View() string {
	lang := m.snap.Language
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(tr(lang, "title")))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Phase.Render(m.phaseLine(lang)))
	b.WriteString("\n\n")

	if m.mode == modeLogin {
		b.WriteString(m.styles.Muted.Render(tr(lang, "username")))
		b.WriteString("\n")
		b.WriteString(m.username.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(tr(lang, "password")))
		b.WriteString("\n")
		b.WriteString(m.password.View())
		b.WriteString("\n\n")
		b.WriteString(m.styles.Help.Render(tr(lang, "help_login")))
		return m.styles.Frame.Render(b.String())
	}

	if m.snap.Phase == state.PhaseDownload || m.snap.Phase == state.PhaseFileCheck {
		b.WriteString(m.bar.ViewAs(m.snap.Progress / 100))
		b.WriteString("\n")
		b.WriteString(m.styles.Value.Render(m.transferLine(lang)))
		b.WriteString("\n\n")
	}

	if m.snap.IsGeneratingHashFile {
		b.WriteString(m.styles.Value.Render(fmt.Sprintf("%s %s (%d/%d)",
			tr(lang, "hashing"), m.snap.CurrentProcessingFile,
			m.snap.ProcessedFiles, m.snap.TotalFiles)))
		b.WriteString("\n\n")
	}

	session := tr(lang, "logged_out")
	if m.snap.IsAuthenticated {
		session = tr(lang, "logged_in")
	}
	b.WriteString(m.styles.Muted.Render(session))
	b.WriteString("\n")

	if m.showLog && len(m.logLines) > 0 {
		b.WriteString("\n")
		for _, line := range m.logLines {
			b.WriteString(m.styles.Muted.Render(line))
			b.WriteString("\n")
		}
	}

	if m.notice != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Notice.Render(tr(lang, m.notice.Key)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := m.styles.Help
	if !m.affordances {
		help = m.styles.Disabled
	}
	b.WriteString(help.Render(tr(lang, "help_main")))

	return m.styles.Frame.Render(b.String())
}

// phaseLine maps the cycle phase to its localized status line.
func (m Model) phaseLine(lang string) string {
	switch m.snap.Phase {
	case state.PhaseFileCheck:
		return tr(lang, "phase_file_check")
	case state.PhaseDownload:
		return tr(lang, "phase_download")
	case state.PhaseComplete:
		return tr(lang, "phase_complete")
	case state.PhaseReady:
		return tr(lang, "phase_ready")
	default:
		return tr(lang, "phase_idle")
	}
}

// transferLine renders the byte counters and estimates under the bar.
func (m Model) transferLine(lang string) string {
	if m.snap.Phase == state.PhaseFileCheck {
		return fmt.Sprintf("%s  %d/%d %s",
			m.snap.CurrentFileName, m.snap.CurrentFileIndex,
			m.snap.TotalFiles, tr(lang, "files"))
	}

	eta := pg.FormatTime(m.snap.TimeRemaining)
	if eta == pg.CalculatingLabel {
		eta = tr(lang, "calculating")
	}
	return fmt.Sprintf("%s  %s / %s  %s  %s",
		m.snap.CurrentFileName,
		pg.FormatSize(float64(m.snap.DownloadedSize)),
		pg.FormatSize(float64(m.snap.TotalSize)),
		pg.FormatSpeed(m.snap.CurrentSpeed),
		eta)
}
