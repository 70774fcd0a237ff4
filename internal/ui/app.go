package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/booth/internal/apiclient"
	"github.com/five82/booth/internal/market"
	"github.com/five82/booth/internal/prefs"
	"github.com/five82/booth/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewLogin View = iota
	ViewSignup
	ViewList
	ViewDetail
	ViewCreate
	ViewEdit
	ViewLog
)

// requiresSession reports whether v is only reachable while logged in.
func (v View) requiresSession() bool {
	return v != ViewLogin && v != ViewSignup
}

func (v View) isForm() bool {
	switch v {
	case ViewLogin, ViewSignup, ViewCreate, ViewEdit:
		return true
	default:
		return false
	}
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Session   SessionActions
	Studios   StudioActions
	Uploader  ImageUploader // nil disables uploading local image files
	Prefs     prefs.Prefs
	PrefsPath string
	PollTick  time.Duration
	OnFilters func(market.StudioFilters) // called when the list filters change
	LogPath   string                     // shown in the activity view; empty disables it
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	session   SessionActions
	studios   StudioActions
	uploader  ImageUploader
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	onFilters func(market.StudioFilters)
	logPath   string
	logger    *slog.Logger
	keys      keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal
	spinner     spinner.Model
	status      string

	// Data state
	snapshot state.Snapshot
	inflight int

	// List and detail state
	selectedRow    int
	pendingSelect  string
	detailID       string
	detailViewport viewport.Model

	// Active form for login, signup, create and edit views
	form *form

	logs logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore("")
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		store:     store,
		session:   opts.Session,
		studios:   opts.Studios,
		uploader:  opts.Uploader,
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
		pollTick:  pollTick,
		onFilters: opts.OnFilters,
		logPath:   opts.LogPath,
		logger:    logger.With("component", "ui"),
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		spinner:   sp,
		snapshot:  store.Snapshot(),
	}
	if m.snapshot.Session.Authenticated() {
		m.currentView = ViewList
	} else {
		m.toLogin()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.store),
		m.spinner.Tick,
		textinput.Blink,
	}
	if m.currentView == ViewList && m.studios != nil {
		cmds = append(cmds, m.listCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initDetailViewport()
		}
		m.ready = true
		m.updateDetailViewport()
		m.updateLogViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		cmds := []tea.Cmd{fetchSnapshotCmd(m.store), tickCmd(m.pollTick)}
		if m.currentView == ViewLog && m.logs.follow && m.logPath != "" {
			cmds = append(cmds, loadLogCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case logLoadedMsg:
		m.applyLog(msg)
		return m, nil

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case filtersAppliedMsg:
		m.prefs.Filters = msg.filters
		m.savePrefs()
		if m.onFilters != nil {
			m.onFilters(msg.filters)
		}
		m.selectedRow = 0
		return m, m.dispatch(m.listCmd())

	case deleteConfirmedMsg:
		return m, m.dispatch(m.deleteCmd(msg.id))
	}

	if m.modal != nil {
		var (
			cmd    tea.Cmd
			closed bool
		)
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	if m.form != nil {
		return m, m.form.update(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		var (
			cmd    tea.Cmd
			closed bool
		)
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	if m.currentView.isForm() {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.updateDetailViewport()
		m.updateLogViewport()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		return m, m.dispatch(m.logoutCmd())
	}

	switch m.currentView {
	case ViewList:
		return m.handleListKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewLog:
		return m.handleLogKey(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Studios.Items)
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		if count > 0 {
			m.selectedRow = count - 1
		}
	case key.Matches(msg, m.keys.Open):
		if studio, ok := m.selectedStudio(); ok {
			return m, m.openDetail(studio.ID)
		}
	case key.Matches(msg, m.keys.New):
		m.openCreate()
	case key.Matches(msg, m.keys.Filter):
		m.modal = newFilterModal(m.prefs.Filters)
	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		return m, m.dispatch(m.listCmd())
	case key.Matches(msg, m.keys.ActivityLog):
		return m, m.openLog()
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeDetail()
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		m.openEdit()
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if studio, ok := m.currentStudio(); ok {
			m.modal = &confirmModal{id: studio.ID, name: studio.Name}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		switch m.currentView {
		case ViewCreate:
			m.toList()
		case ViewEdit:
			m.currentView = ViewDetail
			m.form = nil
			m.updateDetailViewport()
		}
		return m, nil
	case key.Matches(msg, m.keys.SwitchForm):
		switch m.currentView {
		case ViewLogin:
			m.currentView = ViewSignup
			m.form = signupForm()
			m.form.setValue(fieldEmail, m.prefs.LastEmail)
		case ViewSignup:
			m.toLogin()
		}
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.form.next()
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.form.prev()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submitForm()
	}
	return m, m.form.update(msg)
}

// submitForm dispatches the intent for the active form.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	if m.inflight > 0 {
		return m, nil
	}
	m.form.clearErrors()
	m.status = ""
	switch m.currentView {
	case ViewLogin:
		creds := m.form.credentials()
		m.prefs.LastEmail = creds.Email
		return m, m.dispatch(m.loginCmd(creds))
	case ViewSignup:
		req := m.form.signupRequest()
		m.prefs.LastEmail = req.Email
		return m, m.dispatch(m.signupCmd(req))
	case ViewCreate, ViewEdit:
		input, err := m.form.studioInput()
		if err != nil {
			m.form.setError(err)
			return m, nil
		}
		if m.currentView == ViewCreate {
			return m, m.dispatch(m.createCmd(input))
		}
		return m, m.dispatch(m.updateCmd(m.detailID, input))
	}
	return m, nil
}

// handleOpDone routes a settled controller call.
func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if m.inflight > 0 {
		m.inflight--
	}
	cmds := []tea.Cmd{fetchSnapshotCmd(m.store)}

	if errors.Is(msg.err, apiclient.ErrSessionExpired) {
		m.toLogin()
		m.form.submitErr = apiclient.Message(msg.err)
		return m, tea.Batch(cmds...)
	}
	if msg.err != nil {
		m.logger.Debug("operation failed", "op", msg.op.String(), "error", msg.err)
	}

	switch msg.op {
	case opLogin, opSignup:
		if msg.err != nil {
			if m.form != nil {
				m.form.setError(msg.err)
			}
			break
		}
		m.savePrefs()
		if !m.store.Snapshot().Session.Authenticated() {
			// Signup without tokens: the account exists but a login is needed.
			m.toLogin()
			m.status = "account created, log in to continue"
			break
		}
		m.toList()
		cmds = append(cmds, m.dispatch(m.listCmd()))

	case opLogout:
		m.toLogin()
		if msg.err != nil {
			m.form.submitErr = msg.err.Error()
		}

	case opCreate:
		if msg.err != nil {
			if m.currentView == ViewCreate && m.form != nil {
				m.form.setError(msg.err)
			}
			break
		}
		m.toList()
		m.pendingSelect = msg.id
		m.status = "created " + truncate(msg.studio.Name, 30)

	case opUpdate:
		if msg.err != nil {
			if m.currentView == ViewEdit && m.form != nil {
				m.form.setError(msg.err)
			}
			break
		}
		if m.currentView == ViewEdit {
			m.currentView = ViewDetail
			m.form = nil
		}
		m.status = "saved"

	case opDelete:
		if msg.err != nil {
			break
		}
		if m.currentView == ViewDetail && m.detailID == msg.id {
			m.closeDetail()
		}
		m.status = "deleted"
	}
	return m, tea.Batch(cmds...)
}

// applySnapshot installs a fresh snapshot and enforces protected views.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	if m.pendingSelect != "" {
		m.selectID(m.pendingSelect)
		m.pendingSelect = ""
	}
	m.clampSelection()
	if m.currentView.requiresSession() && !snap.Session.Authenticated() && !snap.Session.Loading {
		m.toLogin()
		if snap.Session.Error != "" {
			m.form.submitErr = snap.Session.Error
		}
		return
	}
	if m.currentView == ViewDetail {
		m.updateDetailViewport()
	}
}

// dispatch counts cmd as in flight and returns it.
func (m *Model) dispatch(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	m.inflight++
	return cmd
}

func (m *Model) toLogin() {
	m.currentView = ViewLogin
	m.form = loginForm(m.prefs.LastEmail)
	m.modal = nil
	m.detailID = ""
}

func (m *Model) toList() {
	m.currentView = ViewList
	m.form = nil
}

func (m *Model) openDetail(id string) tea.Cmd {
	m.detailID = id
	m.currentView = ViewDetail
	m.status = ""
	m.detailViewport.GotoTop()
	m.updateDetailViewport()
	return m.dispatch(m.getCmd(id))
}

func (m *Model) closeDetail() {
	m.studios.ClearCurrent()
	m.detailID = ""
	m.toList()
}

func (m *Model) openCreate() {
	m.studios.ClearError()
	m.status = ""
	m.currentView = ViewCreate
	m.form = studioForm("New studio", market.StudioInput{})
}

func (m *Model) openEdit() {
	studio, ok := m.currentStudio()
	if !ok {
		return
	}
	m.studios.ClearError()
	m.status = ""
	m.currentView = ViewEdit
	m.form = studioForm("Edit studio", market.InputFrom(studio))
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences", "error", err)
	}
}

func (m Model) contentHeight() int {
	h := m.height - 2
	if h < 1 {
		return 1
	}
	return h
}

// renderMain renders header, content and footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Height(m.contentHeight()).MaxHeight(m.contentHeight()).Render(m.renderContent()))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.renderList(m.contentHeight())
	case ViewDetail:
		return m.detailViewport.View()
	case ViewLog:
		return m.logs.viewport.View()
	default:
		if m.form == nil {
			return ""
		}
		busy := ""
		if m.busy() {
			busy = m.spinner.View() + " working..."
		}
		return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center,
			m.form.view(m.theme, m.width, busy))
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
