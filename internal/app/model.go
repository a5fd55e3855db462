// Package app wires the access gate and the normalized report views to the
// terminal. All service I/O happens in commands; Update only swaps state.
package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zooportal/tui/internal/api"
	"github.com/zooportal/tui/internal/nav"
	"github.com/zooportal/tui/internal/report"
	"github.com/zooportal/tui/internal/session"
)

// confirmAction is a pending destructive operation awaiting y/N.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmOwner
	confirmAll
)

// authField tracks which login input has focus.
type authField int

const (
	fieldUsername authField = iota
	fieldPassword
)

// Model is the root bubbletea model for the zooportal TUI.
type Model struct {
	client *api.Client
	store  *session.Store

	// Session and navigation
	sess session.Session
	page nav.Page

	// Auth form
	registering bool
	roleChoice  session.Role
	usernameIn  textinput.Model
	passwordIn  textinput.Model
	authFocus   authField
	authBusy    bool

	// Symptom entry
	symptomsIn  textinput.Model
	predictBusy bool
	prediction  *report.Report

	// Upload
	fileIn     textinput.Model
	uploadBusy bool

	// Report view model. Replaced whole on every fetch; never spliced.
	view       report.View
	viewLoaded bool
	fetching   bool

	// Dashboard selection
	selectedOwner  int
	selectedReport int
	ownersFocused  bool

	// Pending destructive confirmation
	confirm confirmAction

	// Errors and status
	formError      string
	errorMessage   string
	errorTransient bool
	infoMessage    string
	statusText     string

	width  int
	height int
}

// New creates a Model for the given restored session. The session was read
// from the store at process start; an empty one lands on the home page.
func New(client *api.Client, store *session.Store, sess session.Session) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 64
	password.EchoMode = textinput.EchoPassword

	symptoms := textinput.New()
	symptoms.Placeholder = "fever, cough, headache"
	symptoms.CharLimit = 256

	file := textinput.New()
	file.Placeholder = "/path/to/report.pdf"
	file.CharLimit = 256

	m := Model{
		client:        client,
		store:         store,
		sess:          sess,
		roleChoice:    session.RolePatient,
		usernameIn:    username,
		passwordIn:    password,
		symptomsIn:    symptoms,
		fileIn:        file,
		ownersFocused: true,
		statusText:    "Ready",
	}
	if m.applyNavigation(nav.PageHome) {
		m.fetching = true
	}
	return m
}

// Init fetches reports when the restored session landed on a data page.
func (m Model) Init() tea.Cmd {
	if m.fetching {
		return tea.Batch(textinput.Blink, fetchReportsCmd(m.client, m.sess))
	}
	return textinput.Blink
}

// applyNavigation runs the access gate for dest and records the resulting
// page. It returns true when the landed page needs a report fetch.
func (m *Model) applyNavigation(dest nav.Page) bool {
	d := nav.Resolve(m.sess, dest)
	target := dest
	if !d.Render {
		target = d.Target
		// A redirect target is renderable by construction, but unauthenticated
		// redirects to Login still pass through the gate once more.
		if next := nav.Resolve(m.sess, target); !next.Render {
			target = next.Target
		}
	}

	m.page = target
	m.confirm = confirmNone
	m.formError = ""
	m.infoMessage = ""

	m.usernameIn.Blur()
	m.passwordIn.Blur()
	m.symptomsIn.Blur()
	m.fileIn.Blur()

	switch target {
	case nav.PageLogin:
		m.authFocus = fieldUsername
		m.usernameIn.Focus()
	case nav.PageUpload:
		m.fileIn.Focus()
	case nav.PageSymptoms:
		m.symptomsIn.Focus()
	case nav.PageResults, nav.PageDashboard:
		return true
	}
	return false
}

// navigate routes a page change through the gate and starts a fetch when the
// destination needs one.
func (m *Model) navigate(dest nav.Page) tea.Cmd {
	if m.applyNavigation(dest) {
		m.fetching = true
		return fetchReportsCmd(m.client, m.sess)
	}
	return nil
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case AuthResponseMsg:
		m.authBusy = false
		if !msg.Result.Success {
			m.formError = msg.Result.Message
			if m.formError == "" {
				m.formError = "Authentication failed."
			}
			return m, nil
		}
		if msg.Registering {
			m.registering = false
			m.passwordIn.SetValue("")
			m.infoMessage = "Registration successful. Please log in."
			return m, nil
		}
		role := session.Role(msg.Result.Role)
		if !role.Valid() {
			role = m.roleChoice
		}
		m.sess = session.Session{UserID: msg.Result.UserID, Role: role}
		m.passwordIn.SetValue("")
		cmd := m.navigate(nav.Landing(role))
		return m, tea.Batch(persistSessionCmd(m.store, m.sess), cmd)

	case SessionPersistedMsg:
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			m.errorTransient = true
			return m, clearTransientErrorCmd()
		}
		return m, nil

	case ReportsLoadedMsg:
		m.view = msg.View
		m.viewLoaded = true
		m.fetching = false
		m.statusText = "Reports loaded"
		if m.selectedOwner >= len(m.view.Groups) {
			m.selectedOwner = max(0, len(m.view.Groups)-1)
		}
		if m.selectedReport >= len(m.view.Reports) {
			m.selectedReport = max(0, len(m.view.Reports)-1)
		}
		return m, nil

	case PredictResponseMsg:
		m.predictBusy = false
		r := msg.Report
		m.prediction = &r
		m.statusText = "Prediction ready"
		return m, nil

	case UploadResponseMsg:
		m.uploadBusy = false
		m.fileIn.SetValue("")
		m.statusText = "Report analyzed"
		// Land on the results view; the navigation triggers the
		// authoritative re-fetch.
		return m, m.navigate(nav.PageResults)

	case ClearDoneMsg:
		// Never reconstruct server truth locally: a successful delete is
		// always followed by a full re-fetch before the UI settles.
		m.fetching = true
		m.statusText = "Reports cleared, refreshing"
		return m, fetchReportsCmd(m.client, m.sess)

	case DownloadDoneMsg:
		m.infoMessage = "Saved " + msg.Path
		m.statusText = "Download complete"
		return m, nil

	case TransportErrorMsg:
		m.authBusy = false
		m.predictBusy = false
		m.uploadBusy = false
		m.fetching = false
		m.errorMessage = msg.Err.Error()
		m.errorTransient = true
		return m, clearTransientErrorCmd()

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == KeyCtrlC {
		return m, tea.Quit
	}

	// A pending destructive confirmation captures the keyboard: y issues the
	// delete, anything else declines it as a no-op.
	if m.confirm != confirmNone {
		return m.handleConfirmKey(key)
	}

	if m.sess.LoggedIn() && key == KeyLogout {
		m.sess = session.Session{}
		m.view = report.View{}
		m.viewLoaded = false
		m.prediction = nil
		cmd := m.navigate(nav.PageLogin)
		return m, tea.Batch(logoutCmd(m.store), cmd)
	}

	switch m.page {
	case nav.PageHome:
		return m.handleHomeKey(key)
	case nav.PageLogin:
		return m.handleLoginKey(msg, key)
	case nav.PageAbout, nav.PageContact:
		return m.handleInfoKey(key)
	case nav.PageUpload:
		return m.handleUploadKey(msg, key)
	case nav.PageSymptoms:
		return m.handleSymptomsKey(msg, key)
	case nav.PageResults:
		return m.handleResultsKey(key)
	case nav.PageDashboard:
		return m.handleDashboardKey(key)
	}
	return m, nil
}

func (m Model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	action := m.confirm
	m.confirm = confirmNone

	if key != KeyConfirmYes {
		m.statusText = "Cancelled"
		return m, nil
	}

	switch action {
	case confirmOwner:
		owner := m.confirmOwnerID()
		if owner == "" {
			return m, nil
		}
		m.statusText = "Clearing reports"
		return m, clearOwnerCmd(m.client, owner)
	case confirmAll:
		m.statusText = "Clearing all reports"
		return m, clearAllCmd(m.client)
	}
	return m, nil
}

// confirmOwnerID names the owner a confirmed clear applies to: the patient's
// own identity on the results page, the selected group on the dashboard.
func (m Model) confirmOwnerID() string {
	if m.page == nav.PageDashboard {
		if m.selectedOwner < len(m.view.Groups) {
			return m.view.Groups[m.selectedOwner].OwnerID
		}
		return ""
	}
	return m.sess.UserID
}

func (m Model) handleHomeKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyQuit, KeyQuitUpper:
		return m, tea.Quit
	case KeyNavLogin:
		return m, m.navigate(nav.PageLogin)
	case KeyNavAbout:
		return m, m.navigate(nav.PageAbout)
	case KeyNavContact:
		return m, m.navigate(nav.PageContact)
	}
	return m, nil
}

func (m Model) handleInfoKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyQuit, KeyQuitUpper:
		return m, tea.Quit
	case KeyEsc:
		return m, m.navigate(nav.PageHome)
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyEsc:
		return m, m.navigate(nav.PageHome)

	case KeyTab, KeyShiftTab, KeyUp, KeyDown:
		if m.authFocus == fieldUsername {
			m.authFocus = fieldPassword
			m.usernameIn.Blur()
			m.passwordIn.Focus()
		} else {
			m.authFocus = fieldUsername
			m.passwordIn.Blur()
			m.usernameIn.Focus()
		}
		return m, nil

	case KeyToggleRole:
		if m.roleChoice == session.RolePatient {
			m.roleChoice = session.RoleDoctor
		} else {
			m.roleChoice = session.RolePatient
		}
		return m, nil

	case KeyToggleMode:
		m.registering = !m.registering
		m.formError = ""
		m.infoMessage = ""
		return m, nil

	case KeyEnter:
		username := strings.TrimSpace(m.usernameIn.Value())
		password := m.passwordIn.Value()
		if username == "" || password == "" {
			// Validation errors stay at the point of entry; nothing is sent.
			m.formError = "Username and password are required."
			return m, nil
		}
		m.formError = ""
		m.authBusy = true
		return m, authCmd(m.client, username, password, m.roleChoice, m.registering)
	}

	var cmd tea.Cmd
	if m.authFocus == fieldUsername {
		m.usernameIn, cmd = m.usernameIn.Update(msg)
	} else {
		m.passwordIn, cmd = m.passwordIn.Update(msg)
	}
	return m, cmd
}

func (m Model) handleUploadKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyNavSymptoms:
		return m, m.navigate(nav.PageSymptoms)
	case KeyNavResults:
		return m, m.navigate(nav.PageResults)

	case KeyEnter:
		path := strings.TrimSpace(m.fileIn.Value())
		if path == "" {
			m.formError = "Please select a file."
			return m, nil
		}
		if m.uploadBusy {
			return m, nil
		}
		m.formError = ""
		m.uploadBusy = true
		m.statusText = "Uploading"
		return m, uploadCmd(m.client, path, m.sess.UserID)
	}

	var cmd tea.Cmd
	m.fileIn, cmd = m.fileIn.Update(msg)
	return m, cmd
}

func (m Model) handleSymptomsKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyNavUpload:
		return m, m.navigate(nav.PageUpload)
	case KeyNavResults:
		return m, m.navigate(nav.PageResults)

	case KeyEsc:
		m.symptomsIn.SetValue("")
		m.prediction = nil
		m.formError = ""
		return m, nil

	case KeyEnter:
		symptoms := parseSymptoms(m.symptomsIn.Value())
		if len(symptoms) == 0 {
			m.formError = "Please enter at least one symptom."
			return m, nil
		}
		if m.predictBusy {
			return m, nil
		}
		m.formError = ""
		m.predictBusy = true
		m.statusText = "Predicting"
		return m, predictCmd(m.client, m.sess.UserID, symptoms)
	}

	var cmd tea.Cmd
	m.symptomsIn, cmd = m.symptomsIn.Update(msg)
	return m, cmd
}

func (m Model) handleResultsKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyQuit, KeyQuitUpper:
		return m, tea.Quit
	case KeyNavUpload:
		return m, m.navigate(nav.PageUpload)
	case KeyNavSymptoms:
		return m, m.navigate(nav.PageSymptoms)

	case KeyJ, KeyDown:
		if m.selectedReport < len(m.view.Reports)-1 {
			m.selectedReport++
		}
		return m, nil
	case KeyK, KeyUp:
		if m.selectedReport > 0 {
			m.selectedReport--
		}
		return m, nil

	case KeyRefresh:
		m.fetching = true
		return m, fetchReportsCmd(m.client, m.sess)

	case KeyDownload:
		if m.selectedReport < len(m.view.Reports) {
			id := m.view.Reports[m.selectedReport].ID
			if id != "" {
				return m, downloadCmd(m.client, id)
			}
		}
		return m, nil

	case KeyClearOwner:
		if len(m.view.Reports) > 0 {
			m.confirm = confirmOwner
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleDashboardKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case KeyQuit, KeyQuitUpper:
		return m, tea.Quit

	case KeyTab:
		m.ownersFocused = !m.ownersFocused
		return m, nil

	case KeyJ, KeyDown:
		if m.ownersFocused {
			if m.selectedOwner < len(m.view.Groups)-1 {
				m.selectedOwner++
				m.selectedReport = 0
			}
		} else if m.selectedReport < m.view.GroupCount(m.selectedOwner)-1 {
			m.selectedReport++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.ownersFocused {
			if m.selectedOwner > 0 {
				m.selectedOwner--
				m.selectedReport = 0
			}
		} else if m.selectedReport > 0 {
			m.selectedReport--
		}
		return m, nil

	case KeyRefresh:
		m.fetching = true
		return m, fetchReportsCmd(m.client, m.sess)

	case KeyClearOwner:
		if m.view.GroupCount(m.selectedOwner) > 0 {
			m.confirm = confirmOwner
		}
		return m, nil

	case KeyClearAll:
		if len(m.view.Reports) > 0 {
			m.confirm = confirmAll
		}
		return m, nil
	}
	return m, nil
}

// parseSymptoms splits comma-separated symptom text into the normalized list
// the service expects.
func parseSymptoms(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		s := strings.ToLower(strings.TrimSpace(part))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
