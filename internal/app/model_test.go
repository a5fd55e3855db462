package app

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zooportal/tui/internal/api"
	"github.com/zooportal/tui/internal/nav"
	"github.com/zooportal/tui/internal/report"
	"github.com/zooportal/tui/internal/session"
)

func newTestModel(sess session.Session) Model {
	client := api.New("http://127.0.0.1:0", time.Second, nil)
	m := New(client, nil, sess)
	m.width = 100
	m.height = 30
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case KeyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case KeyTab:
		return tea.KeyMsg{Type: tea.KeyTab}
	case KeyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestNewModelLandsOnHomeWhenLoggedOut(t *testing.T) {
	m := newTestModel(session.Session{})
	if m.page != nav.PageHome {
		t.Errorf("page = %v, want Home", m.page)
	}
}

func TestNewModelRedirectsRestoredSessionToLanding(t *testing.T) {
	m := newTestModel(session.Session{UserID: "d1", Role: session.RoleDoctor})
	if m.page != nav.PageDashboard {
		t.Errorf("page = %v, want Dashboard", m.page)
	}
	if !m.fetching {
		t.Error("dashboard landing should start a fetch")
	}

	m = newTestModel(session.Session{UserID: "p1", Role: session.RolePatient})
	if m.page != nav.PageUpload {
		t.Errorf("page = %v, want Upload", m.page)
	}
}

func TestLoginValidationNeverHitsTheService(t *testing.T) {
	m := newTestModel(session.Session{})
	updated, _ := m.Update(keyMsg("l"))
	m = updated.(Model)
	if m.page != nav.PageLogin {
		t.Fatalf("page = %v, want Login", m.page)
	}

	updated, cmd := m.Update(keyMsg(KeyEnter))
	m = updated.(Model)

	if cmd != nil {
		t.Error("empty credentials should not produce a command")
	}
	if m.formError == "" {
		t.Error("empty credentials should set an inline error")
	}
}

func TestAuthSuccessSetsSessionAndNavigates(t *testing.T) {
	m := newTestModel(session.Session{})
	m.page = nav.PageLogin

	updated, cmd := m.Update(AuthResponseMsg{Result: api.AuthResult{
		Success: true,
		UserID:  "66b1",
		Role:    "doctor",
	}})
	m = updated.(Model)

	if !m.sess.LoggedIn() {
		t.Fatal("session should be authenticated")
	}
	if m.sess.UserID != "66b1" || m.sess.Role != session.RoleDoctor {
		t.Errorf("session = %+v", m.sess)
	}
	if m.page != nav.PageDashboard {
		t.Errorf("page = %v, want Dashboard", m.page)
	}
	if cmd == nil {
		t.Error("login should persist the session and fetch reports")
	}
}

func TestAuthFailureStaysInline(t *testing.T) {
	m := newTestModel(session.Session{})
	m.page = nav.PageLogin

	updated, _ := m.Update(AuthResponseMsg{Result: api.AuthResult{
		Success: false,
		Message: "Invalid username, password, or role",
	}})
	m = updated.(Model)

	if m.sess.LoggedIn() {
		t.Error("failed login must not authenticate")
	}
	if m.formError != "Invalid username, password, or role" {
		t.Errorf("formError = %q", m.formError)
	}
}

func TestRegisterSuccessSwitchesToLogin(t *testing.T) {
	m := newTestModel(session.Session{})
	m.page = nav.PageLogin
	m.registering = true

	updated, _ := m.Update(AuthResponseMsg{
		Result:      api.AuthResult{Success: true, Message: "User registered successfully"},
		Registering: true,
	})
	m = updated.(Model)

	if m.registering {
		t.Error("should switch back to login mode")
	}
	if m.sess.LoggedIn() {
		t.Error("registration must not authenticate")
	}
	if m.infoMessage == "" {
		t.Error("should prompt the user to log in")
	}
}

func TestReportsLoadedReplacesViewModel(t *testing.T) {
	m := newTestModel(session.Session{UserID: "d1", Role: session.RoleDoctor})
	m.selectedOwner = 5
	m.selectedReport = 9

	view := report.Normalize(report.DoctorPayload([]report.OwnerGroup{
		{OwnerID: "p1", DisplayName: "Pat One", Reports: []report.Report{{ID: "r1"}}},
	}))

	updated, _ := m.Update(ReportsLoadedMsg{View: view})
	m = updated.(Model)

	if !m.viewLoaded || m.fetching {
		t.Error("fetch should be settled")
	}
	if len(m.view.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(m.view.Groups))
	}
	if m.selectedOwner != 0 {
		t.Errorf("selectedOwner = %d, want clamped to 0", m.selectedOwner)
	}
	if m.selectedReport != 0 {
		t.Errorf("selectedReport = %d, want clamped to 0", m.selectedReport)
	}
}

func TestTransportErrorKeepsPriorView(t *testing.T) {
	m := newTestModel(session.Session{UserID: "d1", Role: session.RoleDoctor})
	m.view = report.View{Reports: []report.Report{{ID: "r1"}}}
	m.viewLoaded = true
	m.fetching = true

	updated, cmd := m.Update(TransportErrorMsg{Err: fmt.Errorf("connection refused")})
	m = updated.(Model)

	if len(m.view.Reports) != 1 {
		t.Error("stale-but-valid view model must stay intact")
	}
	if m.errorMessage == "" || !m.errorTransient {
		t.Error("transport error should surface transiently")
	}
	if m.fetching {
		t.Error("fetch should no longer be in flight")
	}
	if cmd == nil {
		t.Error("transient error should schedule its own clear")
	}

	updated, _ = m.Update(ClearTransientErrorMsg{})
	m = updated.(Model)
	if m.errorMessage != "" {
		t.Error("transient error should clear")
	}
}

func TestClearRequiresConfirmation(t *testing.T) {
	m := newTestModel(session.Session{UserID: "d1", Role: session.RoleDoctor})
	m.page = nav.PageDashboard
	m.view = report.Normalize(report.DoctorPayload([]report.OwnerGroup{
		{OwnerID: "p1", DisplayName: "Pat One", Reports: []report.Report{{ID: "r1"}}},
	}))
	m.viewLoaded = true

	updated, cmd := m.Update(keyMsg(KeyClearOwner))
	m = updated.(Model)
	if cmd != nil {
		t.Error("requesting a clear must not issue the delete yet")
	}
	if m.confirm != confirmOwner {
		t.Fatal("should be awaiting confirmation")
	}

	// Declining is a no-op.
	updated, cmd = m.Update(keyMsg(KeyConfirmNo))
	m = updated.(Model)
	if cmd != nil {
		t.Error("declined confirmation must be a no-op")
	}
	if m.confirm != confirmNone {
		t.Error("confirmation should be dismissed")
	}

	// Confirming issues the delete command.
	updated, _ = m.Update(keyMsg(KeyClearOwner))
	m = updated.(Model)
	updated, cmd = m.Update(keyMsg(KeyConfirmYes))
	m = updated.(Model)
	if cmd == nil {
		t.Error("confirmed clear should issue the delete")
	}
}

func TestClearDoneTriggersRefetch(t *testing.T) {
	m := newTestModel(session.Session{UserID: "p1", Role: session.RolePatient})
	m.view = report.View{Reports: []report.Report{{ID: "r1"}}}

	updated, cmd := m.Update(ClearDoneMsg{})
	m = updated.(Model)

	if cmd == nil {
		t.Error("delete must be followed by a full re-fetch")
	}
	if !m.fetching {
		t.Error("UI is not settled until the re-fetch lands")
	}
	if len(m.view.Reports) != 1 {
		t.Error("local state must not be spliced optimistically")
	}
}

func TestUploadSuccessNavigatesToResults(t *testing.T) {
	m := newTestModel(session.Session{UserID: "p1", Role: session.RolePatient})
	m.page = nav.PageUpload
	m.uploadBusy = true

	updated, cmd := m.Update(UploadResponseMsg{Report: report.Report{ID: "r9"}})
	m = updated.(Model)

	if m.page != nav.PageResults {
		t.Errorf("page = %v, want Results", m.page)
	}
	if cmd == nil {
		t.Error("results page needs the authoritative fetch")
	}
	if m.uploadBusy {
		t.Error("upload should be settled")
	}
}

func TestSymptomValidation(t *testing.T) {
	m := newTestModel(session.Session{UserID: "p1", Role: session.RolePatient})
	m.page = nav.PageSymptoms
	m.symptomsIn.SetValue("   ,  , ")

	updated, cmd := m.Update(keyMsg(KeyEnter))
	m = updated.(Model)

	if cmd != nil {
		t.Error("blank symptoms should not reach the service")
	}
	if m.formError == "" {
		t.Error("blank symptoms should set an inline error")
	}
}

func TestLogoutClearsSessionAndView(t *testing.T) {
	m := newTestModel(session.Session{UserID: "d1", Role: session.RoleDoctor})
	m.page = nav.PageDashboard
	m.view = report.View{Reports: []report.Report{{ID: "r1"}}}
	m.viewLoaded = true

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)

	if m.sess.LoggedIn() {
		t.Error("logout should clear the session")
	}
	if len(m.view.Reports) != 0 {
		t.Error("logout should drop the cached view model")
	}
	if m.page != nav.PageLogin {
		t.Errorf("page = %v, want Login", m.page)
	}
	if cmd == nil {
		t.Error("logout should erase the persisted credential pair")
	}
}

func TestPredictionResponseShowsClassifiedReport(t *testing.T) {
	m := newTestModel(session.Session{UserID: "p1", Role: session.RolePatient})
	m.page = nav.PageSymptoms
	m.predictBusy = true

	r := report.Report{Disease: "Dengue", Suggestion: &report.Suggestion{RiskLevel: "High"}}
	r.Risk = report.Classify(r)

	updated, _ := m.Update(PredictResponseMsg{Report: r})
	m = updated.(Model)

	if m.predictBusy {
		t.Error("prediction should be settled")
	}
	if m.prediction == nil || m.prediction.Risk != report.RiskHigh {
		t.Errorf("prediction = %+v", m.prediction)
	}
}

func TestParseSymptoms(t *testing.T) {
	got := parseSymptoms(" Fever, COUGH ,, cold ")
	want := []string{"fever", "cough", "cold"}
	if len(got) != len(want) {
		t.Fatalf("parseSymptoms = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseSymptoms[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPatientWrongPageRedirects(t *testing.T) {
	m := newTestModel(session.Session{UserID: "p1", Role: session.RolePatient})

	cmd := m.navigate(nav.PageDashboard)
	if m.page != nav.PageUpload {
		t.Errorf("page = %v, want Upload (patient landing)", m.page)
	}
	if cmd != nil {
		t.Error("upload landing needs no fetch")
	}
}
