package app

import (
	"github.com/zooportal/tui/internal/api"
	"github.com/zooportal/tui/internal/report"
	"github.com/zooportal/tui/internal/session"
)

// AuthResponseMsg carries the response to a login or register request.
type AuthResponseMsg struct {
	Result      api.AuthResult
	Registering bool
}

// SessionPersistedMsg is sent after the credential pair was written to (or
// cleared from) the local store.
type SessionPersistedMsg struct {
	Sess session.Session
	Err  error
}

// ReportsLoadedMsg replaces the whole report view model. Arrival order is
// accepted last-write-wins; there is no cancellation of in-flight fetches.
type ReportsLoadedMsg struct {
	View report.View
}

// PredictResponseMsg carries the symptom prediction result.
type PredictResponseMsg struct {
	Report report.Report
}

// UploadResponseMsg carries the analysis of an uploaded report file.
type UploadResponseMsg struct {
	Report report.Report
}

// ClearDoneMsg signals that a destructive clear succeeded on the server. The
// UI is not settled until the re-fetch it triggers has landed.
type ClearDoneMsg struct{}

// DownloadDoneMsg is sent after a report artifact was saved to disk.
type DownloadDoneMsg struct {
	Path string
}

// TransportErrorMsg surfaces a failed service call. The prior view model is
// left intact.
type TransportErrorMsg struct {
	Err error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
