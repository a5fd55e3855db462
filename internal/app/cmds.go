package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zooportal/tui/internal/api"
	"github.com/zooportal/tui/internal/report"
	"github.com/zooportal/tui/internal/session"
)

// Every service operation is an asynchronous command that suspends only its
// own call site and completes by delivering a typed message. View-model
// values are replaced whole when those messages arrive, never spliced.

func authCmd(client *api.Client, username, password string, role session.Role, registering bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var (
			res api.AuthResult
			err error
		)
		if registering {
			res, err = client.Register(ctx, username, password, role)
		} else {
			res, err = client.Login(ctx, username, password, role)
		}
		if err != nil {
			return TransportErrorMsg{Err: err}
		}
		return AuthResponseMsg{Result: res, Registering: registering}
	}
}

func persistSessionCmd(store *session.Store, sess session.Session) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return SessionPersistedMsg{Sess: sess}
		}
		return SessionPersistedMsg{Sess: sess, Err: store.Login(sess.UserID, sess.Role)}
	}
}

func logoutCmd(store *session.Store) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return SessionPersistedMsg{}
		}
		return SessionPersistedMsg{Err: store.Logout()}
	}
}

func fetchReportsCmd(client *api.Client, sess session.Session) tea.Cmd {
	return func() tea.Msg {
		payload, err := client.Reports(context.Background(), sess)
		if err != nil {
			return TransportErrorMsg{Err: err}
		}
		return ReportsLoadedMsg{View: report.Normalize(payload)}
	}
}

func predictCmd(client *api.Client, userID string, symptoms []string) tea.Cmd {
	return func() tea.Msg {
		r, err := client.PredictSymptoms(context.Background(), userID, symptoms)
		if err != nil {
			return TransportErrorMsg{Err: err}
		}
		r.Risk = report.Classify(r)
		return PredictResponseMsg{Report: r}
	}
}

func uploadCmd(client *api.Client, path, userID string) tea.Cmd {
	return func() tea.Msg {
		r, err := client.Upload(context.Background(), path, userID)
		if err != nil {
			return TransportErrorMsg{Err: err}
		}
		r.Risk = report.Classify(r)
		return UploadResponseMsg{Report: r}
	}
}

func clearOwnerCmd(client *api.Client, userID string) tea.Cmd {
	return func() tea.Msg {
		if err := client.ClearOwnerReports(context.Background(), userID); err != nil {
			return TransportErrorMsg{Err: err}
		}
		return ClearDoneMsg{}
	}
}

func clearAllCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		if err := client.ClearAllReports(context.Background()); err != nil {
			return TransportErrorMsg{Err: err}
		}
		return ClearDoneMsg{}
	}
}

func downloadCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		data, err := client.DownloadReport(context.Background(), id)
		if err != nil {
			return TransportErrorMsg{Err: err}
		}
		path := fmt.Sprintf("report-%s.pdf", id)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return TransportErrorMsg{Err: fmt.Errorf("save report artifact: %w", err)}
		}
		return DownloadDoneMsg{Path: path}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}
