// Package api provides the HTTP client for the zoonotic report portal
// service. Payloads are decoded into the report package's tagged union at the
// boundary; nothing downstream branches on raw JSON shape.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zooportal/tui/internal/report"
	"github.com/zooportal/tui/internal/session"
)

// APIError is a non-2xx or otherwise failed service response. The prior view
// model stays intact when one of these surfaces; it is never fatal.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("service error (%d)", e.Status)
}

// Client talks to the portal service.
type Client struct {
	base string
	http *http.Client
	log  *logrus.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  logger,
	}
}

// AuthResult is the response to register and login requests.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// statusResult is the generic {success, message} envelope of mutating calls.
type statusResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password string, role session.Role) (AuthResult, error) {
	var out AuthResult
	err := c.postJSON(ctx, "/register", credentials{username, password, string(role)}, &out)
	return out, err
}

// Login authenticates and returns the identity the service assigned.
func (c *Client) Login(ctx context.Context, username, password string, role session.Role) (AuthResult, error) {
	var out AuthResult
	err := c.postJSON(ctx, "/login", credentials{username, password, string(role)}, &out)
	return out, err
}

// PatientReports fetches the flat report list for one owner.
func (c *Client) PatientReports(ctx context.Context, userID string) (report.Payload, error) {
	q := url.Values{"role": {"user"}, "user_id": {userID}}
	var reports []report.Report
	if err := c.getJSON(ctx, "/reports?"+q.Encode(), &reports); err != nil {
		return report.Payload{}, err
	}
	return report.PatientPayload(reports), nil
}

// DoctorReports fetches the grouped per-owner shape.
func (c *Client) DoctorReports(ctx context.Context) (report.Payload, error) {
	q := url.Values{"role": {"doctor"}}
	var groups []report.OwnerGroup
	if err := c.getJSON(ctx, "/reports?"+q.Encode(), &groups); err != nil {
		return report.Payload{}, err
	}
	return report.DoctorPayload(groups), nil
}

// Reports fetches whichever payload shape matches the session's role.
func (c *Client) Reports(ctx context.Context, sess session.Session) (report.Payload, error) {
	if sess.Role == session.RoleDoctor {
		return c.DoctorReports(ctx)
	}
	return c.PatientReports(ctx, sess.UserID)
}

// ClearOwnerReports deletes every report belonging to one owner. Callers must
// re-fetch afterwards; the client never splices local state.
func (c *Client) ClearOwnerReports(ctx context.Context, userID string) error {
	q := url.Values{"user_id": {userID}}
	return c.delete(ctx, "/reports?"+q.Encode())
}

// ClearAllReports deletes all reports for all owners.
func (c *Client) ClearAllReports(ctx context.Context) error {
	return c.delete(ctx, "/doctor/clear_all_reports")
}

// PredictSymptoms submits a symptom list and returns the prediction report.
func (c *Client) PredictSymptoms(ctx context.Context, userID string, symptoms []string) (report.Report, error) {
	body := struct {
		UserID   string   `json:"user_id"`
		Symptoms []string `json:"symptoms"`
	}{userID, symptoms}

	var out report.Report
	err := c.postJSON(ctx, "/predict_symptoms", body, &out)
	return out, err
}

// Upload sends a report file for analysis and returns the resulting report.
func (c *Client) Upload(ctx context.Context, path, userID string) (report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return report.Report{}, fmt.Errorf("open report file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return report.Report{}, fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return report.Report{}, fmt.Errorf("read report file: %w", err)
	}
	if err := w.WriteField("user_id", userID); err != nil {
		return report.Report{}, fmt.Errorf("build multipart form: %w", err)
	}
	if err := w.Close(); err != nil {
		return report.Report{}, fmt.Errorf("build multipart form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &buf)
	if err != nil {
		return report.Report{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out report.Report
	if err := c.do(req, &out); err != nil {
		return report.Report{}, err
	}
	return out, nil
}

// DownloadReport fetches the rendered report artifact. The bytes are opaque
// to the client.
func (c *Client) DownloadReport(ctx context.Context, id string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/download_report/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read report artifact: %w", err)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	var out statusResult
	if err := c.do(req, &out); err != nil {
		return err
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logRequest(req, 0, start, err)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logRequest(req, resp.StatusCode, start, err)
		return fmt.Errorf("read response body: %w", err)
	}

	c.logRequest(req, resp.StatusCode, start, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: serviceMessage(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "malformed response body"}
	}
	return nil
}

// serviceMessage pulls the human-readable message out of an error envelope.
// The service uses "message" for auth failures and "error" elsewhere.
func serviceMessage(body []byte) string {
	var env statusResult
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}

func (c *Client) logRequest(req *http.Request, status int, start time.Time, err error) {
	if c.log == nil {
		return
	}
	fields := logrus.Fields{
		"method":     req.Method,
		"path":       req.URL.Path,
		"status":     status,
		"duration":   time.Since(start).String(),
		"request_id": req.Header.Get("X-Request-ID"),
	}
	if err != nil {
		c.log.WithFields(fields).WithError(err).Warn("portal request failed")
		return
	}
	c.log.WithFields(fields).Debug("portal request")
}
