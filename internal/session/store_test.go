package session

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestRestoreEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")
	store := openTestStore(t, path)
	defer store.Close()

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if sess.LoggedIn() {
		t.Error("fresh store should restore a logged-out session")
	}
}

func TestLoginSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")

	store := openTestStore(t, path)
	if err := store.Login("u1", RoleDoctor); err != nil {
		t.Fatalf("login: %v", err)
	}
	store.Close()

	// Simulated process restart: a fresh Store over the same file.
	store = openTestStore(t, path)
	defer store.Close()

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if sess.UserID != "u1" {
		t.Errorf("userID = %q, want %q", sess.UserID, "u1")
	}
	if sess.Role != RoleDoctor {
		t.Errorf("role = %q, want %q", sess.Role, RoleDoctor)
	}
}

func TestLogoutClearsPersistedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")

	store := openTestStore(t, path)
	if err := store.Login("u1", RolePatient); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := store.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	store.Close()

	store = openTestStore(t, path)
	defer store.Close()

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if sess.LoggedIn() {
		t.Errorf("session after logout = %+v, want empty", sess)
	}
}

func TestRestoreTreatsPartialRowAsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")
	store := openTestStore(t, path)
	defer store.Close()

	// A half-written credential pair must never restore as authenticated.
	if _, err := store.db.Exec(
		`INSERT INTO credentials (id, user_id, role) VALUES (1, 'u1', '')`); err != nil {
		t.Fatalf("seed partial row: %v", err)
	}

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if sess.LoggedIn() {
		t.Error("partial row should restore as logged out")
	}
	if sess.UserID != "" {
		t.Errorf("userID = %q, want empty", sess.UserID)
	}
}

func TestLoginRejectsIncompleteIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")
	store := openTestStore(t, path)
	defer store.Close()

	if err := store.Login("", RolePatient); err == nil {
		t.Error("login with empty userID should fail")
	}
	if err := store.Login("u1", Role("admin")); err == nil {
		t.Error("login with unknown role should fail")
	}
}

func TestLoginOverwritesPreviousIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")
	store := openTestStore(t, path)
	defer store.Close()

	if err := store.Login("u1", RolePatient); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if err := store.Login("d1", RoleDoctor); err != nil {
		t.Fatalf("second login: %v", err)
	}

	sess, err := store.Restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if sess.UserID != "d1" || sess.Role != RoleDoctor {
		t.Errorf("session = %+v, want d1/doctor", sess)
	}
}
