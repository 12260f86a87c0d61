package session

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"educaconecta/internal/api"
	"educaconecta/internal/devserver"
	"educaconecta/internal/logging"
)

func startBackend(t *testing.T) *api.Client {
	t.Helper()
	store, err := devserver.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(devserver.NewServer(store, logging.Discard(), t.TempDir()).Router())
	t.Cleanup(server.Close)

	return api.New(server.URL, 5*time.Second)
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	return NewManager(startBackend(t), NewFileTokenStore(dir)), dir
}

func TestSignupSignsInAndPersistsToken(t *testing.T) {
	m, dir := newTestManager(t)

	user, err := m.Signup(context.Background(), "ana@example.com", "secret1", "Ana", api.RoleLearner)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Name != "Ana" || user.Role != api.RoleLearner {
		t.Errorf("user = %+v", user)
	}

	state := m.State()
	if state.Phase != SignedIn {
		t.Errorf("phase = %v, want SignedIn", state.Phase)
	}
	if state.Token == "" {
		t.Error("token should be set")
	}

	data, err := os.ReadFile(filepath.Join(dir, "token"))
	if err != nil {
		t.Fatalf("token file: %v", err)
	}
	if len(data) == 0 {
		t.Error("persisted token is empty")
	}
}

func TestLoginRejectsBadCredentialsWithoutPersisting(t *testing.T) {
	m, dir := newTestManager(t)

	if _, err := m.Signup(context.Background(), "ana@example.com", "secret1", "Ana", api.RoleLearner); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err := m.Login(context.Background(), "ana@example.com", "not-the-password")
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if !api.IsUnauthorized(err) {
		t.Errorf("expected 401, got %v", err)
	}
	if m.State().Phase != SignedOut {
		t.Errorf("phase = %v, want SignedOut", m.State().Phase)
	}
	if _, err := os.Stat(filepath.Join(dir, "token")); !os.IsNotExist(err) {
		t.Error("no token should be persisted after a failed login")
	}
}

func TestLoginValidatesBeforeSending(t *testing.T) {
	// Backend is unreachable on purpose; validation must trip first.
	m := NewManager(api.New("http://localhost:0", time.Second), NewFileTokenStore(t.TempDir()))

	cases := []struct {
		name            string
		email, password string
	}{
		{"empty email", "", "secret1"},
		{"empty password", "ana@example.com", ""},
		{"short password", "ana@example.com", "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Login(context.Background(), tc.email, tc.password)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if _, ok := err.(*ValidationError); !ok {
				t.Errorf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestRestoreWithSavedToken(t *testing.T) {
	client := startBackend(t)
	dir := t.TempDir()
	store := NewFileTokenStore(dir)

	first := NewManager(client, store)
	if _, err := first.Signup(context.Background(), "bia@example.com", "secret1", "Bia", api.RoleVolunteer); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// A fresh manager over the same store models an app relaunch.
	second := NewManager(client, store)
	if err := second.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	state := second.State()
	if state.Phase != SignedIn {
		t.Errorf("phase = %v, want SignedIn", state.Phase)
	}
	if state.Token == "" {
		t.Error("restored token is empty")
	}
}

func TestRestoreWithoutTokenEndsSignedOut(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if m.State().Phase != SignedOut {
		t.Errorf("phase = %v, want SignedOut", m.State().Phase)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	m, dir := newTestManager(t)
	if _, err := m.Signup(context.Background(), "ana@example.com", "secret1", "Ana", api.RoleLearner); err != nil {
		t.Fatalf("signup: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := m.Logout(); err != nil {
			t.Fatalf("logout #%d: %v", i+1, err)
		}
		if m.State().Phase != SignedOut {
			t.Errorf("phase after logout #%d = %v", i+1, m.State().Phase)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "token")); !os.IsNotExist(err) {
		t.Error("token file should be gone after logout")
	}
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "nested", "data"))

	if token, err := store.Load(); err != nil || token != "" {
		t.Fatalf("load on empty store = %q, %v", token, err)
	}
	if err := store.Save("tok-abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, err := store.Load()
	if err != nil || token != "tok-abc" {
		t.Fatalf("load = %q, %v", token, err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
