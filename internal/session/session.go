// Package session owns the authentication lifecycle: restoring a persisted
// token at launch, login/signup/logout, and a read-only state snapshot for
// rendering decisions. It is an explicit object handed to the layers that
// need it, not a global.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"educaconecta/internal/api"
)

// Phase is the session lifecycle state.
type Phase int

const (
	Uninitialized Phase = iota
	Restoring
	SignedOut
	SignedIn
)

func (p Phase) String() string {
	switch p {
	case Restoring:
		return "restoring"
	case SignedOut:
		return "signed out"
	case SignedIn:
		return "signed in"
	default:
		return "uninitialized"
	}
}

// State is a read-only snapshot of the session. After a Restore with a
// persisted token, Phase is SignedIn but User stays nil until the next
// authenticated call fills it in or fails.
type State struct {
	Phase Phase
	Token string
	User  *api.User
}

// ValidationError is a pre-flight failure. It is reported immediately and
// never sent to the server.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

const minPasswordLen = 6

// Manager drives the session state machine. All mutations go through
// Restore, Login, Signup and Logout; nothing else writes session state.
type Manager struct {
	client *api.Client
	store  TokenStore

	mu    sync.Mutex
	state State
}

func NewManager(client *api.Client, store TokenStore) *Manager {
	return &Manager{client: client, store: store}
}

// State returns a snapshot. The embedded user is a copy.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.state
	if m.state.User != nil {
		user := *m.state.User
		snap.User = &user
	}
	return snap
}

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *api.User {
	return m.State().User
}

// Restore reads the persisted token at process start. A present token is
// treated as valid optimistically; an expired one is only discovered on the
// next failing API call. An absent token means SignedOut.
func (m *Manager) Restore() error {
	m.mu.Lock()
	m.state.Phase = Restoring
	m.mu.Unlock()

	token, err := m.store.Load()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = State{Phase: SignedOut}
		return fmt.Errorf("restore session: %w", err)
	}
	if token == "" {
		m.state = State{Phase: SignedOut}
		return nil
	}
	m.client.SetToken(token)
	m.state = State{Phase: SignedIn, Token: token}
	return nil
}

// Login signs a user in. On failure the session state is unchanged and the
// API error propagates.
func (m *Manager) Login(ctx context.Context, email, password string) (*api.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	token, err := m.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	return m.signIn(token)
}

// Signup creates an account and signs it in, same contract as Login.
func (m *Manager) Signup(ctx context.Context, email, password, name string, role api.UserRole) (*api.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Reason: "name is required"}
	}
	if role != api.RoleLearner && role != api.RoleVolunteer {
		return nil, &ValidationError{Reason: "role must be learner or volunteer"}
	}
	token, err := m.client.Signup(ctx, api.SignupRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
		Name:     strings.TrimSpace(name),
		Role:     role,
	})
	if err != nil {
		return nil, err
	}
	return m.signIn(token)
}

// signIn persists the token, arms the client header and transitions to
// SignedIn. When persisting fails the sign-in is rolled back so the state
// machine and the store never disagree.
func (m *Manager) signIn(token *api.Token) (*api.User, error) {
	if err := m.store.Save(token.AccessToken); err != nil {
		m.client.ClearToken()
		return nil, err
	}
	m.client.SetToken(token.AccessToken)

	user := token.User
	m.mu.Lock()
	m.state = State{Phase: SignedIn, Token: token.AccessToken, User: &user}
	m.mu.Unlock()
	return &user, nil
}

// Logout clears the persisted token and the in-memory header. Safe to call
// when already signed out.
func (m *Manager) Logout() error {
	err := m.store.Clear()
	m.client.ClearToken()

	m.mu.Lock()
	m.state = State{Phase: SignedOut}
	m.mu.Unlock()
	return err
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &ValidationError{Reason: "email is required"}
	}
	if password == "" {
		return &ValidationError{Reason: "password is required"}
	}
	if len(password) < minPasswordLen {
		return &ValidationError{Reason: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}
	return nil
}
