// Package session owns the authentication state machine: restore, sign-in,
// sign-out and the process-wide session snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/publiflow/publiflow-client/internal/api"
	"github.com/publiflow/publiflow-client/internal/errs"
	"github.com/publiflow/publiflow-client/internal/model"
)

// Store persists credentials across process restarts.
type Store interface {
	Save(token string, user model.UserProfile) error
	Load() (string, model.UserProfile, error)
	Clear() error
}

// Dispatcher is the request surface the manager authenticates and decorates.
type Dispatcher interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	SetToken(token string)
	ClearToken()
}

// Manager is the single owner of the process-wide Session. Other components
// read the session through Snapshot; only Manager methods mutate it.
type Manager struct {
	store Store
	disp  Dispatcher
	log   *zap.Logger

	mu      sync.Mutex
	sess    model.Session
	loading bool
	busy    bool

	loadDone sync.Once
}

// NewManager constructs a Manager. The session starts empty with the loading
// flag set; Restore must run before route decisions are evaluated.
func NewManager(store Store, disp Dispatcher, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, disp: disp, log: log, loading: true}
}

// Restore loads persisted credentials, if any, into the current session and
// installs the bearer token on the dispatcher. Missing, unparseable or
// expired credentials leave the session empty. Restore never fails the
// caller; it flips the loading flag exactly once on completion.
func (m *Manager) Restore(ctx context.Context) {
	defer m.loadDone.Do(func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	})

	token, user, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, errs.ErrRestoreSkipped) {
			m.log.Warn("credential load", zap.Error(err))
		}
		return
	}
	if expired(token) {
		m.log.Info("persisted token expired, signing out")
		_ = m.store.Clear()
		return
	}

	m.disp.SetToken(token)
	m.mu.Lock()
	m.sess = model.Session{User: &user, Token: token}
	m.mu.Unlock()
	m.log.Info("session restored", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role())))
}

// expired reports whether the bearer token carries an exp claim in the past.
// Tokens without claims are kept; the server is the authority either way.
func expired(token string) bool {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	return claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time)
}

// SignIn authenticates against the remote service and, on success, installs
// the session, decorates the dispatcher and persists the credentials. The
// in-memory session is updated before persistence; a failed write is logged
// but does not fail the sign-in. At most one SignIn may be in flight.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return errs.ErrSessionBusy
	}
	m.busy = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.busy = false
		m.mu.Unlock()
	}()

	res, err := m.disp.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fmt.Errorf("%w: %s", errs.ErrAuthenticationFailed, apiErr.Message)
		}
		return fmt.Errorf("%w: %v", errs.ErrAuthenticationFailed, err)
	}
	if res.Token == "" || res.User.ID == 0 {
		return fmt.Errorf("%w: malformed login response", errs.ErrAuthenticationFailed)
	}

	m.disp.SetToken(res.Token)
	m.mu.Lock()
	m.sess = model.Session{User: &res.User, Token: res.Token}
	m.mu.Unlock()

	if err := m.store.Save(res.Token, res.User); err != nil {
		m.log.Warn("credential save", zap.Error(err))
	}
	m.log.Info("signed in", zap.Int64("user_id", res.User.ID), zap.String("role", string(res.User.Role())))
	return nil
}

// SignOut clears the store, the in-memory session and the dispatcher token.
// The three steps are independent; a failing store never blocks the session
// from becoming empty.
func (m *Manager) SignOut(ctx context.Context) {
	if err := m.store.Clear(); err != nil {
		m.log.Warn("credential clear", zap.Error(err))
	}
	m.mu.Lock()
	m.sess = model.Session{}
	m.mu.Unlock()
	m.disp.ClearToken()
	m.log.Info("signed out")
}

// Snapshot returns the current session value.
func (m *Manager) Snapshot() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Loading reports whether Restore has not yet completed.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}
