// Package session holds who is using the app and the credential their requests
// carry.
//
// A Store is created once per front-end process and passed to whatever needs
// it. Every change to the token goes through one operation that updates the
// in-memory session and the shared client's Authorization header together, so
// no request can leave with a header that disagrees with the session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"farmtoclick/pkg/apiclient"
	"farmtoclick/pkg/kvstore"
)

// Keys the session occupies in persisted storage.
const (
	TokenKey = "auth_token"
	UserKey  = "auth_user"
)

const invalidateTimeout = 5 * time.Second

// ErrNotAuthenticated is returned by operations that need a session when there
// is none, or when the session ended while the request was in flight.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	Token    string
	Identity *Identity
}

// Authenticated reports whether the snapshot holds a session.
func (s Snapshot) Authenticated() bool {
	return s.Token != "" && s.Identity != nil
}

// RegisterFields is the registration payload.
type RegisterFields struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

type profileResponse struct {
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger for recovered storage failures and session events.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the single source of truth for the current session.
type Store struct {
	client  *apiclient.Client
	storage kvstore.Store
	logger  *log.Logger

	mu        sync.RWMutex
	token     string
	identity  *Identity
	gen       uint64
	listeners []func(Snapshot)
}

// New creates an empty Store and registers it to be cleared whenever client
// receives a 401.
func New(client *apiclient.Client, storage kvstore.Store, opts ...Option) *Store {
	s := &Store{
		client:  client,
		storage: storage,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	client.OnUnauthorized(s.invalidate)
	return s
}

// OnChange registers fn to receive a snapshot after every credential or
// identity change, including invalidation after a 401.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Token returns the bearer token, or "" without a session.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns a copy of the signed-in identity, or nil.
func (s *Store) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIdentity(s.identity)
}

// Authenticated reports whether a session is present.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.identity != nil
}

// Snapshot returns a copy of the whole session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Restore loads a previously persisted session. Anything missing, malformed
// or unreadable leaves the session empty; the reason is logged.
func (s *Store) Restore(ctx context.Context) bool {
	token, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Printf("Failed to read persisted token: %v", err)
		}
		return false
	}
	raw, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Printf("Failed to read persisted identity: %v", err)
		}
		return false
	}
	if token == "" {
		return false
	}
	id, err := decodeIdentity([]byte(raw))
	if err != nil {
		s.logger.Printf("Discarding malformed persisted identity: %v", err)
		return false
	}

	s.setCredential(token, &id)
	return true
}

// Login authenticates with email and password. Rejected credentials return
// false with a nil error; transport failures and server errors are returned
// so the caller can tell "wrong password" from "no connection".
func (s *Store) Login(ctx context.Context, email, password string) (bool, error) {
	var resp authResponse
	err := s.client.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &resp)
	return s.completeAuth(ctx, "login", resp, err)
}

// Register creates an account and signs it in, with the same contract as Login.
func (s *Store) Register(ctx context.Context, fields RegisterFields) (bool, error) {
	var resp authResponse
	err := s.client.Post(ctx, "/auth/register", fields, &resp)
	return s.completeAuth(ctx, "register", resp, err)
}

func (s *Store) completeAuth(ctx context.Context, op string, resp authResponse, err error) (bool, error) {
	if err != nil {
		if apiclient.IsClientError(err) {
			s.logger.Printf("%s rejected: %v", op, err)
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if resp.Token == "" || len(resp.User) == 0 {
		return false, fmt.Errorf("%s: response is missing token or user", op)
	}
	id, err := decodeIdentity(resp.User)
	if err != nil {
		return false, fmt.Errorf("%s: failed to decode user: %w", op, err)
	}

	s.setCredential(resp.Token, &id)
	s.persist(ctx, resp.Token, &id)
	return true, nil
}

// UpdateProfile sends a partial update. The identity the backend returns is
// merged over the local one; the submitted values are never applied directly.
// The token does not change.
func (s *Store) UpdateProfile(ctx context.Context, fields map[string]any) error {
	gen, ok := s.generation()
	if !ok {
		return ErrNotAuthenticated
	}
	var resp profileResponse
	if err := s.client.Put(ctx, "/user/profile", fields, &resp); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return s.applyIdentity(ctx, gen, resp.User, true)
}

// UpdateProfileWithPicture sends a partial update with a new profile picture
// as multipart form data.
func (s *Store) UpdateProfileWithPicture(ctx context.Context, fields map[string]string, filename string, picture io.Reader) error {
	gen, ok := s.generation()
	if !ok {
		return ErrNotAuthenticated
	}
	form := apiclient.NewForm()
	for k, v := range fields {
		form.Field(k, v)
	}
	form.File("profile_picture", filename, picture)

	var resp profileResponse
	if err := s.client.Put(ctx, "/user/profile", form, &resp); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return s.applyIdentity(ctx, gen, resp.User, true)
}

// RefreshIdentity re-fetches the identity and replaces the local copy, for
// state only the backend knows (verification approved by an admin, role
// changes).
func (s *Store) RefreshIdentity(ctx context.Context) error {
	gen, ok := s.generation()
	if !ok {
		return ErrNotAuthenticated
	}
	var raw json.RawMessage
	if err := s.client.Get(ctx, "/user/profile", &raw); err != nil {
		return fmt.Errorf("refresh identity: %w", err)
	}
	return s.applyIdentity(ctx, gen, raw, false)
}

// Logout clears the session. It cannot fail: once memory and the header are
// cleared the session is over for this process, so a storage error is only
// logged.
func (s *Store) Logout(ctx context.Context) {
	s.setCredential("", nil)
	if err := s.storage.Delete(ctx, TokenKey, UserKey); err != nil {
		s.logger.Printf("Failed to clear persisted session: %v", err)
	}
}

// invalidate runs from the client's 401 interceptor.
func (s *Store) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()
	s.logger.Printf("Session invalidated by the backend")
	s.Logout(ctx)
}

// setCredential is the only place the token changes. The header update happens
// under the same lock as the in-memory update.
func (s *Store) setCredential(token string, id *Identity) {
	s.mu.Lock()
	if token == "" || id == nil {
		token, id = "", nil
	}
	s.token = token
	s.identity = copyIdentity(id)
	s.gen++
	s.client.SetBearerToken(token)
	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// applyIdentity installs an identity from the backend, unless the session
// changed since gen was read.
func (s *Store) applyIdentity(ctx context.Context, gen uint64, raw json.RawMessage, merge bool) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errors.New("profile response is missing the user")
	}

	s.mu.Lock()
	if s.gen != gen || s.identity == nil {
		s.mu.Unlock()
		s.logger.Printf("Session changed while the profile request was in flight, dropping response")
		return ErrNotAuthenticated
	}

	var (
		next Identity
		err  error
	)
	if merge {
		next, err = mergeIdentity(*s.identity, raw)
	} else {
		next, err = decodeIdentity(raw)
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to decode user: %w", err)
	}
	s.identity = &next
	snap := s.snapshotLocked()
	listeners := s.listeners
	s.mu.Unlock()

	s.persistIdentity(ctx, &next)
	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}

func (s *Store) generation() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen, s.token != "" && s.identity != nil
}

func (s *Store) persist(ctx context.Context, token string, id *Identity) {
	s.persistIdentity(ctx, id)
	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		s.logger.Printf("Failed to persist token: %v", err)
	}
}

func (s *Store) persistIdentity(ctx context.Context, id *Identity) {
	data, err := json.Marshal(id)
	if err != nil {
		s.logger.Printf("Failed to encode identity: %v", err)
		return
	}
	if err := s.storage.Set(ctx, UserKey, string(data)); err != nil {
		s.logger.Printf("Failed to persist identity: %v", err)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Token: s.token, Identity: copyIdentity(s.identity)}
}

func copyIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	if id.ProfilePicture != nil {
		pic := *id.ProfilePicture
		c.ProfilePicture = &pic
	}
	return &c
}
