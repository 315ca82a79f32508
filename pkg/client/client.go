package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

// State is where the client sits in its session lifecycle.
type State int

const (
	// StateUnknown: the store has not been read yet.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Client talks to a taskhub server on behalf of one user. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      Store

	mu      sync.RWMutex
	state   State
	session *Session
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 10s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a client in StateUnknown. A nil store keeps the session in memory.
func New(baseURL string, store Store, opts ...Option) *Client {
	if store == nil {
		store = NewMemoryStore()
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		store:      store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Session returns a copy of the current session, or nil.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Restore reads the stored session without contacting the server. A store
// that cannot be read leaves the client anonymous and reports why.
func (c *Client) Restore() error {
	s, err := c.store.Load()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil || s == nil {
		c.state, c.session = StateAnonymous, nil
		return err
	}
	c.state, c.session = StateAuthenticated, s
	return nil
}

// Login exchanges credentials for a session and persists it.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var res authResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &res, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return c.establish(res)
}

// Register creates an account; registration signs the new user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var res authResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &res, http.StatusCreated); err != nil {
		return nil, err
	}
	return c.establish(res)
}

// Logout forgets the session locally. Tokens are stateless, so there is no
// server call. The client ends up anonymous even if the store fails.
func (c *Client) Logout() error {
	c.mu.Lock()
	c.state, c.session = StateAnonymous, nil
	c.mu.Unlock()
	return c.store.Clear()
}

func (c *Client) establish(res authResult) (*User, error) {
	if res.AccessToken == "" {
		return nil, errors.New("client: server returned no access token")
	}
	s := &Session{Token: res.AccessToken, User: res.User}
	if err := c.store.Save(s); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state, c.session = StateAuthenticated, s
	c.mu.Unlock()

	u := res.User
	return &u, nil
}

// token returns the bearer token for a protected call.
func (c *Client) token() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != StateAuthenticated || c.session == nil {
		return "", ErrNotAuthenticated
	}
	return c.session.Token, nil
}

// expire drops the session if it still holds token. A concurrent login that
// already replaced it is left alone.
func (c *Client) expire(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || c.session.Token != token {
		return
	}
	c.state, c.session = StateAnonymous, nil
	_ = c.store.Clear()
}
