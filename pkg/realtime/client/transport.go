package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"eureka/pkg/realtime/wire"
)

// State is the transport's connection lifecycle:
// disconnected -> connecting -> open -> (closed | errored) -> disconnected.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateErrored
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateErrored:
		return "errored"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNoCredential means there is no token to connect with; the user must
	// sign in first.
	ErrNoCredential = errors.New("realtime: no credential")
	// ErrUnauthorized means the server refused the credential. Retrying with
	// the same token cannot succeed.
	ErrUnauthorized = errors.New("realtime: credential rejected")

	errTransportClosed = errors.New("realtime: transport closed")
)

// CredentialSource yields the bearer token to connect with. An empty token
// means signed out.
type CredentialSource interface {
	Credential(ctx context.Context) (string, error)
}

// StaticCredential is a fixed token.
type StaticCredential string

func (c StaticCredential) Credential(context.Context) (string, error) { return string(c), nil }

// Transport keeps one websocket open to the server and feeds decoded events
// into a Bus, reconnecting with exponential backoff after drops. Events sent
// while disconnected are lost.
type Transport struct {
	url        string
	creds      CredentialSource
	bus        *Bus
	logger     *slog.Logger
	dialer     *websocket.Dialer
	newBackOff func() backoff.BackOff

	mu        sync.Mutex
	state     State
	hooks     []func(State)
	conn      *websocket.Conn
	closing   bool
	closeOnce sync.Once
	closed    chan struct{}
}

type Option func(*Transport)

func WithDialer(d *websocket.Dialer) Option {
	return func(t *Transport) { t.dialer = d }
}

// WithBackOff sets the reconnect policy. The factory is called once per Run.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(t *Transport) { t.newBackOff = newBackOff }
}

// NewTransport builds a transport for the websocket endpoint at rawURL
// (ws:// or wss://).
func NewTransport(rawURL string, creds CredentialSource, bus *Bus, logger *slog.Logger, opts ...Option) *Transport {
	t := &Transport{
		url:        rawURL,
		creds:      creds,
		bus:        bus,
		logger:     logger,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		newBackOff: defaultBackOff,
		closed:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// OnStateChange registers fn to observe every transition. Hooks run
// synchronously on the goroutine that changed the state.
func (t *Transport) OnStateChange(fn func(State)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, fn)
}

func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Transport) setState(s State) {
	t.mu.Lock()
	if t.state == s {
		t.mu.Unlock()
		return
	}
	t.state = s
	hooks := slices.Clone(t.hooks)
	t.mu.Unlock()
	for _, fn := range hooks {
		fn(s)
	}
}

// Run connects and reads until ctx ends, Close is called, the credential is
// missing or rejected, or the backoff policy gives up.
func (t *Transport) Run(ctx context.Context) error {
	b := backoff.WithContext(t.newBackOff(), ctx)
	for {
		if done, err := t.stopped(ctx); done {
			return err
		}
		token, err := t.creds.Credential(ctx)
		if err != nil {
			return fmt.Errorf("load credential: %w", err)
		}
		if token == "" {
			return ErrNoCredential
		}

		t.setState(StateConnecting)
		conn, resp, err := t.dialer.DialContext(ctx, t.endpoint(token), nil)
		if err != nil {
			if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
				t.setState(StateDisconnected)
				return ErrUnauthorized
			}
			if done, err := t.stopped(ctx); done {
				return err
			}
			t.logger.Warn("realtime dial failed", "error", err)
			t.setState(StateErrored)
		} else {
			err = t.session(ctx, conn, b)
			if done, stopErr := t.stopped(ctx); done {
				return stopErr
			}
			if isPolicyViolation(err) {
				t.setState(StateErrored)
				t.setState(StateDisconnected)
				return ErrUnauthorized
			}
			t.logger.Warn("realtime connection lost", "error", err)
			t.setState(StateErrored)
		}
		t.setState(StateDisconnected)

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			if done, err := t.stopped(ctx); done {
				return err
			}
			return fmt.Errorf("realtime: giving up reconnecting: %w", err)
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			t.setState(StateClosed)
			return ctx.Err()
		case <-t.closed:
			timer.Stop()
			t.setState(StateClosed)
			return nil
		}
	}
}

// session reads frames until the connection ends and returns the read error.
func (t *Transport) session(ctx context.Context, conn *websocket.Conn, b backoff.BackOff) error {
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		_ = conn.Close()
		return errTransportClosed
	}
	t.conn = conn
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.conn = nil
		t.mu.Unlock()
		_ = conn.Close()
	}()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	t.setState(StateOpen)
	b.Reset()
	t.logger.Info("realtime connected")

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		env, err := wire.Decode(frame)
		if err != nil {
			t.logger.Warn("dropping malformed frame", "error", err, "size", len(frame))
			continue
		}
		t.bus.Dispatch(env.Type, env.Payload)
	}
}

// stopped reports whether Run should end because of ctx or Close, and sets
// the terminal state.
func (t *Transport) stopped(ctx context.Context) (bool, error) {
	t.mu.Lock()
	closing := t.closing
	t.mu.Unlock()
	if closing {
		t.setState(StateClosed)
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		t.setState(StateClosed)
		return true, err
	}
	return false, nil
}

// Close ends Run. An open connection gets a normal close frame so the server
// reaps it promptly.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closing = true
		conn := t.conn
		t.mu.Unlock()
		close(t.closed)
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		}
	})
	return nil
}

func (t *Transport) endpoint(token string) string {
	u, err := url.Parse(t.url)
	if err != nil {
		return t.url
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func isPolicyViolation(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce) && ce.Code == websocket.ClosePolicyViolation
}
