package realtime

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/mssola/useragent"
	"github.com/oklog/ulid/v2"

	"eureka/pkg/domain"
)

// State is the liveness of a connection.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// DefaultSendBuffer is the outbound queue length used when none is configured.
const DefaultSendBuffer = 64

var (
	// ErrConnectionClosed is returned when writing to a connection that is not open.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrSendQueueFull is returned when a connection has not drained its
	// outbound queue. The frame is dropped.
	ErrSendQueueFull = errors.New("send queue full")
)

// socket is the slice of *websocket.Conn a Connection writes through.
type socket interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Connection is one admitted websocket. Data frames go through a bounded
// queue drained by writeLoop, the only data writer on the socket.
type Connection struct {
	ID          string
	Subject     domain.UserID
	TokenID     string
	Client      string
	ConnectedAt time.Time

	state        atomic.Int32
	sock         socket
	writeTimeout time.Duration
	out          chan []byte
	done         chan struct{}
}

func newConnection(sock socket, id Identity, userAgent string, writeTimeout time.Duration, sendBuffer int, now time.Time) *Connection {
	if sendBuffer < 0 {
		sendBuffer = 0
	}
	c := &Connection{
		ID:           ulid.Make().String(),
		Subject:      id.UserID,
		TokenID:      id.TokenID,
		Client:       summarizeUserAgent(userAgent),
		ConnectedAt:  now,
		sock:         sock,
		writeTimeout: writeTimeout,
		out:          make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	return c
}

// State reports the current liveness state.
func (c *Connection) State() State {
	return State(c.state.Load())
}

func (c *Connection) markOpen() {
	c.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen))
}

// markClosed returns true only for the call that performed the transition.
func (c *Connection) markClosed() bool {
	return State(c.state.Swap(int32(StateClosed))) != StateClosed
}

// Send queues one text frame without blocking. frame is shared across
// connections and must not be modified.
func (c *Connection) Send(frame []byte) error {
	if c.State() != StateOpen {
		return ErrConnectionClosed
	}
	select {
	case c.out <- frame:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// writeLoop drains the outbound queue until the connection closes. A failed
// write closes the socket, which ends the read loop and reaps the connection.
func (c *Connection) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.out:
			if c.writeTimeout > 0 {
				_ = c.sock.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.CloseWith(websocket.CloseInternalServerErr, "")
				return
			}
		}
	}
}

// Ping sends a keepalive ping. WriteControl may run concurrently with Send.
func (c *Connection) Ping() error {
	if c.State() != StateOpen {
		return ErrConnectionClosed
	}
	return c.sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.controlTimeout()))
}

// CloseWith sends a close frame with code and reason, then closes the
// socket. Safe to call more than once.
func (c *Connection) CloseWith(code int, reason string) {
	if !c.markClosed() {
		return
	}
	close(c.done)
	_ = c.sock.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(c.controlTimeout()))
	_ = c.sock.Close()
}

func (c *Connection) controlTimeout() time.Duration {
	if c.writeTimeout > 0 {
		return c.writeTimeout
	}
	return time.Second
}

// summarizeUserAgent shortens a User-Agent header for log lines.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return "unknown"
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		name, _ := ua.Browser()
		return "bot/" + name
	}
	name, version := ua.Browser()
	if name == "" {
		return truncate(raw, 64)
	}
	summary := name
	if version != "" {
		summary += "/" + version
	}
	if os := ua.OS(); os != "" {
		summary += " (" + os + ")"
	}
	return summary
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
