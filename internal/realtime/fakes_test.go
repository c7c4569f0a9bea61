package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"eureka/pkg/domain"
)

var errBrokenPipe = errors.New("broken pipe")

// fakeSocket records writes. Set fail to make every data write error.
type fakeSocket struct {
	mu       sync.Mutex
	fail     bool
	frames   [][]byte
	controls []int
	closed   bool
}

func (s *fakeSocket) WriteMessage(_ int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail || s.closed {
		return errBrokenPipe
	}
	s.frames = append(s.frames, data)
	return nil
}

func (s *fakeSocket) WriteControl(messageType int, _ []byte, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	s.controls = append(s.controls, messageType)
	return nil
}

func (s *fakeSocket) SetWriteDeadline(time.Time) error { return nil }

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) Frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.frames...)
}

func (s *fakeSocket) Controls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.controls...)
}

// blockingSocket holds every data write until release is closed, like a
// peer that stopped reading.
type blockingSocket struct {
	fakeSocket
	release chan struct{}
}

func newBlockingSocket() *blockingSocket {
	return &blockingSocket{release: make(chan struct{})}
}

func (s *blockingSocket) WriteMessage(int, []byte) error {
	<-s.release
	return errBrokenPipe
}

// openConn returns an open connection with its writer running.
func openConn(sock socket, user domain.UserID) *Connection {
	c := newConnection(sock, Identity{UserID: user, TokenID: "jti"}, "", time.Second, DefaultSendBuffer, time.Now())
	go c.writeLoop()
	c.markOpen()
	return c
}

// stalledConn returns an open connection whose queue is never drained.
func stalledConn(sock socket, user domain.UserID) *Connection {
	c := newConnection(sock, Identity{UserID: user, TokenID: "jti"}, "", time.Second, 0, time.Now())
	c.markOpen()
	return c
}

func waitFrames(t require.TestingT, sock *fakeSocket, n int) {
	require.Eventually(t, func() bool { return len(sock.Frames()) == n }, time.Second, 5*time.Millisecond)
}
