package realtime

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eureka/pkg/domain"
)

func TestConnectionLifecycle(t *testing.T) {
	sock := &fakeSocket{}
	c := newConnection(sock, Identity{UserID: domain.NewUserID(), TokenID: "jti-1"}, "", 0, 1, testNow)

	assert.Equal(t, StateConnecting, c.State())
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "jti-1", c.TokenID)
	assert.Equal(t, "unknown", c.Client)

	require.ErrorIs(t, c.Send([]byte("x")), ErrConnectionClosed, "connecting connections do not receive frames")

	c.markOpen()
	assert.Equal(t, StateOpen, c.State())
	require.NoError(t, c.Send([]byte("x")))
	require.ErrorIs(t, c.Send([]byte("y")), ErrSendQueueFull, "an undrained queue drops instead of blocking")
	require.NoError(t, c.Ping())

	c.CloseWith(websocket.CloseGoingAway, "bye")
	c.CloseWith(websocket.CloseGoingAway, "bye")
	assert.Equal(t, StateClosed, c.State())
	assert.True(t, sock.closed)
	assert.Equal(t, []int{websocket.PingMessage, websocket.CloseMessage}, sock.Controls(), "close frame is sent once")

	require.ErrorIs(t, c.Send([]byte("x")), ErrConnectionClosed)
	require.ErrorIs(t, c.Ping(), ErrConnectionClosed)

	c.markOpen()
	assert.Equal(t, StateClosed, c.State(), "closed is terminal")
}

func TestConnectionConcurrentSends(t *testing.T) {
	sock := &fakeSocket{}
	c := openConn(sock, domain.NewUserID())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Send([]byte("frame"))
		}()
	}
	wg.Wait()
	waitFrames(t, sock, 50)
}

func TestConnectionWriteFailureClosesSocket(t *testing.T) {
	sock := &fakeSocket{fail: true}
	c := openConn(sock, domain.NewUserID())

	require.NoError(t, c.Send([]byte("frame")), "the frame is queued; the write fails later")
	require.Eventually(t, func() bool { return c.State() == StateClosed }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Send([]byte("frame")), ErrConnectionClosed)
}

func TestConnectionStalledPeerDoesNotBlockSend(t *testing.T) {
	sock := newBlockingSocket()
	defer close(sock.release)
	c := newConnection(sock, Identity{UserID: domain.NewUserID()}, "", time.Second, 2, testNow)
	go c.writeLoop()
	c.markOpen()

	start := time.Now()
	var failed int
	for i := 0; i < 10; i++ {
		if errors.Is(c.Send([]byte("frame")), ErrSendQueueFull) {
			failed++
		}
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.GreaterOrEqual(t, failed, 7, "one frame in flight plus two queued")
}

func TestSummarizeUserAgent(t *testing.T) {
	assert.Equal(t, "unknown", summarizeUserAgent(""))

	chrome := summarizeUserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.True(t, strings.HasPrefix(chrome, "Chrome/120.0.0.0"), chrome)

	bot := summarizeUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	assert.True(t, strings.HasPrefix(bot, "bot/"), bot)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 64))

	// 63 ASCII bytes then a 3-byte rune straddling the limit
	raw := strings.Repeat("a", 63) + "日本"
	got := truncate(raw, 64)
	assert.True(t, utf8.ValidString(got), "%q", got)
	assert.Equal(t, strings.Repeat("a", 63), got)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "state(7)", State(7).String())
}
