package realtime

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"eureka/pkg/domain"
	"eureka/pkg/realtime/wire"
)

type PublisherSuite struct {
	suite.Suite
	registry  *Registry
	metrics   *Metrics
	publisher *Publisher
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.registry = NewRegistry()
	s.metrics = NewMetrics(prometheus.NewRegistry())
	s.publisher = NewPublisher(s.registry, slog.New(slog.NewTextHandler(io.Discard, nil)), s.metrics)
}

func (s *PublisherSuite) add(sock socket, user domain.UserID) *Connection {
	c := openConn(sock, user)
	s.registry.Add(c)
	return c
}

func (s *PublisherSuite) TestBroadcastSendsOneSharedFrame() {
	a, b := &fakeSocket{}, &fakeSocket{}
	s.add(a, domain.NewUserID())
	s.add(b, domain.NewUserID())

	err := s.publisher.Broadcast(context.Background(), wire.EventNewPost, wire.Post{ID: "p1", Category: "Inquiry"})
	s.Require().NoError(err)

	waitFrames(s.T(), a, 1)
	waitFrames(s.T(), b, 1)
	s.Same(&a.Frames()[0][0], &b.Frames()[0][0], "every connection writes the same encoded bytes")

	env, err := wire.Decode(a.Frames()[0])
	s.Require().NoError(err)
	s.Equal(wire.EventNewPost, env.Type)
	post, err := wire.DecodePayload[wire.Post](env.Payload)
	s.Require().NoError(err)
	s.Equal("p1", post.ID)

	s.Equal(float64(1), promtest.ToFloat64(s.metrics.Broadcasts.WithLabelValues("new_post")))
}

func (s *PublisherSuite) TestBroadcastSkipsConnectionsThatAreNotOpen() {
	open, closed, connecting := &fakeSocket{}, &fakeSocket{}, &fakeSocket{}
	s.add(open, domain.NewUserID())
	c := s.add(closed, domain.NewUserID())
	c.CloseWith(websocket.CloseNormalClosure, "")
	s.registry.Add(newConnection(connecting, Identity{UserID: domain.NewUserID()}, "", 0, DefaultSendBuffer, testNow))

	s.Require().NoError(s.publisher.Broadcast(context.Background(), wire.EventNewComment, wire.NewComment{PostID: "p1"}))

	waitFrames(s.T(), open, 1)
	s.Empty(closed.Frames())
	s.Empty(connecting.Frames())
	s.Equal(float64(0), promtest.ToFloat64(s.metrics.SendFailures.WithLabelValues("new_comment")))
}

func (s *PublisherSuite) TestSendFailureDoesNotAbortFanout() {
	healthy1, full, healthy2 := &fakeSocket{}, &fakeSocket{}, &fakeSocket{}
	s.add(healthy1, domain.NewUserID())
	bc := stalledConn(full, domain.NewUserID())
	s.registry.Add(bc)
	s.add(healthy2, domain.NewUserID())

	s.Require().NoError(s.publisher.Broadcast(context.Background(), wire.EventNewPost, wire.Post{ID: "p1"}))

	waitFrames(s.T(), healthy1, 1)
	waitFrames(s.T(), healthy2, 1)
	s.Empty(full.Frames())
	s.Equal(3, s.registry.Len(), "the broadcast loop never reaps connections")
	s.Equal(StateOpen, bc.State())
	s.Equal(float64(1), promtest.ToFloat64(s.metrics.SendFailures.WithLabelValues("new_post")))
}

func (s *PublisherSuite) TestStalledConnectionDoesNotBlockBroadcast() {
	stalled := newBlockingSocket()
	defer close(stalled.release)
	sc := newConnection(stalled, Identity{UserID: domain.NewUserID()}, "", time.Second, 1, testNow)
	go sc.writeLoop()
	sc.markOpen()
	s.registry.Add(sc)
	healthy := &fakeSocket{}
	s.add(healthy, domain.NewUserID())

	const broadcasts = DefaultSendBuffer
	var worst time.Duration
	for i := 0; i < broadcasts; i++ {
		start := time.Now()
		s.Require().NoError(s.publisher.Broadcast(context.Background(), wire.EventNewPost, wire.Post{ID: "p1"}))
		worst = max(worst, time.Since(start))
	}

	s.Less(worst, 100*time.Millisecond, "a peer that stopped reading must not hold up the caller")
	waitFrames(s.T(), healthy, broadcasts)
	// one frame in flight and one queued; the rest are dropped
	s.GreaterOrEqual(promtest.ToFloat64(s.metrics.SendFailures.WithLabelValues("new_post")), float64(broadcasts-2))
	s.Equal(StateOpen, sc.State())
}

func (s *PublisherSuite) TestBroadcastToFiltersByRecipient() {
	alice, bob := domain.NewUserID(), domain.NewUserID()
	aliceTab1, aliceTab2, bobTab := &fakeSocket{}, &fakeSocket{}, &fakeSocket{}
	s.add(aliceTab1, alice)
	s.add(aliceTab2, alice)
	s.add(bobTab, bob)

	err := s.publisher.BroadcastTo(context.Background(), wire.EventNewNotification, wire.Notification{ID: "n1", Recipient: alice.String()}, alice)
	s.Require().NoError(err)

	waitFrames(s.T(), aliceTab1, 1)
	waitFrames(s.T(), aliceTab2, 1)
	s.Empty(bobTab.Frames())
}

func (s *PublisherSuite) TestEncodeErrorIsReturned() {
	sock := &fakeSocket{}
	s.add(sock, domain.NewUserID())

	err := s.publisher.Broadcast(context.Background(), wire.EventNewPost, make(chan int))
	s.Require().Error(err)
	s.Empty(sock.Frames())
}

func (s *PublisherSuite) TestEmptyRegistryIsNoop() {
	s.Require().NoError(s.publisher.Broadcast(context.Background(), wire.EventNewPost, wire.Post{ID: "p1"}))
}

func TestNilMetricsAreIgnored(t *testing.T) {
	r := NewRegistry()
	r.Add(stalledConn(&fakeSocket{}, domain.NewUserID()))
	p := NewPublisher(r, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	require.NotPanics(t, func() {
		assert.NoError(t, p.Broadcast(context.Background(), wire.EventNewPost, wire.Post{}))
	})
}
