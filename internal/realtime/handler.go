package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"eureka/internal/platform/config"
	"eureka/pkg/requestcontext"
)

// maxInboundMessage bounds client frames. Clients have nothing to say beyond
// pongs and close frames.
const maxInboundMessage = 4096

const (
	CloseReasonShutdown = "Server shutting down"
	closeReasonInternal = "Internal error"
)

// Handler upgrades authenticated requests and keeps each connection
// registered until its read loop ends.
type Handler struct {
	gate     *Gate
	registry *Registry
	metrics  *Metrics
	logger   *slog.Logger
	cfg      config.RealtimeConfig
	upgrader websocket.Upgrader
	now      func() time.Time

	wg sync.WaitGroup
}

type HandlerOption func(*Handler)

// WithClock overrides the clock used for ConnectedAt.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

func NewHandler(gate *Gate, registry *Registry, metrics *Metrics, logger *slog.Logger, cfg config.RealtimeConfig, opts ...HandlerOption) *Handler {
	h := &Handler{
		gate:     gate,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin:      originChecker(cfg.AllowedOrigins),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the upgrade endpoint. It must sit outside RequireAuth: the
// token travels in the query string.
func (h *Handler) Register(r chi.Router) {
	r.Get(h.cfg.Path, h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, err := h.gate.Admit(r)
	if err != nil {
		h.reject(ctx, w, r, err)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.metrics.rejected("upgrade")
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}

	h.wg.Add(1)
	defer h.wg.Done()

	sendBuffer := h.cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	conn := newConnection(ws, identity, r.UserAgent(), h.cfg.WriteTimeout, sendBuffer, h.now())
	go conn.writeLoop()
	h.registry.Add(conn)
	conn.markOpen()
	h.metrics.connOpened()
	h.logger.InfoContext(ctx, "realtime connection opened",
		"conn_id", conn.ID,
		"user_id", conn.Subject.String(),
		"client", conn.Client,
		"client_ip", requestcontext.ClientIP(ctx),
	)

	done := make(chan struct{})
	go h.keepalive(conn, done)
	err = h.readLoop(ws)
	close(done)

	h.registry.Remove(conn)
	conn.CloseWith(websocket.CloseNormalClosure, "")
	h.metrics.connClosed()

	attrs := []any{
		"conn_id", conn.ID,
		"user_id", conn.Subject.String(),
		"duration_ms", h.now().Sub(conn.ConnectedAt).Milliseconds(),
	}
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		h.logger.WarnContext(ctx, "realtime connection dropped", append(attrs, "error", err)...)
		return
	}
	h.logger.InfoContext(ctx, "realtime connection closed", attrs...)
}

// reject completes the handshake only to deliver a close code the client can
// act on, then hangs up. The connection is never registered.
func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	var rej *Rejection
	if !errors.As(err, &rej) {
		rej = &Rejection{Code: websocket.CloseInternalServerErr, Reason: closeReasonInternal, Err: err}
	}
	h.metrics.rejected(rej.Label())

	if rej.Code == websocket.CloseInternalServerErr {
		h.logger.ErrorContext(ctx, "realtime admission failed",
			"error", rej,
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, "realtime connection rejected",
			"reason", rej.Reason,
			"error", rej.Err,
			"client_ip", requestcontext.ClientIP(ctx),
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	ws, upErr := h.upgrader.Upgrade(w, r, nil)
	if upErr != nil {
		return
	}
	deadline := time.Now().Add(time.Second)
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(rej.Code, rej.Reason), deadline)
	_ = ws.Close()
}

// readLoop discards client frames and returns the error that ended the
// connection. The read deadline is pushed out on every pong.
func (h *Handler) readLoop(ws *websocket.Conn) error {
	ws.SetReadLimit(maxInboundMessage)
	if h.cfg.PongWait > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		})
	}
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return err
		}
	}
}

func (h *Handler) keepalive(conn *Connection, done <-chan struct{}) {
	if h.cfg.PingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				// the read deadline reaps the connection
				return
			}
		}
	}
}

// Shutdown sends 1001 to every connection and waits for their read loops to
// exit or ctx to end.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.registry.ForEach(func(c *Connection) {
		c.CloseWith(websocket.CloseGoingAway, CloseReasonShutdown)
	})

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// originChecker accepts any origin when allowed is empty. Requests without an
// Origin header come from non-browser clients and are accepted.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}
